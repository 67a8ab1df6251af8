package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskgraph/internal/output"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the whole dependency graph",
	RunE:  runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	g, err := svc.Graph()
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		OutputJSON(g)
		return nil
	}

	if len(g.Nodes) == 0 {
		fmt.Println("No tasks found")
		return nil
	}
	for _, n := range g.Nodes {
		fmt.Printf("[%s] %s - %s\n", n.ID, output.RenderStatus(n.Status), n.Title)
		for _, dep := range n.Dependencies {
			fmt.Printf("  <- %s\n", dep)
		}
	}
	fmt.Printf("\n%d tasks, %d dependencies\n", len(g.Nodes), len(g.Edges))
	return nil
}
