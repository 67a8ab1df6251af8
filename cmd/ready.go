package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskgraph/internal/graph"
	"taskgraph/internal/service"
)

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "List tasks whose dependencies are all completed",
	RunE:  runReady,
}

func init() {
	rootCmd.AddCommand(readyCmd)
}

func runReady(cmd *cobra.Command, args []string) error {
	readyTasks, err := svc.ListTasks(service.ListFilter{Status: string(graph.StatusInProgress)})
	if err != nil {
		return err
	}

	if !IsJSONOutput() && len(readyTasks) == 0 {
		fmt.Println("No ready tasks")
		return nil
	}
	formatter().TaskList(readyTasks, "Ready tasks")
	return nil
}
