package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskgraph/internal/service"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search task titles and descriptions",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	matches, err := svc.ListTasks(service.ListFilter{Query: args[0]})
	if err != nil {
		return err
	}

	if !IsJSONOutput() && len(matches) == 0 {
		fmt.Println("No matches found")
		return nil
	}
	formatter().TaskList(matches, "")
	return nil
}
