package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskgraph/internal/service"
)

var (
	listStatus string
	listTitle  string
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List tasks",
	Aliases: []string{"ls"},
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Filter by status (pending/in_progress/completed/blocked/all)")
	listCmd.Flags().StringVarP(&listTitle, "title", "t", "", "Filter by title substring")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Maximum tasks to show")
}

func runList(cmd *cobra.Command, args []string) error {
	tasks, err := svc.ListTasks(service.ListFilter{
		Status: listStatus,
		Title:  listTitle,
		Limit:  listLimit,
	})
	if err != nil {
		return err
	}

	if !IsJSONOutput() && len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}
	formatter().TaskList(tasks, "")
	return nil
}
