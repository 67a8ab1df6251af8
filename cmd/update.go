package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskgraph/internal/service"
)

var (
	updateTitle       string
	updateDescription string
	updateStatus      string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "New description")
	updateCmd.Flags().StringVarP(&updateStatus, "status", "s", "", "New status")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	var in service.UpdateTaskInput
	if cmd.Flags().Changed("title") {
		in.Title = &updateTitle
	}
	if cmd.Flags().Changed("description") {
		in.Description = &updateDescription
	}
	if cmd.Flags().Changed("status") {
		in.Status = &updateStatus
	}
	if in.Title == nil && in.Description == nil && in.Status == nil {
		return fmt.Errorf("nothing to update: pass --title, --description or --status")
	}

	res, err := svc.UpdateTask(args[0], in)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{"success": true, "task": res.Task, "cascade": res.Cascade})
		return nil
	}
	fmt.Printf("Updated: %s\n", res.Task.ID)
	if res.Cascade != nil {
		formatter().Cascade(res.Cascade)
	}
	return nil
}
