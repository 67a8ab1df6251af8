package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskgraph/internal/service"
)

var (
	createDescription string
	createStatus      string
	createDependsOn   []string
)

var createCmd = &cobra.Command{
	Use:   "create \"title\"",
	Short: "Create a new task",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "Description")
	createCmd.Flags().StringVarP(&createStatus, "status", "s", "", "Initial status (default pending)")
	createCmd.Flags().StringSliceVar(&createDependsOn, "depends-on", nil, "IDs of tasks this one depends on")
}

func runCreate(cmd *cobra.Command, args []string) error {
	task, err := svc.CreateTask(service.CreateTaskInput{
		Title:       args[0],
		Description: createDescription,
		Status:      createStatus,
	})
	if err != nil {
		return err
	}

	var batch *service.BatchResult
	if len(createDependsOn) > 0 {
		if batch, err = svc.AddDependencies(task.ID, createDependsOn); err != nil {
			return err
		}
		view, err := svc.GetTask(task.ID)
		if err != nil {
			return err
		}
		task = &view.Task
	}

	if IsJSONOutput() {
		result := map[string]interface{}{"success": true, "task": task}
		if batch != nil {
			result["dependencies"] = batch
		}
		OutputJSON(result)
		return nil
	}

	fmt.Printf("Created: %s - %s\n", task.ID, task.Title)
	if batch != nil {
		for _, d := range batch.Created {
			fmt.Printf("  depends on %s\n", d.DependsOnID)
		}
		for _, e := range batch.Errors {
			fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", e.DependsOnID, e.Message)
		}
	}
	return nil
}
