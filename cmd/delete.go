package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task and its dependencies",
	Long: `Delete a task together with every dependency edge that touches it.
Tasks that depended on it are recomputed afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	res, err := svc.DeleteTask(args[0])
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{
			"success":        true,
			"task_id":        res.TaskID,
			"affected_tasks": res.AffectedTasks,
			"changes":        res.Changes,
		})
		return nil
	}

	fmt.Printf("Deleted: %s\n", res.TaskID)
	for _, c := range res.Changes {
		fmt.Printf("  %s: %s -> %s\n", c.TaskID, c.From, c.To)
	}
	return nil
}
