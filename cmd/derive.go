package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskgraph/internal/output"
)

var deriveCmd = &cobra.Command{
	Use:   "derive <id>",
	Short: "Show the status a task's dependencies imply, without writing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDerive,
}

func init() {
	rootCmd.AddCommand(deriveCmd)
}

func runDerive(cmd *cobra.Command, args []string) error {
	d, err := svc.DeriveStatus(args[0])
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{
			"task_id":        d.TaskID,
			"current_status": d.Current,
			"derived_status": d.Derived,
			"changed":        d.Changed(),
		})
		return nil
	}

	if !d.Changed() {
		fmt.Printf("%s: %s (up to date)\n", d.TaskID, output.RenderStatus(d.Current))
		return nil
	}
	fmt.Printf("%s: %s -> %s\n", d.TaskID, output.RenderStatus(d.Current), output.RenderStatus(d.Derived))
	return nil
}
