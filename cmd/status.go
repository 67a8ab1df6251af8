package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskgraph/internal/graph"
)

var statusCmd = &cobra.Command{
	Use:   "status <status> <id>...",
	Short: "Set task status and propagate it to dependents",
	Long: `Set the status of one or more tasks explicitly.

The new status is written as given, then every task that depends on it is
recomputed:
  - completed tasks stay completed
  - any blocked dependency blocks the dependent
  - all dependencies completed makes the dependent in_progress
  - otherwise the dependent is pending

Statuses: pending, in_progress, completed, blocked`,
	Args: cobra.MinimumNArgs(2),
	RunE: runStatus,
}

var completeCmd = &cobra.Command{
	Use:     "complete <id>...",
	Aliases: []string{"close", "done"},
	Short:   "Mark tasks completed",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(string(graph.StatusCompleted), args)
	},
}

var reopenCmd = &cobra.Command{
	Use:   "reopen <id>...",
	Short: "Move tasks back to pending",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(string(graph.StatusPending), args)
	},
}

var blockCmd = &cobra.Command{
	Use:   "block <id>...",
	Short: "Mark tasks blocked",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(string(graph.StatusBlocked), args)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(reopenCmd)
	rootCmd.AddCommand(blockCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	return setStatus(args[0], args[1:])
}

func setStatus(status string, ids []string) error {
	if len(ids) == 1 {
		res, err := svc.SetStatus(ids[0], status)
		if err != nil {
			return err
		}
		if IsJSONOutput() {
			OutputJSON(map[string]interface{}{"success": true, "task": res.Task, "cascade": res.Cascade})
			return nil
		}
		fmt.Printf("%s: %s\n", res.Task.ID, res.Task.Status)
		formatter().Cascade(dependentsOnly(res.Cascade))
		return nil
	}

	bulk, err := svc.BulkSetStatus(ids, status)
	if err != nil {
		return err
	}
	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{"success": len(bulk.NotFound) == 0, "updated": bulk.Updated, "not_found": bulk.NotFound})
		return nil
	}
	for _, r := range bulk.Updated {
		fmt.Printf("%s: %s\n", r.Task.ID, r.Task.Status)
		formatter().Cascade(dependentsOnly(r.Cascade))
	}
	for _, id := range bulk.NotFound {
		fmt.Fprintf(os.Stderr, "Warning: task '%s' not found\n", id)
	}
	return nil
}

// dependentsOnly drops the root write so the text output only lists
// what the cascade changed.
func dependentsOnly(res *graph.Result) *graph.Result {
	if res == nil {
		return &graph.Result{}
	}
	trimmed := *res
	trimmed.Changes = nil
	for _, c := range res.Changes {
		if c.Depth > 0 {
			trimmed.Changes = append(trimmed.Changes, c)
		}
	}
	return &trimmed
}
