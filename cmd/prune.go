package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	pruneBefore string
	pruneDryRun bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete completed tasks older than a duration",
	Long: `Delete completed tasks that have not changed for the given duration.
Tasks that depended on a pruned task are recomputed.

Examples:
  tg prune --before 30d            # Delete tasks completed more than 30 days ago
  tg prune --before 2w --dry-run   # Show what would be deleted`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().StringVar(&pruneBefore, "before", "", "Prune tasks completed before duration (e.g., 30d, 2w, 12h)")
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "Show what would be deleted without making changes")
	pruneCmd.MarkFlagRequired("before")
}

func parseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}
	unit := s[len(s)-1]
	valueStr := s[:len(s)-1]
	var value int
	if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
		return 0, fmt.Errorf("invalid duration value: %s", valueStr)
	}

	switch unit {
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	case 'h':
		return time.Duration(value) * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid duration unit: %c (use d=days, w=weeks, h=hours)", unit)
	}
}

func runPrune(cmd *cobra.Command, args []string) error {
	duration, err := parseDuration(pruneBefore)
	if err != nil {
		return err
	}

	res, err := svc.Prune(time.Now().Add(-duration), pruneDryRun)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		OutputJSON(res)
		return nil
	}

	if len(res.Deleted) == 0 {
		fmt.Println("No completed tasks to prune")
		return nil
	}
	verb := "Pruned"
	if res.DryRun {
		verb = "Would prune"
	}
	fmt.Printf("%s %d tasks\n", verb, len(res.Deleted))
	for _, id := range res.Deleted {
		fmt.Printf("  - %s\n", id)
	}
	return nil
}
