package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupDryRun bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Clean up orphaned records from deleted tasks",
	Long: `Remove dependency and history records that reference tasks which no
longer exist.

The cleanup is performed in a transaction to ensure data consistency.

Examples:
  tg cleanup            # Clean up all orphaned records
  tg cleanup --dry-run  # Show what would be cleaned without making changes`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Show what would be cleaned without making changes")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	res, err := svc.Cleanup(cleanupDryRun)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{
			"dry_run": res.DryRun,
			"counts": map[string]int64{
				"dependencies": res.Counts.Dependencies,
				"history":      res.Counts.History,
				"total":        res.Counts.Total(),
			},
		})
		return nil
	}

	if res.Counts.Total() == 0 {
		fmt.Println("No orphaned records found")
		return nil
	}

	if res.DryRun {
		fmt.Println("=== Dry Run: Orphaned Records Found ===")
	} else {
		fmt.Println("=== Cleanup Complete ===")
	}
	fmt.Printf("  Dependencies: %d\n", res.Counts.Dependencies)
	fmt.Printf("  History:      %d\n", res.Counts.History)
	fmt.Printf("  ---\n")
	fmt.Printf("  Total:        %d\n", res.Counts.Total())
	if res.DryRun {
		fmt.Println("\nRun without --dry-run to remove these records")
	}
	return nil
}
