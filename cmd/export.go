package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskgraph/internal/manifest"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all tasks and dependencies as a TOML manifest",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	m, err := svc.Export()
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		OutputJSON(m)
		return nil
	}

	if exportOutput == "" {
		return manifest.Encode(os.Stdout, m)
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOutput, err)
	}
	defer f.Close()
	if err := manifest.Encode(f, m); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Exported %d tasks to %s\n", len(m.Tasks), exportOutput)
	return nil
}
