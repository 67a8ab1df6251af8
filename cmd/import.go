package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskgraph/internal/manifest"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import tasks and dependencies from a TOML manifest",
	Long: `Import a TOML manifest of tasks. Each [[task]] has a key, a title and
optionally a description, status and depends_on list of other keys:

  [[task]]
  key = "api"
  title = "Design API"

  [[task]]
  key = "impl"
  title = "Implement API"
  depends_on = ["api"]

The import is all or nothing: a cycle or an unknown key rolls it back.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	m, err := manifest.DecodeFile(args[0])
	if err != nil {
		return err
	}

	res, err := svc.Import(m)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{"success": true, "result": res})
		return nil
	}

	fmt.Printf("Imported %d tasks and %d dependencies\n", res.Tasks, res.Dependencies)
	for _, mt := range m.Tasks {
		fmt.Printf("  %-20s %s\n", mt.Key, res.IDs[mt.Key])
	}
	return nil
}
