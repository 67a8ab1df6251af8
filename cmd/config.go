package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskgraph/internal/db"
	"taskgraph/internal/models"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective configuration",
	Long: `Show the configuration in effect for this invocation and the project
metadata recorded by 'tg init'.

Settings are resolved in this order (later wins):
  defaults, .taskgraph/config.toml, TASKGRAPH_* variables, flags`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	project := make(map[string]string)
	for _, key := range []string{models.ConfigProjectName, models.ConfigSchemaVersion, models.ConfigInitializedAt} {
		if value, err := db.GetConfig(key); err == nil {
			project[key] = value
		}
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{
			"settings":    cfg,
			"config_file": configFilePath(),
			"project":     project,
		})
		return nil
	}

	f := formatter()
	f.KeyValue("config file", orNone(configFilePath()))
	f.KeyValue("db.path", orNone(cfg.DB.Path))
	f.KeyValue("log.level", cfg.Log.Level)
	f.KeyValue("log.format", cfg.Log.Format)
	f.KeyValue("cascade.trace", fmt.Sprintf("%t", cfg.Cascade.Trace))

	f.Section("Project")
	for _, key := range []string{models.ConfigProjectName, models.ConfigSchemaVersion, models.ConfigInitializedAt} {
		f.KeyValue(key, orNone(project[key]))
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
