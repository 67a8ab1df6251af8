package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"taskgraph/internal/config"
	"taskgraph/internal/db"
	"taskgraph/internal/logging"
	"taskgraph/internal/output"
	"taskgraph/internal/service"
)

var (
	Version    = "0.1.0"
	jsonOutput bool

	dbPathFlag    string
	logLevelFlag  string
	logFormatFlag string

	cfg      *config.Config
	logger   = logging.Discard()
	observer *logging.CascadeObserver
	svc      *service.Service
)

// commandsExemptFromDB lists commands that don't require database initialization
var commandsExemptFromDB = map[string]bool{
	"init":       true,
	"version":    true,
	"help":       true,
	"completion": true,
}

var rootCmd = &cobra.Command{
	Use:   "tg",
	Short: "taskgraph - dependency-aware task tracking",
	Long: `taskgraph (tg) tracks tasks and the dependencies between them.

A dependency can never close a cycle, and a task's status follows its
dependencies: when everything it depends on is completed it becomes
in_progress, when any dependency is blocked it becomes blocked, and
completed tasks stay completed.

QUICK START:
  tg init                              # Initialize in current directory
  tg create "Design API"               # Create a task
  tg dep add <task> <depends-on>       # <task> waits for <depends-on>
  tg status completed <id>             # Complete a task; dependents follow
  tg dep check <task> <depends-on>     # Would this edge create a cycle?

STATUSES: pending, in_progress, completed, blocked

TASK IDS: Auto-generated like "tg-a1b2c3d4"

CONFIGURATION: .taskgraph/config.toml, TASKGRAPH_* environment variables,
or the --db / --log-level / --log-format flags.

JSON OUTPUT: Add --json flag to any command for machine-readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		if commandsExemptFromDB[cmd.Name()] {
			return nil
		}
		if err := db.EnsureInitialized(cfg.DB.Path); err != nil {
			return err
		}
		svc = service.New(db.NewStore(db.GetDB()),
			service.WithLogger(logger),
			service.WithObserver(observer),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if observer != nil && observer.Steps() > 0 {
			logger.Debug("cascade summary", "steps", observer.Steps(), "changes", observer.Changes())
		}
	},
}

func Execute() {
	defer db.CloseDB()

	if err := rootCmd.Execute(); err != nil {
		if jsonOutput {
			OutputJSON(output.ErrorPayload(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "Database path (default: .taskgraph/db.sqlite)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug/info/warn/error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format (text/json/logfmt)")
	rootCmd.Version = Version
}

// configFlags maps config keys to the persistent flags that override them.
var configFlags = map[string]string{
	"db.path":    "db",
	"log.level":  "log-level",
	"log.format": "log-format",
}

// loadConfig resolves settings from defaults, the project config file,
// TASKGRAPH_* variables and flags, then builds the logger.
func loadConfig(cmd *cobra.Command) error {
	v, err := config.New(configFilePath())
	if err != nil {
		return err
	}
	if err := bindConfigFlags(v, cmd.Root().PersistentFlags()); err != nil {
		return err
	}

	if cfg, err = config.Load(v); err != nil {
		return err
	}

	logger = logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Prefix: "tg",
	})
	observer = logging.NewCascadeObserver(logger, cfg.Cascade.Trace)
	logger.Debug("configuration loaded", "db", cfg.DB.Path, "trace", cfg.Cascade.Trace)
	return nil
}

func bindConfigFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range configFlags {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

func configFilePath() string {
	root, err := db.FindProjectRoot()
	if err != nil {
		return ""
	}
	return filepath.Join(root, db.DataDir, db.ConfigFileName)
}

func formatter() output.Formatter {
	return output.New(IsJSONOutput())
}

func OutputJSON(data interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(data)
}

func IsJSONOutput() bool {
	return jsonOutput
}
