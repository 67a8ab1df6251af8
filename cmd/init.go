package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskgraph/internal/db"
	"taskgraph/internal/models"
)

var (
	forceInit   bool
	stealthMode bool
)

const defaultConfigFile = `# taskgraph configuration. TASKGRAPH_* environment variables and flags
# override these values, e.g. TASKGRAPH_LOG_LEVEL=debug.

[db]
# path = ".taskgraph/db.sqlite"

[log]
level = "warn"    # debug, info, warn, error
format = "text"   # text, json, logfmt

[cascade]
trace = false     # log every status propagation step at debug level
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize taskgraph in the current directory",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Force reinitialize")
	initCmd.Flags().BoolVar(&stealthMode, "stealth", false, "Add .taskgraph to .gitignore")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	dataDir := filepath.Join(cwd, db.DataDir)
	dbPath := filepath.Join(dataDir, db.DBFileName)
	if cfg != nil && cfg.DB.Path != "" {
		dbPath = cfg.DB.Path
	}

	if info, err := os.Stat(dataDir); err == nil && info.IsDir() {
		if !forceInit {
			return fmt.Errorf("already initialized. Use --force to reinitialize")
		}
		if err := os.RemoveAll(dataDir); err != nil {
			return fmt.Errorf("failed to remove existing data directory: %w", err)
		}
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	configPath := filepath.Join(dataDir, db.ConfigFileName)
	if err := os.WriteFile(configPath, []byte(defaultConfigFile), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if _, err := db.InitDB(dbPath); err != nil {
		return err
	}

	settings := []models.Config{
		{Key: models.ConfigSchemaVersion, Value: models.SchemaVersion},
		{Key: models.ConfigInitializedAt, Value: time.Now().Format(time.RFC3339)},
		{Key: models.ConfigProjectName, Value: filepath.Base(cwd)},
	}
	for _, c := range settings {
		if err := db.SetConfig(c.Key, c.Value); err != nil {
			return fmt.Errorf("failed to save %s: %w", c.Key, err)
		}
	}

	if stealthMode {
		if err := addToGitignore(cwd, db.DataDir); err != nil {
			// Non-fatal, just warn
			fmt.Fprintf(os.Stderr, "Warning: could not add to .gitignore: %v\n", err)
		}
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{"success": true, "path": dataDir, "db": dbPath})
		return nil
	}

	fmt.Printf("taskgraph initialized in %s/\n", db.DataDir)
	fmt.Println("\nNext steps:")
	fmt.Println("  tg create \"My first task\"      Create a task")
	fmt.Println("  tg dep add <task> <depends-on>  Add a dependency")
	fmt.Println("  tg list                         List all tasks")
	return nil
}

func addToGitignore(dir, entry string) error {
	gitignorePath := filepath.Join(dir, ".gitignore")

	content, err := os.ReadFile(gitignorePath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == entry || line == entry+"/" {
			return nil // Already in gitignore
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	// Add newline if file doesn't end with one
	if len(content) > 0 && content[len(content)-1] != '\n' {
		if _, err := f.WriteString("\n"); err != nil {
			return err
		}
	}
	_, err = f.WriteString(entry + "\n")
	return err
}
