package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskgraph/internal/graph"
	"taskgraph/internal/models"
)

const (
	// DataDir is the directory name for taskgraph data
	DataDir = ".taskgraph"
	// DBFileName is the database filename within the data directory
	DBFileName = "db.sqlite"
	// ConfigFileName is the optional config file within the data directory
	ConfigFileName = "config.toml"
)

// ErrNotInitialized is returned when no database exists at the configured path
var ErrNotInitialized = errors.New("taskgraph not initialized. Run 'tg init' first")

var (
	db   *gorm.DB
	dbMu sync.RWMutex
)

// InitDB initializes the database connection and runs migrations
func InitDB(dbPath string) (*gorm.DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	// Per-connection pragmas go in the DSN so every pooled connection gets them.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	database, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports multiple readers but only one writer.
	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)

	if err := database.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := runMigrations(database); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	dbMu.Lock()
	db = database
	dbMu.Unlock()
	return database, nil
}

// runMigrations runs all database migrations
func runMigrations(database *gorm.DB) error {
	return database.AutoMigrate(
		&models.Task{},
		&models.Dependency{},
		&models.TaskHistory{},
		&models.Config{},
	)
}

// GetDB returns the current database connection
func GetDB() *gorm.DB {
	dbMu.RLock()
	defer dbMu.RUnlock()
	return db
}

// SetDB sets the database connection (used for testing)
func SetDB(database *gorm.DB) {
	dbMu.Lock()
	defer dbMu.Unlock()
	db = database
}

// CloseDB closes the database connection
func CloseDB() error {
	dbMu.Lock()
	defer dbMu.Unlock()

	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	err = sqlDB.Close()
	db = nil
	return err
}

// FindProjectRoot searches upward from the working directory for a data dir
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	dir := cwd
	for {
		dataPath := filepath.Join(dir, DataDir)
		if info, err := os.Stat(dataPath); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a taskgraph project (no %s/ found)", DataDir)
		}
		dir = parent
	}
}

// GetDefaultDBPath returns the default database path for the current project
func GetDefaultDBPath() (string, error) {
	root, err := FindProjectRoot()
	if err != nil {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			return "", cwdErr
		}
		return filepath.Join(cwd, DataDir, DBFileName), nil
	}
	return filepath.Join(root, DataDir, DBFileName), nil
}

// EnsureInitialized opens the database at dbPath unless one is already open.
// An empty dbPath falls back to GetDefaultDBPath.
func EnsureInitialized(dbPath string) error {
	dbMu.RLock()
	isNil := db == nil
	dbMu.RUnlock()

	if !isNil {
		return nil
	}
	if dbPath == "" {
		var err error
		if dbPath, err = GetDefaultDBPath(); err != nil {
			return err
		}
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return ErrNotInitialized
	}
	_, err := InitDB(dbPath)
	return err
}

// GetTaskByID loads a task, returning a *graph.TaskNotFoundError if absent
func GetTaskByID(id string) (*models.Task, error) {
	return NewStore(GetDB()).GetTask(id)
}

// SetConfig sets a configuration value
func SetConfig(key, value string) error {
	config := models.Config{Key: key, Value: value}
	return GetDB().Save(&config).Error
}

// GetConfig gets a configuration value
func GetConfig(key string) (string, error) {
	var config models.Config
	err := GetDB().Where("key = ?", key).First(&config).Error
	if err != nil {
		return "", err
	}
	return config.Value, nil
}

func notFound(id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &graph.TaskNotFoundError{TaskID: id}
	}
	return err
}
