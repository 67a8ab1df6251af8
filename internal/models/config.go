package models

import (
	"time"
)

// Config stores key-value metadata for the graph database
type Config struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Config
func (Config) TableName() string {
	return "config"
}

// Common config keys
const (
	ConfigSchemaVersion = "schema_version"
	ConfigProjectName   = "project_name"
	ConfigInitializedAt = "initialized_at"
)

// SchemaVersion is recorded by init
const SchemaVersion = "1"
