package models

import (
	"time"

	"taskgraph/internal/graph"
)

// Dependency is a directed edge: Task depends on DependsOn.
// The pair is unique; self-loops and cycles are rejected before insert.
type Dependency struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TaskID      string    `gorm:"size:30;not null;uniqueIndex:idx_task_depends_on,priority:1" json:"task"`       // The dependent task
	DependsOnID string    `gorm:"size:30;not null;uniqueIndex:idx_task_depends_on,priority:2;index" json:"depends_on"` // The prerequisite
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Associations (not stored, populated by queries)
	Task      *Task `gorm:"foreignKey:TaskID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	DependsOn *Task `gorm:"foreignKey:DependsOnID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Dependency
func (Dependency) TableName() string {
	return "task_dependencies"
}

// Edge returns the graph edge for this dependency
func (d *Dependency) Edge() graph.Edge {
	return graph.Edge{TaskID: d.TaskID, DependsOnID: d.DependsOnID}
}
