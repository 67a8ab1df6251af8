package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// History field names
const (
	FieldStatus      = "status"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDependency  = "dependency"
	FieldCreated     = "created"
)

// TaskHistory records changes to tasks
type TaskHistory struct {
	ID        string    `gorm:"primaryKey;size:45" json:"id"`
	TaskID    string    `gorm:"size:30;index;not null" json:"task_id"`
	Field     string    `gorm:"size:50;not null" json:"field"`
	OldValue  string    `gorm:"type:text" json:"old_value,omitempty"`
	NewValue  string    `gorm:"type:text" json:"new_value,omitempty"`
	ChangedBy string    `gorm:"size:100" json:"changed_by,omitempty"`
	ChangedAt time.Time `gorm:"autoCreateTime;index" json:"changed_at"`
}

// GenerateHistoryID creates a new history entry ID
func GenerateHistoryID() string {
	return "hist-" + uuid.NewString()
}

// BeforeCreate hook to generate ID
func (h *TaskHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = GenerateHistoryID()
	}
	return nil
}

// RecordChange creates a history entry for a field change
func RecordChange(db *gorm.DB, taskID, field, oldValue, newValue, changedBy string) error {
	if oldValue == newValue {
		return nil // No change
	}
	entry := &TaskHistory{
		TaskID:    taskID,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
		ChangedBy: changedBy,
	}
	return db.Create(entry).Error
}
