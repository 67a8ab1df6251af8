package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"taskgraph/internal/graph"
)

// Date format constants
const (
	DateTimeFormat      = "2006-01-02 15:04:05"
	DateTimeShortFormat = "2006-01-02 15:04"
)

// ID generation constants
const (
	IDByteLength = 4
	IDPrefix     = "tg-"
)

// MaxTitleLength is the longest title accepted
const MaxTitleLength = 255

var taskIDPattern = regexp.MustCompile(`^tg-[a-f0-9]{8}$`)

// ValidateTaskID validates that a task ID has the correct format
func ValidateTaskID(id string) bool {
	return taskIDPattern.MatchString(id)
}

// Task represents a unit of work in the dependency graph
type Task struct {
	ID          string       `gorm:"primaryKey;size:30" json:"id"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      graph.Status `gorm:"size:20;default:pending;index" json:"status"`
	CreatedAt   time.Time    `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// GenerateID creates a new hash-based task ID like "tg-a1b2c3d4"
func GenerateID() string {
	bytes := make([]byte, IDByteLength)
	if _, err := rand.Read(bytes); err != nil {
		// crypto/rand failure indicates serious system issues - fail fast
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return IDPrefix + hex.EncodeToString(bytes)
}

// ValidateTitle trims the title and checks it is usable
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("title is required")
	}
	if len(title) > MaxTitleLength {
		return "", fmt.Errorf("title is too long (%d characters, max %d)", len(title), MaxTitleLength)
	}
	return title, nil
}

// BeforeCreate hook to generate ID and default status if not set
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = GenerateID()
	}
	if t.Status == "" {
		t.Status = graph.StatusPending
	}
	if !t.Status.Valid() {
		return &graph.InvalidStatusError{Value: string(t.Status)}
	}
	return nil
}

// IsCompleted returns true if the task is completed
func (t *Task) IsCompleted() bool {
	return t.Status == graph.StatusCompleted
}

// IsBlocked returns true if the task is blocked
func (t *Task) IsBlocked() bool {
	return t.Status == graph.StatusBlocked
}

// View returns the read view the graph core works with
func (t *Task) View() *graph.Task {
	return &graph.Task{ID: t.ID, Title: t.Title, Status: t.Status}
}

// StatusLabel returns a human-readable status string
func StatusLabel(s graph.Status) string {
	switch s {
	case graph.StatusPending:
		return "Pending"
	case graph.StatusInProgress:
		return "In Progress"
	case graph.StatusCompleted:
		return "Completed"
	case graph.StatusBlocked:
		return "Blocked"
	default:
		return "Unknown"
	}
}
