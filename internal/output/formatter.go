package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskgraph/internal/graph"
	"taskgraph/internal/models"
	"taskgraph/internal/service"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Task(v *service.TaskView)
	TaskList(tasks []models.Task, title string)
	TaskBrief(t *models.Task)
	Cascade(res *graph.Result)
	CircularCheck(c *graph.CircularCheck)
	History(entries []models.TaskHistory)
	Stats(s *service.Stats)
	Success(msg string)
	Error(err error)
	Info(msg string)
	KeyValue(key, value string)
	Section(title string)
	JSON(v interface{})
}

// TextFormatter outputs human-readable text
type TextFormatter struct{}

// JSONFormatter outputs JSON
type JSONFormatter struct{}

// New returns the appropriate formatter based on json flag
func New(jsonOutput bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &TextFormatter{}
}

var statusStyles = map[graph.Status]lipgloss.Style{
	graph.StatusPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	graph.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	graph.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	graph.StatusBlocked:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// RenderStatus colours a status for terminal output.
func RenderStatus(s graph.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		return string(s)
	}
	return style.Render(string(s))
}

// TextFormatter implementations

func (f *TextFormatter) Task(v *service.TaskView) {
	fmt.Printf("ID:         %s\n", v.ID)
	fmt.Printf("Title:      %s\n", v.Title)
	fmt.Printf("Status:     %s\n", RenderStatus(v.Status))
	if v.Description != "" {
		fmt.Printf("Desc:       %s\n", v.Description)
	}
	if len(v.Dependencies) > 0 {
		fmt.Printf("Depends on: %s\n", strings.Join(v.Dependencies, ", "))
	}
	if len(v.Dependents) > 0 {
		fmt.Printf("Needed by:  %s\n", strings.Join(v.Dependents, ", "))
	}
	fmt.Printf("Created:    %s\n", v.CreatedAt.Format(models.DateTimeShortFormat))
	fmt.Printf("Updated:    %s\n", v.UpdatedAt.Format(models.DateTimeShortFormat))
}

func (f *TextFormatter) TaskList(tasks []models.Task, title string) {
	if title != "" {
		fmt.Printf("%s (%d):\n", headerStyle.Render(title), len(tasks))
	}
	for i := range tasks {
		f.TaskBrief(&tasks[i])
	}
}

func (f *TextFormatter) TaskBrief(t *models.Task) {
	fmt.Printf("[%s] %s - %s\n", t.ID, RenderStatus(t.Status), t.Title)
}

func (f *TextFormatter) Cascade(res *graph.Result) {
	if !res.Changed() {
		return
	}
	fmt.Printf("Status changes (%d):\n", len(res.Changes))
	for _, c := range res.Changes {
		fmt.Printf("%s%s: %s -> %s\n", strings.Repeat("  ", c.Depth+1), c.TaskID, c.From, RenderStatus(c.To))
	}
}

func (f *TextFormatter) CircularCheck(c *graph.CircularCheck) {
	if !c.Circular {
		fmt.Println(c.Reason)
		return
	}
	fmt.Println(errorStyle.Render("Circular dependency detected"))
	fmt.Printf("Path: %s\n", strings.Join(c.Path, " -> "))
	if len(c.PathTitles) > 0 {
		fmt.Printf("      %s\n", strings.Join(c.PathTitles, " -> "))
	}
}

func (f *TextFormatter) History(entries []models.TaskHistory) {
	if len(entries) == 0 {
		fmt.Println("No history")
		return
	}
	for _, e := range entries {
		when := e.ChangedAt.Format(models.DateTimeFormat)
		switch {
		case e.OldValue == "":
			fmt.Printf("%s  %-12s %s (%s)\n", when, e.Field, e.NewValue, e.ChangedBy)
		case e.NewValue == "":
			fmt.Printf("%s  %-12s removed %s (%s)\n", when, e.Field, e.OldValue, e.ChangedBy)
		default:
			fmt.Printf("%s  %-12s %s -> %s (%s)\n", when, e.Field, e.OldValue, e.NewValue, e.ChangedBy)
		}
	}
}

func (f *TextFormatter) Stats(s *service.Stats) {
	fmt.Printf("Tasks:        %d\n", s.Total)
	for _, st := range graph.AllStatuses() {
		fmt.Printf("  %-12s %d\n", RenderStatus(st), s.ByStatus[st])
	}
	fmt.Printf("Dependencies: %d\n", s.Dependencies)
}

func (f *TextFormatter) Success(msg string) {
	fmt.Println(msg)
}

func (f *TextFormatter) Error(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func (f *TextFormatter) Info(msg string) {
	fmt.Println(msg)
}

func (f *TextFormatter) KeyValue(key, value string) {
	fmt.Printf("%s: %s\n", key, value)
}

func (f *TextFormatter) Section(title string) {
	fmt.Printf("\n%s:\n", headerStyle.Render(title))
}

func (f *TextFormatter) JSON(v interface{}) {
	// TextFormatter doesn't output JSON, but provide fallback
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		f.Error(err)
		return
	}
	fmt.Println(string(data))
}

// JSONFormatter implementations

func (f *JSONFormatter) Task(v *service.TaskView) {
	f.JSON(v)
}

func (f *JSONFormatter) TaskList(tasks []models.Task, title string) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	f.JSON(map[string]interface{}{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (f *JSONFormatter) TaskBrief(t *models.Task) {
	f.JSON(t)
}

func (f *JSONFormatter) Cascade(res *graph.Result) {
	f.JSON(res)
}

func (f *JSONFormatter) CircularCheck(c *graph.CircularCheck) {
	f.JSON(c)
}

func (f *JSONFormatter) History(entries []models.TaskHistory) {
	if entries == nil {
		entries = []models.TaskHistory{}
	}
	f.JSON(map[string]interface{}{
		"count":   len(entries),
		"history": entries,
	})
}

func (f *JSONFormatter) Stats(s *service.Stats) {
	f.JSON(s)
}

func (f *JSONFormatter) Success(msg string) {
	f.JSON(map[string]interface{}{"success": true, "message": msg})
}

func (f *JSONFormatter) Error(err error) {
	f.JSON(ErrorPayload(err))
}

func (f *JSONFormatter) Info(msg string) {
	f.JSON(map[string]interface{}{"message": msg})
}

func (f *JSONFormatter) KeyValue(key, value string) {
	f.JSON(map[string]string{key: value})
}

func (f *JSONFormatter) Section(title string) {
	// JSON doesn't need section headers
}

func (f *JSONFormatter) JSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, `{"error": true, "message": "JSON marshal error: %s"}`+"\n", err.Error())
		return
	}
	fmt.Println(string(data))
}
