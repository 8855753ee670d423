package pipeline

import (
	"context"
	"time"
)

// Job defines the interface that every exported report must implement
type Job interface {
	// Name returns the report name, also used as the file name
	Name() string

	// Render builds the report as a table of CSV cells
	Render(ctx context.Context) (Table, error)
}

// Table is a rendered report: a header row followed by data rows
type Table struct {
	Header []string
	Rows   [][]string
}

// ExportConfig holds configuration for an export run
type ExportConfig struct {
	WorkerCount   int           // Number of concurrent report workers
	OutputDir     string        // Local directory runs are written under
	Prefix        string        // Object storage key prefix
	LockKey       string        // Key of the cross-process export lock
	LockTTL       time.Duration // Lock expiry, should exceed a full run
	RetryAttempts int           // Render attempts per report before giving up
	RetryBackoff  time.Duration // Wait between attempts
}

// DefaultExportConfig returns sensible defaults
func DefaultExportConfig(outputDir string) ExportConfig {
	return ExportConfig{
		WorkerCount:   4,
		OutputDir:     outputDir,
		Prefix:        "reports",
		LockKey:       "inventory:export:lock",
		LockTTL:       5 * time.Minute,
		RetryAttempts: 3,
		RetryBackoff:  2 * time.Second,
	}
}

// RunStatus represents the current state of an export run
type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// JobStatus represents the state of a single report job
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// ExportRun tracks a single execution of the report export
type ExportRun struct {
	ID           string       `json:"id"`
	Date         time.Time    `json:"date"`
	Status       RunStatus    `json:"status"`
	Dir          string       `json:"dir"`
	Jobs         []*JobResult `json:"jobs"`
	StartedAt    time.Time    `json:"started_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
	ErrorMessage string       `json:"error,omitempty"`
}

// JobResult tracks the rendering and upload of one report
type JobResult struct {
	Report       string     `json:"report"`
	Status       JobStatus  `json:"status"`
	Path         string     `json:"path,omitempty"`
	ObjectKey    string     `json:"object_key,omitempty"`
	Rows         int        `json:"rows"`
	Attempts     int        `json:"attempts"`
	ErrorMessage string     `json:"error,omitempty"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
}
