package entity

import (
	"time"

	"github.com/google/uuid"
)

// ImportJobStatus is the lifecycle of a background import
type ImportJobStatus string

const (
	ImportJobQueued    ImportJobStatus = "queued"
	ImportJobRunning   ImportJobStatus = "running"
	ImportJobCompleted ImportJobStatus = "completed"
	ImportJobFailed    ImportJobStatus = "failed"
)

// ImportJob tracks one bulk customer import. It lives in the cache, not the database.
type ImportJob struct {
	ID         uuid.UUID       `json:"id"`
	VendorID   uuid.UUID       `json:"vendor_id"`
	Status     ImportJobStatus `json:"status"`
	Total      int             `json:"total"`
	Imported   int             `json:"imported"`
	Skipped    int             `json:"skipped"`
	Errors     []string        `json:"errors,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}
