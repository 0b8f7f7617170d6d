package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Job is one enhancement job record.
type Job struct {
	ID           uuid.UUID      `json:"id"`
	UserID       uuid.UUID      `json:"user_id"`
	Mode         string         `json:"mode"`
	Model        string         `json:"model"`
	OutputFormat string         `json:"output_format"`
	ProcessID    sql.NullString `json:"process_id,omitempty"`
	Status       string         `json:"status"`
	Progress     int            `json:"progress"`
	ErrorMessage sql.NullString `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// JobFile is a stored artifact produced by a job.
type JobFile struct {
	ID          uuid.UUID     `json:"id"`
	JobID       uuid.UUID     `json:"job_id"`
	UserID      uuid.UUID     `json:"user_id"`
	Filename    string        `json:"filename"`
	StoragePath string        `json:"storage_path"`
	StorageURL  string        `json:"storage_url"`
	FileSize    sql.NullInt64 `json:"file_size,omitempty"`
	MimeType    string        `json:"mime_type"`
	CreatedAt   time.Time     `json:"created_at"`
}
