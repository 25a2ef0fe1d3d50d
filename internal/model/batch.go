package model

import "time"

// BatchStatus represents the state of a stored extraction batch.
type BatchStatus string

const (
	BatchStatusRunning  BatchStatus = "running"
	BatchStatusComplete BatchStatus = "complete"
)

// Batch groups the records extracted from one source file in one pass.
type Batch struct {
	ID         string      `json:"id"`
	SourcePath string      `json:"source_path"`
	Status     BatchStatus `json:"status"`
	Stats      Stats       `json:"stats"`
	CreatedAt  time.Time   `json:"created_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}
