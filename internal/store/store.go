// Package store persists extraction batches so past runs stay queryable.
package store

import (
	"context"

	"github.com/Molly166/LogParser/internal/model"
)

// BatchFilter specifies criteria for listing batches.
type BatchFilter struct {
	Status     model.BatchStatus `json:"status,omitempty"`
	SourcePath string            `json:"source_path,omitempty"`
	Limit      int               `json:"limit,omitempty"`
}

// Store defines the persistence interface for extraction results.
type Store interface {
	CreateBatch(ctx context.Context, sourcePath string) (*model.Batch, error)
	SaveRecord(ctx context.Context, batchID string, rec model.Record) error
	FinishBatch(ctx context.Context, batchID string, stats model.Stats) error
	GetBatch(ctx context.Context, batchID string) (*model.Batch, error)
	ListBatches(ctx context.Context, filter BatchFilter) ([]model.Batch, error)
	ListRecords(ctx context.Context, batchID string) ([]model.Record, error)

	Migrate(ctx context.Context) error
	Close() error
}
