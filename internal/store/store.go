// Package store persists curated record batches and their quality
// reports. SQLite is the default for single-operator runs; Postgres is
// available for the shared instance.
package store

import (
	"context"

	"github.com/koukamap/curator/internal/model"
	"github.com/koukamap/curator/internal/report"
)

// RecordFilter specifies criteria for listing stored records.
type RecordFilter struct {
	Prefecture string      `json:"prefecture,omitempty"`
	Grade      model.Grade `json:"grade,omitempty"`
	MinScore   float64     `json:"min_score,omitempty"`
	Limit      int         `json:"limit,omitempty"`
}

// Store defines the persistence interface for the curation pipeline.
type Store interface {
	// Records
	SaveBatch(ctx context.Context, batchID string, records []model.Record) error
	ListRecords(ctx context.Context, filter RecordFilter) ([]model.Record, error)

	// Reports
	SaveReport(ctx context.Context, batchID string, rep report.Report) error
	GetReport(ctx context.Context, batchID string) (*report.Report, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
