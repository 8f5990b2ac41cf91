package storage

import (
	"context"
	"time"

	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/metric"
)

// Store defines the interface for metric record persistence backends.
// Implementations: memory (testing), badger (production)
type Store interface {
	// Insert durably persists a batch of records, assigning each a
	// unique surrogate ID. Insert is append-only: it never overwrites
	// or removes existing records.
	Insert(ctx context.Context, records []metric.Record) error

	// Query retrieves records matching the request, ordered ascending
	// by DateTime (ties broken by insertion order).
	Query(ctx context.Context, req QueryRequest) ([]metric.Record, error)

	// Stats returns storage statistics
	Stats(ctx context.Context) (*Stats, error)

	// Close cleanly shuts down the storage
	Close() error
}

// QueryRequest specifies which records to retrieve
type QueryRequest struct {
	// MetricID filters to records of exactly this metric id.
	MetricID int

	// Time window: Start is inclusive, End is exclusive. Callers that
	// want a whole final day pass the start of the following day as End.
	Start time.Time
	End   time.Time
}

// Stats provides storage health and usage info
type Stats struct {
	// Total records stored
	TotalRecords uint64

	// Distinct metric ids seen across all records
	DistinctMetrics uint64

	// Storage size in bytes
	SizeBytes uint64

	// Oldest and newest record timestamps
	OldestRecord time.Time
	NewestRecord time.Time
}
