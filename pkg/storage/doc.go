/*
Package storage provides the pluggable persistence abstraction for metric
records.

# Store Interface

The hub uses an interface-based design to support multiple backends:
  - memory: In-memory storage for testing and development
  - badger: BadgerDB (LSM tree + Snappy compression) for persistent storage

All backends implement the Store interface:

	type Store interface {
	    Insert(ctx context.Context, records []metric.Record) error
	    Query(ctx context.Context, req QueryRequest) ([]metric.Record, error)
	    Stats(ctx context.Context) (*Stats, error)
	    Close() error
	}

Records are append-only. There is no update or delete path: imports only
ever insert, and all grouping and ordering is computed at query time. That
removes the need for row-level locking, so concurrent imports for different
uploads proceed independently.

# Ordering Guarantee

Query results are always ordered ascending by DateTime, with insertion order
breaking ties. The aggregation engine and the report exporter both rely on
this instead of sorting downstream.

# Usage Example

	store, err := badger.New(badger.Config{Path: "./data"})
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()

	err = store.Insert(ctx, []metric.Record{
	    {MetricID: 7, DateTime: ts, AggDay: 10, AggMonth: 1, AggYear: 2024},
	})

	records, err := store.Query(ctx, storage.QueryRequest{
	    MetricID: 7,
	    Start:    dayStart,
	    End:      dayStart.AddDate(0, 0, 1), // End is exclusive
	})

# See Also

  - memory.New() for in-memory storage
  - badger.New() for persistent BadgerDB storage
*/
package storage
