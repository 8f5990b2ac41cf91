package badger

import (
	"context"
	"testing"
	"time"

	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/metric"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/storage"
)

func TestBadgerStore_InsertAndQuery(t *testing.T) {
	// Use in-memory mode for tests
	store, err := New(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2024, time.January, 2, 11, 0, 0, 0, time.UTC)

	records := []metric.Record{
		{MetricID: 7, DateTime: base.Add(time.Hour), AggDay: 20, AggMonth: 1, AggYear: 2024},
		{MetricID: 7, DateTime: base, AggDay: 10, AggMonth: 1, AggYear: 2024},
		{MetricID: 9, DateTime: base, AggDay: 99, AggMonth: 1, AggYear: 2024},
	}

	if err := store.Insert(ctx, records); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	results, err := store.Query(ctx, storage.QueryRequest{
		MetricID: 7,
		Start:    base.Add(-time.Hour),
		End:      base.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 records for metric 7, got %d", len(results))
	}
	if !results[0].DateTime.Before(results[1].DateTime) {
		t.Errorf("Results not ordered ascending: %v then %v", results[0].DateTime, results[1].DateTime)
	}
	if results[0].AggDay != 10 || results[1].AggDay != 20 {
		t.Errorf("Unexpected values: got %d, %d", results[0].AggDay, results[1].AggDay)
	}
}

func TestBadgerStore_QueryWindowIsHalfOpen(t *testing.T) {
	store, err := New(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	dayStart := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	records := []metric.Record{
		{MetricID: 3, DateTime: dayStart, AggDay: 1, AggMonth: 1, AggYear: 2024},
		{MetricID: 3, DateTime: dayStart.Add(23*time.Hour + 59*time.Minute), AggDay: 2, AggMonth: 1, AggYear: 2024},
		{MetricID: 3, DateTime: dayStart.AddDate(0, 0, 1), AggDay: 4, AggMonth: 1, AggYear: 2024},
	}
	if err := store.Insert(ctx, records); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	results, err := store.Query(ctx, storage.QueryRequest{
		MetricID: 3,
		Start:    dayStart,
		End:      dayStart.AddDate(0, 0, 1),
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	// The record at exactly End must be excluded
	if len(results) != 2 {
		t.Fatalf("Expected 2 records in [start, end), got %d", len(results))
	}
}

func TestBadgerStore_AssignsUniqueIDs(t *testing.T) {
	store, err := New(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	ts := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)

	// Two records with identical metric id and timestamp must both survive
	records := []metric.Record{
		{MetricID: 5, DateTime: ts, AggDay: 1, AggMonth: 1, AggYear: 2024},
		{MetricID: 5, DateTime: ts, AggDay: 2, AggMonth: 1, AggYear: 2024},
	}
	if err := store.Insert(ctx, records); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	results, err := store.Query(ctx, storage.QueryRequest{
		MetricID: 5,
		Start:    ts.Add(-time.Minute),
		End:      ts.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(results))
	}
	if results[0].ID == results[1].ID {
		t.Errorf("Surrogate IDs not unique: both %d", results[0].ID)
	}
}

func TestBadgerStore_Stats(t *testing.T) {
	store, err := New(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)

	records := []metric.Record{
		{MetricID: 1, DateTime: base, AggDay: 1, AggMonth: 1, AggYear: 2024},
		{MetricID: 1, DateTime: base.Add(time.Hour), AggDay: 1, AggMonth: 1, AggYear: 2024},
		{MetricID: 2, DateTime: base.Add(2 * time.Hour), AggDay: 1, AggMonth: 1, AggYear: 2024},
	}
	if err := store.Insert(ctx, records); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", stats.TotalRecords)
	}
	if stats.DistinctMetrics != 2 {
		t.Errorf("DistinctMetrics = %d, want 2", stats.DistinctMetrics)
	}
	if !stats.OldestRecord.Equal(base) {
		t.Errorf("OldestRecord = %v, want %v", stats.OldestRecord, base)
	}
	if !stats.NewestRecord.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("NewestRecord = %v, want %v", stats.NewestRecord, base.Add(2*time.Hour))
	}
}

func TestBadgerStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	ctx := context.Background()
	ts := time.Date(2024, time.May, 10, 9, 30, 0, 0, time.UTC)

	// Write with one instance
	{
		store, err := New(Config{Path: tmpDir})
		if err != nil {
			t.Fatalf("Failed to create storage: %v", err)
		}

		records := []metric.Record{
			{MetricID: 42, DateTime: ts, AggDay: 7, AggMonth: 1, AggYear: 2024},
		}
		if err := store.Insert(ctx, records); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	// Reopen and verify the record survived
	{
		store, err := New(Config{Path: tmpDir})
		if err != nil {
			t.Fatalf("Failed to reopen storage: %v", err)
		}
		defer store.Close()

		results, err := store.Query(ctx, storage.QueryRequest{
			MetricID: 42,
			Start:    ts.Add(-time.Minute),
			End:      ts.Add(time.Minute),
		})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("Expected 1 record after reopen, got %d", len(results))
		}
		if results[0].AggDay != 7 {
			t.Errorf("AggDay = %d, want 7", results[0].AggDay)
		}
	}
}

func TestBadgerStore_PreEpochTimestamps(t *testing.T) {
	store, err := New(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	old := time.Date(1960, time.January, 1, 10, 0, 0, 0, time.UTC)
	modern := time.Date(2024, time.January, 2, 11, 0, 0, 0, time.UTC)

	// The import layout accepts any year, so pre-1970 timestamps
	// (negative UnixNano) are legitimate stored data
	records := []metric.Record{
		{MetricID: 7, DateTime: old, AggDay: 1, AggMonth: 1, AggYear: 1960},
		{MetricID: 7, DateTime: modern, AggDay: 2, AggMonth: 1, AggYear: 2024},
	}
	if err := store.Insert(ctx, records); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// A modern window must not pick up the 1960 record
	results, err := store.Query(ctx, storage.QueryRequest{
		MetricID: 7,
		Start:    time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 record in the 2024 window, got %d", len(results))
	}
	if !results[0].DateTime.Equal(modern) {
		t.Errorf("Record outside window leaked into results: %v", results[0].DateTime)
	}

	// A pre-1970 window finds only the old record
	results, err = store.Query(ctx, storage.QueryRequest{
		MetricID: 7,
		Start:    time.Date(1959, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 1 || !results[0].DateTime.Equal(old) {
		t.Fatalf("Expected only the 1960 record, got %+v", results)
	}

	// A window spanning the epoch returns both, oldest first
	results, err = store.Query(ctx, storage.QueryRequest{
		MetricID: 7,
		Start:    time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected both records, got %d", len(results))
	}
	if !results[0].DateTime.Equal(old) || !results[1].DateTime.Equal(modern) {
		t.Errorf("Results not ordered across the epoch: %v then %v",
			results[0].DateTime, results[1].DateTime)
	}
}
