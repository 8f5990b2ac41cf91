package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/metric"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/storage"
)

// Store keeps records in memory. Data is lost on restart.
// Useful for testing and development.
type Store struct {
	records []metric.Record
	nextID  uint64
	mu      sync.RWMutex
}

// New creates an in-memory storage backend
func New() *Store {
	return &Store{
		records: make([]metric.Record, 0, 1024),
		nextID:  1,
	}
}

// Insert stores records in memory, assigning surrogate IDs
func (s *Store) Insert(ctx context.Context, records []metric.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		r.ID = s.nextID
		s.nextID++
		s.records = append(s.records, r)
	}
	return nil
}

// Query retrieves records matching the request, ordered ascending by DateTime
func (s *Store) Query(ctx context.Context, req storage.QueryRequest) ([]metric.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []metric.Record
	for _, r := range s.records {
		if r.MetricID != req.MetricID {
			continue
		}
		if r.DateTime.Before(req.Start) || !r.DateTime.Before(req.End) {
			continue
		}
		results = append(results, r)
	}

	// Insertion order breaks DateTime ties (IDs are monotonic)
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].DateTime.Equal(results[j].DateTime) {
			return results[i].ID < results[j].ID
		}
		return results[i].DateTime.Before(results[j].DateTime)
	})

	return results, nil
}

// Stats returns storage statistics
func (s *Store) Stats(ctx context.Context) (*storage.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &storage.Stats{
		TotalRecords: uint64(len(s.records)),
	}

	if len(s.records) == 0 {
		return stats, nil
	}

	// Count distinct metric ids and find min/max timestamps in one pass
	metricIDs := make(map[int]bool)
	oldest := s.records[0].DateTime
	newest := s.records[0].DateTime

	for _, r := range s.records {
		metricIDs[r.MetricID] = true

		if r.DateTime.Before(oldest) {
			oldest = r.DateTime
		}
		if r.DateTime.After(newest) {
			newest = r.DateTime
		}
	}

	stats.DistinctMetrics = uint64(len(metricIDs))
	stats.OldestRecord = oldest
	stats.NewestRecord = newest

	// Rough size estimate (each record ~64 bytes)
	stats.SizeBytes = uint64(len(s.records)) * 64

	return stats, nil
}

// Close is a no-op for memory storage
func (s *Store) Close() error {
	return nil
}
