package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/metric"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/storage"
)

// recordIDKey names the badger sequence used for surrogate record IDs.
var recordIDKey = []byte("!metricshub!record_id")

// seqBandwidth is how many IDs a sequence lease reserves at once.
// Leased-but-unused IDs leave gaps on restart, which is fine: IDs only
// need to be unique and monotonic within an import.
const seqBandwidth = 1000

// Store implements storage.Store using BadgerDB (LSM tree)
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Config holds BadgerDB configuration
type Config struct {
	// Path to store database files
	Path string

	// InMemory mode (for testing)
	InMemory bool

	// MaxMemoryMB limits BadgerDB memory usage in MB (0 = conservative default).
	// Recommended: 64-128 MB for local dev, 256-512 MB for production
	MaxMemoryMB int64
}

// New creates a BadgerDB storage backend
func New(cfg Config) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)

	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}

	// Badger's defaults assume a dedicated database host. The hub shares
	// its process with the HTTP server, so cap the memtable and caches.
	memTableSize := int64(16 * 1024 * 1024)
	if cfg.MaxMemoryMB > 0 {
		memTableSize = cfg.MaxMemoryMB * 1024 * 1024 / 3 // ~33% for memtable
	}

	opts = opts.
		WithCompression(options.Snappy).
		WithNumVersionsToKeep(1). // records are append-only, no versioning
		WithMemTableSize(memTableSize).
		WithNumMemtables(3).
		WithBlockCacheSize(memTableSize / 2).
		WithIndexCacheSize(memTableSize / 4).
		WithNumCompactors(2).
		WithValueThreshold(1024). // records are small, keep them in the LSM
		WithValueLogFileSize(64 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	seq, err := db.GetSequence(recordIDKey, seqBandwidth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open record id sequence: %w", err)
	}

	return &Store{db: db, seq: seq}, nil
}

// Insert durably persists records, assigning each a surrogate ID.
// Enforces context timeout/cancellation to prevent indefinite blocking.
func (s *Store) Insert(ctx context.Context, records []metric.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- s.db.Update(func(txn *badger.Txn) error {
			for i := range records {
				// Check context periodically (every 100 records)
				if i%100 == 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
				}

				id, err := s.seq.Next()
				if err != nil {
					return fmt.Errorf("failed to allocate record id: %w", err)
				}
				records[i].ID = id

				value, err := json.Marshal(records[i])
				if err != nil {
					return fmt.Errorf("failed to encode record: %w", err)
				}

				key := makeKey(records[i].MetricID, records[i].DateTime, id)
				if err := txn.Set(key, value); err != nil {
					return fmt.Errorf("failed to write record: %w", err)
				}
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// Context cancelled while waiting for the transaction to commit
		return fmt.Errorf("insert operation cancelled: %w", ctx.Err())
	}
}

// Query retrieves records for one metric id within [Start, End), ordered
// ascending by DateTime. Keys sort as [metricID][timestamp][id], so a prefix
// scan already yields the required order.
func (s *Store) Query(ctx context.Context, req storage.QueryRequest) ([]metric.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type queryResult struct {
		records []metric.Record
		err     error
	}
	done := make(chan queryResult, 1)

	go func() {
		var res queryResult
		res.err = s.db.View(func(txn *badger.Txn) error {
			prefix := metricPrefix(req.MetricID)

			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchSize = 100

			it := txn.NewIterator(opts)
			defer it.Close()

			seek := append(append([]byte{}, prefix...), timestampBytes(req.Start)...)
			var iterCount int

			for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
				iterCount++

				// Check for context cancellation every 1000 iterations
				if iterCount%1000 == 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
				}

				item := it.Item()

				// End is exclusive; keys past it terminate the scan
				if !parseKeyTime(item.Key()).Before(req.End) {
					break
				}

				err := item.Value(func(val []byte) error {
					var r metric.Record
					if err := json.Unmarshal(val, &r); err != nil {
						return fmt.Errorf("failed to decode record: %w", err)
					}
					res.records = append(res.records, r)
					return nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
		done <- res
	}()

	select {
	case res := <-done:
		return res.records, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("query operation cancelled: %w", ctx.Err())
	}
}

// Stats returns storage statistics
func (s *Store) Stats(ctx context.Context) (*storage.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type statsResult struct {
		stats *storage.Stats
		err   error
	}
	done := make(chan statsResult, 1)

	go func() {
		var res statsResult
		stats := &storage.Stats{}

		res.err = s.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false

			it := txn.NewIterator(opts)
			defer it.Close()

			metricIDs := make(map[int]bool)
			var oldest, newest time.Time
			var iterCount int

			for it.Rewind(); it.Valid(); it.Next() {
				iterCount++

				if iterCount%1000 == 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
				}

				key := it.Item().Key()
				if len(key) != keyLength {
					continue // internal keys (id sequence)
				}

				stats.TotalRecords++
				metricIDs[parseKeyMetricID(key)] = true

				ts := parseKeyTime(key)
				if oldest.IsZero() || ts.Before(oldest) {
					oldest = ts
				}
				if newest.IsZero() || ts.After(newest) {
					newest = ts
				}
			}

			stats.DistinctMetrics = uint64(len(metricIDs))
			stats.OldestRecord = oldest
			stats.NewestRecord = newest
			return nil
		})

		if res.err == nil {
			lsmSize, vlogSize := s.db.Size()
			stats.SizeBytes = uint64(lsmSize + vlogSize)
		}

		res.stats = stats
		done <- res
	}()

	select {
	case res := <-done:
		return res.stats, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("stats operation cancelled: %w", ctx.Err())
	}
}

// RunGC runs BadgerDB's value log garbage collection to reclaim disk space.
// discardRatio: run GC if this fraction of a file can be discarded (0.5 = 50%).
func (s *Store) RunGC(discardRatio float64) error {
	return s.db.RunValueLogGC(discardRatio)
}

// Close releases the ID sequence and shuts down BadgerDB cleanly
func (s *Store) Close() error {
	if err := s.seq.Release(); err != nil {
		s.db.Close()
		return fmt.Errorf("failed to release record id sequence: %w", err)
	}
	return s.db.Close()
}

// Key layout: [metricID (8 bytes)][timestamp (8 bytes)][record id (8 bytes)],
// all big-endian so byte order equals (metric, time, insertion) order.
// The timestamp is UnixNano with the sign bit flipped: a plain uint64 cast
// would make pre-1970 timestamps (negative nanos) sort after every modern
// key and leak into later query windows.
const keyLength = 24

const tsSignBit = uint64(1) << 63

func makeKey(metricID int, ts time.Time, id uint64) []byte {
	key := make([]byte, keyLength)
	binary.BigEndian.PutUint64(key[0:8], uint64(metricID))
	binary.BigEndian.PutUint64(key[8:16], encodeTimestamp(ts))
	binary.BigEndian.PutUint64(key[16:24], id)
	return key
}

func metricPrefix(metricID int) []byte {
	prefix := make([]byte, 8)
	binary.BigEndian.PutUint64(prefix, uint64(metricID))
	return prefix
}

func timestampBytes(ts time.Time) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, encodeTimestamp(ts))
	return b
}

func encodeTimestamp(ts time.Time) uint64 {
	return uint64(ts.UnixNano()) ^ tsSignBit
}

func parseKeyMetricID(key []byte) int {
	return int(binary.BigEndian.Uint64(key[0:8]))
}

func parseKeyTime(key []byte) time.Time {
	return time.Unix(0, int64(binary.BigEndian.Uint64(key[8:16])^tsSignBit))
}
