package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/config"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/metric"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/storage"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrEmptyUpload is returned when the stream ends before a header row.
// It marks bad caller input rather than a stream or storage failure.
var ErrEmptyUpload = errors.New("uploaded file contains no header row")

// Pipeline drives an uploaded CSV byte stream through parsing, per-row
// normalization and batched persistence.
//
// Each run is a single reader feeding one writer goroutine over a bounded
// channel: parsing the next rows never blocks on a flush in progress, but
// batches commit strictly in the order their rows were read. Run only
// returns success after the writer has confirmed every batch durable.
type Pipeline struct {
	store     storage.Store
	batchSize int
	now       func() time.Time
}

// NewPipeline creates an import pipeline writing to store in batches of
// batchSize records (<= 0 selects the default of 1000).
func NewPipeline(store storage.Store, batchSize int) *Pipeline {
	if batchSize <= 0 {
		batchSize = config.DefaultBatchSize
	}
	return &Pipeline{
		store:     store,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Result reports what an import run accomplished. On a fatal error the
// counts still reflect batches that were already durably written; committed
// batches are never rolled back.
type Result struct {
	RecordsWritten int `json:"recordsWritten"`
	RowsDiscarded  int `json:"rowsDiscarded"`
	BatchesWritten int `json:"batchesWritten"`
}

// flushOutcome is the writer goroutine's final word: how much it committed
// and whether it failed. Sent exactly once.
type flushOutcome struct {
	batches int
	records int
	err     error
}

// Run imports one CSV stream. A malformed row is discarded and counted;
// a stream read error or a failed batch flush is fatal and aborts the run.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (*Result, error) {
	br := bufio.NewReader(r)
	if err := stripBOM(br); err != nil {
		return &Result{}, fmt.Errorf("failed to read upload stream: %w", err)
	}

	cr := csv.NewReader(br)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return &Result{}, ErrEmptyUpload
	}
	if err != nil {
		return &Result{}, fmt.Errorf("failed to read header row: %w", err)
	}
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	res := &Result{}

	batchCh := make(chan []metric.Record, 1)
	writerDone := make(chan error, 1)
	var outcome flushOutcome
	outcomeReady := make(chan struct{})

	go func() {
		defer close(outcomeReady)
		for batch := range batchCh {
			if err := p.store.Insert(ctx, batch); err != nil {
				outcome.err = fmt.Errorf("failed to flush batch %d: %w", outcome.batches+1, err)
				writerDone <- outcome.err
				return
			}
			outcome.batches++
			outcome.records += len(batch)
		}
		writerDone <- nil
	}()

	// finish closes the feed, waits for the writer's confirmation and
	// folds its counts into the result. Called on every exit path so
	// completion is never signaled while a flush is still in flight.
	finish := func(runErr error) (*Result, error) {
		close(batchCh)
		<-outcomeReady
		res.RecordsWritten = outcome.records
		res.BatchesWritten = outcome.batches
		if runErr != nil {
			return res, runErr
		}
		return res, outcome.err
	}

	send := func(batch []metric.Record) error {
		select {
		case batchCh <- batch:
			return nil
		case err := <-writerDone:
			// Writer already gave up; stop feeding it.
			return err
		}
	}

	var batch []metric.Record
	var rowCount int

	for {
		if rowCount%1000 == 0 {
			select {
			case <-ctx.Done():
				return finish(ctx.Err())
			default:
			}
		}

		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A row with the wrong number of fields is malformed, not
			// fatal; anything else means the stream itself is broken.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
				res.RowsDiscarded++
				log.Printf("⚠️  Discarding row %d [%x]: wrong field count", parseErr.Line, rowFingerprint(fields))
				continue
			}
			return finish(fmt.Errorf("failed to read upload stream: %w", err))
		}
		rowCount++

		row := make(map[string]string, len(columns))
		for i, name := range columns {
			if i < len(fields) {
				row[name] = strings.TrimSpace(fields[i])
			}
		}

		rec, err := NormalizeRow(row, p.now())
		if err != nil {
			res.RowsDiscarded++
			log.Printf("⚠️  Discarding row [%x]: %v", rowFingerprint(fields), err)
			continue
		}

		batch = append(batch, rec)
		if len(batch) >= p.batchSize {
			if err := send(batch); err != nil {
				return finish(err)
			}
			batch = nil
		}
	}

	if len(batch) > 0 {
		if err := send(batch); err != nil {
			return finish(err)
		}
	}

	return finish(nil)
}

// stripBOM removes a leading UTF-8 byte-order-mark, if present, before any
// row splitting happens.
func stripBOM(br *bufio.Reader) error {
	b, err := br.Peek(len(utf8BOM))
	if err != nil {
		if err == io.EOF {
			return nil // stream shorter than a BOM, let the CSV reader report it
		}
		return err
	}
	if bytes.Equal(b, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return err
		}
	}
	return nil
}

// rowFingerprint hashes a raw row so discarded-row warnings can be
// correlated with the source file without logging its full contents.
func rowFingerprint(fields []string) uint64 {
	return xxhash.Sum64String(strings.Join(fields, ";"))
}
