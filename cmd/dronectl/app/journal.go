package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roman-kulish/ardrone-link/internal/link"
	"github.com/roman-kulish/ardrone-link/internal/storage"
)

// recorderBufferFactor sizes the record channel relative to the batch size
const recorderBufferFactor = 4

// WithMaxBatchSize sets the maximum number of commands stored
// within a single database transaction.
func WithMaxBatchSize(size int) func(*journalRecorder) {
	return func(j *journalRecorder) {
		if size > 0 {
			j.maxBatchSize = size
		}
	}
}

// WithFlushInterval sets how often a partial batch is written
func WithFlushInterval(interval time.Duration) func(*journalRecorder) {
	return func(j *journalRecorder) {
		if interval > 0 {
			j.flushInterval = interval
		}
	}
}

// journalRecorder implements link.Journal on top of the command store. Records are
// buffered and written in batches by a single goroutine; when the buffer is full
// new records are dropped rather than blocking the sender.
type journalRecorder struct {
	store     storage.Store
	sessionID int64

	maxBatchSize  int
	flushInterval time.Duration

	mu      sync.RWMutex
	closed  bool
	records chan link.SentCommand

	stored  atomic.Uint64
	dropped atomic.Uint64

	wg     sync.WaitGroup
	logger *slog.Logger
}

func newJournalRecorder(store storage.Store, sessionID int64, logger *slog.Logger, options ...func(*journalRecorder)) *journalRecorder {
	j := journalRecorder{
		store:         store,
		sessionID:     sessionID,
		maxBatchSize:  defaultMaxBatchSize,
		flushInterval: defaultFlushInterval,
		logger:        logger.With(slog.String("component", "journal"), slog.Int64("session", sessionID)),
	}

	for _, option := range options {
		option(&j)
	}

	j.records = make(chan link.SentCommand, j.maxBatchSize*recorderBufferFactor)

	j.wg.Add(1)
	go j.run()

	return &j
}

// Record implements link.Journal and never blocks
func (j *journalRecorder) Record(c link.SentCommand) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		j.dropped.Add(1)
		return
	}

	select {
	case j.records <- c:
	default:
		j.dropped.Add(1)
	}
}

// Close flushes pending records and stops the writer
func (j *journalRecorder) Close() {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return
	}
	j.closed = true
	close(j.records)
	j.mu.Unlock()

	j.wg.Wait()

	if n := j.dropped.Load(); n > 0 {
		j.logger.Warn(fmt.Sprintf("%d journal records dropped", n))
	}
}

func (j *journalRecorder) Stored() uint64 {
	return j.stored.Load()
}

func (j *journalRecorder) Dropped() uint64 {
	return j.dropped.Load()
}

func (j *journalRecorder) run() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.flushInterval)
	defer ticker.Stop()

	batch := make([]*storage.Command, 0, j.maxBatchSize)

	for {
		select {
		case c, ok := <-j.records:
			if !ok {
				j.flush(batch)
				return
			}

			batch = append(batch, toStorageCommand(c))
			if len(batch) >= j.maxBatchSize {
				j.flush(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			j.flush(batch)
			batch = batch[:0]
		}
	}
}

func (j *journalRecorder) flush(batch []*storage.Command) {
	if len(batch) == 0 {
		return
	}

	if err := j.store.StoreCommands(context.Background(), j.sessionID, batch); err != nil {
		j.dropped.Add(uint64(len(batch)))
		j.logger.Error(fmt.Sprintf("error storing commands: %s", err.Error()), slog.Int("batch", len(batch)))
		return
	}

	j.stored.Add(uint64(len(batch)))
	j.logger.Debug("commands stored", slog.Int("batch", len(batch)))
}

func toStorageCommand(c link.SentCommand) *storage.Command {
	return &storage.Command{
		Sequence:    c.Sequence,
		Kind:        c.Kind.String(),
		Description: c.Description,
		Frame:       c.Frame,
		Accepted:    c.Accepted,
		SentAt:      c.SentAt,
	}
}

var _ link.Journal = (*journalRecorder)(nil)
