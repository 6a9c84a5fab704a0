package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CommandReader provides an iterator-based interface for reading journaled commands
// with optional kind and time filtering.
type CommandReader interface {
	// Session returns the session this reader is accessing.
	Session() *Session

	// Next advances the iterator and returns true if there is another command
	// to read, false when the iteration is complete or if an error occurred.
	Next(context.Context) bool

	// Current returns the current command in the iteration.
	// If called after Next() returns false, the behavior is undefined.
	Current() *Command

	// Error returns any error that occurred during iteration.
	// If Next() returns false, Error() should be checked to distinguish between
	// end of data and an error condition.
	Error() error

	// Close releases any resources associated with the reader.
	// After Close is called, the reader should not be used.
	Close() error
}

// ReaderOption configures a CommandReader with specific filtering criteria.
type ReaderOption func(*SqliteCommandReader)

// WithKind restricts the reader to commands of one kind, e.g. "Move"
func WithKind(kind string) ReaderOption {
	return func(r *SqliteCommandReader) {
		r.kind = &kind
	}
}

// WithStartTime excludes commands sent before t
func WithStartTime(t time.Time) ReaderOption {
	return func(r *SqliteCommandReader) {
		t = t.UTC()
		r.startTime = &t
	}
}

// WithEndTime excludes commands sent after t
func WithEndTime(t time.Time) ReaderOption {
	return func(r *SqliteCommandReader) {
		t = t.UTC()
		r.endTime = &t
	}
}

// WithTimeRange sets both start and end time filters.
func WithTimeRange(startTime, endTime time.Time) ReaderOption {
	return func(r *SqliteCommandReader) {
		WithStartTime(startTime)(r)
		WithEndTime(endTime)(r)
	}
}

// WithRejectedOnly restricts the reader to commands the socket did not accept
func WithRejectedOnly() ReaderOption {
	return func(r *SqliteCommandReader) {
		r.rejectedOnly = true
	}
}

// SqliteCommandReader implements CommandReader for SQLite database backend.
type SqliteCommandReader struct {
	db *sql.DB

	sessionID int64
	session   *Session

	kind         *string    // Optional kind filter
	startTime    *time.Time // Optional start of time range filter
	endTime      *time.Time // Optional end of time range filter
	rejectedOnly bool

	current *Command
	rows    *sql.Rows
	err     error
}

// newSqliteCommandReader creates a new CommandReader reading commands from a database,
// applying optional filters.
func newSqliteCommandReader(ctx context.Context, db *sql.DB, sessionID int64, opts ...ReaderOption) (*SqliteCommandReader, error) {
	r := &SqliteCommandReader{
		db:        db,
		sessionID: sessionID,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return r, nil
}

func (r *SqliteCommandReader) init(ctx context.Context) error {
	if r.db == nil {
		return errors.New("database connection required")
	}
	if r.sessionID <= 0 {
		return errors.New("session ID required")
	}

	steps := []struct {
		msg string
		fn  func(context.Context) error
	}{
		{msg: "loading session", fn: r.loadSession},
		{msg: "validating filters", fn: r.validateFilters},
		{msg: "initializing query", fn: r.initQuery},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.msg, err)
		}
	}
	return nil
}

func (r *SqliteCommandReader) loadSession(ctx context.Context) (err error) {
	stmt, err := r.db.PrepareContext(ctx, selectSessionSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	var row sessionRow
	err = stmt.QueryRowContext(ctx, r.sessionID).Scan(&row.ID, &row.StartTime, &row.DroneAddress, &row.Config, &row.CommandCount)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %d", ErrSessionNotFound, r.sessionID)
	}
	if err != nil {
		return fmt.Errorf("querying session: %w", err)
	}

	r.session = toSession(&row)
	return
}

func (r *SqliteCommandReader) validateFilters(context.Context) error {
	if r.startTime != nil && r.endTime != nil && r.startTime.After(*r.endTime) {
		return fmt.Errorf("start time %s is after end time %s", r.startTime, r.endTime)
	}
	return nil
}

func (r *SqliteCommandReader) initQuery(ctx context.Context) (err error) {
	stmt, err := r.db.PrepareContext(ctx, selectCommandsSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	kind := toNullString(r.kind)

	r.rows, err = stmt.QueryContext(ctx,
		r.sessionID,
		kind, kind,
		r.startTime, r.startTime,
		r.endTime, r.endTime,
		r.rejectedOnly,
	)
	return err
}

func (r *SqliteCommandReader) Session() *Session {
	return r.session
}

func (r *SqliteCommandReader) Next(ctx context.Context) bool {
	if r.err != nil || r.rows == nil {
		return false
	}

	select {
	case <-ctx.Done():
		r.err = ctx.Err()
		return false
	default:
	}

	if !r.rows.Next() {
		return false
	}

	var c Command
	if r.err = r.rows.Scan(&c.ID, &c.SessionID, &c.Sequence, &c.Kind, &c.Description, &c.Frame, &c.Accepted, &c.SentAt); r.err != nil {
		r.err = fmt.Errorf("scanning command: %w", r.err)
		return false
	}

	r.current = &c
	return true
}

func (r *SqliteCommandReader) Current() *Command {
	return r.current
}

func (r *SqliteCommandReader) Error() error {
	if r.err != nil {
		return r.err
	}
	if r.rows != nil {
		return r.rows.Err()
	}
	return nil
}

func (r *SqliteCommandReader) Close() error {
	if r.rows != nil {
		err := r.rows.Close()
		r.current = nil
		r.rows = nil
		return err
	}
	return nil
}

var _ CommandReader = (*SqliteCommandReader)(nil)
