package storage

import (
	"context"
	"errors"

	_ "github.com/mattn/go-sqlite3"
)

// ErrSessionNotFound is returned when the requested session does not exist
var ErrSessionNotFound = errors.New("session not found")

// Store provides an interface for the command journal: which commands were sent to the drone,
// when, and whether the socket accepted them. It does not keep telemetry.
type Store interface {
	// CreateSession starts a new journal session and returns its unique identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - droneAddress: Address of the drone the session talks to
	//   - config: Optional session configuration. Can be string, []byte, or JSON-serializable object
	//
	// Returns:
	//   - sessionID: Unique identifier for the created session
	//   - error: If session creation fails or context is cancelled
	CreateSession(ctx context.Context, droneAddress string, config any) (sessionID int64, err error)

	// Session retrieves a session by its ID, with the number of journaled commands.
	// Returns ErrSessionNotFound if there is no such session.
	Session(ctx context.Context, id int64) (session *Session, err error)

	// Sessions returns all sessions ordered by start time in ascending order.
	Sessions(ctx context.Context) (sessions []*Session, err error)

	// StoreCommands saves a batch of sent commands for a session in a single transaction.
	// An empty batch is a no-op.
	StoreCommands(ctx context.Context, sessionID int64, commands []*Command) error

	// Commands returns every command of a session ordered by sequence number.
	Commands(ctx context.Context, sessionID int64) ([]*Command, error)

	// ReadCommands returns a reader iterating over the commands of a session that match
	// the given options. The reader must be closed after use.
	ReadCommands(ctx context.Context, sessionID int64, opts ...ReaderOption) (CommandReader, error)

	// Close releases all database connections and resources.
	// After Close is called, the store instance cannot be reused.
	// It is safe to call Close multiple times.
	Close() error
}

var _ Store = (*SqliteStore)(nil)
