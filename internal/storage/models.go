package storage

import (
	"database/sql"
	"time"
)

// Session is one connection to a drone
type Session struct {
	ID           int64
	StartTime    time.Time
	DroneAddress string
	Config       *string // configuration the session ran with, as JSON
	CommandCount int64
}

// Command is a journaled send attempt
type Command struct {
	ID          int64
	SessionID   int64
	Sequence    uint32
	Kind        string
	Description string
	Frame       string // the exact AT frame, including the trailing carriage return
	Accepted    bool   // the socket accepted the datagram
	SentAt      time.Time
}

type commandData struct {
	SessionID   int64
	Sequence    int64
	Kind        string
	Description string
	Frame       string
	Accepted    bool
	SentAt      time.Time
}

type sessionRow struct {
	ID           int64
	StartTime    time.Time
	DroneAddress string
	Config       sql.NullString
	CommandCount int64
}
