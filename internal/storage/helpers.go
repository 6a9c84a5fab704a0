package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && cErr != sql.ErrTxDone && *err == nil {
		*err = cErr
	}
}

func toConfigData(config any) (sql.NullString, error) {
	var configData sql.NullString

	switch v := config.(type) {
	case nil:
		return configData, nil

	case string:
		configData.String = v

	case []byte:
		configData.String = string(v)

	default:
		p, err := json.Marshal(config)
		if err != nil {
			return configData, fmt.Errorf("marshaling config: %w", err)
		}
		configData.String = string(p)
	}

	configData.Valid = true
	return configData, nil
}

func toCommandData(sessionID int64, c *Command) *commandData {
	return &commandData{
		SessionID:   sessionID,
		Sequence:    int64(c.Sequence),
		Kind:        c.Kind,
		Description: c.Description,
		Frame:       c.Frame,
		Accepted:    c.Accepted,
		SentAt:      c.SentAt.UTC(),
	}
}

func toSession(r *sessionRow) *Session {
	s := Session{
		ID:           r.ID,
		StartTime:    r.StartTime,
		DroneAddress: r.DroneAddress,
		CommandCount: r.CommandCount,
	}
	if r.Config.Valid {
		s.Config = &r.Config.String
	}
	return &s
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
