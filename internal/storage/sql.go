package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

const (
	initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_commands_session_sequence ON commands (session_id, sequence);
CREATE INDEX IF NOT EXISTS idx_commands_session_sent_at ON commands (session_id, sent_at);`

	insertSessionSQL = `
INSERT INTO sessions (
                      start_time, 
                      drone_address, 
                      config) 
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	selectSessionSQL = `
SELECT 
    s.id, 
    s.start_time, 
    s.drone_address, 
    s.config,
    COUNT(c.id)
FROM sessions s
LEFT JOIN commands c ON c.session_id = s.id
WHERE 
    s.id = ?
GROUP BY s.id`

	selectSessionsSQL = `
SELECT 
    s.id, 
    s.start_time, 
    s.drone_address, 
    s.config,
    COUNT(c.id)
FROM sessions s
LEFT JOIN commands c ON c.session_id = s.id
GROUP BY s.id
ORDER BY s.start_time, s.id`

	insertCommandSQL = `
    INSERT INTO commands (
        session_id,
        sequence,
        kind,
        description,
        frame,
        accepted,
        sent_at
    )
    VALUES `

	selectCommandsSQL = `
SELECT 
    id,
    session_id,
    sequence,
    kind,
    description,
    frame,
    accepted,
    sent_at
FROM commands
WHERE 
    session_id = ?
    AND (? IS NULL OR kind = ?)
    AND (? IS NULL OR sent_at >= ?)
    AND (? IS NULL OR sent_at <= ?)
    AND (? = 0 OR accepted = 0)
ORDER BY sequence, id`
)
