package database

import (
	"context"
	"fmt"
)

// schema is the registry schema, applied idempotently at startup. The
// single table is small enough that versioned migrations would be
// overkill; new columns get ALTER TABLE guards here if ever needed.
const schema = `
CREATE TABLE IF NOT EXISTS devices (
	name        TEXT PRIMARY KEY,
	first_seen  TEXT NOT NULL,
	last_seen   TEXT NOT NULL,
	event_count INTEGER NOT NULL DEFAULT 0
);
`

// ensureSchema creates the registry tables if they do not exist.
func (db *DB) ensureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensuring registry schema: %w", err)
	}
	return nil
}
