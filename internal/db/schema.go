package db

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS pix_charges (
	id          TEXT PRIMARY KEY,
	reference   TEXT NOT NULL,
	amount      TEXT NOT NULL,
	description TEXT,
	code        TEXT NOT NULL,
	created_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pix_charges_reference ON pix_charges (reference);

CREATE TABLE IF NOT EXISTS logs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	subsystem  TEXT NOT NULL,
	level      TEXT NOT NULL,
	message    TEXT NOT NULL,
	metadata   TEXT,
	created_at DATETIME NOT NULL
);
`

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
