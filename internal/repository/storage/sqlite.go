package storage

import (
	"context"
	"database/sql"
	"fmt"

	// registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

const sqliteOptions = "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id               TEXT PRIMARY KEY,
	seed             TEXT NOT NULL,
	issued_at        INTEGER NOT NULL,
	starting_key     TEXT NOT NULL,
	second_key       TEXT NOT NULL,
	winner_key       TEXT NOT NULL,
	result           TEXT NOT NULL,
	starting_points  INTEGER NOT NULL,
	second_points    INTEGER NOT NULL,
	moves            INTEGER NOT NULL,
	created_at       INTEGER NOT NULL,
	UNIQUE (seed, issued_at)
);

CREATE INDEX IF NOT EXISTS matches_created_at ON matches (created_at);
`

type Storage struct {
	Connection *sql.DB
}

func NewSQLiteStorage(path string) (*Storage, error) {
	conn, err := sql.Open("sqlite", path+sqliteOptions)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &Storage{Connection: conn}, nil
}

// Init creates the match archive schema if it does not exist yet.
func (that *Storage) Init(ctx context.Context) error {
	if _, err := that.Connection.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("can't create tables: %w", err)
	}

	return nil
}

func (that *Storage) Close() error {
	return that.Connection.Close()
}
