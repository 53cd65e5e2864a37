package conversation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	history    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteStore keeps each history as one JSON document per row in a local
// SQLite file. It suits single-instance deployments without a database server.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping failed: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Get(ctx context.Context, id string) (History, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT history FROM conversations WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return History{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get %s: %w", id, err)
	}
	return UnmarshalHistory([]byte(data))
}

func (s *SQLiteStore) Put(ctx context.Context, id string, history History) error {
	data, err := MarshalHistory(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, history, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET history = excluded.history, updated_at = excluded.updated_at`,
		id, string(data))
	if err != nil {
		return fmt.Errorf("sqlite put %s: %w", id, err)
	}
	return nil
}
