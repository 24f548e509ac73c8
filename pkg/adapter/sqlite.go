package adapter

import (
	"context"
	"database/sql"

	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"
)

// sqliteStore keeps all keys in a single blobs table
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and initializes if needed) a SQLite-backed KVStore
func NewSQLiteStore(path string) (KVStore, error) {
	if path == "" {
		return nil, goerr.New("sqlite database path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS blobs (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to initialize blobs table")
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, goerr.Wrap(err, "failed to query value", goerr.V("key", key))
	}
	return value, true, nil
}

func (s *sqliteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return goerr.Wrap(err, "failed to upsert value", goerr.V("key", key))
	}
	return nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
