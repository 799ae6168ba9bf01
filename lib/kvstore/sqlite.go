// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kvstore

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SQLiteConfig holds the parameters for opening a SQLite store.
type SQLiteConfig struct {
	// Path is the filesystem path to the database file. The parent
	// directory must exist. Use ":memory:" only with PoolSize 1, since
	// each in-memory connection is an independent database.
	Path string

	// PoolSize is the number of pooled connections. Defaults to 2:
	// the engines issue one statement at a time and SQLite serializes
	// writes anyway.
	PoolSize int

	// Logger receives pool open/close messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger
}

// SQLite is a Store backed by a single table in a SQLite database.
type SQLite struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	path   string
}

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY NOT NULL,
	value TEXT NOT NULL
) WITHOUT ROWID;`

const upsertStatement = "INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value"

// OpenSQLite opens (creating if needed) the database at cfg.Path and
// ensures the kv table exists. The caller must call Close.
func OpenSQLite(cfg SQLiteConfig) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("kvstore: sqlite: Path is required")
	}
	logger := discardLogger(cfg.Logger)

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 2
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("kvstore: sqlite: opening %s: %w", cfg.Path, err)
	}

	logger.Info("kv store opened",
		"backend", BackendSQLite,
		"path", cfg.Path,
		"pool_size", poolSize,
	)

	return &SQLite{pool: pool, logger: logger, path: cfg.Path}, nil
}

// prepareConnection applies the standard pragmas and creates the
// schema. Runs once per pooled connection on first use.
func prepareConnection(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("kvstore: sqlite: %s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("kvstore: sqlite: creating schema: %w", err)
	}
	return nil
}

func (s *SQLite) Get(key string) (string, bool, error) {
	conn, err := s.pool.Take(context.Background())
	if err != nil {
		return "", false, fmt.Errorf("kvstore: sqlite: take: %w", err)
	}
	defer s.pool.Put(conn)

	var value string
	found := false
	err = sqlitex.Execute(conn, "SELECT value FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = stmt.ColumnText(0)
			found = true
			return nil
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("kvstore: sqlite: get %s: %w", key, err)
	}
	return value, found, nil
}

func (s *SQLite) Set(key, value string) error {
	conn, err := s.pool.Take(context.Background())
	if err != nil {
		return fmt.Errorf("kvstore: sqlite: take: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, upsertStatement, &sqlitex.ExecOptions{Args: []any{key, value}})
	if err != nil {
		return fmt.Errorf("kvstore: sqlite: set %s: %w", key, err)
	}
	return nil
}

// GetMany reads every key inside one transaction, so under WAL the
// values come from a single snapshot of the database.
func (s *SQLite) GetMany(keys ...string) (result map[string]string, err error) {
	conn, err := s.pool.Take(context.Background())
	if err != nil {
		return nil, fmt.Errorf("kvstore: sqlite: take: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction := sqlitex.Transaction(conn)
	defer endTransaction(&err)

	result = make(map[string]string, len(keys))
	for _, key := range keys {
		err = sqlitex.Execute(conn, "SELECT value FROM kv WHERE key = ?", &sqlitex.ExecOptions{
			Args: []any{key},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				result[key] = stmt.ColumnText(0)
				return nil
			},
		})
		if err != nil {
			return nil, fmt.Errorf("kvstore: sqlite: get %s: %w", key, err)
		}
	}
	return result, nil
}

// Apply performs every change in one IMMEDIATE transaction.
func (s *SQLite) Apply(changes ...Change) (err error) {
	if len(changes) == 0 {
		return nil
	}

	conn, err := s.pool.Take(context.Background())
	if err != nil {
		return fmt.Errorf("kvstore: sqlite: take: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("kvstore: sqlite: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	for _, change := range changes {
		if change.Delete {
			err = sqlitex.Execute(conn, "DELETE FROM kv WHERE key = ?", &sqlitex.ExecOptions{
				Args: []any{change.Key},
			})
		} else {
			err = sqlitex.Execute(conn, upsertStatement, &sqlitex.ExecOptions{
				Args: []any{change.Key, change.Value},
			})
		}
		if err != nil {
			return fmt.Errorf("kvstore: sqlite: apply %s: %w", change.Key, err)
		}
	}
	return nil
}

// Delete removes all keys in one IMMEDIATE transaction so a reader
// never observes half of a state transition.
func (s *SQLite) Delete(keys ...string) (err error) {
	if len(keys) == 0 {
		return nil
	}

	conn, err := s.pool.Take(context.Background())
	if err != nil {
		return fmt.Errorf("kvstore: sqlite: take: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("kvstore: sqlite: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	for _, key := range keys {
		if err = sqlitex.Execute(conn, "DELETE FROM kv WHERE key = ?", &sqlitex.ExecOptions{
			Args: []any{key},
		}); err != nil {
			return fmt.Errorf("kvstore: sqlite: delete %s: %w", key, err)
		}
	}
	return nil
}

// Close closes all pooled connections.
func (s *SQLite) Close() error {
	if err := s.pool.Close(); err != nil {
		s.logger.Error("kv store close error", "path", s.path, "error", err)
		return fmt.Errorf("kvstore: sqlite: closing %s: %w", s.path, err)
	}
	s.logger.Info("kv store closed", "path", s.path)
	return nil
}
