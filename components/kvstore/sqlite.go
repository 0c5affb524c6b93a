package kvstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// SQLite is a Store backed by a local SQLite database.
type SQLite struct {
	sqlDB *sql.DB
}

// OpenSQLite opens and migrates the store at path. ":memory:" is accepted
// for tests.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLite{sqlDB: sqlDB}
	if err := store.applySchema(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return store, nil
}

// Close releases the underlying connection.
func (s *SQLite) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *SQLite) Get(ctx context.Context, owner, key string) ([]byte, bool, error) {
	owner, key, err := normalizeKey(owner, key)
	if err != nil {
		return nil, false, err
	}
	var value []byte
	err = s.sqlDB.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE owner = ? AND key = ?`,
		owner, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get kv entry: %w", err)
	}
	return value, true, nil
}

func (s *SQLite) Put(ctx context.Context, owner, key string, value []byte) error {
	owner, key, err := normalizeKey(owner, key)
	if err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO kv_entries (owner, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner, key) DO UPDATE SET
		    value = excluded.value,
		    updated_at = excluded.updated_at`,
		owner, key, value, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put kv entry: %w", err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, owner, key string) error {
	owner, key, err := normalizeKey(owner, key)
	if err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE owner = ? AND key = ?`, owner, key,
	); err != nil {
		return fmt.Errorf("delete kv entry: %w", err)
	}
	return nil
}

func (s *SQLite) applySchema() error {
	entries, err := fs.ReadDir(schemaFS, "schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	for _, file := range files {
		content, err := fs.ReadFile(schemaFS, "schema/"+file)
		if err != nil {
			return fmt.Errorf("read schema %s: %w", file, err)
		}
		if _, err := s.sqlDB.Exec(string(content)); err != nil {
			return fmt.Errorf("exec schema %s: %w", file, err)
		}
	}
	return nil
}
