package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps history rows in a local SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	owned bool
	limit int

	insert *sql.Stmt
	trim   *sql.Stmt
	list   *sql.Stmt
}

// OpenSQLite opens (creating if needed) the database file at path, migrates
// it and returns a store that closes the database on Close.
func OpenSQLite(ctx context.Context, path, journalMode string, limit int) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := NewMigrationRunner(db).WithJournalMode(journalMode).Run(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s, err := NewSQLiteStore(db, limit)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewSQLiteStore wraps an already-migrated database. The caller keeps
// ownership of db.
func NewSQLiteStore(db *sql.DB, limit int) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db, limit: normalizeLimit(limit)}
	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insert, err = s.db.Prepare(`INSERT INTO history (ts, total_views, video_count) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}

	s.trim, err = s.db.Prepare(`
		DELETE FROM history
		WHERE id NOT IN (SELECT id FROM history ORDER BY id DESC LIMIT ?)
	`)
	if err != nil {
		return err
	}

	s.list, err = s.db.Prepare(`SELECT ts, total_views, video_count FROM history ORDER BY id ASC`)
	return err
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, e Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.StmtContext(ctx, s.insert).ExecContext(ctx,
		e.Timestamp.UTC().Format(time.RFC3339Nano), e.TotalViews, e.VideoCount,
	); err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	if _, err := tx.StmtContext(ctx, s.trim).ExecContext(ctx, s.limit); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return tx.Commit()
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.list.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&ts, &e.TotalViews, &e.VideoCount); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if e.Timestamp, err = parseTimestamp(ts); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Clear implements Store.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM history"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Close releases prepared statements, and the database when the store opened it.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.insert, s.trim, s.list} {
		if stmt != nil {
			stmt.Close()
		}
	}
	if s.owned {
		return s.db.Close()
	}
	return nil
}

// parseTimestamp accepts the formats SQLite hands back for DATETIME columns.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}
