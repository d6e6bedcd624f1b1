package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// sqlite driver (pure Go)
	_ "modernc.org/sqlite"
)

// DefaultListLimit bounds ListStats when no limit is given.
const DefaultListLimit = 100

// StoredRecord is a Record read back from the store.
type StoredRecord struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Record `yaml:",inline"`
}

// SQLiteStore persists stats records in SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new, unopened SQLite stats store.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// NewSQLiteStoreWithDB wraps an existing connection. Used by tests.
func NewSQLiteStoreWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Open opens the database at path and runs migrations.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// each connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path

	if err := s.Migrate(); err != nil {
		_ = db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordStats implements Sink.
func (s *SQLiteStore) RecordStats(ctx context.Context, name string, rec Record) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO request_stats (name, response_status, header_content_length, timestamp, host, service,
			request_time_ms, request_id, action, referer, page)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		name, rec.ResponseStatus, rec.HeaderContentLength, rec.Timestamp.UTC(), rec.Host, rec.Service,
		rec.RequestTime, rec.RequestID, rec.Action, rec.Referer, rec.Page,
	)
	if err != nil {
		return fmt.Errorf("failed to record stats: %w", err)
	}
	return nil
}

// ListFilter narrows ListStats.
type ListFilter struct {
	Service string
	Limit   int
}

// ListStats returns the most recent records first.
func (s *SQLiteStore) ListStats(ctx context.Context, filter ListFilter) ([]StoredRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT id, name, response_status, header_content_length, timestamp, host, service,
		request_time_ms, request_id, action, referer, page
		FROM request_stats`
	args := []any{}
	if filter.Service != "" {
		query += ` WHERE service = ?`
		args = append(args, filter.Service)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []StoredRecord
	for rows.Next() {
		var r StoredRecord
		var ts time.Time
		if err := rows.Scan(&r.ID, &r.Name, &r.ResponseStatus, &r.HeaderContentLength, &ts, &r.Host,
			&r.Service, &r.RequestTime, &r.RequestID, &r.Action, &r.Referer, &r.Page); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		r.Timestamp = ts
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list stats: %w", err)
	}
	return out, nil
}
