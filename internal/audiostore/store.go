package audiostore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a handle has no stored blob.
var ErrNotFound = errors.New("audio blob not found")

const schema = `
	CREATE TABLE IF NOT EXISTS audio (
		id TEXT PRIMARY KEY,
		mimeType TEXT NOT NULL,
		data BLOB NOT NULL,
		createdAt REAL NOT NULL
	);
`

// Store provides blob storage backed by SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// OpenMemory opens a private in-memory database. Nothing survives Close.
func OpenMemory() (*Store, error) {
	return Open(":memory:")
}

// Open opens the database at dsn and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores data and returns its new handle.
func (s *Store) Put(ctx context.Context, mimeType string, data []byte) (string, error) {
	handle := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audio (id, mimeType, data, createdAt) VALUES (?, ?, ?, ?)`,
		handle, mimeType, data, unixFromTime(s.now()))
	if err != nil {
		return "", fmt.Errorf("insert audio: %w", err)
	}
	return handle, nil
}

// Get returns the blob stored under handle.
func (s *Store) Get(ctx context.Context, handle string) (Blob, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, mimeType, data, createdAt FROM audio WHERE id = ?`, handle)

	var b Blob
	var createdAt float64
	if err := row.Scan(&b.Handle, &b.MimeType, &b.Data, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Blob{}, fmt.Errorf("%w: %s", ErrNotFound, handle)
		}
		return Blob{}, fmt.Errorf("scan audio: %w", err)
	}
	b.CreatedAt = timeFromUnix(createdAt)
	return b, nil
}

// List returns metadata for every blob, newest first.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mimeType, length(data), createdAt
		FROM audio
		ORDER BY createdAt DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query audio: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var info Info
		var createdAt float64
		if err := rows.Scan(&info.Handle, &info.MimeType, &info.Size, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audio: %w", err)
		}
		info.CreatedAt = timeFromUnix(createdAt)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes the blob under handle. Deleting a missing handle is not an
// error.
func (s *Store) Delete(ctx context.Context, handle string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM audio WHERE id = ?`, handle); err != nil {
		return fmt.Errorf("delete audio: %w", err)
	}
	return nil
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
