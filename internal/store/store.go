// Package store persists raw batch text and category settings in sqlite.
// The engine never reads storage directly: on startup the stored batches
// are replayed through the ledger in stored order, then the category
// settings are loaded. Each stored section carries a format version tag so
// the layout can evolve.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Format versions of the persisted sections.
const (
	batchFormatVersion    = 1
	settingsFormatVersion = 1
)

// StoredBatch is one persisted source batch.
type StoredBatch struct {
	ID            string
	Name          string
	RawData       string
	Position      int
	FormatVersion int
	CreatedAt     time.Time
}

// Store wraps the sqlite handle.
type Store struct {
	db *sql.DB
}

// Open opens sqlite with the defaults the rest of the app expects.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// PutBatch stores a batch's raw source text at the end of the replay order.
func (s *Store) PutBatch(ctx context.Context, name, rawData string) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO batches(id, name, raw_data, position, format_version)
	VALUES(?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM batches), ?);
	`, uuid.NewString(), name, rawData, batchFormatVersion)
	if err != nil {
		return fmt.Errorf("store batch %q: %w", name, err)
	}
	return nil
}

// RemoveBatch deletes the named batch; deleting an unknown name is a no-op.
func (s *Store) RemoveBatch(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM batches WHERE name = ?`, name); err != nil {
		return fmt.Errorf("remove batch %q: %w", name, err)
	}
	return nil
}

// ListBatches returns every stored batch in replay (insertion) order.
func (s *Store) ListBatches(ctx context.Context) ([]StoredBatch, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, name, raw_data, position, format_version, created_at
	FROM batches ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []StoredBatch
	for rows.Next() {
		var b StoredBatch
		if err := rows.Scan(&b.ID, &b.Name, &b.RawData, &b.Position, &b.FormatVersion, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		if b.FormatVersion > batchFormatVersion {
			return nil, fmt.Errorf("batch %q has unsupported format version %d", b.Name, b.FormatVersion)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (s *Store) putSection(ctx context.Context, section, payload string) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO settings(section, format_version, payload, updated_at)
	VALUES(?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(section) DO UPDATE SET
	 format_version = excluded.format_version,
	 payload = excluded.payload,
	 updated_at = CURRENT_TIMESTAMP;
	`, section, settingsFormatVersion, payload)
	if err != nil {
		return fmt.Errorf("store settings section %q: %w", section, err)
	}
	return nil
}

// loadSection returns the payload for a section, "" when never stored.
func (s *Store) loadSection(ctx context.Context, section string) (string, error) {
	var version int
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT format_version, payload FROM settings WHERE section = ?`, section).
		Scan(&version, &payload)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load settings section %q: %w", section, err)
	}
	if version > settingsFormatVersion {
		return "", fmt.Errorf("settings section %q has unsupported format version %d", section, version)
	}
	return payload, nil
}
