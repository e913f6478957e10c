package fetchcache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/satishgoda/watchtower/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
// Users will need to delete the cache database after schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// timeLayout is fixed width so fetched_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Entry is one cached payload.
type Entry struct {
	Resource  string
	ProjectID string
	Location  string
	Body      []byte
	FetchedAt time.Time
}

// Stats summarises the cache contents.
type Stats struct {
	Path    string
	Entries int
	Bytes   int64
	Oldest  time.Time
	Newest  time.Time
}

// Store persists fetched payloads in SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates or opens the cache database at the configured path.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil || strings.TrimSpace(cfg.Cache.Path) == "" {
		return nil, errors.New("cache path not configured")
	}
	return OpenPath(cfg.Cache.Path)
}

// OpenPath creates or opens the cache database at path.
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Put records body as the latest payload for the key.
func (s *Store) Put(ctx context.Context, resource, projectID, location string, body []byte) error {
	fetchedAt := s.now().UTC().Format(timeLayout)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
INSERT INTO responses (resource, project_id, location, body, fetched_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(resource, project_id, location) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
			resource, projectID, location, body, fetchedAt)
		return err
	})
}

// Get returns the cached payload for the key. The bool is false on a miss.
func (s *Store) Get(ctx context.Context, resource, projectID, location string) (Entry, bool, error) {
	var (
		entry     Entry
		fetchedAt string
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT resource, project_id, location, body, fetched_at FROM responses
WHERE resource = ? AND project_id = ? AND location = ?`,
			resource, projectID, location,
		).Scan(&entry.Resource, &entry.ProjectID, &entry.Location, &entry.Body, &fetchedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read cached response: %w", err)
	}
	ts, err := time.Parse(timeLayout, fetchedAt)
	if err != nil {
		return Entry{}, false, fmt.Errorf("parse fetched_at %q: %w", fetchedAt, err)
	}
	entry.FetchedAt = ts
	return entry, true, nil
}

// Stats reports entry count, total payload size, and age range.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.path}
	var (
		bytes          sql.NullInt64
		oldest, newest sql.NullString
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT COUNT(1), SUM(LENGTH(body)), MIN(fetched_at), MAX(fetched_at) FROM responses`,
		).Scan(&stats.Entries, &bytes, &oldest, &newest)
	})
	if err != nil {
		return Stats{}, fmt.Errorf("read cache stats: %w", err)
	}
	stats.Bytes = bytes.Int64
	if oldest.Valid {
		stats.Oldest, _ = time.Parse(timeLayout, oldest.String)
	}
	if newest.Valid {
		stats.Newest, _ = time.Parse(timeLayout, newest.String)
	}
	return stats, nil
}

// Prune removes entries fetched before now-maxAge. A non-positive maxAge
// removes everything.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	query := "DELETE FROM responses"
	var args []any
	if maxAge > 0 {
		query += " WHERE fetched_at < ?"
		args = append(args, s.now().Add(-maxAge).UTC().Format(timeLayout))
	}
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	return removed, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
