// Package store persists analysis results keyed by project id, analysis
// type and payload version, over SQLite or Postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when no cached analysis matches
var ErrNotFound = errors.New("not found")

// Store wraps the database connection with our schema
type Store struct {
	conn   *sql.DB
	driver string
	path   string
}

// Config holds database configuration
type Config struct {
	Driver string // "sqlite3" (default) or "postgres"
	Path   string // SQLite database file path
	DSN    string // Postgres connection string
}

// Open opens or creates a database with the given configuration
func Open(cfg Config) (*Store, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}

	var (
		conn *sql.DB
		err  error
	)
	switch cfg.Driver {
	case DriverSQLite:
		conn, err = openSQLite(cfg.Path)
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres dsn cannot be empty")
		}
		conn, err = sql.Open(DriverPostgres, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{conn: conn, driver: cfg.Driver, path: cfg.Path}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// Set file permissions to 0600 (user read/write only)
		if err := os.Chmod(cfg.Path, 0600); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set database permissions: %w", err)
		}
	}

	slog.Debug("Opened analysis store", "driver", cfg.Driver, "path", cfg.Path)
	return s, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open(DriverSQLite, fmt.Sprintf("file:%s?_foreign_keys=on", path))
	if err != nil {
		return nil, err
	}

	// Configure connection pool (single writer, multiple readers)
	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)
	return conn, nil
}

// initSchema creates tables and indexes if they don't exist
func (s *Store) initSchema() error {
	if s.driver == DriverSQLite {
		for _, pragma := range []string{EnableWALMode, SetWALCheckpoint, EnableForeignKeys} {
			if _, err := s.conn.Exec(pragma); err != nil {
				return fmt.Errorf("failed to apply %q: %w", pragma, err)
			}
		}
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, schema := range schemas {
		if _, err := tx.Exec(schema); err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}
	}

	var currentVersion string
	err = tx.QueryRow(s.rebind("SELECT value FROM meta WHERE key = ?"), MetaKeySchemaVersion).Scan(&currentVersion)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// New database - set initial metadata
		now := time.Now().UTC().Format(time.RFC3339)
		metaInserts := [][2]string{
			{MetaKeySchemaVersion, SchemaVersion},
			{MetaKeyCreatedAt, now},
			{MetaKeyDriver, s.driver},
		}
		for _, kv := range metaInserts {
			if _, err := tx.Exec(s.rebind("INSERT INTO meta (key, value) VALUES (?, ?)"), kv[0], kv[1]); err != nil {
				return fmt.Errorf("failed to insert meta %s: %w", kv[0], err)
			}
		}
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	case currentVersion != SchemaVersion:
		return fmt.Errorf("schema version mismatch: database has %s, expected %s", currentVersion, SchemaVersion)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders into $n for Postgres
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Close closes the database connection and flushes WAL
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	var err error
	if s.driver == DriverSQLite {
		_, err = s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	}
	closeErr := s.conn.Close()
	if err != nil {
		slog.Warn("Failed to checkpoint WAL", "error", err)
	}

	// Mark conn as nil to prevent double-close
	s.conn = nil
	return closeErr
}

// Path returns the database file path (empty for Postgres)
func (s *Store) Path() string {
	return s.path
}

// Driver returns the database driver name
func (s *Store) Driver() string {
	return s.driver
}

// GetMeta retrieves a metadata value by key
func (s *Store) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, s.rebind("SELECT value FROM meta WHERE key = ?"), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta key %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta: %w", err)
	}
	return value, nil
}

// SetMeta stores a metadata key-value pair
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.conn.ExecContext(ctx,
		s.rebind("INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value"),
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set meta: %w", err)
	}
	return nil
}

// HealthCheck verifies database connectivity and schema
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	version, err := s.GetMeta(ctx, MetaKeySchemaVersion)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("schema version mismatch: expected %s, got %s", SchemaVersion, version)
	}

	if s.driver == DriverSQLite {
		var journalMode string
		if err := s.conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode); err != nil {
			return fmt.Errorf("failed to check journal mode: %w", err)
		}
		if journalMode != "wal" {
			return fmt.Errorf("WAL mode not enabled, got: %s", journalMode)
		}
	}

	return nil
}
