package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sakya146/termscan/internal/model"
)

// dbFileName is the database file created inside the state directory.
const dbFileName = "termscan.db"

// Options configures SQLiteBackend behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// SQLiteBackend stores host records in a SQLite database.
//
// Design decision: One row per host with a JSON column per field group
// (detected / flags / last_scan / report) rather than a single record
// blob. The Store already merges per field group in memory; keeping the
// groups as separate columns makes the stored state inspectable with
// plain SQL and keeps a partial write from touching unrelated groups.
type SQLiteBackend struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// OpenSQLite opens or creates the site-state database under dbDir.
func OpenSQLite(dbDir string, opts Options) (*SQLiteBackend, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	b := &SQLiteBackend{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := b.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return b, nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// Path returns the database file path.
func (b *SQLiteBackend) Path() string {
	return b.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (b *SQLiteBackend) createTables() error {
	schema := `
	-- One row per host; JSON column per field group
	CREATE TABLE IF NOT EXISTS hosts (
		host TEXT PRIMARY KEY,
		detected TEXT NOT NULL DEFAULT '{}',
		seen INTEGER NOT NULL DEFAULT 0,
		suppressed INTEGER NOT NULL DEFAULT 0,
		last_scan TEXT,
		report TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_hosts_updated ON hosts(updated_at);
	`

	_, err := b.db.ExecContext(context.Background(), schema)
	return err
}

// Get returns the stored state for host, or (nil, nil) when absent.
func (b *SQLiteBackend) Get(ctx context.Context, host string) (*model.HostState, error) {
	query := `
	SELECT detected, seen, suppressed, last_scan, report
	FROM hosts
	WHERE host = ?
	`

	var (
		detectedJSON string
		seen         bool
		suppressed   bool
		lastScanJSON sql.NullString
		reportJSON   sql.NullString
	)

	err := b.db.QueryRowContext(ctx, query, host).Scan(
		&detectedJSON,
		&seen,
		&suppressed,
		&lastScanJSON,
		&reportJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get host state: %w", err)
	}

	state := &model.HostState{
		Seen:       seen,
		Suppressed: suppressed,
	}
	if err := json.Unmarshal([]byte(detectedJSON), &state.Detected); err != nil {
		return nil, fmt.Errorf("failed to parse detected links: %w", err)
	}
	if lastScanJSON.Valid && lastScanJSON.String != "" {
		var lastScan model.LastScan
		if err := json.Unmarshal([]byte(lastScanJSON.String), &lastScan); err != nil {
			return nil, fmt.Errorf("failed to parse last scan: %w", err)
		}
		state.LastScan = &lastScan
	}
	if reportJSON.Valid && reportJSON.String != "" {
		var report model.HostReport
		if err := json.Unmarshal([]byte(reportJSON.String), &report); err != nil {
			return nil, fmt.Errorf("failed to parse report: %w", err)
		}
		state.Report = &report
	}

	return state, nil
}

// Set stores the full state record for host.
// Uses UPSERT so re-detection of a known host is a single statement.
func (b *SQLiteBackend) Set(ctx context.Context, host string, state *model.HostState) error {
	detectedJSON, err := json.Marshal(state.Detected)
	if err != nil {
		return fmt.Errorf("failed to serialize detected links: %w", err)
	}

	var lastScanJSON, reportJSON sql.NullString
	if state.LastScan != nil {
		data, err := json.Marshal(state.LastScan)
		if err != nil {
			return fmt.Errorf("failed to serialize last scan: %w", err)
		}
		lastScanJSON = sql.NullString{String: string(data), Valid: true}
	}
	if state.Report != nil {
		data, err := json.Marshal(state.Report)
		if err != nil {
			return fmt.Errorf("failed to serialize report: %w", err)
		}
		reportJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
	INSERT INTO hosts (host, detected, seen, suppressed, last_scan, report)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(host) DO UPDATE SET
		detected = excluded.detected,
		seen = excluded.seen,
		suppressed = excluded.suppressed,
		last_scan = excluded.last_scan,
		report = excluded.report,
		updated_at = CURRENT_TIMESTAMP
	`

	if _, err := b.db.ExecContext(ctx, query,
		host,
		string(detectedJSON),
		state.Seen,
		state.Suppressed,
		lastScanJSON,
		reportJSON,
	); err != nil {
		return fmt.Errorf("failed to set host state: %w", err)
	}

	return nil
}

// Hosts returns all hosts with a stored record, sorted.
func (b *SQLiteBackend) Hosts(ctx context.Context) ([]string, error) {
	query := `
	SELECT host FROM hosts
	ORDER BY host
	`

	rows, err := b.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	defer rows.Close()

	var hosts []string
	for rows.Next() {
		var host string
		if err := rows.Scan(&host); err != nil {
			return nil, fmt.Errorf("failed to scan host: %w", err)
		}
		hosts = append(hosts, host)
	}

	return hosts, rows.Err()
}
