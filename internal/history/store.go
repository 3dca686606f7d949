package history

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the database file created inside the data directory.
const FileName = "secretsanta.db"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrNotFound is returned by Open when the database is missing and creation is disabled.
var ErrNotFound = errors.New("history database not found")

// Store is the submission history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL switches the journal to write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens the history database in dir.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, FileName)

	mode := "rwc"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	} else {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check history path: %w", err)
		}
		mode = "rw"
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		submission_id TEXT NOT NULL UNIQUE,
		timestamp TEXT NOT NULL,
		server TEXT NOT NULL,
		endpoint TEXT NOT NULL,
		form_id TEXT NOT NULL,
		source TEXT,
		status_code INTEGER,
		status_text TEXT,
		file_name TEXT,
		saved_path TEXT,
		size INTEGER DEFAULT 0,
		digest TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_timestamp ON submissions(timestamp);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Record is one stored submission.
type Record struct {
	ID           int64
	SubmissionID string
	Timestamp    time.Time
	Server       string
	Endpoint     string
	FormID       string

	// Source is the employee list that was uploaded.
	Source string

	StatusCode int
	StatusText string

	// FileName and SavedPath describe the download; empty on failure.
	FileName  string
	SavedPath string
	Size      int64

	// Digest is the SHA3-256 of the downloaded bytes, hex encoded.
	Digest string

	// Error is the failure message; empty on success.
	Error string
}

// Succeeded reports whether the submission produced a download.
func (r *Record) Succeeded() bool {
	return r.Error == ""
}

// Digest returns the hex SHA3-256 of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Save inserts r and sets its ID.
func (s *Store) Save(ctx context.Context, r *Record) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	query := `
	INSERT INTO submissions (submission_id, timestamp, server, endpoint, form_id, source,
		status_code, status_text, file_name, saved_path, size, digest, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		r.SubmissionID,
		r.Timestamp.UTC().Format(timeLayout),
		r.Server,
		r.Endpoint,
		r.FormID,
		r.Source,
		r.StatusCode,
		r.StatusText,
		r.FileName,
		r.SavedPath,
		r.Size,
		r.Digest,
		r.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get submission id: %w", err)
	}
	r.ID = id
	return nil
}

const selectColumns = `
	SELECT id, submission_id, timestamp, server, endpoint, form_id, source,
		status_code, status_text, file_name, saved_path, size, digest, error
	FROM submissions
`

// Get returns the record with the given submission id, or nil if there is none.
func (s *Store) Get(ctx context.Context, submissionID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE submission_id = ?", submissionID)

	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return r, nil
}

// List returns up to limit records, newest first. A non-positive limit returns all.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	query := selectColumns + " ORDER BY timestamp DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	records := make([]*Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}
	return records, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var (
		r         Record
		timestamp string
		source    sql.NullString
		text      sql.NullString
		fileName  sql.NullString
		savedPath sql.NullString
		digest    sql.NullString
		errText   sql.NullString
		status    sql.NullInt64
		size      sql.NullInt64
	)

	err := sc.Scan(
		&r.ID,
		&r.SubmissionID,
		&timestamp,
		&r.Server,
		&r.Endpoint,
		&r.FormID,
		&source,
		&status,
		&text,
		&fileName,
		&savedPath,
		&size,
		&digest,
		&errText,
	)
	if err != nil {
		return nil, err
	}

	r.Timestamp = parseTimestamp(timestamp)
	r.Source = source.String
	r.StatusCode = int(status.Int64)
	r.StatusText = text.String
	r.FileName = fileName.String
	r.SavedPath = savedPath.String
	r.Size = size.Int64
	r.Digest = digest.String
	r.Error = errText.String
	return &r, nil
}

// parseTimestamp accepts the stored RFC 3339 form and SQLite's own datetime format.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
