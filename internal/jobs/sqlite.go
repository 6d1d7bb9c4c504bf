package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-ingest/internal/logging"
	"media-ingest/internal/metrics"
)

// Default timeout for store operations
const defaultTimeout = 5 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS encode_jobs (
	id         TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	message    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// SQLiteStore persists encode jobs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the job database at dbPath. The parent
// directory must already exist and be writable; startup.LoadConfig
// validates that before this is called.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	// WAL mode keeps status polling readable while the worker writes.
	// busy_timeout prevents transient "database is locked" errors.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open job database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("failed to connect to job database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("failed to initialize job schema: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	logging.Info("Job store initialized at %s", dbPath)
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create records a new pending job.
func (s *SQLiteStore) Create(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { recordQuery("create", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO encode_jobs (id, state, message, created_at, updated_at) VALUES (?, ?, '', ?, ?)`,
		id, string(StatePending), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("job %s: %w", id, ErrDuplicate)
		}
		return fmt.Errorf("failed to create job %s: %w", id, err)
	}
	return nil
}

// SetState advances the job, enforcing the monotonic transition order
// inside a transaction so concurrent readers never observe a skip.
func (s *SQLiteStore) SetState(ctx context.Context, id string, state State, message string) (err error) {
	start := time.Now()
	defer func() { recordQuery("set_state", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logging.Warn("job store rollback failed: %v", err)
		}
	}()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT state FROM encode_jobs WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read job %s: %w", id, err)
	}

	if !State(current).validNext(state) {
		return fmt.Errorf("job %s: %s -> %s: %w", id, current, state, ErrInvalidTransition)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE encode_jobs SET state = ?, message = ?, updated_at = ? WHERE id = ?`,
		string(state), message, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit job update: %w", err)
	}
	return nil
}

// Get returns the job record by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (_ EncodeJob, err error) {
	start := time.Now()
	defer func() { recordQuery("get", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var job EncodeJob
	var state string
	err = s.db.QueryRowContext(ctx,
		`SELECT id, state, message, created_at, updated_at FROM encode_jobs WHERE id = ?`, id).
		Scan(&job.ID, &state, &job.Message, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return EncodeJob{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return EncodeJob{}, fmt.Errorf("failed to read job %s: %w", id, err)
	}
	job.State = State(state)
	return job, nil
}

// recordQuery records per-operation query metrics.
func recordQuery(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func isUniqueViolation(err error) bool {
	// Matching the message avoids importing the driver's error types here.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		logging.Error("failed to close job database: %v", err)
	}
}
