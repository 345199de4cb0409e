package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/footprint/internal/model"
)

// DBFileName is the database file name inside the data directory.
const DBFileName = "footprint.db"

// HistoryDB stores finished batches.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?mode=rwc"
	} else if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		}
		return nil, fmt.Errorf("failed to check database path: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		subject TEXT NOT NULL,
		kind TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		status TEXT NOT NULL,
		endpoints_total INTEGER NOT NULL,
		found_count INTEGER NOT NULL,
		not_found_count INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		success_rate REAL NOT NULL,
		batch_json TEXT NOT NULL,
		stats_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_batches_subject ON batches(subject, kind);
	CREATE INDEX IF NOT EXISTS idx_batches_started ON batches(started_at);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Record is a stored batch with its statistics.
type Record struct {
	Batch *model.Batch
	Stats model.BatchStatistics
}

// BatchMetadata summarizes a stored batch without decoding it.
type BatchMetadata struct {
	ID             string
	Subject        string
	Kind           model.SubjectKind
	StartedAt      time.Time
	Status         model.BatchStatus
	EndpointsTotal int
	FoundCount     int
	NotFoundCount  int
	ErrorCount     int
	SuccessRatePct float64
}

// SubjectSummary describes one investigated subject.
type SubjectSummary struct {
	Subject string
	Kind    model.SubjectKind
	Batches int
	LastRun time.Time
}

// SaveBatch stores a batch and its statistics.
// Saving the same batch ID twice replaces the earlier row.
func (h *HistoryDB) SaveBatch(ctx context.Context, b *model.Batch, st model.BatchStatistics) error {
	batchJSON, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to serialize batch: %w", err)
	}
	statsJSON, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to serialize statistics: %w", err)
	}

	var finishedAt sql.NullString
	if !b.FinishedAt.IsZero() {
		finishedAt = sql.NullString{String: formatTimestamp(b.FinishedAt), Valid: true}
	}

	query := `
	INSERT INTO batches (id, subject, kind, started_at, finished_at, status,
		endpoints_total, found_count, not_found_count, error_count, success_rate,
		batch_json, stats_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		finished_at = excluded.finished_at,
		status = excluded.status,
		found_count = excluded.found_count,
		not_found_count = excluded.not_found_count,
		error_count = excluded.error_count,
		success_rate = excluded.success_rate,
		batch_json = excluded.batch_json,
		stats_json = excluded.stats_json
	`

	_, err = h.db.ExecContext(ctx, query,
		b.ID.String(),
		b.Subject,
		string(b.Kind),
		formatTimestamp(b.StartedAt),
		finishedAt,
		string(b.Status),
		b.EndpointsTotal,
		st.FoundCount,
		st.NotFoundCount,
		st.ErrorCount,
		st.SuccessRatePct,
		string(batchJSON),
		string(statsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save batch: %w", err)
	}
	return nil
}

// GetBatch returns the batch with the given ID, or nil if there is none.
func (h *HistoryDB) GetBatch(ctx context.Context, id string) (*Record, error) {
	row := h.db.QueryRowContext(ctx, `SELECT batch_json, stats_json FROM batches WHERE id = ?`, id)
	return scanRecord(row)
}

// LatestBatch returns the most recent batch for subject and kind, or nil.
func (h *HistoryDB) LatestBatch(ctx context.Context, subject string, kind model.SubjectKind) (*Record, error) {
	row := h.db.QueryRowContext(ctx, `
	SELECT batch_json, stats_json FROM batches
	WHERE subject = ? AND kind = ?
	ORDER BY started_at DESC
	LIMIT 1
	`, subject, string(kind))
	return scanRecord(row)
}

func scanRecord(row *sql.Row) (*Record, error) {
	var batchJSON, statsJSON string
	err := row.Scan(&batchJSON, &statsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(batchJSON), &rec.Batch); err != nil {
		return nil, fmt.Errorf("failed to parse batch: %w", err)
	}
	if err := json.Unmarshal([]byte(statsJSON), &rec.Stats); err != nil {
		return nil, fmt.Errorf("failed to parse statistics: %w", err)
	}
	return &rec, nil
}

// History returns metadata of every batch for subject, newest first.
// An empty kind matches all kinds.
func (h *HistoryDB) History(ctx context.Context, subject string, kind model.SubjectKind) ([]BatchMetadata, error) {
	query := `
	SELECT id, subject, kind, started_at, status, endpoints_total,
		found_count, not_found_count, error_count, success_rate
	FROM batches
	WHERE subject = ? AND (? = '' OR kind = ?)
	ORDER BY started_at DESC
	`

	rows, err := h.db.QueryContext(ctx, query, subject, string(kind), string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var results []BatchMetadata
	for rows.Next() {
		var (
			meta            BatchMetadata
			kindStr, status string
			startedAt       string
		)
		if err := rows.Scan(&meta.ID, &meta.Subject, &kindStr, &startedAt, &status,
			&meta.EndpointsTotal, &meta.FoundCount, &meta.NotFoundCount, &meta.ErrorCount,
			&meta.SuccessRatePct); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.Kind = model.SubjectKind(kindStr)
		meta.Status = model.BatchStatus(status)
		meta.StartedAt = parseTimestamp(startedAt)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// ListSubjects returns every subject with its batch count, most recent first.
func (h *HistoryDB) ListSubjects(ctx context.Context) ([]SubjectSummary, error) {
	query := `
	SELECT subject, kind, COUNT(*), MAX(started_at)
	FROM batches
	GROUP BY subject, kind
	ORDER BY MAX(started_at) DESC
	`

	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	var results []SubjectSummary
	for rows.Next() {
		var (
			s       SubjectSummary
			kindStr string
			lastRun string
		)
		if err := rows.Scan(&s.Subject, &kindStr, &s.Batches, &lastRun); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		s.Kind = model.SubjectKind(kindStr)
		s.LastRun = parseTimestamp(lastRun)
		results = append(results, s)
	}

	return results, rows.Err()
}

// DeleteSubject removes every batch for subject and returns how many were deleted.
func (h *HistoryDB) DeleteSubject(ctx context.Context, subject string) (int64, error) {
	res, err := h.db.ExecContext(ctx, `DELETE FROM batches WHERE subject = ?`, subject)
	if err != nil {
		return 0, fmt.Errorf("failed to delete history: %w", err)
	}
	return res.RowsAffected()
}

// timestampLayout sorts lexicographically in chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp tries each known format and returns zero time if none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
