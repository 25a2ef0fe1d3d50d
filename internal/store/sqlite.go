package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/Molly166/LogParser/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS batches (
	id          TEXT PRIMARY KEY,
	source_path TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	processed   INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0,
	recovered   INTEGER NOT NULL DEFAULT 0,
	empty       INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE TABLE IF NOT EXISTS records (
	id             TEXT PRIMARY KEY,
	batch_id       TEXT NOT NULL REFERENCES batches(id),
	line_number    INTEGER NOT NULL,
	query          TEXT,
	bill_info      TEXT,
	reply          TEXT,
	user_id        INTEGER,
	session_id     TEXT,
	user_intention TEXT,
	success_flag   INTEGER,
	outcome        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_batches_status ON batches(status);
CREATE INDEX IF NOT EXISTS idx_batches_source_path ON batches(source_path);
CREATE INDEX IF NOT EXISTS idx_records_batch_id ON records(batch_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateBatch(ctx context.Context, sourcePath string) (*model.Batch, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO batches (id, source_path, status, created_at) VALUES (?, ?, ?, ?)`,
		id, sourcePath, string(model.BatchStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert batch")
	}

	return &model.Batch{
		ID:         id,
		SourcePath: sourcePath,
		Status:     model.BatchStatusRunning,
		CreatedAt:  now,
	}, nil
}

func (s *SQLiteStore) SaveRecord(ctx context.Context, batchID string, rec model.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records
		 (id, batch_id, line_number, query, bill_info, reply, user_id, session_id, user_intention, success_flag, outcome)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), batchID, rec.LineNumber,
		rec.Query, rec.BillInfo, rec.Reply,
		rec.UserID, rec.SessionID, rec.UserIntention, rec.SuccessFlag,
		string(rec.Outcome),
	)
	return eris.Wrapf(err, "sqlite: insert record for batch %s", batchID)
}

func (s *SQLiteStore) FinishBatch(ctx context.Context, batchID string, stats model.Stats) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE batches SET status = ?, processed = ?, skipped = ?, recovered = ?, empty = ?, finished_at = ?
		 WHERE id = ?`,
		string(model.BatchStatusComplete),
		stats.Processed, stats.Skipped, stats.Recovered, stats.Empty,
		time.Now().UTC(), batchID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish batch %s", batchID)
	}
	return checkRowsAffected(res, "batch", batchID)
}

func (s *SQLiteStore) GetBatch(ctx context.Context, batchID string) (*model.Batch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_path, status, processed, skipped, recovered, empty, created_at, finished_at
		 FROM batches WHERE id = ?`,
		batchID,
	)
	return scanBatch(row)
}

func (s *SQLiteStore) ListBatches(ctx context.Context, filter BatchFilter) ([]model.Batch, error) {
	query := `SELECT id, source_path, status, processed, skipped, recovered, empty, created_at, finished_at
	          FROM batches WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.SourcePath != "" {
		query += ` AND source_path = ?`
		args = append(args, filter.SourcePath)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list batches")
	}
	defer rows.Close()

	var batches []model.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, *b)
	}
	return batches, eris.Wrap(rows.Err(), "sqlite: list batches iterate")
}

func (s *SQLiteStore) ListRecords(ctx context.Context, batchID string) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT line_number, query, bill_info, reply, user_id, session_id, user_intention, success_flag, outcome
		 FROM records WHERE batch_id = ? ORDER BY line_number`,
		batchID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list records for batch %s", batchID)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var (
			rec     model.Record
			outcome string
		)
		err := rows.Scan(&rec.LineNumber, &rec.Query, &rec.BillInfo, &rec.Reply,
			&rec.UserID, &rec.SessionID, &rec.UserIntention, &rec.SuccessFlag, &outcome)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		rec.Outcome = model.ParseOutcome(outcome)
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list records iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanBatch(row scannable) (*model.Batch, error) {
	var (
		b        model.Batch
		finished sql.NullTime
	)
	err := row.Scan(&b.ID, &b.SourcePath, &b.Status,
		&b.Stats.Processed, &b.Stats.Skipped, &b.Stats.Recovered, &b.Stats.Empty,
		&b.CreatedAt, &finished)
	if err == sql.ErrNoRows {
		return nil, eris.New("batch not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan batch")
	}
	if finished.Valid {
		t := finished.Time
		b.FinishedAt = &t
	}
	return &b, nil
}
