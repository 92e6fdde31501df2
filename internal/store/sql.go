package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // driver: sqlite

	"github.com/fmuoria/intern-evaluation/internal/models"
)

const defaultSQLiteDSN = "file:evaluations.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS evaluations (
  id TEXT PRIMARY KEY,
  subject_name TEXT NOT NULL,
  subject_email TEXT NOT NULL DEFAULT '',
  submitted_at INTEGER NOT NULL,
  record_json TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS evaluations_submitted_at ON evaluations (submitted_at);
`

// OpenSQLite opens a SQLite database and ensures the schema exists
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		dsn = defaultSQLiteDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return db, nil
}

// SQLStore keeps records in the evaluations table. The full record is
// stored as JSON; the other columns serve ordering and inspection.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLStore wraps an open database
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) Put(ctx context.Context, rec models.EvaluationRecord) error {
	if err := ValidateID(rec.ID); err != nil {
		return err
	}
	rj, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.ID, err)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO evaluations (id,subject_name,subject_email,submitted_at,record_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.SubjectName, rec.SubjectEmail, rec.SubmittedAt.UnixNano(), string(rj), s.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert record %s: %w", rec.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, rec.ID)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (models.EvaluationRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT record_json FROM evaluations WHERE id=$1`, id)
	var rj string
	if err := row.Scan(&rj); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.EvaluationRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return models.EvaluationRecord{}, err
	}
	return decodeRecord(id, rj)
}

// List returns every record ordered by id
func (s *SQLStore) List(ctx context.Context) ([]models.EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,record_json FROM evaluations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := []models.EvaluationRecord{}
	for rows.Next() {
		var id, rj string
		if err := rows.Scan(&id, &rj); err != nil {
			return nil, err
		}
		rec, err := decodeRecord(id, rj)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLStore) Close() error { return s.db.Close() }

func decodeRecord(id, rj string) (models.EvaluationRecord, error) {
	var rec models.EvaluationRecord
	if err := json.Unmarshal([]byte(rj), &rec); err != nil {
		return rec, fmt.Errorf("failed to decode record %s: %w", id, err)
	}
	return rec, nil
}
