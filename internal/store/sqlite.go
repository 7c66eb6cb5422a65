package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/koukamap/curator/internal/model"
	"github.com/koukamap/curator/internal/report"
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
CREATE TABLE IF NOT EXISTS records (
	id          TEXT PRIMARY KEY,
	batch_id    TEXT NOT NULL,
	school_name TEXT NOT NULL,
	prefecture  TEXT NOT NULL,
	grade       TEXT NOT NULL DEFAULT '',
	score       REAL NOT NULL DEFAULT 0,
	payload     TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS reports (
	batch_id   TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_records_batch ON records(batch_id);
CREATE INDEX IF NOT EXISTS idx_records_prefecture ON records(prefecture);
CREATE INDEX IF NOT EXISTS idx_records_grade ON records(grade);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveBatch(ctx context.Context, batchID string, records []model.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	for i := range records {
		payload, err := json.Marshal(&records[i])
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal record %q", records[i].SchoolName)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO records (id, batch_id, school_name, prefecture, grade, score, payload)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, uuid.New().String(), batchID, records[i].SchoolName, records[i].Prefecture,
			string(records[i].Grade), records[i].Score, string(payload))
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert record %q", records[i].SchoolName)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit batch")
	}
	return nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.Record, error) {
	query := `SELECT payload FROM records WHERE 1=1`
	var args []any

	if filter.Prefecture != "" {
		query += ` AND prefecture = ?`
		args = append(args, filter.Prefecture)
	}
	if filter.Grade != "" {
		query += ` AND grade = ?`
		args = append(args, string(filter.Grade))
	}
	if filter.MinScore > 0 {
		query += ` AND score >= ?`
		args = append(args, filter.MinScore)
	}
	query += ` ORDER BY score DESC, school_name`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		var rec model.Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal record")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: iterate records")
}

func (s *SQLiteStore) SaveReport(ctx context.Context, batchID string, rep report.Report) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal report")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (batch_id, payload) VALUES (?, ?)
		ON CONFLICT(batch_id) DO UPDATE SET payload = excluded.payload
	`, batchID, string(payload))
	return eris.Wrapf(err, "sqlite: save report %s", batchID)
}

func (s *SQLiteStore) GetReport(ctx context.Context, batchID string) (*report.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM reports WHERE batch_id = ?`, batchID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get report %s", batchID)
	}
	var rep report.Report
	if err := json.Unmarshal([]byte(payload), &rep); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal report %s", batchID)
	}
	return &rep, nil
}
