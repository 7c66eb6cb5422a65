package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/koukamap/curator/internal/model"
	"github.com/koukamap/curator/internal/report"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies
// it, which keeps the Postgres store unit-testable without a server.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS records (
	id          UUID PRIMARY KEY,
	batch_id    TEXT NOT NULL,
	school_name TEXT NOT NULL,
	prefecture  TEXT NOT NULL,
	grade       TEXT NOT NULL DEFAULT '',
	score       DOUBLE PRECISION NOT NULL DEFAULT 0,
	payload     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reports (
	batch_id   TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_records_batch ON records(batch_id);
CREATE INDEX IF NOT EXISTS idx_records_prefecture ON records(prefecture);
CREATE INDEX IF NOT EXISTS idx_records_grade ON records(grade);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveBatch(ctx context.Context, batchID string, records []model.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for i := range records {
		payload, err := json.Marshal(&records[i])
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal record %q", records[i].SchoolName)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO records (id, batch_id, school_name, prefecture, grade, score, payload)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New().String(), batchID, records[i].SchoolName, records[i].Prefecture,
			string(records[i].Grade), records[i].Score, payload)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert record %q", records[i].SchoolName)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit batch")
}

func (s *PostgresStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.Record, error) {
	query := `SELECT payload FROM records WHERE 1=1`
	var args []any

	if filter.Prefecture != "" {
		args = append(args, filter.Prefecture)
		query += ` AND prefecture = $1`
	}
	if filter.Grade != "" {
		args = append(args, string(filter.Grade))
		query += ` AND grade = $` + strconv.Itoa(len(args))
	}
	if filter.MinScore > 0 {
		args = append(args, filter.MinScore)
		query += ` AND score >= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY score DESC, school_name`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list records")
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		var rec model.Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal record")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: iterate records")
}

func (s *PostgresStore) SaveReport(ctx context.Context, batchID string, rep report.Report) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal report")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO reports (batch_id, payload) VALUES ($1, $2)
		ON CONFLICT (batch_id) DO UPDATE SET payload = EXCLUDED.payload
	`, batchID, payload)
	return eris.Wrapf(err, "postgres: save report %s", batchID)
}

func (s *PostgresStore) GetReport(ctx context.Context, batchID string) (*report.Report, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM reports WHERE batch_id = $1`, batchID,
	).Scan(&payload)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get report %s", batchID)
	}
	var rep report.Report
	if err := json.Unmarshal(payload, &rep); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal report %s", batchID)
	}
	return &rep, nil
}
