package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koukamap/curator/internal/model"
	"github.com/koukamap/curator/internal/report"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_SaveBatch(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO records`).
		WithArgs(pgxmock.AnyArg(), "batch-1", "第一中学校", "東京都", "A", 0.95, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.SaveBatch(context.Background(), "batch-1", []model.Record{
		{SchoolName: "第一中学校", Prefecture: "東京都", Grade: model.GradeA, Score: 0.95},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRecords(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	payload, err := json.Marshal(model.Record{SchoolName: "北高校", Prefecture: "北海道", Grade: model.GradeB, Score: 0.78})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT payload FROM records`).
		WithArgs("北海道").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow(payload))

	got, err := s.ListRecords(context.Background(), RecordFilter{Prefecture: "北海道"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "北高校", got[0].SchoolName)
	assert.Equal(t, model.GradeB, got[0].Grade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveReport(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO reports`).
		WithArgs("batch-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveReport(context.Background(), "batch-1", report.Report{
		Summary: report.Summary{TotalRecords: 2},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetReport_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT payload FROM reports`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := s.GetReport(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetReport(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	payload, err := json.Marshal(report.Report{Summary: report.Summary{TotalRecords: 7}})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT payload FROM reports`).
		WithArgs("batch-2").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow(payload))

	got, err := s.GetReport(context.Background(), "batch-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 7, got.Summary.TotalRecords)
	assert.NoError(t, mock.ExpectationsWereMet())
}
