package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRows(n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{i, fmt.Sprintf("row-%d", i)}
	}
	return rows
}

func TestReplaceAll_Batches(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"id", "name"}
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "commerces"`).WillReturnResult(pgxmock.NewResult("DELETE", 12))
	mock.ExpectCopyFrom(pgx.Identifier{"commerces"}, cols).WillReturnResult(2)
	mock.ExpectCopyFrom(pgx.Identifier{"commerces"}, cols).WillReturnResult(2)
	mock.ExpectCopyFrom(pgx.Identifier{"commerces"}, cols).WillReturnResult(1)
	mock.ExpectCommit()

	n, err := ReplaceAll(context.Background(), mock, ReplaceConfig{
		Table:     "commerces",
		Columns:   cols,
		BatchSize: 2,
	}, makeRows(5))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAll_EmptyRowsStillClearsTable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "commerces"`).WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCommit()

	n, err := ReplaceAll(context.Background(), mock, ReplaceConfig{
		Table:   "commerces",
		Columns: []string{"id"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAll_CopyErrorRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"id", "name"}
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "commerces"`).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"commerces"}, cols).WillReturnResult(2)
	mock.ExpectCopyFrom(pgx.Identifier{"commerces"}, cols).WillReturnError(fmt.Errorf("duplicate key"))
	mock.ExpectRollback()

	_, err = ReplaceAll(context.Background(), mock, ReplaceConfig{
		Table:     "commerces",
		Columns:   cols,
		BatchSize: 2,
	}, makeRows(4))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch at row 2")
	assert.Contains(t, err.Error(), "duplicate key")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAll_DeleteError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "commerces"`).WillReturnError(fmt.Errorf("permission denied"))
	mock.ExpectRollback()

	_, err = ReplaceAll(context.Background(), mock, ReplaceConfig{
		Table:   "commerces",
		Columns: []string{"id"},
	}, makeRows(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete from commerces")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAll_BeginError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(fmt.Errorf("connection refused"))

	_, err = ReplaceAll(context.Background(), mock, ReplaceConfig{
		Table:   "commerces",
		Columns: []string{"id"},
	}, makeRows(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAll_Validation(t *testing.T) {
	_, err := ReplaceAll(context.Background(), nil, ReplaceConfig{Columns: []string{"id"}}, nil)
	assert.ErrorContains(t, err, "no table")

	_, err = ReplaceAll(context.Background(), nil, ReplaceConfig{Table: "commerces"}, nil)
	assert.ErrorContains(t, err, "no columns")
}
