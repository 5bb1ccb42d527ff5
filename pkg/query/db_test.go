package query

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/countcmp/pkg/sqldsl"
)

func newMock(t *testing.T, opts ...Option) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return New(sqlDB, opts...), mock
}

func TestDataset_Empty(t *testing.T) {
	ctx := context.Background()

	t.Run("no rows", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery("SELECT 1 AS one FROM items LIMIT 1").
			WillReturnRows(sqlmock.NewRows([]string{"one"}))

		empty, err := db.From("items").Empty(ctx)
		require.NoError(t, err)
		assert.True(t, empty)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("a row", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery("SELECT 1 AS one FROM items LIMIT 1").
			WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

		empty, err := db.From("items").Empty(ctx)
		require.NoError(t, err)
		assert.False(t, empty)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver error", func(t *testing.T) {
		errBoom := errors.New("boom")
		db, mock := newMock(t)
		mock.ExpectQuery("SELECT 1 AS one FROM items LIMIT 1").WillReturnError(errBoom)

		_, err := db.From("items").Empty(ctx)
		require.ErrorIs(t, err, errBoom)
	})

	t.Run("render only", func(t *testing.T) {
		_, err := New(nil).From("items").Empty(ctx)
		require.ErrorIs(t, err, ErrNoQuerier)
	})
}

func TestDB_GetBool(t *testing.T) {
	ctx := context.Background()
	expr := sqldsl.Exists{Query: New(nil).From("items").Select(LiteralOne)}
	stmt := "SELECT EXISTS (SELECT 1 AS one FROM items) AS v LIMIT 1"

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"true", true, true},
		{"false", false, false},
		{"integer true", int64(1), true},
		{"integer false", int64(0), false},
		{"null", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectQuery(stmt).WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(tt.value))

			got, err := db.GetBool(ctx, expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDB_ValueSQL(t *testing.T) {
	assert.Equal(t, "SELECT TRUE AS v LIMIT 1", New(nil).ValueSQL(sqldsl.Bool(true)))
	assert.Equal(t, "SELECT TRUE AS v LIMIT 1", New(nil, WithDialect(sqldsl.SQLite)).ValueSQL(sqldsl.Bool(true)))
}

func TestDB_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	db, mock := newMock(t, WithLogger(logger), WithDialect(sqldsl.DuckDB))
	mock.ExpectQuery("SELECT 1 AS one FROM items LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"one"}))

	_, err := db.From("items").Empty(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "msg=probe")
	assert.Contains(t, out, "op=empty")
	assert.Contains(t, out, "dialect=duckdb")
	assert.Contains(t, out, `sql="SELECT 1 AS one FROM items LIMIT 1"`)
	assert.NotContains(t, out, "probe failed")
}

func TestDB_Defaults(t *testing.T) {
	db := New(nil, WithLogger(nil))
	assert.Equal(t, sqldsl.Postgres, db.Dialect())
	assert.NotNil(t, db.logger)
}
