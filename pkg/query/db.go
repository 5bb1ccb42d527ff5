// Package query provides an immutable dataset builder over database/sql.
//
// A Dataset describes a SELECT (source, joins, filters, projection, ordering,
// paging) without executing it. Every builder method returns a new Dataset;
// the receiver is never modified, so datasets can be shared and derived from
// freely across goroutines.
//
//	db := query.New(sqlDB, query.WithDialect(sqldsl.SQLite))
//	ds := db.From("items").Where(sqldsl.Gt{Left: sqldsl.Col{Column: "value"}, Right: sqldsl.Int(1)})
//	empty, err := ds.Empty(ctx)
//
// A dataset's source is either a structured table expression or a raw SQL
// string (see DB.WithSQL). Raw datasets are wrapped as a derived table before
// any further clause is applied to them.
package query

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/pthm/countcmp/pkg/sqldsl"
)

// ErrNoQuerier is returned when a dataset is executed through a DB that was
// created without a database handle (render-only DB).
var ErrNoQuerier = errors.New("query: no database handle")

// Querier executes queries against the database.
// Implemented by *sql.DB, *sql.Tx, and *sql.Conn.
//
// The minimal interface allows datasets to run inside a transaction and see
// its uncommitted changes:
//
//	tx, _ := sqlDB.BeginTx(ctx, nil)
//	db := query.New(tx)
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// DB binds datasets to a database handle and a rendering dialect.
// A DB is immutable after New and safe for concurrent use to the extent
// its Querier is.
type DB struct {
	q       Querier
	dialect sqldsl.Dialect
	logger  *slog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithDialect sets the paging syntax used when rendering datasets.
// Defaults to sqldsl.Postgres.
func WithDialect(d sqldsl.Dialect) Option {
	return func(db *DB) {
		db.dialect = d
	}
}

// WithLogger sets the logger probes are reported to at debug level.
// By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) {
		if l != nil {
			db.logger = l
		}
	}
}

// New creates a DB over q. A nil q yields a render-only DB: datasets can be
// built and rendered, but executing them fails with ErrNoQuerier.
func New(q Querier, opts ...Option) *DB {
	db := &DB{
		q:       q,
		dialect: sqldsl.Postgres,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Dialect returns the dialect datasets of this DB render with.
func (db *DB) Dialect() sqldsl.Dialect {
	return db.dialect
}

// From starts a dataset selecting from the named table.
func (db *DB) From(table string) Dataset {
	return db.FromExpr(sqldsl.TableRef{Name: table})
}

// FromExpr starts a dataset selecting from an arbitrary table expression.
func (db *DB) FromExpr(t sqldsl.TableExpr) Dataset {
	return Dataset{db: db, src: structuredSource{table: t}}
}

// WithSQL starts a dataset whose body is the literal SQL string. The string
// is used verbatim; applying any clause to the dataset first wraps it as a
// derived table.
func (db *DB) WithSQL(raw string) Dataset {
	return Dataset{db: db, src: rawSource{sql: raw}}
}

// ValueSQL renders the single-row statement that evaluates expr, aliased v.
func (db *DB) ValueSQL(expr sqldsl.Expr) string {
	return sqldsl.SelectStmt{
		ColumnExprs: []sqldsl.Expr{sqldsl.SelectAs(expr, "v")},
		Limit:       sqldsl.Rows(1),
		Dialect:     db.dialect,
	}.SQL()
}

// GetBool evaluates a boolean expression in one round trip. A NULL result
// is reported as false.
func (db *DB) GetBool(ctx context.Context, expr sqldsl.Expr) (bool, error) {
	stmt := db.ValueSQL(expr)

	var v sql.NullBool
	if err := db.queryRow(ctx, "get", stmt, &v); err != nil {
		return false, err
	}
	return v.Valid && v.Bool, nil
}

// exists runs stmt and reports whether it produced a row.
func (db *DB) exists(ctx context.Context, stmt string) (bool, error) {
	var one any
	err := db.queryRow(ctx, "empty", stmt, &one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// queryRow issues a single-row query and scans it into dest.
// Driver errors are returned as-is.
func (db *DB) queryRow(ctx context.Context, op, stmt string, dest any) error {
	if db.q == nil {
		return ErrNoQuerier
	}
	db.logger.DebugContext(ctx, "probe", "op", op, "sql", stmt, "dialect", db.dialect.String())

	err := db.q.QueryRowContext(ctx, stmt).Scan(dest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		db.logger.DebugContext(ctx, "probe failed", "op", op, "error", err)
	}
	return err
}
