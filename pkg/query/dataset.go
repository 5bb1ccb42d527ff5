package query

import (
	"context"
	"slices"

	"github.com/pthm/countcmp/pkg/sqldsl"
)

// LiteralOne is the constant projection used by existence probes: 1 AS one.
var LiteralOne = sqldsl.SelectAs(sqldsl.Int(1), "one")

// subqueryAlias names the derived table FromSelf produces.
const subqueryAlias = "t1"

// source is where a dataset's rows come from: either a structured table
// expression or a raw SQL body.
type source interface {
	isSource()
}

type structuredSource struct {
	table sqldsl.TableExpr
}

type rawSource struct {
	sql string
}

func (structuredSource) isSource() {}
func (rawSource) isSource()        {}

// Dataset is an immutable description of a SELECT query.
// The zero value is not usable; start from DB.From, DB.FromExpr or DB.WithSQL.
type Dataset struct {
	db       *DB
	src      source
	distinct bool
	columns  []sqldsl.Expr
	joins    []sqldsl.JoinClause
	where    []sqldsl.Expr
	order    []sqldsl.Expr
	limit    sqldsl.Bound
	offset   sqldsl.Bound
}

// DB returns the handle the dataset executes through.
func (d Dataset) DB() *DB {
	return d.db
}

// HasRawSQL reports whether the dataset's body is a literal SQL string.
func (d Dataset) HasRawSQL() bool {
	_, ok := d.src.(rawSource)
	return ok
}

// IsOrdered reports whether the dataset carries an ORDER BY.
func (d Dataset) IsOrdered() bool {
	return len(d.order) > 0
}

// structured returns d itself, or d wrapped as a derived table when its body
// is raw SQL, so structured clauses can be applied.
func (d Dataset) structured() Dataset {
	if d.HasRawSQL() {
		return d.FromSelf()
	}
	return d
}

// FromSelf wraps the dataset as a derived table and selects from it:
// SELECT * FROM (<d>) AS t1.
func (d Dataset) FromSelf() Dataset {
	return Dataset{
		db:  d.db,
		src: structuredSource{table: sqldsl.Subquery{Query: d, Alias: subqueryAlias}},
	}
}

// Normalize returns a dataset with the same rows to which a probe offset and
// projection can be applied without changing that row set. Datasets with a
// raw SQL body or their own LIMIT, OFFSET, or DISTINCT are wrapped with
// FromSelf; all others are returned unchanged.
func (d Dataset) Normalize() Dataset {
	if d.HasRawSQL() || d.limit.Set || d.offset.Set || d.distinct {
		return d.FromSelf()
	}
	return d
}

// Select replaces the projection.
func (d Dataset) Select(exprs ...sqldsl.Expr) Dataset {
	out := d.structured()
	out.columns = slices.Clone(exprs)
	return out
}

// Distinct makes the dataset SELECT DISTINCT.
func (d Dataset) Distinct() Dataset {
	out := d.structured()
	out.distinct = true
	return out
}

// Where adds filter predicates, ANDed with any existing ones.
func (d Dataset) Where(exprs ...sqldsl.Expr) Dataset {
	out := d.structured()
	out.where = append(slices.Clip(out.where), exprs...)
	return out
}

// Join adds an INNER JOIN.
func (d Dataset) Join(table sqldsl.TableExpr, on sqldsl.Expr) Dataset {
	return d.addJoin(sqldsl.JoinClause{Type: "INNER", Table: table, On: on})
}

// LeftJoin adds a LEFT JOIN.
func (d Dataset) LeftJoin(table sqldsl.TableExpr, on sqldsl.Expr) Dataset {
	return d.addJoin(sqldsl.JoinClause{Type: "LEFT", Table: table, On: on})
}

func (d Dataset) addJoin(j sqldsl.JoinClause) Dataset {
	out := d.structured()
	out.joins = append(slices.Clip(out.joins), j)
	return out
}

// OrderBy replaces the ordering.
func (d Dataset) OrderBy(terms ...sqldsl.Expr) Dataset {
	out := d.structured()
	out.order = slices.Clone(terms)
	return out
}

// Unordered removes any ORDER BY. A raw SQL body is returned unchanged since
// its ordering, if any, is part of the literal text.
func (d Dataset) Unordered() Dataset {
	if d.HasRawSQL() || !d.IsOrdered() {
		return d
	}
	out := d
	out.order = nil
	return out
}

// Limit sets the LIMIT.
func (d Dataset) Limit(n int64) Dataset {
	out := d.structured()
	out.limit = sqldsl.Rows(n)
	return out
}

// Offset sets the OFFSET, replacing any existing one.
func (d Dataset) Offset(n int64) Dataset {
	out := d.structured()
	out.offset = sqldsl.Rows(n)
	return out
}

// Exists returns the predicate EXISTS (<d>).
func (d Dataset) Exists() sqldsl.Expr {
	return sqldsl.Exists{Query: d}
}

// Statement returns the dataset as a SELECT statement. For a raw SQL dataset
// this is the statement selecting everything from it as a derived table.
func (d Dataset) Statement() sqldsl.SelectStmt {
	d = d.structured()
	src := d.src.(structuredSource)

	var where sqldsl.Expr
	if len(d.where) > 0 {
		where = sqldsl.And(d.where...)
	}
	return sqldsl.SelectStmt{
		Distinct:    d.distinct,
		ColumnExprs: d.columns,
		FromExpr:    src.table,
		Joins:       d.joins,
		Where:       where,
		OrderBy:     d.order,
		Limit:       d.limit,
		Offset:      d.offset,
		Dialect:     d.dialect(),
	}
}

// SQL renders the dataset. A raw SQL dataset renders its literal body.
func (d Dataset) SQL() string {
	if raw, ok := d.src.(rawSource); ok {
		return raw.sql
	}
	return d.Statement().SQL()
}

func (d Dataset) dialect() sqldsl.Dialect {
	if d.db == nil {
		return sqldsl.Postgres
	}
	return d.db.dialect
}

// emptyProbe is the dataset Empty runs: one constant column, no ordering,
// at most one row. Raw SQL and datasets with their own LIMIT are wrapped
// first so LIMIT 1 does not replace theirs. DISTINCT with an OFFSET is
// wrapped too: the constant projection would collapse every row to one
// before the offset skips it.
func (d Dataset) emptyProbe() Dataset {
	if d.HasRawSQL() || d.limit.Set || (d.distinct && d.offset.Set) {
		d = d.FromSelf()
	}
	return d.Unordered().Select(LiteralOne).Limit(1)
}

// EmptySQL renders the statement Empty issues.
func (d Dataset) EmptySQL() string {
	return d.emptyProbe().SQL()
}

// Empty reports whether the dataset returns no rows, using a single
// SELECT 1 AS one ... LIMIT 1 probe.
func (d Dataset) Empty(ctx context.Context) (bool, error) {
	if d.db == nil {
		return false, ErrNoQuerier
	}
	found, err := d.db.exists(ctx, d.EmptySQL())
	if err != nil {
		return false, err
	}
	return !found, nil
}
