package sqldsl

import (
	"strconv"
	"strings"
)

// SQLer is an interface for types that can render a complete statement.
type SQLer interface {
	SQL() string
}

// Dialect selects the paging syntax a statement renders with.
// Everything else in a rendered statement is dialect independent.
type Dialect int

const (
	// Postgres renders LIMIT and OFFSET independently.
	Postgres Dialect = iota
	// SQLite requires a LIMIT before any OFFSET; an offset on its own
	// renders as LIMIT -1 OFFSET n.
	SQLite
	// DuckDB accepts the same paging syntax as Postgres.
	DuckDB
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	case DuckDB:
		return "duckdb"
	default:
		return "dialect(" + strconv.Itoa(int(d)) + ")"
	}
}

// Bound is an optional LIMIT or OFFSET row count.
// The zero value means the clause is absent; Rows(0) renders explicitly.
type Bound struct {
	N   int64
	Set bool
}

// Rows returns a Bound of n rows.
func Rows(n int64) Bound {
	return Bound{N: n, Set: true}
}

// JoinClause represents a SQL JOIN clause.
type JoinClause struct {
	Type  string // "INNER", "LEFT", "CROSS JOIN LATERAL", ...
	Table TableExpr
	On    Expr
}

// SQL renders the JOIN clause.
func (j JoinClause) SQL() string {
	// Determine join keyword - don't add "JOIN" if Type already contains it
	// (e.g., "CROSS JOIN LATERAL" should not become "CROSS JOIN LATERAL JOIN")
	joinKeyword := j.Type + " JOIN"
	if strings.Contains(j.Type, "JOIN") {
		joinKeyword = j.Type
	}

	// CROSS JOIN doesn't have an ON clause
	if strings.HasPrefix(j.Type, "CROSS") || j.On == nil {
		return joinKeyword + " " + j.Table.TableSQL()
	}
	return joinKeyword + " " + j.Table.TableSQL() + " ON " + j.On.SQL()
}

// SelectStmt represents a SELECT query.
// A statement without FromExpr renders a FROM-less SELECT.
type SelectStmt struct {
	Distinct    bool
	ColumnExprs []Expr
	FromExpr    TableExpr
	Joins       []JoinClause
	Where       Expr
	OrderBy     []Expr
	Limit       Bound
	Offset      Bound
	Dialect     Dialect
}

// SQL renders the SELECT statement on a single line.
func (s SelectStmt) SQL() string {
	return joinClauses(
		"SELECT "+optf(s.Distinct, "DISTINCT ")+s.columnsSQL(),
		s.fromSQL(),
		s.joinsSQL(),
		s.whereSQL(),
		s.orderSQL(),
		s.pagingSQL(),
	)
}

func (s SelectStmt) columnsSQL() string {
	if len(s.ColumnExprs) == 0 {
		return "*"
	}
	parts := make([]string, len(s.ColumnExprs))
	for i, e := range s.ColumnExprs {
		parts[i] = e.SQL()
	}
	return strings.Join(parts, ", ")
}

func (s SelectStmt) fromSQL() string {
	if s.FromExpr == nil {
		return ""
	}
	return "FROM " + s.FromExpr.TableSQL()
}

func (s SelectStmt) joinsSQL() string {
	if len(s.Joins) == 0 {
		return ""
	}
	parts := make([]string, len(s.Joins))
	for i, j := range s.Joins {
		parts[i] = j.SQL()
	}
	return strings.Join(parts, " ")
}

func (s SelectStmt) whereSQL() string {
	if s.Where == nil {
		return ""
	}
	return "WHERE " + s.Where.SQL()
}

func (s SelectStmt) orderSQL() string {
	if len(s.OrderBy) == 0 {
		return ""
	}
	parts := make([]string, len(s.OrderBy))
	for i, e := range s.OrderBy {
		parts[i] = e.SQL()
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

func (s SelectStmt) pagingSQL() string {
	limit := s.Limit
	if s.Dialect == SQLite && s.Offset.Set && !limit.Set {
		limit = Rows(-1)
	}
	return joinClauses(
		optf(limit.Set, "LIMIT "+strconv.FormatInt(limit.N, 10)),
		optf(s.Offset.Set, "OFFSET "+strconv.FormatInt(s.Offset.N, 10)),
	)
}

// optf returns s if cond is true, empty string otherwise.
// Useful for optional SQL clauses.
func optf(cond bool, s string) string {
	if !cond {
		return ""
	}
	return s
}

// joinClauses joins the non-empty clauses with single spaces.
func joinClauses(clauses ...string) string {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}
