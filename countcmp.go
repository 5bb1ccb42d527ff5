// Package countcmp compares the row count of a query to a number without
// counting it.
//
// # Probes Instead of COUNT(*)
//
// Answering "does this query return more than 1000 rows?" with
// SELECT COUNT(*) makes the database visit every matching row. The
// comparisons in this package instead issue at most one bounded probe:
//
//	SELECT 1 AS one FROM items LIMIT 1 OFFSET 1000
//
// returns a row exactly when there are more than 1000 rows, and
//
//	SELECT ((EXISTS (SELECT 1 AS one FROM items OFFSET 999))
//	    AND NOT (EXISTS (SELECT 1 AS one FROM items OFFSET 1000))) AS v LIMIT 1
//
// is true exactly when there are 1000. Filters and joins are preserved,
// ordering is dropped, and a raw SQL dataset is wrapped as a derived table
// before an offset is applied.
//
// # Basic Usage
//
//	db := query.New(sqlDB)
//	active := db.From("users").Where(sqldsl.Eq{Left: sqldsl.Col{Column: "active"}, Right: sqldsl.Bool(true)})
//
//	many, err := countcmp.GreaterThan(ctx, active, 1000)
//	single, err := countcmp.Equals(ctx, active, 1)
//
// # Round Trips
//
// Every comparison issues at most one query. Thresholds that decide the
// answer on their own issue none: GreaterThan and AtMost with n < 0,
// Equals with n < 0, and LessThan and AtLeast with n <= 0. Callers may rely
// on this to avoid touching the database for degenerate thresholds.
//
// Database errors are returned unchanged; this package does not retry.
//
// # Untyped Thresholds
//
// The comparison functions take an int64. Compare is the entry point for
// thresholds of unknown type (decoded configuration, RPC payloads): it
// rejects anything but an integer with an *InvalidArgumentError before any
// SQL is built.
package countcmp

import (
	"context"
	"math"

	"github.com/pthm/countcmp/pkg/query"
	"github.com/pthm/countcmp/pkg/sqldsl"
)

// plan is a comparison reduced to at most one probe. The answer is the probe
// result (or static when there is no probe) XOR negate.
type plan struct {
	static bool
	empty  *query.Dataset // answered by empty.Empty
	scalar sqldsl.Expr    // answered by db.GetBool
	db     *query.DB
	negate bool
}

func (p plan) not() plan {
	p.negate = !p.negate
	return p
}

// sql renders the probe, or "" when the plan needs no round trip.
func (p plan) sql() string {
	switch {
	case p.empty != nil:
		return p.empty.EmptySQL()
	case p.scalar != nil:
		return p.db.ValueSQL(p.scalar)
	default:
		return ""
	}
}

func (p plan) run(ctx context.Context) (bool, error) {
	v := p.static
	var err error
	switch {
	case p.empty != nil:
		v, err = p.empty.Empty(ctx)
	case p.scalar != nil:
		if p.db == nil {
			return false, query.ErrNoQuerier
		}
		v, err = p.db.GetBool(ctx, p.scalar)
	}
	if err != nil {
		return false, err
	}
	return v != p.negate, nil
}

// greaterThanPlan: no row can be missing for n < 0; otherwise a row must
// exist past offset n.
func greaterThanPlan(q query.Dataset, n int64) plan {
	switch {
	case n < 0:
		return plan{static: true}
	case n == 0:
		return plan{empty: &q, negate: true}
	default:
		probe := q.Normalize().Offset(n)
		return plan{empty: &probe, negate: true}
	}
}

func lessThanPlan(q query.Dataset, n int64) plan {
	if n == math.MinInt64 {
		return plan{static: false}
	}
	return greaterThanPlan(q, n-1).not()
}

// equalsPlan checks for a row at offset n-1 and none at offset n in a single
// scalar query.
func equalsPlan(q query.Dataset, n int64) plan {
	switch {
	case n < 0:
		return plan{static: false}
	case n == 0:
		return plan{empty: &q}
	default:
		probe := q.Normalize().Unordered().Select(query.LiteralOne)
		return plan{
			db: q.DB(),
			scalar: sqldsl.And(
				sqldsl.Paren{Expr: probe.Offset(n - 1).Exists()},
				sqldsl.Not(probe.Offset(n).Exists()),
			),
		}
	}
}

func atLeastPlan(q query.Dataset, n int64) plan {
	return lessThanPlan(q, n).not()
}

func atMostPlan(q query.Dataset, n int64) plan {
	return greaterThanPlan(q, n).not()
}

// GreaterThan reports whether q returns more than n rows.
func GreaterThan(ctx context.Context, q query.Dataset, n int64) (bool, error) {
	return greaterThanPlan(q, n).run(ctx)
}

// LessThan reports whether q returns fewer than n rows.
// It is the negation of GreaterThan(q, n-1).
func LessThan(ctx context.Context, q query.Dataset, n int64) (bool, error) {
	return lessThanPlan(q, n).run(ctx)
}

// Equals reports whether q returns exactly n rows.
func Equals(ctx context.Context, q query.Dataset, n int64) (bool, error) {
	return equalsPlan(q, n).run(ctx)
}

// AtLeast reports whether q returns n or more rows.
func AtLeast(ctx context.Context, q query.Dataset, n int64) (bool, error) {
	return atLeastPlan(q, n).run(ctx)
}

// AtMost reports whether q returns n or fewer rows.
func AtMost(ctx context.Context, q query.Dataset, n int64) (bool, error) {
	return atMostPlan(q, n).run(ctx)
}
