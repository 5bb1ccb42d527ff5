package countcmp

import (
	"context"
	"fmt"
	"strings"

	"github.com/pthm/countcmp/pkg/query"
)

// Op names one of the five comparisons.
type Op string

const (
	OpGreaterThan Op = "gt"
	OpLessThan    Op = "lt"
	OpEquals      Op = "eq"
	OpAtLeast     Op = "gte"
	OpAtMost      Op = "lte"
)

// Ops lists every comparison in a stable order.
var Ops = []Op{OpGreaterThan, OpLessThan, OpEquals, OpAtLeast, OpAtMost}

var planners = map[Op]func(query.Dataset, int64) plan{
	OpGreaterThan: greaterThanPlan,
	OpLessThan:    lessThanPlan,
	OpEquals:      equalsPlan,
	OpAtLeast:     atLeastPlan,
	OpAtMost:      atMostPlan,
}

var opAliases = map[string]Op{
	"gt": OpGreaterThan, ">": OpGreaterThan, "greater_than": OpGreaterThan,
	"lt": OpLessThan, "<": OpLessThan, "less_than": OpLessThan,
	"eq": OpEquals, "=": OpEquals, "==": OpEquals, "equals": OpEquals,
	"gte": OpAtLeast, ">=": OpAtLeast, "at_least": OpAtLeast,
	"lte": OpAtMost, "<=": OpAtMost, "at_most": OpAtMost,
}

// ParseOp resolves a comparison from its short name (gt, lt, eq, gte, lte),
// its symbol (>, <, =, >=, <=), or its long name (greater_than, at_most, ...).
func ParseOp(s string) (Op, error) {
	op, ok := opAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOp, s)
	}
	return op, nil
}

// String returns the symbol of the comparison.
func (o Op) String() string {
	switch o {
	case OpGreaterThan:
		return ">"
	case OpLessThan:
		return "<"
	case OpEquals:
		return "="
	case OpAtLeast:
		return ">="
	case OpAtMost:
		return "<="
	default:
		return string(o)
	}
}

func (o Op) planner() (func(query.Dataset, int64) plan, error) {
	p, ok := planners[o]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, string(o))
	}
	return p, nil
}

// Compare runs the comparison op against a threshold of unknown type.
// The threshold is validated with Threshold before anything else happens,
// so a non-integer fails the same way for every op and never reaches the
// database.
func Compare(ctx context.Context, q query.Dataset, op Op, threshold any) (bool, error) {
	n, err := Threshold(threshold)
	if err != nil {
		return false, err
	}
	p, err := op.planner()
	if err != nil {
		return false, err
	}
	return p(q, n).run(ctx)
}

// ProbeSQL renders the single statement the comparison would issue, or ""
// when the threshold alone decides the answer. Nothing is executed.
func ProbeSQL(q query.Dataset, op Op, n int64) (string, error) {
	p, err := op.planner()
	if err != nil {
		return "", err
	}
	return p(q, n).sql(), nil
}
