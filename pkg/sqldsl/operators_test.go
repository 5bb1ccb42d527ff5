package sqldsl

import "testing"

func TestOperators_SQL(t *testing.T) {
	value := Col{Column: "value"}
	probe := SelectStmt{ColumnExprs: []Expr{SelectAs(Int(1), "one")}, FromExpr: TableRef{Name: "items"}}

	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"eq", Eq{Left: value, Right: Int(1)}, "value = 1"},
		{"ne", Ne{Left: value, Right: Int(1)}, "value <> 1"},
		{"lt", Lt{Left: value, Right: Int(-2)}, "value < -2"},
		{"lte", Lte{Left: value, Right: Int(2)}, "value <= 2"},
		{"gte", Gte{Left: value, Right: Int(2)}, "value >= 2"},
		{"in", In{Expr: Col{Column: "name"}, Values: []string{"a", "b"}}, "name IN ('a', 'b')"},
		{"in empty", In{Expr: Col{Column: "name"}}, "FALSE"},
		{"not in empty", NotIn{Expr: Col{Column: "name"}}, "TRUE"},
		{"and single", And(Raw("a")), "a"},
		{"and drops nil", And(Raw("a"), nil, Raw("b")), "(a AND b)"},
		{"and empty", And(), "TRUE"},
		{"or", Or(Raw("a"), Raw("b")), "(a OR b)"},
		{"or empty", Or(), "FALSE"},
		{"not", Not(Raw("a")), "NOT (a)"},
		{"is null", IsNull{Expr: value}, "value IS NULL"},
		{"lit escapes", Lit("o'brien"), "'o''brien'"},
		{"func", Func{Name: "coalesce", Args: []Expr{value, Int(0)}}, "coalesce(value, 0)"},
		{"exists", Exists{Query: probe}, "EXISTS (SELECT 1 AS one FROM items)"},
		{"not exists", NotExists{Query: probe}, "NOT EXISTS (SELECT 1 AS one FROM items)"},
		{
			"exists pair",
			And(Paren{Expr: Exists{Query: probe}}, Not(Exists{Query: probe})),
			"((EXISTS (SELECT 1 AS one FROM items)) AND NOT (EXISTS (SELECT 1 AS one FROM items)))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.SQL(); got != tt.want {
				t.Errorf("SQL() = %q, want %q", got, tt.want)
			}
		})
	}
}
