package sqldsl

import "testing"

func TestSelectStmt_SQL(t *testing.T) {
	items := TableRef{Name: "items"}
	one := []Expr{SelectAs(Int(1), "one")}

	tests := []struct {
		name string
		stmt SelectStmt
		want string
	}{
		{
			name: "defaults to star",
			stmt: SelectStmt{FromExpr: items},
			want: "SELECT * FROM items",
		},
		{
			name: "existence probe",
			stmt: SelectStmt{ColumnExprs: one, FromExpr: items, Limit: Rows(1)},
			want: "SELECT 1 AS one FROM items LIMIT 1",
		},
		{
			name: "offset probe",
			stmt: SelectStmt{ColumnExprs: one, FromExpr: items, Limit: Rows(1), Offset: Rows(2)},
			want: "SELECT 1 AS one FROM items LIMIT 1 OFFSET 2",
		},
		{
			name: "offset without limit",
			stmt: SelectStmt{ColumnExprs: one, FromExpr: items, Offset: Rows(0)},
			want: "SELECT 1 AS one FROM items OFFSET 0",
		},
		{
			name: "sqlite offset without limit",
			stmt: SelectStmt{ColumnExprs: one, FromExpr: items, Offset: Rows(3), Dialect: SQLite},
			want: "SELECT 1 AS one FROM items LIMIT -1 OFFSET 3",
		},
		{
			name: "sqlite keeps explicit limit",
			stmt: SelectStmt{ColumnExprs: one, FromExpr: items, Limit: Rows(1), Offset: Rows(3), Dialect: SQLite},
			want: "SELECT 1 AS one FROM items LIMIT 1 OFFSET 3",
		},
		{
			name: "duckdb offset without limit",
			stmt: SelectStmt{ColumnExprs: one, FromExpr: items, Offset: Rows(3), Dialect: DuckDB},
			want: "SELECT 1 AS one FROM items OFFSET 3",
		},
		{
			name: "limit zero renders",
			stmt: SelectStmt{FromExpr: items, Limit: Rows(0)},
			want: "SELECT * FROM items LIMIT 0",
		},
		{
			name: "no from clause",
			stmt: SelectStmt{ColumnExprs: []Expr{SelectAs(Bool(true), "v")}, Limit: Rows(1)},
			want: "SELECT TRUE AS v LIMIT 1",
		},
		{
			name: "full statement",
			stmt: SelectStmt{
				Distinct:    true,
				ColumnExprs: []Expr{Col{Table: "i", Column: "value"}},
				FromExpr:    TableAs("items", "i"),
				Joins: []JoinClause{{
					Type:  "LEFT",
					Table: TableAs("tags", "t"),
					On:    Eq{Left: Col{Table: "t", Column: "item_id"}, Right: Col{Table: "i", Column: "id"}},
				}},
				Where:   And(Gt{Left: Col{Table: "i", Column: "value"}, Right: Int(1)}, IsNotNull{Expr: Col{Table: "t", Column: "name"}}),
				OrderBy: []Expr{Desc{Expr: Col{Table: "i", Column: "value"}}, Asc{Expr: Col{Table: "i", Column: "id"}}},
				Limit:   Rows(10),
			},
			want: "SELECT DISTINCT i.value FROM items AS i LEFT JOIN tags AS t ON t.item_id = i.id " +
				"WHERE (i.value > 1 AND t.name IS NOT NULL) ORDER BY i.value DESC, i.id ASC LIMIT 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stmt.SQL(); got != tt.want {
				t.Errorf("SelectStmt.SQL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJoinClause_SQL(t *testing.T) {
	tests := []struct {
		name string
		join JoinClause
		want string
	}{
		{
			name: "inner join",
			join: JoinClause{Type: "INNER", Table: TableRef{Name: "tags"}, On: Raw("tags.item_id = items.id")},
			want: "INNER JOIN tags ON tags.item_id = items.id",
		},
		{
			name: "cross join has no ON",
			join: JoinClause{Type: "CROSS", Table: TableRef{Name: "tags"}, On: Raw("ignored")},
			want: "CROSS JOIN tags",
		},
		{
			name: "keyword already contains JOIN",
			join: JoinClause{Type: "CROSS JOIN LATERAL", Table: Subquery{Query: Raw("SELECT 1"), Alias: "s"}},
			want: "CROSS JOIN LATERAL (SELECT 1) AS s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.join.SQL(); got != tt.want {
				t.Errorf("JoinClause.SQL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubquery_TableSQL(t *testing.T) {
	sub := Subquery{Query: Raw("SELECT 1 UNION SELECT 2"), Alias: "t1"}
	if got, want := sub.TableSQL(), "(SELECT 1 UNION SELECT 2) AS t1"; got != want {
		t.Errorf("Subquery.TableSQL() = %q, want %q", got, want)
	}
	if sub.TableAlias() != "t1" {
		t.Errorf("Subquery.TableAlias() = %q, want %q", sub.TableAlias(), "t1")
	}
}

func TestDialect_String(t *testing.T) {
	for d, want := range map[Dialect]string{Postgres: "postgres", SQLite: "sqlite", DuckDB: "duckdb", Dialect(9): "dialect(9)"} {
		if got := d.String(); got != want {
			t.Errorf("Dialect(%d).String() = %q, want %q", int(d), got, want)
		}
	}
}
