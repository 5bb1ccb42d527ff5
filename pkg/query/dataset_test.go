package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm/countcmp/pkg/sqldsl"
)

var valueCol = sqldsl.Col{Column: "value"}

func TestDataset_SQL(t *testing.T) {
	db := New(nil)

	tests := []struct {
		name string
		ds   Dataset
		want string
	}{
		{
			name: "table",
			ds:   db.From("items"),
			want: "SELECT * FROM items",
		},
		{
			name: "filters are ANDed",
			ds: db.From("items").
				Where(sqldsl.Gt{Left: valueCol, Right: sqldsl.Int(1)}).
				Where(sqldsl.Lt{Left: valueCol, Right: sqldsl.Int(9)}),
			want: "SELECT * FROM items WHERE (value > 1 AND value < 9)",
		},
		{
			name: "join",
			ds: db.From("items").Join(sqldsl.TableAs("tags", "t"), sqldsl.Eq{
				Left:  sqldsl.Col{Table: "t", Column: "item_id"},
				Right: sqldsl.Col{Table: "items", Column: "id"},
			}),
			want: "SELECT * FROM items INNER JOIN tags AS t ON t.item_id = items.id",
		},
		{
			name: "order and paging",
			ds:   db.From("items").OrderBy(sqldsl.Desc{Expr: valueCol}).Limit(5).Offset(10),
			want: "SELECT * FROM items ORDER BY value DESC LIMIT 5 OFFSET 10",
		},
		{
			name: "distinct projection",
			ds:   db.From("items").Select(valueCol).Distinct(),
			want: "SELECT DISTINCT value FROM items",
		},
		{
			name: "raw",
			ds:   db.WithSQL("SELECT 1 UNION SELECT 2"),
			want: "SELECT 1 UNION SELECT 2",
		},
		{
			name: "raw with clause is wrapped",
			ds:   db.WithSQL("SELECT 1 UNION SELECT 2").Limit(1),
			want: "SELECT * FROM (SELECT 1 UNION SELECT 2) AS t1 LIMIT 1",
		},
		{
			name: "from self",
			ds:   db.From("items").Limit(3).FromSelf(),
			want: "SELECT * FROM (SELECT * FROM items LIMIT 3) AS t1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ds.SQL())
		})
	}
}

func TestDataset_Immutable(t *testing.T) {
	db := New(nil)

	base := db.From("items").Where(sqldsl.Gt{Left: valueCol, Right: sqldsl.Int(1)})
	before := base.SQL()

	a := base.Where(sqldsl.Lt{Left: valueCol, Right: sqldsl.Int(5)})
	b := base.Where(sqldsl.Lt{Left: valueCol, Right: sqldsl.Int(7)})
	_ = base.OrderBy(valueCol).Limit(1).Offset(2).Select(LiteralOne).Distinct()

	assert.Equal(t, before, base.SQL())
	assert.Equal(t, "SELECT * FROM items WHERE (value > 1 AND value < 5)", a.SQL())
	assert.Equal(t, "SELECT * FROM items WHERE (value > 1 AND value < 7)", b.SQL())
}

func TestDataset_Unordered(t *testing.T) {
	db := New(nil)

	ordered := db.From("items").OrderBy(valueCol)
	assert.True(t, ordered.IsOrdered())
	assert.False(t, ordered.Unordered().IsOrdered())
	assert.True(t, ordered.IsOrdered())

	raw := db.WithSQL("SELECT 1 ORDER BY 1")
	assert.Equal(t, raw.SQL(), raw.Unordered().SQL())
	assert.True(t, raw.Unordered().HasRawSQL())
}

func TestDataset_Normalize(t *testing.T) {
	db := New(nil)
	items := db.From("items").Where(sqldsl.Gt{Left: valueCol, Right: sqldsl.Int(1)})

	tests := []struct {
		name    string
		ds      Dataset
		wrapped bool
	}{
		{"plain", items, false},
		{"ordered", items.OrderBy(valueCol), false},
		{"raw", db.WithSQL("SELECT 1"), true},
		{"limit", items.Limit(2), true},
		{"offset", items.Offset(2), true},
		{"distinct", items.Distinct(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.ds.Normalize()
			if tt.wrapped {
				assert.Equal(t, tt.ds.FromSelf().SQL(), got.SQL())
			} else {
				assert.Equal(t, tt.ds.SQL(), got.SQL())
			}
			assert.False(t, got.HasRawSQL())
		})
	}
}

func TestDataset_EmptySQL(t *testing.T) {
	db := New(nil)
	items := db.From("items")

	tests := []struct {
		name string
		ds   Dataset
		want string
	}{
		{"table", items, "SELECT 1 AS one FROM items LIMIT 1"},
		{"ordered", items.OrderBy(valueCol), "SELECT 1 AS one FROM items LIMIT 1"},
		{"offset", items.Offset(4), "SELECT 1 AS one FROM items LIMIT 1 OFFSET 4"},
		{"limit", items.Limit(0), "SELECT 1 AS one FROM (SELECT * FROM items LIMIT 0) AS t1 LIMIT 1"},
		{"raw", db.WithSQL("SELECT 1 UNION SELECT 2"), "SELECT 1 AS one FROM (SELECT 1 UNION SELECT 2) AS t1 LIMIT 1"},
		{"distinct", items.Select(valueCol).Distinct(), "SELECT DISTINCT 1 AS one FROM items LIMIT 1"},
		{
			"distinct with offset",
			items.Select(valueCol).Distinct().Offset(1),
			"SELECT 1 AS one FROM (SELECT DISTINCT value FROM items OFFSET 1) AS t1 LIMIT 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ds.EmptySQL())
		})
	}
}

func TestDataset_Dialect(t *testing.T) {
	offsetOnly := func(db *DB) string {
		return db.From("items").Select(LiteralOne).Offset(3).SQL()
	}

	assert.Equal(t, "SELECT 1 AS one FROM items OFFSET 3", offsetOnly(New(nil)))
	assert.Equal(t, "SELECT 1 AS one FROM items OFFSET 3", offsetOnly(New(nil, WithDialect(sqldsl.DuckDB))))
	assert.Equal(t, "SELECT 1 AS one FROM items LIMIT -1 OFFSET 3", offsetOnly(New(nil, WithDialect(sqldsl.SQLite))))
}
