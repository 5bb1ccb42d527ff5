// Package sqldsl provides typed building blocks for rendering SELECT queries.
//
// # Overview
//
// Rather than constructing SQL strings through concatenation, this package
// provides small value types that compose into complete statements. The
// query package builds datasets on top of it, and callers use it to express
// filters, join conditions, and ordering.
//
// # Core Interfaces
//
// All DSL types implement one of three interfaces:
//
//   - Expr: SQL expressions (columns, literals, operators, function calls)
//   - TableExpr: sources usable in FROM and JOIN clauses
//   - SQLer: complete statements (SELECT)
//
// Each renders its SQL through a method returning a string.
//
// # Expression Types
//
// Basic expressions:
//
//	Col{Table: "t", Column: "id"}     // Column reference: t.id
//	Lit("document")                   // String literal: 'document'
//	Int(42)                           // Integer literal: 42
//	Bool(true)                        // Boolean literal: TRUE
//	Null{}                            // NULL literal
//	Raw("CURRENT_TIMESTAMP")          // Raw SQL (escape hatch)
//
// Operators:
//
//	Eq{Left: col, Right: Int(1)}      // col = 1
//	In{Expr: col, Values: []string}   // col IN ('a', 'b')
//	And(expr1, expr2, expr3)          // (expr1 AND expr2 AND expr3)
//	Or(expr1, expr2)                  // (expr1 OR expr2)
//	Not(expr)                         // NOT (expr)
//	Exists{Query: subquery}           // EXISTS (subquery)
//
// # Statements
//
//	SelectStmt{
//	    ColumnExprs: []Expr{SelectAs(Int(1), "one")},
//	    FromExpr:    TableRef{Name: "items"},
//	    Where:       Gt{Left: Col{Column: "value"}, Right: Int(1)},
//	    Limit:       Rows(1),
//	    Offset:      Rows(2),
//	}
//
// renders as
//
//	SELECT 1 AS one FROM items WHERE value > 1 LIMIT 1 OFFSET 2
//
// Statements render on a single line. Paging syntax follows the statement's
// Dialect; nothing else about the rendered SQL is dialect specific.
package sqldsl
