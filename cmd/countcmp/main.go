// Package main provides the countcmp CLI.
//
// countcmp answers "does this query return more than / fewer than / exactly
// N rows?" with a single bounded probe instead of SELECT COUNT(*).
//
//	countcmp compare gt 1000 --table orders --where "status = 'open'"
//	countcmp sql eq 1 --table users --dialect sqlite
//
// Connection settings come from flags, COUNTCMP_* environment variables, or
// countcmp.yaml, in that order of precedence.
package main

func main() {
	Execute()
}
