// Package testutil provides shared test databases for countcmp integration tests.
//
// Three backends are available. SQLite and DuckDB run in-process and in memory.
// PostgreSQL runs in a singleton testcontainers container, or against the
// server named by DATABASE_URL / DATABASE_HOST when set; it is skipped under
// -short and when no container runtime is available.
//
// Every database is created with the fixtures in testdata/fixtures.sql:
//
//	items(id INTEGER PRIMARY KEY, value INTEGER NOT NULL)
//	tags(item_id INTEGER NOT NULL, name TEXT NOT NULL)
package testutil

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pthm/countcmp/pkg/sqldsl"
)

//go:embed testdata/fixtures.sql
var fixturesSQL string

// Backend is a database engine the integration tests run against.
type Backend struct {
	Name    string
	Dialect sqldsl.Dialect
	// Open returns a fresh database with the fixtures applied.
	// It is cleaned up when the test completes.
	Open func(tb testing.TB) *sql.DB
}

// Backends returns every backend. Run tests as subtests per backend so the
// Postgres one can skip independently.
func Backends() []Backend {
	return []Backend{
		{Name: "sqlite", Dialect: sqldsl.SQLite, Open: SQLite},
		{Name: "duckdb", Dialect: sqldsl.DuckDB, Open: DuckDB},
		{Name: "postgres", Dialect: sqldsl.Postgres, Open: Postgres},
	}
}

// SQLite returns an in-memory SQLite database.
func SQLite(tb testing.TB) *sql.DB {
	tb.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(tb, err, "failed to open sqlite database")

	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	tb.Cleanup(func() { _ = db.Close() })
	applyFixtures(tb, db)
	return db
}

// DuckDB returns an in-memory DuckDB database.
func DuckDB(tb testing.TB) *sql.DB {
	tb.Helper()

	db, err := sql.Open("duckdb", "")
	require.NoError(tb, err, "failed to open duckdb database")
	db.SetMaxOpenConns(1)

	tb.Cleanup(func() { _ = db.Close() })
	applyFixtures(tb, db)
	return db
}

// Singleton container state
var (
	singletonOnce sync.Once
	singletonDSN  string
	singletonErr  error
)

// ensureSingleton lazily resolves the admin DSN: the configured server, or a
// PostgreSQL container started on first use.
func ensureSingleton() (string, error) {
	singletonOnce.Do(func() {
		if dsn := externalPostgresURL(); dsn != "" {
			singletonDSN = dsn
			return
		}

		ctx := context.Background()
		container, err := postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("postgres"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			singletonErr = fmt.Errorf("failed to start PostgreSQL container: %w", err)
			return
		}

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = container.Terminate(ctx)
			singletonErr = fmt.Errorf("failed to get PostgreSQL connection string: %w", err)
			return
		}

		singletonDSN = dsn
		// Container is not stored - ryuk will handle cleanup automatically
	})

	return singletonDSN, singletonErr
}

// Postgres returns a fresh, isolated PostgreSQL database.
func Postgres(tb testing.TB) *sql.DB {
	tb.Helper()

	if testing.Short() {
		tb.Skip("skipping PostgreSQL in short mode")
	}

	adminDSN, err := ensureSingleton()
	if err != nil {
		tb.Skipf("PostgreSQL unavailable: %v", err)
	}

	dbName := uniqueDBName("countcmp")
	require.NoError(tb, execAdmin(context.Background(), adminDSN, "CREATE DATABASE "+dbName),
		"failed to create test database")

	dsn, err := replaceDBName(adminDSN, dbName)
	require.NoError(tb, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(tb, err, "failed to connect to test database")
	require.NoError(tb, db.Ping(), "failed to ping test database")

	tb.Cleanup(func() {
		_ = db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = execAdmin(ctx, adminDSN, "DROP DATABASE IF EXISTS "+dbName+" WITH (FORCE)")
	})

	applyFixtures(tb, db)
	return db
}

// applyFixtures creates the fixture tables one statement at a time, since
// not every driver accepts multiple statements per Exec.
func applyFixtures(tb testing.TB, db *sql.DB) {
	tb.Helper()

	for _, stmt := range strings.Split(fixturesSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.Exec(stmt)
		require.NoError(tb, err, "failed to apply fixture: %s", stmt)
	}
}

// InsertItems inserts one items row per value, with ids 1..len(values),
// in order.
func InsertItems(tb testing.TB, db *sql.DB, values ...int) {
	tb.Helper()

	for i, v := range values {
		_, err := db.Exec(fmt.Sprintf("INSERT INTO items (id, value) VALUES (%d, %d)", i+1, v))
		require.NoError(tb, err, "failed to insert item")
	}
}

// InsertTag tags the item with the given id.
func InsertTag(tb testing.TB, db *sql.DB, itemID int, name string) {
	tb.Helper()

	_, err := db.Exec(fmt.Sprintf("INSERT INTO tags (item_id, name) VALUES (%d, %s)", itemID, sqldsl.Lit(name).SQL()))
	require.NoError(tb, err, "failed to insert tag")
}

// uniqueDBName generates a unique database name with the given prefix.
func uniqueDBName(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// execAdmin runs a statement on the admin database.
func execAdmin(ctx context.Context, adminDSN, stmt string) error {
	db, err := sql.Open("pgx", adminDSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	_, err = db.ExecContext(ctx, stmt)
	return err
}

// replaceDBName replaces the database name in a postgres:// DSN.
func replaceDBName(dsn, newDB string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse DSN: %w", err)
	}
	u.Path = "/" + newDB
	return u.String(), nil
}
