package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExternalPostgresURL(t *testing.T) {
	unsetAll := func(t *testing.T) {
		for _, key := range []string{
			"COUNTCMP_TEST_DATABASE_URL", "DATABASE_URL",
			"PGHOST", "PGPORT", "PGDATABASE", "PGUSER", "PGPASSWORD", "PGSSLMODE",
		} {
			t.Setenv(key, "")
		}
	}

	t.Run("container when unset", func(t *testing.T) {
		unsetAll(t)
		assert.Empty(t, externalPostgresURL())
	})

	t.Run("project url wins", func(t *testing.T) {
		unsetAll(t)
		t.Setenv("DATABASE_URL", "postgres://shared@db/app")
		t.Setenv("COUNTCMP_TEST_DATABASE_URL", "postgres://ci@db/countcmp")
		assert.Equal(t, "postgres://ci@db/countcmp", externalPostgresURL())
	})

	t.Run("libpq variables", func(t *testing.T) {
		unsetAll(t)
		t.Setenv("PGHOST", "db")
		t.Setenv("PGUSER", "ci")
		t.Setenv("PGPASSWORD", "pw")
		assert.Equal(t, "postgres://ci:pw@db:5432/postgres?sslmode=disable", externalPostgresURL())
	})
}
