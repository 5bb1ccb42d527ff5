package testutil

import (
	"net/url"
	"os"
)

// externalPostgresURL returns the admin URL of a PostgreSQL server named by
// the environment, or "" to start a container.
//
// COUNTCMP_TEST_DATABASE_URL wins, then DATABASE_URL. Without either, a
// server given by PGHOST is assembled from the libpq PG* variables.
func externalPostgresURL() string {
	for _, key := range []string{"COUNTCMP_TEST_DATABASE_URL", "DATABASE_URL"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}

	host := os.Getenv("PGHOST")
	if host == "" {
		return ""
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   host + ":" + envOr("PGPORT", "5432"),
		Path:   "/" + envOr("PGDATABASE", "postgres"),
	}
	user := envOr("PGUSER", "postgres")
	if pw := os.Getenv("PGPASSWORD"); pw != "" {
		u.User = url.UserPassword(user, pw)
	} else {
		u.User = url.User(user)
	}
	u.RawQuery = url.Values{"sslmode": {envOr("PGSSLMODE", "disable")}}.Encode()
	return u.String()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
