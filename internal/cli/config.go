package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pthm/countcmp"
	"github.com/pthm/countcmp/pkg/query"
	"github.com/pthm/countcmp/pkg/sqldsl"
)

const (
	maxWalkDepth = 25
)

// Database drivers the CLI registers.
const (
	DriverPostgres = "postgres" // github.com/lib/pq
	DriverPgx      = "pgx"      // github.com/jackc/pgx/v5/stdlib
	DriverSQLite   = "sqlite3"  // github.com/mattn/go-sqlite3
	DriverDuckDB   = "duckdb"   // github.com/duckdb/duckdb-go/v2
)

// Config represents the countcmp configuration from countcmp.yaml.
type Config struct {
	LogLevel string `mapstructure:"log_level" json:"log_level"`

	Database DatabaseConfig `mapstructure:"database" json:"database"`
	Compare  CompareConfig  `mapstructure:"compare" json:"compare"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL      string `mapstructure:"url" json:"url"`
	Driver   string `mapstructure:"driver" json:"driver"`
	Dialect  string `mapstructure:"dialect" json:"dialect"`
	Host     string `mapstructure:"host" json:"host"`
	Port     int    `mapstructure:"port" json:"port"`
	Name     string `mapstructure:"name" json:"name"`
	User     string `mapstructure:"user" json:"user"`
	Password string `mapstructure:"password" json:"password"`
	SSLMode  string `mapstructure:"sslmode" json:"sslmode"`
}

// CompareConfig describes the dataset and comparison the compare command runs.
type CompareConfig struct {
	// Table and SQL are mutually exclusive sources.
	Table string   `mapstructure:"table" json:"table"`
	SQL   string   `mapstructure:"sql" json:"sql"`
	Where []string `mapstructure:"where" json:"where"`
	Order []string `mapstructure:"order" json:"order"`

	Op string `mapstructure:"op" json:"op"`
	// Threshold is left untyped: YAML decodes it as a number, the
	// environment as a string. See ThresholdValue.
	Threshold any `mapstructure:"threshold" json:"threshold"`

	Output     string `mapstructure:"output" json:"output"`
	ExitStatus bool   `mapstructure:"exit_status" json:"exit_status"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("COUNTCMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "warn")

	// Database defaults
	v.SetDefault("database.url", "")
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.dialect", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "prefer")

	// Compare defaults
	v.SetDefault("compare.table", "")
	v.SetDefault("compare.sql", "")
	v.SetDefault("compare.where", []string{})
	v.SetDefault("compare.order", []string{})
	v.SetDefault("compare.op", "")
	// No default threshold; bound so COUNTCMP_COMPARE_THRESHOLD is seen.
	_ = v.BindEnv("compare.threshold")
	v.SetDefault("compare.output", "text")
	v.SetDefault("compare.exit_status", false)
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for countcmp.yaml or countcmp.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range []string{"countcmp.yaml", "countcmp.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		// Check for repo boundary (.git file or directory)
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}

// DSN returns the connection string for the configured driver.
// If database.url is set, it's returned directly. Otherwise Postgres drivers
// build a postgres:// URL from discrete fields, and the embedded drivers use
// database.name as the file path (in-memory when empty).
func (c *Config) DSN() (string, error) {
	db := c.Database

	if db.URL != "" {
		return db.URL, nil
	}

	switch db.Driver {
	case DriverSQLite:
		if db.Name == "" {
			return ":memory:", nil
		}
		return db.Name, nil
	case DriverDuckDB:
		return db.Name, nil
	}

	if db.Host == "" {
		return "", fmt.Errorf("database.host is required when database.url is not set")
	}
	if db.Name == "" {
		return "", fmt.Errorf("database.name is required when database.url is not set")
	}
	if db.User == "" {
		return "", fmt.Errorf("database.user is required when database.url is not set")
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   "/" + db.Name,
	}

	if db.Password != "" {
		u.User = url.UserPassword(db.User, db.Password)
	} else {
		u.User = url.User(db.User)
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// Redacted returns a copy of the config safe to print: database.password is
// masked, and so is any password in database.url. A URL that does not parse
// (a bare file path, a key=value DSN) is returned as is.
func (c *Config) Redacted() Config {
	const mask = "********"

	out := *c
	if out.Database.Password != "" {
		out.Database.Password = mask
	}
	if u, err := url.Parse(out.Database.URL); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), mask)
			out.Database.URL = u.String()
		}
	}
	return out
}

// ResolvedDialect returns the paging dialect: database.dialect when set,
// otherwise the one implied by database.driver.
func (c *Config) ResolvedDialect() (sqldsl.Dialect, error) {
	name := c.Database.Dialect
	if name == "" {
		name = c.Database.Driver
	}
	return ParseDialect(name)
}

// ParseDialect resolves a dialect from its name or from a driver name.
func ParseDialect(name string) (sqldsl.Dialect, error) {
	switch strings.ToLower(name) {
	case "", "postgres", "postgresql", DriverPgx:
		return sqldsl.Postgres, nil
	case "sqlite", DriverSQLite:
		return sqldsl.SQLite, nil
	case DriverDuckDB:
		return sqldsl.DuckDB, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q", name)
	}
}

// ResolvedOp parses compare.op.
func (c *CompareConfig) ResolvedOp() (countcmp.Op, error) {
	if c.Op == "" {
		return "", fmt.Errorf("compare.op is required")
	}
	return countcmp.ParseOp(c.Op)
}

// ThresholdValue converts compare.threshold to an int64. Text (from the
// environment or a flag) is parsed; any other value must already be an
// integer.
func (c *CompareConfig) ThresholdValue() (int64, error) {
	if s, ok := c.Threshold.(string); ok {
		return countcmp.ParseThreshold(s)
	}
	return countcmp.Threshold(c.Threshold)
}

// Dataset builds the dataset to compare from the table or raw SQL source,
// with where entries ANDed and order entries applied in order. Entries are
// SQL fragments used verbatim.
func (c *CompareConfig) Dataset(db *query.DB) (query.Dataset, error) {
	var ds query.Dataset
	switch {
	case c.Table != "" && c.SQL != "":
		return query.Dataset{}, fmt.Errorf("compare.table and compare.sql are mutually exclusive")
	case c.Table != "":
		ds = db.From(c.Table)
	case c.SQL != "":
		ds = db.WithSQL(c.SQL)
	default:
		return query.Dataset{}, fmt.Errorf("one of compare.table or compare.sql is required")
	}

	// Each filter is parenthesized so an OR inside one cannot bind across
	// the AND joining them.
	if where := rawExprs(c.Where, true); len(where) > 0 {
		ds = ds.Where(where...)
	}
	if order := rawExprs(c.Order, false); len(order) > 0 {
		ds = ds.OrderBy(order...)
	}
	return ds, nil
}

func rawExprs(fragments []string, paren bool) []sqldsl.Expr {
	exprs := make([]sqldsl.Expr, 0, len(fragments))
	for _, f := range fragments {
		f = strings.TrimSpace(f)
		switch {
		case f == "":
		case paren:
			exprs = append(exprs, sqldsl.Paren{Expr: sqldsl.Raw(f)})
		default:
			exprs = append(exprs, sqldsl.Raw(f))
		}
	}
	return exprs
}
