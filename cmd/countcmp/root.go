package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/countcmp/internal/cli"
)

var (
	// Global state set during PersistentPreRunE
	cfg        *cli.Config
	configPath string
	logger     = slog.New(slog.DiscardHandler)

	// Persistent flags
	cfgFile  string
	dbURL    string
	driver   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "countcmp",
	Short: "Compare query row counts without counting",
	Long: `countcmp - Compare query row counts without counting

countcmp answers whether a query returns more than, fewer than, at least,
at most, or exactly N rows with a single OFFSET/EXISTS probe, so the
database stops after at most N+1 rows instead of counting all of them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for help/completion/version commands
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}

		// Flags take precedence over env and file.
		cfg.Database.URL = resolveString(dbURL, cfg.Database.URL)
		cfg.Database.Driver = resolveString(driver, cfg.Database.Driver)
		cfg.LogLevel = resolveString(logLevel, cfg.LogLevel)

		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return cli.ConfigError(fmt.Sprintf("invalid log level %q", cfg.LogLevel), err)
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		return nil
	},
	SilenceUsage:  true, // Don't show usage on errors
	SilenceErrors: true, // We handle errors ourselves
}

// Command group IDs
const (
	groupQuery   = "query"
	groupUtility = "utility"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover countcmp.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "database URL or file (overrides database.url)")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "database driver: postgres, pgx, sqlite3, duckdb")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupQuery, Title: "Query:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	compareCmd.GroupID = groupQuery
	sqlCmd.GroupID = groupQuery
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(sqlCmd)

	configCmd.GroupID = groupUtility
	versionCmd.GroupID = groupUtility
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

// resolveString returns the first non-empty string from the provided values.
// Used to implement precedence: flag > config > default.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
