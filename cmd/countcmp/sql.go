package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/countcmp"
	"github.com/pthm/countcmp/internal/cli"
	"github.com/pthm/countcmp/pkg/query"
)

var (
	sqlFlags   datasetFlags
	sqlDialect string
)

var sqlCmd = &cobra.Command{
	Use:   "sql [op] [n]",
	Short: "Print the probe a comparison would issue",
	Long: `Print the single statement a comparison would issue, without connecting
to a database. Thresholds that decide the answer on their own issue no
statement; for those the answer is printed as a comment.`,
	Example: `  # Probe for "more than 3 items"
  countcmp sql gt 3 --table items

  # SQLite paging for an exact-count probe
  countcmp sql eq 2 --table items --dialect sqlite`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cc := sqlFlags.resolve(cmd, args)

		op, n, err := comparison(cc)
		if err != nil {
			return err
		}

		dialect, err := cfg.ResolvedDialect()
		if sqlDialect != "" {
			dialect, err = cli.ParseDialect(sqlDialect)
		}
		if err != nil {
			return cli.ConfigError("dialect", err)
		}

		ds, err := cc.Dataset(query.New(nil, query.WithDialect(dialect)))
		if err != nil {
			return cli.ConfigError("dataset configuration", err)
		}

		probe, err := countcmp.ProbeSQL(ds, op, n)
		if err != nil {
			return cli.Classify("rendering probe", err)
		}

		out := cmd.OutOrStdout()
		if probe == "" {
			// Static plans never touch the database, so this is the answer.
			answer, err := countcmp.Compare(cmd.Context(), ds, op, n)
			if err != nil {
				return cli.Classify("rendering probe", err)
			}
			_, err = fmt.Fprintf(out, "-- no query: %s %d is %t for every dataset\n", op, n, answer)
			return err
		}
		_, err = fmt.Fprintln(out, probe+";")
		return err
	},
}

func init() {
	sqlFlags.register(sqlCmd)
	sqlCmd.Flags().StringVar(&sqlDialect, "dialect", "", "paging dialect: postgres, sqlite, duckdb (default: from database.driver)")
}
