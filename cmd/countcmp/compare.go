package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/pthm/countcmp"
	"github.com/pthm/countcmp/internal/cli"
	"github.com/pthm/countcmp/pkg/query"
)

// datasetFlags are the dataset and comparison flags shared by compare and sql.
type datasetFlags struct {
	table string
	sql   string
	where []string
	order []string
}

func (f *datasetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.table, "table", "", "table to compare (overrides compare.table)")
	cmd.Flags().StringVar(&f.sql, "sql", "", "raw SELECT to compare (overrides compare.sql)")
	cmd.Flags().StringArrayVar(&f.where, "where", nil, "filter SQL fragment, repeatable; fragments are ANDed")
	cmd.Flags().StringArrayVar(&f.order, "order", nil, "ORDER BY fragment, repeatable (ignored by the probes)")
}

// resolve merges positional arguments and flags over compare.* config.
// Arguments are [op] [threshold].
func (f *datasetFlags) resolve(cmd *cobra.Command, args []string) cli.CompareConfig {
	cc := cfg.Compare
	if f.table != "" || f.sql != "" {
		cc.Table, cc.SQL = f.table, f.sql
	}
	if cmd.Flags().Changed("where") {
		cc.Where = f.where
	}
	if cmd.Flags().Changed("order") {
		cc.Order = f.order
	}
	if len(args) > 0 {
		cc.Op = args[0]
	}
	if len(args) > 1 {
		cc.Threshold = args[1]
	}
	return cc
}

// comparison validates the op and threshold of cc.
func comparison(cc cli.CompareConfig) (countcmp.Op, int64, error) {
	op, err := cc.ResolvedOp()
	if err != nil {
		return "", 0, cli.Classify("invalid comparison", err)
	}
	n, err := cc.ThresholdValue()
	if err != nil {
		return "", 0, cli.Classify("invalid threshold", err)
	}
	return op, n, nil
}

var (
	compareFlags      datasetFlags
	compareOutput     string
	compareExitStatus bool
)

var compareCmd = &cobra.Command{
	Use:   "compare [op] [n]",
	Short: "Compare the row count of a query to n",
	Long: `Compare the row count of a table or query to n with a single probe.

op is one of gt (>), lt (<), eq (=), gte (>=), lte (<=). Both op and n may
instead come from compare.op and compare.threshold in the configuration.`,
	Example: `  # More than 1000 open orders?
  countcmp compare gt 1000 --table orders --where "status = 'open'"

  # Exactly one admin, as JSON, against SQLite
  countcmp compare eq 1 --driver sqlite3 --db app.db --table users --where "role = 'admin'" -o json

  # Use the result in a shell condition
  countcmp compare gte 1 --table jobs --exit-status && echo "work to do"`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cc := compareFlags.resolve(cmd, args)
		cc.Output = resolveString(compareOutput, cc.Output)
		cc.ExitStatus = cc.ExitStatus || compareExitStatus

		op, n, err := comparison(cc)
		if err != nil {
			return err
		}

		dialect, err := cfg.ResolvedDialect()
		if err != nil {
			return cli.ConfigError("database configuration", err)
		}
		dsn, err := cfg.DSN()
		if err != nil {
			return cli.ConfigError("database configuration", err)
		}

		sqlDB, err := sql.Open(cfg.Database.Driver, dsn)
		if err != nil {
			return cli.DBConnectError("connecting to database", err)
		}
		defer func() { _ = sqlDB.Close() }()

		ctx := cmd.Context()
		if err := sqlDB.PingContext(ctx); err != nil {
			return cli.DBConnectError("connecting to database", err)
		}

		db := query.New(sqlDB, query.WithDialect(dialect), query.WithLogger(logger))
		ds, err := cc.Dataset(db)
		if err != nil {
			return cli.ConfigError("dataset configuration", err)
		}

		probe, err := countcmp.ProbeSQL(ds, op, n)
		if err != nil {
			return cli.Classify("comparing", err)
		}
		ok, err := countcmp.Compare(ctx, ds, op, n)
		if err != nil {
			return cli.Classify("comparing", err)
		}
		logger.Info("compared", "op", string(op), "threshold", n, "result", ok)

		res := compareResult{Op: string(op), Threshold: n, Result: ok, SQL: probe}
		if err := res.write(cmd.OutOrStdout(), cc.Output); err != nil {
			return cli.GeneralError("writing result", err)
		}

		if cc.ExitStatus && !ok {
			return &cli.ExitError{Code: cli.ExitGeneral}
		}
		return nil
	},
}

// compareResult is the machine-readable output of compare.
type compareResult struct {
	Op        string `json:"op"`
	Threshold int64  `json:"threshold"`
	Result    bool   `json:"result"`
	SQL       string `json:"sql,omitempty"`
}

func (r compareResult) write(w io.Writer, format string) error {
	switch format {
	case "", "text":
		_, err := fmt.Fprintln(w, r.Result)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		out, err := yaml.Marshal(r)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unknown output format %q (want text, json, or yaml)", format)
	}
}

func init() {
	compareFlags.register(compareCmd)
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "", "output format: text, json, yaml")
	compareCmd.Flags().BoolVar(&compareExitStatus, "exit-status", false, "exit 1 when the comparison is false")
}
