// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// pullsql seeds in-memory materialized tables from a TOML file and runs one
// pull query against them. It exists to exercise and demonstrate the pull
// execution layer; the query surface is a point lookup or key-range scan
// shaped by an optional filter, projection, and limit.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/TheDarkFlame/ksql/pkg/materialize"
	"github.com/TheDarkFlame/ksql/pkg/proclog"
	"github.com/TheDarkFlame/ksql/pkg/sql/plan"
	"github.com/TheDarkFlame/ksql/pkg/sql/pullexec"
	"github.com/TheDarkFlame/ksql/pkg/sql/row"
	"github.com/TheDarkFlame/ksql/pkg/sql/schema"
	"github.com/TheDarkFlame/ksql/pkg/sql/transform"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flags struct {
	data           string
	table          string
	key            string
	from           string
	to             string
	selects        []string
	filter         string
	limit          int64
	explain        bool
	allowTableScan bool
}

var rootCmd = &cobra.Command{
	Use:   "pullsql",
	Short: "Run pull queries against TOML-seeded materialized tables",
	Long: `pullsql seeds in-memory materialized tables from a TOML file and runs a
single pull query against one of them: a point lookup by key, or a key-range
scan shaped by an optional filter, projection, and limit.

Examples:
  pullsql --data orders.toml --table orders --key 3
  pullsql --data orders.toml --table orders --from 2 --to 5 --select name,price --allow-table-scan
  pullsql --data orders.toml --table orders --filter "price > 2" --limit 10 --allow-table-scan
  pullsql --data orders.toml --table orders --key 3 --explain`,
	SilenceUsage: true,
	RunE:         runQuery,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flags.data, "data", "", "TOML file seeding the tables")
	f.StringVar(&flags.table, "table", "", "table to query")
	f.StringVar(&flags.key, "key", "", "point lookup key (comma-separated for composite keys)")
	f.StringVar(&flags.from, "from", "", "range scan start key, inclusive")
	f.StringVar(&flags.to, "to", "", "range scan end key, exclusive")
	f.StringSliceVar(&flags.selects, "select", nil, "columns to project, in output order")
	f.StringVar(&flags.filter, "filter", "", `filter predicate, e.g. "price > 2"`)
	f.Int64Var(&flags.limit, "limit", 0, "maximum rows to return (0 = unlimited)")
	f.BoolVar(&flags.explain, "explain", false, "print the operator tree instead of running")
	f.BoolVar(&flags.allowTableScan, "allow-table-scan", false, "permit range scans")
	_ = rootCmd.MarkFlagRequired("data")
	_ = rootCmd.MarkFlagRequired("table")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runQuery(cmd *cobra.Command, _ []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	catalog, err := loadCatalog(flags.data)
	if err != nil {
		return err
	}
	tbl, ok := catalog[flags.table]
	if !ok {
		return errors.Newf("table %q not found in %s", flags.table, flags.data)
	}

	node, err := buildPlan(tbl)
	if err != nil {
		return err
	}

	b := pullexec.MakeBuilder(tbl.data)
	b.Sink = proclog.NewZapLogger(logger, time.Second)
	b.Config.TableScanEnabled = flags.allowTableScan
	p, err := b.Build(node)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if flags.explain {
		fmt.Fprint(w, p.Explain())
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	cols := make([]string, p.Schema.NumColumns())
	for i := range cols {
		cols[i] = p.Schema.Column(i).Name
	}
	table.SetHeader(cols)

	start := time.Now()
	var n int64
	err = p.Run(context.Background(), func(r row.Row) error {
		cells := make([]string, len(r.Values()))
		for i, v := range r.Values() {
			cells[i] = formatValue(v)
		}
		table.Append(cells)
		n++
		return nil
	})
	if err != nil {
		return err
	}
	table.Render()

	plural := "s"
	if n == 1 {
		plural = ""
	}
	fmt.Fprintf(w, "(%s row%s in %s)\n",
		humanize.Comma(n), plural, time.Since(start).Round(time.Microsecond))
	return nil
}

// buildPlan assembles the logical plan the flags describe: scan, then
// filter, then projection, then limit.
func buildPlan(tbl *seededTable) (plan.Node, error) {
	scan := &plan.Scan{Table: tbl.name, Schema: tbl.schema}
	switch {
	case flags.key != "":
		if flags.from != "" || flags.to != "" {
			return nil, errors.Newf("--key cannot be combined with --from/--to")
		}
		key, err := tbl.parseKey(flags.key, false /* allowPrefix */)
		if err != nil {
			return nil, err
		}
		scan.Point = key
	case flags.from != "" || flags.to != "":
		span := &materialize.Span{}
		var err error
		if flags.from != "" {
			if span.Start, err = tbl.parseKey(flags.from, true /* allowPrefix */); err != nil {
				return nil, err
			}
		}
		if flags.to != "" {
			if span.End, err = tbl.parseKey(flags.to, true /* allowPrefix */); err != nil {
				return nil, err
			}
		}
		scan.Span = span
	}
	var node plan.Node = scan

	if flags.filter != "" {
		pred, display, err := parsePredicate(flags.filter, tbl.schema)
		if err != nil {
			return nil, err
		}
		node = &plan.Filter{Source: node, Predicate: pred, Expr: display}
	}

	if len(flags.selects) > 0 {
		selects := make([]transform.SelectExpression, len(flags.selects))
		cols := make([]schema.Column, len(flags.selects))
		for i, name := range flags.selects {
			col, ok := tbl.schema.FindColumn(name)
			if !ok {
				return nil, errors.Newf("column %q not found in table %s", name, tbl.name)
			}
			selects[i] = transform.SelectExpression{Alias: col.Name, Expr: strings.ToUpper(col.Name)}
			cols[i] = schema.Column{Name: col.Name, Typ: col.Typ}
		}
		node = &plan.Project{
			Source:             node,
			Selects:            selects,
			Schema:             schema.MakeSchema(cols...),
			IntermediateSchema: tbl.schema,
			SelectStar:         true,
		}
	}

	if flags.limit > 0 {
		node = &plan.Limit{Source: node, Count: flags.limit}
	}
	return node, nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []byte:
		return fmt.Sprintf("\\x%x", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
