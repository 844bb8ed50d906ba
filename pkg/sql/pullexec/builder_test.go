// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package pullexec

import (
	"context"
	"testing"

	"github.com/TheDarkFlame/ksql/pkg/materialize"
	"github.com/TheDarkFlame/ksql/pkg/sql/plan"
	"github.com/TheDarkFlame/ksql/pkg/sql/row"
	"github.com/TheDarkFlame/ksql/pkg/sql/schema"
	"github.com/TheDarkFlame/ksql/pkg/sql/transform"
	"github.com/TheDarkFlame/ksql/pkg/sql/types"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestBuildWiresTree(t *testing.T) {
	b := MakeBuilder(seedOrders(t))
	p, err := b.Build(pipelinePlan(2))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, p.QueryID)

	// The operator chain mirrors the plan chain, leaf at the bottom.
	limit := p.Root
	require.IsType(t, &plan.Limit{}, limit.Node())

	project, err := limit.Input(0)
	require.NoError(t, err)
	require.IsType(t, &plan.Project{}, project.Node())

	filter, err := project.Input(0)
	require.NoError(t, err)
	require.IsType(t, &plan.Filter{}, filter.Node())

	scan, err := filter.Input(0)
	require.NoError(t, err)
	require.IsType(t, &plan.Scan{}, scan.Node())
	require.Zero(t, scan.InputCount())

	// The plan's schema is the projection's declared schema.
	require.Equal(t, ordersValueSchema().String(), p.Schema.String())
}

func TestBuildScanOnlySchema(t *testing.T) {
	b := MakeBuilder(seedOrders(t))
	p, err := b.Build(&plan.Limit{Source: ordersScan(nil, nil), Count: 3})
	require.NoError(t, err)
	// Without a projection the root yields the scan's value columns.
	require.Equal(t, ordersValueSchema().String(), p.Schema.String())
}

func TestBuildErrors(t *testing.T) {
	starSchema := schema.MakeSchema(schema.Column{Name: "id", Typ: types.Integer})
	for _, tc := range []struct {
		name      string
		node      plan.Node
		assertion bool
		want      string
	}{
		{
			name:      "nil plan",
			node:      nil,
			assertion: true,
			want:      "nil plan",
		},
		{
			name:      "point and span",
			node:      ordersScan(row.Key{int64(1)}, &materialize.Span{}),
			assertion: true,
			want:      "both a point and a span",
		},
		{
			name:      "filter without predicate",
			node:      &plan.Filter{Source: ordersScan(nil, nil), Expr: "?"},
			assertion: true,
			want:      "filter without a predicate",
		},
		{
			name: "project without selects",
			node: &plan.Project{
				Source: ordersScan(nil, nil),
				Schema: ordersValueSchema(),
			},
			assertion: true,
			want:      "projection with no select expressions",
		},
		{
			name: "selects and compiled diverge",
			node: &plan.Project{
				Source: ordersScan(nil, nil),
				Selects: []transform.SelectExpression{
					{Alias: "a", Expr: "A"},
					{Alias: "b", Expr: "B"},
				},
				Compiled: []transform.Expression{transform.ColumnRef(0)},
				Schema:   ordersValueSchema(),
			},
			assertion: true,
			want:      "2 select expressions with 1 compiled forms",
		},
		{
			name: "star without intermediate schema",
			node: &plan.Project{
				Source:     ordersScan(nil, nil),
				Selects:    []transform.SelectExpression{{Alias: "id", Expr: "ID"}},
				Schema:     starSchema,
				SelectStar: true,
			},
			assertion: true,
			want:      "select-star projection without an intermediate schema",
		},
		{
			name:      "negative limit",
			node:      &plan.Limit{Source: ordersScan(nil, nil), Count: -1},
			assertion: false,
			want:      "limit must not be negative: -1",
		},
		{
			name: "nested failure surfaces",
			node: &plan.Limit{
				Source: &plan.Filter{Source: ordersScan(nil, nil), Expr: "?"},
				Count:  1,
			},
			assertion: true,
			want:      "filter without a predicate",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := MakeBuilder(seedOrders(t))
			_, err := b.Build(tc.node)
			require.Error(t, err)
			require.Equal(t, tc.assertion, errors.HasAssertionFailure(err))
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestBuildWithoutTable(t *testing.T) {
	var b Builder
	_, err := b.Build(ordersScan(nil, nil))
	require.True(t, errors.HasAssertionFailure(err))
	require.Contains(t, err.Error(), "builder has no table")
}

func TestBuildTableScanDisabled(t *testing.T) {
	b := MakeBuilder(seedOrders(t))
	b.Config.TableScanEnabled = false

	// Range scans are refused with a user-class error.
	_, err := b.Build(ordersScan(nil, nil))
	require.Error(t, err)
	require.False(t, errors.HasAssertionFailure(err))
	require.Contains(t, err.Error(), "table scans are disabled")

	_, err = b.Build(ordersScan(nil, &materialize.Span{Start: row.Key{int64(1)}}))
	require.Error(t, err)

	// Point lookups still build.
	p, err := b.Build(ordersScan(row.Key{int64(1)}, nil))
	require.NoError(t, err)
	var n int
	require.NoError(t, p.Run(context.Background(), func(row.Row) error {
		n++
		return nil
	}))
	require.Equal(t, 1, n)
}

func TestBuildZeroValueDefaults(t *testing.T) {
	// A Builder constructed by hand with only a table still executes
	// projections: factory and sink fall back to the defaults.
	b := Builder{Table: seedOrders(t), Config: Config{TableScanEnabled: true}}
	p, err := b.Build(pipelinePlan(1))
	require.NoError(t, err)

	var rows [][]any
	require.NoError(t, p.Run(context.Background(), func(r row.Row) error {
		rows = append(rows, append([]any{}, r.Values()...))
		return nil
	}))
	require.Equal(t, [][]any{{"banana", 2.5}}, rows)
}
