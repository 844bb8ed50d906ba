// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package pullexec

import (
	"context"
	"testing"

	"github.com/TheDarkFlame/ksql/pkg/materialize"
	"github.com/TheDarkFlame/ksql/pkg/materialize/inmem"
	"github.com/TheDarkFlame/ksql/pkg/sql/plan"
	"github.com/TheDarkFlame/ksql/pkg/sql/row"
	"github.com/TheDarkFlame/ksql/pkg/sql/schema"
	"github.com/TheDarkFlame/ksql/pkg/sql/transform"
	"github.com/TheDarkFlame/ksql/pkg/sql/types"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

// ordersValueSchema is the value-column schema of the orders fixture; the
// key is a single BIGINT id.
func ordersValueSchema() schema.Schema {
	return schema.MakeSchema(
		schema.Column{Name: "name", Typ: types.String},
		schema.Column{Name: "price", Typ: types.Double},
	)
}

var ordersFixture = []struct {
	id    int64
	name  string
	price float64
}{
	{1, "apple", 1.5},
	{2, "banana", 2.5},
	{3, "cherry", 3.5},
	{4, "dates", 4.5},
	{5, "elder", 5.5},
}

func seedOrders(t *testing.T) *inmem.Table {
	t.Helper()
	tbl := inmem.New()
	for _, o := range ordersFixture {
		r := row.MakeStored(row.Key{o.id}, []any{o.name, o.price}, 1000+o.id)
		require.NoError(t, tbl.Put(r))
	}
	return tbl
}

func ordersScan(point row.Key, span *materialize.Span) *plan.Scan {
	return &plan.Scan{Table: "orders", Schema: ordersValueSchema(), Point: point, Span: span}
}

// exprFn adapts a function to transform.Expression for predicates and
// selects under test.
type exprFn func(key row.Key, in row.Intermediate, evalCtx transform.Context) (any, error)

func (f exprFn) Eval(
	_ context.Context, key row.Key, in row.Intermediate, evalCtx transform.Context,
) (any, error) {
	return f(key, in, evalCtx)
}

// rowSource is a leaf operator yielding a fixed list of stored rows. It
// tracks its lifecycle so tests can assert on propagation.
type rowSource struct {
	zeroInput
	rows []row.Stored

	idx    int
	opened bool
	closed bool
}

func (s *rowSource) Open(ctx context.Context) error {
	s.opened = true
	return nil
}

func (s *rowSource) Next(ctx context.Context) (bool, error) {
	if s.idx >= len(s.rows) {
		return false, nil
	}
	s.idx++
	return true, nil
}

func (s *rowSource) Values() row.Row { return s.rows[s.idx-1] }

func (s *rowSource) Close(ctx context.Context) { s.closed = true }

func (s *rowSource) Node() plan.Node { return nil }

// trackingTable wraps a materialize.Table, counting the cursors handed out
// and how many of them were closed.
type trackingTable struct {
	materialize.Table
	cursors int
	closed  int
}

func (t *trackingTable) Lookup(ctx context.Context, key row.Key) (materialize.Cursor, error) {
	c, err := t.Table.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	t.cursors++
	return &trackingCursor{Cursor: c, table: t}, nil
}

func (t *trackingTable) Scan(ctx context.Context, span materialize.Span) (materialize.Cursor, error) {
	c, err := t.Table.Scan(ctx, span)
	if err != nil {
		return nil, err
	}
	t.cursors++
	return &trackingCursor{Cursor: c, table: t}, nil
}

type trackingCursor struct {
	materialize.Cursor
	table *trackingTable
	done  bool
}

func (c *trackingCursor) Close(ctx context.Context) error {
	if !c.done {
		c.done = true
		c.table.closed++
	}
	return c.Cursor.Close(ctx)
}

// spyOperator counts calls passing through to the wrapped operator.
type spyOperator struct {
	Operator
	nexts  int
	closes int
}

func (s *spyOperator) Next(ctx context.Context) (bool, error) {
	s.nexts++
	return s.Operator.Next(ctx)
}

func (s *spyOperator) Close(ctx context.Context) {
	s.closes++
	s.Operator.Close(ctx)
}

// drainOperator runs the full lifecycle against op and returns the values of
// every row produced.
func drainOperator(t *testing.T, op Operator) [][]any {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, op.Open(ctx))
	defer op.Close(ctx)
	var out [][]any
	for {
		ok, err := op.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		out = append(out, append([]any{}, op.Values().Values()...))
	}
	// End of stream is sticky.
	ok, err := op.Next(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	return out
}

func storedRow(id int64, vals ...any) row.Stored {
	return row.MakeStored(row.Key{id}, vals, 1000+id)
}

func TestSingleInputWiring(t *testing.T) {
	f := &filterOperator{}
	require.Equal(t, 1, f.InputCount())

	in, err := f.Input(0)
	require.NoError(t, err)
	require.Nil(t, in)

	_, err = f.Input(1)
	require.True(t, errors.HasAssertionFailure(err))

	err = f.SetInput(1, &rowSource{})
	require.True(t, errors.HasAssertionFailure(err))
	require.Contains(t, err.Error(), "input index 1 is out of range")

	err = f.SetInput(0, nil)
	require.True(t, errors.HasAssertionFailure(err))

	first := &rowSource{}
	require.NoError(t, f.SetInput(0, first))

	// A second assignment fails and leaves the first input in place.
	err = f.SetInput(0, &rowSource{})
	require.True(t, errors.HasAssertionFailure(err))
	require.Contains(t, err.Error(), "input already set")
	in, err = f.Input(0)
	require.NoError(t, err)
	require.Same(t, Operator(first), in)
}

func TestZeroInputWiring(t *testing.T) {
	s := &scanOperator{node: ordersScan(row.Key{int64(1)}, nil)}
	require.Equal(t, 0, s.InputCount())

	_, err := s.Input(0)
	require.True(t, errors.HasAssertionFailure(err))

	err = s.SetInput(0, &rowSource{})
	require.True(t, errors.HasAssertionFailure(err))
}

func TestOpenWithoutInput(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name string
		op   Operator
	}{
		{"filter", &filterOperator{node: &plan.Filter{}}},
		{"project", &projectOperator{node: &plan.Project{}}},
		{"limit", &limitOperator{node: &plan.Limit{}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.op.Open(ctx)
			require.True(t, errors.HasAssertionFailure(err))
			require.Contains(t, err.Error(), "has no input")
		})
	}
}

func TestCloseWithoutOpen(t *testing.T) {
	ctx := context.Background()
	src := &rowSource{rows: []row.Stored{storedRow(1, "a")}}
	f := &filterOperator{node: &plan.Filter{Expr: "true"}, sink: nil}
	require.NoError(t, f.SetInput(0, src))

	// Close propagates down a tree that was never opened.
	f.Close(ctx)
	require.True(t, src.closed)
	require.False(t, src.opened)

	// Next after Close reports end of stream rather than failing.
	ok, err := f.Next(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCloseReleasesInputOnce(t *testing.T) {
	ctx := context.Background()
	src := &rowSource{}
	spy := &spyOperator{Operator: src}
	l := &limitOperator{node: &plan.Limit{Count: 10}}
	require.NoError(t, l.SetInput(0, spy))

	l.Close(ctx)
	l.Close(ctx)
	require.Equal(t, 1, spy.closes)
	require.True(t, src.closed)
}
