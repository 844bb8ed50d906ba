// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package transform declares the contracts between the pull-query execution
// layer and the expression compiler: compiled expressions, the per-row
// evaluation context, and the transformer that maps intermediate rows to a
// projection's output values. The compiler itself is an external
// collaborator; this package additionally provides the default select
// transformer and a small set of canned expression forms used by tests and
// the demo binary.
package transform

import (
	"context"

	"github.com/TheDarkFlame/ksql/pkg/proclog"
	"github.com/TheDarkFlame/ksql/pkg/sql/row"
	"github.com/cockroachdb/errors"
)

// Context carries the per-row state available to compiled expressions beyond
// the row itself. It is constructed fresh for every row.
type Context struct {
	rowTime int64
}

// MakeContext returns a Context for a row with the given logical timestamp.
func MakeContext(rowTime int64) Context {
	return Context{rowTime: rowTime}
}

// RowTime returns the processed row's logical timestamp in milliseconds
// since the unix epoch.
func (c Context) RowTime() int64 { return c.rowTime }

// Expression is the executable form of a compiled SQL expression, opaque to
// the execution layer.
type Expression interface {
	Eval(ctx context.Context, key row.Key, in row.Intermediate, evalCtx Context) (any, error)
}

// SelectExpression is one output column of a projection: the alias naming it
// and the display text of the expression producing it. The executable form
// travels separately as an Expression.
type SelectExpression struct {
	Alias string
	Expr  string
}

// Transformer maps one intermediate row to the projection's output values.
type Transformer interface {
	Transform(ctx context.Context, key row.Key, in row.Intermediate, evalCtx Context) ([]any, error)
}

// Factory builds the Transformer for a projection from its select
// expressions and their compiled forms. It is an injected strategy so tests
// can substitute the transformer wholesale.
type Factory interface {
	Create(selects []SelectExpression, compiled []Expression, sink proclog.Logger) (Transformer, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(selects []SelectExpression, compiled []Expression, sink proclog.Logger) (Transformer, error)

// Create implements Factory.
func (f FactoryFunc) Create(
	selects []SelectExpression, compiled []Expression, sink proclog.Logger,
) (Transformer, error) {
	return f(selects, compiled, sink)
}

// DefaultFactory builds the standard select transformer: each compiled
// expression is evaluated in select order against the intermediate row. An
// expression that fails evaluates to NULL for its column and the failure
// goes to the processing-error sink; per-row evaluation trouble is an
// observability event, never a query error.
var DefaultFactory Factory = FactoryFunc(newSelectTransformer)

func newSelectTransformer(
	selects []SelectExpression, compiled []Expression, sink proclog.Logger,
) (Transformer, error) {
	if len(selects) != len(compiled) {
		return nil, errors.AssertionFailedf(
			"%d select expressions with %d compiled forms", len(selects), len(compiled))
	}
	if sink == nil {
		sink = proclog.Nop{}
	}
	return &selectTransformer{selects: selects, compiled: compiled, sink: sink}, nil
}

type selectTransformer struct {
	selects  []SelectExpression
	compiled []Expression
	sink     proclog.Logger
}

var _ Transformer = (*selectTransformer)(nil)

// Transform implements Transformer.
func (t *selectTransformer) Transform(
	ctx context.Context, key row.Key, in row.Intermediate, evalCtx Context,
) ([]any, error) {
	out := make([]any, len(t.compiled))
	for i, expr := range t.compiled {
		v, err := expr.Eval(ctx, key, in, evalCtx)
		if err != nil {
			t.sink.RecordError(ctx, errors.Wrapf(err, "evaluating %s", t.selects[i].Expr), in.Values())
			continue // the column stays NULL
		}
		out[i] = v
	}
	return out, nil
}
