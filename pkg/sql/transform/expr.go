// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package transform

import (
	"context"

	"github.com/TheDarkFlame/ksql/pkg/sql/row"
	"github.com/cockroachdb/errors"
)

// ColumnRef returns a compiled expression reading position idx of the
// intermediate row.
func ColumnRef(idx int) Expression { return columnRef(idx) }

type columnRef int

// Eval implements Expression.
func (c columnRef) Eval(
	_ context.Context, _ row.Key, in row.Intermediate, _ Context,
) (any, error) {
	vals := in.Values()
	if int(c) < 0 || int(c) >= len(vals) {
		return nil, errors.Newf("column index %d out of range in row of %d columns", int(c), len(vals))
	}
	return vals[c], nil
}

// KeyRef returns a compiled expression reading position idx of the row's
// key. Plans that widen the intermediate row address key columns by
// intermediate position instead; KeyRef serves transformers for plans that
// do not.
func KeyRef(idx int) Expression { return keyRef(idx) }

type keyRef int

// Eval implements Expression.
func (k keyRef) Eval(_ context.Context, key row.Key, _ row.Intermediate, _ Context) (any, error) {
	if int(k) < 0 || int(k) >= len(key) {
		return nil, errors.Newf("key index %d out of range in key of %d columns", int(k), len(key))
	}
	return key[k], nil
}

// Constant returns a compiled expression yielding v for every row.
func Constant(v any) Expression { return constant{v: v} }

type constant struct{ v any }

// Eval implements Expression.
func (c constant) Eval(context.Context, row.Key, row.Intermediate, Context) (any, error) {
	return c.v, nil
}

// RowTime returns a compiled expression yielding the row's logical timestamp
// from the evaluation context.
func RowTime() Expression { return rowTimeExpr{} }

type rowTimeExpr struct{}

// Eval implements Expression.
func (rowTimeExpr) Eval(
	_ context.Context, _ row.Key, _ row.Intermediate, evalCtx Context,
) (any, error) {
	return evalCtx.RowTime(), nil
}

// Func returns a compiled expression applying fn to the evaluated args. The
// name appears in error reports only.
func Func(name string, fn func(args []any) (any, error), args ...Expression) Expression {
	return &funcExpr{name: name, fn: fn, args: args}
}

type funcExpr struct {
	name string
	fn   func(args []any) (any, error)
	args []Expression
}

// Eval implements Expression.
func (f *funcExpr) Eval(
	ctx context.Context, key row.Key, in row.Intermediate, evalCtx Context,
) (any, error) {
	vals := make([]any, len(f.args))
	for i, a := range f.args {
		v, err := a.Eval(ctx, key, in, evalCtx)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	v, err := f.fn(vals)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", f.name)
	}
	return v, nil
}
