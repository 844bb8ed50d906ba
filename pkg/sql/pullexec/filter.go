// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package pullexec

import (
	"context"

	"github.com/TheDarkFlame/ksql/pkg/proclog"
	"github.com/TheDarkFlame/ksql/pkg/sql/plan"
	"github.com/TheDarkFlame/ksql/pkg/sql/row"
	"github.com/TheDarkFlame/ksql/pkg/sql/transform"
	"github.com/cockroachdb/errors"
)

// filterOperator passes through the stored rows its predicate accepts,
// preserving input order. It is a pull-through loop, not a one-to-one
// mapping: producing one output row may consume any number of input rows,
// bounded only by the input's own length.
type filterOperator struct {
	singleInput
	node *plan.Filter
	sink proclog.Logger

	current row.Row
	done    bool
}

var _ Operator = (*filterOperator)(nil)

// Open implements Operator.
func (f *filterOperator) Open(ctx context.Context) error {
	if f.input == nil {
		return errors.AssertionFailedf("filter has no input")
	}
	return f.input.Open(ctx)
}

// Next implements Operator.
func (f *filterOperator) Next(ctx context.Context) (bool, error) {
	if f.done {
		return false, nil
	}
	for {
		ok, err := f.input.Next(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			f.done = true
			return false, nil
		}
		in := f.input.Values()
		stored, ok := in.(row.Stored)
		if !ok {
			return false, errors.AssertionFailedf("filter expected a stored row, got %T", in)
		}
		if f.accept(ctx, stored) {
			f.current = stored
			return true, nil
		}
	}
}

// accept evaluates the predicate against the row. Evaluation failures and
// non-boolean results are recorded to the processing-error sink and drop the
// row; NULL is not true and drops the row silently.
func (f *filterOperator) accept(ctx context.Context, stored row.Stored) bool {
	in := row.MakeIntermediate(stored, f.node.SyntheticColumns)
	v, err := f.node.Predicate.Eval(ctx, stored.Key(), in, transform.MakeContext(stored.RowTime()))
	if err != nil {
		f.sink.RecordError(ctx, errors.Wrapf(err, "filter %s", f.node.Expr), in.Values())
		return false
	}
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	default:
		f.sink.RecordError(ctx,
			errors.Newf("filter %s evaluated to %T, expected boolean", f.node.Expr, v), in.Values())
		return false
	}
}

// Values implements Operator.
func (f *filterOperator) Values() row.Row { return f.current }

// Close implements Operator.
func (f *filterOperator) Close(ctx context.Context) {
	f.done = true
	f.closeInput(ctx)
}

// Node implements Operator.
func (f *filterOperator) Node() plan.Node { return f.node }
