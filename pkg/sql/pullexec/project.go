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

// projectOperator produces the query's output shape from each stored row.
// Unless the projection is select-star, Open builds the transformer from the
// compiled select expressions exactly once and keeps it for the operator's
// lifetime; expression compilation and linking are expensive next to per-row
// evaluation.
type projectOperator struct {
	singleInput
	node    *plan.Project
	factory transform.Factory
	sink    proclog.Logger

	transformer transform.Transformer
	current     row.Output
	done        bool
}

var _ Operator = (*projectOperator)(nil)

// Open implements Operator.
func (p *projectOperator) Open(ctx context.Context) error {
	if p.input == nil {
		return errors.AssertionFailedf("project has no input")
	}
	if err := p.input.Open(ctx); err != nil {
		return err
	}
	if p.node.SelectStar {
		return nil
	}
	t, err := p.factory.Create(p.node.Selects, p.node.Compiled, p.sink)
	if err != nil {
		return err
	}
	p.transformer = t
	return nil
}

// Next implements Operator.
func (p *projectOperator) Next(ctx context.Context) (bool, error) {
	if p.done {
		return false, nil
	}
	ok, err := p.input.Next(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		p.done = true
		return false, nil
	}
	in := p.input.Values()
	stored, ok := in.(row.Stored)
	if !ok {
		return false, errors.AssertionFailedf("project expected a stored row, got %T", in)
	}
	intermediate := row.MakeIntermediate(stored, p.node.SyntheticColumns)

	var out row.Output
	if p.node.SelectStar {
		out, err = p.selectStar(intermediate)
	} else {
		out, err = p.transform(ctx, stored, intermediate)
	}
	if err != nil {
		return false, err
	}
	p.current = out
	return true, nil
}

// selectStar handles the pure column-selection path: each select alias is
// resolved in the intermediate schema and its value copied across, in select
// order, with no expression evaluation. Output arity is determined by the
// select list alone. An alias the intermediate schema cannot resolve means
// the plan was compiled against a schema other than the one it executes
// with; that aborts the query.
func (p *projectOperator) selectStar(in row.Intermediate) (row.Output, error) {
	src := in.Values()
	vals := make([]any, 0, len(p.node.Selects))
	for _, sel := range p.node.Selects {
		col, ok := p.node.IntermediateSchema.FindColumn(sel.Alias)
		if !ok {
			return row.Output{}, errors.AssertionFailedf(
				"column %s not found in intermediate schema %s",
				sel.Alias, p.node.IntermediateSchema)
		}
		if col.Index >= len(src) {
			return row.Output{}, errors.AssertionFailedf(
				"intermediate column %s at position %d beyond row of %d columns",
				sel.Alias, col.Index, len(src))
		}
		vals = append(vals, src[col.Index])
	}
	return row.MakeOutput(len(p.node.Selects), vals)
}

// transform invokes the compiled transformer and enforces the output shape:
// the returned row must have exactly the declared schema's column count.
// Row-level evaluation trouble inside the transformer is its own concern,
// reported to the processing-error sink; only the shape invariant is
// enforced here.
func (p *projectOperator) transform(
	ctx context.Context, stored row.Stored, in row.Intermediate,
) (row.Output, error) {
	mapped, err := p.transformer.Transform(
		ctx, stored.Key(), in, transform.MakeContext(stored.RowTime()))
	if err != nil {
		return row.Output{}, err
	}
	return row.MakeOutput(p.node.Schema.NumColumns(), mapped)
}

// Values implements Operator.
func (p *projectOperator) Values() row.Row { return p.current }

// Close implements Operator.
func (p *projectOperator) Close(ctx context.Context) {
	p.done = true
	p.closeInput(ctx)
}

// Node implements Operator.
func (p *projectOperator) Node() plan.Node { return p.node }
