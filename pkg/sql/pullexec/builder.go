// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package pullexec

import (
	"github.com/TheDarkFlame/ksql/pkg/materialize"
	"github.com/TheDarkFlame/ksql/pkg/proclog"
	"github.com/TheDarkFlame/ksql/pkg/sql/plan"
	"github.com/TheDarkFlame/ksql/pkg/sql/schema"
	"github.com/TheDarkFlame/ksql/pkg/sql/transform"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Config holds the execution-layer settings enforced at plan build time.
type Config struct {
	// TableScanEnabled permits range (non-point) scans. When unset, a pull
	// query that would read more than a single key is rejected at build
	// time, guarding the serving layer against accidental full-table reads.
	TableScanEnabled bool
}

// Builder assembles physical operator trees from logical plans. One Builder
// may serve many queries; every Build call produces a fresh tree, wired
// bottom-up with each operator's input assigned exactly once before
// execution begins.
type Builder struct {
	// Table is the materialized table scans read from.
	Table materialize.Table
	// Factory builds projection transformers; nil means
	// transform.DefaultFactory.
	Factory transform.Factory
	// Sink receives row-level processing errors; nil means discard.
	Sink proclog.Logger

	Config Config
}

// MakeBuilder returns a Builder reading from table with the default
// transformer factory, no processing-error sink, and range scans enabled.
func MakeBuilder(table materialize.Table) Builder {
	return Builder{
		Table:   table,
		Factory: transform.DefaultFactory,
		Sink:    proclog.Nop{},
		Config:  Config{TableScanEnabled: true},
	}
}

// Build turns the logical plan rooted at node into an executable physical
// plan and assigns it a query ID.
func (b *Builder) Build(node plan.Node) (*PhysicalPlan, error) {
	if node == nil {
		return nil, errors.AssertionFailedf("nil plan")
	}
	if b.Table == nil {
		return nil, errors.AssertionFailedf("builder has no table")
	}
	root, err := b.buildNode(node)
	if err != nil {
		return nil, err
	}
	return &PhysicalPlan{
		QueryID: uuid.New(),
		Root:    root,
		Schema:  outputSchema(node),
	}, nil
}

func (b *Builder) buildNode(node plan.Node) (Operator, error) {
	switch n := node.(type) {
	case *plan.Scan:
		return b.buildScan(n)
	case *plan.Filter:
		return b.buildFilter(n)
	case *plan.Project:
		return b.buildProject(n)
	case *plan.Limit:
		return b.buildLimit(n)
	}
	return nil, errors.AssertionFailedf("unknown plan node %T", node)
}

func (b *Builder) buildScan(n *plan.Scan) (Operator, error) {
	if n.Point != nil && n.Span != nil {
		return nil, errors.AssertionFailedf("scan has both a point and a span")
	}
	if n.Point == nil && !b.Config.TableScanEnabled {
		return nil, errors.Newf(
			"table scans are disabled; pull queries must look up a single key")
	}
	return &scanOperator{node: n, table: b.Table}, nil
}

func (b *Builder) buildFilter(n *plan.Filter) (Operator, error) {
	if n.Predicate == nil {
		return nil, errors.AssertionFailedf("filter without a predicate")
	}
	input, err := b.buildNode(n.Source)
	if err != nil {
		return nil, err
	}
	f := &filterOperator{node: n, sink: b.sink()}
	if err := f.SetInput(0, input); err != nil {
		return nil, err
	}
	return f, nil
}

func (b *Builder) buildProject(n *plan.Project) (Operator, error) {
	if len(n.Selects) == 0 {
		return nil, errors.AssertionFailedf("projection with no select expressions")
	}
	if !n.SelectStar && len(n.Selects) != len(n.Compiled) {
		return nil, errors.AssertionFailedf(
			"%d select expressions with %d compiled forms", len(n.Selects), len(n.Compiled))
	}
	if n.SelectStar && n.IntermediateSchema.NumColumns() == 0 {
		return nil, errors.AssertionFailedf(
			"select-star projection without an intermediate schema")
	}
	input, err := b.buildNode(n.Source)
	if err != nil {
		return nil, err
	}
	p := &projectOperator{node: n, factory: b.factory(), sink: b.sink()}
	if err := p.SetInput(0, input); err != nil {
		return nil, err
	}
	return p, nil
}

func (b *Builder) buildLimit(n *plan.Limit) (Operator, error) {
	if n.Count < 0 {
		return nil, errors.Newf("limit must not be negative: %d", n.Count)
	}
	input, err := b.buildNode(n.Source)
	if err != nil {
		return nil, err
	}
	l := &limitOperator{node: n}
	if err := l.SetInput(0, input); err != nil {
		return nil, err
	}
	return l, nil
}

func (b *Builder) sink() proclog.Logger {
	if b.Sink == nil {
		return proclog.Nop{}
	}
	return b.Sink
}

func (b *Builder) factory() transform.Factory {
	if b.Factory == nil {
		return transform.DefaultFactory
	}
	return b.Factory
}

// outputSchema is the schema of the rows the tree's root yields: the
// outermost projection's declared schema, or the scan's value columns for a
// plan without a projection.
func outputSchema(node plan.Node) schema.Schema {
	switch n := node.(type) {
	case *plan.Project:
		return n.Schema
	case *plan.Scan:
		return n.Schema
	case *plan.Filter:
		return outputSchema(n.Source)
	case *plan.Limit:
		return outputSchema(n.Source)
	}
	return schema.Schema{}
}
