// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package plan defines the logical plan nodes consumed by the physical
// builder. Nodes are pure configuration: resolved once by the upstream
// query compiler, immutable for the life of the operator tree, and limited
// to a closed set of four kinds so the builder can match exhaustively. A
// valid pull-query plan is a chain with a Scan leaf.
package plan

import (
	"github.com/TheDarkFlame/ksql/pkg/materialize"
	"github.com/TheDarkFlame/ksql/pkg/sql/row"
	"github.com/TheDarkFlame/ksql/pkg/sql/schema"
	"github.com/TheDarkFlame/ksql/pkg/sql/transform"
)

// Node is one logical plan node.
type Node interface {
	// Input returns the node's source, or nil for the leaf.
	Input() Node
	// node restricts implementations to this package.
	node()
}

var (
	_ Node = (*Scan)(nil)
	_ Node = (*Filter)(nil)
	_ Node = (*Project)(nil)
	_ Node = (*Limit)(nil)
)

// Scan is the leaf node: read a point or a range of a materialized table.
// Exactly one access form applies: a non-nil Point means a point lookup and
// Span must be nil; otherwise Span bounds a range scan, with a nil Span
// meaning a full table scan.
type Scan struct {
	// Table names the materialized table, for plan display.
	Table string
	// Schema is the value-column schema of the rows the scan yields.
	Schema schema.Schema
	Point  row.Key
	Span   *materialize.Span
}

// Input implements Node.
func (*Scan) Input() Node { return nil }

func (*Scan) node() {}

// Filter suppresses source rows that fail the predicate.
type Filter struct {
	Source Node
	// Predicate is the compiled filter expression. It must evaluate to a
	// SQL boolean; NULL drops the row.
	Predicate transform.Expression
	// Expr is the predicate's display text.
	Expr string
	// SyntheticColumns widens the row seen by the predicate with the row
	// timestamp and the key columns.
	SyntheticColumns bool
}

// Input implements Node.
func (f *Filter) Input() Node { return f.Source }

func (*Filter) node() {}

// Project shapes the query's final output row.
type Project struct {
	Source Node
	// Selects lists the output columns in order. Compiled holds the
	// executable forms, parallel to Selects; it is unused when SelectStar
	// is set.
	Selects  []transform.SelectExpression
	Compiled []transform.Expression
	// Schema is the declared output schema.
	Schema schema.Schema
	// IntermediateSchema describes the (possibly widened) row the selects
	// are evaluated against. The select-star path resolves aliases in it.
	IntermediateSchema schema.Schema
	// SelectStar marks a pure column selection/reorder that bypasses the
	// transformer machinery.
	SelectStar bool
	// SyntheticColumns widens the intermediate row with the row timestamp
	// and the key columns.
	SyntheticColumns bool
}

// Input implements Node.
func (p *Project) Input() Node { return p.Source }

func (*Project) node() {}

// Limit truncates the source after Count rows.
type Limit struct {
	Source Node
	Count  int64
}

// Input implements Node.
func (l *Limit) Input() Node { return l.Source }

func (*Limit) node() {}
