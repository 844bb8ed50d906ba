// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package pullexec executes pull queries: it turns a compiled logical plan
// into a physical operator tree, a synchronous pull-based iterator yielding
// the query's rows from a materialized table snapshot. The serving layer
// opens the tree once, pulls until the sequence ends, and closes it.
//
// Trees are assembled by Builder from the closed plan.Node set, wired
// bottom-up before execution and never rewired. Execution is single-threaded
// per tree; concurrency exists only across independent trees.
package pullexec

import (
	"context"

	"github.com/TheDarkFlame/ksql/pkg/sql/plan"
	"github.com/TheDarkFlame/ksql/pkg/sql/row"
	"github.com/cockroachdb/errors"
)

// Operator is one node of a physical pull-query plan.
//
// Lifecycle: Open once, Next until it reports no more rows, then Close. Next
// and Values are only meaningful between a successful Open and Close. Once
// Next has returned false it keeps returning false. Close may be called at
// any point in the lifecycle, including before Open and more than once; it
// always propagates to the input so a partially opened or abandoned tree
// still releases its resources.
//
// Operators are not safe for concurrent use: one tree serves one query
// invocation, pulled by one goroutine. Concurrent queries each build their
// own tree.
type Operator interface {
	// Open readies the operator for Next calls, opening its input first.
	Open(ctx context.Context) error

	// Next advances to the next row, returning false once the sequence is
	// exhausted. Exhaustion is a normal terminal signal, not an error.
	Next(ctx context.Context) (bool, error)

	// Values returns the row the last successful Next produced. It is valid
	// only until the following Next or Close call; the operator may reuse
	// the backing storage.
	Values() row.Row

	// Close releases the operator's resources and propagates to the input.
	Close(ctx context.Context)

	// InputCount returns the number of input slots the operator declares,
	// wired or not.
	InputCount() int

	// Input returns the operator wired into slot i.
	Input(i int) (Operator, error)

	// SetInput wires op into slot i. Slots are single-assignment: the tree
	// is built once, before execution, and wiring an occupied slot fails
	// leaving the existing input in place.
	SetInput(i int, op Operator) error

	// Node returns the logical plan node the operator was built from.
	Node() plan.Node
}

// zeroInput is embedded in leaf operators. It implements the InputCount,
// Input, and SetInput methods of Operator.
type zeroInput struct{}

func (zeroInput) InputCount() int { return 0 }

func (zeroInput) Input(i int) (Operator, error) {
	return nil, errors.AssertionFailedf("operator has no inputs")
}

func (zeroInput) SetInput(i int, op Operator) error {
	return errors.AssertionFailedf("operator has no inputs")
}

// singleInput is embedded in operators consuming a single input. It
// implements the InputCount, Input, and SetInput methods of Operator.
type singleInput struct {
	input Operator
}

func (n *singleInput) InputCount() int { return 1 }

func (n *singleInput) Input(i int) (Operator, error) {
	if i == 0 {
		return n.input, nil
	}
	return nil, errors.AssertionFailedf("input index %d is out of range", i)
}

func (n *singleInput) SetInput(i int, op Operator) error {
	if i != 0 {
		return errors.AssertionFailedf("input index %d is out of range", i)
	}
	if op == nil {
		return errors.AssertionFailedf("nil input")
	}
	if n.input != nil {
		return errors.AssertionFailedf("input already set")
	}
	n.input = op
	return nil
}

// closeInput closes and unwires the input. Safe to call repeatedly and on a
// never-wired operator.
func (n *singleInput) closeInput(ctx context.Context) {
	if n.input != nil {
		n.input.Close(ctx)
		n.input = nil
	}
}
