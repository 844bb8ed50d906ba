// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package pullexec

import (
	"context"

	"github.com/TheDarkFlame/ksql/pkg/sql/plan"
	"github.com/TheDarkFlame/ksql/pkg/sql/row"
	"github.com/cockroachdb/errors"
)

// limitOperator truncates its input after the plan's row count. Reaching the
// limit ends the sequence without draining the input; Close still propagates
// so the scan cursor underneath is released. The operator is agnostic to the
// row kind flowing through it.
type limitOperator struct {
	singleInput
	node *plan.Limit

	seen    int64
	current row.Row
	done    bool
}

var _ Operator = (*limitOperator)(nil)

// Open implements Operator.
func (l *limitOperator) Open(ctx context.Context) error {
	if l.input == nil {
		return errors.AssertionFailedf("limit has no input")
	}
	return l.input.Open(ctx)
}

// Next implements Operator.
func (l *limitOperator) Next(ctx context.Context) (bool, error) {
	if l.done {
		return false, nil
	}
	if l.seen >= l.node.Count {
		l.done = true
		return false, nil
	}
	ok, err := l.input.Next(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		l.done = true
		return false, nil
	}
	l.seen++
	l.current = l.input.Values()
	return true, nil
}

// Values implements Operator.
func (l *limitOperator) Values() row.Row { return l.current }

// Close implements Operator.
func (l *limitOperator) Close(ctx context.Context) {
	l.done = true
	l.closeInput(ctx)
}

// Node implements Operator.
func (l *limitOperator) Node() plan.Node { return l.node }
