// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package pullexec

import (
	"context"

	"github.com/TheDarkFlame/ksql/pkg/materialize"
	"github.com/TheDarkFlame/ksql/pkg/sql/plan"
	"github.com/TheDarkFlame/ksql/pkg/sql/row"
	"github.com/cockroachdb/errors"
)

// scanOperator is the leaf of every pull-query tree. It yields the stored
// rows for the plan's key or span from a table snapshot: at most one row for
// a point lookup, ascending key order for a range. The ordering guarantee
// the rest of the tree relies on comes from the cursor; the operator only
// pulls.
type scanOperator struct {
	zeroInput
	node  *plan.Scan
	table materialize.Table

	cursor  materialize.Cursor
	current row.Stored
	done    bool
}

var _ Operator = (*scanOperator)(nil)

// Open implements Operator. It establishes the snapshot cursor.
func (s *scanOperator) Open(ctx context.Context) error {
	if s.cursor != nil {
		return errors.AssertionFailedf("scan already open")
	}
	var cur materialize.Cursor
	var err error
	if s.node.Point != nil {
		cur, err = s.table.Lookup(ctx, s.node.Point)
	} else {
		var span materialize.Span
		if s.node.Span != nil {
			span = *s.node.Span
		}
		cur, err = s.table.Scan(ctx, span)
	}
	if err != nil {
		return err
	}
	s.cursor = cur
	return nil
}

// Next implements Operator.
func (s *scanOperator) Next(ctx context.Context) (bool, error) {
	if s.done {
		return false, nil
	}
	if s.cursor == nil {
		return false, errors.AssertionFailedf("scan is not open")
	}
	r, ok, err := s.cursor.Next(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		s.done = true
		return false, nil
	}
	s.current = r
	return true, nil
}

// Values implements Operator.
func (s *scanOperator) Values() row.Row { return s.current }

// Close implements Operator. It releases the cursor if one was established.
func (s *scanOperator) Close(ctx context.Context) {
	if s.cursor != nil {
		_ = s.cursor.Close(ctx)
		s.cursor = nil
	}
	s.done = true
}

// Node implements Operator.
func (s *scanOperator) Node() plan.Node { return s.node }
