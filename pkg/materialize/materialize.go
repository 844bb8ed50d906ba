// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package materialize declares the narrow interface through which the
// pull-query execution layer reads a continuously updated materialized
// table. The storage engine behind the interface is an external
// collaborator; this layer depends only on point and range lookups that
// yield stored rows in ascending key order from a snapshot that stays
// consistent for the cursor's lifetime.
package materialize

import (
	"context"

	"github.com/TheDarkFlame/ksql/pkg/sql/row"
)

// Span bounds a range scan. Start is inclusive and End exclusive; a nil
// bound is unbounded on that side. The zero Span scans the whole table.
type Span struct {
	Start row.Key
	End   row.Key
}

// Cursor yields the stored rows selected by a Lookup or Scan, in ascending
// key order. A cursor reads from a snapshot taken when it was created:
// concurrent table writes are never observed. Cursors are not safe for
// concurrent use; one cursor serves one query.
type Cursor interface {
	// Next returns the next row in key order, or ok=false once the cursor is
	// exhausted.
	Next(ctx context.Context) (_ row.Stored, ok bool, _ error)
	// Close releases the snapshot. The cursor must not be used afterwards.
	Close(ctx context.Context) error
}

// Table is a point- and range-readable view of a materialized table.
// Implementations must be safe for concurrent use: many pull queries read
// one table at once.
type Table interface {
	// Lookup positions a cursor on the row with the given key. The cursor
	// yields at most one row.
	Lookup(ctx context.Context, key row.Key) (Cursor, error)
	// Scan positions a cursor at the start of the span.
	Scan(ctx context.Context, span Span) (Cursor, error)
}
