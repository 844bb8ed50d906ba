// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package inmem provides a btree-backed, in-memory materialize.Table. It is
// the table implementation used by tests and the demo binary, and doubles as
// the reference for the snapshot semantics the execution layer expects from
// a real storage engine.
package inmem

import (
	"bytes"
	"context"
	"sync"

	"github.com/TheDarkFlame/ksql/pkg/materialize"
	"github.com/TheDarkFlame/ksql/pkg/sql/row"
	"github.com/TheDarkFlame/ksql/pkg/util/encoding"
	"github.com/cockroachdb/errors"
	"github.com/google/btree"
)

const degree = 16

// item is one table row keyed by its order-preserving key encoding.
type item struct {
	key []byte
	row row.Stored
}

func (i *item) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(*item).key) < 0
}

// Table is an in-memory materialized table. It is safe for concurrent use;
// writers block each other briefly while cursors read from copy-on-write
// snapshots and never block or observe writers.
type Table struct {
	mu struct {
		sync.Mutex
		tree *btree.BTree
	}
}

var _ materialize.Table = (*Table)(nil)

// New returns an empty Table.
func New() *Table {
	t := &Table{}
	t.mu.tree = btree.New(degree)
	return t
}

func encodeKey(k row.Key) ([]byte, error) {
	var b []byte
	var err error
	for _, v := range k {
		if b, err = encoding.EncodeKeyValue(b, v); err != nil {
			return nil, errors.Wrapf(err, "key %s", k)
		}
	}
	return b, nil
}

// Put inserts the row or replaces the existing row with the same key.
func (t *Table) Put(r row.Stored) error {
	k, err := encodeKey(r.Key())
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mu.tree.ReplaceOrInsert(&item{key: k, row: r})
	return nil
}

// Delete removes the row with the given key, if present.
func (t *Table) Delete(key row.Key) error {
	k, err := encodeKey(key)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mu.tree.Delete(&item{key: k})
	return nil
}

// Len returns the number of rows in the table.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mu.tree.Len()
}

// Lookup implements materialize.Table.
func (t *Table) Lookup(ctx context.Context, key row.Key) (materialize.Cursor, error) {
	k, err := encodeKey(key)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	it := t.mu.tree.Get(&item{key: k})
	t.mu.Unlock()
	c := &pointCursor{}
	if it != nil {
		c.row, c.ok = it.(*item).row, true
	}
	return c, nil
}

// Scan implements materialize.Table.
func (t *Table) Scan(ctx context.Context, span materialize.Span) (materialize.Cursor, error) {
	var start, end []byte
	var err error
	if span.Start != nil {
		if start, err = encodeKey(span.Start); err != nil {
			return nil, err
		}
	}
	if span.End != nil {
		if end, err = encodeKey(span.End); err != nil {
			return nil, err
		}
	}
	t.mu.Lock()
	snap := t.mu.tree.Clone()
	t.mu.Unlock()
	return &scanCursor{snap: snap, pivot: start, end: end}, nil
}

// pointCursor yields the zero or one row found by Lookup. The row was copied
// out under the table lock, so it is a consistent read by construction.
type pointCursor struct {
	row    row.Stored
	ok     bool
	closed bool
}

var _ materialize.Cursor = (*pointCursor)(nil)

// Next implements materialize.Cursor.
func (c *pointCursor) Next(ctx context.Context) (row.Stored, bool, error) {
	if c.closed {
		return row.Stored{}, false, errors.AssertionFailedf("use of closed cursor")
	}
	if !c.ok {
		return row.Stored{}, false, nil
	}
	c.ok = false
	return c.row, true, nil
}

// Close implements materialize.Cursor.
func (c *pointCursor) Close(ctx context.Context) error {
	c.closed = true
	return nil
}

// scanCursor iterates a copy-on-write clone of the table's tree, so writes
// made after the cursor was created are never observed. Iteration is lazy:
// each Next re-seeks to the successor of the last returned key, keeping the
// cursor at O(log n) per row without materializing the result set.
type scanCursor struct {
	snap  *btree.BTree
	pivot []byte // next seek position, inclusive
	end   []byte // exclusive bound, nil = unbounded
}

var _ materialize.Cursor = (*scanCursor)(nil)

// Next implements materialize.Cursor.
func (c *scanCursor) Next(ctx context.Context) (row.Stored, bool, error) {
	if c.snap == nil {
		return row.Stored{}, false, errors.AssertionFailedf("use of closed cursor")
	}
	if err := ctx.Err(); err != nil {
		return row.Stored{}, false, err
	}
	var out *item
	c.snap.AscendGreaterOrEqual(&item{key: c.pivot}, func(i btree.Item) bool {
		out = i.(*item)
		return false
	})
	if out == nil || (c.end != nil && bytes.Compare(out.key, c.end) >= 0) {
		return row.Stored{}, false, nil
	}
	// A single appended 0x00 is the smallest byte string greater than
	// out.key, so the next seek lands on the immediately following row.
	c.pivot = append(append(make([]byte, 0, len(out.key)+1), out.key...), 0x00)
	return out.row, true, nil
}

// Close implements materialize.Cursor. It drops the snapshot reference; the
// copy-on-write clone needs no other release.
func (c *scanCursor) Close(ctx context.Context) error {
	c.snap = nil
	return nil
}
