// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package row defines the row value types that flow through a pull-query
// operator tree. Stored rows come out of the materialized table, intermediate
// rows are the (possibly widened) evaluation form built from a stored row,
// and output rows are the final projected shape handed to the caller. The
// three are distinct types so that a stage receiving the wrong kind of row is
// a detectable wiring defect rather than a silent misalignment.
//
// Row values are user data. Key and the row types implement
// redact.SafeFormatter so that values never leak into redacted logs or
// errors.
package row

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Key holds the ordered key-column values identifying a stored row.
type Key []any

// String implements fmt.Stringer.
func (k Key) String() string { return redact.StringWithoutMarkers(k) }

// SafeFormat implements redact.SafeFormatter. Keys render in the /v1/v2
// form; string values are quoted.
func (k Key) SafeFormat(w redact.SafePrinter, _ rune) {
	if len(k) == 0 {
		w.SafeRune('/')
		return
	}
	for _, v := range k {
		w.SafeRune('/')
		switch t := v.(type) {
		case string:
			w.Printf("%q", t)
		default:
			w.Printf("%v", t)
		}
	}
}

// Row is the capability common to all row kinds: an ordered sequence of
// column values.
type Row interface {
	// Len returns the number of column values in the row.
	Len() int
	// Values returns the row's column values in schema order. The returned
	// slice must not be modified.
	Values() []any
}

var (
	_ Row = Stored{}
	_ Row = Intermediate{}
	_ Row = Output{}
)

// Stored is a row as produced by the materialized table snapshot: key
// columns, value columns, and the logical timestamp at which the row was
// last updated. Immutable once constructed.
type Stored struct {
	key  Key
	vals []any
	ts   int64
}

// MakeStored builds a Stored row. Ownership of key and vals passes to the
// row; the caller must not modify them afterwards.
func MakeStored(key Key, vals []any, rowTime int64) Stored {
	return Stored{key: key, vals: vals, ts: rowTime}
}

// Key returns the row's key columns.
func (r Stored) Key() Key { return r.key }

// RowTime returns the row's logical timestamp in milliseconds since the unix
// epoch.
func (r Stored) RowTime() int64 { return r.ts }

// Len implements Row. It counts value columns only; key columns are not part
// of the row proper.
func (r Stored) Len() int { return len(r.vals) }

// Values implements Row.
func (r Stored) Values() []any { return r.vals }

// String implements fmt.Stringer.
func (r Stored) String() string { return redact.StringWithoutMarkers(r) }

// SafeFormat implements redact.SafeFormatter.
func (r Stored) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%v -> %v @ %d", r.key, r.vals, redact.Safe(r.ts))
}

// Intermediate is the evaluation form of a stored row: the value columns,
// optionally widened with the row timestamp and the key columns when the
// plan needs them as expression inputs. Built fresh per row and never
// mutated after construction.
type Intermediate struct {
	vals []any
}

// MakeIntermediate derives the intermediate row for src. With synthetic set,
// the result is widened to value columns, then the row timestamp, then the
// key columns, in a freshly allocated slice; src is never modified. Without
// it the intermediate row shares src's backing array, which is safe because
// rows are read-only once handed downstream.
func MakeIntermediate(src Stored, synthetic bool) Intermediate {
	if !synthetic {
		return Intermediate{vals: src.vals}
	}
	vals := make([]any, 0, len(src.vals)+1+len(src.key))
	vals = append(vals, src.vals...)
	vals = append(vals, src.ts)
	vals = append(vals, src.key...)
	return Intermediate{vals: vals}
}

// Len implements Row.
func (r Intermediate) Len() int { return len(r.vals) }

// Values implements Row.
func (r Intermediate) Values() []any { return r.vals }

// Output is the projected row handed to the caller.
type Output struct {
	vals []any
}

// MakeOutput wraps vals as the output row of a projection that declared
// expected columns. A count mismatch means plan compilation produced output
// inconsistent with its own schema; it aborts the query and is never treated
// as a data problem.
func MakeOutput(expected int, vals []any) (Output, error) {
	if len(vals) != expected {
		return Output{}, errors.AssertionFailedf(
			"row column count mismatch: expected %d, got %d", expected, len(vals))
	}
	return Output{vals: vals}, nil
}

// Len implements Row.
func (r Output) Len() int { return len(r.vals) }

// Values implements Row.
func (r Output) Values() []any { return r.vals }

// String implements fmt.Stringer.
func (r Output) String() string { return redact.StringWithoutMarkers(r) }

// SafeFormat implements redact.SafeFormatter.
func (r Output) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(r.vals)
}
