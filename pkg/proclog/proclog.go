// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package proclog is the processing-error sink for pull-query execution.
// Row-level failures inside compiled expressions are observability events,
// not query errors: the execution layer records them and keeps going. The
// sink's recording policy is its own concern; operators only hand errors
// over.
package proclog

import (
	"context"
	"sync"
)

// Logger receives row-level processing errors.
type Logger interface {
	// RecordError reports a row-level processing failure together with the
	// column values of the row being processed when it occurred.
	RecordError(ctx context.Context, err error, rowVals []any)
}

// Nop is a Logger that drops everything.
type Nop struct{}

var _ Logger = Nop{}

// RecordError implements Logger.
func (Nop) RecordError(context.Context, error, []any) {}

// Recorded is one captured RecordError call.
type Recorded struct {
	Err     error
	RowVals []any
}

// Recorder is a Logger that captures every call in memory. It backs tests
// that assert on what the execution layer reported.
type Recorder struct {
	mu       sync.Mutex
	recorded []Recorded
}

var _ Logger = (*Recorder)(nil)

// RecordError implements Logger.
func (r *Recorder) RecordError(_ context.Context, err error, rowVals []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded = append(r.recorded, Recorded{Err: err, RowVals: rowVals})
}

// Recorded returns a copy of the captured calls in order.
func (r *Recorder) Recorded() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recorded, len(r.recorded))
	copy(out, r.recorded)
	return out
}

// Count returns the number of captured calls.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recorded)
}
