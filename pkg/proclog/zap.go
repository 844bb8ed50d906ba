// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package proclog

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
	"go.uber.org/zap"
)

// everyN rate limits spammy events. It tracks how recently each event key
// was processed so that a predicate failing on every row of a large scan
// produces one log line per interval instead of one per row.
//
// The zero value is usable and lets every event through.
type everyN struct {
	// n is the minimum duration of time between events with the same key.
	n time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

// shouldProcess returns whether it's been more than n time since the last
// event with this key.
func (e *everyN) shouldProcess(now time.Time, key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if last, ok := e.last[key]; ok && now.Sub(last) < e.n {
		return false
	}
	if e.last == nil {
		e.last = make(map[string]time.Time)
	}
	e.last[key] = now
	return true
}

// ZapLogger records processing errors to a zap logger. The error and the row
// values are rendered in redactable form so user data stays inside redaction
// markers; context log tags (notably the query ID) are surfaced alongside.
type ZapLogger struct {
	log  *zap.Logger
	gate everyN
}

var _ Logger = (*ZapLogger)(nil)

// NewZapLogger returns a sink writing to log. minInterval bounds how often
// failures with an identical message are emitted; zero disables the limit.
func NewZapLogger(log *zap.Logger, minInterval time.Duration) *ZapLogger {
	return &ZapLogger{log: log, gate: everyN{n: minInterval}}
}

// RecordError implements Logger.
func (l *ZapLogger) RecordError(ctx context.Context, err error, rowVals []any) {
	if err == nil {
		return
	}
	if !l.gate.shouldProcess(time.Now(), err.Error()) {
		return
	}
	fields := make([]zap.Field, 0, 3)
	if tags := logtags.FromContext(ctx); tags != nil {
		fields = append(fields, zap.Stringer("tags", tags))
	}
	fields = append(fields,
		zap.String("error", string(redact.Sprint(err))),
		zap.String("row", string(redact.Sprint(rowVals))),
	)
	l.log.Error("row processing failure", fields...)
}
