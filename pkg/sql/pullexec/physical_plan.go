// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package pullexec

import (
	"context"

	"github.com/TheDarkFlame/ksql/pkg/sql/row"
	"github.com/TheDarkFlame/ksql/pkg/sql/schema"
	"github.com/cockroachdb/logtags"
	"github.com/google/uuid"
)

// PhysicalPlan is one executable pull query: the root of its operator tree,
// the schema of the rows the root yields, and the query's ID. A plan
// executes at most once and is discarded after Close.
type PhysicalPlan struct {
	QueryID uuid.UUID
	Root    Operator
	Schema  schema.Schema
}

// AnnotateCtx tags ctx with the query ID. Errors and processing-error sink
// entries produced under the returned context carry the tag.
func (p *PhysicalPlan) AnnotateCtx(ctx context.Context) context.Context {
	return logtags.AddTag(ctx, "pullq", p.QueryID)
}

// Run drains the plan: open the tree, hand every row to visit, close. Close
// runs however Run returns, so an error mid-sequence or from visit still
// releases the scan cursor. Rows handed to visit are only valid for the
// duration of the call; the tree may reuse their backing storage.
func (p *PhysicalPlan) Run(ctx context.Context, visit func(row.Row) error) error {
	ctx = p.AnnotateCtx(ctx)
	if err := p.Root.Open(ctx); err != nil {
		p.Root.Close(ctx)
		return err
	}
	defer p.Root.Close(ctx)
	for {
		ok, err := p.Root.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := visit(p.Root.Values()); err != nil {
			return err
		}
	}
}
