// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package pullexec

import (
	"fmt"
	"strings"

	"github.com/TheDarkFlame/ksql/pkg/materialize"
	"github.com/TheDarkFlame/ksql/pkg/sql/plan"
)

// Explain renders the operator tree, one operator per line with inputs
// indented beneath their consumer. The rendering reflects plan
// configuration, not runtime state, so it is stable whether or not the plan
// has run.
func (p *PhysicalPlan) Explain() string {
	var sb strings.Builder
	explainOp(&sb, p.Root, 0)
	return sb.String()
}

func explainOp(sb *strings.Builder, op Operator, depth int) {
	if depth > 0 {
		sb.WriteString(strings.Repeat(" ", (depth-1)*5+1))
		sb.WriteString("└── ")
	}
	sb.WriteString(describeOp(op))
	sb.WriteByte('\n')
	for i := 0; i < op.InputCount(); i++ {
		in, err := op.Input(i)
		if err != nil || in == nil {
			continue
		}
		explainOp(sb, in, depth+1)
	}
}

func describeOp(op Operator) string {
	switch n := op.Node().(type) {
	case *plan.Scan:
		switch {
		case n.Point != nil:
			return fmt.Sprintf("scan %s key=%s", n.Table, n.Point)
		case n.Span != nil:
			return fmt.Sprintf("scan %s span=%s", n.Table, formatSpan(n.Span))
		default:
			return fmt.Sprintf("scan %s span=full", n.Table)
		}
	case *plan.Filter:
		return "filter " + n.Expr
	case *plan.Project:
		aliases := make([]string, len(n.Selects))
		for i, sel := range n.Selects {
			aliases[i] = sel.Alias
		}
		if n.SelectStar {
			return fmt.Sprintf("project * (%s)", strings.Join(aliases, ", "))
		}
		return fmt.Sprintf("project (%s)", strings.Join(aliases, ", "))
	case *plan.Limit:
		return fmt.Sprintf("limit %d", n.Count)
	}
	return fmt.Sprintf("<%T>", op)
}

func formatSpan(span *materialize.Span) string {
	start, end := "-inf", "+inf"
	if span.Start != nil {
		start = span.Start.String()
	}
	if span.End != nil {
		end = span.End.String()
	}
	return fmt.Sprintf("[%s, %s)", start, end)
}
