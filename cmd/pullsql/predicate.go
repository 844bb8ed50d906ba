// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package main

import (
	"cmp"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/TheDarkFlame/ksql/pkg/sql/row"
	"github.com/TheDarkFlame/ksql/pkg/sql/schema"
	"github.com/TheDarkFlame/ksql/pkg/sql/transform"
	"github.com/cockroachdb/errors"
)

// predicateRE matches "column op literal", the literal stretching to the end
// of the input.
var predicateRE = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(<=|>=|!=|<>|=|<|>)\s*(.+?)\s*$`)

// parsePredicate compiles a "column op literal" comparison against the value
// schema, returning the executable predicate and its display text.
func parsePredicate(s string, sch schema.Schema) (transform.Expression, string, error) {
	m := predicateRE.FindStringSubmatch(s)
	if m == nil {
		return nil, "", errors.Newf("cannot parse filter %q; want <column> <op> <literal>", s)
	}
	col, ok := sch.FindColumn(m[1])
	if !ok {
		return nil, "", errors.Newf("filter column %q not found in %s", m[1], sch)
	}
	op := m[2]
	if op == "<>" {
		op = "!="
	}
	lit, litText := parseLiteral(m[3])
	display := fmt.Sprintf("%s %s %s", col.Name, op, litText)
	return &comparePredicate{col: col, op: op, lit: lit}, display, nil
}

// parseLiteral decodes a literal's value and its canonical display text.
// Quoted forms are strings; otherwise int, float, and bool readings are
// tried before falling back to a bare string.
func parseLiteral(s string) (any, string) {
	if len(s) >= 2 &&
		(s[0] == '\'' && s[len(s)-1] == '\'' || s[0] == '"' && s[len(s)-1] == '"') {
		v := s[1 : len(s)-1]
		return v, "'" + v + "'"
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, s
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b, s
	}
	return s, "'" + s + "'"
}

// comparePredicate evaluates one column-to-literal comparison per row. A
// NULL column value makes the comparison NULL, which the filter drops
// without reporting.
type comparePredicate struct {
	col schema.Column
	op  string
	lit any
}

var _ transform.Expression = (*comparePredicate)(nil)

// Eval implements transform.Expression.
func (p *comparePredicate) Eval(
	_ context.Context, _ row.Key, in row.Intermediate, _ transform.Context,
) (any, error) {
	vals := in.Values()
	if p.col.Index >= len(vals) {
		return nil, errors.Newf("column %s at position %d beyond row of %d columns",
			p.col.Name, p.col.Index, len(vals))
	}
	v := vals[p.col.Index]
	if v == nil {
		return nil, nil
	}
	c, err := compareValues(v, p.lit)
	if err != nil {
		return nil, err
	}
	switch p.op {
	case "=":
		return c == 0, nil
	case "!=":
		return c != 0, nil
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	}
	return nil, errors.AssertionFailedf("unknown comparison operator %q", p.op)
}

// compareValues orders two scalar values of compatible types. Mixed int and
// float comparisons promote to float.
func compareValues(a, b any) (int, error) {
	switch av := a.(type) {
	case int64:
		switch bv := b.(type) {
		case int64:
			return cmp.Compare(av, bv), nil
		case float64:
			return cmp.Compare(float64(av), bv), nil
		}
	case float64:
		switch bv := b.(type) {
		case int64:
			return cmp.Compare(av, float64(bv)), nil
		case float64:
			return cmp.Compare(av, bv), nil
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv), nil
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0, nil
			case !av:
				return -1, nil
			default:
				return 1, nil
			}
		}
	}
	return 0, errors.Newf("cannot compare %T with %T", a, b)
}
