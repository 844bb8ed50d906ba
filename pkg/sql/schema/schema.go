// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package schema defines the ordered, typed column layout shared by the
// logical plan and the physical operators. A column's position within its
// schema is authoritative for row alignment; operators align rows by
// position, never by name, except for the select-star projection path which
// is explicitly name-driven.
package schema

import (
	"strings"

	"github.com/TheDarkFlame/ksql/pkg/sql/types"
)

// RowTimeName is the name of the synthetic column that exposes a stored
// row's logical timestamp when a plan widens the intermediate schema.
const RowTimeName = "ROWTIME"

// Column is one column of a Schema. Immutable once constructed.
type Column struct {
	Name string
	Typ  types.Type
	// Index is the column's zero-based position within its schema. It is
	// assigned by MakeSchema; a Column is only meaningful relative to the
	// Schema that produced it.
	Index int
}

func (c Column) String() string {
	return c.Name + " " + c.Typ.String()
}

// Schema is an ordered sequence of Columns. The zero value is the empty
// schema.
type Schema struct {
	cols []Column
}

// MakeSchema builds a Schema from column definitions in order. Any Index
// values on the input are overwritten with the column's position.
func MakeSchema(cols ...Column) Schema {
	s := Schema{cols: make([]Column, len(cols))}
	for i, c := range cols {
		c.Index = i
		s.cols[i] = c
	}
	return s
}

// NumColumns returns the number of columns in the schema.
func (s Schema) NumColumns() int {
	return len(s.cols)
}

// Column returns the column at position i.
func (s Schema) Column(i int) Column {
	return s.cols[i]
}

// Columns returns the schema's columns in order. The returned slice must not
// be modified.
func (s Schema) Columns() []Column {
	return s.cols
}

// FindColumn returns the first column with the given name, if any. This is a
// linear scan; it backs the select-star path and plan assembly, not per-row
// evaluation.
func (s Schema) FindColumn(name string) (Column, bool) {
	for _, c := range s.cols {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func (s Schema) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, c := range s.cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// WithSynthetic returns the widened form of a value-column schema: the base
// columns followed by the ROWTIME column and then the key columns, matching
// the order in which widened intermediate rows are laid out.
func WithSynthetic(base Schema, keyCols ...Column) Schema {
	cols := make([]Column, 0, len(base.cols)+1+len(keyCols))
	cols = append(cols, base.cols...)
	cols = append(cols, Column{Name: RowTimeName, Typ: types.Bigint})
	cols = append(cols, keyCols...)
	return MakeSchema(cols...)
}
