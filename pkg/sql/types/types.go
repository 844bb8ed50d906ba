// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package types enumerates the SQL column types understood by the pull-query
// execution layer. Values are carried untyped (as any); the mapping from a
// column's Type to its Go representation is fixed:
//
//	Boolean   -> bool
//	Integer   -> int64
//	Bigint    -> int64
//	Double    -> float64
//	String    -> string
//	Timestamp -> int64 (milliseconds since the unix epoch)
//	Bytes     -> []byte
//
// SQL NULL is represented by a nil value regardless of the column type. The
// execution layer never checks values against their declared types; typing is
// the expression compiler's responsibility, this layer only enforces row
// shape.
package types

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Type identifies a SQL column type.
type Type int

const (
	// Unknown is the zero Type. It never appears in a valid schema.
	Unknown Type = iota
	Boolean
	Integer
	Bigint
	Double
	String
	Timestamp
	Bytes
)

var typeNames = [...]string{
	Unknown:   "UNKNOWN",
	Boolean:   "BOOLEAN",
	Integer:   "INTEGER",
	Bigint:    "BIGINT",
	Double:    "DOUBLE",
	String:    "STRING",
	Timestamp: "TIMESTAMP",
	Bytes:     "BYTES",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "UNKNOWN"
	}
	return typeNames[t]
}

// SafeValue makes Type report as redaction-safe: type names are metadata,
// not user data.
func (Type) SafeValue() {}

// Parse maps a type name, case-insensitively, to its Type. INT and BOOL are
// accepted as aliases for INTEGER and BOOLEAN.
func Parse(s string) (Type, error) {
	switch strings.ToUpper(s) {
	case "BOOLEAN", "BOOL":
		return Boolean, nil
	case "INTEGER", "INT":
		return Integer, nil
	case "BIGINT":
		return Bigint, nil
	case "DOUBLE":
		return Double, nil
	case "STRING":
		return String, nil
	case "TIMESTAMP":
		return Timestamp, nil
	case "BYTES":
		return Bytes, nil
	}
	return Unknown, errors.Newf("unknown column type %q", s)
}
