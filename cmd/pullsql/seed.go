// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package main

import (
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/TheDarkFlame/ksql/pkg/materialize/inmem"
	"github.com/TheDarkFlame/ksql/pkg/sql/row"
	"github.com/TheDarkFlame/ksql/pkg/sql/schema"
	"github.com/TheDarkFlame/ksql/pkg/sql/types"
	"github.com/cockroachdb/errors"
)

// seededTable is one materialized table loaded from the data file: its key
// layout, its value-column schema, and the rows.
type seededTable struct {
	name    string
	keyCols []schema.Column
	schema  schema.Schema
	data    *inmem.Table
}

type catalogFile struct {
	Tables []tableSpec `toml:"table"`
}

type tableSpec struct {
	Name    string       `toml:"name"`
	Keys    []string     `toml:"keys"`
	Columns []columnSpec `toml:"column"`
	Rows    []rowSpec    `toml:"row"`
}

type columnSpec struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

type rowSpec struct {
	Time   int64 `toml:"time"`
	Values []any `toml:"values"`
}

// loadCatalog reads the TOML data file and materializes every table in it.
func loadCatalog(path string) (map[string]*seededTable, error) {
	var file catalogFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	catalog := make(map[string]*seededTable, len(file.Tables))
	for i := range file.Tables {
		t, err := materializeTable(&file.Tables[i])
		if err != nil {
			return nil, errors.Wrapf(err, "table %q", file.Tables[i].Name)
		}
		if _, ok := catalog[t.name]; ok {
			return nil, errors.Newf("duplicate table %q", t.name)
		}
		catalog[t.name] = t
	}
	return catalog, nil
}

func materializeTable(spec *tableSpec) (*seededTable, error) {
	if spec.Name == "" {
		return nil, errors.New("table without a name")
	}
	if len(spec.Keys) == 0 {
		return nil, errors.New("table without key columns")
	}

	byName := make(map[string]schema.Column, len(spec.Columns))
	keyed := make(map[string]bool, len(spec.Keys))
	for _, k := range spec.Keys {
		keyed[k] = true
	}
	var valueCols []schema.Column
	for _, c := range spec.Columns {
		typ, err := types.Parse(c.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q", c.Name)
		}
		if _, ok := byName[c.Name]; ok {
			return nil, errors.Newf("duplicate column %q", c.Name)
		}
		col := schema.Column{Name: c.Name, Typ: typ}
		byName[c.Name] = col
		if !keyed[c.Name] {
			valueCols = append(valueCols, col)
		}
	}
	keyCols := make([]schema.Column, len(spec.Keys))
	for i, k := range spec.Keys {
		col, ok := byName[k]
		if !ok {
			return nil, errors.Newf("key column %q is not declared", k)
		}
		keyCols[i] = col
	}

	t := &seededTable{
		name:    spec.Name,
		keyCols: keyCols,
		schema:  schema.MakeSchema(valueCols...),
		data:    inmem.New(),
	}

	// Row values follow the declared column order; key columns are pulled
	// out by position.
	pos := make(map[string]int, len(spec.Columns))
	for i, c := range spec.Columns {
		pos[c.Name] = i
	}
	for ri, r := range spec.Rows {
		if len(r.Values) != len(spec.Columns) {
			return nil, errors.Newf(
				"row %d has %d values, want %d", ri, len(r.Values), len(spec.Columns))
		}
		key := make(row.Key, len(keyCols))
		for i, col := range keyCols {
			v, err := convertValue(r.Values[pos[col.Name]], col.Typ)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d key column %q", ri, col.Name)
			}
			key[i] = v
		}
		vals := make([]any, t.schema.NumColumns())
		for i := range vals {
			col := t.schema.Column(i)
			v, err := convertValue(r.Values[pos[col.Name]], col.Typ)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d column %q", ri, col.Name)
			}
			vals[i] = v
		}
		if err := t.data.Put(row.MakeStored(key, vals, r.Time)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// convertValue coerces a decoded TOML value to the declared column type.
// TOML has no NULL; absent values are not expressible in the seed file.
func convertValue(v any, typ types.Type) (any, error) {
	switch typ {
	case types.Boolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case types.Integer, types.Bigint, types.Timestamp:
		if i, ok := v.(int64); ok {
			return i, nil
		}
	case types.Double:
		switch t := v.(type) {
		case float64:
			return t, nil
		case int64:
			return float64(t), nil
		}
	case types.String:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case types.Bytes:
		if s, ok := v.(string); ok {
			return []byte(s), nil
		}
	}
	return nil, errors.Newf("cannot use %T value %v as %s", v, v, typ)
}

// parseKey parses a comma-separated key literal against the table's key
// columns. With allowPrefix, fewer columns than the full key are accepted;
// span bounds address key prefixes that way.
func (t *seededTable) parseKey(s string, allowPrefix bool) (row.Key, error) {
	parts := strings.Split(s, ",")
	if len(parts) > len(t.keyCols) || (!allowPrefix && len(parts) != len(t.keyCols)) {
		return nil, errors.Newf(
			"key %q wants %d column(s), got %d", s, len(t.keyCols), len(parts))
	}
	key := make(row.Key, len(parts))
	for i, p := range parts {
		v, err := parseKeyValue(strings.TrimSpace(p), t.keyCols[i].Typ)
		if err != nil {
			return nil, errors.Wrapf(err, "key column %q", t.keyCols[i].Name)
		}
		key[i] = v
	}
	return key, nil
}

func parseKeyValue(s string, typ types.Type) (any, error) {
	switch typ {
	case types.Boolean:
		return strconv.ParseBool(s)
	case types.Integer, types.Bigint, types.Timestamp:
		return strconv.ParseInt(s, 10, 64)
	case types.Double:
		return strconv.ParseFloat(s, 64)
	case types.String:
		return s, nil
	case types.Bytes:
		return []byte(s), nil
	}
	return nil, errors.Newf("unsupported key column type %s", typ)
}
