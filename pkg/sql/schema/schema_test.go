// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package schema

import (
	"testing"

	"github.com/TheDarkFlame/ksql/pkg/sql/types"
	"github.com/stretchr/testify/require"
)

func TestMakeSchemaAssignsPositions(t *testing.T) {
	s := MakeSchema(
		Column{Name: "id", Typ: types.Bigint, Index: 99},
		Column{Name: "name", Typ: types.String},
		Column{Name: "price", Typ: types.Double},
	)
	require.Equal(t, 3, s.NumColumns())
	for i := 0; i < s.NumColumns(); i++ {
		require.Equal(t, i, s.Column(i).Index)
	}
	require.Equal(t, "name", s.Column(1).Name)
	require.Equal(t, "(id BIGINT, name STRING, price DOUBLE)", s.String())
}

func TestFindColumn(t *testing.T) {
	s := MakeSchema(
		Column{Name: "id", Typ: types.Bigint},
		Column{Name: "name", Typ: types.String},
		Column{Name: "name", Typ: types.Bytes},
	)

	c, ok := s.FindColumn("name")
	require.True(t, ok)
	require.Equal(t, 1, c.Index)
	require.Equal(t, types.String, c.Typ)

	_, ok = s.FindColumn("missing")
	require.False(t, ok)
}

func TestWithSynthetic(t *testing.T) {
	base := MakeSchema(
		Column{Name: "name", Typ: types.String},
		Column{Name: "price", Typ: types.Double},
	)
	wide := WithSynthetic(base, Column{Name: "id", Typ: types.Bigint})

	require.Equal(t, 4, wide.NumColumns())
	require.Equal(t, "name", wide.Column(0).Name)
	require.Equal(t, "price", wide.Column(1).Name)
	require.Equal(t, RowTimeName, wide.Column(2).Name)
	require.Equal(t, types.Bigint, wide.Column(2).Typ)
	require.Equal(t, "id", wide.Column(3).Name)

	// The base schema is unchanged.
	require.Equal(t, 2, base.NumColumns())
}
