// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package row

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestKeyString(t *testing.T) {
	for _, tc := range []struct {
		key  Key
		want string
	}{
		{Key{}, "/"},
		{Key(nil), "/"},
		{Key{int64(1)}, "/1"},
		{Key{int64(1), "a"}, `/1/"a"`},
		{Key{"x/y"}, `/"x/y"`},
		{Key{nil}, "/<nil>"},
	} {
		require.Equal(t, tc.want, tc.key.String())
	}
}

func TestStored(t *testing.T) {
	r := MakeStored(Key{int64(7)}, []any{"widget", 9.5}, 1700000000000)
	require.Equal(t, Key{int64(7)}, r.Key())
	require.Equal(t, int64(1700000000000), r.RowTime())
	require.Equal(t, 2, r.Len())
	require.Equal(t, []any{"widget", 9.5}, r.Values())
	require.Equal(t, `/7 -> [widget 9.5] @ 1700000000000`, r.String())
}

func TestMakeIntermediatePlain(t *testing.T) {
	src := MakeStored(Key{int64(7)}, []any{"widget", 9.5}, 42)
	in := MakeIntermediate(src, false /* synthetic */)
	require.Equal(t, 2, in.Len())
	require.Equal(t, []any{"widget", 9.5}, in.Values())
}

func TestMakeIntermediateSynthetic(t *testing.T) {
	src := MakeStored(Key{int64(7), "us"}, []any{"widget", 9.5}, 42)
	in := MakeIntermediate(src, true /* synthetic */)

	// Value columns, then the row timestamp, then the key columns.
	require.Equal(t, []any{"widget", 9.5, int64(42), int64(7), "us"}, in.Values())

	// The source row is untouched.
	require.Equal(t, []any{"widget", 9.5}, src.Values())
	require.Equal(t, Key{int64(7), "us"}, src.Key())

	// The widened copy does not alias the source values.
	in.Values()[0] = "mutated"
	require.Equal(t, "widget", src.Values()[0])
}

func TestMakeOutput(t *testing.T) {
	out, err := MakeOutput(2, []any{int64(1), "a"})
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	require.Equal(t, []any{int64(1), "a"}, out.Values())

	_, err = MakeOutput(3, []any{int64(1), "a"})
	require.Error(t, err)
	require.True(t, errors.HasAssertionFailure(err))
	require.Contains(t, err.Error(), "row column count mismatch: expected 3, got 2")

	_, err = MakeOutput(1, []any{int64(1), "a"})
	require.True(t, errors.HasAssertionFailure(err))
}
