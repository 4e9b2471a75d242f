// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bitset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitsetSetClearIsSet(t *testing.T) {
	b := New(128)
	require.Equal(t, int64(128), b.Len())
	require.Equal(t, 2, len(b.bits))

	require.False(t, b.IsSet(7))
	b.Set(7)
	require.True(t, b.IsSet(7))
	b.Set(8)
	require.True(t, b.IsSet(8))

	b.Clear(7)
	require.False(t, b.IsSet(7))
	require.True(t, b.IsSet(8))
}

func TestBitsetOutOfRangeIsNoOp(t *testing.T) {
	b := New(128)

	b.Set(132)
	require.Equal(t, []uint64{0, 0}, b.bits)

	for i := int64(0); i < 128; i++ {
		b.Set(i)
	}
	full := []uint64{^uint64(0), ^uint64(0)}
	require.Equal(t, full, b.bits)

	b.Clear(137)
	require.Equal(t, full, b.bits)

	require.False(t, b.IsSet(-1))
	b.Set(-1)
	require.Equal(t, full, b.bits)
}
