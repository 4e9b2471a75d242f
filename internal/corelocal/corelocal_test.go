// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package corelocal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizeIsPowerOfTwoAtLeastEight(t *testing.T) {
	n := Size()
	require.GreaterOrEqual(t, n, minSize)
	require.Zero(t, n&(n-1))
}

func TestAtMasksOutOfRangeIndex(t *testing.T) {
	a := NewArray(func() int { return 0 })
	*a.At(0) = 7
	require.Equal(t, 7, *a.At(a.Len()))
}

func TestCurrentReturnsShardWithinRange(t *testing.T) {
	a := NewArray(func() int { return 0 })
	shard, idx := a.Current()
	require.GreaterOrEqual(t, idx, 0)
	require.Less(t, idx, a.Len())
	*shard++
	require.Equal(t, 1, *shard)
}
