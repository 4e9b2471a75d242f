// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package alloc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestBlockAllocatorCarvesDistinctRegions(t *testing.T) {
	a := NewBlockAllocator()

	x := a.Allocate(8)
	y := a.Allocate(8)
	copy(x, "aaaaaaaa")
	copy(y, "bbbbbbbb")

	require.Equal(t, "aaaaaaaa", string(x))
	require.Equal(t, "bbbbbbbb", string(y))
}

func TestBlockAllocatorLargeRequestGetsOwnBlock(t *testing.T) {
	a := NewBlockAllocator()

	big := a.Allocate(largeThreshold + 1)
	require.Len(t, big, largeThreshold+1)
}

func TestBlockAllocatorSpansBlocks(t *testing.T) {
	a := NewBlockAllocator()

	var bufs [][]byte
	for i := 0; i < blockSize/alignment+10; i++ {
		bufs = append(bufs, a.Allocate(8))
	}
	for i, b := range bufs {
		b[0] = byte(i)
	}
	for i, b := range bufs {
		require.Equal(t, byte(i), b[0])
	}
}

func TestCoreLocalShardAllocatorConcurrent(t *testing.T) {
	a := NewCoreLocalShardAllocator()

	var g errgroup.Group
	var mu sync.Mutex
	seen := map[uintptr]bool{}

	for i := 0; i < 64; i++ {
		g.Go(func() error {
			for j := 0; j < 100; j++ {
				b := a.Allocate(32)
				b[0] = 1
				mu.Lock()
				seen[uintptr(len(b))] = true
				mu.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestFixedSizeArenaExhausts(t *testing.T) {
	a := NewFixedSizeArena(make([]byte, 32))

	b, err := a.Allocate(16)
	require.NoError(t, err)
	require.Len(t, b, 16)

	_, err = a.Allocate(32)
	require.ErrorIs(t, err, ErrArenaExhausted)
}
