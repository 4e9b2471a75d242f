// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package alloc provides the bump allocators backing the skip list's Data
// records: a single-threaded block allocator, a core-local sharded
// wrapper around it for concurrent callers, and a fixed-size arena for
// scratch buffers. None of the three support freeing individual
// allocations; everything is released together when the allocator itself
// is dropped.
package alloc

import (
	"errors"
	"sync"

	"github.com/tendb-go/tendb/internal/corelocal"
)

const (
	blockSize      = 4096
	largeThreshold = 1024
	// alignment mirrors max_align_t on commodity 64-bit systems.
	alignment = 16
)

func alignUp(n int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}

// BlockAllocator is a single-threaded chain of fixed-size blocks. Requests
// larger than largeThreshold get their own dedicated block; everything
// else is bump-allocated out of the current block, with a fresh block
// carved when the current one is exhausted.
type BlockAllocator struct {
	blocks  [][]byte
	current []byte
	off     int
}

// NewBlockAllocator returns an empty allocator; the first block is carved
// lazily on the first small allocation.
func NewBlockAllocator() *BlockAllocator {
	return &BlockAllocator{}
}

// Allocate returns n fresh, zeroed bytes aligned to alignment. The
// returned slice is owned by the caller but its backing memory is only
// ever released as a whole when the BlockAllocator is garbage collected.
func (a *BlockAllocator) Allocate(n int) []byte {
	if n > largeThreshold {
		b := make([]byte, n)
		a.blocks = append(a.blocks, b)
		return b
	}

	aligned := alignUp(n)
	if a.off+aligned > len(a.current) {
		a.current = make([]byte, blockSize)
		a.blocks = append(a.blocks, a.current)
		a.off = 0
	}
	b := a.current[a.off : a.off+n]
	a.off += aligned
	return b
}

// shard is one core's slice of a CoreLocalShardAllocator: an unshared
// block allocator guarded by its own mutex.
type shard struct {
	mu sync.Mutex
	ba *BlockAllocator
}

// CoreLocalShardAllocator spreads allocation across a core-local array of
// shards so concurrent callers on different cores rarely contend. Each
// call picks a shard via the current CPU core (falling back to
// round-robin), try-locks it, and on contention re-reads the current core
// and blocks on that shard's mutex — the shard actually locked may differ
// from the one optimistically chosen.
type CoreLocalShardAllocator struct {
	shards *corelocal.Array[*shard]
}

// NewCoreLocalShardAllocator builds a sharded allocator sized by
// corelocal.Size.
func NewCoreLocalShardAllocator() *CoreLocalShardAllocator {
	return &CoreLocalShardAllocator{
		shards: corelocal.NewArray(func() *shard {
			return &shard{ba: NewBlockAllocator()}
		}),
	}
}

// Allocate returns n fresh bytes, internally routed to a CPU-local shard.
func (a *CoreLocalShardAllocator) Allocate(n int) []byte {
	sp, _ := a.shards.Current()
	s := *sp
	if s.mu.TryLock() {
		defer s.mu.Unlock()
		return s.ba.Allocate(n)
	}

	// lost the race for this shard: re-read the current core (it may
	// have changed) and block rather than spin.
	sp, _ = a.shards.Current()
	s = *sp
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ba.Allocate(n)
}

// ErrArenaExhausted is returned by FixedSizeArena.Allocate once the
// backing buffer has been fully consumed.
var ErrArenaExhausted = errors.New("alloc: arena exhausted")

// FixedSizeArena drains a caller-supplied buffer linearly. There is no
// growth and no individual free; it exists for scratch allocations whose
// lifetime is bounded by a single operation.
type FixedSizeArena struct {
	buf []byte
	off int
}

// NewFixedSizeArena wraps buf for linear allocation.
func NewFixedSizeArena(buf []byte) *FixedSizeArena {
	return &FixedSizeArena{buf: buf}
}

// Allocate returns the next n bytes of the arena, or ErrArenaExhausted if
// fewer than n bytes, rounded up to alignment, remain.
func (a *FixedSizeArena) Allocate(n int) ([]byte, error) {
	aligned := alignUp(n)
	if a.off+aligned > len(a.buf) {
		return nil, ErrArenaExhausted
	}
	b := a.buf[a.off : a.off+n]
	a.off += aligned
	return b, nil
}

// Remaining reports how many bytes are left in the arena.
func (a *FixedSizeArena) Remaining() int {
	return len(a.buf) - a.off
}
