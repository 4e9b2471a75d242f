// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package corelocal provides a fixed-size, power-of-two shard table indexed
// by the calling goroutine's current CPU core, with a round-robin fallback
// where the OS doesn't expose one. It exists so allocators (see
// internal/alloc) can spread contention across cores without a global lock.
package corelocal

import (
	"runtime"
	"sync/atomic"
)

// minSize is the smallest shard count ever handed out, even on machines
// that report fewer logical CPUs.
const minSize = 8

// Size returns the number of shards an Array of this process should
// have: the next power of two at or above max(minSize, NumCPU).
func Size() int {
	return nextPowerOfTwo(max(minSize, runtime.NumCPU()))
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Array is a fixed-size table of N shards, N a power of two, indexed by
// current CPU core. Zero value is not usable; use NewArray.
type Array[T any] struct {
	shards []T
	mask   uint32
	rr     atomic.Uint32
}

// NewArray builds an Array sized by Size, initializing each shard with new.
func NewArray[T any](new func() T) *Array[T] {
	n := Size()
	a := &Array[T]{
		shards: make([]T, n),
		mask:   uint32(n - 1),
	}
	for i := range a.shards {
		a.shards[i] = new()
	}
	return a
}

// Len returns the number of shards.
func (a *Array[T]) Len() int {
	return len(a.shards)
}

// At returns a pointer to the shard at coreIndex, which is masked into
// range so any index is safe to pass.
func (a *Array[T]) At(coreIndex int) *T {
	return &a.shards[uint32(coreIndex)&a.mask]
}

// Current returns a pointer to the shard for the calling goroutine's
// current CPU core, along with the core index used. When the platform
// doesn't expose the current core, index falls back to an atomically
// incremented round-robin counter; correctness never depends on the index
// being an accurate reflection of the executing core, only on it being a
// stable-ish locality hint.
func (a *Array[T]) Current() (*T, int) {
	idx, ok := currentCPU()
	if !ok {
		idx = int(a.rr.Add(1))
	}
	idx &= int(a.mask)
	return &a.shards[idx], idx
}
