// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package skiplist implements a lock-free, insertion-only ordered map
// with logical delete: a concurrent in-memory staging structure meant to
// be flushed into an immutable PBT file (see the root tendb package) once
// it grows large enough.
//
// Structurally it is a classic multi-level linked skip list: fixed height
// 16, geometric level selection, one head sentinel per level, and nodes
// linked bottom-up via CAS on an atomic next-pointer. What makes it
// lock-free rather than merely concurrent-friendly is that a key update
// never allocates or relinks a node — it swaps the existing bottom node's
// data pointer — and a delete never unlinks anything, it just flips a
// tombstone bit on the Data record in place.
package skiplist

import (
	"math/rand"
	"sync/atomic"

	"github.com/tendb-go/tendb/internal/alloc"
	"github.com/tendb-go/tendb/internal/metrics"
	"github.com/tendb-go/tendb/internal/wire"
)

const (
	maxHeight         = 16
	maxLevel          = maxHeight - 1
	branchProbability = 0.5
)

// Data is one logical record: a key, a value, and a tombstone bit. Its
// key and value bytes are carved out of the skip list's sharded allocator
// and live as long as the owning skip list; there is no individual free.
type Data struct {
	key     []byte
	value   []byte
	deleted atomic.Bool
}

// Key returns the record's key.
func (d *Data) Key() []byte { return d.key }

// Value returns the record's value.
func (d *Data) Value() []byte { return d.value }

type node struct {
	data atomic.Pointer[Data]
	next atomic.Pointer[node]
	down *node // immutable once the node is constructed
}

// Option configures a SkipList at construction.
type Option func(*SkipList)

// WithComparator overrides the default lexicographic byte comparator.
func WithComparator(cmp wire.CompareFunc) Option {
	return func(s *SkipList) {
		if cmp != nil {
			s.compare = cmp
		}
	}
}

// WithMetrics attaches a Recorder that every Put updates with allocation
// counts. The default records nothing.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *SkipList) {
		s.metrics = r
	}
}

// SkipList is a lock-free ordered map from byte-string keys to
// byte-string values. The zero value is not usable; construct with New.
// All operations except Clear are safe for any number of concurrent
// callers; see the package doc and SPEC for the exact ordering
// guarantees.
type SkipList struct {
	compare wire.CompareFunc
	heads   [maxHeight]*node
	alloc   *alloc.CoreLocalShardAllocator
	metrics *metrics.Recorder
}

// New constructs an empty SkipList.
func New(opts ...Option) *SkipList {
	s := &SkipList{
		compare: wire.Lexicographic,
		alloc:   alloc.NewCoreLocalShardAllocator(),
	}
	for i := range s.heads {
		s.heads[i] = &node{}
	}
	for i := 1; i < maxHeight; i++ {
		s.heads[i].down = s.heads[i-1]
	}
	for _, apply := range opts {
		apply(s)
	}
	return s
}

func randomLevel() int {
	level := 0
	for level < maxLevel && rand.Float64() < branchProbability {
		level++
	}
	return level
}

func (s *SkipList) keyOf(n *node) []byte {
	return n.data.Load().key
}

func (s *SkipList) newData(key, value []byte) *Data {
	size := len(key) + len(value)
	buf := s.alloc.Allocate(size)
	n := copy(buf, key)
	copy(buf[n:], value)
	if s.metrics != nil {
		s.metrics.SkipListAllocations.Inc()
		s.metrics.SkipListBytes.Add(float64(size))
	}
	return &Data{key: buf[:n], value: buf[n:]}
}

// Put inserts key/value, or, if key is already present, atomically
// replaces its value. Put never blocks indefinitely and never fails: the
// only way it could fail is exhausting the allocator, which this
// allocator never does (it grows on demand).
func (s *SkipList) Put(key, value []byte) {
	data := s.newData(key, value)
	level := randomLevel()

	var path [maxHeight]*node
	pred := s.heads[maxHeight-1]
	for lvl := maxHeight - 1; lvl >= 0; lvl-- {
		for {
			next := pred.next.Load()
			if next != nil && s.compare(s.keyOf(next), key) <= 0 {
				pred = next
				continue
			}
			break
		}
		path[lvl] = pred
		if lvl > 0 {
			pred = pred.down
		}
	}

	var below *node
	for i := 0; i <= level; i++ {
		p := path[i]
		for {
			next := p.next.Load()
			if next != nil && s.compare(s.keyOf(next), key) <= 0 {
				// lost the race to a concurrent insert whose key
				// falls at or before ours; walk forward and retry.
				p = next
				continue
			}

			if i == 0 && p != s.heads[0] && s.compare(s.keyOf(p), key) == 0 {
				// key already present: swap the data pointer in
				// place. No new node, no propagation to higher
				// levels — any taller tower from an earlier insert
				// of this key keeps pointing at stale Data objects
				// that share the same key, which is harmless since
				// Get/Seek only ever read the value off the
				// level-0 node.
				p.data.Store(data)
				return
			}

			n := &node{down: below}
			n.data.Store(data)
			n.next.Store(next)
			if p.next.CompareAndSwap(next, n) {
				below = n
				break
			}
			// CAS lost to a concurrent insert at this exact
			// predecessor; reread next and retry.
		}
	}
}

// findNode descends from the top head to the rightmost level-0 node
// whose key is <= target; it returns a head sentinel if no such node
// exists (target is smaller than everything present).
func (s *SkipList) findNode(key []byte) *node {
	pred := s.heads[maxHeight-1]
	for lvl := maxHeight - 1; lvl >= 0; lvl-- {
		for {
			next := pred.next.Load()
			if next != nil && s.compare(s.keyOf(next), key) <= 0 {
				pred = next
				continue
			}
			break
		}
		if lvl > 0 {
			pred = pred.down
		}
	}
	return pred
}

// Get returns the value for key, and whether key is present and not
// deleted.
func (s *SkipList) Get(key []byte) (value []byte, ok bool) {
	n := s.findNode(key)
	if n == s.heads[0] {
		return nil, false
	}
	d := n.data.Load()
	if s.compare(d.key, key) != 0 || d.deleted.Load() {
		return nil, false
	}
	return d.value, true
}

// Del logically removes key: the bottom-level node, if any, stays linked
// but is marked with a tombstone so iterators and Get stop observing it.
// Tombstones are never garbage collected.
func (s *SkipList) Del(key []byte) {
	n := s.findNode(key)
	if n == s.heads[0] {
		return
	}
	d := n.data.Load()
	if s.compare(d.key, key) != 0 {
		return
	}
	d.deleted.Store(true)
}

// IsEmpty reports whether iteration would yield no items.
func (s *SkipList) IsEmpty() bool {
	return s.Begin().AtEnd()
}

// Clear resets the skip list to empty. It is not safe for concurrent use
// with any other SkipList operation, including on other goroutines.
func (s *SkipList) Clear() {
	for _, h := range s.heads {
		h.next.Store(nil)
	}
	s.alloc = alloc.NewCoreLocalShardAllocator()
}

// Iterator is a forward-only cursor over level-0 nodes, auto-skipping
// tombstoned entries. The zero value is the end iterator.
type Iterator struct {
	cur *node
}

func (it *Iterator) skipTombstones() {
	for it.cur != nil && it.cur.data.Load().deleted.Load() {
		it.cur = it.cur.next.Load()
	}
}

// AtEnd reports whether the cursor has run past the last live entry.
func (it Iterator) AtEnd() bool {
	return it.cur == nil
}

// Deref returns the key and value at the cursor. It returns two nil
// slices on an end iterator.
func (it Iterator) Deref() (key, value []byte) {
	if it.cur == nil {
		return nil, nil
	}
	d := it.cur.data.Load()
	return d.key, d.value
}

// Advance moves the cursor to the next live entry.
func (it *Iterator) Advance() {
	if it.cur == nil {
		return
	}
	it.cur = it.cur.next.Load()
	it.skipTombstones()
}

// Equals reports whether two iterators are at the same position.
func (it Iterator) Equals(other Iterator) bool {
	return it.cur == other.cur
}

// Begin returns an iterator at the first live entry.
func (s *SkipList) Begin() Iterator {
	it := Iterator{cur: s.heads[0].next.Load()}
	it.skipTombstones()
	return it
}

// End returns the past-the-end iterator.
func (s *SkipList) End() Iterator {
	return Iterator{}
}

// Seek returns an iterator positioned at key, or End() if key is absent
// or deleted.
func (s *SkipList) Seek(key []byte) Iterator {
	n := s.findNode(key)
	if n == s.heads[0] {
		return s.End()
	}
	d := n.data.Load()
	if s.compare(d.key, key) != 0 || d.deleted.Load() {
		return s.End()
	}
	return Iterator{cur: n}
}
