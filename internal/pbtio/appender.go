// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package pbtio

import (
	"fmt"

	"github.com/tendb-go/tendb/internal/storage"
)

// Appender is a grow-on-demand sequential writer into a Mapping. It tracks
// a single forward-advancing offset; every append writes a freshly
// initialized structure at the current cursor and advances past it.
type Appender struct {
	m   *storage.Mapping
	off uint64
}

// NewAppender wraps m, starting the cursor at 0.
func NewAppender(m *storage.Mapping) *Appender {
	return &Appender{m: m}
}

// Offset returns the current append cursor.
func (a *Appender) Offset() uint64 {
	return a.off
}

// Storage returns the underlying mapping, e.g. so the reader portion of a
// writer can decode what's already been appended.
func (a *Appender) Storage() *storage.Mapping {
	return a.m
}

// Ensure grows the mapping so that at least n more bytes are available
// past the current cursor, doubling the mapping's size each time it must
// grow rather than growing exactly to fit.
func (a *Appender) Ensure(n uint64) error {
	need := a.off + n
	cur := uint64(a.m.Size())
	if need <= cur {
		return nil
	}
	newSize := cur * 2
	if newSize < need {
		newSize = need
	}
	if newSize == 0 {
		newSize = need
	}
	if err := a.m.Resize(int64(newSize)); err != nil {
		return fmt.Errorf("pbtio: grow to %d: %w", newSize, err)
	}
	return nil
}

// AppendHeader reserves and zero-initializes the fixed header region at
// the start of the file, advancing the cursor past it.
func (a *Appender) AppendHeader() error {
	if err := a.Ensure(HeaderSize); err != nil {
		return err
	}
	var h Header
	h.Marshal(a.m.Base()[a.off : a.off+HeaderSize])
	a.off += HeaderSize
	return nil
}

// PatchHeader overwrites the header region in place without moving the
// cursor; used by Writer.Finish once depth/counts/offsets are known.
func (a *Appender) PatchHeader(h Header) {
	h.Marshal(a.m.Base()[0:HeaderSize])
}

// AppendItem writes an Item at the cursor and returns its offset.
func (a *Appender) AppendItem(key, value []byte) (uint64, error) {
	size := uint64(ItemSize(len(key), len(value)))
	if err := a.Ensure(size); err != nil {
		return 0, err
	}
	off := a.off
	PutItem(a.m.Base()[off:off+size], key, value)
	a.off += size
	return off, nil
}

// AppendLeaf writes a leaf node (depth 0) whose children are the items in
// [itemStart, itemEnd), reading each item's offset and key via next,
// which must yield exactly itemEnd-itemStart (offset, key) pairs in
// order. It returns the node's offset.
func (a *Appender) AppendLeaf(itemStart, itemEnd uint32, next func() (offset uint64, key []byte, ok bool)) (uint64, error) {
	type child struct {
		offset uint64
		key    []byte
	}
	var children []child
	for {
		offset, key, ok := next()
		if !ok {
			break
		}
		children = append(children, child{offset, key})
	}
	return a.appendNode(0, itemStart, itemEnd, func(i int) (offset, numItems uint64, key []byte) {
		c := children[i]
		return c.offset, 1, c.key
	}, len(children))
}

// AppendInternal writes an internal node (depth = childDepth+1) whose
// children are described by next, which must yield exactly numChildren
// (offset, numItems, key) tuples in order, one per child node. key is the
// child's minimum key (the first child reference key of that child node).
func (a *Appender) AppendInternal(depth, itemStart, itemEnd uint32, numChildren int, next func(i int) (offset, numItems uint64, key []byte)) (uint64, error) {
	return a.appendNode(depth, itemStart, itemEnd, next, numChildren)
}

func (a *Appender) appendNode(depth, itemStart, itemEnd uint32, next func(i int) (offset, numItems uint64, key []byte), numChildren int) (uint64, error) {
	size := nodeHeaderSize
	type enc struct {
		off, numItems uint64
		key           []byte
	}
	encs := make([]enc, numChildren)
	for i := 0; i < numChildren; i++ {
		off, numItems, key := next(i)
		// next may read key bytes straight out of the current
		// mapping; copy them now, before Ensure below can unmap and
		// remap the file and invalidate that view.
		owned := append([]byte(nil), key...)
		encs[i] = enc{off, numItems, owned}
		size += ChildRefSize(len(owned))
	}

	if err := a.Ensure(uint64(size)); err != nil {
		return 0, err
	}
	nodeOff := a.off
	buf := a.m.Base()[nodeOff : nodeOff+uint64(size)]

	PutNodeHeader(buf, NodeHeader{
		Depth:       depth,
		ItemStart:   itemStart,
		ItemEnd:     itemEnd,
		NumChildren: uint32(numChildren),
		NodeSize:    uint32(size),
	})

	cursor := nodeHeaderSize
	for _, e := range encs {
		cursor += PutChildRef(buf[cursor:], e.key, e.off, e.numItems)
	}

	a.off += uint64(size)
	return nodeOff, nil
}

// Truncate shrinks the mapping to exactly n bytes; called once by
// Writer.Finish after the header has been patched.
func (a *Appender) Truncate(n uint64) error {
	return a.m.Resize(int64(n))
}
