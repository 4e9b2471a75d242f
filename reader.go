// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package tendb

import (
	"fmt"

	"github.com/tendb-go/tendb/internal/pbtio"
	"github.com/tendb-go/tendb/internal/storage"
)

// Reader serves zero-copy point lookup, positional lookup and ordered
// iteration over a sealed PBT file. All returned key/value slices borrow
// directly from the underlying mapping and are valid only until Close.
// A Reader is safe for concurrent use by any number of goroutines: every
// operation is read-only over an immutable mapping.
type Reader struct {
	m      *storage.Mapping
	header pbtio.Header
	opts   options
}

func newReader(m *storage.Mapping, opts options) (*Reader, error) {
	var h pbtio.Header
	if err := h.Unmarshal(m.Base()); err != nil {
		return nil, fmt.Errorf("tendb: %w: %v", ErrCorrupt, err)
	}
	return &Reader{m: m, header: h, opts: opts}, nil
}

// Close releases the mapping backing this reader.
func (r *Reader) Close() error {
	return r.m.Close()
}

// NumItems returns the number of key/value pairs in the file.
func (r *Reader) NumItems() uint32 {
	return r.header.NumItems
}

// Stats is a snapshot of a sealed file's header, exposed for
// introspection tooling.
type Stats struct {
	Depth            uint32
	NumLeafNodes     uint32
	NumInternalNodes uint32
	NumItems         uint32
	RootOffset       uint64
	FirstNodeOffset  uint64
}

// Stats returns the file's header fields.
func (r *Reader) Stats() Stats {
	return Stats{
		Depth:            r.header.Depth,
		NumLeafNodes:     r.header.NumLeafNodes,
		NumInternalNodes: r.header.NumInternalNodes,
		NumItems:         r.header.NumItems,
		RootOffset:       r.header.RootOffset,
		FirstNodeOffset:  r.header.FirstNodeOffset,
	}
}

// Get returns the value stored for key, and whether key was present.
func (r *Reader) Get(key []byte) (value []byte, ok bool) {
	off, found := r.findByKey(key)
	if !found {
		return nil, false
	}
	_, value, _, err := pbtio.ItemAt(r.m.Base(), off)
	if err != nil {
		return nil, false
	}
	return value, true
}

// At returns the key/value pair at positional index, and whether index
// was in range.
func (r *Reader) At(index uint32) (key, value []byte, ok bool) {
	off, found := r.findByIndex(index)
	if !found {
		return nil, nil, false
	}
	key, value, _, err := pbtio.ItemAt(r.m.Base(), off)
	if err != nil {
		return nil, nil, false
	}
	return key, value, true
}

func (r *Reader) begin() iterator {
	return iterator{r: r, off: r.header.BeginKeyValueItemsOffset}
}

func (r *Reader) end() iterator {
	return iterator{r: r, off: r.header.FirstNodeOffset}
}

// Begin returns an iterator at the first item.
func (r *Reader) Begin() Iterator {
	return Iterator{it: r.begin()}
}

// End returns the past-the-end iterator.
func (r *Reader) End() Iterator {
	return Iterator{it: r.end()}
}

// Seek returns an iterator positioned at key, or End() if key is absent.
// Seek never returns the next-greater item on a miss.
func (r *Reader) Seek(key []byte) Iterator {
	off, found := r.findByKey(key)
	if !found {
		return r.End()
	}
	return Iterator{it: iterator{r: r, off: off}}
}

// SeekAt returns an iterator positioned at index, or End() if index is
// out of range.
func (r *Reader) SeekAt(index uint32) Iterator {
	off, found := r.findByIndex(index)
	if !found {
		return r.End()
	}
	return Iterator{it: iterator{r: r, off: off}}
}

// findByKey performs the tree descent described in the format's get/seek
// semantics: at each internal level, the selected child is the
// rightmost one whose key is <= target; at the leaf, the selected
// child's key must compare exactly equal.
func (r *Reader) findByKey(key []byte) (itemOffset uint64, found bool) {
	if r.header.NumItems == 0 {
		return 0, false
	}

	offset := r.header.RootOffset
	for {
		nh, err := pbtio.NodeHeaderAt(r.m.Base(), offset)
		if err != nil {
			return 0, false
		}

		var selected pbtio.ChildRef
		haveSelected := false
		childOff := offset + pbtio.NodeHeaderSize
		for i := uint32(0); i < nh.NumChildren; i++ {
			cr, err := pbtio.ChildRefAt(r.m.Base(), childOff)
			if err != nil {
				return 0, false
			}
			if r.opts.compare(cr.Key, key) <= 0 {
				selected = cr
				haveSelected = true
				childOff += cr.Size
				continue
			}
			break
		}
		if !haveSelected {
			return 0, false
		}

		if nh.IsLeaf() {
			if r.opts.compare(selected.Key, key) != 0 {
				return 0, false
			}
			return selected.Offset, true
		}
		offset = selected.Offset
	}
}

// findByIndex performs the positional descent: at each level, subtract
// each child's num_items from the remaining index until the child that
// covers it is found.
func (r *Reader) findByIndex(index uint32) (itemOffset uint64, found bool) {
	if index >= r.header.NumItems {
		return 0, false
	}

	offset := r.header.RootOffset
	remaining := uint64(index)
	for {
		nh, err := pbtio.NodeHeaderAt(r.m.Base(), offset)
		if err != nil {
			return 0, false
		}

		childOff := offset + pbtio.NodeHeaderSize
		descended := false
		for i := uint32(0); i < nh.NumChildren; i++ {
			cr, err := pbtio.ChildRefAt(r.m.Base(), childOff)
			if err != nil {
				return 0, false
			}
			if remaining < cr.NumItems {
				if nh.IsLeaf() {
					return cr.Offset, true
				}
				offset = cr.Offset
				descended = true
				break
			}
			remaining -= cr.NumItems
			childOff += cr.Size
		}
		if !descended {
			return 0, false
		}
	}
}
