// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package tendb

import "github.com/tendb-go/tendb/internal/pbtio"

// iterator is a forward-only cursor over a sealed PBT's contiguous item
// region. It is a value type: {reader, byte offset}; advancing re-derives
// the next offset from the size-prefix of the item at the current one,
// and equality is cursor equality.
type iterator struct {
	r   *Reader
	off uint64
}

// atEnd reports whether the cursor has run off the item region.
func (it iterator) atEnd() bool {
	return it.off >= it.r.header.FirstNodeOffset
}

// deref returns zero-copy views of the key and value at the cursor. It
// must not be called on an end iterator.
func (it iterator) deref() (key, value []byte) {
	key, value, _, err := pbtio.ItemAt(it.r.m.Base(), it.off)
	if err != nil {
		return nil, nil
	}
	return key, value
}

// advance moves the cursor past the current item.
func (it *iterator) advance() {
	_, _, size, err := pbtio.ItemAt(it.r.m.Base(), it.off)
	if err != nil {
		it.off = it.r.header.FirstNodeOffset
		return
	}
	it.off += size
}

// equals compares two cursors from the same Reader.
func (it iterator) equals(other iterator) bool {
	return it.r == other.r && it.off == other.off
}

// Iterator is the public forward cursor type returned by Reader.Begin,
// Reader.End, Reader.Seek and Reader.SeekAt.
type Iterator struct {
	it iterator
}

// Deref returns zero-copy views of the key and value at the cursor.
// Calling Deref on an end iterator returns two nil slices.
func (it Iterator) Deref() (key, value []byte) {
	return it.it.deref()
}

// Advance moves the cursor forward one item.
func (it *Iterator) Advance() {
	it.it.advance()
}

// Equals reports whether two iterators from the same Reader are at the
// same position.
func (it Iterator) Equals(other Iterator) bool {
	return it.it.equals(other.it)
}

// AtEnd reports whether the cursor has run past the last item.
func (it Iterator) AtEnd() bool {
	return it.it.atEnd()
}
