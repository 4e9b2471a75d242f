// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package pbtio implements the packed on-disk layout shared by the PBT
// appender, writer and reader: the file header, key/value items, child
// references, and nodes. Every type here is a thin, bounds-checked typed
// view over a borrowed byte slice rather than an owning copy — callers
// hold the slice (normally backed by a memory mapping) alive for as long
// as any view into it is used.
package pbtio

import (
	"encoding/binary"
	"fmt"
)

// Magic identifies a PBT file.
const Magic uint32 = 0x1EAF1111

// HeaderSize is the fixed, packed size of Header on disk.
const HeaderSize = 4*5 + 8*3

// Header is the fixed-size region at the start of every PBT file.
type Header struct {
	Magic                    uint32
	Depth                    uint32
	NumLeafNodes             uint32
	NumInternalNodes         uint32
	NumItems                 uint32
	RootOffset               uint64
	FirstNodeOffset          uint64
	BeginKeyValueItemsOffset uint64
}

// Marshal writes h into buf, which must be at least HeaderSize bytes.
func (h *Header) Marshal(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Depth)
	binary.LittleEndian.PutUint32(buf[8:12], h.NumLeafNodes)
	binary.LittleEndian.PutUint32(buf[12:16], h.NumInternalNodes)
	binary.LittleEndian.PutUint32(buf[16:20], h.NumItems)
	binary.LittleEndian.PutUint64(buf[20:28], h.RootOffset)
	binary.LittleEndian.PutUint64(buf[28:36], h.FirstNodeOffset)
	binary.LittleEndian.PutUint64(buf[36:44], h.BeginKeyValueItemsOffset)
}

// Unmarshal parses a Header out of buf, which must be at least HeaderSize
// bytes, and validates the magic number.
func (h *Header) Unmarshal(buf []byte) error {
	if len(buf) < HeaderSize {
		return fmt.Errorf("pbtio: header truncated: %d < %d bytes", len(buf), HeaderSize)
	}
	h.Magic = binary.LittleEndian.Uint32(buf[0:4])
	if h.Magic != Magic {
		return fmt.Errorf("pbtio: bad magic %#x, want %#x", h.Magic, Magic)
	}
	h.Depth = binary.LittleEndian.Uint32(buf[4:8])
	h.NumLeafNodes = binary.LittleEndian.Uint32(buf[8:12])
	h.NumInternalNodes = binary.LittleEndian.Uint32(buf[12:16])
	h.NumItems = binary.LittleEndian.Uint32(buf[16:20])
	h.RootOffset = binary.LittleEndian.Uint64(buf[20:28])
	h.FirstNodeOffset = binary.LittleEndian.Uint64(buf[28:36])
	h.BeginKeyValueItemsOffset = binary.LittleEndian.Uint64(buf[36:44])
	return nil
}

// itemHeaderSize is the fixed part of an Item: key_size, value_size.
const itemHeaderSize = 8 + 8

// ItemSize returns the total encoded size of an item with the given key
// and value lengths.
func ItemSize(keyLen, valueLen int) int {
	return itemHeaderSize + keyLen + valueLen
}

// PutItem encodes key/value as an Item at the start of buf, which must be
// at least ItemSize(len(key), len(value)) bytes, and returns the number
// of bytes written.
func PutItem(buf []byte, key, value []byte) int {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(len(key)))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(len(value)))
	n := itemHeaderSize
	n += copy(buf[n:], key)
	n += copy(buf[n:], value)
	return n
}

// ItemAt decodes the Item at byte offset off within data, returning
// zero-copy views into data for the key and value, and the item's total
// encoded size.
func ItemAt(data []byte, off uint64) (key, value []byte, size uint64, err error) {
	if off+itemHeaderSize > uint64(len(data)) {
		return nil, nil, 0, fmt.Errorf("pbtio: item header at %d out of bounds", off)
	}
	keySize := binary.LittleEndian.Uint64(data[off : off+8])
	valueSize := binary.LittleEndian.Uint64(data[off+8 : off+16])
	start := off + itemHeaderSize
	end := start + keySize + valueSize
	if end > uint64(len(data)) {
		return nil, nil, 0, fmt.Errorf("pbtio: item at %d out of bounds", off)
	}
	key = data[start : start+keySize]
	value = data[start+keySize : end]
	size = end - off
	return key, value, size, nil
}

// childRefHeaderSize is the fixed part of a ChildReference: key_size,
// offset, num_items.
const childRefHeaderSize = 8 + 8 + 8

// ChildRefSize returns the total encoded size of a child reference
// carrying a key of the given length.
func ChildRefSize(keyLen int) int {
	return childRefHeaderSize + keyLen
}

// PutChildRef encodes a child reference at the start of buf, which must
// be at least ChildRefSize(len(key)) bytes, and returns the number of
// bytes written.
func PutChildRef(buf []byte, key []byte, offset, numItems uint64) int {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(len(key)))
	binary.LittleEndian.PutUint64(buf[8:16], offset)
	binary.LittleEndian.PutUint64(buf[16:24], numItems)
	n := childRefHeaderSize
	n += copy(buf[n:], key)
	return n
}

// ChildRef is a decoded, zero-copy view of one child reference.
type ChildRef struct {
	Key      []byte
	Offset   uint64
	NumItems uint64
	Size     uint64
}

// ChildRefAt decodes the ChildReference at byte offset off within data.
func ChildRefAt(data []byte, off uint64) (ChildRef, error) {
	if off+childRefHeaderSize > uint64(len(data)) {
		return ChildRef{}, fmt.Errorf("pbtio: child ref header at %d out of bounds", off)
	}
	keySize := binary.LittleEndian.Uint64(data[off : off+8])
	offset := binary.LittleEndian.Uint64(data[off+8 : off+16])
	numItems := binary.LittleEndian.Uint64(data[off+16 : off+24])
	start := off + childRefHeaderSize
	end := start + keySize
	if end > uint64(len(data)) {
		return ChildRef{}, fmt.Errorf("pbtio: child ref key at %d out of bounds", off)
	}
	return ChildRef{
		Key:      data[start:end],
		Offset:   offset,
		NumItems: numItems,
		Size:     end - off,
	}, nil
}

// nodeHeaderSize is the fixed part of a Node: depth, item_start,
// item_end, num_children, node_size.
const nodeHeaderSize = 4 * 5

// NodeHeader is the fixed-size header of a packed node.
type NodeHeader struct {
	Depth       uint32
	ItemStart   uint32
	ItemEnd     uint32
	NumChildren uint32
	NodeSize    uint32
}

// IsLeaf reports whether this node holds items directly (depth 0).
func (n NodeHeader) IsLeaf() bool {
	return n.Depth == 0
}

// PutNodeHeader encodes h at the start of buf, which must be at least
// nodeHeaderSize bytes.
func PutNodeHeader(buf []byte, h NodeHeader) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Depth)
	binary.LittleEndian.PutUint32(buf[4:8], h.ItemStart)
	binary.LittleEndian.PutUint32(buf[8:12], h.ItemEnd)
	binary.LittleEndian.PutUint32(buf[12:16], h.NumChildren)
	binary.LittleEndian.PutUint32(buf[16:20], h.NodeSize)
}

// NodeHeaderAt decodes the NodeHeader at byte offset off within data.
func NodeHeaderAt(data []byte, off uint64) (NodeHeader, error) {
	if off+nodeHeaderSize > uint64(len(data)) {
		return NodeHeader{}, fmt.Errorf("pbtio: node header at %d out of bounds", off)
	}
	h := NodeHeader{
		Depth:       binary.LittleEndian.Uint32(data[off : off+4]),
		ItemStart:   binary.LittleEndian.Uint32(data[off+4 : off+8]),
		ItemEnd:     binary.LittleEndian.Uint32(data[off+8 : off+12]),
		NumChildren: binary.LittleEndian.Uint32(data[off+12 : off+16]),
		NodeSize:    binary.LittleEndian.Uint32(data[off+16 : off+20]),
	}
	return h, nil
}

// NodeHeaderSize is the exported constant for callers that need to know
// where a node's children begin.
const NodeHeaderSize = nodeHeaderSize
