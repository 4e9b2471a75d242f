// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package tendb

import (
	"fmt"

	"github.com/tendb-go/tendb/internal/pbtio"
	"github.com/tendb-go/tendb/internal/storage"
)

// Writer builds a single PBT file. It is not safe for concurrent use: a
// Writer is owned by one goroutine from construction to Finish.
type Writer struct {
	app      *pbtio.Appender
	opts     options
	finished bool

	itemOffsets []uint64
	hasLast     bool
	lastKey     []byte
}

func newWriter(m *storage.Mapping, opts options) (*Writer, error) {
	app := pbtio.NewAppender(m)
	if err := app.AppendHeader(); err != nil {
		return nil, fmt.Errorf("tendb: writer init: %w", err)
	}
	return &Writer{app: app, opts: opts}, nil
}

// Add appends one key/value pair. key must be strictly greater than the
// previously added key under the active comparator; Finish must not have
// been called yet.
func (w *Writer) Add(key, value []byte) error {
	if w.finished {
		return ErrFinished
	}
	if w.hasLast && w.opts.compare(key, w.lastKey) <= 0 {
		return ErrOutOfOrder
	}
	return w.addItem(key, value)
}

// addItem is the ordering-check-free core of Add, used directly by Merge:
// an N-way merge already emits keys in non-decreasing order by
// construction, but may emit the same key from two different sources
// (duplicates across sources are preserved, not deduplicated).
func (w *Writer) addItem(key, value []byte) error {
	off, err := w.app.AppendItem(key, value)
	if err != nil {
		return fmt.Errorf("tendb: add: %w", err)
	}
	w.itemOffsets = append(w.itemOffsets, off)
	w.lastKey = append(w.lastKey[:0], key...)
	w.hasLast = true
	if m := w.opts.metrics; m != nil {
		m.ItemsWritten.Inc()
		m.BytesWritten.Add(float64(pbtio.ItemSize(len(key), len(value))))
	}
	return nil
}

// Merge performs an N-way merge of readers into this writer and then
// seals it, exactly as Finish would. It must be called instead of Add,
// never alongside it: a Writer that has ever called Add cannot also
// Merge.
func (w *Writer) Merge(readers []*Reader) error {
	if w.finished {
		return ErrFinished
	}
	if len(w.itemOffsets) != 0 {
		return fmt.Errorf("tendb: merge: %w", ErrOutOfOrder)
	}

	cursors := make([]iterator, len(readers))
	for i, r := range readers {
		cursors[i] = r.begin()
	}

	for {
		best := -1
		for i := range cursors {
			if cursors[i].atEnd() {
				continue
			}
			if best == -1 {
				best = i
				continue
			}
			bk, _ := cursors[best].deref()
			ck, _ := cursors[i].deref()
			if w.opts.compare(ck, bk) < 0 {
				best = i
			}
		}
		if best == -1 {
			break
		}
		k, v := cursors[best].deref()
		if err := w.addItem(k, v); err != nil {
			return fmt.Errorf("tendb: merge: %w", err)
		}
		cursors[best].advance()
	}

	return w.Finish()
}

// Finish seals the writer: it builds leaves and internal levels
// bottom-up over the appended items, patches the header, flushes, and
// truncates the file to its exact final size. Finish is idempotent;
// calling it more than once after the first successful call is a no-op.
func (w *Writer) Finish() error {
	if w.finished {
		return nil
	}

	n := uint32(len(w.itemOffsets))
	b := w.opts.branchFactor

	firstNodeOffset := w.app.Offset()
	beginItemsOffset := uint64(pbtio.HeaderSize)

	var (
		numLeafNodes     uint32
		numInternalNodes uint32
		depth            uint32
		rootOffset       uint64
	)

	if n == 0 {
		rootOffset = 0
	} else {
		// leaf pass
		type leafNode struct {
			offset    uint64
			itemStart uint32
			key       []byte // first leaf key, for the parent level
		}
		var leaves []leafNode

		for start := uint32(0); start < n; start += b {
			end := start + b
			if end > n {
				end = n
			}
			idx := start
			off, err := w.app.AppendLeaf(start, end, func() (uint64, []byte, bool) {
				if idx >= end {
					return 0, nil, false
				}
				itemOff := w.itemOffsets[idx]
				key, _, _, err := pbtio.ItemAt(w.app.Storage().Base(), itemOff)
				idx++
				if err != nil {
					return 0, nil, false
				}
				return itemOff, key, true
			})
			if err != nil {
				return fmt.Errorf("tendb: finish: leaf pass: %w", err)
			}
			// AppendLeaf may have grown (and so remapped) the file:
			// re-read Base rather than reuse an earlier view.
			key, _, _, err := pbtio.ItemAt(w.app.Storage().Base(), w.itemOffsets[start])
			if err != nil {
				return fmt.Errorf("tendb: finish: leaf key: %w", err)
			}
			leaves = append(leaves, leafNode{offset: off, itemStart: start, key: append([]byte(nil), key...)})
		}
		numLeafNodes = uint32(len(leaves))

		// internal passes
		type levelNode struct {
			offset    uint64
			itemStart uint32
			key       []byte
		}
		level := make([]levelNode, len(leaves))
		for i, l := range leaves {
			level[i] = levelNode{offset: l.offset, itemStart: l.itemStart, key: l.key}
		}

		var lastOffset uint64
		if len(level) > 0 {
			lastOffset = level[len(level)-1].offset
		}
		childDepth := uint32(0)

		for len(level) > 1 {
			var next []levelNode
			for start := 0; start < len(level); start += int(b) {
				end := start + int(b)
				if end > len(level) {
					end = len(level)
				}
				chunk := level[start:end]

				// item_start/item_end for this internal node
				// bracket the subtree it roots.
				itemStart := chunk[0].itemStart
				var itemEnd uint32
				if end < len(level) {
					itemEnd = level[end].itemStart
				} else {
					itemEnd = n
				}

				numItemsOf := func(idx int) uint64 {
					if idx+1 < len(chunk) {
						return uint64(chunk[idx+1].itemStart - chunk[idx].itemStart)
					}
					if end < len(level) {
						return uint64(level[end].itemStart - chunk[idx].itemStart)
					}
					return uint64(n - chunk[idx].itemStart)
				}

				off, err := w.app.AppendInternal(childDepth+1, itemStart, itemEnd, len(chunk), func(i int) (uint64, uint64, []byte) {
					c := chunk[i]
					return c.offset, numItemsOf(i), c.key
				})
				if err != nil {
					return fmt.Errorf("tendb: finish: internal pass: %w", err)
				}
				lastOffset = off
				next = append(next, levelNode{offset: off, itemStart: itemStart, key: chunk[0].key})
			}
			numInternalNodes += uint32(len(next))
			depth++
			childDepth++
			level = next
		}
		rootOffset = lastOffset
	}

	w.app.PatchHeader(pbtio.Header{
		Magic:                    pbtio.Magic,
		Depth:                    depth,
		NumLeafNodes:             numLeafNodes,
		NumInternalNodes:         numInternalNodes,
		NumItems:                 n,
		RootOffset:               rootOffset,
		FirstNodeOffset:          firstNodeOffset,
		BeginKeyValueItemsOffset: beginItemsOffset,
	})

	w.opts.logger.Debug("pbt finish",
		"num_items", n, "num_leaf_nodes", numLeafNodes,
		"num_internal_nodes", numInternalNodes, "depth", depth)

	if m := w.opts.metrics; m != nil {
		m.LeafNodesWritten.Add(float64(numLeafNodes))
		m.InternalNodes.Add(float64(numInternalNodes))
	}

	if err := w.app.Storage().Flush(); err != nil {
		return fmt.Errorf("tendb: finish: flush: %w", err)
	}
	if err := w.app.Truncate(w.app.Offset()); err != nil {
		return fmt.Errorf("tendb: finish: truncate: %w", err)
	}
	if err := w.app.Storage().Close(); err != nil {
		return fmt.Errorf("tendb: finish: close: %w", err)
	}

	w.finished = true
	return nil
}
