// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package tendb is an embeddable ordered key-value storage library built
// around two cooperating pieces: an immutable, memory-mapped, bulk-loaded
// on-disk B-tree (a "PBT", for packed B-tree) and a concurrent in-memory
// skip list (package github.com/tendb-go/tendb/skiplist) used to stage
// writes before they're flushed into a PBT file.
//
// A PBT is opened with Open, built once in sorted order via a Writer,
// sealed with Writer.Finish, and from then on served read-only through a
// Reader with zero-copy point lookup, positional lookup, ordered
// iteration, and N-way merge.
package tendb

import (
	"fmt"

	"github.com/tendb-go/tendb/internal/storage"
)

// Env is a handle to a single PBT file on disk, carrying the options
// (branch factor, comparator, logger) shared by every Reader and Writer
// opened against it.
type Env struct {
	path string
	opts options
}

// Open returns an Env over path. Open itself does not touch the
// filesystem; Reader and Writer do.
func Open(path string, opts ...Option) *Env {
	o := defaultOptions()
	for _, apply := range opts {
		apply(&o)
	}
	return &Env{path: path, opts: o}
}

// Writer opens path for writing, creating it (or truncating it) as
// needed. The returned Writer is not safe for concurrent use and is
// owned by the calling goroutine until Finish returns.
func (e *Env) Writer() (*Writer, error) {
	m, err := storage.Open(e.path, false)
	if err != nil {
		return nil, fmt.Errorf("tendb: open writer for %s: %w", e.path, err)
	}
	// Writer() always starts from a clean slate, even over an existing
	// file: "creates new / truncates".
	if err := m.Resize(storage.InitialSize); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("tendb: reset %s: %w", e.path, err)
	}
	return newWriter(m, e.opts)
}

// Reader opens path for reading. path must name a file already sealed by
// a prior Writer.Finish call; behavior is undefined (and likely
// ErrCorrupt) otherwise.
func (e *Env) Reader() (*Reader, error) {
	m, err := storage.Open(e.path, true)
	if err != nil {
		return nil, fmt.Errorf("tendb: open reader for %s: %w", e.path, err)
	}
	r, err := newReader(m, e.opts)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	return r, nil
}
