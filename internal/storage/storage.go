// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package storage provides a growable, file-backed memory mapping used by
// the PBT appender, writer and reader. Unlike a read-only mmap wrapper it
// supports resizing and switching between read-write and read-only modes,
// unmapping before every truncate or mode change so a partial remap is
// never observable.
package storage

import (
	"errors"
	"fmt"
	"os"
)

// InitialSize is the size a freshly created read-write mapping is given
// before the first grow.
const InitialSize = 1 << 20 // 1 MiB

// ErrReadOnly is returned by mutating operations on a read-only mapping.
var ErrReadOnly = errors.New("storage: mapping is read-only")

// Mapping owns a file, its current mapped length, and the mapped bytes
// themselves. The zero value is not usable; construct with Open.
type Mapping struct {
	f        *os.File
	path     string
	readOnly bool
	data     []byte
}

// Open opens path, creating it if absent unless readOnly is set (in which
// case a missing file is an error), and maps the whole file into memory.
// A read-write file that is new or empty is sized to InitialSize; any
// other existing file keeps its on-disk length.
func Open(path string, readOnly bool) (*Mapping, error) {
	flags := os.O_RDWR
	if readOnly {
		flags = os.O_RDONLY
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		if os.IsNotExist(err) && !readOnly {
			f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
		}
		if err != nil {
			return nil, fmt.Errorf("storage: open %s: %w", path, err)
		}
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("storage: stat %s: %w", path, err)
	}

	size := fi.Size()
	if size == 0 && !readOnly {
		size = InitialSize
		if err := f.Truncate(size); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("storage: truncate %s: %w", path, err)
		}
	}

	m := &Mapping{f: f, path: path, readOnly: readOnly}
	if size > 0 {
		data, err := mmap(f, int(size), readOnly)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("storage: mmap %s: %w", path, err)
		}
		m.data = data
	}
	return m, nil
}

// Size returns the current mapped length.
func (m *Mapping) Size() int64 {
	return int64(len(m.data))
}

// Base returns the mapped bytes. The slice is valid only until the next
// Resize, SetMode or Close call.
func (m *Mapping) Base() []byte {
	return m.data
}

// ReadOnly reports the current mapping mode.
func (m *Mapping) ReadOnly() bool {
	return m.readOnly
}

// Resize unmaps, truncates the underlying file to n bytes, and remaps.
// It is an error to call Resize on a read-only mapping.
func (m *Mapping) Resize(n int64) error {
	if m.readOnly {
		return ErrReadOnly
	}
	if n == int64(len(m.data)) {
		return nil
	}
	if err := m.unmap(); err != nil {
		return fmt.Errorf("storage: unmap %s: %w", m.path, err)
	}
	if err := m.f.Truncate(n); err != nil {
		return fmt.Errorf("storage: truncate %s: %w", m.path, err)
	}
	if n == 0 {
		m.data = nil
		return nil
	}
	data, err := mmap(m.f, int(n), false)
	if err != nil {
		return fmt.Errorf("storage: remap %s: %w", m.path, err)
	}
	m.data = data
	return nil
}

// SetMode unmaps and remaps the file in the requested mode.
func (m *Mapping) SetMode(readOnly bool) error {
	if m.readOnly == readOnly {
		return nil
	}
	size := len(m.data)
	if err := m.unmap(); err != nil {
		return fmt.Errorf("storage: unmap %s: %w", m.path, err)
	}
	m.readOnly = readOnly
	if size == 0 {
		return nil
	}
	data, err := mmap(m.f, size, readOnly)
	if err != nil {
		return fmt.Errorf("storage: remap %s: %w", m.path, err)
	}
	m.data = data
	return nil
}

// Flush asynchronously synchronizes the mapped region to the file.
func (m *Mapping) Flush() error {
	if len(m.data) == 0 {
		return nil
	}
	if err := msync(m.data); err != nil {
		return fmt.Errorf("storage: flush %s: %w", m.path, err)
	}
	return nil
}

// Close unmaps and closes the underlying file.
func (m *Mapping) Close() error {
	if err := m.unmap(); err != nil {
		return err
	}
	return m.f.Close()
}

func (m *Mapping) unmap() error {
	if len(m.data) == 0 {
		return nil
	}
	err := munmap(m.data)
	m.data = nil
	return err
}
