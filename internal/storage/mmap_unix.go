// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build unix || linux || darwin || freebsd || openbsd || netbsd

package storage

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmap maps size bytes of f starting at offset 0. Read-only mappings request
// PROT_READ; read-write mappings additionally request PROT_WRITE so the
// appender can write directly into the mapped region.
func mmap(f *os.File, size int, readOnly bool) ([]byte, error) {
	prot := unix.PROT_READ
	if !readOnly {
		prot |= unix.PROT_WRITE
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, prot, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	// random-access hint: PBT tree descent and skip-list-style access
	// patterns don't benefit from readahead.
	_ = unix.Madvise(data, unix.MADV_RANDOM)
	return data, nil
}

func munmap(data []byte) error {
	return unix.Munmap(data)
}

func msync(data []byte) error {
	return unix.Msync(data, unix.MS_ASYNC)
}
