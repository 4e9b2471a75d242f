// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package wire holds the comparator abstraction shared by the PBT and
// skip-list packages.
package wire

import "bytes"

// CompareFunc totally orders two byte strings, returning <0, 0 or >0 the
// same way bytes.Compare does.
type CompareFunc func(a, b []byte) int

// Lexicographic is the default comparator: unsigned byte-wise compare.
func Lexicographic(a, b []byte) int {
	return bytes.Compare(a, b)
}
