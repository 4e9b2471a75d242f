// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package tendb

import "errors"

// Sentinel errors for the small fixed set of named failure kinds. Absence
// (a missing key, an out-of-range positional index) is never one of
// these: it's reported as a plain (value, ok bool) result.
var (
	// ErrCorrupt is returned when a file fails the magic-number or
	// size-consistency checks on open.
	ErrCorrupt = errors.New("tendb: corrupt file")

	// ErrKeyTooLarge is returned by Writer.Add when a key or value
	// would overflow the on-disk size-prefix field. In practice this
	// never triggers: sizes are u64 and no caller approaches 2^64-1
	// bytes; the sentinel exists so the failure mode is named.
	ErrKeyTooLarge = errors.New("tendb: key or value too large")

	// ErrOutOfOrder is returned by Writer.Add when a key is not
	// strictly greater than the previously added key, and (wrapped) by
	// Writer.Merge when Add has already been called on the same Writer.
	ErrOutOfOrder = errors.New("tendb: keys must be added in strictly ascending order")

	// ErrFinished is returned by Writer.Add or Writer.Merge once
	// Finish has already been called.
	ErrFinished = errors.New("tendb: writer already finished")
)
