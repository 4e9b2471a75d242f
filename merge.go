// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package tendb

// Merge is the static N-way merge helper named in the external interface:
// it feeds writer from the sorted, disjoint-or-overlapping readers and
// seals it. It is equivalent to writer.Merge(readers); both forms exist
// because some callers reach for the package-level verb, others for the
// method.
func Merge(readers []*Reader, writer *Writer) error {
	return writer.Merge(readers)
}
