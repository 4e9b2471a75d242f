// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build !linux

package corelocal

// currentCPU has no portable implementation outside Linux; callers fall
// back to the round-robin counter.
func currentCPU() (int, bool) {
	return 0, false
}
