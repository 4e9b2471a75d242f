// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package corelocal

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// currentCPU reports the CPU core the calling goroutine is running on via
// the getcpu(2) syscall, mirroring sched_getcpu(). It can spuriously report
// a stale core right after the goroutine migrates; callers only ever use
// it as a locality hint, never for correctness.
func currentCPU() (int, bool) {
	var cpu, node uint32
	_, _, errno := unix.RawSyscall(unix.SYS_GETCPU, uintptr(unsafe.Pointer(&cpu)), uintptr(unsafe.Pointer(&node)), 0)
	if errno != 0 {
		return 0, false
	}
	return int(cpu), true
}
