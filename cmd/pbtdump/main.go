// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command pbtdump is an introspection tool for PBT files: it prints
// header metadata, looks up individual keys, iterates a file in order,
// and merges several sealed files into a new one.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
