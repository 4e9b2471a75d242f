// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package tendb

import (
	"io"
	"log/slog"

	"github.com/tendb-go/tendb/internal/metrics"
	"github.com/tendb-go/tendb/internal/wire"
)

// defaultBranchFactor is the number of children a node carries before a
// new one is started, both for leaves (items per leaf) and internal
// levels (nodes per parent).
const defaultBranchFactor = 8

type options struct {
	branchFactor uint32
	compare      wire.CompareFunc
	logger       *slog.Logger
	metrics      *metrics.Recorder
}

func defaultOptions() options {
	return options{
		branchFactor: defaultBranchFactor,
		compare:      wire.Lexicographic,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option configures an Env at Open time.
type Option func(*options)

// WithBranchFactor overrides the default branch factor (8) used when
// building leaves and internal node levels.
func WithBranchFactor(b uint32) Option {
	return func(o *options) {
		if b > 0 {
			o.branchFactor = b
		}
	}
}

// WithComparator overrides the default lexicographic byte comparator.
// All readers and writers sharing a file must agree on the comparator;
// it is not itself persisted.
func WithComparator(cmp func(a, b []byte) int) Option {
	return func(o *options) {
		if cmp != nil {
			o.compare = cmp
		}
	}
}

// WithLogger attaches a logger used for build-progress messages emitted
// by Writer.Finish. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics attaches a Recorder that Writer.Add and Writer.Finish
// update as they run. The default records nothing.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) {
		o.metrics = r
	}
}
