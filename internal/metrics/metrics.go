// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package metrics provides optional Prometheus instrumentation for the
// writer's bulk-load pass and the skip list's allocator. Nothing in this
// package is wired up unless a caller constructs a Recorder and passes it
// in; by default tendb emits no metrics at all.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder collects counters describing one PBT file's build and one or
// more skip lists' allocation activity. The zero value is not usable;
// construct with New.
type Recorder struct {
	ItemsWritten     prometheus.Counter
	LeafNodesWritten prometheus.Counter
	InternalNodes    prometheus.Counter
	BytesWritten     prometheus.Counter

	SkipListAllocations prometheus.Counter
	SkipListBytes       prometheus.Counter
}

// New constructs a Recorder and registers its metrics on reg. Pass a
// fresh prometheus.NewRegistry() in tests to avoid colliding with the
// default global registry.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		ItemsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tendb",
			Subsystem: "writer",
			Name:      "items_written_total",
			Help:      "Number of key/value items appended to a PBT file.",
		}),
		LeafNodesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tendb",
			Subsystem: "writer",
			Name:      "leaf_nodes_written_total",
			Help:      "Number of leaf nodes emitted during Finish.",
		}),
		InternalNodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tendb",
			Subsystem: "writer",
			Name:      "internal_nodes_written_total",
			Help:      "Number of internal nodes emitted during Finish.",
		}),
		BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tendb",
			Subsystem: "writer",
			Name:      "bytes_written_total",
			Help:      "Bytes of key/value items appended to the backing file; the file header and nodes are not counted.",
		}),
		SkipListAllocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tendb",
			Subsystem: "skiplist",
			Name:      "allocations_total",
			Help:      "Number of Data records allocated across all skip lists sharing this recorder.",
		}),
		SkipListBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tendb",
			Subsystem: "skiplist",
			Name:      "allocated_bytes_total",
			Help:      "Bytes carved out of skip list allocators sharing this recorder.",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.ItemsWritten, r.LeafNodesWritten, r.InternalNodes, r.BytesWritten,
		r.SkipListAllocations, r.SkipListBytes,
	} {
		reg.MustRegister(c)
	}
	return r
}
