// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorderCountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ItemsWritten.Add(3)
	r.LeafNodesWritten.Inc()
	r.SkipListAllocations.Inc()
	r.SkipListBytes.Add(42)

	require.Equal(t, float64(3), testutil.ToFloat64(r.ItemsWritten))
	require.Equal(t, float64(1), testutil.ToFloat64(r.LeafNodesWritten))
	require.Equal(t, float64(1), testutil.ToFloat64(r.SkipListAllocations))
	require.Equal(t, float64(42), testutil.ToFloat64(r.SkipListBytes))
}
