// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package tendb

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/tendb-go/tendb/internal/metrics"
)

func buildPBT(t *testing.T, pairs [][2]string, opts ...Option) *Reader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.pbt")

	env := Open(path, opts...)
	w, err := env.Writer()
	require.NoError(t, err)

	for _, kv := range pairs {
		require.NoError(t, w.Add([]byte(kv[0]), []byte(kv[1])))
	}
	require.NoError(t, w.Finish())

	r, err := env.Reader()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// Scenario A: tiny tree.
func TestScenarioTinyTree(t *testing.T) {
	r := buildPBT(t, [][2]string{
		{"a", "1"}, {"b", "2"}, {"c", "3"}, {"d", "4"}, {"e", "5"},
	}, WithBranchFactor(4))

	require.EqualValues(t, 5, r.header.NumItems)
	require.EqualValues(t, 2, r.header.NumLeafNodes)
	require.EqualValues(t, 1, r.header.Depth)
	require.EqualValues(t, 1, r.header.NumInternalNodes)

	v, ok := r.Get([]byte("c"))
	require.True(t, ok)
	require.Equal(t, "3", string(v))

	_, ok = r.Get([]byte("x"))
	require.False(t, ok)

	k, _, ok := r.At(0)
	require.True(t, ok)
	require.Equal(t, "a", string(k))

	k, _, ok = r.At(4)
	require.True(t, ok)
	require.Equal(t, "e", string(k))

	_, _, ok = r.At(5)
	require.False(t, ok)
}

// Scenario B: single leaf.
func TestScenarioSingleLeaf(t *testing.T) {
	r := buildPBT(t, [][2]string{
		{"k0", "v0"}, {"k1", "v1"}, {"k2", "v2"},
	}, WithBranchFactor(8))

	require.EqualValues(t, 0, r.header.Depth)
	require.EqualValues(t, 1, r.header.NumLeafNodes)
	require.EqualValues(t, 0, r.header.NumInternalNodes)
	require.Equal(t, r.header.RootOffset, r.header.FirstNodeOffset)

	var got []string
	for it := r.Begin(); !it.AtEnd(); it.Advance() {
		k, v := it.Deref()
		got = append(got, fmt.Sprintf("%s=%s", k, v))
	}
	require.Equal(t, []string{"k0=v0", "k1=v1", "k2=v2"}, got)
}

// Scenario C: empty.
func TestScenarioEmpty(t *testing.T) {
	r := buildPBT(t, nil)

	require.EqualValues(t, 0, r.header.NumItems)
	_, ok := r.Get([]byte("anything"))
	require.False(t, ok)
	require.True(t, r.Begin().Equals(r.End()))
}

// Scenario D: merge.
func TestScenarioMerge(t *testing.T) {
	a := buildPBT(t, [][2]string{{"a", "A"}, {"c", "A"}, {"e", "A"}})
	b := buildPBT(t, [][2]string{{"b", "B"}, {"c", "B"}, {"d", "B"}})

	path := filepath.Join(t.TempDir(), "merged.pbt")
	env := Open(path)
	w, err := env.Writer()
	require.NoError(t, err)
	require.NoError(t, w.Merge([]*Reader{a, b}))

	r, err := env.Reader()
	require.NoError(t, err)
	defer r.Close()

	require.EqualValues(t, 6, r.header.NumItems)

	var got []string
	for it := r.Begin(); !it.AtEnd(); it.Advance() {
		k, v := it.Deref()
		got = append(got, fmt.Sprintf("%s/%s", k, v))
	}
	require.Equal(t, []string{"a/A", "b/B", "c/A", "c/B", "d/B", "e/A"}, got)
}

func TestRoundTripAndOrderAndPosition(t *testing.T) {
	var pairs [][2]string
	for i := 0; i < 200; i++ {
		pairs = append(pairs, [2]string{fmt.Sprintf("key-%04d", i), fmt.Sprintf("val-%d", i)})
	}
	r := buildPBT(t, pairs, WithBranchFactor(5))

	for i, kv := range pairs {
		v, ok := r.Get([]byte(kv[0]))
		require.True(t, ok, "missing key %s", kv[0])
		require.Equal(t, kv[1], string(v))

		k, v, ok := r.At(uint32(i))
		require.True(t, ok)
		require.Equal(t, kv[0], string(k))
		require.Equal(t, kv[1], string(v))
	}

	_, ok := r.Get([]byte("nope"))
	require.False(t, ok)
	_, _, ok = r.At(uint32(len(pairs)))
	require.False(t, ok)

	var lastKey string
	n := 0
	for it := r.Begin(); !it.AtEnd(); it.Advance() {
		k, _ := it.Deref()
		if n > 0 {
			require.Greater(t, string(k), lastKey)
		}
		lastKey = string(k)
		n++
	}
	require.Equal(t, len(pairs), n)
}

func TestSeekMissReturnsEnd(t *testing.T) {
	r := buildPBT(t, [][2]string{{"a", "1"}, {"c", "3"}})

	it := r.Seek([]byte("b"))
	require.True(t, it.Equals(r.End()))

	it = r.Seek([]byte("a"))
	require.False(t, it.Equals(r.End()))
	k, _ := it.Deref()
	require.Equal(t, "a", string(k))
}

func TestAddOutOfOrderRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.pbt")
	env := Open(path)
	w, err := env.Writer()
	require.NoError(t, err)

	require.NoError(t, w.Add([]byte("b"), []byte("1")))
	err = w.Add([]byte("a"), []byte("2"))
	require.ErrorIs(t, err, ErrOutOfOrder)

	err = w.Add([]byte("b"), []byte("2"))
	require.ErrorIs(t, err, ErrOutOfOrder)
}

func TestAddAfterFinishRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.pbt")
	env := Open(path)
	w, err := env.Writer()
	require.NoError(t, err)
	require.NoError(t, w.Finish())

	err = w.Add([]byte("a"), []byte("1"))
	require.ErrorIs(t, err, ErrFinished)
}

func TestWriterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)

	path := filepath.Join(t.TempDir(), "data.pbt")
	env := Open(path, WithMetrics(rec), WithBranchFactor(2))
	w, err := env.Writer()
	require.NoError(t, err)

	for _, kv := range [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}} {
		require.NoError(t, w.Add([]byte(kv[0]), []byte(kv[1])))
	}
	require.NoError(t, w.Finish())

	require.Equal(t, float64(3), testutil.ToFloat64(rec.ItemsWritten))
	require.Greater(t, testutil.ToFloat64(rec.LeafNodesWritten), float64(0))
}

func TestCustomComparator(t *testing.T) {
	// Descending numeric-string comparator over single-digit keys, so
	// "9" < "0" under the custom order.
	desc := func(a, b []byte) int {
		for i := 0; i < len(a) && i < len(b); i++ {
			if a[i] != b[i] {
				return int(b[i]) - int(a[i])
			}
		}
		return len(b) - len(a)
	}

	path := filepath.Join(t.TempDir(), "data.pbt")
	env := Open(path, WithComparator(desc))
	w, err := env.Writer()
	require.NoError(t, err)
	require.NoError(t, w.Add([]byte("9"), []byte("nine")))
	require.NoError(t, w.Add([]byte("5"), []byte("five")))
	require.NoError(t, w.Add([]byte("0"), []byte("zero")))
	require.NoError(t, w.Finish())

	r, err := env.Reader()
	require.NoError(t, err)
	defer r.Close()

	v, ok := r.Get([]byte("5"))
	require.True(t, ok)
	require.Equal(t, "five", string(v))
}
