// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package skiplist

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Scenario E: basic single-threaded operations.
func TestScenarioBasicOperations(t *testing.T) {
	s := New()
	require.True(t, s.IsEmpty())

	s.Put([]byte("b"), []byte("2"))
	s.Put([]byte("a"), []byte("1"))
	s.Put([]byte("c"), []byte("3"))
	require.False(t, s.IsEmpty())

	v, ok := s.Get([]byte("b"))
	require.True(t, ok)
	require.Equal(t, "2", string(v))

	_, ok = s.Get([]byte("z"))
	require.False(t, ok)

	var got []string
	for it := s.Begin(); !it.AtEnd(); it.Advance() {
		k, v := it.Deref()
		got = append(got, fmt.Sprintf("%s=%s", k, v))
	}
	require.Equal(t, []string{"a=1", "b=2", "c=3"}, got)

	// update in place
	s.Put([]byte("b"), []byte("2b"))
	v, ok = s.Get([]byte("b"))
	require.True(t, ok)
	require.Equal(t, "2b", string(v))

	// delete
	s.Del([]byte("b"))
	_, ok = s.Get([]byte("b"))
	require.False(t, ok)

	got = nil
	for it := s.Begin(); !it.AtEnd(); it.Advance() {
		k, _ := it.Deref()
		got = append(got, string(k))
	}
	require.Equal(t, []string{"a", "c"}, got)

	it := s.Seek([]byte("b"))
	require.True(t, it.Equals(s.End()))

	it = s.Seek([]byte("c"))
	require.False(t, it.Equals(s.End()))
	k, v := it.Deref()
	require.Equal(t, "c", string(k))
	require.Equal(t, "3", string(v))
}

func TestDeleteThenReinsert(t *testing.T) {
	s := New()
	s.Put([]byte("a"), []byte("1"))
	s.Del([]byte("a"))
	_, ok := s.Get([]byte("a"))
	require.False(t, ok)

	s.Put([]byte("a"), []byte("2"))
	v, ok := s.Get([]byte("a"))
	require.True(t, ok)
	require.Equal(t, "2", string(v))
}

func TestClearResetsToEmpty(t *testing.T) {
	s := New()
	for i := 0; i < 10; i++ {
		s.Put([]byte{byte(i)}, []byte{byte(i)})
	}
	require.False(t, s.IsEmpty())
	s.Clear()
	require.True(t, s.IsEmpty())
	_, ok := s.Get([]byte{5})
	require.False(t, ok)
}

// Scenario F: concurrent puts from many goroutines over disjoint key
// partitions, verified by a single-threaded read-back afterward.
func TestScenarioConcurrentPartitionedPuts(t *testing.T) {
	const (
		goroutines = 12
		totalKeys  = 10000
	)
	s := New()

	var g errgroup.Group
	for w := 0; w < goroutines; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < totalKeys; i += goroutines {
				key := fmt.Sprintf("key-%05d", i)
				s.Put([]byte(key), []byte(fmt.Sprintf("val-%d", i)))
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i := 0; i < totalKeys; i++ {
		key := fmt.Sprintf("key-%05d", i)
		v, ok := s.Get([]byte(key))
		require.True(t, ok, "missing %s", key)
		require.Equal(t, fmt.Sprintf("val-%d", i), string(v))
	}

	n := 0
	var lastKey string
	for it := s.Begin(); !it.AtEnd(); it.Advance() {
		k, _ := it.Deref()
		if n > 0 {
			require.Greater(t, string(k), lastKey)
		}
		lastKey = string(k)
		n++
	}
	require.Equal(t, totalKeys, n)
}

func TestConcurrentPutsSameKeyConverges(t *testing.T) {
	s := New()
	const writers = 8

	var g errgroup.Group
	for w := 0; w < writers; w++ {
		w := w
		g.Go(func() error {
			s.Put([]byte("shared"), []byte(fmt.Sprintf("from-%d", w)))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	v, ok := s.Get([]byte("shared"))
	require.True(t, ok)
	require.Contains(t, string(v), "from-")
}

func TestCustomComparatorOrdering(t *testing.T) {
	desc := func(a, b []byte) int {
		for i := 0; i < len(a) && i < len(b); i++ {
			if a[i] != b[i] {
				return int(b[i]) - int(a[i])
			}
		}
		return len(b) - len(a)
	}

	s := New(WithComparator(desc))
	s.Put([]byte("1"), []byte("one"))
	s.Put([]byte("9"), []byte("nine"))
	s.Put([]byte("5"), []byte("five"))

	var got []string
	for it := s.Begin(); !it.AtEnd(); it.Advance() {
		k, _ := it.Deref()
		got = append(got, string(k))
	}
	require.Equal(t, []string{"9", "5", "1"}, got)
}
