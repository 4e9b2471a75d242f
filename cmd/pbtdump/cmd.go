// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tendb-go/tendb"
	"github.com/tendb-go/tendb/internal/bitset"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pbtdump",
		Short:         "Inspect and manipulate PBT files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newInfoCmd(), newGetCmd(), newIterCmd(), newMergeCmd(), newVerifyCmd())
	return root
}

func openReader(path string) (*tendb.Reader, error) {
	env := tendb.Open(path)
	r, err := env.Reader()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return r, nil
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print a PBT file's header fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openReader(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			s := r.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "num_items:          %d\n", s.NumItems)
			fmt.Fprintf(out, "depth:              %d\n", s.Depth)
			fmt.Fprintf(out, "num_leaf_nodes:     %d\n", s.NumLeafNodes)
			fmt.Fprintf(out, "num_internal_nodes: %d\n", s.NumInternalNodes)
			fmt.Fprintf(out, "root_offset:        %d\n", s.RootOffset)
			fmt.Fprintf(out, "first_node_offset:  %d\n", s.FirstNodeOffset)
			return nil
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <file> <key>",
		Short: "Look up a single key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openReader(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			v, ok := r.Get([]byte(args[1]))
			if !ok {
				return fmt.Errorf("key %q not found", args[1])
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(v))
			return nil
		},
	}
}

func newIterCmd() *cobra.Command {
	var from string
	c := &cobra.Command{
		Use:   "iter <file>",
		Short: "Print every key/value pair in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openReader(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			it := r.Begin()
			if from != "" {
				it = r.Seek([]byte(from))
			}
			out := cmd.OutOrStdout()
			for ; !it.AtEnd(); it.Advance() {
				k, v := it.Deref()
				fmt.Fprintf(out, "%s\t%s\n", k, v)
			}
			return nil
		},
	}
	c.Flags().StringVar(&from, "from", "", "start iteration at key from (exact match required; prints nothing if from is absent)")
	return c
}

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <out> <in...>",
		Short: "N-way merge sealed files into a new one",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, ins := args[0], args[1:]

			// Opening mmaps each input file and faults in its header, so
			// warm up all of them concurrently before the merge itself,
			// which runs single-threaded over the resulting readers.
			readers := make([]*tendb.Reader, len(ins))
			var g errgroup.Group
			for i, in := range ins {
				i, in := i, in
				g.Go(func() error {
					r, err := openReader(in)
					if err != nil {
						return err
					}
					readers[i] = r
					return nil
				})
			}
			defer func() {
				for _, r := range readers {
					if r != nil {
						_ = r.Close()
					}
				}
			}()
			if err := g.Wait(); err != nil {
				return err
			}

			env := tendb.Open(out)
			w, err := env.Writer()
			if err != nil {
				return fmt.Errorf("open writer for %s: %w", out, err)
			}
			if err := w.Merge(readers); err != nil {
				return fmt.Errorf("merge: %w", err)
			}
			return nil
		},
	}
}

// newVerifyCmd cross-checks positional descent against forward iteration:
// every position 0..NumItems-1 must resolve exactly once via At, and
// iterating from Begin must produce the same count in strictly
// increasing key order.
func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Cross-check positional access against iteration order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openReader(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			n := r.NumItems()
			seen := bitset.New(int64(n))
			for i := uint32(0); i < n; i++ {
				if seen.IsSet(int64(i)) {
					return fmt.Errorf("position %d visited twice", i)
				}
				seen.Set(int64(i))
				if _, _, ok := r.At(i); !ok {
					return fmt.Errorf("position %d: not found", i)
				}
			}

			var lastKey []byte
			count := 0
			for it := r.Begin(); !it.AtEnd(); it.Advance() {
				k, _ := it.Deref()
				if count > 0 && bytes.Compare(k, lastKey) <= 0 {
					return fmt.Errorf("iteration order violated at position %d", count)
				}
				lastKey = append(lastKey[:0], k...)
				count++
			}
			if uint32(count) != n {
				return fmt.Errorf("iteration visited %d items, header claims %d", count, n)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d items, positional and iteration order consistent\n", n)
			return nil
		},
	}
}
