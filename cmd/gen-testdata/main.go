// Copyright 2026 The tendb Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command gen-testdata writes a sealed PBT file full of synthetic
// key/value pairs, for benchmarking and for feeding cmd/pbtdump.
package main

import (
	"crypto/hmac"
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sort"

	"github.com/tendb-go/tendb"
)

const (
	valuePrefix = "pref_"
	suffixLen   = 16
	hmacKey     = "d259c7f656caf7f1"
)

func newRand() *rand.Rand {
	var seedBytes [8]byte
	if _, err := crand.Read(seedBytes[:]); err != nil {
		panic(err)
	}
	seed := int64(binary.LittleEndian.Uint64(seedBytes[:]))
	return rand.New(rand.NewSource(seed))
}

type pair struct {
	key, value string
}

func genPairs(n int) []pair {
	rng := newRand()
	h := hmac.New(sha256.New, []byte(hmacKey))

	pairs := make([]pair, n)
	for i := 0; i < n; i++ {
		var buf [suffixLen / 2]byte
		if _, err := rng.Read(buf[:]); err != nil {
			panic(err)
		}
		value := fmt.Sprintf("%s%x", valuePrefix, buf)
		h.Reset()
		h.Write([]byte(value))
		key := hex.EncodeToString(h.Sum(nil))
		pairs[i] = pair{key: key, value: value}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	// drop any duplicate keys a hash collision produced; the writer
	// requires strictly increasing keys.
	out := pairs[:0]
	for i, p := range pairs {
		if i > 0 && p.key == out[len(out)-1].key {
			continue
		}
		out = append(out, p)
	}
	return out
}

func main() {
	var (
		out          = flag.String("out", "testdata.pbt", "output PBT file path")
		n            = flag.Int("n", 1_000_000, "number of key/value pairs to generate")
		branchFactor = flag.Uint("branch-factor", 8, "writer branch factor")
	)
	flag.Parse()

	pairs := genPairs(*n)

	env := tendb.Open(*out, tendb.WithBranchFactor(uint32(*branchFactor)))
	w, err := env.Writer()
	if err != nil {
		log.Fatalf("open writer: %v", err)
	}
	for _, p := range pairs {
		if err := w.Add([]byte(p.key), []byte(p.value)); err != nil {
			log.Fatalf("add %q: %v", p.key, err)
		}
	}
	if err := w.Finish(); err != nil {
		log.Fatalf("finish: %v", err)
	}

	log.Printf("wrote %d pairs to %s", len(pairs), *out)
}
