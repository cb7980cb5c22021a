package uidtable

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// A real 6-byte collision: both phrases hash to 40,229,172,195,81,102.
const (
	collisionA   = "p6145430"
	collisionB   = "p14981745" // bytewise smaller than collisionA
	collisionUID = UID(0x28e5acc35166)
)

// newTestRNG returns a deterministic RNG seeded from the test name.
func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// randomPhrases returns n distinct pseudo-random phrases.
func randomPhrases(rng *rand.Rand, n int) []string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_ "
	seen := make(map[string]bool, n)
	phrases := make([]string, 0, n)
	for len(phrases) < n {
		var sb strings.Builder
		size := 1 + rng.IntN(20)
		for range size {
			sb.WriteByte(letters[rng.IntN(len(letters))])
		}
		p := sb.String()
		if !seen[p] {
			seen[p] = true
			phrases = append(phrases, p)
		}
	}
	return phrases
}

// corpusOf joins phrases into a newline-terminated corpus.
func corpusOf(phrases ...string) []byte {
	if len(phrases) == 0 {
		return nil
	}
	return []byte(strings.Join(phrases, "\n") + "\n")
}

// filler returns n distinct lines that do not collide with the test phrases.
func filler(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("filler-%06d", i)
	}
	return lines
}

// mustBuild builds a table or fails the test.
func mustBuild(t testing.TB, words []byte, opts ...BuildOption) (*Table, BuildStats) {
	t.Helper()
	table, stats, err := Build(t.Context(), words, opts...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return table, stats
}

// mustMarshal serializes a table or fails the test.
func mustMarshal(t testing.TB, table *Table) []byte {
	t.Helper()
	data, err := table.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	return data
}

// rawTable hand-encodes entries in the given order with the given count header.
func rawTable(count uint32, entries ...entry) []byte {
	buf := make([]byte, countSize)
	encodeCount(buf, count)
	for _, e := range entries {
		buf = appendEntry(buf, e.uid, e.phrase)
	}
	return buf
}
