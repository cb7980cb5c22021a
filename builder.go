package uidtable

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	uiderrors "github.com/tamirms/uidtable/errors"
	"go.uber.org/zap"
)

// BuildStats describes a completed build.
type BuildStats struct {
	Lines      int // Lines read from the corpus
	Skipped    int // Lines containing a zero byte
	Collisions int // UIDs claimed by more than one distinct phrase
	Entries    int // Entries in the resulting table
	Chunks     int
	Workers    int
	Duration   time.Duration
}

// Build hashes every phrase of a newline-delimited corpus and returns the
// resulting table, ordered by UID and ready for lookups.
//
// Usage:
//
//	table, stats, err := uidtable.Build(ctx, words, uidtable.WithWorkers(8))
//	if err != nil { return err }
//	phrase, ok := table.Find(uid)
//
// Lines are the pieces between newlines, including the (possibly empty)
// piece after the last one, so the empty phrase is always stored. One
// trailing '\r' is stripped from each line. Lines containing a zero byte
// cannot be stored and are skipped.
//
// The returned table borrows phrase bytes from words, which must not be
// modified afterwards. The result does not depend on the number of workers:
// building the same corpus twice serializes to identical bytes.
func Build(ctx context.Context, words []byte, opts ...BuildOption) (*Table, BuildStats, error) {
	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.policy != PolicySmallest && cfg.policy != PolicyError {
		return nil, BuildStats{}, fmt.Errorf("%w: %v", uiderrors.ErrInvalidPolicy, cfg.policy)
	}

	start := time.Now()
	chunks := splitChunks(words, cfg.chunkSize)
	workers := min(cfg.workers, max(len(chunks), 1))
	cfg.workers = workers

	cfg.logger.Debug("hashing corpus",
		zap.Int("bytes", len(words)),
		zap.Int("chunks", len(chunks)),
		zap.Int("workers", workers))

	results, err := hashChunks(ctx, chunks, cfg)
	if err != nil {
		return nil, BuildStats{}, err
	}

	merged, stats, err := mergeChunks(results, cfg.policy)
	if err != nil {
		return nil, BuildStats{}, err
	}

	entries := make([]entry, 0, len(merged))
	for uid, phrase := range merged {
		entries = append(entries, entry{uid: uid, phrase: phrase})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Compare(a.uid, b.uid)
	})

	if uint64(len(entries)) > maxEntries {
		return nil, BuildStats{}, fmt.Errorf("%w: %d entries", uiderrors.ErrTooManyEntries, len(entries))
	}

	t := &Table{
		entries:     entries,
		headerCount: uint32(len(entries)),
	}

	stats.Entries = len(entries)
	stats.Chunks = len(chunks)
	stats.Workers = workers
	stats.Duration = time.Since(start)

	cfg.logger.Info("generated lookup table",
		zap.Int("entries", stats.Entries),
		zap.Int("lines", stats.Lines),
		zap.Int("skipped", stats.Skipped),
		zap.Int("collisions", stats.Collisions),
		zap.Duration("duration", stats.Duration))

	return t, stats, nil
}

// mergeChunks folds per-chunk maps together in chunk order.
// The first map is reused as the accumulator.
func mergeChunks(results []chunkResult, policy CollisionPolicy) (map[UID][]byte, BuildStats, error) {
	var stats BuildStats
	if len(results) == 0 {
		return map[UID][]byte{}, stats, nil
	}

	merged := results[0].phrases
	collided := make(map[UID]struct{})
	for i, res := range results {
		stats.Lines += res.lines
		stats.Skipped += res.skipped
		for uid := range res.collided {
			collided[uid] = struct{}{}
		}
		if i == 0 {
			continue
		}
		for uid, phrase := range res.phrases {
			old, ok := merged[uid]
			if !ok {
				merged[uid] = phrase
				continue
			}
			kept, c, err := policy.resolve(uid, old, phrase)
			if err != nil {
				return nil, stats, err
			}
			if c {
				collided[uid] = struct{}{}
			}
			merged[uid] = kept
		}
		results[i].phrases = nil
	}
	stats.Collisions = len(collided)
	return merged, stats, nil
}

// resolve picks the phrase to keep for uid when incoming meets an existing
// phrase. It reports whether the two were distinct.
func (p CollisionPolicy) resolve(uid UID, existing, incoming []byte) ([]byte, bool, error) {
	c := bytes.Compare(existing, incoming)
	if c == 0 {
		return existing, false, nil
	}
	if p == PolicyError {
		return nil, true, fmt.Errorf("%w: %q and %q both hash to %v",
			uiderrors.ErrHashCollision, existing, incoming, uid)
	}
	if c < 0 {
		return existing, true, nil
	}
	return incoming, true, nil
}
