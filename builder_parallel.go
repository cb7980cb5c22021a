package uidtable

import (
	"bytes"
	"context"

	"golang.org/x/sync/errgroup"
)

const (
	// contextCheckInterval is how often a worker checks for cancellation, in lines.
	contextCheckInterval = 10000
)

// chunkResult holds the deduplicated hashes of one corpus chunk.
type chunkResult struct {
	phrases  map[UID][]byte
	collided map[UID]struct{}
	lines    int
	skipped  int
}

// splitChunks cuts words into pieces of roughly size bytes, each ending just
// after a newline (except possibly the last). Pieces alias words. An empty
// corpus is one empty chunk: it still holds the empty phrase.
func splitChunks(words []byte, size int) [][]byte {
	if len(words) == 0 {
		return [][]byte{words}
	}
	var chunks [][]byte
	for len(words) > 0 {
		if len(words) <= size {
			chunks = append(chunks, words)
			break
		}
		cut := size
		if nl := bytes.IndexByte(words[cut:], '\n'); nl >= 0 {
			cut += nl + 1
		} else {
			cut = len(words)
		}
		chunks = append(chunks, words[:cut])
		words = words[cut:]
	}
	return chunks
}

// hashChunks hashes every chunk on a bounded pool of workers.
// results[i] always corresponds to chunks[i], so merging in index order is
// independent of scheduling.
func hashChunks(ctx context.Context, chunks [][]byte, cfg *buildConfig) ([]chunkResult, error) {
	results := make([]chunkResult, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for i, chunk := range chunks {
		last := i == len(chunks)-1
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := hashChunk(gctx, chunk, last, cfg.policy)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// hashChunk hashes each line of chunk into a worker-local map.
// Lines are the pieces between newlines. In the last chunk the piece after
// the final newline is a line too, even when empty, so every corpus yields
// the empty phrase.
func hashChunk(ctx context.Context, chunk []byte, last bool, policy CollisionPolicy) (chunkResult, error) {
	res := chunkResult{phrases: make(map[UID][]byte, len(chunk)/8)}
	var h phraseHasher

	for more := true; more; {
		var line []byte
		if nl := bytes.IndexByte(chunk, '\n'); nl >= 0 {
			line, chunk = chunk[:nl], chunk[nl+1:]
		} else {
			if !last && len(chunk) == 0 {
				break
			}
			line, more = chunk, false
		}
		res.lines++
		if res.lines%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		phrase := bytes.TrimSuffix(line, []byte{'\r'})
		if !storable(phrase) {
			res.skipped++
			continue
		}
		// Cap capacity so the phrase cannot grow into the next line.
		phrase = phrase[:len(phrase):len(phrase)]

		uid := h.sum(phrase)
		old, ok := res.phrases[uid]
		if !ok {
			res.phrases[uid] = phrase
			continue
		}
		kept, collided, err := policy.resolve(uid, old, phrase)
		if err != nil {
			return res, err
		}
		if collided {
			if res.collided == nil {
				res.collided = make(map[UID]struct{})
			}
			res.collided[uid] = struct{}{}
		}
		res.phrases[uid] = kept
	}
	return res, nil
}

// storable reports whether phrase can be a table value: it must be free of
// the zero terminator. The empty phrase is storable.
func storable(phrase []byte) bool {
	return bytes.IndexByte(phrase, terminator) < 0
}
