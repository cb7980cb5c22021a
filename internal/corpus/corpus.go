// Package corpus assembles the newline-delimited phrase buffer a table is
// built from. Phrases come from literal lists, local files (optionally
// compressed) and remote word lists.
package corpus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// BaseWords are always part of the corpus.
var BaseWords = []string{"ExpressLRS", "expresslrs", "ELRS", "elrs"}

// A Source supplies newline-delimited phrases.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string

	// Open returns the source's phrases. The caller closes the reader.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Load reads every source in order into one buffer, making sure each source
// ends with a newline so the last phrase of one list never merges with the
// first phrase of the next.
func Load(ctx context.Context, log *zap.Logger, sources ...Source) ([]byte, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var buf bytes.Buffer
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log.Info("loading word list", zap.String("source", src.Name()))
		n, err := copySource(ctx, &buf, src)
		if err != nil {
			return nil, err
		}
		if n > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
			buf.WriteByte('\n')
		}
		log.Debug("loaded word list", zap.String("source", src.Name()), zap.Int64("bytes", n))
	}
	log.Info("loaded raw words", zap.Int("bytes", buf.Len()), zap.Int("sources", len(sources)))
	return buf.Bytes(), nil
}

func copySource(ctx context.Context, w io.Writer, src Source) (int64, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	n, err := io.Copy(w, rc)
	if err != nil {
		return n, fmt.Errorf("read %s: %w", src.Name(), err)
	}
	return n, nil
}

// Literal returns a source holding the given phrases.
func Literal(name string, phrases ...string) Source {
	return literal{name: name, phrases: phrases}
}

// Base returns the source of BaseWords.
func Base() Source {
	return Literal("base", BaseWords...)
}

type literal struct {
	name    string
	phrases []string
}

func (l literal) Name() string { return l.name }

func (l literal) Open(context.Context) (io.ReadCloser, error) {
	if len(l.phrases) == 0 {
		return io.NopCloser(strings.NewReader("")), nil
	}
	return io.NopCloser(strings.NewReader(strings.Join(l.phrases, "\n") + "\n")), nil
}
