// Package startup decides between loading a table from disk and building it
// from word lists. It runs to completion before any lookups are served.
package startup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/tamirms/uidtable"
	"github.com/tamirms/uidtable/internal/config"
	"github.com/tamirms/uidtable/internal/corpus"
	"go.uber.org/zap"
)

// Loader carries what the load-or-build phase needs.
type Loader struct {
	Config *config.Config
	Log    *zap.Logger

	// Client fetches remote word lists. If nil, a client with the configured
	// fetch timeout is used.
	Client *http.Client
}

func (l *Loader) log() *zap.Logger {
	if l.Log == nil {
		return zap.NewNop()
	}
	return l.Log
}

func (l *Loader) client() *http.Client {
	if l.Client != nil {
		return l.Client
	}
	return &http.Client{Timeout: l.Config.GetFetchTimeout()}
}

// LoadTable opens the configured table if it exists. Otherwise it fetches
// the configured word lists, builds the table, and writes it to the
// configured path for next time.
func (l *Loader) LoadTable(ctx context.Context) (*uidtable.Table, error) {
	path := l.Config.Table
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return l.open(path)
	case errors.Is(err, fs.ErrNotExist):
		l.log().Info("table not found, building from remote word lists", zap.String("table", path))
		words, err := l.FetchWords(ctx)
		if err != nil {
			return nil, err
		}
		return l.build(ctx, words)
	default:
		return nil, fmt.Errorf("stat table: %w", err)
	}
}

// FetchWords downloads the configured word lists after the base words.
func (l *Loader) FetchWords(ctx context.Context) ([]byte, error) {
	srcs := append([]corpus.Source{corpus.Base()}, corpus.URLs(l.client(), l.Config.Specs())...)
	return corpus.Load(ctx, l.log(), srcs...)
}

// GenerateFromDir builds the table from every word list in the configured
// lists directory, plus the base words, and writes it.
func (l *Loader) GenerateFromDir(ctx context.Context) (*uidtable.Table, error) {
	files, err := corpus.ListDir(l.Config.ListsDir)
	if err != nil {
		return nil, err
	}
	words, err := corpus.Load(ctx, l.log(), append([]corpus.Source{corpus.Base()}, files...)...)
	if err != nil {
		return nil, err
	}
	return l.build(ctx, words)
}

func (l *Loader) open(path string) (*uidtable.Table, error) {
	var opts []uidtable.OpenOption
	if l.Config.Strict {
		opts = append(opts, uidtable.WithStrict())
	}
	t, err := uidtable.Open(path, opts...)
	if err != nil {
		return nil, err
	}
	l.log().Info("loaded table",
		zap.String("table", path),
		zap.Int("entries", t.Len()),
		zap.String("digest", fmt.Sprintf("%016x", t.Digest())))
	return t, nil
}

func (l *Loader) build(ctx context.Context, words []byte) (*uidtable.Table, error) {
	t, stats, err := uidtable.BuildFile(ctx, words, l.Config.Table,
		uidtable.WithWorkers(l.Config.Workers),
		uidtable.WithCollisionPolicy(l.Config.Policy()),
		uidtable.WithLogger(l.log()))
	if err != nil {
		return nil, err
	}
	l.log().Info("wrote table",
		zap.String("table", l.Config.Table),
		zap.Int("entries", stats.Entries),
		zap.String("digest", fmt.Sprintf("%016x", t.Digest())))
	return t, nil
}
