package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// File returns a source reading the word list at path. Files ending in .gz,
// .zst or .lz4 are decompressed while reading.
func File(path string) Source {
	return file(path)
}

// ListDir returns one File source per regular file in dir, sorted by name
// so that builds from a directory are reproducible.
func ListDir(dir string) ([]Source, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list word lists: %w", err)
	}
	var names []string
	for _, e := range ents {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	srcs := make([]Source, len(names))
	for i, name := range names {
		srcs[i] = File(filepath.Join(dir, name))
	}
	return srcs, nil
}

type file string

func (f file) Name() string { return string(f) }

func (f file) Open(context.Context) (io.ReadCloser, error) {
	fh, err := os.Open(string(f))
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	fadviseSequential(int(fh.Fd()), 0, 0)

	rc, err := decompress(string(f), fh)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open word list %s: %w", f, err), fh.Close())
	}
	return rc, nil
}

// decompress wraps r in a decoder chosen by the extension of name.
// Closing the result also closes r when r is an io.Closer.
func decompress(name string, r io.Reader) (io.ReadCloser, error) {
	closer, _ := r.(io.Closer)

	switch strings.ToLower(path.Ext(name)) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &stackedReader{Reader: zr, closers: []io.Closer{zr, closer}}, nil
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &stackedReader{Reader: zr, closers: []io.Closer{zr.IOReadCloser(), closer}}, nil
	case ".lz4":
		return &stackedReader{Reader: lz4.NewReader(r), closers: []io.Closer{closer}}, nil
	default:
		return &stackedReader{Reader: r, closers: []io.Closer{closer}}, nil
	}
}

// stackedReader closes a decoder and the stream beneath it, innermost last.
type stackedReader struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedReader) Close() error {
	var errs []error
	for _, c := range s.closers {
		if c != nil {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
