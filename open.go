package uidtable

import (
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	uiderrors "github.com/tamirms/uidtable/errors"
)

// OpenOption is a functional option for opening tables.
type OpenOption func(*openConfig)

type openConfig struct {
	strict bool
}

// WithStrict makes Open, OpenFile and OpenBytes run Validate and fail on any
// inconsistency the lenient parser would tolerate.
func WithStrict() OpenOption {
	return func(c *openConfig) {
		c.strict = true
	}
}

// Open opens a serialized table file for lookups.
// It opens the file, memory-maps it, and closes the file descriptor.
func Open(path string, opts ...OpenOption) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table file: %w", err)
	}
	defer file.Close()
	return OpenFile(file, opts...)
}

// OpenFile opens a table by memory-mapping the given file.
// The caller is responsible for closing f. Per POSIX mmap(2), f may be
// closed immediately after OpenFile returns.
func OpenFile(f *os.File, opts ...OpenOption) (*Table, error) {
	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat table file: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("open table file: %s is a directory", f.Name())
	}
	if stat.Size() < countSize {
		return nil, fmt.Errorf("%w: %d bytes", uiderrors.ErrTableTooSmall, stat.Size())
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap table file: %w", err)
	}
	// Lookups are binary searches: readahead only wastes page cache.
	adviseRandom(mm)

	t, err := parseWith([]byte(mm), opts)
	if err != nil {
		return nil, errors.Join(err, mm.Unmap())
	}
	t.mmap = mm
	return t, nil
}

// OpenBytes creates a table from an in-memory serialized buffer.
// No file is opened or memory-mapped; Close only drops references.
// The caller must ensure data is not modified while the Table is in use.
func OpenBytes(data []byte, opts ...OpenOption) (*Table, error) {
	return parseWith(data, opts)
}

func parseWith(data []byte, opts []OpenOption) (*Table, error) {
	var cfg openConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.strict {
		return ParseStrict(data)
	}
	return Parse(data)
}
