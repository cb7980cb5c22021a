package uidtable

import (
	"context"
	"fmt"

	"github.com/creachadair/atomicfile"
)

// WriteFile serializes the table to path atomically: the bytes go to a
// temporary file in the same directory, which replaces path only once fully
// written. On failure path is left untouched.
func (t *Table) WriteFile(path string) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	err := atomicfile.Tx(path, 0644, func(f *atomicfile.File) error {
		_, err := t.WriteTo(f)
		return err
	})
	if err != nil {
		return fmt.Errorf("write table file: %w", err)
	}
	return nil
}

// BuildFile builds a table from words and writes it to path.
// The returned table is the in-memory result, usable without re-reading path.
func BuildFile(ctx context.Context, words []byte, path string, opts ...BuildOption) (*Table, BuildStats, error) {
	t, stats, err := Build(ctx, words, opts...)
	if err != nil {
		return nil, stats, err
	}
	if err := t.WriteFile(path); err != nil {
		return nil, stats, err
	}
	return t, stats, nil
}
