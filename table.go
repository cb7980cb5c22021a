package uidtable

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"iter"
	"sort"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
	uiderrors "github.com/tamirms/uidtable/errors"
)

// entry is one (UID, phrase) pair. phrase borrows from the table's backing
// buffer and is never copied.
type entry struct {
	uid    UID
	phrase []byte
}

// Table is an immutable, UID-ordered lookup table.
//
// Thread Safety:
// - Find, FindString, All and the other read methods are safe for concurrent use
// - Close is NOT safe to call concurrently with lookups
// - After Close returns, the table behaves as empty
//
// Phrase slices returned by a Table alias its backing buffer: for an opened
// table that is a read-only memory map, so they must not be modified or used
// after Close.
type Table struct {
	entries []entry

	// Backing storage. For parsed tables data is the serialized buffer; for
	// built tables the phrases point into the caller's corpus instead.
	mmap mmap.MMap
	data []byte

	// Parse results kept for Validate.
	headerCount uint32
	truncated   bool

	digestOnce sync.Once
	digest     uint64

	closed atomic.Bool
	final  Stats // Stats as of Close
}

// Stats holds table statistics.
type Stats struct {
	Entries        int
	SerializedSize int64
	Digest         uint64
	Mapped         bool
}

// Parse reads a serialized table without copying phrase bytes.
// data must outlive the returned Table and must not be modified.
//
// The entry count header is only a capacity hint: entries are found by
// scanning for terminators until fewer than one minimal entry's worth of
// bytes remains. Use ParseStrict or Validate to reject tables whose count,
// order or tail is inconsistent.
func Parse(data []byte) (*Table, error) {
	if len(data) < countSize {
		return nil, fmt.Errorf("%w: %d bytes", uiderrors.ErrTableTooSmall, len(data))
	}
	count := decodeCount(data)

	t := &Table{
		entries:     make([]entry, 0, capacityHint(count, len(data))),
		data:        data,
		headerCount: count,
	}

	i := countSize
	for len(data)-i >= minEntrySize {
		uid := UIDFromBytes(data[i:])
		i += uidSize

		end := bytes.IndexByte(data[i:], terminator)
		if end < 0 {
			// No terminator: the rest of the buffer is the phrase.
			t.entries = append(t.entries, entry{uid: uid, phrase: data[i:len(data):len(data)]})
			t.truncated = true
			i = len(data)
			break
		}
		// Cap the slice so appends by callers cannot overwrite the terminator.
		t.entries = append(t.entries, entry{uid: uid, phrase: data[i : i+end : i+end]})
		i += end + 1
	}
	if i < len(data) {
		t.truncated = true
	}
	return t, nil
}

// ParseStrict is Parse followed by Validate.
func ParseStrict(data []byte) (*Table, error) {
	t, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks what Parse tolerates: the header count must equal the
// number of entries, UIDs must be strictly ascending, and the buffer must end
// exactly after a terminator.
func (t *Table) Validate() error {
	if t.truncated {
		return uiderrors.ErrTruncatedEntry
	}
	if uint64(len(t.entries)) != uint64(t.headerCount) {
		return fmt.Errorf("%w: header says %d, found %d",
			uiderrors.ErrEntryCountMismatch, t.headerCount, len(t.entries))
	}
	for i := 1; i < len(t.entries); i++ {
		if t.entries[i-1].uid >= t.entries[i].uid {
			return fmt.Errorf("%w: entry %d (%v) after %v",
				uiderrors.ErrUnsortedTable, i, t.entries[i].uid, t.entries[i-1].uid)
		}
	}
	return nil
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// IsEmpty reports whether the table has no entries.
func (t *Table) IsEmpty() bool {
	return len(t.entries) == 0
}

// Find returns the phrase stored for uid using a binary search.
// It reports false when no entry matches or the table is closed.
func (t *Table) Find(uid UID) ([]byte, bool) {
	if uid > MaxUID || t.closed.Load() {
		return nil, false
	}
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].uid >= uid
	})
	if i < len(t.entries) && t.entries[i].uid == uid {
		return t.entries[i].phrase, true
	}
	return nil, false
}

// FindString is Find for callers that need text. A stored phrase that is not
// valid UTF-8 reports ErrInvalidEncoding, which is distinct from absence.
func (t *Table) FindString(uid UID) (string, bool, error) {
	phrase, ok := t.Find(uid)
	if !ok {
		return "", false, nil
	}
	if !utf8.Valid(phrase) {
		return "", true, fmt.Errorf("%w: uid %v", uiderrors.ErrInvalidEncoding, uid)
	}
	return string(phrase), true, nil
}

// All yields every entry in ascending UID order.
func (t *Table) All() iter.Seq2[UID, []byte] {
	return func(yield func(UID, []byte) bool) {
		for _, e := range t.entries {
			if !yield(e.uid, e.phrase) {
				return
			}
		}
	}
}

// WriteTo serializes the table to w.
// It fails before writing anything if the table is closed or the entry count
// does not fit the header.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	if err := t.checkWritable(); err != nil {
		return 0, err
	}
	cw := &countingWriter{w: w}
	bw := bufio.NewWriterSize(cw, 1<<16)
	if err := t.encode(bw); err != nil {
		return cw.n, err
	}
	err := bw.Flush()
	return cw.n, err
}

// MarshalBinary returns the serialized table.
func (t *Table) MarshalBinary() ([]byte, error) {
	if err := t.checkWritable(); err != nil {
		return nil, err
	}
	buf := make([]byte, countSize, serializedSize(t.entries))
	encodeCount(buf, uint32(len(t.entries)))
	for _, e := range t.entries {
		buf = appendEntry(buf, e.uid, e.phrase)
	}
	return buf, nil
}

// checkWritable rejects closed tables and counts the header cannot carry.
func (t *Table) checkWritable() error {
	if t.closed.Load() {
		return uiderrors.ErrTableClosed
	}
	if uint64(len(t.entries)) > maxEntries {
		return fmt.Errorf("%w: %d entries", uiderrors.ErrTooManyEntries, len(t.entries))
	}
	return nil
}

// encode writes the header and entries without checking the count.
func (t *Table) encode(bw *bufio.Writer) error {
	var hdr [countSize]byte
	encodeCount(hdr[:], uint32(len(t.entries)))
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}
	var scratch [uidSize]byte
	for _, e := range t.entries {
		scratch = e.uid.Bytes()
		if _, err := bw.Write(scratch[:]); err != nil {
			return err
		}
		if _, err := bw.Write(e.phrase); err != nil {
			return err
		}
		if err := bw.WriteByte(terminator); err != nil {
			return err
		}
	}
	return nil
}

// Digest returns the xxHash64 of the table's serialized form.
// Two tables with equal digests serialize to the same bytes (barring hash
// collisions), whether they were built or parsed. After Close it still
// describes the table as it was.
func (t *Table) Digest() uint64 {
	t.digestOnce.Do(func() {
		d := xxhash.New()
		bw := bufio.NewWriterSize(d, 1<<16)
		_ = t.encode(bw) // xxhash.Digest writes never fail
		_ = bw.Flush()
		t.digest = d.Sum64()
	})
	return t.digest
}

// Stats returns table statistics. After Close it returns the statistics
// of the table as it was before Close.
func (t *Table) Stats() Stats {
	if t.closed.Load() {
		return t.final
	}
	return Stats{
		Entries:        len(t.entries),
		SerializedSize: int64(serializedSize(t.entries)),
		Digest:         t.Digest(),
		Mapped:         t.mmap != nil,
	}
}

// Close releases the table's memory map, if any. Close is idempotent.
// It must only be called after all lookups have completed.
func (t *Table) Close() error {
	if t.closed.Load() {
		return nil
	}
	t.final = t.Stats()
	t.closed.Store(true)
	if t.mmap != nil {
		if err := t.mmap.Unmap(); err != nil {
			return fmt.Errorf("unmap table: %w", err)
		}
		t.mmap = nil
	}
	t.data = nil
	t.entries = nil
	return nil
}

// countingWriter counts bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
