package uidtable

import (
	"encoding/binary"
	"math"
)

// Serialized table layout (little-endian header):
//
//	Offset  Size  Field
//	0       4     EntryCount  uint32_le (advisory; parsing scans instead of trusting it)
//	4       ...   Entries, ascending by UID:
//	              6 bytes  UID (big-endian, not widened)
//	              N bytes  phrase
//	              1 byte   0x00 terminator
const (
	// countSize is the size of the entry count header.
	countSize = 4

	// minEntrySize is the smallest possible entry: a UID and a terminator.
	minEntrySize = uidSize + 1

	// maxEntries is the largest count the header can carry.
	maxEntries = math.MaxUint32

	terminator = 0x00
)

// encodeCount writes the entry count header into buf.
func encodeCount(buf []byte, n uint32) {
	binary.LittleEndian.PutUint32(buf[0:countSize], n)
}

// decodeCount reads the entry count header.
func decodeCount(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[0:countSize])
}

// appendEntry appends one serialized entry to buf.
func appendEntry(buf []byte, uid UID, phrase []byte) []byte {
	b := uid.Bytes()
	buf = append(buf, b[:]...)
	buf = append(buf, phrase...)
	return append(buf, terminator)
}

// serializedSize returns the exact encoded size of entries.
func serializedSize(entries []entry) int {
	size := countSize
	for _, e := range entries {
		size += minEntrySize + len(e.phrase)
	}
	return size
}

// capacityHint bounds the advisory count by what dataLen bytes could hold,
// so a corrupt header cannot force a huge allocation.
func capacityHint(count uint32, dataLen int) int {
	limit := (dataLen - countSize) / minEntrySize
	if limit < 0 {
		limit = 0
	}
	return min(int(count), limit)
}
