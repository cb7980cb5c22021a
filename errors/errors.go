// Package errors defines all exported error sentinels for the uidtable library.
//
// This is the single source of truth for error values. The top-level uidtable
// package and the internal collaborator packages import from here, ensuring
// errors.Is checks work across package boundaries.
package errors

import "errors"

// Format errors
var (
	ErrTableTooSmall      = errors.New("uidtable: table is smaller than its entry count header")
	ErrTooManyEntries     = errors.New("uidtable: entry count exceeds maximum (2^32-1)")
	ErrEntryCountMismatch = errors.New("uidtable: entry count header does not match entries")
	ErrUnsortedTable      = errors.New("uidtable: entries are not in strictly ascending uid order")
	ErrTruncatedEntry     = errors.New("uidtable: table ends with a truncated entry")
)

// Build errors
var (
	ErrHashCollision = errors.New("uidtable: distinct phrases hash to the same uid")
	ErrInvalidPolicy = errors.New("uidtable: unknown collision policy")
)

// Lookup errors
var (
	ErrInvalidUID      = errors.New("uidtable: malformed uid")
	ErrInvalidEncoding = errors.New("uidtable: stored phrase is not valid UTF-8")
	ErrTableClosed     = errors.New("uidtable: table is closed")
)

// Corpus errors
var (
	ErrFetch         = errors.New("uidtable: word list fetch failed")
	ErrMalformedList = errors.New("uidtable: malformed word list")
)
