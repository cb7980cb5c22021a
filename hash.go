package uidtable

import (
	"crypto/md5"
	"hash"
)

// HashPrefix and HashSuffix frame a phrase before hashing. They reproduce the
// build flag the ExpressLRS firmware hashes, so they must not change:
// tables built elsewhere depend on them.
const (
	HashPrefix = "-DMY_BINDING_PHRASE=\""
	HashSuffix = "\""
)

// Hash6 returns the UID derived from a binding phrase:
// the first 6 bytes of MD5(HashPrefix ++ phrase ++ HashSuffix).
//
// Querying a table for a phrase you already know:
//
//	phrase, ok := table.Find(uidtable.Hash6([]byte("ExpressLRS")))
func Hash6(phrase []byte) UID {
	var h phraseHasher
	return h.sum(phrase)
}

// HashPhrase is Hash6 for a string phrase.
func HashPhrase(phrase string) UID {
	return Hash6([]byte(phrase))
}

// phraseHasher keeps one MD5 state for hashing many phrases in a loop.
// Each builder worker owns one; it is not safe for concurrent use.
type phraseHasher struct {
	md5 hash.Hash
	buf [md5.Size]byte
}

// sum hashes one phrase, reusing the MD5 state and output buffer.
func (h *phraseHasher) sum(phrase []byte) UID {
	if h.md5 == nil {
		h.md5 = md5.New()
	} else {
		h.md5.Reset()
	}
	h.md5.Write([]byte(HashPrefix))
	h.md5.Write(phrase)
	h.md5.Write([]byte(HashSuffix))
	return UIDFromBytes(h.md5.Sum(h.buf[:0]))
}
