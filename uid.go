package uidtable

import (
	"fmt"
	"strconv"
	"strings"

	uiderrors "github.com/tamirms/uidtable/errors"
)

const (
	// uidSize is the number of significant bytes in a UID.
	uidSize = 6

	// MaxUID is the largest value representable in 6 bytes.
	MaxUID = UID(1)<<(uidSize*8) - 1
)

// UID is a 6-byte device identifier widened to 64 bits.
// The two most-significant bytes are always zero, so ordering UIDs as
// integers is the same as ordering their 6 big-endian bytes.
type UID uint64

// UIDFromBytes widens 6 big-endian bytes into a UID.
// b must hold at least 6 bytes; only the first 6 are used.
func UIDFromBytes(b []byte) UID {
	_ = b[5]
	return UID(b[0])<<40 | UID(b[1])<<32 | UID(b[2])<<24 |
		UID(b[3])<<16 | UID(b[4])<<8 | UID(b[5])
}

// Bytes returns the 6 big-endian bytes of u.
func (u UID) Bytes() [uidSize]byte {
	return [uidSize]byte{
		byte(u >> 40), byte(u >> 32), byte(u >> 24),
		byte(u >> 16), byte(u >> 8), byte(u),
	}
}

// String formats u the way ParseUID accepts it, e.g. "65,245,33,230,58,226".
func (u UID) String() string {
	b := u.Bytes()
	var sb strings.Builder
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(v)))
	}
	return sb.String()
}

// ParseUID parses six comma-separated decimal octets.
// Whitespace is not tolerated; callers trim their input first.
// Any malformed input reports an error wrapping ErrInvalidUID.
func ParseUID(s string) (UID, error) {
	var u UID
	n := 0
	for tok := range strings.SplitSeq(s, ",") {
		if n == uidSize {
			return 0, fmt.Errorf("%w: more than %d octets", uiderrors.ErrInvalidUID, uidSize)
		}
		v, err := strconv.ParseUint(tok, 10, 8)
		if err != nil {
			return 0, fmt.Errorf("%w: octet %d %q", uiderrors.ErrInvalidUID, n, tok)
		}
		u = u<<8 | UID(v)
		n++
	}
	if n != uidSize {
		return 0, fmt.Errorf("%w: got %d octets, want %d", uiderrors.ErrInvalidUID, n, uidSize)
	}
	return u, nil
}
