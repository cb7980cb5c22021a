//go:build linux

package uidtable

import "golang.org/x/sys/unix"

// adviseRandom tells the kernel that a mapped table is accessed randomly,
// which disables readahead for binary-search page faults.
// Best-effort: errors are silently ignored.
func adviseRandom(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, unix.MADV_RANDOM)
}
