//go:build !linux

package uidtable

// adviseRandom is a no-op on platforms without madvise support.
func adviseRandom(data []byte) {}
