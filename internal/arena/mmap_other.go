// SPDX-License-Identifier: Unlicense OR MIT

//go:build !linux

package arena

import "fmt"

// mmapFixed is unimplemented outside Linux: fixed-address anonymous
// mapping is an inherently platform-specific primitive, and the
// original itself only ever targeted a POSIX mmap(2) with MAP_FIXED.
func mmapFixed(addr, size uintptr) ([]byte, error) {
	return nil, fmt.Errorf("arena: fixed-address mmap unsupported on this platform")
}

func munmapFixed(addr, size uintptr) error {
	return fmt.Errorf("arena: munmap unsupported on this platform")
}
