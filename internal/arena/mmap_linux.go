// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux

package arena

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmapFixed maps size anonymous bytes at the exact address addr,
// the Go equivalent of the original's ::mmap(addr, size, PROT_READ |
// PROT_WRITE, MAP_FIXED | MAP_ANONYMOUS | MAP_PRIVATE, -1, 0)
// (_examples/original_source/src/arena.cxx). golang.org/x/sys/unix's
// Mmap wrapper always lets the kernel pick the address, so a fixed
// mapping needs the raw syscall the teacher's own kernel.Map
// (_examples/mewbak-unik/kernel/user.go) reaches for when it wants
// syscall-level control that the high-level wrapper doesn't expose.
func mmapFixed(addr, size uintptr) ([]byte, error) {
	const noFD = ^uintptr(0)
	prot := uintptr(unix.PROT_READ | unix.PROT_WRITE)
	flags := uintptr(unix.MAP_FIXED | unix.MAP_ANONYMOUS | unix.MAP_PRIVATE)
	r0, _, errno := unix.Syscall6(unix.SYS_MMAP, addr, size, prot, flags, noFD, 0)
	if errno != 0 {
		return nil, fmt.Errorf("mmap: %w", errno)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(r0)), int(size)), nil
}

// munmapFixed releases a mapping made by mmapFixed.
func munmapFixed(addr, size uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_MUNMAP, addr, size, 0)
	if errno != 0 {
		return fmt.Errorf("munmap: %w", errno)
	}
	return nil
}
