// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux

package arena

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// executableLoadAddress returns the lowest virtual address the running
// binary's own image is mapped at, read from /proc/self/maps. The
// original reads the linker symbol &__executable_start for the same
// purpose (_examples/original_source/src/arena.cxx); Go programs have
// no equivalent accessible symbol, so this walks the same information
// the linker symbol would point into.
func executableLoadAddress() (uintptr, error) {
	self, err := os.Readlink("/proc/self/exe")
	if err != nil {
		return 0, err
	}
	f, err := os.Open("/proc/self/maps")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var lowest uintptr
	found := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 6 || fields[5] != self {
			continue
		}
		addrRange := fields[0]
		startHex, _, ok := strings.Cut(addrRange, "-")
		if !ok {
			continue
		}
		start, err := strconv.ParseUint(startHex, 16, 64)
		if err != nil {
			continue
		}
		if !found || uintptr(start) < lowest {
			lowest = uintptr(start)
			found = true
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	if !found {
		return 0, os.ErrNotExist
	}
	return lowest, nil
}
