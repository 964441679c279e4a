// SPDX-License-Identifier: Unlicense OR MIT

package mmiotest

import (
	"unsafe"

	"github.com/hutorny-eu/mmiotest/internal/arena"
)

// Address is a bare register address, the Go counterpart of the
// original's `enum class address : std::uintptr_t`
// (_examples/original_source/include/stubmmio/types.h). It exists so
// call sites can write mmiotest.Address(0x1000) instead of a bare
// uintptr, the same documentation value the original gets from a
// distinct enum type.
type Address uintptr

// OnFail selects how a configuration check reports failure, re-
// exporting internal/arena's enum so callers never need to import
// that package directly.
type OnFail = arena.OnFail

const (
	Throws  = arena.Throws
	Logs    = arena.Logs
	Returns = arena.Returns
)

// SetPageFill sets the 64-bit pattern newly allocated pages are
// filled with, the Go counterpart of set_page_fill.
func SetPageFill(value uint64) {
	arena.Global().SetFill(value)
}

// SetPageNoFill stops filling newly allocated pages, the Go
// counterpart of set_page_nofill.
func SetPageNoFill() {
	arena.Global().ClearFill()
}

// SetArenaSize sets the arena's size cap, the Go counterpart of
// arena::size(requested_size, on_fail).
func SetArenaSize(requested uintptr, onFail OnFail) error {
	return arena.Global().SetSize(requested, onFail)
}

// ArenaSize returns the arena's current size cap.
func ArenaSize() uintptr {
	return arena.Global().Size()
}

// CheckPageSize reports whether actual matches the page size mmiotest
// was built assuming, the Go counterpart of arena::check_pagesize.
func CheckPageSize(actual int, onFail OnFail) (bool, error) {
	return arena.Global().CheckPageSize(actual, onFail)
}

// AddressPointer reinterprets addr as an unsafe.Pointer, for callers
// that declared elements by address and now need a typed pointer into
// the live, arena-backed memory.
func AddressPointer(addr Address) unsafe.Pointer {
	return unsafe.Pointer(uintptr(addr)) //nolint:govet // intentional fixed-address reinterpretation
}
