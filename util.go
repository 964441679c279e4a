// SPDX-License-Identifier: Unlicense OR MIT

package mmiotest

import (
	"github.com/hutorny-eu/mmiotest/internal/arena"
	"github.com/hutorny-eu/mmiotest/internal/sigsafe"
)

// HandleFaults runs fn with invalid memory references converted into
// an *mmerr.AccessToUnallocatedAddress error instead of crashing the
// process. It is the Go counterpart of util::handle_sigsegv, reworked
// around runtime/debug.SetPanicOnFault instead of a raw SIGSEGV
// handler: see internal/sigsafe for why.
func HandleFaults(fn func() error) error {
	return sigsafe.Guard(0, fn)
}

// ContainsAddress reports whether addr is currently backed by a live
// arena allocation, a convenience wrapper over the arena used by code
// under test that wants to probe before it pokes.
func ContainsAddress(addr Address, size uintptr) bool {
	return arena.Global().ContainsBytes(uintptr(addr), size)
}
