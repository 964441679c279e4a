// SPDX-License-Identifier: Unlicense OR MIT

package sigsafe

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/hutorny-eu/mmiotest/mmerr"
)

func TestGuardRecoversInvalidAccess(t *testing.T) {
	const addr uintptr = 0x7f00_0000_0000 // unmapped, well outside any arena allocation

	err := Guard(addr, func() error {
		p := (*byte)(unsafe.Pointer(addr)) //nolint:govet // intentional fixed-address reinterpretation
		_ = *p
		return nil
	})
	if err == nil {
		t.Fatal("expected an error instead of a crash for an invalid memory reference")
	}
	var faultErr *mmerr.AccessToUnallocatedAddress
	if !errors.As(err, &faultErr) {
		t.Fatalf("expected *mmerr.AccessToUnallocatedAddress, got %T: %v", err, err)
	}
	if faultErr.Addr != addr {
		t.Fatalf("expected the fault address %#x recorded, got %#x", addr, faultErr.Addr)
	}
}

func TestGuardPropagatesFnError(t *testing.T) {
	sentinel := errors.New("boom")
	err := Guard(0, func() error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected Guard to pass through fn's own error, got %v", err)
	}
}

func TestGuardReturnsNilOnSuccess(t *testing.T) {
	if err := Guard(0, func() error { return nil }); err != nil {
		t.Fatalf("expected no error for a fault-free call, got %v", err)
	}
}
