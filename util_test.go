// SPDX-License-Identifier: Unlicense OR MIT

package mmiotest

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/hutorny-eu/mmiotest/mmerr"
)

func TestHandleFaultsRecoversInvalidAccess(t *testing.T) {
	const addr uintptr = 0x7e00_0000_0000 // unmapped, well outside any arena allocation

	err := HandleFaults(func() error {
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
}

func TestContainsAddress(t *testing.T) {
	addr := testBase2 + 0x800
	stub, err := NewStub(StubAt(addr, uint32(0)))
	if err != nil {
		t.Fatalf("declaring stub: %v", err)
	}
	defer stub.Close()
	if err := stub.Apply(); err != nil {
		t.Fatalf("applying stub: %v", err)
	}
	if !ContainsAddress(Address(addr), 4) {
		t.Fatal("expected the applied stub's address to be contained")
	}
	if ContainsAddress(Address(addr+0x10000), 4) {
		t.Fatal("did not expect an unallocated address to be contained")
	}
}
