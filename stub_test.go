// SPDX-License-Identifier: Unlicense OR MIT

package mmiotest

import (
	"testing"

	"github.com/hutorny-eu/mmiotest/region"
)

const (
	testBase  uintptr = 0x4000_0000
	testBase2 uintptr = 0x4001_0000
)

func TestStubApplyAndVerify(t *testing.T) {
	stub, err := NewStub(
		StubAt(testBase, uint32(0x11223344)),
		StubAt(testBase+4, uint16(0xabcd)),
	)
	if err != nil {
		t.Fatalf("declaring stub: %v", err)
	}
	defer stub.Close()

	if err := stub.Apply(); err != nil {
		t.Fatalf("applying stub: %v", err)
	}

	verify, err := NewVerify(
		VerifyAt(testBase, uint32(0x11223344)),
		VerifyAt(testBase+4, uint16(0xabcd)),
	)
	if err != nil {
		t.Fatalf("declaring verify: %v", err)
	}
	ok, err := verify.Apply()
	if err != nil {
		t.Fatalf("applying verify: %v", err)
	}
	if !ok {
		t.Fatal("expected verify to observe the seeded data")
	}
}

func TestStubDuplicateAddress(t *testing.T) {
	_, err := NewStub(
		StubAt(testBase2, uint32(0)),
		StubAt(testBase2, uint32(1)),
	)
	if err == nil {
		t.Fatal("expected a duplicate address error")
	}
}

func TestStubOverlappingElements(t *testing.T) {
	_, err := NewStub(
		StubAt(testBase2+0x100, uint32(0)),
		StubAt(testBase2+0x102, uint16(0)),
	)
	if err == nil {
		t.Fatal("expected an overlapping elements error")
	}
}

func TestStubMergeKeepsBothSides(t *testing.T) {
	a, err := NewStub(StubAt(testBase2+0x200, uint32(0)))
	if err != nil {
		t.Fatalf("declaring a: %v", err)
	}
	defer a.Close()
	b, err := NewStub(StubAt(testBase2+0x300, uint32(0)))
	if err != nil {
		t.Fatalf("declaring b: %v", err)
	}
	defer b.Close()

	if err := a.Merge(b); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if a.ElementCount() != 2 {
		t.Fatalf("expected 2 elements after merge, got %d", a.ElementCount())
	}
	if b.ElementCount() != 1 {
		t.Fatalf("merge should not have drained the source, got %d elements", b.ElementCount())
	}
}

func TestSetPageFillSeedsFreshlyMappedBytes(t *testing.T) {
	SetPageFill(0xaabbccddeeff0011)
	defer SetPageNoFill()

	addr := testBase2 + 0x600
	stub, err := NewStub(StubReserve(addr, 16))
	if err != nil {
		t.Fatalf("declaring stub: %v", err)
	}
	defer stub.Close()
	if err := stub.Apply(); err != nil {
		t.Fatalf("applying stub: %v", err)
	}

	mem := region.New(addr, 16).Bytes()
	want := []byte{0x11, 0x00, 0xff, 0xee, 0xdd, 0xcc, 0xbb, 0xaa}
	if got := mem[:8]; string(got) != string(want) {
		t.Fatalf("expected the fill pattern to seed unwritten pages, got % x", got)
	}
}

func TestSetPageNoFillLeavesBytesZeroed(t *testing.T) {
	SetPageFill(0xdeadbeefdeadbeef)
	SetPageNoFill()

	addr := testBase2 + 0x700
	stub, err := NewStub(StubReserve(addr, 16))
	if err != nil {
		t.Fatalf("declaring stub: %v", err)
	}
	defer stub.Close()
	if err := stub.Apply(); err != nil {
		t.Fatalf("applying stub: %v", err)
	}

	mem := region.New(addr, 16).Bytes()
	for i, b := range mem {
		if b != 0 {
			t.Fatalf("expected no-fill pages to stay zeroed, byte %d = %#x", i, b)
		}
	}
}

func TestStubAbsorbDrainsSource(t *testing.T) {
	a, err := NewStub(StubAt(testBase2+0x400, uint32(0)))
	if err != nil {
		t.Fatalf("declaring a: %v", err)
	}
	defer a.Close()
	b, err := NewStub(StubAt(testBase2+0x500, uint32(0)))
	if err != nil {
		t.Fatalf("declaring b: %v", err)
	}

	if err := a.Absorb(b); err != nil {
		t.Fatalf("absorb failed: %v", err)
	}
	if a.ElementCount() != 2 {
		t.Fatalf("expected 2 elements after absorb, got %d", a.ElementCount())
	}
	if b.ElementCount() != 0 {
		t.Fatalf("expected absorb to drain the source, got %d elements", b.ElementCount())
	}
}
