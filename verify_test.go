// SPDX-License-Identifier: Unlicense OR MIT

package mmiotest

import (
	"testing"

	"github.com/hutorny-eu/mmiotest/site"
)

const testBase3 uintptr = 0x4002_0000

func TestVerifyReportsMismatch(t *testing.T) {
	stub, err := NewStub(StubAt(testBase3, uint32(0xaaaaaaaa)))
	if err != nil {
		t.Fatalf("declaring stub: %v", err)
	}
	defer stub.Close()
	if err := stub.Apply(); err != nil {
		t.Fatalf("applying stub: %v", err)
	}

	verify, err := NewVerify(VerifyAt(testBase3, uint32(0xbbbbbbbb)))
	if err != nil {
		t.Fatalf("declaring verify: %v", err)
	}
	ok, err := verify.Apply()
	if err != nil {
		t.Fatalf("applying verify: %v", err)
	}
	if ok {
		t.Fatal("expected verify to report a mismatch")
	}
}

func TestVerifyUnallocatedAddressFails(t *testing.T) {
	verify, err := NewVerify(VerifyAt(testBase3+0x10000, uint32(0)))
	if err != nil {
		t.Fatalf("declaring verify: %v", err)
	}
	if _, err := verify.Apply(); err == nil {
		t.Fatal("expected an error for verifying an unallocated address")
	}
}

func TestVerifyExpectStopsEarly(t *testing.T) {
	stub, err := NewStub(
		StubAt(testBase3+0x1000, uint32(1)),
		StubAt(testBase3+0x1004, uint32(2)),
	)
	if err != nil {
		t.Fatalf("declaring stub: %v", err)
	}
	defer stub.Close()
	if err := stub.Apply(); err != nil {
		t.Fatalf("applying stub: %v", err)
	}

	var seen int
	previous := SetExpect(func(success bool, _ site.Location) ExpectControl {
		seen++
		return ExpectStop
	})
	defer SetExpect(previous)

	verify, err := NewVerify(
		VerifyAt(testBase3+0x1000, uint32(99)),
		VerifyAt(testBase3+0x1004, uint32(99)),
	)
	if err != nil {
		t.Fatalf("declaring verify: %v", err)
	}
	if _, err := verify.Apply(); err != nil {
		t.Fatalf("applying verify: %v", err)
	}
	if seen != 1 {
		t.Fatalf("expected ExpectStop to halt after the first element, ran %d", seen)
	}
}
