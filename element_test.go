// SPDX-License-Identifier: Unlicense OR MIT

package mmiotest

import (
	"testing"

	"github.com/hutorny-eu/mmiotest/region"
)

func TestStubElementFromCustomGenerator(t *testing.T) {
	addr := testBase2 + 0x900
	var wrote []byte
	gen := func(dst []byte) error {
		for i := range dst {
			dst[i] = byte(i)
		}
		wrote = append([]byte(nil), dst...)
		return nil
	}

	stub, err := NewStub(StubElementFrom(region.New(addr, 4), gen))
	if err != nil {
		t.Fatalf("declaring stub: %v", err)
	}
	defer stub.Close()
	if err := stub.Apply(); err != nil {
		t.Fatalf("applying stub: %v", err)
	}
	if len(wrote) != 4 || wrote[0] != 0 || wrote[3] != 3 {
		t.Fatalf("expected the custom generator to run over the declared region, got %v", wrote)
	}
}

func TestVerifyElementFromCustomComparator(t *testing.T) {
	addr := testBase2 + 0xa00
	stub, err := NewStub(StubAt(addr, uint32(0x01020304)))
	if err != nil {
		t.Fatalf("declaring stub: %v", err)
	}
	defer stub.Close()
	if err := stub.Apply(); err != nil {
		t.Fatalf("applying stub: %v", err)
	}

	var seen []byte
	cmp := func(data []byte) (bool, error) {
		seen = append([]byte(nil), data...)
		return data[0] == 0x04, nil
	}

	verify, err := NewVerify(VerifyElementFrom(region.New(addr, 4), cmp))
	if err != nil {
		t.Fatalf("declaring verify: %v", err)
	}
	ok, err := verify.Apply()
	if err != nil {
		t.Fatalf("applying verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected the custom comparator to report a match, saw %v", seen)
	}
}
