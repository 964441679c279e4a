// SPDX-License-Identifier: Unlicense OR MIT

package op

import (
	"testing"

	"github.com/hutorny-eu/mmiotest/site"
)

func TestOneRoundTrip(t *testing.T) {
	loc := site.Here(0)
	buf := make([]byte, 4)
	gen := One(uint32(0xcafef00d), loc)
	if err := gen(buf); err != nil {
		t.Fatalf("generator failed: %v", err)
	}
	cmp := CompareOne(uint32(0xcafef00d), loc)
	ok, err := cmp(buf)
	if err != nil {
		t.Fatalf("comparator failed: %v", err)
	}
	if !ok {
		t.Fatal("expected comparator to match the generated bytes")
	}
}

func TestOneSizeMismatch(t *testing.T) {
	loc := site.Here(0)
	gen := One(uint32(0), loc)
	if err := gen(make([]byte, 3)); err == nil {
		t.Fatal("expected a size mismatch error")
	}
}

func TestAllTiles(t *testing.T) {
	loc := site.Here(0)
	buf := make([]byte, 12)
	gen := All(uint32(0x11223344), loc)
	if err := gen(buf); err != nil {
		t.Fatalf("generator failed: %v", err)
	}
	cmp := CompareAll(uint32(0x11223344), loc)
	ok, err := cmp(buf)
	if err != nil {
		t.Fatalf("comparator failed: %v", err)
	}
	if !ok {
		t.Fatal("expected every tile to match")
	}
	buf[8] ^= 0xff
	ok, err = cmp(buf)
	if err != nil {
		t.Fatalf("comparator failed: %v", err)
	}
	if ok {
		t.Fatal("expected mismatch after corrupting one tile")
	}
}

func TestAllNotMultiple(t *testing.T) {
	loc := site.Here(0)
	gen := All(uint32(0), loc)
	if err := gen(make([]byte, 6)); err == nil {
		t.Fatal("expected a size mismatch error for a non-multiple length")
	}
}

func TestNoneLeavesBufferUntouched(t *testing.T) {
	buf := []byte{1, 2, 3}
	if err := None()(buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, b := range buf {
		if b != byte(i+1) {
			t.Fatalf("None() mutated the buffer: %v", buf)
		}
	}
}
