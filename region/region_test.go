// SPDX-License-Identifier: Unlicense OR MIT

package region

import (
	"testing"
	"unsafe"

	"github.com/hutorny-eu/mmiotest/site"
)

func unsafePtr(addr uintptr) unsafe.Pointer {
	return unsafe.Pointer(addr) //nolint:govet // test-only fixed-address construction
}

func TestRegionEnd(t *testing.T) {
	r := New(0x1000, 0x10)
	if got, want := r.End(), uintptr(0x1010); got != want {
		t.Fatalf("End() = %#x, want %#x", got, want)
	}
}

func TestRegionLess(t *testing.T) {
	a := New(0x1000, 4)
	b := New(0x1000, 8)
	c := New(0x2000, 4)
	if !a.Less(b) {
		t.Error("expected a < b by size at equal address")
	}
	if !a.Less(c) {
		t.Error("expected a < c by address")
	}
	if c.Less(a) {
		t.Error("expected c to not be less than a")
	}
}

func TestOverlapping(t *testing.T) {
	cases := []struct {
		name     string
		a, b     Region
		expected bool
	}{
		{"disjoint", New(0, 4), New(4, 4), false},
		{"identical", New(0, 4), New(0, 4), true},
		{"partial", New(0, 8), New(4, 8), true},
		{"contained", New(0, 16), New(4, 4), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Overlapping(c.a, c.b); got != c.expected {
				t.Errorf("Overlapping(%v, %v) = %v, want %v", c.a, c.b, got, c.expected)
			}
			if got := Overlapping(c.b, c.a); got != c.expected {
				t.Errorf("Overlapping is not symmetric for %v, %v", c.a, c.b)
			}
		})
	}
}

func TestFromRangeReversed(t *testing.T) {
	begin := unsafePtr(0x2000)
	end := unsafePtr(0x1000)
	_, err := FromRange(begin, end, site.Here(0))
	if err == nil {
		t.Fatal("expected an error for a reversed region")
	}
}

func TestFromRangeOrdered(t *testing.T) {
	begin := unsafePtr(0x1000)
	end := unsafePtr(0x2000)
	r, err := FromRange(begin, end, site.Here(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Address != 0x1000 || r.Size != 0x1000 {
		t.Fatalf("unexpected region: %+v", r)
	}
}
