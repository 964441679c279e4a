// SPDX-License-Identifier: Unlicense OR MIT

// Package region defines the two value types the rest of mmiotest
// composes on top of: a Region, a half-open byte interval identified
// by address and size, and a PageRange, the whole-page interval a
// Region's bytes fall within.
package region

import (
	"unsafe"

	"github.com/hutorny-eu/mmiotest/mmerr"
	"github.com/hutorny-eu/mmiotest/site"
)

// Region is a half-open interval of bytes [Address, Address+Size).
type Region struct {
	Address uintptr
	Size    uintptr
}

// New constructs a region of Size bytes starting at Address.
func New(address, size uintptr) Region {
	return Region{Address: address, Size: size}
}

// FromPointer constructs a region of Size bytes starting at the
// address held by ptr.
func FromPointer(ptr unsafe.Pointer, size uintptr) Region {
	return Region{Address: uintptr(ptr), Size: size}
}

// FromRange constructs a region spanning [begin, end). It fails with
// mmerr.RegionReversed if end precedes begin.
func FromRange(begin, end unsafe.Pointer, loc site.Location) (Region, error) {
	b, e := uintptr(begin), uintptr(end)
	if e < b {
		return Region{}, &mmerr.RegionReversed{Begin: b, End: e, Site: loc}
	}
	return Region{Address: b, Size: e - b}, nil
}

// End returns the address one past the region's last byte.
func (r Region) End() uintptr {
	return r.Address + r.Size
}

// Pointer reinterprets the region's base address as a pointer.
func (r Region) Pointer() unsafe.Pointer {
	return unsafe.Pointer(r.Address) //nolint:govet // intentional fixed-address reinterpretation
}

// Bytes views the region's live bytes as a slice. The caller is
// responsible for the memory actually being backed (the arena does
// this before any operator runs).
func (r Region) Bytes() []byte {
	if r.Size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(r.Pointer()), int(r.Size))
}

// Less orders regions by (Address, Size), the same total order the
// original implementation's operator<=> defines.
func (r Region) Less(o Region) bool {
	if r.Address != o.Address {
		return r.Address < o.Address
	}
	return r.Size < o.Size
}

// Overlapping reports whether a and b's byte intervals intersect.
// Endpoints are exclusive: [0,16) and [16,20) do not overlap.
func Overlapping(a, b Region) bool {
	return (a.Address <= b.Address && b.Address < a.End()) ||
		(b.Address <= a.Address && a.Address < b.End())
}
