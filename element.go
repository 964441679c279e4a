// SPDX-License-Identifier: Unlicense OR MIT

// Package mmiotest fakes memory-mapped hardware registers for tests:
// a Stub seeds and owns a range of addresses, a Verify checks what
// code under test left there, and the stimulus subpackage can drive a
// handshake in the background while both run. It is the Go rendering
// of the original stubmmio library
// (_examples/original_source/include/stubmmio/stubmmio.h).
package mmiotest

import (
	"unsafe"

	"github.com/hutorny-eu/mmiotest/op"
	"github.com/hutorny-eu/mmiotest/region"
	"github.com/hutorny-eu/mmiotest/site"
)

// StubElement is one address, size and seeding operator, the unit a
// Stub is built from.
type StubElement struct {
	region region.Region
	gen    op.Generator
	loc    site.Location
}

// Addr returns the element's base address.
func (e StubElement) Addr() uintptr { return e.region.Address }

// End returns the address one past the element's last byte.
func (e StubElement) End() uintptr { return e.region.End() }

// Size returns the element's size in bytes.
func (e StubElement) Size() uintptr { return e.region.Size }

// Location returns where the element was declared.
func (e StubElement) Location() site.Location { return e.loc }

func (e StubElement) apply() error {
	return e.gen(e.region.Bytes())
}

// StubAt declares a stub element at addr, seeded with a single copy
// of value.
func StubAt[T any](addr uintptr, value T) StubElement {
	loc := site.Here(1)
	return StubElement{region: region.New(addr, unsafe.Sizeof(value)), gen: op.One(value, loc), loc: loc}
}

// StubAtPointer declares a stub element at ptr's address, seeded with
// a single copy of value.
func StubAtPointer[T any](ptr *T, value T) StubElement {
	loc := site.Here(1)
	return StubElement{region: region.FromPointer(unsafe.Pointer(ptr), unsafe.Sizeof(value)), gen: op.One(value, loc), loc: loc}
}

// StubOverSlice declares a stub element spanning s, tiled with
// repeated copies of value.
func StubOverSlice[T any](s []T, value T) StubElement {
	loc := site.Here(1)
	r := sliceRegion(s)
	return StubElement{region: r, gen: op.All(value, loc), loc: loc}
}

// StubReserve declares a stub element over [addr, addr+size) without
// seeding it, reserving the pages without writing to them.
func StubReserve(addr uintptr, size uintptr) StubElement {
	loc := site.Here(1)
	return StubElement{region: region.New(addr, size), gen: op.None(), loc: loc}
}

// StubElementFrom declares a stub element pairing r with an arbitrary
// generator, for callers whose seed data isn't a tiled single value,
// e.g. a generator that computes its bytes rather than copying a
// captured one.
func StubElementFrom(r region.Region, gen op.Generator) StubElement {
	return StubElement{region: r, gen: gen, loc: site.Here(1)}
}

// VerifyElement is one address, size and comparator, the unit a
// Verify is built from.
type VerifyElement struct {
	region region.Region
	cmp    op.Comparator
	loc    site.Location
}

// Addr returns the element's base address.
func (e VerifyElement) Addr() uintptr { return e.region.Address }

// End returns the address one past the element's last byte.
func (e VerifyElement) End() uintptr { return e.region.End() }

// Size returns the element's size in bytes.
func (e VerifyElement) Size() uintptr { return e.region.Size }

// Location returns where the element was declared.
func (e VerifyElement) Location() site.Location { return e.loc }

func (e VerifyElement) apply() (bool, error) {
	return e.cmp(e.region.Bytes())
}

// VerifyAt declares a verify element at addr, expecting a single
// copy of value.
func VerifyAt[T any](addr uintptr, value T) VerifyElement {
	loc := site.Here(1)
	return VerifyElement{region: region.New(addr, unsafe.Sizeof(value)), cmp: op.CompareOne(value, loc), loc: loc}
}

// VerifyAtPointer declares a verify element at ptr's address,
// expecting a single copy of value.
func VerifyAtPointer[T any](ptr *T, value T) VerifyElement {
	loc := site.Here(1)
	return VerifyElement{region: region.FromPointer(unsafe.Pointer(ptr), unsafe.Sizeof(value)), cmp: op.CompareOne(value, loc), loc: loc}
}

// VerifyOverSlice declares a verify element spanning s, expecting
// every aligned element of the slice to equal value.
func VerifyOverSlice[T any](s []T, value T) VerifyElement {
	loc := site.Here(1)
	r := sliceRegion(s)
	return VerifyElement{region: r, cmp: op.CompareAll(value, loc), loc: loc}
}

// VerifyElementFrom declares a verify element pairing r with an
// arbitrary comparator, for callers whose expected data isn't a tiled
// single value.
func VerifyElementFrom(r region.Region, cmp op.Comparator) VerifyElement {
	return VerifyElement{region: r, cmp: cmp, loc: site.Here(1)}
}

func sliceRegion[T any](s []T) region.Region {
	var zero T
	size := unsafe.Sizeof(zero) * uintptr(len(s))
	if len(s) == 0 {
		return region.New(0, 0)
	}
	return region.FromPointer(unsafe.Pointer(&s[0]), size)
}
