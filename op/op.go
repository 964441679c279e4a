// SPDX-License-Identifier: Unlicense OR MIT

// Package op implements the two operator families mmiotest elements
// carry: generators, which write bytes, and comparators, which read
// and compare them. Both expose a One (single instance) and an All
// (repeated fill/check) constructor, mirroring the generator/
// comparator split in the original stubmmio::operators header.
package op

import (
	"bytes"
	"unsafe"

	"github.com/hutorny-eu/mmiotest/mmerr"
	"github.com/hutorny-eu/mmiotest/site"
)

// Generator writes to a live byte span.
type Generator func(dst []byte) error

// Comparator reads a live byte span and reports whether it matches.
type Comparator func(data []byte) (bool, error)

// None is a no-op generator, useful for reserving unseeded pages.
func None() Generator {
	return func([]byte) error { return nil }
}

func valueBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(unsafe.Sizeof(*v)))
}

// One returns a generator that writes a copy of v. Invoking it against
// a span whose length isn't exactly sizeof(v) fails with
// mmerr.OperatorSizeMismatch attributed to loc, the operator's own
// declaration site rather than the span it was eventually invoked
// against.
func One[T any](v T, loc site.Location) Generator {
	size := int(unsafe.Sizeof(v))
	return func(dst []byte) error {
		if len(dst) != size {
			return &mmerr.OperatorSizeMismatch{Op: "one", ValueLen: size, SpanLen: len(dst), Site: loc}
		}
		copy(dst, valueBytes(&v))
		return nil
	}
}

// All returns a generator that tiles dst with copies of v. Invoking it
// against a span whose length isn't a multiple of sizeof(v) fails with
// mmerr.OperatorSizeMismatch.
func All[T any](v T, loc site.Location) Generator {
	size := int(unsafe.Sizeof(v))
	return func(dst []byte) error {
		if size == 0 || len(dst)%size != 0 {
			return &mmerr.OperatorSizeMismatch{Op: "all", ValueLen: size, SpanLen: len(dst), Site: loc}
		}
		src := valueBytes(&v)
		for off := 0; off < len(dst); off += size {
			copy(dst[off:off+size], src)
		}
		return nil
	}
}

// CompareOne returns a comparator that checks a span of exactly
// sizeof(v) bytes for equality with v.
func CompareOne[T any](v T, loc site.Location) Comparator {
	size := int(unsafe.Sizeof(v))
	return func(data []byte) (bool, error) {
		if len(data) != size {
			return false, &mmerr.OperatorSizeMismatch{Op: "one", ValueLen: size, SpanLen: len(data), Site: loc}
		}
		return bytes.Equal(data, valueBytes(&v)), nil
	}
}

// CompareAll returns a comparator that checks every aligned
// sizeof(v)-byte slice of the span for equality with v.
func CompareAll[T any](v T, loc site.Location) Comparator {
	size := int(unsafe.Sizeof(v))
	return func(data []byte) (bool, error) {
		if size == 0 || len(data)%size != 0 {
			return false, &mmerr.OperatorSizeMismatch{Op: "all", ValueLen: size, SpanLen: len(data), Site: loc}
		}
		src := valueBytes(&v)
		for off := 0; off < len(data); off += size {
			if !bytes.Equal(data[off:off+size], src) {
				return false, nil
			}
		}
		return true, nil
	}
}
