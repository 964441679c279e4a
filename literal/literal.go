// SPDX-License-Identifier: Unlicense OR MIT

// Package literal gives the typed-width constructors a home that the
// original expresses with compile-time literal suffixes (_U8, _U16,
// _U32). Go has no user-defined literal operators, and parsing numeric
// literals at compile time is explicitly out of scope for this
// library, so these check the range at call time instead.
package literal

import "fmt"

// U8 converts v to a uint8, failing if v overflows the width.
func U8(v uint64) (uint8, error) {
	if v > 0xFF {
		return 0, fmt.Errorf("literal: %d exceeds uint8 range", v)
	}
	return uint8(v), nil
}

// U16 converts v to a uint16, failing if v overflows the width.
func U16(v uint64) (uint16, error) {
	if v > 0xFFFF {
		return 0, fmt.Errorf("literal: %d exceeds uint16 range", v)
	}
	return uint16(v), nil
}

// U32 converts v to a uint32, failing if v overflows the width.
func U32(v uint64) (uint32, error) {
	if v > 0xFFFFFFFF {
		return 0, fmt.Errorf("literal: %d exceeds uint32 range", v)
	}
	return uint32(v), nil
}

// U is the identity conversion to uint64, the Go counterpart of the
// original's plain _U suffix (an unsigned literal with no width
// narrowing). It never overflows; the error return exists only so
// call sites can treat U the same as U8/U16/U32.
func U(v uint64) (uint64, error) {
	return v, nil
}

// MustU8 is U8 but panics on overflow, for use in package-level var
// initializers where an error return isn't available.
func MustU8(v uint64) uint8 {
	r, err := U8(v)
	if err != nil {
		panic(err)
	}
	return r
}

// MustU16 is U16 but panics on overflow.
func MustU16(v uint64) uint16 {
	r, err := U16(v)
	if err != nil {
		panic(err)
	}
	return r
}

// MustU32 is U32 but panics on overflow.
func MustU32(v uint64) uint32 {
	r, err := U32(v)
	if err != nil {
		panic(err)
	}
	return r
}

// MustU is U but panics on overflow, kept for symmetry with
// MustU8/MustU16/MustU32 even though U itself never fails.
func MustU(v uint64) uint64 {
	r, err := U(v)
	if err != nil {
		panic(err)
	}
	return r
}
