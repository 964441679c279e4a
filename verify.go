// SPDX-License-Identifier: Unlicense OR MIT

package mmiotest

import (
	"golang.org/x/exp/slices"

	"github.com/hutorny-eu/mmiotest/internal/arena"
	"github.com/hutorny-eu/mmiotest/internal/mlog"
	"github.com/hutorny-eu/mmiotest/mmerr"
	"github.com/hutorny-eu/mmiotest/site"
)

// ExpectControl is returned from an ExpectFunc to tell Verify.Apply
// whether to keep checking remaining elements.
type ExpectControl int

const (
	ExpectStop ExpectControl = iota
	ExpectRun
)

// ExpectFunc is invoked once per verified element. The default logs a
// failure and always continues; tests that want to stop at the first
// mismatch can install their own via SetExpect.
type ExpectFunc func(success bool, loc site.Location) ExpectControl

var expect ExpectFunc = defaultExpect

func defaultExpect(success bool, loc site.Location) ExpectControl {
	if !success {
		mlog.Logger(mlog.Verify).Error("verify condition failed", "element", loc.String())
	}
	return ExpectRun
}

// SetExpect installs fn as the hook Verify.Apply calls after each
// element, returning the previous hook so callers can restore it
// (typically with defer). It is the Go counterpart of the original's
// mutable static member verify::expect.
func SetExpect(fn ExpectFunc) (previous ExpectFunc) {
	previous, expect = expect, fn
	return previous
}

// Verify checks data left behind in a set of addresses, the Go
// counterpart of the original's stubmmio::verify.
type Verify struct {
	elements map[uintptr]VerifyElement
	loc      site.Location
}

// NewVerify declares a verify collection from elements. Two elements
// sharing an address fail construction; unlike Stub, overlapping
// ranges are allowed since verification never allocates.
func NewVerify(elements ...VerifyElement) (*Verify, error) {
	loc := site.Here(1)
	v := &Verify{elements: make(map[uintptr]VerifyElement, len(elements)), loc: loc}
	if err := appendVerifyElements(v.elements, elements, loc); err != nil {
		return nil, err
	}
	return v, nil
}

// Location returns where the verify collection was declared.
func (v *Verify) Location() site.Location { return v.loc }

// ElementCount returns the number of elements the collection declares.
func (v *Verify) ElementCount() int { return len(v.elements) }

func appendVerifyElements(dst map[uintptr]VerifyElement, elements []VerifyElement, collectionLoc site.Location) error {
	for _, el := range elements {
		if existing, ok := dst[el.Addr()]; ok {
			return &mmerr.DuplicateAddress{
				Address:        el.Addr(),
				DuplicateSite:  el.Location(),
				CollectionSite: collectionLoc,
				OriginalSite:   existing.Location(),
			}
		}
		dst[el.Addr()] = el
	}
	return nil
}

func sortedVerifyAddrs(elements map[uintptr]VerifyElement) []uintptr {
	addrs := make([]uintptr, 0, len(elements))
	for addr := range elements {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)
	return addrs
}

// Apply checks that every element below the arena size cap is backed
// by a live arena allocation, then runs each element's comparator in address
// order, calling the installed ExpectFunc after each one. It reports
// whether every element matched.
func (v *Verify) Apply() (bool, error) {
	addrs := sortedVerifyAddrs(v.elements)
	arenaSize := arena.Global().Size()
	for _, addr := range addrs {
		el := v.elements[addr]
		if addr >= arenaSize {
			break
		}
		if !arena.Global().ContainsBytes(el.Addr(), el.Size()) {
			return false, &mmerr.PageIsNotAllocated{Kind: "element", Site: el.Location()}
		}
	}
	fail := false
	for _, addr := range addrs {
		el := v.elements[addr]
		success, err := el.apply()
		if err != nil {
			return false, err
		}
		if !success {
			fail = true
		}
		if expect(success, el.Location()) == ExpectStop {
			break
		}
	}
	return !fail, nil
}

// Merge copies that's elements into v, leaving that unchanged.
func (v *Verify) Merge(that *Verify) error {
	return appendVerifyElements(v.elements, valuesOfVerify(that.elements), v.loc)
}

// Absorb moves that's elements into v, draining that.
func (v *Verify) Absorb(that *Verify) error {
	if err := appendVerifyElements(v.elements, valuesOfVerify(that.elements), v.loc); err != nil {
		return err
	}
	that.elements = make(map[uintptr]VerifyElement)
	return nil
}

func valuesOfVerify(elements map[uintptr]VerifyElement) []VerifyElement {
	out := make([]VerifyElement, 0, len(elements))
	for _, el := range elements {
		out = append(out, el)
	}
	return out
}
