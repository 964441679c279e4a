// SPDX-License-Identifier: Unlicense OR MIT

// Package mmerr is the typed error hierarchy raised by mmiotest. Every
// error here is a programmer error, not a recoverable data error: the
// caller declared something inconsistent (two elements at the same
// address, a reversed region, an allocation that collides with another
// owner) and the fix is to change the test, not to retry.
package mmerr

import (
	"fmt"

	"github.com/hutorny-eu/mmiotest/site"
)

// DuplicateAddress is raised when a stub or verify collection is given
// two elements sharing the same base address.
type DuplicateAddress struct {
	Address        uintptr
	DuplicateSite  site.Location
	CollectionSite site.Location
	OriginalSite   site.Location
}

func (e *DuplicateAddress) Error() string {
	return fmt.Sprintf(
		"duplicate address %#x in the element declared at %s\n"+
			"    used in collection declared at %s\n"+
			"    original element declared at %s",
		e.Address, e.DuplicateSite, e.CollectionSite, e.OriginalSite)
}

// OverlappingElements is raised when a stub's elements describe
// overlapping byte ranges.
type OverlappingElements struct {
	CollectionSite site.Location
	FirstAddr      uintptr
	FirstSize      uintptr
	FirstSite      site.Location
	SecondAddr     uintptr
	SecondSize     uintptr
	SecondSite     site.Location
}

func (e *OverlappingElements) Error() string {
	return fmt.Sprintf(
		"stub declared at %s has overlapping elements:\n"+
			"element  %#x[%d] declared at %s\n"+
			"overlaps %#x[%d] declared at %s",
		e.CollectionSite, e.FirstAddr, e.FirstSize, e.FirstSite,
		e.SecondAddr, e.SecondSize, e.SecondSite)
}

// RegionReversed is raised when a region is constructed from a pointer
// pair whose end precedes its begin.
type RegionReversed struct {
	Begin uintptr
	End   uintptr
	Site  site.Location
}

func (e *RegionReversed) Error() string {
	return fmt.Sprintf("reversed region [%#x..%#x) at %s", e.Begin, e.End, e.Site)
}

// ConflictingAllocation is raised by the arena when two owners claim
// overlapping page ranges.
type ConflictingAllocation struct {
	RequestedAddr uintptr
	RequestedSize uintptr
	PreviousAddr  uintptr
	PreviousSize  uintptr
	RequestorSite site.Location
	OwnerSite     site.Location
}

func (e *ConflictingAllocation) Error() string {
	return fmt.Sprintf(
		"page range %#x[%d] requested at %s conflicts with previous %#x[%d] owned by a stub declared at %s",
		e.RequestedAddr, e.RequestedSize, e.RequestorSite, e.PreviousAddr, e.PreviousSize, e.OwnerSite)
}

// PageSizeMismatch is raised when the runtime page size differs from
// the compile-time constant the library was built with.
type PageSizeMismatch struct {
	Actual   int
	Expected int
}

func (e *PageSizeMismatch) Error() string {
	return fmt.Sprintf("actual page size %d does not equal the page size used at build time %d", e.Actual, e.Expected)
}

// PageIsNotAllocated is raised by Verify.Apply and stimulus
// activation when an address below the arena cap is not backed by a
// live allocation.
type PageIsNotAllocated struct {
	Kind string // "element" or "stimulus"
	Site site.Location
}

func (e *PageIsNotAllocated) Error() string {
	return fmt.Sprintf("page is not allocated for %s declared at %s", e.Kind, e.Site)
}

// ArenaNotFullyAvailable is raised at startup when the running
// process's own code occupies addresses inside the requested arena
// range.
type ArenaNotFullyAvailable struct {
	Requested uintptr
	Available uintptr
}

func (e *ArenaNotFullyAvailable) Error() string {
	return fmt.Sprintf(
		"expected arena size %d is not available, only %d bytes are; check the process's load address",
		e.Requested, e.Available)
}

// AccessToUnallocatedAddress is raised when code under test faults on
// an address the arena never backed.
type AccessToUnallocatedAddress struct {
	Addr uintptr
}

func (e *AccessToUnallocatedAddress) Error() string {
	return fmt.Sprintf("access to unallocated address %#x", e.Addr)
}

// OperatorSizeMismatch is raised when a generator or comparator
// operator is invoked against a byte range whose length does not
// match (one) or is not a multiple of (all) the captured value's
// size. Attributed to the operator's declaration site, not the call
// site that triggered the invocation.
type OperatorSizeMismatch struct {
	Op       string // "one" or "all"
	ValueLen int
	SpanLen  int
	Site     site.Location
}

func (e *OperatorSizeMismatch) Error() string {
	if e.Op == "one" {
		return fmt.Sprintf(
			"operator declared at %s expects a span of exactly %d bytes, got %d",
			e.Site, e.ValueLen, e.SpanLen)
	}
	return fmt.Sprintf(
		"operator declared at %s expects a span whose length is a multiple of %d bytes, got %d",
		e.Site, e.ValueLen, e.SpanLen)
}
