// SPDX-License-Identifier: Unlicense OR MIT

package region

// PageSize is the platform page size assumed at build time. Arena
// startup verifies this against the runtime's actual page size via
// arena.CheckPageSize.
const PageSize = 4096

// PageRange is a half-open interval of whole pages [First, First+Count).
// Two page ranges overlap if their intervals intersect *or touch at an
// endpoint*: touching counts as overlap because Join must coalesce
// adjacent allocations into one mmap request.
type PageRange struct {
	First uint64
	Count uint64
}

func pageFloor(addr uintptr) uint64 {
	return uint64(addr) / PageSize
}

func pageCeil(addr uintptr) uint64 {
	return (uint64(addr) + PageSize - 1) / PageSize
}

// PagesOf computes the page range covering the byte region [begin, end).
func PagesOf(begin, end uintptr) PageRange {
	first := pageFloor(begin)
	last := pageCeil(end)
	return PageRange{First: first, Count: last - first}
}

// Of computes the page range covering r's bytes.
func Of(r Region) PageRange {
	return PagesOf(r.Address, r.End())
}

// End returns the page index one past the range's last page.
func (p PageRange) End() uint64 {
	return p.First + p.Count
}

// Empty reports whether the range covers no pages.
func (p PageRange) Empty() bool {
	return p.Count == 0
}

// Address returns the byte address of the range's first page.
func (p PageRange) Address() uintptr {
	return uintptr(p.First * PageSize)
}

// SizeBytes returns the range's size in bytes, always a multiple of PageSize.
func (p PageRange) SizeBytes() uintptr {
	return uintptr(p.Count * PageSize)
}

// Overlapping reports whether p and q's page intervals intersect or
// touch at an endpoint.
func (p PageRange) Overlapping(q PageRange) bool {
	return (p.First <= q.First && q.First <= p.End()) ||
		(q.First <= p.First && p.First <= q.End())
}

// Contains reports whether q's pages are a subset of p's.
func (p PageRange) Contains(q PageRange) bool {
	return p.First <= q.First && q.End() <= p.End()
}

// Join merges q into p in place if the two overlap (including
// touching), returning whether the merge happened.
func (p *PageRange) Join(q PageRange) bool {
	if !p.Overlapping(q) {
		return false
	}
	end := p.End()
	if q.End() > end {
		end = q.End()
	}
	if q.First < p.First {
		p.First = q.First
	}
	p.Count = end - p.First
	return true
}

// Equal reports whether p and q describe the same page interval.
func (p PageRange) Equal(q PageRange) bool {
	return p.First == q.First && p.Count == q.Count
}
