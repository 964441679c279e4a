// SPDX-License-Identifier: Unlicense OR MIT

package mmiotest

import (
	"golang.org/x/exp/slices"

	"github.com/hutorny-eu/mmiotest/internal/arena"
	"github.com/hutorny-eu/mmiotest/mmerr"
	"github.com/hutorny-eu/mmiotest/region"
	"github.com/hutorny-eu/mmiotest/site"
)

// Stub owns a set of addresses it seeds with data, the Go counterpart
// of the original's stubmmio::stub
// (_examples/original_source/include/stubmmio/stubmmio.h,
// _examples/original_source/src/stubmmio.cxx). A Stub's Go identity
// can't serve as its own owner key the way the original uses `this`
// as an address, so each Stub is issued a process-unique
// arena.OwnerID on construction instead.
type Stub struct {
	owner    arena.OwnerID
	elements map[uintptr]StubElement
	loc      site.Location
}

// NewStub declares a stub from elements. Two elements sharing an
// address, or elements whose byte ranges overlap, fail construction.
func NewStub(elements ...StubElement) (*Stub, error) {
	loc := site.Here(1)
	s := &Stub{owner: arena.NewOwnerID(), elements: make(map[uintptr]StubElement, len(elements)), loc: loc}
	if err := appendStubElements(s.elements, elements, loc); err != nil {
		return nil, err
	}
	if err := checkOverlappingStub(s.elements, loc); err != nil {
		return nil, err
	}
	return s, nil
}

// Identity implements arena.Owner.
func (s *Stub) Identity() arena.OwnerID { return s.owner }

// Location implements arena.Owner.
func (s *Stub) Location() site.Location { return s.loc }

// ElementCount returns the number of elements the stub declares.
func (s *Stub) ElementCount() int { return len(s.elements) }

func appendStubElements(dst map[uintptr]StubElement, elements []StubElement, collectionLoc site.Location) error {
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

func sortedStubAddrs(elements map[uintptr]StubElement) []uintptr {
	addrs := make([]uintptr, 0, len(elements))
	for addr := range elements {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)
	return addrs
}

func checkOverlappingStub(elements map[uintptr]StubElement, collectionLoc site.Location) error {
	addrs := sortedStubAddrs(elements)
	for i := 1; i < len(addrs); i++ {
		prev, cur := elements[addrs[i-1]], elements[addrs[i]]
		if region.Overlapping(region.New(prev.Addr(), prev.Size()), region.New(cur.Addr(), cur.Size())) {
			return &mmerr.OverlappingElements{
				CollectionSite: collectionLoc,
				FirstAddr:      prev.Addr(),
				FirstSize:      prev.Size(),
				FirstSite:      prev.Location(),
				SecondAddr:     cur.Addr(),
				SecondSize:     cur.Size(),
				SecondSite:     cur.Location(),
			}
		}
	}
	return nil
}

// Apply allocates the arena pages backing the stub's elements and
// writes each element's seed data, the Go counterpart of
// stub::apply(). Applying the same stub more than once is cheap:
// arena allocation is idempotent for a range already owned by this
// stub.
func (s *Stub) Apply() error {
	addrs := sortedStubAddrs(s.elements)
	var pages []region.PageRange
	arenaSize := arena.Global().Size()
	for _, addr := range addrs {
		el := s.elements[addr]
		if addr >= arenaSize {
			break
		}
		pages = joinPage(pages, region.PagesOf(el.Addr(), el.End()))
	}
	for _, page := range pages {
		if err := arena.Global().Allocate(page, s); err != nil {
			return err
		}
	}
	for _, addr := range addrs {
		if err := s.elements[addr].apply(); err != nil {
			return err
		}
	}
	return nil
}

// joinPage merges page into the first entry of pages it touches or
// overlaps. A join can enlarge that entry enough to newly touch or
// overlap another entry further along the list, for example when page
// closes a gap between two already-disjoint entries, so a successful
// join re-runs coalesce to a fixpoint rather than stopping at the
// first match, keeping pages a set of pairwise-disjoint ranges.
func joinPage(pages []region.PageRange, page region.PageRange) []region.PageRange {
	for i := range pages {
		if pages[i].Join(page) {
			return coalesce(pages)
		}
	}
	return append(pages, page)
}

func coalesce(pages []region.PageRange) []region.PageRange {
	for merged := true; merged; {
		merged = false
		for i := 0; i < len(pages); i++ {
			for j := i + 1; j < len(pages); j++ {
				if pages[i].Join(pages[j]) {
					pages = append(pages[:j], pages[j+1:]...)
					merged = true
					break
				}
			}
			if merged {
				break
			}
		}
	}
	return pages
}

// Merge copies that's elements into s, leaving that unchanged. It is
// the Go counterpart of stub::operator|=(const stub&).
func (s *Stub) Merge(that *Stub) error {
	if err := appendStubElements(s.elements, valuesOfStub(that.elements), s.loc); err != nil {
		return err
	}
	return checkOverlappingStub(s.elements, s.loc)
}

// Absorb moves that's elements into s, draining that and transferring
// any of that's existing arena allocations to s. It is the Go
// counterpart of stub::operator|=(stub&&).
func (s *Stub) Absorb(that *Stub) error {
	if err := appendStubElements(s.elements, valuesOfStub(that.elements), s.loc); err != nil {
		return err
	}
	if err := checkOverlappingStub(s.elements, s.loc); err != nil {
		return err
	}
	that.elements = make(map[uintptr]StubElement)
	arena.Global().Claim(that.owner, s.owner)
	return nil
}

func valuesOfStub(elements map[uintptr]StubElement) []StubElement {
	out := make([]StubElement, 0, len(elements))
	for _, el := range elements {
		out = append(out, el)
	}
	return out
}

// Close deallocates every page this stub owns in the arena. Intended
// for use with defer, mirroring the original's ~stub() destructor.
func (s *Stub) Close() error {
	arena.Global().Deallocate(s)
	s.elements = make(map[uintptr]StubElement)
	return nil
}
