// SPDX-License-Identifier: Unlicense OR MIT

// Package arena is the process-wide registry of faked MMIO pages. It
// is the Go counterpart of the original's stubmmio::detail::mmio
// (_examples/original_source/src/mmio.h): a process-global singleton,
// constructed on first use exactly like the teacher's
// kernel.interruptHandler (kernel/user.go) gates its background
// goroutine behind a sync.Once, that maps fixed page ranges into the
// process, tracks which owner claims which pages, and tears mappings
// down by publishing the unmap event before each unmap.
package arena

import (
	"fmt"
	"sync"

	"github.com/hutorny-eu/mmiotest/mmerr"
	"github.com/hutorny-eu/mmiotest/region"
	"github.com/hutorny-eu/mmiotest/site"
)

// OwnerID identifies the stub that owns an allocation. The original uses the owning object's address as its
// identity; Go objects don't have a stable address usable the same
// way, so owners are assigned a monotonically increasing id instead,
// per the fallback spec.md's own design notes call out.
type OwnerID uint64

var nextOwnerID atomicCounter

// NewOwnerID returns a fresh, process-unique owner identity.
func NewOwnerID() OwnerID {
	return OwnerID(nextOwnerID.next())
}

// Owner is anything the arena can attribute an allocation to, such as
// a stub.
type Owner interface {
	Identity() OwnerID
	Location() site.Location
}

// Listener is notified before the arena unmaps a page range, so
// dependent state (the stimulus engine, notably) can drop references
// to memory that's about to disappear.
type Listener interface {
	Unmapping(addr uintptr, size uintptr, ownerSite site.Location)
}

// OnFail selects how a configuration check reports failure.
type OnFail int

const (
	Throws OnFail = iota
	Logs
	Returns
)

// MaxSize is the default arena size cap, matching the original's
// arena::max_size (4 GiB, the 32-bit address space).
const MaxSize uintptr = 0x1_0000_0000

type allocation struct {
	pages region.PageRange
	owner OwnerID
	site  site.Location
}

// Arena is the process-global faked-page registry.
type Arena struct {
	mu          sync.Mutex
	allocations map[uint64]allocation
	listeners   []Listener
	fill        *uint64
	sizeCap     uintptr
}

var (
	once     sync.Once
	instance *Arena
)

// Global returns the process-wide arena, constructing it on first use.
func Global() *Arena {
	once.Do(func() {
		instance = &Arena{
			allocations: make(map[uint64]allocation),
			sizeCap:     MaxSize,
		}
	})
	return instance
}

// SetFill sets the 64-bit pattern newly mapped pages are filled with.
func (a *Arena) SetFill(v uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f := v
	a.fill = &f
}

// ClearFill stops filling newly mapped pages (they keep the OS's
// zeroed anonymous-page contents).
func (a *Arena) ClearFill() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fill = nil
}

// Size returns the current arena cap.
func (a *Arena) Size() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sizeCap
}

// SetSize sets the arena cap after checking that the process's own
// code doesn't live inside [0, requested).
func (a *Arena) SetSize(requested uintptr, onFail OnFail) error {
	ok, err := a.CheckBoundary(requested, onFail)
	if err != nil {
		return err
	}
	if ok {
		a.mu.Lock()
		a.sizeCap = requested
		a.mu.Unlock()
	}
	return nil
}

// Subscribe registers l to be notified before any allocation it might
// reference is unmapped.
func (a *Arena) Subscribe(l Listener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, l)
}

// Unsubscribe removes a previously subscribed listener.
func (a *Arena) Unsubscribe(l Listener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, existing := range a.listeners {
		if existing == l {
			a.listeners = append(a.listeners[:i], a.listeners[i+1:]...)
			return
		}
	}
}

func (a *Arena) notify(pages region.PageRange, loc site.Location) {
	for _, l := range a.listeners {
		l.Unmapping(pages.Address(), pages.SizeBytes(), loc)
	}
}

// validate applies the four-rule conflict check from spec §4.4, in
// order: idempotent re-apply, same-key conflict, any-overlap conflict
// with a different owner. Overlap with the same owner that doesn't key
// on the same first page is left undetected, same as the original.
func (a *Arena) validate(requested region.PageRange, owner Owner) error {
	if prev, ok := a.allocations[requested.First]; ok {
		if prev.owner == owner.Identity() {
			if prev.pages.Equal(requested) {
				return nil
			}
			return conflictErr(requested, prev, owner.Location())
		}
		return conflictErr(requested, prev, owner.Location())
	}
	for _, prev := range a.allocations {
		if requested.Overlapping(prev.pages) && prev.owner != owner.Identity() {
			return conflictErr(requested, prev, owner.Location())
		}
	}
	return nil
}

func conflictErr(requested region.PageRange, prev allocation, requestor site.Location) error {
	return &mmerr.ConflictingAllocation{
		RequestedAddr: requested.Address(),
		RequestedSize: requested.SizeBytes(),
		PreviousAddr:  prev.pages.Address(),
		PreviousSize:  prev.pages.SizeBytes(),
		RequestorSite: requestor,
		OwnerSite:     prev.site,
	}
}

// Allocate maps requested at its exact address and records it under
// owner. A conflicting or idempotent request is resolved per
// validate; an OS-level mmap failure is returned as an error wrapping
// the OS error, for diagnosis.
func (a *Arena) Allocate(requested region.PageRange, owner Owner) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.validate(requested, owner); err != nil {
		return err
	}
	if _, exists := a.allocations[requested.First]; exists {
		return nil // idempotent re-apply, validated above
	}
	mem, err := mmapFixed(requested.Address(), requested.SizeBytes())
	if err != nil {
		return fmt.Errorf("arena: mmap(%#x, %d) failed: %w", requested.Address(), requested.SizeBytes(), err)
	}
	a.allocations[requested.First] = allocation{pages: requested, owner: owner.Identity(), site: owner.Location()}
	if a.fill != nil {
		fillPattern(mem, *a.fill)
	}
	return nil
}

// Deallocate unmaps every page range owned by owner, publishing an
// unmap event to listeners before the OS mapping disappears.
func (a *Arena) Deallocate(owner Owner) {
	a.mu.Lock()
	defer a.mu.Unlock()
	identity := owner.Identity()
	for first, rec := range a.allocations {
		if rec.owner != identity {
			continue
		}
		a.notify(rec.pages, rec.site)
		_ = munmapFixed(rec.pages.Address(), rec.pages.SizeBytes())
		delete(a.allocations, first)
	}
}

// Claim rewrites every allocation owned by loser to be owned by
// claimer, the arena side of a stub's move/absorb semantics.
func (a *Arena) Claim(loser, claimer OwnerID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for first, rec := range a.allocations {
		if rec.owner == loser {
			rec.owner = claimer
			a.allocations[first] = rec
		}
	}
}

// AllocationSize returns the total bytes currently backed by the arena.
func (a *Arena) AllocationSize() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	var total uintptr
	for _, rec := range a.allocations {
		total += rec.pages.SizeBytes()
	}
	return total
}

// Contains reports whether some allocation fully contains requested.
func (a *Arena) Contains(requested region.PageRange) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if prev, ok := a.allocations[requested.First]; ok {
		return prev.pages.Contains(requested)
	}
	for _, prev := range a.allocations {
		if requested.Overlapping(prev.pages) {
			return prev.pages.Contains(requested)
		}
	}
	return false
}

// ContainsBytes reports whether the byte span [addr, addr+size) is
// fully backed by a single allocation.
func (a *Arena) ContainsBytes(addr, size uintptr) bool {
	return a.Contains(region.PagesOf(addr, addr+size))
}

// Teardown unmaps every remaining allocation, notifying listeners
// first for each one, the same order the original's ~mmio() destructor
// uses so dependent state never dereferences memory after it's gone.
// Tests that want a clean slate between cases can call this directly.
func (a *Arena) Teardown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, rec := range a.allocations {
		a.notify(rec.pages, rec.site)
	}
	for first, rec := range a.allocations {
		_ = munmapFixed(rec.pages.Address(), rec.pages.SizeBytes())
		delete(a.allocations, first)
	}
}

func fillPattern(mem []byte, pattern uint64) {
	const wordSize = 8
	var word [wordSize]byte
	for i := range word {
		word[i] = byte(pattern >> (8 * i))
	}
	for off := 0; off+wordSize <= len(mem); off += wordSize {
		copy(mem[off:off+wordSize], word[:])
	}
}
