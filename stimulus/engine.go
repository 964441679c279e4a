// SPDX-License-Identifier: Unlicense OR MIT

package stimulus

import (
	"sync"
	"sync/atomic"

	"github.com/hutorny-eu/mmiotest/internal/arena"
	"github.com/hutorny-eu/mmiotest/internal/mlog"
	"github.com/hutorny-eu/mmiotest/mmerr"
	"github.com/hutorny-eu/mmiotest/site"
)

// core is what the engine needs from a Stimulus[W, M], independent of
// W and M. It plays the role of the original's istimulus base class.
type core interface {
	spans() []span
	location() site.Location
	setActive()
	setInactive()
	runOnce() Status
	Status() Status
}

// engine is the process-wide scheduler, the Go counterpart of the
// original's stimulator (_examples/original_source/src/stimulus.cxx):
// a background goroutine round-robins over the armed stimuli, and the
// engine subscribes to the arena so a stub's deallocation can evict
// any stimulus that referenced its pages.
type engine struct {
	mu           sync.Mutex
	cond         *sync.Cond
	stimuli      []core
	currentIndex int
	terminated   atomic.Bool
}

var (
	once   sync.Once
	global *engine
)

func instance() *engine {
	once.Do(func() {
		global = &engine{}
		global.cond = sync.NewCond(&global.mu)
		arena.Global().Subscribe(global)
		go global.run()
	})
	return global
}

// Count returns the number of currently armed stimuli.
func Count() int {
	e := instance()
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.stimuli)
}

// Terminate stops the background scheduler. It does not wait for the
// goroutine to exit; tests that need that should rely on Count
// reaching zero instead.
func Terminate() {
	e := instance()
	e.mu.Lock()
	e.terminated.Store(true)
	e.mu.Unlock()
	e.cond.Broadcast()
}

func checkPages(spans []span, loc site.Location) error {
	a := arena.Global()
	size := a.Size()
	for _, sp := range spans {
		if sp.addr < size && !a.ContainsBytes(sp.addr, sp.size) {
			return &mmerr.PageIsNotAllocated{Kind: "stimulus", Site: loc}
		}
	}
	return nil
}

func activate(s core) error {
	if err := checkPages(s.spans(), s.location()); err != nil {
		return err
	}
	e := instance()
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, existing := range e.stimuli {
		if existing == s {
			return nil
		}
	}
	e.stimuli = append(e.stimuli, s)
	s.setActive()
	e.cond.Broadcast()
	return nil
}

func deactivate(s core) bool {
	e := instance()
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := -1
	for i, existing := range e.stimuli {
		if existing == s {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	e.adjustIndexLocked(idx)
	e.stimuli = append(e.stimuli[:idx], e.stimuli[idx+1:]...)
	s.setInactive()
	return true
}

// adjustIndexLocked keeps currentIndex pointing at the same logical
// stimulus after the entry at index removed drops out of the slice,
// mirroring the original stimulator::adjust_index.
func (e *engine) adjustIndexLocked(removed int) {
	if n := len(e.stimuli); n != 0 {
		e.currentIndex %= n
		if removed < e.currentIndex {
			e.currentIndex--
		}
	}
}

// Unmapping implements arena.Listener: any stimulus whose spans
// overlap the page range about to be unmapped is forcibly evicted, the
// same ordering the original's stimulator::unmapping keeps.
func (e *engine) Unmapping(addr uintptr, size uintptr, ownerSite site.Location) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.stimuli) == 0 {
		return
	}
	rangeEnd := addr + size
	kept := e.stimuli[:0]
	for _, s := range e.stimuli {
		evicted := false
		for _, sp := range s.spans() {
			if spanOverlaps(addr, rangeEnd, sp) {
				evicted = true
				break
			}
		}
		if evicted {
			// Earlier evictions already shifted the cursor, so the
			// entry's index among the survivors is len(kept).
			e.adjustIndexLocked(len(kept))
			mlog.Logger(mlog.Stimulus).Error(
				"removing stimulus because it uses a page being deallocated",
				"stimulus", s.location().String(),
				"owner", ownerSite.String())
			s.setInactive()
		} else {
			kept = append(kept, s)
		}
	}
	e.stimuli = kept
}

func spanOverlaps(rangeAddr, rangeEnd uintptr, sp span) bool {
	spEnd := sp.addr + sp.size
	return sp.addr < rangeEnd && rangeAddr < spEnd
}

func (e *engine) run() {
	for {
		e.mu.Lock()
		for len(e.stimuli) == 0 && !e.terminated.Load() {
			e.cond.Wait()
		}
		if e.terminated.Load() {
			e.mu.Unlock()
			return
		}
		idx := e.currentIndex % len(e.stimuli)
		s := e.stimuli[idx]
		e.mu.Unlock()

		status := runGuarded(s)

		e.mu.Lock()
		if status == StatusDone {
			e.removeLocked(s)
		} else if len(e.stimuli) != 0 {
			e.currentIndex++
		}
		e.mu.Unlock()
	}
}

func (e *engine) removeLocked(s core) {
	for i, existing := range e.stimuli {
		if existing == s {
			e.adjustIndexLocked(i)
			e.stimuli = append(e.stimuli[:i], e.stimuli[i+1:]...)
			return
		}
	}
}

// runGuarded runs one scheduling tick of s, converting a panic raised
// from inside its condition or action into a logged, StatusDone-like
// removal rather than taking the whole scheduler down with it.
func runGuarded(s core) (status Status) {
	defer func() {
		if r := recover(); r != nil {
			mlog.Logger(mlog.Stimulus).Error("stimulus panicked", "stimulus", s.location().String(), "panic", r)
			status = StatusDone
		}
	}()
	return s.runOnce()
}
