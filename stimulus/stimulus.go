// SPDX-License-Identifier: Unlicense OR MIT

// Package stimulus implements the background engine that simulates
// hardware activity against faked MMIO registers: each Stimulus
// watches one register for a condition and, once it holds, writes to
// another. It is the Go counterpart of the original's
// stubmmio::stimulus/istimulus pair and the stimulator that schedules
// them (_examples/original_source/include/stubmmio/stimulus.h,
// _examples/original_source/src/stimulus.cxx).
package stimulus

import (
	"sync/atomic"
	"unsafe"

	"golang.org/x/exp/constraints"

	"github.com/hutorny-eu/mmiotest/site"
)

// Status is a stimulus's current scheduling state.
type Status int

const (
	StatusIdle Status = iota
	StatusActive
	StatusRunning
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusActive:
		return "active"
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// Condition reports whether a watched register's current value should
// trigger the stimulus.
type Condition[W constraints.Integer] func(watch W) bool

// Action mutates a register once a stimulus's condition holds.
type Action[M constraints.Integer] func(modify *M)

type span struct {
	addr uintptr
	size uintptr
}

// Stimulus watches a register of type W for Condition to hold, then
// applies Action to a register of type M. W and M are independently
// typed because hardware handshakes routinely watch a status register
// of one width and modify a data register of another.
type Stimulus[W, M constraints.Integer] struct {
	loc       site.Location
	condition Condition[W]
	action    Action[M]
	watch     *W
	modify    *M
	status    atomic.Int32
}

// New constructs a stimulus over watch and modify and activates it
// immediately. An activation error (such as PageIsNotAllocated) is
// discarded: the stimulus is then returned unarmed, with StatusIdle.
func New[W, M constraints.Integer](watch *W, cond Condition[W], modify *M, act Action[M], loc site.Location) *Stimulus[W, M] {
	s := newInactive(watch, cond, modify, act, loc)
	activate(s)
	return s
}

// NewInactive constructs a stimulus without scheduling it. Call
// Activate to arm it, or Clone to arm a copy while keeping the
// original as a template.
func NewInactive[W, M constraints.Integer](watch *W, cond Condition[W], modify *M, act Action[M], loc site.Location) *Stimulus[W, M] {
	return newInactive(watch, cond, modify, act, loc)
}

func newInactive[W, M constraints.Integer](watch *W, cond Condition[W], modify *M, act Action[M], loc site.Location) *Stimulus[W, M] {
	return &Stimulus[W, M]{loc: loc, condition: cond, action: act, watch: watch, modify: modify}
}

// NewAtAddress constructs and activates a stimulus from raw
// addresses, for callers that don't hold typed pointers into the
// arena. As with New, an activation error is discarded and the
// stimulus is then returned unarmed.
func NewAtAddress[W, M constraints.Integer](watchAddr uintptr, cond Condition[W], modifyAddr uintptr, act Action[M], loc site.Location) *Stimulus[W, M] {
	s := NewInactiveAtAddress(watchAddr, cond, modifyAddr, act, loc)
	activate(s)
	return s
}

// NewInactiveAtAddress is the address-based counterpart of NewInactive.
func NewInactiveAtAddress[W, M constraints.Integer](watchAddr uintptr, cond Condition[W], modifyAddr uintptr, act Action[M], loc site.Location) *Stimulus[W, M] {
	watch := (*W)(unsafe.Pointer(watchAddr)) //nolint:govet
	modify := (*M)(unsafe.Pointer(modifyAddr))
	return newInactive(watch, cond, modify, act, loc)
}

// Clone makes an armed copy of s, sharing its condition, action and
// registers. Used to re-arm a stimulus after it has run to
// StatusDone. An activation error is discarded, leaving the copy
// unarmed.
func (s *Stimulus[W, M]) Clone() *Stimulus[W, M] {
	c := &Stimulus[W, M]{loc: s.loc, condition: s.condition, action: s.action, watch: s.watch, modify: s.modify}
	activate(c)
	return c
}

// Activate (re)arms s.
func (s *Stimulus[W, M]) Activate() error {
	return activate(s)
}

// Deactivate disarms s, reporting whether it had been armed.
func (s *Stimulus[W, M]) Deactivate() bool {
	return deactivate(s)
}

// Close deactivates s. It never fails; the error return exists so
// Close satisfies io.Closer for use with defer.
func (s *Stimulus[W, M]) Close() error {
	deactivate(s)
	return nil
}

// Status returns s's current scheduling state.
func (s *Stimulus[W, M]) Status() Status {
	return Status(s.status.Load())
}

func (s *Stimulus[W, M]) setStatus(v Status) {
	s.status.Store(int32(v))
}

func (s *Stimulus[W, M]) location() site.Location {
	return s.loc
}

func (s *Stimulus[W, M]) spans() []span {
	return []span{
		{addr: uintptr(unsafe.Pointer(s.watch)), size: unsafe.Sizeof(*s.watch)},
		{addr: uintptr(unsafe.Pointer(s.modify)), size: unsafe.Sizeof(*s.modify)},
	}
}

func (s *Stimulus[W, M]) setActive() {
	s.setStatus(StatusActive)
}

func (s *Stimulus[W, M]) setInactive() {
	if s.Status() != StatusDone {
		s.setStatus(StatusIdle)
	}
}

// runOnce reads the watched register and, if the condition holds,
// applies the action and reports StatusDone; otherwise StatusIdle.
// The register is read without synchronization because it is mutated
// by code under test outside any Go memory model the runtime can see
// into, the same premise the original takes by qualifying it volatile.
func (s *Stimulus[W, M]) runOnce() Status {
	s.setStatus(StatusRunning)
	if s.condition(*s.watch) {
		s.action(s.modify)
		s.setStatus(StatusDone)
		return StatusDone
	}
	s.setStatus(StatusIdle)
	return StatusIdle
}
