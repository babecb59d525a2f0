package notify

import "math"

// Handle identifies an observer owned by a Slots table. A handle stays valid
// until the observer is released; after that, its slot may be reused by a
// later Insert under a newer generation.
type Handle struct {
	index uint32
	gen   uint32
}

type slot struct {
	observer Observer
	gen      uint32
	live     bool
}

// Slots is an owning table of observers addressed by generation-stamped
// handles. Releasing a handle destroys the observer and bumps the slot's
// generation, so every Ref taken from that handle resolves as gone, even if
// the slot is later reused.
//
// A slot whose generation would wrap is retired rather than reused, so an
// old handle can never match a later observer.
//
// Slots is not safe for concurrent use.
type Slots struct {
	entries []slot
	free    []uint32
	retired int
}

// NewSlots creates an empty slot table.
func NewSlots() *Slots {
	return &Slots{}
}

// Insert takes ownership of o and returns its handle.
func (s *Slots) Insert(o Observer) Handle {
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		e := &s.entries[idx]
		e.observer = o
		e.live = true
		return Handle{index: idx, gen: e.gen}
	}

	s.entries = append(s.entries, slot{observer: o, live: true})
	return Handle{index: uint32(len(s.entries) - 1)}
}

// Get returns the observer for h, or false if it has been released.
func (s *Slots) Get(h Handle) (Observer, bool) {
	if int(h.index) >= len(s.entries) {
		return nil, false
	}
	e := s.entries[h.index]
	if !e.live || e.gen != h.gen {
		return nil, false
	}
	return e.observer, true
}

// Release destroys the observer for h. Releasing a handle twice, or a handle
// whose slot has since been reused, returns ErrStaleHandle.
func (s *Slots) Release(h Handle) error {
	if _, ok := s.Get(h); !ok {
		return ErrStaleHandle
	}
	e := &s.entries[h.index]
	e.observer = nil
	e.live = false
	if e.gen == math.MaxUint32 {
		s.retired++
		return nil
	}
	e.gen++
	s.free = append(s.free, h.index)
	return nil
}

// Len returns the number of live observers.
func (s *Slots) Len() int {
	return len(s.entries) - len(s.free) - s.retired
}

// Ref returns a non-owning reference to the observer for h.
func (s *Slots) Ref(h Handle) Ref {
	return slotRef{slots: s, handle: h}
}

type slotRef struct {
	slots  *Slots
	handle Handle
}

func (r slotRef) Resolve() (Observer, bool) {
	return r.slots.Get(r.handle)
}
