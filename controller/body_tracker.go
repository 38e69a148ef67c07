package controller

import (
	"gesture-logger/models"
)

// BodyTracker remembers the last tracking id seen in each body slot and the
// order in which slots were first tracked. It is only touched from the
// frame-arrival goroutine.
type BodyTracker struct {
	tracked [models.BodyCount]uint64
	seen    [models.BodyCount]bool // slot has been tracked at least once
	order   []int                  // append-only, duplicate-free
	bodies  [models.BodyCount]models.Body
}

func NewBodyTracker() *BodyTracker {
	return &BodyTracker{order: make([]int, 0, models.BodyCount)}
}

// Update refreshes the cache from f and returns the frame's body slots. A
// slot that loses tracking keeps its previous id.
func (t *BodyTracker) Update(f *models.BodyFrame) []models.Body {
	n := f.GetAndRefreshBodyData(t.bodies[:])
	for slot := 0; slot < n; slot++ {
		b := &t.bodies[slot]
		if !b.IsTracked {
			continue
		}
		t.tracked[slot] = b.TrackingID
		t.seen[slot] = true
		t.register(slot)
	}
	return t.bodies[:n]
}

func (t *BodyTracker) register(slot int) {
	for _, s := range t.order {
		if s == slot {
			return
		}
	}
	t.order = append(t.order, slot)
}

// Matches reports whether a detector bound to id should log for slot: the
// slot must have been tracked and its cached id must equal id.
func (t *BodyTracker) Matches(slot int, id uint64) bool {
	if slot < 0 || slot >= models.BodyCount {
		return false
	}
	return t.seen[slot] && t.tracked[slot] == id
}

// TrackedID returns the cached id of slot and whether it was ever tracked.
func (t *BodyTracker) TrackedID(slot int) (uint64, bool) {
	if slot < 0 || slot >= models.BodyCount {
		return 0, false
	}
	return t.tracked[slot], t.seen[slot]
}

// Participant returns the 1-based registration position of slot, or 0 if
// the slot has never been tracked.
func (t *BodyTracker) Participant(slot int) int {
	for i, s := range t.order {
		if s == slot {
			return i + 1
		}
	}
	return 0
}

// RegistrationOrder returns a copy of the slots in first-tracked order.
func (t *BodyTracker) RegistrationOrder() []int {
	return append([]int(nil), t.order...)
}
