// Package nav tracks navigation direction, streak, and the cancellation
// generation derived from page, zoom, and scale changes.
package nav

import "github.com/shiguri-01/preview-pdf/internal/pagekey"

// Tracker derives NavIntent from a sequence of page/zoom/scale changes.
type Tracker struct {
	dir        pagekey.Direction
	streak     int
	generation uint64
}

// NewTracker returns a Tracker in its initial state: Forward, streak 0,
// generation 0.
func NewTracker() *Tracker {
	return &Tracker{dir: pagekey.Forward}
}

// Intent returns the current navigation intent.
func (t *Tracker) Intent() pagekey.NavIntent {
	return pagekey.NavIntent{Direction: t.dir, Streak: t.streak, Generation: t.generation}
}

func (t *Tracker) Generation() uint64 { return t.generation }

// OnZoomChange and OnScaleChange both bump the generation and reset streak
// to 0; direction is left unchanged.
func (t *Tracker) OnZoomChange()  { t.bumpGenerationResetStreak() }
func (t *Tracker) OnScaleChange() { t.bumpGenerationResetStreak() }

func (t *Tracker) bumpGenerationResetStreak() {
	t.generation++
	t.streak = 0
}

// OnPageChange is a no-op if prev == next; otherwise it always bumps
// generation. A jump (|next-prev| > 1) resets the streak to 1 in the jump's
// direction regardless of the previous direction. A single step either
// extends the streak (same direction) or resets it to 1 (direction flip).
func (t *Tracker) OnPageChange(prev, next int) {
	if prev == next {
		return
	}
	t.generation++

	direction := pagekey.Forward
	if next < prev {
		direction = pagekey.Backward
	}

	diff := next - prev
	if diff < 0 {
		diff = -diff
	}
	isJump := diff > 1

	switch {
	case isJump:
		t.dir = direction
		t.streak = 1
	case t.dir == direction:
		if t.streak == 0 {
			t.streak = 1
		} else {
			t.streak++
		}
	default:
		t.dir = direction
		t.streak = 1
	}
}
