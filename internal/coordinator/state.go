// Package coordinator implements the single cooperative supervisor loop
// (C6): it owns every piece of mutable core state — the scheduler, both
// caches, the navigation tracker, and the presenter handle — and multiplexes
// domain events, render results, and its own timers across a biased select.
package coordinator

import "github.com/shiguri-01/preview-pdf/internal/pagekey"

// Mode distinguishes ordinary viewing from the (out-of-scope) command
// palette overlay; the coordinator still needs to know which is active so it
// can route input and redraw the right overlay.
type Mode int

const (
	ModeNormal Mode = iota
	ModePalette
)

// StatusState is the single-line status message shown in the chrome, along
// with whether it represents an error (styled differently by internal/tui).
type StatusState struct {
	Message string
	IsError bool
}

// CacheRefs names the caches for display in the status line / debug overlay.
// Neither field is a live handle — the coordinator owns the real caches
// directly — this only carries their display names.
type CacheRefs struct {
	L1Name string
	L2Name string
}

// AppState is the coordinator's view-facing state: the user's navigation
// position and the chrome's transient fields. Everything else mutable
// (scheduler, caches, NavTracker, worker pools) lives on Coordinator itself.
type AppState struct {
	CurrentPage int
	Zoom        float32
	ScrollX     int
	ScrollY     int
	Mode        Mode
	Status      StatusState
	Caches      CacheRefs
}

// NewAppState returns the initial state: page 0, zoom 1.0, no scroll.
func NewAppState() AppState {
	return AppState{Zoom: 1.0, Mode: ModeNormal}
}

func (s AppState) pan() pagekey.PanOffset {
	return pagekey.PanOffset{X: s.ScrollX, Y: s.ScrollY}
}
