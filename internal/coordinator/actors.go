package coordinator

import (
	"time"

	"github.com/shiguri-01/preview-pdf/internal/nav"
)

// inputActor tracks when the user last produced input, backing the
// interactive predicate that suppresses prefetch while someone is actively
// paging through the document.
type inputActor struct {
	lastInputAt time.Time
}

func newInputActor(now time.Time) *inputActor { return &inputActor{lastInputAt: now} }

func (a *inputActor) touch(now time.Time) { a.lastInputAt = now }

// isInteractive reports whether the user produced input within
// pauseAfterInput of now.
func (a *inputActor) isInteractive(now time.Time, pauseAfterInput time.Duration) bool {
	return now.Sub(a.lastInputAt) < pauseAfterInput
}

// renderActor threads the navigation tracker through the loop alongside the
// (page, zoom, scale) triple the last pass observed, and a one-shot
// "prefetch is due" flag armed by the prefetch tick.
type renderActor struct {
	nav          *nav.Tracker
	trackedPage  int
	trackedZoom  float32
	trackedScale float32
	prefetchDue  bool
}

func newRenderActor(initialPage int, initialZoom, initialScale float32) *renderActor {
	return &renderActor{
		nav:          nav.NewTracker(),
		trackedPage:  initialPage,
		trackedZoom:  initialZoom,
		trackedScale: initialScale,
		prefetchDue:  true,
	}
}

func (a *renderActor) generation() uint64 { return a.nav.Generation() }

func (a *renderActor) markPrefetchDue() { a.prefetchDue = true }

// takePrefetchDue consumes the flag, so a tick only ever fires one dispatch.
func (a *renderActor) takePrefetchDue() bool {
	due := a.prefetchDue
	a.prefetchDue = false
	return due
}

// uiActor owns the redraw flag and the pending-redraw clock: while a page is
// still loading, redraws are throttled to pendingRedrawInterval rather than
// firing on every loop pass.
type uiActor struct {
	needsRedraw           bool
	lastPendingRedraw     time.Time
	pendingRedrawInterval time.Duration
}

func newUIActor(now time.Time, pendingRedrawInterval time.Duration) *uiActor {
	return &uiActor{needsRedraw: true, lastPendingRedraw: now, pendingRedrawInterval: pendingRedrawInterval}
}

func (a *uiActor) markRedraw()          { a.needsRedraw = true }
func (a *uiActor) clearRedraw()         { a.needsRedraw = false }
func (a *uiActor) needsRedrawNow() bool { return a.needsRedraw }

func (a *uiActor) shouldRequestPendingRedraw(now time.Time, currentCached, renderBusy, presenterBusy bool) bool {
	return !currentCached && (renderBusy || presenterBusy) && now.Sub(a.lastPendingRedraw) >= a.pendingRedrawInterval
}

func (a *uiActor) onDrawnNonCachedPage(now time.Time) { a.lastPendingRedraw = now }
