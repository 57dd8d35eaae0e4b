package coordinator

import (
	"fmt"
	"os"
	"time"

	"github.com/shiguri-01/preview-pdf/internal/event"
	"github.com/shiguri-01/preview-pdf/internal/extension"
	"github.com/shiguri-01/preview-pdf/internal/pagekey"
	"github.com/shiguri-01/preview-pdf/internal/presenter"
	"github.com/shiguri-01/preview-pdf/internal/render"
	"github.com/shiguri-01/preview-pdf/internal/scale"
)

const ansiHomeClear = "\x1b[H\x1b[2J"

func ms(n int64) time.Duration { return time.Duration(n) * time.Millisecond }

// LoopStep is the per-iteration snapshot buildLoopStep derives once at the
// top of the loop, so the rest of the pass reads a single consistent view of
// "where are we now" instead of recomputing it from several mutable fields.
type LoopStep struct {
	CurrentScale     float32
	CurrentKey       pagekey.PageKey
	CurrentCached    bool
	HasViewport      bool
	PrefetchViewport pagekey.Viewport
	BasePan          pagekey.PanOffset
	EnableCrop       bool
	Interactive      bool
}

// Run drives the coordinator loop until a quit command, an unrecoverable
// error, or the input reader closing. It always restores the terminal
// session before returning, including on error.
func (c *Coordinator) Run() error {
	if c.state.CurrentPage >= c.pageCount {
		c.state.CurrentPage = c.pageCount - 1
	}
	if c.state.CurrentPage < 0 {
		c.state.CurrentPage = 0
	}

	if err := c.facade.InitializeTerminal(); err != nil {
		return err
	}
	defer func() { _ = c.session.Restore() }()

	now := time.Now()
	prefetchPause := ms(c.cfg.Render.PrefetchPauseMs)
	pendingRedrawInterval := ms(c.cfg.Render.PendingRedrawIntervalMs)
	idleTimeout := ms(c.cfg.Render.InputPollTimeoutIdleMs)
	busyTimeout := ms(c.cfg.Render.InputPollTimeoutBusyMs)

	inputAct := newInputActor(now)
	uiAct := newUIActor(now, pendingRedrawInterval)

	viewport, hasViewport := currentViewport(c.session)
	var trackedScale float32
	if hasViewport {
		trackedScale = computeCurrentScale(c.doc, c.state.CurrentPage, viewport, c.state.Zoom, c.facade.Capabilities(), c.cfg.Render)
	} else {
		trackedScale = scale.QuantizeScale(c.state.Zoom)
	}
	renderAct := newRenderActor(c.state.CurrentPage, c.state.Zoom, trackedScale)
	c.runtime.ResetPrefetch(c.doc.DocID(), c.state.CurrentPage, renderAct.nav.Intent(), c.pageCount, trackedScale)
	c.history.Visit(pagekey.NewPageKey(c.doc.DocID(), c.state.CurrentPage, trackedScale))

	domainEvents := make(chan event.DomainEvent, 32)
	doneCh := make(chan struct{})
	go runInputActor(os.Stdin, domainEvents, doneCh)
	defer close(doneCh)

	prefetchTick := time.NewTicker(ms(c.cfg.Render.PrefetchTickMs))
	defer prefetchTick.Stop()
	redrawTick := time.NewTicker(pendingRedrawInterval)
	defer redrawTick.Stop()

	for {
		step := c.buildLoopStep(inputAct, prefetchPause)

		changed := c.drainBackgroundAndSyncNavigation(renderAct, step.CurrentScale)
		c.ensureCurrentTaskEnqueued(renderAct, step)
		c.dispatchPrefetchIfDue(renderAct, step)

		if err := c.updateUIAndRenderFrame(uiAct, renderAct, changed, step); err != nil {
			return err
		}

		renderBusy := c.pool.InFlightLen() > 0
		presenterBusy := c.facade.HasPendingWork()
		wakeTimeout := scale.SelectInputPollTimeout(renderBusy, presenterBusy, idleTimeout, busyTimeout)

		ev, ok := c.waitNextEvent(domainEvents, prefetchTick, redrawTick, wakeTimeout)
		if !ok {
			return nil
		}
		quit, err := c.handleWaitedEvent(ev, inputAct, renderAct, uiAct, domainEvents)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// buildLoopStep computes the current-page scale, key, and cache status once
// per pass so the rest of the iteration shares a single consistent view.
func (c *Coordinator) buildLoopStep(inputAct *inputActor, prefetchPause time.Duration) LoopStep {
	viewport, hasViewport := currentViewport(c.session)
	var currentScale float32
	if hasViewport {
		currentScale = computeCurrentScale(c.doc, c.state.CurrentPage, viewport, c.state.Zoom, c.facade.Capabilities(), c.cfg.Render)
	} else {
		currentScale = scale.QuantizeScale(c.state.Zoom)
	}

	currentKey := pagekey.NewPageKey(c.doc.DocID(), c.state.CurrentPage, currentScale)
	c.lastCurrentKey = currentKey

	step := LoopStep{
		CurrentScale:     currentScale,
		CurrentKey:       currentKey,
		CurrentCached:    c.runtime.HasCachedFrame(currentKey),
		HasViewport:      hasViewport,
		PrefetchViewport: viewport,
		BasePan:          c.state.pan(),
		EnableCrop:       c.state.Zoom > 1.0,
		Interactive:      inputAct.isInteractive(time.Now(), prefetchPause),
	}
	return step
}

// drainBackgroundAndSyncNavigation absorbs extension and presenter
// background progress, then detects zoom/scale/page changes against the
// renderActor's tracked triple and replans the scheduler accordingly. It
// reports whether anything changed that warrants a redraw.
func (c *Coordinator) drainBackgroundAndSyncNavigation(renderAct *renderActor, currentScale float32) bool {
	changed := c.extHost.DrainBackground()
	if c.facade.DrainBackgroundEvents() {
		changed = true
	}

	switch {
	case !scale.ZoomEq(c.state.Zoom, renderAct.trackedZoom):
		renderAct.nav.OnZoomChange()
		c.runtime.ResetPrefetch(c.doc.DocID(), c.state.CurrentPage, renderAct.nav.Intent(), c.pageCount, currentScale)
		renderAct.trackedZoom = c.state.Zoom
		renderAct.trackedScale = currentScale
		renderAct.trackedPage = c.state.CurrentPage
		renderAct.markPrefetchDue()
		return true
	case c.state.CurrentPage != renderAct.trackedPage:
		renderAct.nav.OnPageChange(renderAct.trackedPage, c.state.CurrentPage)
		c.runtime.ScheduleNavigation(c.doc.DocID(), c.state.CurrentPage, renderAct.nav.Intent(), c.pageCount, currentScale)
		c.history.Visit(pagekey.NewPageKey(c.doc.DocID(), c.state.CurrentPage, currentScale))
		renderAct.trackedPage = c.state.CurrentPage
		renderAct.trackedScale = currentScale
		renderAct.markPrefetchDue()
		return true
	case !scale.ScaleEq(currentScale, renderAct.trackedScale):
		renderAct.nav.OnScaleChange()
		c.runtime.ResetPrefetch(c.doc.DocID(), c.state.CurrentPage, renderAct.nav.Intent(), c.pageCount, currentScale)
		renderAct.trackedScale = currentScale
		renderAct.markPrefetchDue()
		return true
	}
	return changed
}

// ensureCurrentTaskEnqueued marks stale in-flight Lead/Background render
// tasks canceled (sparing the current key) and, unless the current page is already cached, admits it to
// the render pool — preempting a lower-priority in-flight task if the pool
// is saturated.
func (c *Coordinator) ensureCurrentTaskEnqueued(renderAct *renderActor, step LoopStep) {
	gen := renderAct.generation()
	if canceled := c.pool.CancelStalePrefetchExcept(gen, step.CurrentKey); canceled > 0 {
		c.runtime.AddCanceledTasks(canceled)
	}
	if step.CurrentCached {
		return
	}

	task := pagekey.RenderTask{Key: step.CurrentKey, Priority: pagekey.CriticalCurrent, Generation: gen, Reason: "current"}
	enqueued, preempted := c.pool.EnqueueCurrentWithPreemption(task, render.NewTaskID(), gen, step.CurrentKey)
	if preempted > 0 {
		c.runtime.AddCanceledTasks(preempted)
	}
	if !enqueued {
		c.state.Status = StatusState{Message: fmt.Sprintf("render queue busy, retrying page %d", c.state.CurrentPage+1)}
	}
}

// dispatchPrefetchIfDue pops up to the configured per-tick budget of queued
// prefetch tasks, submitting each to the render pool (on an L1 miss) or
// straight to the presenter's encode path (on an L1 hit), skipping the
// current key entirely — ensureCurrentTaskEnqueued already owns it.
func (c *Coordinator) dispatchPrefetchIfDue(renderAct *renderActor, step LoopStep) {
	if step.Interactive || !step.CurrentCached {
		return
	}
	if !renderAct.takePrefetchDue() {
		return
	}

	budget := c.cfg.Render.PrefetchDispatchBudgetPerTick
	caps := c.facade.Capabilities()
	for budget > 0 && c.pool.AvailableSlots() > 0 {
		task, ok := c.runtime.PopNextPrefetchTask()
		if !ok {
			break
		}
		if task.Key == step.CurrentKey {
			continue
		}
		budget--

		if !c.runtime.HasCachedFrame(task.Key) {
			c.pool.Enqueue(task, render.NewTaskID())
			continue
		}
		if !step.HasViewport {
			continue
		}
		pan := step.BasePan
		area := presenter.AreaForViewport(step.PrefetchViewport, caps.CellPx[0], caps.CellPx[1])
		c.runtime.TryPrefetchEncodeFromCache(c.facade, task.Key, step.PrefetchViewport, &pan, caps.CellPx, step.EnableCrop, area, task.Priority, task.Generation)
	}
	c.runtime.SetQueueDepthWithInFlight(c.pool.InFlightLen())
}

// updateUIAndRenderFrame decides whether this pass needs a redraw — either
// something already flagged it, or the page is still loading and the
// pending-redraw clock elapsed — and if so draws one full frame.
func (c *Coordinator) updateUIAndRenderFrame(uiAct *uiActor, renderAct *renderActor, changed bool, step LoopStep) error {
	if changed {
		uiAct.markRedraw()
	}
	// A zero-width or zero-height viewport skips rendering for this tick
	// entirely: no screen clear, no blit, and the redraw flag stays armed so
	// the next tick with usable space draws.
	if !step.HasViewport {
		return nil
	}

	now := time.Now()
	renderBusy := c.pool.InFlightLen() > 0
	presenterBusy := c.facade.HasPendingWork()

	if uiAct.shouldRequestPendingRedraw(now, step.CurrentCached, renderBusy, presenterBusy) {
		uiAct.markRedraw()
	}
	if !uiAct.needsRedrawNow() {
		return nil
	}

	if _, err := fmt.Fprint(c.out, ansiHomeClear); err != nil {
		return err
	}
	viewport := step.PrefetchViewport
	var paletteItems []string
	if c.state.Mode == ModePalette {
		paletteItems = []string{"next-page", "prev-page", "first-page", "last-page", "zoom-in", "zoom-out", "zoom-reset", "quit"}
	}
	if err := renderFrame(c.out, &c.state, c.runtime, c.facade, c.doc, c.pageCount, viewport, step.CurrentScale, renderAct.generation(), paletteItems); err != nil {
		return err
	}

	uiAct.clearRedraw()
	if !step.CurrentCached {
		uiAct.onDrawnNonCachedPage(now)
	}
	return nil
}

// waitNextEvent multiplexes the five event sources named in spec §4.6(g).
// Go's select has no native bias, so priority is hand-emulated: two leading
// non-blocking pre-checks favor the domain-event queue, then render results,
// before falling into one blocking select that still covers all five sources
// as a safety net.
func (c *Coordinator) waitNextEvent(domainEvents <-chan event.DomainEvent, prefetchTick, redrawTick *time.Ticker, timeout time.Duration) (event.DomainEvent, bool) {
	select {
	case ev, ok := <-domainEvents:
		if !ok {
			return event.DomainEvent{}, false
		}
		return ev, true
	default:
	}
	select {
	case res, ok := <-c.pool.Results():
		if ok {
			return event.NewRenderComplete(res), true
		}
	default:
	}

	select {
	case ev, ok := <-domainEvents:
		if !ok {
			return event.DomainEvent{}, false
		}
		return ev, true
	case res, ok := <-c.pool.Results():
		if !ok {
			return event.DomainEvent{}, false
		}
		return event.NewRenderComplete(res), true
	case <-prefetchTick.C:
		return event.NewPrefetchTick(), true
	case <-redrawTick.C:
		return event.NewRedrawTick(), true
	case <-time.After(timeout):
		return event.NewWake(), true
	}
}

// handleWaitedEvent dispatches on ev.Kind, reporting whether the loop should
// quit.
func (c *Coordinator) handleWaitedEvent(ev event.DomainEvent, inputAct *inputActor, renderAct *renderActor, uiAct *uiActor, domainEvents chan<- event.DomainEvent) (bool, error) {
	switch ev.Kind {
	case event.KindInput:
		inputAct.touch(time.Now())
		return c.handleInput(ev.RawKey, uiAct, domainEvents)

	case event.KindInputError:
		c.state.Status = StatusState{Message: "input closed: " + ev.InputErrMsg, IsError: true}
		uiAct.markRedraw()
		return true, nil

	case event.KindCommand:
		quit := c.dispatchCommand(ev.Cmd, ev.CmdArg)
		uiAct.markRedraw()
		return quit, nil

	case event.KindApplication:
		uiAct.markRedraw()

	case event.KindRenderComplete:
		if c.processRenderResult(ev.RenderResult) {
			uiAct.markRedraw()
		}

	case event.KindPrefetchTick:
		renderAct.markPrefetchDue()

	case event.KindRedrawTick:
		uiAct.markRedraw()

	case event.KindWake:
		// nothing to do; the top of the loop will re-poll everything.
	}
	return false, nil
}

// handleInput offers raw to the extension host first; only if no extension
// consumes or translates it does the coordinator's own keymap resolve it.
func (c *Coordinator) handleInput(raw string, uiAct *uiActor, domainEvents chan<- event.DomainEvent) (bool, error) {
	outcome := c.extHost.HandleInput(raw)
	switch outcome.Kind {
	case extension.Consumed:
		uiAct.markRedraw()
		return false, nil
	case extension.EmitCommand:
		quit := c.dispatchCommand(outcome.Command, 0)
		uiAct.markRedraw()
		return quit, nil
	}

	cmd := c.keymap.Resolve(raw)
	if cmd == event.CommandNone {
		return false, nil
	}
	quit := c.dispatchCommand(cmd, 0)
	uiAct.markRedraw()
	return quit, nil
}

// processRenderResult accepts a render-worker result against the in-flight
// table (dropping stale/preempted results silently) and, on success, ingests
// the frame into L1. It reports whether the just-rendered key is the page
// currently on screen, so the caller knows to redraw.
func (c *Coordinator) processRenderResult(res render.ResultEvent) bool {
	accepted, ok := c.pool.AcceptResult(res)
	if !ok {
		return false
	}
	c.runtime.SetQueueDepthWithInFlight(c.pool.InFlightLen())

	isCurrent := accepted.Key == c.lastCurrentKey
	if accepted.Err != nil {
		if isCurrent {
			c.state.Status = StatusState{Message: "render error: " + accepted.Err.Error(), IsError: true}
		}
		return isCurrent
	}
	c.runtime.IngestRenderedFrame(accepted.Key, accepted.Frame, accepted.Elapsed)
	return isCurrent
}

// dispatchCommand applies cmd to AppState, reporting whether it requests
// quitting the loop.
func (c *Coordinator) dispatchCommand(cmd event.Command, arg int) bool {
	switch cmd {
	case event.CommandQuit:
		return true
	case event.CommandNextPage:
		if c.state.CurrentPage < c.pageCount-1 {
			c.state.CurrentPage++
		}
	case event.CommandPrevPage:
		if c.state.CurrentPage > 0 {
			c.state.CurrentPage--
		}
	case event.CommandFirstPage:
		c.state.CurrentPage = 0
	case event.CommandLastPage:
		c.state.CurrentPage = c.pageCount - 1
	case event.CommandGotoPage:
		if arg >= 0 && arg < c.pageCount {
			c.state.CurrentPage = arg
		}
	case event.CommandZoomIn:
		c.state.Zoom *= 1.25
	case event.CommandZoomOut:
		if next := c.state.Zoom / 1.25; next >= scale.MinRenderScale {
			c.state.Zoom = next
		}
	case event.CommandZoomReset:
		c.state.Zoom = 1.0
		c.state.ScrollX, c.state.ScrollY = 0, 0
	case event.CommandPanUp:
		c.state.ScrollY--
	case event.CommandPanDown:
		c.state.ScrollY++
	case event.CommandPanLeft:
		c.state.ScrollX--
	case event.CommandPanRight:
		c.state.ScrollX++
	case event.CommandOpenPalette:
		if c.state.Mode == ModePalette {
			c.state.Mode = ModeNormal
		} else {
			c.state.Mode = ModePalette
		}
	case event.CommandSearch:
		// search UI is out of scope; the extension host owns any real
		// implementation and would have emitted a different command.
	}
	return false
}
