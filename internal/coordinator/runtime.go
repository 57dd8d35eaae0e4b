package coordinator

import (
	"time"

	"github.com/shiguri-01/preview-pdf/internal/cache"
	"github.com/shiguri-01/preview-pdf/internal/pagekey"
	"github.com/shiguri-01/preview-pdf/internal/perf"
	"github.com/shiguri-01/preview-pdf/internal/presenter"
	"github.com/shiguri-01/preview-pdf/internal/render"
)

// RenderRuntime owns the L1 cache, the render scheduler, and the
// perf/queue-depth bookkeeping that both depend on. It is the one piece of
// mutable state the render-side operations (§4.2-§4.3) thread through.
type RenderRuntime struct {
	l1        *cache.L1
	scheduler *render.Scheduler
	perfStats perf.Stats
	policy    render.PrefetchPolicy

	poolCanceled uint64 // cancellations recorded through AddCanceledTasks
}

// NewRenderRuntime constructs a RenderRuntime bounded by the given L1
// limits, using the default prefetch policy.
func NewRenderRuntime(l1MaxEntries, l1MemoryBudgetBytes int) *RenderRuntime {
	return &RenderRuntime{
		l1:        cache.NewL1(l1MaxEntries, l1MemoryBudgetBytes),
		scheduler: render.NewScheduler(),
		policy:    render.DefaultPrefetchPolicy(),
	}
}

// ScheduleNavigation cancels obsolete queued tasks and re-plans prefetch for
// the new cursor, bumping the canceled-tasks counter.
func (r *RenderRuntime) ScheduleNavigation(docID uint64, cursor int, intent pagekey.NavIntent, pageCount int, scale float32) {
	r.scheduler.ScheduleNavigation(docID, cursor, intent, pageCount, scale, r.policy)
	r.syncCanceledTasks()
	r.syncQueueDepth()
}

// ResetPrefetch clears the scheduler entirely and replans, used on zoom or
// scale changes where the old plan's scale is no longer meaningful.
func (r *RenderRuntime) ResetPrefetch(docID uint64, cursor int, intent pagekey.NavIntent, pageCount int, scale float32) {
	r.scheduler.ResetPrefetch(docID, cursor, intent, pageCount, scale, r.policy)
	r.syncCanceledTasks()
	r.syncQueueDepth()
}

// PopNextPrefetchTask pops the next highest-ranked queued task, if any.
func (r *RenderRuntime) PopNextPrefetchTask() (pagekey.RenderTask, bool) {
	task, ok := r.scheduler.NextTask()
	r.syncQueueDepth()
	return task, ok
}

// HasCachedFrame reports whether key's rasterized frame is already in L1.
func (r *RenderRuntime) HasCachedFrame(key pagekey.PageKey) bool { return r.l1.Contains(key) }

// IngestRenderedFrame records a completed render's timing and inserts its
// frame into L1.
func (r *RenderRuntime) IngestRenderedFrame(key pagekey.PageKey, frame pagekey.RgbaFrame, elapsed time.Duration) {
	r.perfStats.RecordRender(elapsed)
	r.l1.Insert(key, frame, true)
	r.perfStats.SetL1HitRate(r.l1.HitRate())
}

// SetQueueDepthWithInFlight publishes the scheduler's queue length plus the
// render pool's in-flight count as the displayed queue depth.
func (r *RenderRuntime) SetQueueDepthWithInFlight(inFlight int) {
	r.perfStats.SetQueueDepth(r.scheduler.Len() + inFlight)
}

func (r *RenderRuntime) syncQueueDepth() { r.perfStats.SetQueueDepth(r.scheduler.Len()) }

// syncCanceledTasks republishes the canceled-task total: the scheduler's
// cumulative queue-level count plus the in-flight cancellations recorded
// through AddCanceledTasks.
func (r *RenderRuntime) syncCanceledTasks() {
	r.perfStats.CanceledTasks = r.scheduler.CanceledTasks() + r.poolCanceled
}

// AddCanceledTasks records additional canceled tasks observed outside the
// scheduler itself (in-flight preemption, stale-prefetch cancellation in the
// render pool).
func (r *RenderRuntime) AddCanceledTasks(n int) {
	r.poolCanceled += uint64(n)
	r.perfStats.AddCanceledTasks(n)
}

// PerfStats returns the runtime's accumulated render-path metrics.
func (r *RenderRuntime) PerfStats() perf.Stats { return r.perfStats }

// AbsorbPresenterMetrics merges the presenter's convert/blit/L2 metrics into
// the runtime's perf snapshot, leaving the render path untouched.
func (r *RenderRuntime) AbsorbPresenterMetrics(p perf.Stats) { r.perfStats.AbsorbPresenterMetrics(p) }

// TryPrepareCurrentPageFromCache looks up key in L1; on a hit it prepares
// the presenter frame (cropping/panning as needed) and hands it to the
// facade as the current frame. It reports whether L1 held the frame.
func (r *RenderRuntime) TryPrepareCurrentPageFromCache(facade *presenter.Facade, key pagekey.PageKey, viewport pagekey.Viewport, pan *pagekey.PanOffset, cellPx [2]uint32, enableCrop bool, generation uint64) bool {
	frame, ok := r.l1.Get(key)
	r.perfStats.SetL1HitRate(r.l1.HitRate())
	if !ok {
		return false
	}
	prepared, panForPresenter := presenter.PreparePresenterFrame(frame, viewport, pan, cellPx, enableCrop)
	l2Key := pagekey.L2Key{Rendered: key, Viewport: viewport, Pan: panForPresenter}
	facade.Prepare(l2Key, prepared, generation)
	return true
}

// TryPrefetchEncodeFromCache mirrors TryPrepareCurrentPageFromCache for a
// prefetch candidate: on an L1 hit it submits the (possibly cropped) frame
// to the presenter at the given prefetch class, rather than as the current
// frame.
func (r *RenderRuntime) TryPrefetchEncodeFromCache(facade *presenter.Facade, key pagekey.PageKey, viewport pagekey.Viewport, pan *pagekey.PanOffset, cellPx [2]uint32, enableCrop bool, area presenter.PixelArea, class pagekey.PrefetchClass, generation uint64) bool {
	frame, ok := r.l1.Get(key)
	r.perfStats.SetL1HitRate(r.l1.HitRate())
	if !ok {
		return false
	}
	prepared, panForPresenter := presenter.PreparePresenterFrame(frame, viewport, pan, cellPx, enableCrop)
	l2Key := pagekey.L2Key{Rendered: key, Viewport: viewport, Pan: panForPresenter}
	facade.PrefetchEncode(l2Key, prepared, area, class, generation)
	return true
}
