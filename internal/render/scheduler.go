// Package render implements the render scheduler (C3) and the render worker
// pool (C4).
package render

import (
	"github.com/google/uuid"

	"github.com/shiguri-01/preview-pdf/internal/pagekey"
	"github.com/shiguri-01/preview-pdf/internal/queue"
)

// PrefetchPolicy controls how deep and how far back the scheduler plans.
type PrefetchPolicy struct {
	MaxPrefetchDepth  int
	GuardReverseDepth int
}

// DefaultPrefetchPolicy matches the original's defaults: three-deep lookahead
// and a single reverse guard page.
func DefaultPrefetchPolicy() PrefetchPolicy {
	return PrefetchPolicy{MaxPrefetchDepth: 3, GuardReverseDepth: 1}
}

func (p PrefetchPolicy) effectiveMaxDepth() int {
	if p.MaxPrefetchDepth < 1 {
		return 1
	}
	return p.MaxPrefetchDepth
}

func (p PrefetchPolicy) effectiveGuardDepth() int {
	if p.GuardReverseDepth < 0 {
		return 0
	}
	return p.GuardReverseDepth
}

// DynamicDepth scales prefetch depth with the user's navigation streak: a
// brand-new or single-step streak only looks one page ahead, a sustained
// streak looks three.
func DynamicDepth(streak int) int {
	switch {
	case streak <= 1:
		return 1
	case streak <= 4:
		return 2
	default:
		return 3
	}
}

// Scheduler wraps the priority queue (C1) with domain-specific prefetch plan
// construction and obsolescence detection.
type Scheduler struct {
	queue         *queue.Queue[pagekey.PageKey, pagekey.RenderTask]
	canceledTasks uint64
}

// NewScheduler constructs an empty Scheduler. De-dupe by key is always on:
// the render pipeline never wants two queued tasks for the same PageKey.
func NewScheduler() *Scheduler {
	return &Scheduler{queue: queue.New[pagekey.PageKey, pagekey.RenderTask](queue.Config{DedupeByKey: true})}
}

func sign(dir pagekey.Direction) int {
	if dir == pagekey.Backward {
		return -1
	}
	return 1
}

// Enqueue pushes task into the scheduling queue.
func (s *Scheduler) Enqueue(task pagekey.RenderTask) bool {
	return s.queue.Push(task, task.Key, task.Priority, task.Generation)
}

// NextTask pops the highest-ranked queued task.
func (s *Scheduler) NextTask() (pagekey.RenderTask, bool) {
	return s.queue.PopNext()
}

// Len, IsEmpty, and CanceledTasks expose queue and counter state.
func (s *Scheduler) Len() int                           { return s.queue.Len() }
func (s *Scheduler) IsEmpty() bool                      { return s.queue.IsEmpty() }
func (s *Scheduler) CanceledTasks() uint64              { return s.canceledTasks }
func (s *Scheduler) ContainsKey(k pagekey.PageKey) bool { return s.queue.ContainsKey(k) }

// Clear empties the queue, returning the count removed.
func (s *Scheduler) Clear() int { return s.queue.Clear() }

// CancelStalePrefetch removes every queued item whose generation is less
// than gen, except CriticalCurrent and GuardReverse classes.
func (s *Scheduler) CancelStalePrefetch(gen uint64) int {
	n := s.queue.CancelStalePrefetch(gen)
	s.canceledTasks += uint64(n)
	return n
}

// ShouldCancel is the obsolescence predicate applied to every queued task
// during CancelObsolete.
func ShouldCancel(meta queue.Meta[pagekey.PageKey], intent pagekey.NavIntent, scale float32) bool {
	if meta.Key.ScaleMilli != pagekey.QuantizeScale(scale) {
		return true
	}
	if meta.Generation >= intent.Generation {
		return false
	}
	if intent.Streak == 0 {
		return true
	}
	return meta.Class == pagekey.DirectionalLead || meta.Class == pagekey.Background
}

// CancelObsolete removes every queued task that ShouldCancel deems obsolete
// given the current navigation intent and scale.
func (s *Scheduler) CancelObsolete(intent pagekey.NavIntent, scale float32) int {
	removed := s.queue.Retain(func(meta queue.Meta[pagekey.PageKey]) bool {
		return !ShouldCancel(meta, intent, scale)
	})
	s.canceledTasks += uint64(removed)
	return removed
}

func (s *Scheduler) pushRelative(docID uint64, cursor, offset, direction, pageCount int, scale float32, class pagekey.PrefetchClass, generation uint64, reason string) {
	pos := cursor + offset*direction
	if pos < 0 || pos >= pageCount {
		return
	}
	key := pagekey.NewPageKey(docID, pos, scale)
	task := pagekey.RenderTask{Key: key, Priority: class, Generation: generation, Reason: reason}
	s.Enqueue(task)
}

// BuildPrefetchPlan enqueues the full directional prefetch plan for cursor
// given the current navigation intent, page count, doc id, scale, and
// policy. See spec §4.3 for the exact emission order.
func (s *Scheduler) BuildPrefetchPlan(docID uint64, cursor int, intent pagekey.NavIntent, pageCount int, scale float32, policy PrefetchPolicy) {
	maxDepth := policy.effectiveMaxDepth()
	guardDepth := policy.effectiveGuardDepth()
	depth := DynamicDepth(intent.Streak)
	if depth > maxDepth {
		depth = maxDepth
	}
	dir := sign(intent.Direction)
	gen := intent.Generation

	if cursor >= 0 && cursor < pageCount {
		key := pagekey.NewPageKey(docID, cursor, scale)
		s.Enqueue(pagekey.RenderTask{Key: key, Priority: pagekey.CriticalCurrent, Generation: gen, Reason: "current"})
	}

	s.pushRelative(docID, cursor, 1, dir, pageCount, scale, pagekey.DirectionalLead, gen, "lead+1")

	for i := 1; i <= guardDepth; i++ {
		s.pushRelative(docID, cursor, i, -dir, pageCount, scale, pagekey.GuardReverse, gen, guardReason(i))
	}

	for i := 2; i <= depth; i++ {
		s.pushRelative(docID, cursor, i, dir, pageCount, scale, pagekey.DirectionalLead, gen, leadReason(i))
	}

	if depth >= 3 {
		behind := guardDepth
		if behind < 1 {
			behind = 1
		}
		s.pushRelative(docID, cursor, behind+1, -dir, pageCount, scale, pagekey.Background, gen, "background-reverse")
	}
}

func guardReason(i int) string {
	switch i {
	case 1:
		return "guard-1"
	case 2:
		return "guard-2"
	default:
		return "guard-n"
	}
}

func leadReason(i int) string {
	switch i {
	case 2:
		return "lead+2"
	case 3:
		return "lead+3"
	default:
		return "lead+n"
	}
}

// ScheduleNavigation cancels obsolete tasks and re-plans for the new cursor.
func (s *Scheduler) ScheduleNavigation(docID uint64, cursor int, intent pagekey.NavIntent, pageCount int, scale float32, policy PrefetchPolicy) {
	s.CancelObsolete(intent, scale)
	s.BuildPrefetchPlan(docID, cursor, intent, pageCount, scale, policy)
}

// ResetPrefetch clears the queue entirely and enqueues a fresh plan; used on
// zoom/scale changes.
func (s *Scheduler) ResetPrefetch(docID uint64, cursor int, intent pagekey.NavIntent, pageCount int, scale float32, policy PrefetchPolicy) {
	n := s.Clear()
	s.canceledTasks += uint64(n)
	s.BuildPrefetchPlan(docID, cursor, intent, pageCount, scale, policy)
}

// NewTaskID mints a fresh render task id.
func NewTaskID() string { return uuid.NewString() }
