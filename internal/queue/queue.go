// Package queue implements the priority + FIFO queue (C1): an ordered
// collection of tasks keyed by an opaque comparable K, ranked by
// prefetch class, then generation, then insertion order.
package queue

import (
	"container/heap"

	"github.com/shiguri-01/preview-pdf/internal/pagekey"
)

// Meta is the scheduling metadata attached to every queued task.
type Meta[K comparable] struct {
	Key        K
	Class      pagekey.PrefetchClass
	Generation uint64
}

type item[K comparable, T any] struct {
	task    T
	meta    Meta[K]
	ordinal uint64
	heapIdx int
}

type itemHeap[K comparable, T any] []*item[K, T]

func (h itemHeap[K, T]) Len() int { return len(h) }

func (h itemHeap[K, T]) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.meta.Class != b.meta.Class {
		return a.meta.Class > b.meta.Class
	}
	if a.meta.Generation != b.meta.Generation {
		return a.meta.Generation > b.meta.Generation
	}
	return a.ordinal < b.ordinal
}

func (h itemHeap[K, T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx = i
	h[j].heapIdx = j
}

func (h *itemHeap[K, T]) Push(x any) {
	it := x.(*item[K, T])
	it.heapIdx = len(*h)
	*h = append(*h, it)
}

func (h *itemHeap[K, T]) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// Config controls de-dupe behavior. Depth-related policy knobs live in the
// render scheduler (C3), not here — this queue is domain-agnostic.
type Config struct {
	DedupeByKey bool
}

// Queue is a priority + FIFO queue of tasks keyed by K.
type Queue[K comparable, T any] struct {
	cfg     Config
	heap    itemHeap[K, T]
	byKey   map[K]*item[K, T]
	ordinal uint64
}

// New constructs an empty Queue.
func New[K comparable, T any](cfg Config) *Queue[K, T] {
	return &Queue[K, T]{
		cfg:   cfg,
		heap:  itemHeap[K, T]{},
		byKey: make(map[K]*item[K, T]),
	}
}

// Push inserts task under the given key and metadata. If de-dupe is enabled
// and the key is already queued, the push is rejected and the first accepted
// item for that key is kept.
func (q *Queue[K, T]) Push(task T, key K, class pagekey.PrefetchClass, generation uint64) bool {
	if q.cfg.DedupeByKey {
		if _, exists := q.byKey[key]; exists {
			return false
		}
	}
	it := &item[K, T]{
		task:    task,
		meta:    Meta[K]{Key: key, Class: class, Generation: generation},
		ordinal: q.ordinal,
	}
	q.ordinal++
	heap.Push(&q.heap, it)
	q.byKey[key] = it
	return true
}

// PopNext removes and returns the highest-ranked task.
func (q *Queue[K, T]) PopNext() (T, bool) {
	task, _, ok := q.PopNextWithMeta()
	return task, ok
}

// PopNextWithMeta removes and returns the highest-ranked task along with its
// scheduling metadata.
func (q *Queue[K, T]) PopNextWithMeta() (T, Meta[K], bool) {
	var zero T
	if q.heap.Len() == 0 {
		return zero, Meta[K]{}, false
	}
	it := heap.Pop(&q.heap).(*item[K, T])
	delete(q.byKey, it.meta.Key)
	return it.task, it.meta, true
}

// Retain removes every item for which pred returns false, returning the
// count removed.
func (q *Queue[K, T]) Retain(pred func(meta Meta[K]) bool) int {
	kept := q.heap[:0]
	removed := 0
	for _, it := range q.heap {
		if pred(it.meta) {
			kept = append(kept, it)
		} else {
			delete(q.byKey, it.meta.Key)
			removed++
		}
	}
	q.heap = kept
	heap.Init(&q.heap)
	return removed
}

// RetainCollect removes every item for which pred returns false, returning
// the metadata of every removed item (in no particular order).
func (q *Queue[K, T]) RetainCollect(pred func(meta Meta[K]) bool) []Meta[K] {
	kept := q.heap[:0]
	var removed []Meta[K]
	for _, it := range q.heap {
		if pred(it.meta) {
			kept = append(kept, it)
		} else {
			delete(q.byKey, it.meta.Key)
			removed = append(removed, it.meta)
		}
	}
	q.heap = kept
	heap.Init(&q.heap)
	return removed
}

// CancelStalePrefetch removes every item whose generation is less than gen,
// except items whose class is CriticalCurrent or GuardReverse — those must
// not be canceled by staleness alone.
func (q *Queue[K, T]) CancelStalePrefetch(generation uint64) int {
	return q.Retain(func(m Meta[K]) bool {
		if m.Class == pagekey.CriticalCurrent || m.Class == pagekey.GuardReverse {
			return true
		}
		return m.Generation >= generation
	})
}

// Clear removes every item, returning the count removed.
func (q *Queue[K, T]) Clear() int {
	n := q.heap.Len()
	q.heap = itemHeap[K, T]{}
	q.byKey = make(map[K]*item[K, T])
	return n
}

// Len returns the number of queued items.
func (q *Queue[K, T]) Len() int { return q.heap.Len() }

// IsEmpty reports whether the queue has no items.
func (q *Queue[K, T]) IsEmpty() bool { return q.heap.Len() == 0 }

// ContainsKey reports whether a task is currently queued for key.
func (q *Queue[K, T]) ContainsKey(key K) bool {
	_, ok := q.byKey[key]
	return ok
}

// RemoveKey removes the queued item for key, if any, returning whether one
// was removed. Used by the encoder to make room for a fresher CriticalCurrent
// request ahead of a stale queued one.
func (q *Queue[K, T]) RemoveKey(key K) bool {
	if _, ok := q.byKey[key]; !ok {
		return false
	}
	removed := q.Retain(func(m Meta[K]) bool { return m.Key != key })
	return removed > 0
}
