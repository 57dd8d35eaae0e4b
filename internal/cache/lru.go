// Package cache implements the budget-bounded LRU core and the L1 cache of
// rasterized frames (C2) built on it. The L2 cache of encoded terminal
// protocol entries (part of C5) lives in internal/presenter and uses the
// same core through Generic; the two layers differ only in their
// oversize-insert policy.
package cache

import "container/list"

type entry[K comparable, V any] struct {
	key   K
	value V
	bytes int
}

// core is the shared LRU bookkeeping: a move-to-front list plus a lookup map,
// with simultaneous entry-count and byte-budget bounds. It never evicts the
// last remaining entry on its own — callers decide whether an oversize-sole
// state may persist.
type core[K comparable, V any] struct {
	order       *list.List
	index       map[K]*list.Element
	memoryBytes int
	maxEntries  int
	budgetBytes int

	hits      uint64
	misses    uint64
	evictions uint64
}

func newCore[K comparable, V any](maxEntries, budgetBytes int) *core[K, V] {
	return &core[K, V]{
		order:       list.New(),
		index:       make(map[K]*list.Element),
		maxEntries:  maxEntries,
		budgetBytes: budgetBytes,
	}
}

func (c *core[K, V]) get(key K) (V, bool) {
	var zero V
	el, ok := c.index[key]
	if !ok {
		c.misses++
		return zero, false
	}
	c.hits++
	c.order.MoveToFront(el)
	return el.Value.(entry[K, V]).value, true
}

// peek looks up without mutating hit/miss counters or LRU order.
func (c *core[K, V]) peek(key K) (V, bool) {
	var zero V
	el, ok := c.index[key]
	if !ok {
		return zero, false
	}
	return el.Value.(entry[K, V]).value, true
}

func (c *core[K, V]) contains(key K) bool {
	_, ok := c.index[key]
	return ok
}

// set replaces or inserts key's entry, updating the running byte total. It
// does not evict; callers run evictWhileNeeded afterward.
func (c *core[K, V]) set(key K, value V, bytes int) {
	if el, ok := c.index[key]; ok {
		old := el.Value.(entry[K, V])
		c.memoryBytes -= old.bytes
		el.Value = entry[K, V]{key: key, value: value, bytes: bytes}
		c.memoryBytes += bytes
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(entry[K, V]{key: key, value: value, bytes: bytes})
	c.index[key] = el
	c.memoryBytes += bytes
}

// evictWhileNeeded evicts from the back of the list until both bounds are
// satisfied, but never evicts the last remaining entry.
func (c *core[K, V]) evictWhileNeeded() {
	for c.order.Len() > 1 && (c.order.Len() > c.maxEntries || c.memoryBytes > c.budgetBytes) {
		back := c.order.Back()
		e := back.Value.(entry[K, V])
		c.order.Remove(back)
		delete(c.index, e.key)
		c.memoryBytes -= e.bytes
		c.evictions++
	}
}

func (c *core[K, V]) remove(key K) bool {
	el, ok := c.index[key]
	if !ok {
		return false
	}
	e := el.Value.(entry[K, V])
	c.order.Remove(el)
	delete(c.index, key)
	c.memoryBytes -= e.bytes
	return true
}

// removeWhere removes every entry for which match returns true, returning
// the count removed. Removals here do not increment the eviction counter —
// they are explicit removals, not LRU evictions — but the caller
// (remove_doc) typically wants the same counter semantics as the original,
// so it is left to the caller to bump evictions if desired.
func (c *core[K, V]) removeWhere(match func(key K) bool) int {
	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(entry[K, V])
		if match(e.key) {
			c.order.Remove(el)
			delete(c.index, e.key)
			c.memoryBytes -= e.bytes
			removed++
		}
		el = next
	}
	return removed
}

func (c *core[K, V]) clear() int {
	n := c.order.Len()
	c.order = list.New()
	c.index = make(map[K]*list.Element)
	c.memoryBytes = 0
	return n
}

func (c *core[K, V]) len() int { return c.order.Len() }

// soleEntry returns the single entry in the cache, if exactly one is
// present.
func (c *core[K, V]) soleEntry() (entry[K, V], bool) {
	if c.order.Len() != 1 {
		return entry[K, V]{}, false
	}
	return c.order.Front().Value.(entry[K, V]), true
}

func (c *core[K, V]) hitRate() float64 {
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

func (c *core[K, V]) anyMatches(pred func(V) bool) bool {
	for el := c.order.Front(); el != nil; el = el.Next() {
		if pred(el.Value.(entry[K, V]).value) {
			return true
		}
	}
	return false
}

// Generic is the exported form of core for use by caches outside this
// package whose value type isn't pagekey.RgbaFrame (the L2 encoded-protocol
// cache, in particular).
type Generic[K comparable, V any] struct {
	*core[K, V]
}

// NewGeneric constructs a Generic LRU bounded by maxEntries and budgetBytes.
func NewGeneric[K comparable, V any](maxEntries, budgetBytes int) *Generic[K, V] {
	return &Generic[K, V]{core: newCore[K, V](maxEntries, budgetBytes)}
}

func (g *Generic[K, V]) Get(key K) (V, bool)               { return g.core.get(key) }
func (g *Generic[K, V]) Peek(key K) (V, bool)              { return g.core.peek(key) }
func (g *Generic[K, V]) Contains(key K) bool               { return g.core.contains(key) }
func (g *Generic[K, V]) Set(key K, value V, bytes int)     { g.core.set(key, value, bytes) }
func (g *Generic[K, V]) EvictWhileNeeded()                 { g.core.evictWhileNeeded() }
func (g *Generic[K, V]) Remove(key K) bool                 { return g.core.remove(key) }
func (g *Generic[K, V]) Clear() int                        { return g.core.clear() }
func (g *Generic[K, V]) Len() int                          { return g.core.len() }
func (g *Generic[K, V]) MemoryBytes() int                  { return g.core.memoryBytes }
func (g *Generic[K, V]) BudgetBytes() int                  { return g.core.budgetBytes }
func (g *Generic[K, V]) HitRate() float64                  { return g.core.hitRate() }
func (g *Generic[K, V]) Hits() uint64                      { return g.core.hits }
func (g *Generic[K, V]) Misses() uint64                    { return g.core.misses }
func (g *Generic[K, V]) Evictions() uint64                 { return g.core.evictions }
func (g *Generic[K, V]) AnyMatches(pred func(V) bool) bool { return g.core.anyMatches(pred) }
