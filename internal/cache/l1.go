package cache

import "github.com/shiguri-01/preview-pdf/internal/pagekey"

// L1 is the rasterized-frame cache (C2): an associative store with
// simultaneous entry-count and byte-budget bounds, an oversize override
// policy, and hit/miss/eviction counters.
type L1 struct {
	core *core[pagekey.PageKey, pagekey.RgbaFrame]
}

// NewL1 constructs an L1 cache bounded by maxEntries and budgetBytes.
func NewL1(maxEntries, budgetBytes int) *L1 {
	return &L1{core: newCore[pagekey.PageKey, pagekey.RgbaFrame](maxEntries, budgetBytes)}
}

// Get performs an LRU-touching read, incrementing hit/miss counters.
func (c *L1) Get(key pagekey.PageKey) (pagekey.RgbaFrame, bool) {
	return c.core.get(key)
}

// Contains reports presence without affecting LRU order or counters.
func (c *L1) Contains(key pagekey.PageKey) bool { return c.core.contains(key) }

// Insert applies the oversize-aware insert policy:
//
//  1. If the frame exceeds the byte budget: reject unless allowSingleOversize,
//     in which case the entire cache is cleared and the frame becomes the
//     sole entry.
//  2. If the cache is currently a single oversize entry and this insert is
//     not an override for that same key, reject without mutating — the lone
//     oversize entry is sticky against unrelated prefetches.
//  3. Otherwise replace-then-evict-while-needed, never evicting the last
//     remaining entry.
func (c *L1) Insert(key pagekey.PageKey, frame pagekey.RgbaFrame, allowSingleOversize bool) bool {
	bytes := frame.ByteLen()

	if bytes > c.core.budgetBytes {
		if !allowSingleOversize {
			return false
		}
		c.core.clear()
		c.core.set(key, frame, bytes)
		return true
	}

	if sole, ok := c.core.soleEntry(); ok && sole.bytes > c.core.budgetBytes && sole.key != key {
		return false
	}

	c.core.set(key, frame, bytes)
	c.core.evictWhileNeeded()
	return true
}

// Remove deletes the entry for key, if present.
func (c *L1) Remove(key pagekey.PageKey) bool { return c.core.remove(key) }

// RemoveDoc deletes every entry whose PageKey belongs to docID.
func (c *L1) RemoveDoc(docID uint64) int {
	removed := c.core.removeWhere(func(k pagekey.PageKey) bool { return k.DocID == docID })
	c.core.evictions += uint64(removed)
	return removed
}

// Clear empties the cache, returning the count removed.
func (c *L1) Clear() int { return c.core.clear() }

// Len returns the number of live entries.
func (c *L1) Len() int { return c.core.len() }

// MemoryBytes returns the sum of approx_bytes across live entries.
func (c *L1) MemoryBytes() int { return c.core.memoryBytes }

// HitRate returns hits / (hits + misses), or 0 when there have been no
// lookups.
func (c *L1) HitRate() float64 { return c.core.hitRate() }

// Hits, Misses, and Evictions expose the monotonically non-decreasing
// counters.
func (c *L1) Hits() uint64      { return c.core.hits }
func (c *L1) Misses() uint64    { return c.core.misses }
func (c *L1) Evictions() uint64 { return c.core.evictions }
