// Package presenter implements the encode worker pool and the L2 cache of
// encoded terminal-protocol entries (C5), plus the capability-set interface
// the out-of-scope terminal graphics encoder must satisfy.
package presenter

import (
	"github.com/shiguri-01/preview-pdf/internal/cache"
	"github.com/shiguri-01/preview-pdf/internal/pagekey"
)

// FrameState is the four-valued L2 entry state machine. Apart from a Ready
// entry turning Failed when its blit fails, an entry leaves Ready or Failed
// only by removal or eviction; Prepare never replaces an existing entry.
type FrameState int

const (
	// PendingFrame holds the raw raster frame awaiting an encode request.
	PendingFrame FrameState = iota
	// Encoding means a matching request has been dispatched to the encoder.
	Encoding
	// Ready holds the encoded protocol handle, opaque to this package.
	Ready
	// Failed means the encoder reported an error, or blitting the encoded
	// frame failed. (A stale-canceled Encoding entry is removed instead.)
	Failed
)

// Protocol is the opaque encoded terminal-graphics payload produced by the
// out-of-scope encoder backend (ratatui_image-equivalent). This package never
// inspects it.
type Protocol any

// FrameEntry is an L2 cache entry: its state-machine value and its
// approximate byte footprint (used for the cache's byte budget).
type FrameEntry struct {
	State       FrameState
	RawFrame    pagekey.RgbaFrame
	ProtocolVal Protocol
	ApproxBytes int
}

// L2Cache is the encoded-protocol cache: an LRU with entry-count and
// byte-budget bounds. Unlike L1, an oversize insert clears the cache and
// drops the incoming entry rather than keeping it as a sticky sole entry —
// an encoded frame that alone exceeds the budget is not worth retaining.
type L2Cache struct {
	core *cache.Generic[pagekey.L2Key, *FrameEntry]
}

// Default bounds, matching the original's L2_MAX_ENTRIES / L2_MEMORY_BUDGET_BYTES.
const (
	DefaultMaxEntries        = 96
	DefaultMemoryBudgetBytes = 64 * 1024 * 1024
)

// NewL2Cache constructs an L2Cache bounded by maxEntries and budgetBytes.
func NewL2Cache(maxEntries, budgetBytes int) *L2Cache {
	return &L2Cache{core: cache.NewGeneric[pagekey.L2Key, *FrameEntry](maxEntries, budgetBytes)}
}

// LookupMut performs an LRU-touching read, incrementing hit/miss counters.
func (c *L2Cache) LookupMut(key pagekey.L2Key) (*FrameEntry, bool) {
	return c.core.Get(key)
}

// CachedMut is a peek-only variant used internally by state transitions; it
// does not change hit/miss counters.
func (c *L2Cache) CachedMut(key pagekey.L2Key) (*FrameEntry, bool) {
	return c.core.Peek(key)
}

// Insert applies the L2 insert policy: oversize entries clear the cache and
// are dropped (not inserted); otherwise replace-then-evict-while-needed.
func (c *L2Cache) Insert(key pagekey.L2Key, entry *FrameEntry) bool {
	if entry.ApproxBytes > c.core.BudgetBytes() {
		c.core.Clear()
		return false
	}
	c.core.Set(key, entry, entry.ApproxBytes)
	c.core.EvictWhileNeeded()
	return true
}

// Remove deletes the entry for key, if present.
func (c *L2Cache) Remove(key pagekey.L2Key) bool { return c.core.Remove(key) }

// Clear empties the cache, returning the count removed.
func (c *L2Cache) Clear() int { return c.core.Clear() }

// Len returns the number of live entries.
func (c *L2Cache) Len() int { return c.core.Len() }

// MemoryBytes returns the sum of approx_bytes across live entries.
func (c *L2Cache) MemoryBytes() int { return c.core.MemoryBytes() }

// HitRate returns hits / (hits + misses), or 0 when there have been no
// lookups.
func (c *L2Cache) HitRate() float64 { return c.core.HitRate() }

func (c *L2Cache) Hits() uint64      { return c.core.Hits() }
func (c *L2Cache) Misses() uint64    { return c.core.Misses() }
func (c *L2Cache) Evictions() uint64 { return c.core.Evictions() }

// HasPendingWork reports whether any entry is PendingFrame or Encoding.
func (c *L2Cache) HasPendingWork() bool {
	return c.core.AnyMatches(func(e *FrameEntry) bool {
		return e != nil && (e.State == PendingFrame || e.State == Encoding)
	})
}
