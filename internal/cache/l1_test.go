package cache

import (
	"testing"

	"github.com/shiguri-01/preview-pdf/internal/pagekey"
)

func frame(bytes int) pagekey.RgbaFrame {
	buf := make([]byte, bytes)
	return pagekey.RgbaFrame{Width: uint32(bytes / 4), Height: 1, Pixels: &buf}
}

func key(page int) pagekey.PageKey {
	return pagekey.NewPageKey(1, page, 1.0)
}

func TestL1HitRateTracksLookups(t *testing.T) {
	c := NewL1(4, 1024)
	c.Insert(key(0), frame(64), false)
	c.Get(key(0))
	c.Get(key(1))
	if c.Hits() != 1 || c.Misses() != 1 {
		t.Fatalf("hits=%d misses=%d, want 1/1", c.Hits(), c.Misses())
	}
	if c.HitRate() != 0.5 {
		t.Fatalf("hit rate = %v, want 0.5", c.HitRate())
	}
}

func TestL1EvictsUnderByteBudget(t *testing.T) {
	c := NewL1(10, 100)
	c.Insert(key(0), frame(64), false)
	c.Insert(key(1), frame(64), false)
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1 after eviction", c.Len())
	}
	if c.Evictions() != 1 {
		t.Fatalf("evictions = %d, want 1", c.Evictions())
	}
	if !c.Contains(key(1)) || c.Contains(key(0)) {
		t.Fatalf("expected newest entry to survive eviction")
	}
}

func TestL1ReinsertSameKeyDoesNotDoubleCountBytes(t *testing.T) {
	c := NewL1(10, 1024)
	c.Insert(key(0), frame(64), false)
	c.Insert(key(0), frame(32), false)
	if c.MemoryBytes() != 32 {
		t.Fatalf("memory bytes = %d, want 32 after reinsert", c.MemoryBytes())
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
}

func TestL1RemoveDocRemovesAllMatchingAndCountsEvictions(t *testing.T) {
	c := NewL1(10, 1024)
	c.Insert(pagekey.NewPageKey(1, 0, 1.0), frame(16), false)
	c.Insert(pagekey.NewPageKey(1, 1, 1.0), frame(16), false)
	c.Insert(pagekey.NewPageKey(2, 0, 1.0), frame(16), false)

	removed := c.RemoveDoc(1)
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
	if c.Evictions() != 2 {
		t.Fatalf("evictions = %d, want 2", c.Evictions())
	}
}

func TestL1InsertAtCapacityEvictsOldest(t *testing.T) {
	c := NewL1(2, 1024)
	c.Insert(key(0), frame(16), false)
	c.Insert(key(1), frame(16), false)
	c.Insert(key(2), frame(16), false)
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	if c.Contains(key(0)) {
		t.Fatalf("oldest entry should have been evicted at capacity")
	}
}

func TestL1GetReturnsSharedPixelBuffer(t *testing.T) {
	c := NewL1(4, 1024)
	f := frame(16)
	c.Insert(key(0), f, false)
	got, ok := c.Get(key(0))
	if !ok {
		t.Fatalf("expected hit")
	}
	if got.Pixels != f.Pixels {
		t.Fatalf("expected shared buffer identity, got distinct pointers")
	}
}

func TestL1OversizeRejectWithoutClearing(t *testing.T) {
	c := NewL1(4, 100)
	c.Insert(key(0), frame(64), false)
	if c.Insert(key(1), frame(256), false) {
		t.Fatalf("oversize insert without override should be rejected")
	}
	if c.Len() != 1 || !c.Contains(key(0)) {
		t.Fatalf("original entry must survive a rejected oversize insert")
	}
}

func TestL1OversizeWithOverrideClearsAndInserts(t *testing.T) {
	c := NewL1(4, 100)
	c.Insert(key(0), frame(64), false)
	if !c.Insert(key(1), frame(256), true) {
		t.Fatalf("oversize insert with override should succeed")
	}
	if c.Len() != 1 || !c.Contains(key(1)) {
		t.Fatalf("cache should contain only the oversize entry after override")
	}
}

func TestL1StickyOversizeRejectsUnrelatedInsert(t *testing.T) {
	c := NewL1(4, 100)
	c.Insert(key(0), frame(64), false)
	c.Insert(key(1), frame(256), true)
	if c.Insert(key(2), frame(16), false) {
		t.Fatalf("non-oversize insert should not evict the sole oversize entry")
	}
	if !c.Contains(key(1)) || c.Len() != 1 {
		t.Fatalf("sole oversize entry should remain sticky")
	}
}

func TestL1NonOversizeOverrideOfSameKeySucceeds(t *testing.T) {
	c := NewL1(4, 100)
	c.Insert(key(0), frame(256), true)
	if !c.Insert(key(0), frame(16), false) {
		t.Fatalf("overriding the sole oversize entry's own key should succeed")
	}
	if c.MemoryBytes() != 16 {
		t.Fatalf("memory bytes = %d, want 16", c.MemoryBytes())
	}
}
