package history

import (
	"testing"

	"github.com/shiguri-01/preview-pdf/internal/pagekey"
)

func key(page int) pagekey.PageKey {
	return pagekey.NewPageKey(1, page, 1.0)
}

func TestVisitDeduplicatesConsecutiveEntries(t *testing.T) {
	h := New()
	h.Visit(key(0))
	h.Visit(key(0))
	if h.Len() != 1 {
		t.Fatalf("consecutive duplicate visits should not grow history, got len=%d", h.Len())
	}
}

func TestBackAndForwardWalkTheStack(t *testing.T) {
	h := New()
	h.Visit(key(0))
	h.Visit(key(1))
	h.Visit(key(2))

	got, ok := h.Back()
	if !ok || got != key(1) {
		t.Fatalf("first Back should land on page 1, got %+v ok=%v", got, ok)
	}
	got, ok = h.Back()
	if !ok || got != key(0) {
		t.Fatalf("second Back should land on page 0, got %+v ok=%v", got, ok)
	}
	if _, ok := h.Back(); ok {
		t.Fatalf("Back at the oldest entry should report false")
	}

	got, ok = h.Forward()
	if !ok || got != key(1) {
		t.Fatalf("Forward should land on page 1, got %+v ok=%v", got, ok)
	}
}

func TestForwardWithoutPriorBackReportsFalse(t *testing.T) {
	h := New()
	h.Visit(key(0))
	if _, ok := h.Forward(); ok {
		t.Fatalf("Forward before any Back should report false")
	}
}

func TestVisitAfterBrowsingResetsCursor(t *testing.T) {
	h := New()
	h.Visit(key(0))
	h.Visit(key(1))
	h.Back()
	h.Visit(key(2))
	if _, ok := h.Forward(); ok {
		t.Fatalf("a fresh Visit should reset browsing state, Forward should report false")
	}
}

func TestSearchReturnsMatchingPageMostRecentFirst(t *testing.T) {
	h := New()
	h.Visit(pagekey.NewPageKey(1, 5, 1.0))
	h.Visit(pagekey.NewPageKey(1, 6, 1.0))
	h.Visit(pagekey.NewPageKey(1, 5, 1.5))

	matches := h.Search(5)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches for page 5, got %d", len(matches))
	}
	if matches[0].ScaleMilli != pagekey.QuantizeScale(1.5) {
		t.Fatalf("most recent match should come first, got %+v", matches[0])
	}
}
