package presenter

import (
	"testing"
	"time"

	"github.com/shiguri-01/preview-pdf/internal/pagekey"
)

type fakeBlitter struct {
	caps Capabilities
	info RuntimeInfo
}

func (f fakeBlitter) Blit(Protocol, PixelArea) (bool, error) { return true, nil }
func (f fakeBlitter) Capabilities() Capabilities             { return f.caps }
func (f fakeBlitter) RuntimeInfo() RuntimeInfo               { return f.info }

type stubBackend struct{}

func (stubBackend) Encode(frame pagekey.RgbaFrame, area PixelArea) (Protocol, error) {
	return "encoded", nil
}

func newTestFacade() *Facade {
	l2 := NewL2Cache(DefaultMaxEntries, DefaultMemoryBudgetBytes)
	enc := NewEncoder(stubBackend{})
	blit := fakeBlitter{caps: Capabilities{BackendName: "halfblocks", CellPx: [2]uint32{8, 16}, PreferredMaxRenderScale: 1.0}}
	return NewFacade(l2, enc, blit)
}

func frame(w, h int) pagekey.RgbaFrame {
	buf := make([]byte, w*h*4)
	return pagekey.RgbaFrame{Width: uint32(w), Height: uint32(h), Pixels: &buf}
}

func TestRenderDrivesPendingFrameThroughToReady(t *testing.T) {
	f := newTestFacade()
	key := pagekey.L2Key{Rendered: pagekey.PageKey{DocID: 1, PageIndex: 0}}
	f.Prepare(key, frame(4, 4), 1)

	drawn, err := f.Render(PixelArea{WidthPx: 80, HeightPx: 160})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drawn {
		t.Fatalf("expected not-yet-drawn on first Render (still Encoding)")
	}

	deadline := time.After(time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for encode result")
		default:
		}
		if f.DrainBackgroundEvents() {
			break
		}
		time.Sleep(time.Millisecond)
	}

	drawn, err = f.Render(PixelArea{WidthPx: 80, HeightPx: 160})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !drawn {
		t.Fatalf("expected frame to be drawn once encoded")
	}
}

func TestStaleCancelDropsEncodingEntry(t *testing.T) {
	f := newTestFacade()
	key := pagekey.L2Key{Rendered: pagekey.PageKey{DocID: 1, PageIndex: 2}}
	f.Prepare(key, frame(2, 2), 1)

	entry, ok := f.l2.CachedMut(key)
	if !ok {
		t.Fatalf("expected an L2 entry after Prepare")
	}
	entry.State = Encoding

	f.encoder.staleCh <- key
	f.DrainBackgroundEvents()

	if _, ok := f.l2.CachedMut(key); ok {
		t.Fatalf("stale-canceled Encoding entry should be dropped from L2")
	}
}

func TestRenderSurfacesFailedEntry(t *testing.T) {
	f := newTestFacade()
	key := pagekey.L2Key{Rendered: pagekey.PageKey{DocID: 1, PageIndex: 3}}
	f.Prepare(key, frame(2, 2), 1)

	entry, _ := f.l2.CachedMut(key)
	entry.State = Failed

	drawn, err := f.Render(PixelArea{WidthPx: 80, HeightPx: 160})
	if drawn {
		t.Fatalf("a Failed entry must not report drawn")
	}
	if err == nil {
		t.Fatalf("a Failed entry should surface an error for the status line")
	}
}

func TestRenderReportsNotDrawnWithoutCurrentFrame(t *testing.T) {
	f := newTestFacade()
	drawn, err := f.Render(PixelArea{WidthPx: 80, HeightPx: 160})
	if err != nil || drawn {
		t.Fatalf("expected (false, nil) with no current frame, got (%v, %v)", drawn, err)
	}
}

func TestRenderReportsNotDrawnOnZeroArea(t *testing.T) {
	f := newTestFacade()
	key := pagekey.L2Key{Rendered: pagekey.PageKey{DocID: 1, PageIndex: 0}}
	f.Prepare(key, frame(2, 2), 1)
	drawn, err := f.Render(PixelArea{})
	if err != nil || drawn {
		t.Fatalf("expected (false, nil) on zero area, got (%v, %v)", drawn, err)
	}
}
