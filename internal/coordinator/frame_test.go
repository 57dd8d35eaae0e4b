package coordinator

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/shiguri-01/preview-pdf/internal/backend"
	"github.com/shiguri-01/preview-pdf/internal/config"
	"github.com/shiguri-01/preview-pdf/internal/pagekey"
	"github.com/shiguri-01/preview-pdf/internal/presenter"
	"github.com/shiguri-01/preview-pdf/internal/scale"
	"github.com/shiguri-01/preview-pdf/internal/termsession"
)

type stubSizer struct {
	size termsession.Size
	err  error
}

func (s stubSizer) Size() (termsession.Size, error) { return s.size, s.err }

type stubDocument struct {
	dims    backend.PageDimensions
	dimsErr error
}

func (d stubDocument) Path() string   { return "stub.pdf" }
func (d stubDocument) DocID() uint64  { return 1 }
func (d stubDocument) PageCount() int { return 10 }
func (d stubDocument) PageDimensions(int) (backend.PageDimensions, error) {
	return d.dims, d.dimsErr
}
func (d stubDocument) RenderPage(int, float32) (pagekey.RgbaFrame, error) {
	return pagekey.RgbaFrame{}, nil
}
func (d stubDocument) ExtractText(int) (string, error) { return "", nil }
func (d stubDocument) Close() error                    { return nil }

func TestCurrentViewportReservesChromeRow(t *testing.T) {
	vp, ok := currentViewport(stubSizer{size: termsession.Size{Rows: 40, Cols: 120}})
	if !ok {
		t.Fatalf("expected a usable viewport")
	}
	if vp.Rows != 40-chromeRows || vp.Cols != 120 {
		t.Fatalf("viewport = %+v, want rows=%d cols=120", vp, 40-chromeRows)
	}
}

func TestCurrentViewportRejectsZeroUsableSpace(t *testing.T) {
	cases := map[string]termsession.Size{
		"rows consumed by chrome": {Rows: chromeRows, Cols: 80},
		"zero rows":               {Rows: 0, Cols: 80},
		"zero cols":               {Rows: 40, Cols: 0},
	}
	for name, size := range cases {
		if _, ok := currentViewport(stubSizer{size: size}); ok {
			t.Fatalf("%s: expected no usable viewport for %+v", name, size)
		}
	}
}

func TestCurrentViewportRejectsOnSizeError(t *testing.T) {
	if _, ok := currentViewport(stubSizer{err: errors.New("no tty")}); ok {
		t.Fatalf("a size query failure should yield no viewport")
	}
}

func TestComputeCurrentScaleHonorsPresenterCap(t *testing.T) {
	doc := stubDocument{dims: backend.PageDimensions{WidthPt: 612, HeightPt: 792}}
	viewport := pagekey.Viewport{Rows: 40, Cols: 100}
	cfg := config.Default().Render

	halfblocks := presenter.Capabilities{CellPx: [2]uint32{8, 16}, PreferredMaxRenderScale: 1.0}
	if got := computeCurrentScale(doc, 0, viewport, 1.0, halfblocks, cfg); got > 1.0 {
		t.Fatalf("halfblocks hint should cap the scale at 1.0, got %v", got)
	}

	kitty := presenter.Capabilities{CellPx: [2]uint32{8, 16}, PreferredMaxRenderScale: 2.5}
	got := computeCurrentScale(doc, 0, viewport, 1.0, kitty, cfg)
	if got <= 1.0 || got > cfg.MaxRenderScale {
		t.Fatalf("scale = %v, want within (1.0, %v]", got, cfg.MaxRenderScale)
	}
}

func TestComputeCurrentScaleFallsBackOnDimensionError(t *testing.T) {
	doc := stubDocument{dimsErr: errors.New("no page tree")}
	viewport := pagekey.Viewport{Rows: 40, Cols: 100}
	caps := presenter.Capabilities{CellPx: [2]uint32{8, 16}, PreferredMaxRenderScale: 2.5}
	got := computeCurrentScale(doc, 0, viewport, 1.0, caps, config.Default().Render)
	if got < scale.MinRenderScale {
		t.Fatalf("scale = %v, want at least the minimum render scale", got)
	}
}

func TestUpdateUIAndRenderFrameSkipsTickWithoutViewport(t *testing.T) {
	var out bytes.Buffer
	c := &Coordinator{out: &out}
	uiAct := newUIActor(time.Now(), 33*time.Millisecond)
	renderAct := newRenderActor(0, 1.0, 1.0)
	pendingRedrawBefore := uiAct.lastPendingRedraw

	err := c.updateUIAndRenderFrame(uiAct, renderAct, true, LoopStep{HasViewport: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("a zero-viewport tick must not write to the terminal, wrote %q", out.String())
	}
	if !uiAct.needsRedrawNow() {
		t.Fatalf("the redraw flag must stay armed for the next usable tick")
	}
	if uiAct.lastPendingRedraw != pendingRedrawBefore {
		t.Fatalf("the pending-redraw clock must not advance on a skipped tick")
	}
}
