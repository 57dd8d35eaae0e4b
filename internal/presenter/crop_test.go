package presenter

import (
	"testing"

	"github.com/shiguri-01/preview-pdf/internal/pagekey"
)

func makeFrame(w, h int, fill func(x, y int) byte) pagekey.RgbaFrame {
	buf := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := fill(x, y)
			i := (y*w + x) * 4
			buf[i] = v
			buf[i+3] = 255
		}
	}
	return pagekey.RgbaFrame{Width: uint32(w), Height: uint32(h), Pixels: &buf}
}

func TestCropFrameForViewportAppliesPanOffset(t *testing.T) {
	frame := makeFrame(4, 4, func(x, y int) byte { return byte(x + y*10) })
	pan := &pagekey.PanOffset{X: 1, Y: 1}

	cropped := CropFrameForViewport(frame, pagekey.Viewport{Rows: 2, Cols: 2}, pan, [2]uint32{1, 1})

	if cropped.Width != 2 || cropped.Height != 2 {
		t.Fatalf("got %dx%d, want 2x2", cropped.Width, cropped.Height)
	}
	if (*cropped.Pixels)[0] != 11 {
		t.Fatalf("top-left pixel = %d, want 11", (*cropped.Pixels)[0])
	}
}

func TestCropFrameForViewportClampsWhenTargetExceedsSource(t *testing.T) {
	frame := makeFrame(2, 2, func(x, y int) byte { return byte((y*2 + x + 1) * 10) })
	pan := &pagekey.PanOffset{}

	cropped := CropFrameForViewport(frame, pagekey.Viewport{Rows: 2, Cols: 3}, pan, [2]uint32{1, 1})

	if cropped.Width != 2 || cropped.Height != 2 {
		t.Fatalf("got %dx%d, want clamp to source 2x2", cropped.Width, cropped.Height)
	}
	if (*cropped.Pixels)[0] != 10 {
		t.Fatalf("top-left pixel = %d, want 10", (*cropped.Pixels)[0])
	}
}

func TestCropFrameForViewportNormalizesOutOfRangePan(t *testing.T) {
	frame := makeFrame(8, 6, func(x, y int) byte { return 180 })
	pan := &pagekey.PanOffset{X: -5, Y: 99}

	CropFrameForViewport(frame, pagekey.Viewport{Rows: 2, Cols: 2}, pan, [2]uint32{2, 2})

	if pan.X != 0 {
		t.Fatalf("pan.X = %d, want clamped to 0", pan.X)
	}
	if pan.Y != 1 {
		t.Fatalf("pan.Y = %d, want clamped to 1", pan.Y)
	}
}

func TestPreparePresenterFrameWithoutCropReusesBuffer(t *testing.T) {
	frame := makeFrame(2, 2, func(x, y int) byte { return 7 })
	pan := &pagekey.PanOffset{X: 4, Y: 6}

	prepared, panForPresenter := PreparePresenterFrame(frame, pagekey.Viewport{Rows: 24, Cols: 80}, pan, [2]uint32{0, 0}, false)

	if prepared.Pixels != frame.Pixels {
		t.Fatalf("expected shared pixel buffer when crop is disabled")
	}
	if *pan != (pagekey.PanOffset{}) {
		t.Fatalf("pan should reset to origin when crop is disabled, got %+v", *pan)
	}
	if panForPresenter != (pagekey.PanOffset{}) {
		t.Fatalf("pan for presenter should be origin when crop is disabled")
	}
}
