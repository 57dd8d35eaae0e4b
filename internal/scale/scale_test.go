package scale

import (
	"testing"
	"time"
)

func TestSelectInputPollTimeoutPrefersBusyWhenEitherBusy(t *testing.T) {
	idle := 16 * time.Millisecond
	busy := 8 * time.Millisecond
	if got := SelectInputPollTimeout(false, false, idle, busy); got != idle {
		t.Fatalf("got %v, want idle", got)
	}
	if got := SelectInputPollTimeout(true, false, idle, busy); got != busy {
		t.Fatalf("got %v, want busy (render busy)", got)
	}
	if got := SelectInputPollTimeout(false, true, idle, busy); got != busy {
		t.Fatalf("got %v, want busy (presenter busy)", got)
	}
}

func TestResolvedCellSizePxFallsBackOnZeroComponent(t *testing.T) {
	zeroWidth := [2]uint32{0, 20}
	if got := ResolvedCellSizePx(&zeroWidth); got != DefaultCellSizePx {
		t.Fatalf("zero width component should fall back to default, got %v", got)
	}
	if got := ResolvedCellSizePx(nil); got != DefaultCellSizePx {
		t.Fatalf("nil hint should fall back to default")
	}
	explicit := [2]uint32{10, 20}
	if got := ResolvedCellSizePx(&explicit); got != explicit {
		t.Fatalf("a fully specified hint should be used as-is, got %v", got)
	}
}

func TestQuantizeScaleFloorsInvalidInput(t *testing.T) {
	if QuantizeScale(0) != MinRenderScale {
		t.Fatalf("zero scale should floor to MinRenderScale")
	}
	if QuantizeScale(-5) != MinRenderScale {
		t.Fatalf("negative scale should floor to MinRenderScale")
	}
}

func TestComputeRenderScaleMatchesFitScaleAboveOne(t *testing.T) {
	got := ComputeRenderScale(70, 220, [2]uint32{10, 20}, 612, 792, 2.5)
	if got < 1.7 || got > 1.8 {
		t.Fatalf("got %v, want ~1.77 per the reference viewport/page/cap combination", got)
	}
}

func TestComputeRenderScaleRespectsPerPresenterCap(t *testing.T) {
	sixel := ComputeRenderScale(70, 220, [2]uint32{10, 20}, 612, 792, 1.5)
	halfblocks := ComputeRenderScale(70, 220, [2]uint32{10, 20}, 612, 792, 1.0)
	if sixel > 1.5 {
		t.Fatalf("sixel cap exceeded: %v", sixel)
	}
	if halfblocks > 1.0 {
		t.Fatalf("halfblocks cap exceeded: %v", halfblocks)
	}
}

func TestComputeRenderScaleFloorsOnNonFinitePageDimensions(t *testing.T) {
	if got := ComputeRenderScale(70, 220, [2]uint32{10, 20}, 0, 792, 2.5); got != MinRenderScale {
		t.Fatalf("zero page width should floor to MinRenderScale, got %v", got)
	}
}

func TestComputeScaleQuantizesZoomTimesRenderScale(t *testing.T) {
	got := ComputeScale(1.0, 1.7505)
	if got != QuantizeScale(1.7505) {
		t.Fatalf("ComputeScale should equal QuantizeScale(zoom*renderScale)")
	}
}
