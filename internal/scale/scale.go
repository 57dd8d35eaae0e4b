// Package scale holds the small pure-math helpers that translate a
// terminal viewport and a page's physical dimensions into a render scale,
// plus the idle/busy wake-timeout selection used by the coordinator loop.
package scale

import (
	"math"
	"time"
)

const (
	// MinRenderScale is the floor ComputeRenderScale clamps to, and the value
	// QuantizeScale returns for non-finite or non-positive input.
	MinRenderScale = 0.1
	// ScaleQuantum is the step used to round a float scale to a stable,
	// hashable value.
	ScaleQuantum = 0.001
	// equalityTolerance bounds ZoomEq/ScaleEq float comparisons.
	equalityTolerance = 0.0005
)

// DefaultCellSizePx is used whenever the presenter cannot report a concrete
// per-cell pixel size.
var DefaultCellSizePx = [2]uint32{8, 16}

// ZoomEq and ScaleEq report whether two float values are equal within
// equalityTolerance — floating-point navigation/zoom state should never be
// compared with ==.
func ZoomEq(a, b float32) bool  { return floatEq(a, b) }
func ScaleEq(a, b float32) bool { return floatEq(a, b) }

func floatEq(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= equalityTolerance
}

// SelectInputPollTimeout returns busyTimeout if either the render pool or
// the presenter has pending work, else idleTimeout.
func SelectInputPollTimeout(renderBusy, presenterBusy bool, idleTimeout, busyTimeout time.Duration) time.Duration {
	if renderBusy || presenterBusy {
		return busyTimeout
	}
	return idleTimeout
}

// ResolvedCellSizePx returns cellPx if both components are positive,
// otherwise DefaultCellSizePx. A Some(0, _) / Some(_, 0) hint is treated the
// same as no hint at all.
func ResolvedCellSizePx(cellPx *[2]uint32) [2]uint32 {
	if cellPx == nil || (*cellPx)[0] == 0 || (*cellPx)[1] == 0 {
		return DefaultCellSizePx
	}
	return *cellPx
}

// QuantizeScale rounds scale to the nearest ScaleQuantum, flooring at
// MinRenderScale for non-finite or non-positive input.
func QuantizeScale(scale float32) float32 {
	s := float64(scale)
	if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
		return MinRenderScale
	}
	quantized := math.Round(s/ScaleQuantum) * ScaleQuantum
	if quantized < ScaleQuantum {
		quantized = ScaleQuantum
	}
	return float32(quantized)
}

// ComputeRenderScale derives the render scale that fits a page of
// pageWidthPt x pageHeightPt into a viewport of viewportRows x viewportCols
// cells at cellPx pixels per cell, adaptively upsampling small viewports so
// they don't look undersampled, and capping at maxRenderScale.
func ComputeRenderScale(viewportRows, viewportCols int, cellPx [2]uint32, pageWidthPt, pageHeightPt float64, maxRenderScale float32) float32 {
	if math.IsNaN(pageWidthPt) || math.IsInf(pageWidthPt, 0) || pageWidthPt <= 0 ||
		math.IsNaN(pageHeightPt) || math.IsInf(pageHeightPt, 0) || pageHeightPt <= 0 {
		return MinRenderScale
	}

	viewportWidthPx := float64(viewportCols) * float64(cellPx[0])
	viewportHeightPx := float64(viewportRows) * float64(cellPx[1])

	fitScale := math.Min(viewportWidthPx/pageWidthPt, viewportHeightPx/pageHeightPt)

	adaptiveScale := fitScale
	if fitScale < 1.0 && fitScale > 0 {
		adaptiveScale = math.Sqrt(1.0 / fitScale)
	}

	upperBound := float64(maxRenderScale)
	if upperBound < MinRenderScale {
		upperBound = MinRenderScale
	}
	if adaptiveScale < MinRenderScale {
		adaptiveScale = MinRenderScale
	}
	if adaptiveScale > upperBound {
		adaptiveScale = upperBound
	}
	return float32(adaptiveScale)
}

// ComputeScale combines a user zoom factor with the fit-derived render
// scale, quantizing the result for use as a PageKey component.
func ComputeScale(zoom, renderScale float32) float32 {
	return QuantizeScale(zoom * renderScale)
}
