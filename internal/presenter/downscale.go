package presenter

import "github.com/shiguri-01/preview-pdf/internal/pagekey"

// PixelArea is a target rectangle in device pixels, resolved from a
// cell-unit Viewport and the presenter's cell-pixel hint before encoding.
type PixelArea struct {
	WidthPx  uint32
	HeightPx uint32
}

// AreaForViewport resolves a cell-unit viewport into a PixelArea using the
// presenter's per-cell pixel size.
func AreaForViewport(v pagekey.Viewport, cellWidthPx, cellHeightPx uint32) PixelArea {
	return PixelArea{
		WidthPx:  uint32(v.Cols) * cellWidthPx,
		HeightPx: uint32(v.Rows) * cellHeightPx,
	}
}

// DownscaleFrameForArea resizes frame to fit within area, preserving aspect
// ratio (the smaller limiting dimension dictates the fit). If frame already
// fits, it is returned unchanged.
func DownscaleFrameForArea(frame pagekey.RgbaFrame, area PixelArea) pagekey.RgbaFrame {
	if area.WidthPx == 0 || area.HeightPx == 0 {
		return frame
	}
	if frame.Width <= area.WidthPx && frame.Height <= area.HeightPx {
		return frame
	}

	widthRatio := float64(area.WidthPx) / float64(frame.Width)
	heightRatio := float64(area.HeightPx) / float64(frame.Height)
	ratio := widthRatio
	if heightRatio < ratio {
		ratio = heightRatio
	}

	newWidth := uint32(float64(frame.Width) * ratio)
	newHeight := uint32(float64(frame.Height) * ratio)
	if newWidth == 0 {
		newWidth = 1
	}
	if newHeight == 0 {
		newHeight = 1
	}

	src := *frame.Pixels
	dst := make([]byte, int(newWidth)*int(newHeight)*4)
	for y := uint32(0); y < newHeight; y++ {
		srcY := y * frame.Height / newHeight
		for x := uint32(0); x < newWidth; x++ {
			srcX := x * frame.Width / newWidth
			srcIdx := (srcY*frame.Width + srcX) * 4
			dstIdx := (y*newWidth + x) * 4
			copy(dst[dstIdx:dstIdx+4], src[srcIdx:srcIdx+4])
		}
	}
	return pagekey.RgbaFrame{Width: newWidth, Height: newHeight, Pixels: &dst}
}
