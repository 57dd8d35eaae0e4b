package presenter

import "github.com/shiguri-01/preview-pdf/internal/pagekey"

// PreparePresenterFrame crops frame for the presenter, honoring pan
// only when enableCrop is set (zoom > 1.0). When crop is disabled it returns
// frame unchanged — sharing the pixel buffer, never copying it — and resets
// pan to the origin, matching the original's "no crop" fast path.
func PreparePresenterFrame(frame pagekey.RgbaFrame, viewport pagekey.Viewport, pan *pagekey.PanOffset, cellPx [2]uint32, enableCrop bool) (pagekey.RgbaFrame, pagekey.PanOffset) {
	if !enableCrop {
		*pan = pagekey.PanOffset{}
		return frame, pagekey.PanOffset{}
	}
	cropped := CropFrameForViewport(frame, viewport, pan, cellPx)
	return cropped, *pan
}

// CropFrameForViewport extracts the sub-rectangle of frame that the current
// pan offset selects, clamping pan so the viewport never reads past the
// frame's edges. pan is updated in place to the clamped value.
func CropFrameForViewport(frame pagekey.RgbaFrame, viewport pagekey.Viewport, pan *pagekey.PanOffset, cellPx [2]uint32) pagekey.RgbaFrame {
	cellWidthPx, cellHeightPx := int(cellPx[0]), int(cellPx[1])
	if cellWidthPx <= 0 {
		cellWidthPx = 1
	}
	if cellHeightPx <= 0 {
		cellHeightPx = 1
	}

	cols := viewport.Cols
	if cols < 1 {
		cols = 1
	}
	rows := viewport.Rows
	if rows < 1 {
		rows = 1
	}
	targetWidth := cols * cellWidthPx
	targetHeight := rows * cellHeightPx

	srcWidth := int(frame.Width)
	srcHeight := int(frame.Height)

	maxX := srcWidth - targetWidth
	if maxX < 0 {
		maxX = 0
	}
	maxY := srcHeight - targetHeight
	if maxY < 0 {
		maxY = 0
	}
	maxCellsX := maxX / cellWidthPx
	maxCellsY := maxY / cellHeightPx

	pan.X = clampInt(pan.X, 0, maxCellsX)
	pan.Y = clampInt(pan.Y, 0, maxCellsY)

	panPxX := pan.X * cellWidthPx
	panPxY := pan.Y * cellHeightPx
	originX := clampInt(panPxX, 0, maxX)
	originY := clampInt(panPxY, 0, maxY)

	copyWidth := minInt(targetWidth, srcWidth-originX)
	copyHeight := minInt(targetHeight, srcHeight-originY)
	outWidth := maxInt(copyWidth, 1)
	outHeight := maxInt(copyHeight, 1)

	dst := make([]byte, outWidth*outHeight*4)
	if copyWidth > 0 && copyHeight > 0 {
		src := *frame.Pixels
		srcStride := srcWidth * 4
		dstStride := outWidth * 4
		rowBytes := copyWidth * 4
		for row := 0; row < copyHeight; row++ {
			srcStart := (originY+row)*srcStride + originX*4
			dstStart := row * dstStride
			copy(dst[dstStart:dstStart+rowBytes], src[srcStart:srcStart+rowBytes])
		}
	}

	return pagekey.RgbaFrame{Width: uint32(outWidth), Height: uint32(outHeight), Pixels: &dst}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
