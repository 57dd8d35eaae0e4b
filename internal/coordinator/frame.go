package coordinator

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/shiguri-01/preview-pdf/internal/backend"
	"github.com/shiguri-01/preview-pdf/internal/config"
	"github.com/shiguri-01/preview-pdf/internal/pagekey"
	"github.com/shiguri-01/preview-pdf/internal/presenter"
	"github.com/shiguri-01/preview-pdf/internal/scale"
	"github.com/shiguri-01/preview-pdf/internal/termsession"
	"github.com/shiguri-01/preview-pdf/internal/tui"
)

// defaultPageSizePt is the US Letter fallback used when a backend can't
// report a page's physical dimensions.
var defaultPageSizePt = backend.PageDimensions{WidthPt: 612, HeightPt: 792}

// chromeRows is how many terminal rows the status line reserves at the top
// of the screen; everything below it is the presenter's image viewport.
const chromeRows = 1

// terminalSizer is the one capability currentViewport needs from the
// terminal session.
type terminalSizer interface {
	Size() (termsession.Size, error)
}

// currentViewport derives the image viewport from the terminal's current
// size, reserving chromeRows for the status line. It returns false if there
// is no usable space left (a tiny or not-yet-resized terminal).
func currentViewport(session terminalSizer) (pagekey.Viewport, bool) {
	size, err := session.Size()
	if err != nil {
		return pagekey.Viewport{}, false
	}
	rows := size.Rows - chromeRows
	cols := size.Cols
	if rows < 1 || cols < 1 {
		return pagekey.Viewport{}, false
	}
	return pagekey.Viewport{Rows: rows, Cols: cols}, true
}

// computeCurrentScale derives the render scale that fits page's physical
// dimensions into viewport at the presenter's cell-pixel hint, capped by
// both the presenter's preferred maximum and the configured ceiling, then
// folds in the user's zoom factor.
func computeCurrentScale(doc backend.Document, page int, viewport pagekey.Viewport, zoom float32, caps presenter.Capabilities, cfg config.RenderConfig) float32 {
	dims, err := doc.PageDimensions(page)
	if err != nil {
		dims = defaultPageSizePt
	}
	maxScale := caps.PreferredMaxRenderScale
	if maxScale < 1.0 {
		maxScale = 1.0
	}
	if maxScale > cfg.MaxRenderScale {
		maxScale = cfg.MaxRenderScale
	}
	renderScale := scale.ComputeRenderScale(viewport.Rows, viewport.Cols, caps.CellPx, dims.WidthPt, dims.HeightPt, maxScale)
	return scale.ComputeScale(zoom, renderScale)
}

// renderFrame draws one full chrome+viewport pass: the status line, then
// either the presenter's blitted frame (on an L1 hit that's reached Ready)
// or a loading overlay, then the palette overlay if the coordinator is in
// palette mode.
func renderFrame(w io.Writer, state *AppState, runtime *RenderRuntime, facade *presenter.Facade, doc backend.Document, pageCount int, viewport pagekey.Viewport, scaleValue float32, generation uint64, paletteItems []string) error {
	key := pagekey.NewPageKey(doc.DocID(), state.CurrentPage, scaleValue)
	pan := state.pan()
	enableCrop := state.Zoom > 1.0
	caps := facade.Capabilities()
	runtimeInfo := facade.RuntimeInfo()

	fileName := filepath.Base(doc.Path())
	status := tui.StatusLine(fileName, state.CurrentPage, pageCount, state.Zoom, caps.BackendName, runtimeInfo.GraphicsProtocol, runtime.PerfStats(), state.Status.Message, state.Status.IsError)
	if _, err := fmt.Fprintln(w, status); err != nil {
		return err
	}

	area := presenter.AreaForViewport(viewport, caps.CellPx[0], caps.CellPx[1])
	cached := runtime.TryPrepareCurrentPageFromCache(facade, key, viewport, &pan, caps.CellPx, enableCrop, generation)
	state.ScrollX, state.ScrollY = pan.X, pan.Y

	if cached {
		drawn, err := facade.Render(area)
		if err != nil {
			state.Status = StatusState{Message: "render error: " + err.Error(), IsError: true}
		} else if !drawn {
			if _, ferr := fmt.Fprintln(w, tui.LoadingOverlay(state.CurrentPage+1)); ferr != nil {
				return ferr
			}
		}
	} else {
		if _, ferr := fmt.Fprintln(w, tui.LoadingOverlay(state.CurrentPage+1)); ferr != nil {
			return ferr
		}
	}

	if state.Mode == ModePalette {
		if _, err := fmt.Fprintln(w, tui.PaletteOverlay(paletteItems)); err != nil {
			return err
		}
	}

	runtime.AbsorbPresenterMetrics(facade.PerfSnapshot())
	return nil
}
