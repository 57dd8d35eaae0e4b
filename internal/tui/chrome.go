package tui

import (
	"fmt"
	"strings"

	"github.com/shiguri-01/preview-pdf/internal/perf"
)

// StatusLine renders the single chrome line shown above the image viewport:
// the document name, page position, zoom, backend/protocol, and a perf
// summary, followed by the last status message when there is one.
func StatusLine(fileName string, page, pageCount int, zoom float32, backendName, protocol string, stats perf.Stats, message string, isError bool) string {
	title := StyleTitle.Render(fileName)
	position := StyleDim.Render(fmt.Sprintf("page %d/%d", page+1, pageCount))
	zoomLabel := StyleDim.Render(fmt.Sprintf("zoom %.0f%%", zoom*100))
	backend := StyleDim.Render(fmt.Sprintf("%s/%s", backendName, protocol))
	perfLabel := StyleDim.Render(fmt.Sprintf("render %.0fms cache L1 %.0f%% L2 %.0f%%", stats.RenderMs, stats.CacheHitRateL1*100, stats.CacheHitRateL2*100))

	line := strings.Join([]string{title, position, zoomLabel, backend, perfLabel}, "  ")
	if message == "" {
		return line
	}
	styled := StyleStatus
	if isError {
		styled = StyleError
	}
	return line + "  " + styled.Render(message)
}

// LoadingOverlay is drawn in place of the image while the current page is
// still rasterizing or encoding.
func LoadingOverlay(pageNumber int) string {
	return StyleLoading.Render(fmt.Sprintf("rendering page %d...", pageNumber))
}

// PaletteOverlay renders a simple vertical list of candidate entries; the
// palette's own fuzzy matching and selection state are out of scope, only
// its display contract is implemented here.
func PaletteOverlay(items []string) string {
	if len(items) == 0 {
		return StyleDim.Render("(no matches)")
	}
	return strings.Join(items, "\n")
}
