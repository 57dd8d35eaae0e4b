// Package rasterizer is a minimal stand-in for the out-of-scope document
// parsing backend named in spec.md §1 — "the document-parsing backend
// (treated as an opaque page rasterizer and text extractor)". It opens a
// byte buffer, makes a quick best-effort guess at how many pages it
// contains, and rasterizes each page as a deterministic synthetic pattern so
// the rest of the pipeline (scheduling, caching, encoding) has real frames
// to move through it. It is not a PDF parser.
package rasterizer

import (
	"bytes"
	"hash/fnv"
	"os"

	"github.com/shiguri-01/preview-pdf/internal/apperr"
	"github.com/shiguri-01/preview-pdf/internal/backend"
	"github.com/shiguri-01/preview-pdf/internal/pagekey"
)

// defaultPageSize is US Letter in PDF points, used unconditionally since
// reading a real page tree is out of scope.
var defaultPageSize = backend.PageDimensions{WidthPt: 612, HeightPt: 792}

// Loader implements backend.Loader.
type Loader struct{}

// NewLoader returns the placeholder rasterizer backend's loader.
func NewLoader() backend.Loader { return Loader{} }

func (Loader) LoadSharedBytes(path string) (*[]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.IOWithContext(err, "failed to read document: "+path)
	}
	return &data, nil
}

func (Loader) OpenWithSharedBytes(path string, shared *[]byte) (backend.Document, error) {
	if shared == nil {
		return nil, apperr.InvalidArgumentf("no document bytes for %s", path)
	}
	pageCount := guessPageCount(*shared)
	return &document{
		path:      path,
		docID:     docIDFor(*shared),
		pageCount: pageCount,
	}, nil
}

// guessPageCount counts "/Type /Page" object markers that aren't actually
// "/Type /Pages" tree nodes — a common quick heuristic for a rough page
// count without walking the real object graph.
func guessPageCount(data []byte) int {
	total := bytes.Count(data, []byte("/Type/Page")) + bytes.Count(data, []byte("/Type /Page"))
	trees := bytes.Count(data, []byte("/Type/Pages")) + bytes.Count(data, []byte("/Type /Pages"))
	count := total - trees
	if count < 1 {
		return 1
	}
	return count
}

func docIDFor(data []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64()
}

type document struct {
	path      string
	docID     uint64
	pageCount int
}

func (d *document) Path() string   { return d.path }
func (d *document) DocID() uint64  { return d.docID }
func (d *document) PageCount() int { return d.pageCount }
func (d *document) Close() error   { return nil }

func (d *document) PageDimensions(page int) (backend.PageDimensions, error) {
	if page < 0 || page >= d.pageCount {
		return backend.PageDimensions{}, apperr.InvalidArgumentf("page %d out of range [0,%d)", page, d.pageCount)
	}
	return defaultPageSize, nil
}

func (d *document) ExtractText(page int) (string, error) {
	return "", apperr.Unimplementedf("text extraction is not implemented by the placeholder rasterizer")
}

// RenderPage synthesizes a deterministic RGBA pattern for page at scale
// pixels-per-point: a background color derived from the page index, a
// border, and a row of marker squares encoding the page number in binary so
// adjacent pages are visually distinguishable in a screenshot or test.
func (d *document) RenderPage(page int, scale float32) (pagekey.RgbaFrame, error) {
	if page < 0 || page >= d.pageCount {
		return pagekey.RgbaFrame{}, apperr.NewPdfRender(page, apperr.InvalidArgumentf("page out of range"))
	}
	if scale <= 0 {
		scale = 1
	}

	width := maxInt(1, int(defaultPageSize.WidthPt*float64(scale)))
	height := maxInt(1, int(defaultPageSize.HeightPt*float64(scale)))

	r := byte((page*37 + 40) % 256)
	g := byte((page*91 + 80) % 256)
	bl := byte((page*149 + 120) % 256)

	pixels := make([]byte, width*height*4)
	for i := 0; i < width*height; i++ {
		off := i * 4
		pixels[off] = r
		pixels[off+1] = g
		pixels[off+2] = bl
		pixels[off+3] = 255
	}

	drawBorder(pixels, width, height, 4)
	drawPageNumberMarker(pixels, width, height, page)

	return pagekey.RgbaFrame{Width: uint32(width), Height: uint32(height), Pixels: &pixels}, nil
}

func drawBorder(pixels []byte, width, height, thickness int) {
	setPx := func(x, y int) {
		if x < 0 || x >= width || y < 0 || y >= height {
			return
		}
		off := (y*width + x) * 4
		pixels[off], pixels[off+1], pixels[off+2], pixels[off+3] = 20, 20, 20, 255
	}
	for t := 0; t < thickness; t++ {
		for x := 0; x < width; x++ {
			setPx(x, t)
			setPx(x, height-1-t)
		}
		for y := 0; y < height; y++ {
			setPx(t, y)
			setPx(width-1-t, y)
		}
	}
}

// drawPageNumberMarker draws up to 8 squares along the top-left, one per bit
// of page (LSB first), filled white for a set bit and black otherwise.
func drawPageNumberMarker(pixels []byte, width, height, page int) {
	const squareSize = 10
	const gap = 4
	for bit := 0; bit < 8; bit++ {
		x0 := 8 + bit*(squareSize+gap)
		y0 := 8
		if x0+squareSize >= width || y0+squareSize >= height {
			break
		}
		filled := (page>>uint(bit))&1 == 1
		var val byte = 0
		if filled {
			val = 255
		}
		for dy := 0; dy < squareSize; dy++ {
			for dx := 0; dx < squareSize; dx++ {
				off := ((y0+dy)*width + (x0 + dx)) * 4
				pixels[off], pixels[off+1], pixels[off+2], pixels[off+3] = val, val, val, 255
			}
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
