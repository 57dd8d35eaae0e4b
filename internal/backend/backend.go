// Package backend declares the capability-set interfaces the out-of-scope
// document rasterizer must satisfy. Nothing in this module implements a real
// PDF parser; these are the seams other components render and extract text
// through.
package backend

import "github.com/shiguri-01/preview-pdf/internal/pagekey"

// PageDimensions is a page's size in PDF points (1/72 inch), as reported by
// the rasterizer backend.
type PageDimensions struct {
	WidthPt  float64
	HeightPt float64
}

// Document is the small capability set the render pipeline needs from an
// opened document handle. A concrete rasterizer (out of scope) implements
// this over its own parser.
type Document interface {
	Path() string
	DocID() uint64
	PageCount() int
	PageDimensions(page int) (PageDimensions, error)
	RenderPage(page int, scale float32) (pagekey.RgbaFrame, error)
	ExtractText(page int) (string, error)
	Close() error
}

// Loader loads a document's bytes once and hands out independent handles
// over those shared, immutable bytes — each render worker opens its own
// handle so rasterization can proceed in parallel without serializing on a
// single parser instance.
type Loader interface {
	LoadSharedBytes(path string) (*[]byte, error)
	OpenWithSharedBytes(path string, bytes *[]byte) (Document, error)
}
