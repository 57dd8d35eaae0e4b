package rasterizer

import "testing"

func TestGuessPageCountIgnoresPagesTreeNodes(t *testing.T) {
	data := []byte("/Type /Pages /Count 3 /Type /Page /Type /Page /Type /Page")
	if got := guessPageCount(data); got != 3 {
		t.Fatalf("guessPageCount = %d, want 3", got)
	}
}

func TestGuessPageCountFloorsAtOne(t *testing.T) {
	if got := guessPageCount([]byte("not a pdf")); got != 1 {
		t.Fatalf("guessPageCount = %d, want 1", got)
	}
}

func TestDocIDForIsStableForSameBytes(t *testing.T) {
	data := []byte("some bytes")
	if docIDFor(data) != docIDFor(append([]byte{}, data...)) {
		t.Fatal("expected docIDFor to be stable across equal byte slices")
	}
}

func TestRenderPageProducesValidFrame(t *testing.T) {
	loader := NewLoader()
	data := []byte("/Type /Page /Type /Page")
	doc, err := loader.OpenWithSharedBytes("test.pdf", &data)
	if err != nil {
		t.Fatalf("OpenWithSharedBytes: %v", err)
	}
	defer doc.Close()

	frame, err := doc.RenderPage(0, 1.0)
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if !frame.Valid() {
		t.Fatal("expected a valid frame")
	}
	if frame.Width == 0 || frame.Height == 0 {
		t.Fatal("expected non-zero dimensions")
	}
}

func TestRenderPageRejectsOutOfRangePage(t *testing.T) {
	loader := NewLoader()
	data := []byte("/Type /Page")
	doc, err := loader.OpenWithSharedBytes("test.pdf", &data)
	if err != nil {
		t.Fatalf("OpenWithSharedBytes: %v", err)
	}
	defer doc.Close()

	if _, err := doc.RenderPage(5, 1.0); err == nil {
		t.Fatal("expected an error for an out-of-range page")
	}
}
