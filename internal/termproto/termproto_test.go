package termproto

import (
	"strings"
	"testing"

	"github.com/shiguri-01/preview-pdf/internal/pagekey"
	"github.com/shiguri-01/preview-pdf/internal/presenter"
)

func TestBackendEncodeProducesEscapeCodes(t *testing.T) {
	pixels := make([]byte, 2*2*4)
	frame := pagekey.RgbaFrame{Width: 2, Height: 2, Pixels: &pixels}

	protocol, err := Backend{}.Encode(frame, presenter.PixelArea{WidthPx: 2, HeightPx: 1})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	s, ok := protocol.(string)
	if !ok {
		t.Fatalf("expected a string protocol, got %T", protocol)
	}
	if !strings.Contains(s, "\x1b[38;2;") {
		t.Fatal("expected a truecolor escape sequence in the encoded output")
	}
}

func TestBackendEncodeRejectsEmptyFrame(t *testing.T) {
	protocol, err := Backend{}.Encode(pagekey.RgbaFrame{}, presenter.PixelArea{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if protocol != "" {
		t.Fatalf("expected empty protocol for an invalid frame, got %v", protocol)
	}
}

type captureWriter struct{ written string }

func (w *captureWriter) Write(p []byte) (int, error) {
	w.written += string(p)
	return len(p), nil
}

func TestBlitterBlitWritesProtocolString(t *testing.T) {
	w := &captureWriter{}
	b := NewBlitter(w)

	drawn, err := b.Blit("hello", presenter.PixelArea{WidthPx: 10, HeightPx: 10})
	if err != nil {
		t.Fatalf("Blit: %v", err)
	}
	if !drawn {
		t.Fatal("expected Blit to report drawn")
	}
	if w.written != "hello" {
		t.Fatalf("written = %q, want %q", w.written, "hello")
	}
}

func TestBlitterBlitReportsNotDrawnOnZeroArea(t *testing.T) {
	w := &captureWriter{}
	b := NewBlitter(w)

	drawn, err := b.Blit("hello", presenter.PixelArea{})
	if err != nil {
		t.Fatalf("Blit: %v", err)
	}
	if drawn {
		t.Fatal("expected Blit to report not drawn for a zero-area target")
	}
}
