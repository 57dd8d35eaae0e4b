package presenter

import (
	"time"

	"github.com/shiguri-01/preview-pdf/internal/apperr"
	"github.com/shiguri-01/preview-pdf/internal/pagekey"
	"github.com/shiguri-01/preview-pdf/internal/perf"
)

// Capabilities describes what the out-of-scope terminal graphics encoder
// reports about itself: its per-cell pixel size and how much render
// resolution it can actually use. Kitty/iTerm2/Sixel send raw pixels so
// high-res rendering pays off; halfblocks has very limited resolution so
// anything above 1.0 is wasted work.
type Capabilities struct {
	BackendName             string
	SupportsL2Cache         bool
	CellPx                  [2]uint32
	PreferredMaxRenderScale float32
}

// RuntimeInfo carries the detected graphics protocol name for the status line.
type RuntimeInfo struct {
	GraphicsProtocol string
}

// Blitter draws an already-encoded Protocol value into a target PixelArea.
// Its concrete implementation (writing Kitty/Sixel/iTerm2 escape codes, or a
// halfblocks ANSI fallback) is the out-of-scope terminal graphics encoder;
// this package only depends on the contract.
type Blitter interface {
	Blit(protocol Protocol, area PixelArea) (bool, error)
	Capabilities() Capabilities
	RuntimeInfo() RuntimeInfo
}

// Facade is the single collaborator the coordinator drives: it owns the L2
// cache and the encode worker, and exposes exactly the seam named in the
// design notes — prepare, prefetch_encode, render, capabilities,
// drain_background_events, has_pending_work, perf_snapshot.
type Facade struct {
	l2      *L2Cache
	encoder *Encoder
	blitter Blitter

	currentKey        pagekey.L2Key
	hasCurrent        bool
	currentGeneration uint64

	perf perf.Stats
}

// NewFacade wires an L2Cache, an Encoder, and a Blitter into a Facade.
func NewFacade(l2 *L2Cache, encoder *Encoder, blitter Blitter) *Facade {
	return &Facade{l2: l2, encoder: encoder, blitter: blitter}
}

// InitializeTerminal performs one-time terminal protocol detection. The
// concrete Blitter already resolved its protocol at construction, so this is
// a no-op seam kept for symmetry with the original's lazy-detection path.
func (f *Facade) InitializeTerminal() error { return nil }

func (f *Facade) Capabilities() Capabilities { return f.blitter.Capabilities() }
func (f *Facade) RuntimeInfo() RuntimeInfo   { return f.blitter.RuntimeInfo() }

func (f *Facade) ensureEntry(key pagekey.L2Key, frame pagekey.RgbaFrame) {
	if _, ok := f.l2.LookupMut(key); !ok {
		f.l2.Insert(key, &FrameEntry{State: PendingFrame, RawFrame: frame, ApproxBytes: frame.ByteLen()})
	}
	f.perf.SetL2HitRate(f.l2.HitRate())
}

// Prepare marks key as the current frame to display, inserting it into the
// L2 cache if not already present. It does not itself submit an encode
// request — Render does that lazily, matching the original's split between
// "what to show" and "drive it to Ready".
func (f *Facade) Prepare(key pagekey.L2Key, frame pagekey.RgbaFrame, generation uint64) {
	f.DrainBackgroundEvents()
	f.ensureEntry(key, frame)
	f.currentKey = key
	f.hasCurrent = true
	f.currentGeneration = generation
}

// PrefetchEncode ensures key's frame is present in the L2 cache and, if it is
// still PendingFrame, submits it to the encoder at the given prefetch class.
func (f *Facade) PrefetchEncode(key pagekey.L2Key, frame pagekey.RgbaFrame, area PixelArea, class pagekey.PrefetchClass, generation uint64) {
	f.DrainBackgroundEvents()
	f.ensureEntry(key, frame)

	entry, ok := f.l2.CachedMut(key)
	if !ok || entry.State != PendingFrame {
		f.perf.SetL2HitRate(f.l2.HitRate())
		return
	}
	if f.encoder.Submit(Request{Encode: true, Key: key, Frame: entry.RawFrame, Area: area, Class: class, Generation: generation}) {
		entry.State = Encoding
	}
	f.perf.SetL2HitRate(f.l2.HitRate())
}

// Render drives the current frame toward Ready and, once there, blits it.
// It returns true once something was drawn to the screen this call, false
// while still pending (the caller should show a loading overlay).
func (f *Facade) Render(area PixelArea) (bool, error) {
	f.DrainBackgroundEvents()
	if area.WidthPx == 0 || area.HeightPx == 0 || !f.hasCurrent {
		return false, nil
	}

	entry, ok := f.l2.CachedMut(f.currentKey)
	if !ok {
		return false, nil
	}

	switch entry.State {
	case Ready:
		start := time.Now()
		drawn, err := f.blitter.Blit(entry.ProtocolVal, area)
		f.perf.RecordBlit(time.Since(start))
		if err != nil {
			entry.State = Failed
			return false, err
		}
		return drawn, nil
	case PendingFrame:
		if f.encoder.Submit(Request{Encode: true, Key: f.currentKey, Frame: entry.RawFrame, Area: area, Class: pagekey.CriticalCurrent, Generation: f.currentGeneration}) {
			entry.State = Encoding
		}
		return false, nil
	case Encoding:
		return false, nil
	default: // Failed
		return false, apperr.Unsupportedf("encode failed for current frame")
	}
}

// HasPendingWork reports whether any L2 entry is still PendingFrame or
// Encoding — the coordinator uses this to pick a shorter poll timeout.
func (f *Facade) HasPendingWork() bool { return f.l2.HasPendingWork() }

// DrainBackgroundEvents absorbs completed/stale encoder results into the L2
// cache's state machine, reporting whether the current key changed.
func (f *Facade) DrainBackgroundEvents() bool {
	changed := false
	for {
		select {
		case res, ok := <-f.encoder.ResultCh():
			if !ok {
				f.perf.SetL2HitRate(f.l2.HitRate())
				return changed
			}
			if entry, ok := f.l2.CachedMut(res.Key); ok {
				if res.Succeeded {
					entry.State = Ready
					entry.ProtocolVal = res.ProtocolVal
					f.perf.RecordConvert(res.Elapsed)
				} else {
					entry.State = Failed
				}
				if f.hasCurrent && res.Key == f.currentKey {
					changed = true
				}
			}
		case key, ok := <-f.encoder.StaleCh():
			if !ok {
				f.perf.SetL2HitRate(f.l2.HitRate())
				return changed
			}
			// A stale-canceled request will never complete; drop the entry so
			// the next prepare re-inserts it as PendingFrame instead of
			// leaving an Encoding entry that can never reach Ready.
			if entry, ok := f.l2.CachedMut(key); ok && entry.State == Encoding {
				f.l2.Remove(key)
				if f.hasCurrent && key == f.currentKey {
					changed = true
				}
			}
		default:
			f.perf.SetL2HitRate(f.l2.HitRate())
			return changed
		}
	}
}

// PerfSnapshot returns the presenter-side metrics accumulated so far: convert
// and blit timings plus the L2 hit rate.
func (f *Facade) PerfSnapshot() perf.Stats { return f.perf }
