// Package perf holds the small counters the coordinator surfaces on its
// status line and debug overlay: render/convert/blit timings, cache hit
// rates, queue depth, and canceled-task counts.
package perf

import "time"

// Stats aggregates the coordinator's own timings plus whatever the presenter
// reports about its own convert/blit path.
type Stats struct {
	RenderMs       float64
	ConvertMs      float64
	BlitMs         float64
	CacheHitRateL1 float64
	CacheHitRateL2 float64
	QueueDepth     int
	CanceledTasks  uint64

	RenderSamples  uint64
	ConvertSamples uint64
	BlitSamples    uint64
}

func (s *Stats) RecordRender(elapsed time.Duration) {
	s.RenderMs = elapsed.Seconds() * 1000
	s.RenderSamples++
}

func (s *Stats) RecordConvert(elapsed time.Duration) {
	s.ConvertMs = elapsed.Seconds() * 1000
	s.ConvertSamples++
}

func (s *Stats) RecordBlit(elapsed time.Duration) {
	s.BlitMs = elapsed.Seconds() * 1000
	s.BlitSamples++
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (s *Stats) SetL1HitRate(rate float64) { s.CacheHitRateL1 = clamp01(rate) }
func (s *Stats) SetL2HitRate(rate float64) { s.CacheHitRateL2 = clamp01(rate) }
func (s *Stats) SetQueueDepth(depth int)   { s.QueueDepth = depth }
func (s *Stats) AddCanceledTasks(n int)    { s.CanceledTasks += uint64(n) }

// AbsorbPresenterMetrics copies the presenter's own convert/blit/L2 numbers
// into this Stats without touching the render-path fields, which only the
// coordinator itself records.
func (s *Stats) AbsorbPresenterMetrics(presenter Stats) {
	s.ConvertMs = presenter.ConvertMs
	s.BlitMs = presenter.BlitMs
	s.CacheHitRateL2 = presenter.CacheHitRateL2
	s.ConvertSamples = presenter.ConvertSamples
	s.BlitSamples = presenter.BlitSamples
}
