package presenter

import (
	"time"

	"github.com/shiguri-01/preview-pdf/internal/pagekey"
	"github.com/shiguri-01/preview-pdf/internal/queue"
)

// Encoder is the single-threaded encode worker (C5): it consumes its own
// priority queue (an instance of the C1 queue) and writes results back to
// the supervisor over ResultCh/StaleCh.
type Encoder struct {
	backend Backend
	queue   *queue.Queue[pagekey.L2Key, EncodeTask]

	requestCh chan Request
	resultCh  chan EncodeResult
	staleCh   chan pagekey.L2Key
	doneCh    chan struct{}
	done      chan struct{}
}

// Backend is the opaque terminal graphics encoder capability set (the
// ratatui_image-equivalent collaborator). Its concrete implementation is out
// of scope; this package only depends on the contract.
type Backend interface {
	Encode(frame pagekey.RgbaFrame, area PixelArea) (Protocol, error)
}

// EncodeTask is the payload carried through the encoder's own priority
// queue.
type EncodeTask struct {
	Key   pagekey.L2Key
	Frame pagekey.RgbaFrame
	Area  PixelArea
}

// Request is submitted to the encoder from the supervisor.
type Request struct {
	Encode     bool // false means Shutdown
	Key        pagekey.L2Key
	Frame      pagekey.RgbaFrame
	Area       PixelArea
	Class      pagekey.PrefetchClass
	Generation uint64
}

// EncodeResult is emitted once an Encode task completes.
type EncodeResult struct {
	Key         pagekey.L2Key
	ProtocolVal Protocol
	Succeeded   bool
	Elapsed     time.Duration
}

// NewEncoder constructs an Encoder and starts its worker goroutine.
func NewEncoder(backend Backend) *Encoder {
	e := &Encoder{
		backend:   backend,
		queue:     queue.New[pagekey.L2Key, EncodeTask](queue.Config{DedupeByKey: true}),
		requestCh: make(chan Request, 64),
		resultCh:  make(chan EncodeResult, 64),
		staleCh:   make(chan pagekey.L2Key, 64),
		doneCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	go e.run()
	return e
}

// Submit sends req to the encoder. It never blocks the caller beyond the
// channel's buffer; a full buffer is treated as encoder back-pressure.
func (e *Encoder) Submit(req Request) bool {
	select {
	case e.requestCh <- req:
		return true
	default:
		return false
	}
}

// ResultCh yields completed encode results.
func (e *Encoder) ResultCh() <-chan EncodeResult { return e.resultCh }

// StaleCh yields keys whose queued (not yet started) encode request was
// canceled as stale — the supervisor corrects the matching L2 entry.
func (e *Encoder) StaleCh() <-chan pagekey.L2Key { return e.staleCh }

// Shutdown stops the encoder goroutine.
func (e *Encoder) Shutdown() {
	close(e.doneCh)
	<-e.done
}

func (e *Encoder) run() {
	defer close(e.done)
	for {
		if e.queue.IsEmpty() {
			select {
			case req, ok := <-e.requestCh:
				if !ok {
					return
				}
				e.admit(req)
			case <-e.doneCh:
				return
			}
			continue
		}

		select {
		case <-e.doneCh:
			return
		default:
		}

		e.drainPending()

		task, ok := e.queue.PopNext()
		if !ok {
			continue
		}
		e.encodeOne(task)
	}
}

// drainPending non-blockingly absorbs any additional requests that arrived
// while the encoder was busy, so a burst of admissions doesn't starve the
// queue of fresh cancellations.
func (e *Encoder) drainPending() {
	for {
		select {
		case req, ok := <-e.requestCh:
			if !ok {
				return
			}
			e.admit(req)
		default:
			return
		}
	}
}

// admit applies the queue admission algorithm (spec §4.5):
//  1. cancel_stale_prefetch(generation) on the encoder's own queue.
//  2. if class == CriticalCurrent and the key is already queued, remove it —
//     the fresh current request must not fall behind a stale one.
//  3. push the new task.
func (e *Encoder) admit(req Request) {
	if !req.Encode {
		return
	}
	removed := e.queue.RetainCollect(func(m queue.Meta[pagekey.L2Key]) bool {
		if m.Class == pagekey.CriticalCurrent || m.Class == pagekey.GuardReverse {
			return true
		}
		return m.Generation >= req.Generation
	})
	for _, m := range removed {
		select {
		case e.staleCh <- m.Key:
		default:
		}
	}

	if req.Class == pagekey.CriticalCurrent && e.queue.ContainsKey(req.Key) {
		e.queue.RemoveKey(req.Key)
	}

	e.queue.Push(EncodeTask{Key: req.Key, Frame: req.Frame, Area: req.Area}, req.Key, req.Class, req.Generation)
}

func (e *Encoder) encodeOne(task EncodeTask) {
	start := time.Now()
	frame := DownscaleFrameForArea(task.Frame, task.Area)
	protocol, err := e.backend.Encode(frame, task.Area)
	elapsed := time.Since(start)
	select {
	case e.resultCh <- EncodeResult{Key: task.Key, ProtocolVal: protocol, Succeeded: err == nil, Elapsed: elapsed}:
	case <-e.doneCh:
	}
}
