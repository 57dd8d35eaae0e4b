package render

import (
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/shiguri-01/preview-pdf/internal/apperr"
	"github.com/shiguri-01/preview-pdf/internal/backend"
	"github.com/shiguri-01/preview-pdf/internal/pagekey"
)

// Request is sent to a render worker goroutine.
type Request struct {
	TaskID     string
	Key        pagekey.PageKey
	Priority   pagekey.PrefetchClass
	Generation uint64
}

// ResultEvent is produced by a render worker once rasterization completes
// (successfully or not).
type ResultEvent struct {
	TaskID     string
	Key        pagekey.PageKey
	Priority   pagekey.PrefetchClass
	Generation uint64
	Frame      pagekey.RgbaFrame
	Err        error
	Elapsed    time.Duration
}

type inFlightTask struct {
	TaskID     string
	Priority   pagekey.PrefetchClass
	Generation uint64
	Canceled   bool
}

// WorkerPool is a bounded pool of N blocking rasterizer goroutines (C4). All
// workers open their own Document handle over one shared, immutable byte
// buffer loaded once at Spawn.
type WorkerPool struct {
	mu        sync.Mutex
	inFlight  map[pagekey.PageKey]*inFlightTask
	capacity  int
	requestCh chan Request
	resultCh  chan ResultEvent

	docs   []backend.Document
	doneCh chan struct{}
	wg     sync.WaitGroup
}

// Spawn loads path's bytes once via loader, opens workerThreads independent
// document handles over them, and starts one goroutine per handle pulling
// from a shared request channel.
func Spawn(path string, docID uint64, workerThreads int, loader backend.Loader) (*WorkerPool, error) {
	if workerThreads < 1 {
		workerThreads = 1
	}
	shared, err := loader.LoadSharedBytes(path)
	if err != nil {
		return nil, apperr.IOWithContext(err, "failed to load document bytes")
	}

	p := &WorkerPool{
		inFlight:  make(map[pagekey.PageKey]*inFlightTask),
		capacity:  workerThreads,
		requestCh: make(chan Request, workerThreads),
		resultCh:  make(chan ResultEvent, workerThreads),
		doneCh:    make(chan struct{}),
	}

	for i := 0; i < workerThreads; i++ {
		doc, err := loader.OpenWithSharedBytes(path, shared)
		if err != nil {
			p.closeOpened()
			return nil, apperr.Unsupportedf("failed to open worker handle %d: %v", i, err)
		}
		if doc.DocID() != docID {
			log.Warnf("render worker: opened doc_id %d, expected %d", doc.DocID(), docID)
		}
		p.docs = append(p.docs, doc)
		p.wg.Add(1)
		go p.workerMain(doc)
	}
	return p, nil
}

func (p *WorkerPool) closeOpened() {
	for _, d := range p.docs {
		_ = d.Close()
	}
	p.docs = nil
}

func (p *WorkerPool) workerMain(doc backend.Document) {
	defer p.wg.Done()
	for {
		select {
		case <-p.doneCh:
			return
		case req, ok := <-p.requestCh:
			if !ok {
				return
			}
			p.processOne(doc, req)
		}
	}
}

func (p *WorkerPool) processOne(doc backend.Document, req Request) {
	start := time.Now()
	scale := pagekey.ScaleMilliToFloat(req.Key.ScaleMilli)
	frame, err := doc.RenderPage(req.Key.PageIndex, scale)
	elapsed := time.Since(start)
	if err != nil {
		err = apperr.NewPdfRender(req.Key.PageIndex, err)
		log.Warnf("render worker: page %d failed: %v", req.Key.PageIndex, err)
	}
	select {
	case p.resultCh <- ResultEvent{
		TaskID:     req.TaskID,
		Key:        req.Key,
		Priority:   req.Priority,
		Generation: req.Generation,
		Frame:      frame,
		Err:        err,
		Elapsed:    elapsed,
	}:
	case <-p.doneCh:
	}
}

// InFlightLen reports the number of tasks currently in flight.
func (p *WorkerPool) InFlightLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inFlight)
}

// AvailableSlots reports how many more tasks the pool can admit before it is
// saturated.
func (p *WorkerPool) AvailableSlots() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := p.capacity - len(p.inFlight); n > 0 {
		return n
	}
	return 0
}

// Enqueue admits task under the pool's capacity. It rejects if the key is
// already in flight or the pool is saturated.
func (p *WorkerPool) Enqueue(task pagekey.RenderTask, taskID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enqueueLocked(task, taskID)
}

func (p *WorkerPool) enqueueLocked(task pagekey.RenderTask, taskID string) bool {
	if _, exists := p.inFlight[task.Key]; exists {
		return false
	}
	if len(p.inFlight) >= p.capacity {
		return false
	}
	p.inFlight[task.Key] = &inFlightTask{TaskID: taskID, Priority: task.Priority, Generation: task.Generation}
	select {
	case p.requestCh <- Request{TaskID: taskID, Key: task.Key, Priority: task.Priority, Generation: task.Generation}:
		return true
	default:
		delete(p.inFlight, task.Key)
		return false
	}
}

// EnqueueCurrentWithPreemption is used for the current page when the pool is
// saturated. It returns (enqueued, preemptedCount).
func (p *WorkerPool) EnqueueCurrentWithPreemption(task pagekey.RenderTask, taskID string, currentGen uint64, keepKey pagekey.PageKey) (bool, int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.inFlight[task.Key]; exists {
		return true, 0
	}
	if len(p.inFlight) < p.capacity {
		return p.enqueueLocked(task, taskID), 0
	}

	victimKey, ok := p.selectPreemptionVictim(currentGen, keepKey)
	if !ok {
		return false, 0
	}
	p.inFlight[victimKey].Canceled = true
	return false, 1
}

type preemptionCandidate struct {
	key        pagekey.PageKey
	staleRank  int
	classRank  int
	generation uint64
	taskID     string
}

func lessCandidate(a, b preemptionCandidate) bool {
	if a.staleRank != b.staleRank {
		return a.staleRank < b.staleRank
	}
	if a.classRank != b.classRank {
		return a.classRank < b.classRank
	}
	if a.generation != b.generation {
		return a.generation < b.generation
	}
	return a.taskID < b.taskID
}

func (p *WorkerPool) selectPreemptionVictim(currentGen uint64, keepKey pagekey.PageKey) (pagekey.PageKey, bool) {
	var best *preemptionCandidate
	for key, entry := range p.inFlight {
		if key == keepKey {
			continue
		}
		var classRank int
		switch entry.Priority {
		case pagekey.Background:
			classRank = 0
		case pagekey.DirectionalLead:
			classRank = 1
		default:
			continue // CriticalCurrent and GuardReverse are never preemption victims
		}
		staleRank := 1
		if entry.Generation < currentGen {
			staleRank = 0
		}
		cand := preemptionCandidate{key: key, staleRank: staleRank, classRank: classRank, generation: entry.Generation, taskID: entry.TaskID}
		if best == nil || lessCandidate(cand, *best) {
			c := cand
			best = &c
		}
	}
	if best == nil {
		var zero pagekey.PageKey
		return zero, false
	}
	return best.key, true
}

// CancelStalePrefetchExcept marks every in-flight Lead/Background entry with
// generation < gen as canceled, unless its key equals keepKey.
func (p *WorkerPool) CancelStalePrefetchExcept(gen uint64, keepKey pagekey.PageKey) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	count := 0
	for key, entry := range p.inFlight {
		if key == keepKey {
			continue
		}
		if entry.Priority != pagekey.DirectionalLead && entry.Priority != pagekey.Background {
			continue
		}
		if entry.Generation < gen && !entry.Canceled {
			entry.Canceled = true
			count++
		}
	}
	return count
}

// RecvResult blocks for the next render result. ok is false once the pool is
// shut down and drained.
func (p *WorkerPool) RecvResult() (ResultEvent, bool) {
	ev, ok := <-p.resultCh
	return ev, ok
}

// Results exposes the result channel directly so a supervisor can multiplex
// it in a select statement alongside other event sources.
func (p *WorkerPool) Results() <-chan ResultEvent { return p.resultCh }

// AcceptResult looks up the in-flight entry for ev.Key, requiring a matching
// TaskID and a non-canceled entry. On acceptance the entry is removed and ok
// is true; otherwise the result is stale and must be silently dropped. A
// canceled entry is also removed once its own result arrives — the worker is
// done with it, so the slot frees up even though the result is discarded.
func (p *WorkerPool) AcceptResult(ev ResultEvent) (ResultEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, exists := p.inFlight[ev.Key]
	if !exists || entry.TaskID != ev.TaskID {
		return ResultEvent{}, false
	}
	delete(p.inFlight, ev.Key)
	if entry.Canceled {
		return ResultEvent{}, false
	}
	return ev, true
}

// Shutdown stops accepting work, joins all worker goroutines, and closes
// every document handle, aggregating any close errors.
func (p *WorkerPool) Shutdown() error {
	close(p.doneCh)
	p.wg.Wait()
	close(p.resultCh)
	var result *multierror.Error
	for _, d := range p.docs {
		if err := d.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
