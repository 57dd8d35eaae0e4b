package coordinator

import (
	"io"

	"github.com/shiguri-01/preview-pdf/internal/apperr"
	"github.com/shiguri-01/preview-pdf/internal/backend"
	"github.com/shiguri-01/preview-pdf/internal/config"
	"github.com/shiguri-01/preview-pdf/internal/extension"
	"github.com/shiguri-01/preview-pdf/internal/history"
	"github.com/shiguri-01/preview-pdf/internal/pagekey"
	"github.com/shiguri-01/preview-pdf/internal/presenter"
	"github.com/shiguri-01/preview-pdf/internal/render"
	"github.com/shiguri-01/preview-pdf/internal/termsession"
	"github.com/shiguri-01/preview-pdf/internal/tui"
)

// Coordinator is the single cooperative supervisor (C6). It owns every piece
// of core mutable state directly — the render runtime, the presenter facade,
// the extension host, the view-facing AppState — and drives them from one
// loop in Run. It is deliberately not a bubbletea Model: nothing here hands
// control to a second event loop.
type Coordinator struct {
	cfg     config.Config
	doc     backend.Document
	session *termsession.Session
	pool    *render.WorkerPool
	facade  *presenter.Facade
	runtime *RenderRuntime
	history *history.History
	extHost *extension.Host
	keymap  tui.NavigationKeyMap
	out     io.Writer

	pageCount      int
	state          AppState
	lastCurrentKey pagekey.PageKey
}

// New wires a Coordinator. doc must already be open; pool, facade, and
// extHost are assumed fully constructed and ready to run.
func New(cfg config.Config, doc backend.Document, session *termsession.Session, pool *render.WorkerPool, facade *presenter.Facade, extHost *extension.Host, out io.Writer) (*Coordinator, error) {
	pageCount := doc.PageCount()
	if pageCount < 1 {
		return nil, apperr.InvalidArgumentf("document has no pages")
	}
	return &Coordinator{
		cfg:       cfg,
		doc:       doc,
		session:   session,
		pool:      pool,
		facade:    facade,
		runtime:   NewRenderRuntime(cfg.Cache.L1MaxEntries, cfg.Cache.L1MemoryBudgetBytes()),
		history:   history.New(),
		extHost:   extHost,
		keymap:    tui.ForPreset(cfg.Keymap.Preset),
		out:       out,
		pageCount: pageCount,
		state:     NewAppState(),
	}, nil
}
