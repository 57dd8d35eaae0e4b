// Package event defines the closed set of messages the coordinator loop
// selects over: input from the terminal, results flowing back from the
// render and encode worker pools, and the loop's own timers.
package event

import (
	"github.com/shiguri-01/preview-pdf/internal/pagekey"
	"github.com/shiguri-01/preview-pdf/internal/presenter"
	"github.com/shiguri-01/preview-pdf/internal/render"
)

// Command is a resolved user action, already decoded from a raw key event
// by the keymap layer.
type Command int

const (
	CommandNone Command = iota
	CommandNextPage
	CommandPrevPage
	CommandFirstPage
	CommandLastPage
	CommandGotoPage
	CommandZoomIn
	CommandZoomOut
	CommandZoomReset
	CommandPanUp
	CommandPanDown
	CommandPanLeft
	CommandPanRight
	CommandSearch
	CommandOpenPalette
	CommandQuit
)

// Kind identifies which field of DomainEvent is populated.
type Kind int

const (
	KindInput Kind = iota
	KindInputError
	KindCommand
	KindApplication
	KindRenderComplete
	KindEncodeComplete
	KindEncodeStale
	KindPrefetchTick
	KindRedrawTick
	KindWake
)

// ApplicationEvent carries terminal resize and focus notifications that
// aren't themselves commands but still invalidate cached layout.
type ApplicationEvent struct {
	Resized      bool
	ViewportRows int
	ViewportCols int
	FocusGained  bool
}

// DomainEvent is the closed union of everything the coordinator loop can
// observe in a single iteration. Exactly one field is meaningful per event;
// Kind says which.
type DomainEvent struct {
	Kind Kind

	// KindInput / KindInputError
	RawKey      string
	InputErrMsg string

	// KindCommand
	Cmd    Command
	CmdArg int // e.g. goto-page target

	// KindApplication
	App ApplicationEvent

	// KindRenderComplete
	RenderResult render.ResultEvent

	// KindEncodeComplete / KindEncodeStale
	EncodeResult presenter.EncodeResult
	StaleKey     pagekey.L2Key
}

func NewInput(raw string) DomainEvent { return DomainEvent{Kind: KindInput, RawKey: raw} }

func NewInputError(msg string) DomainEvent {
	return DomainEvent{Kind: KindInputError, InputErrMsg: msg}
}

func NewCommand(cmd Command, arg int) DomainEvent {
	return DomainEvent{Kind: KindCommand, Cmd: cmd, CmdArg: arg}
}

func NewApplication(app ApplicationEvent) DomainEvent {
	return DomainEvent{Kind: KindApplication, App: app}
}

func NewRenderComplete(res render.ResultEvent) DomainEvent {
	return DomainEvent{Kind: KindRenderComplete, RenderResult: res}
}

func NewEncodeComplete(res presenter.EncodeResult) DomainEvent {
	return DomainEvent{Kind: KindEncodeComplete, EncodeResult: res}
}

func NewEncodeStale(key pagekey.L2Key) DomainEvent {
	return DomainEvent{Kind: KindEncodeStale, StaleKey: key}
}

func NewPrefetchTick() DomainEvent { return DomainEvent{Kind: KindPrefetchTick} }
func NewRedrawTick() DomainEvent   { return DomainEvent{Kind: KindRedrawTick} }
func NewWake() DomainEvent         { return DomainEvent{Kind: KindWake} }
