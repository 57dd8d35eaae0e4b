// Package extension describes the interface the out-of-scope search and
// palette UIs sit behind. spec.md names this only at its boundary with the
// core pipeline: a tagged {Ignored, Consumed, EmitCommand} input-hook result
// plus an on_background hook that extensions use to drain their own
// internal progress (e.g. a search scan advancing in the background).
package extension

import "github.com/shiguri-01/preview-pdf/internal/event"

// OutcomeKind tags which field of Outcome is meaningful.
type OutcomeKind int

const (
	// Ignored means the extension did not want this input; the coordinator
	// falls through to its own keymap handling.
	Ignored OutcomeKind = iota
	// Consumed means the extension fully handled the input; the
	// coordinator only needs to redraw.
	Consumed
	// EmitCommand means the extension translated the input into a domain
	// Command the coordinator should dispatch as if the keymap had
	// produced it directly.
	EmitCommand
)

// Outcome is the result of offering a raw input event to an extension.
type Outcome struct {
	Kind    OutcomeKind
	Command event.Command
}

// Ignore, Consume, and Emit construct the three Outcome variants.
func Ignore() Outcome                { return Outcome{Kind: Ignored} }
func Consume() Outcome               { return Outcome{Kind: Consumed} }
func Emit(cmd event.Command) Outcome { return Outcome{Kind: EmitCommand, Command: cmd} }

// Extension is the capability set search/history/palette hosts implement.
// Nothing in this module ships a concrete search scanner or palette UI —
// those remain out of scope per spec.md §1 — but the coordinator drives any
// Extension through exactly this seam.
type Extension interface {
	// HandleInput offers a raw key to the extension before the keymap runs.
	HandleInput(raw string) Outcome
	// OnBackground lets the extension advance internal progress (e.g. a
	// search scan) outside of input handling. It reports whether state
	// changed in a way that warrants a redraw.
	OnBackground() bool
}

// Host fans a raw input event and the background-drain hook out across a
// fixed set of extensions, first-match-wins on HandleInput, matching the
// original's ExtensionHost::handle_input/drain_background shape.
type Host struct {
	extensions []Extension
}

// NewHost constructs a Host over the given extensions, tried in order.
func NewHost(extensions ...Extension) *Host {
	return &Host{extensions: extensions}
}

// HandleInput returns the first non-Ignored outcome, or Ignore() if every
// extension passes.
func (h *Host) HandleInput(raw string) Outcome {
	for _, ext := range h.extensions {
		if outcome := ext.HandleInput(raw); outcome.Kind != Ignored {
			return outcome
		}
	}
	return Ignore()
}

// DrainBackground calls OnBackground on every extension, returning true if
// any of them reports a change.
func (h *Host) DrainBackground() bool {
	changed := false
	for _, ext := range h.extensions {
		if ext.OnBackground() {
			changed = true
		}
	}
	return changed
}
