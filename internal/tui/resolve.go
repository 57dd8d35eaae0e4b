package tui

import "github.com/shiguri-01/preview-pdf/internal/event"

// Resolve maps a single decoded key string (as produced by the terminal
// input reader) to a Command under this key map. It is a direct string
// comparison against each binding's key list rather than bubbletea's
// key.Matches, since the coordinator reads raw bytes itself rather than
// running a bubbletea program — the full keymap dispatch table remains out
// of scope, this only resolves the fixed command set the coordinator knows
// about.
func (km NavigationKeyMap) Resolve(raw string) event.Command {
	switch {
	case contains(km.Quit.Keys(), raw):
		return event.CommandQuit
	case contains(km.NextPage.Keys(), raw):
		return event.CommandNextPage
	case contains(km.PrevPage.Keys(), raw):
		return event.CommandPrevPage
	case contains(km.FirstPage.Keys(), raw):
		return event.CommandFirstPage
	case contains(km.LastPage.Keys(), raw):
		return event.CommandLastPage
	case contains(km.ZoomIn.Keys(), raw):
		return event.CommandZoomIn
	case contains(km.ZoomOut.Keys(), raw):
		return event.CommandZoomOut
	case contains(km.ZoomReset.Keys(), raw):
		return event.CommandZoomReset
	case contains(km.Palette.Keys(), raw):
		return event.CommandOpenPalette
	default:
		return event.CommandNone
	}
}

func contains(keys []string, raw string) bool {
	for _, k := range keys {
		if k == raw {
			return true
		}
	}
	return false
}
