package tui

import "github.com/charmbracelet/bubbles/key"

// NavigationKeyMap holds one binding per command the coordinator resolves;
// DefaultKeyMap and EmacsKeyMap fill it for the two presets.
type NavigationKeyMap struct {
	NextPage  key.Binding
	PrevPage  key.Binding
	FirstPage key.Binding
	LastPage  key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	ZoomReset key.Binding
	Palette   key.Binding
	Quit      key.Binding
}

// DefaultKeyMap is the `keymap.preset = "default"` binding set.
func DefaultKeyMap() NavigationKeyMap {
	return NavigationKeyMap{
		NextPage:  key.NewBinding(key.WithKeys("right", "pgdown", "l", "n"), key.WithHelp("n", "next page")),
		PrevPage:  key.NewBinding(key.WithKeys("left", "pgup", "h", "p"), key.WithHelp("p", "prev page")),
		FirstPage: key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first page")),
		LastPage:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last page")),
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		ZoomReset: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset zoom")),
		Palette:   key.NewBinding(key.WithKeys(":", "ctrl+p"), key.WithHelp(":", "palette")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// EmacsKeyMap is the `keymap.preset = "emacs"` binding set: the same command
// set, reachable through emacs-style chords instead of vi-style letters.
func EmacsKeyMap() NavigationKeyMap {
	return NavigationKeyMap{
		NextPage:  key.NewBinding(key.WithKeys("right", "pgdown", "ctrl+f", "ctrl+n"), key.WithHelp("C-n", "next page")),
		PrevPage:  key.NewBinding(key.WithKeys("left", "pgup", "ctrl+b", "ctrl+p"), key.WithHelp("C-p", "prev page")),
		FirstPage: key.NewBinding(key.WithKeys("ctrl+a", "home"), key.WithHelp("C-a", "first page")),
		LastPage:  key.NewBinding(key.WithKeys("ctrl+e", "end"), key.WithHelp("C-e", "last page")),
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		ZoomReset: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset zoom")),
		Palette:   key.NewBinding(key.WithKeys("alt+x"), key.WithHelp("M-x", "palette")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+x ctrl+c", "ctrl+g"), key.WithHelp("C-g", "quit")),
	}
}

// ForPreset resolves a config keymap.preset string to its binding set,
// falling back to DefaultKeyMap for anything but "emacs".
func ForPreset(preset string) NavigationKeyMap {
	if preset == "emacs" {
		return EmacsKeyMap()
	}
	return DefaultKeyMap()
}
