// Package history tracks visited pages so the viewer can navigate back and
// forward, the way a browser's history stack does.
package history

import "github.com/shiguri-01/preview-pdf/internal/pagekey"

const defaultMaxSize = 500

// History holds PageKey values by value. Entries are append-only except for
// truncation at maxSize; Back/Forward move a cursor through the stack
// without mutating it, mirroring a REPL's up/down history browsing.
type History struct {
	entries []pagekey.PageKey
	cursor  int
	maxSize int
}

// New returns an empty History. cursor starts at -1 ("not browsing").
func New() *History {
	return &History{cursor: -1, maxSize: defaultMaxSize}
}

// Visit records a page as the current position, deduplicating consecutive
// identical entries and resetting any in-progress Back/Forward browsing.
func (h *History) Visit(key pagekey.PageKey) {
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == key {
		h.cursor = -1
		return
	}
	h.entries = append(h.entries, key)
	if len(h.entries) > h.maxSize {
		h.entries = h.entries[len(h.entries)-h.maxSize:]
	}
	h.cursor = -1
}

// Back moves to the previous entry, returning it and true. It returns false
// if there is nothing older to move to.
func (h *History) Back() (pagekey.PageKey, bool) {
	if len(h.entries) == 0 {
		return pagekey.PageKey{}, false
	}
	if h.cursor == -1 {
		h.cursor = len(h.entries) - 1
	}
	if h.cursor == 0 {
		return h.entries[0], false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Forward moves to the next, newer entry. It returns false once already at
// the newest entry or when browsing hasn't started.
func (h *History) Forward() (pagekey.PageKey, bool) {
	if h.cursor == -1 || h.cursor >= len(h.entries)-1 {
		return pagekey.PageKey{}, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// Len reports the number of recorded visits.
func (h *History) Len() int { return len(h.entries) }

// Search returns visited keys on the given page index, most recent first.
// This backs the palette's "jump to a page I've seen" lookup.
func (h *History) Search(pageIndex int) []pagekey.PageKey {
	var matches []pagekey.PageKey
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].PageIndex == pageIndex {
			matches = append(matches, h.entries[i])
		}
	}
	return matches
}
