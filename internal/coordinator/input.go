package coordinator

import (
	"bufio"
	"io"

	"github.com/shiguri-01/preview-pdf/internal/event"
)

// runInputActor reads raw terminal input and forwards it as DomainEvents on
// eventCh until the reader errors or doneCh closes. It owns no coordinator
// state — decoding a handful of bytes into the small vocabulary the keymap
// understands ("up", "pgdown", "ctrl+c", a literal rune, ...) is the full
// extent of input handling this layer does; the actual keymap tables that
// turn a decoded key into a Command are out of scope beyond this contract.
func runInputActor(r io.Reader, eventCh chan<- event.DomainEvent, doneCh <-chan struct{}) {
	reader := bufio.NewReader(r)
	for {
		key, err := decodeKey(reader)
		if err != nil {
			select {
			case eventCh <- event.NewInputError(err.Error()):
			case <-doneCh:
			}
			return
		}
		select {
		case eventCh <- event.NewInput(key):
		case <-doneCh:
			return
		}
	}
}

// decodeKey reads one logical keypress from r, resolving the common
// single-byte controls and CSI escape sequences to the same string
// vocabulary bubbletea's key.Binding.Keys() uses, so tui.NavigationKeyMap
// can match against it directly.
func decodeKey(r *bufio.Reader) (string, error) {
	b, err := r.ReadByte()
	if err != nil {
		return "", err
	}

	switch b {
	case 0x0d, 0x0a:
		return "enter", nil
	case 0x09:
		return "tab", nil
	case 0x1b:
		return decodeEscape(r)
	}
	// Remaining C0 controls decode as ctrl+<letter>, the spelling
	// key.Binding.Keys() uses ("ctrl+c", "ctrl+p", ...).
	if b >= 0x01 && b <= 0x1a {
		return "ctrl+" + string(rune('a'+b-0x01)), nil
	}
	return string(rune(b)), nil
}

func decodeEscape(r *bufio.Reader) (string, error) {
	next, err := r.Peek(1)
	if err != nil || len(next) == 0 {
		return "esc", nil
	}
	// ESC followed by a printable byte is an alt chord ("alt+x").
	if next[0] != '[' {
		if next[0] >= 0x20 && next[0] < 0x7f {
			_, _ = r.ReadByte()
			return "alt+" + string(rune(next[0])), nil
		}
		return "esc", nil
	}
	_, _ = r.ReadByte() // consume '['

	b, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	switch b {
	case 'A':
		return "up", nil
	case 'B':
		return "down", nil
	case 'C':
		return "right", nil
	case 'D':
		return "left", nil
	case 'H':
		return "home", nil
	case 'F':
		return "end", nil
	}
	// Numeric CSI sequences end in '~' (e.g. "5~" = pgup, "6~" = pgdown).
	digits := []byte{b}
	for {
		nb, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if nb == '~' {
			break
		}
		digits = append(digits, nb)
	}
	switch string(digits) {
	case "5":
		return "pgup", nil
	case "6":
		return "pgdown", nil
	case "1", "7":
		return "home", nil
	case "4", "8":
		return "end", nil
	default:
		return "esc", nil
	}
}
