package pane

import (
	tea "github.com/charmbracelet/bubbletea"
)

// HandleKey processes a focused key event. In PTY mode the key becomes a
// byte sequence written to the child; in native mode it edits the input
// line (Enter submits).
func (p *Pane) HandleKey(msg tea.KeyMsg) {
	if p.ptyMode {
		if input := translateKey(msg); len(input) > 0 && p.pty != nil {
			p.pty.Write(input)
		}
		return
	}
	p.handleNativeKey(msg)
}

func (p *Pane) handleNativeKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter:
		p.Submit()
	case tea.KeyBackspace:
		p.Backspace()
	case tea.KeyLeft:
		p.MoveCursor(-1)
	case tea.KeyRight:
		p.MoveCursor(1)
	case tea.KeyUp:
		if len(p.sugs) > 0 {
			p.CycleSuggestion(-1)
		} else {
			p.HistoryUp()
		}
	case tea.KeyDown:
		if len(p.sugs) > 0 {
			p.CycleSuggestion(1)
		} else {
			p.HistoryDown()
		}
	case tea.KeyTab:
		p.AcceptSuggestion()
	case tea.KeyHome, tea.KeyCtrlA:
		p.CursorHome()
	case tea.KeyEnd, tea.KeyCtrlE:
		p.CursorEnd()
	case tea.KeyCtrlU:
		p.KillLine()
	case tea.KeyPgUp:
		p.ScrollBy(5)
	case tea.KeyPgDown:
		p.ScrollBy(-5)
	case tea.KeySpace:
		p.InsertRunes([]rune{' '})
	case tea.KeyRunes:
		p.InsertRunes(msg.Runes)
	}
}

// translateKey converts a Bubbletea KeyMsg to the byte sequence a terminal
// would send the child.
func translateKey(msg tea.KeyMsg) []byte {
	key := msg.String()

	switch {
	// Ctrl+A through Ctrl+Z → 0x01-0x1A
	case len(key) == 6 && key[:5] == "ctrl+" && key[5] >= 'a' && key[5] <= 'z':
		return []byte{byte(key[5] - 'a' + 1)}

	// Alt+letter → ESC + letter
	case len(key) == 5 && key[:4] == "alt+" && key[4] >= 'a' && key[4] <= 'z':
		return []byte{27, key[4]}
	}

	switch msg.Type {
	case tea.KeyEnter:
		return []byte("\r")
	case tea.KeyBackspace:
		return []byte{127}
	case tea.KeyTab:
		if msg.Alt {
			return []byte("\x1b[Z") // Shift+Tab
		}
		return []byte("\t")
	case tea.KeyUp:
		return []byte("\x1b[A")
	case tea.KeyDown:
		return []byte("\x1b[B")
	case tea.KeyRight:
		return []byte("\x1b[C")
	case tea.KeyLeft:
		return []byte("\x1b[D")
	case tea.KeyEscape:
		return []byte{27}
	case tea.KeyHome:
		return []byte("\x1b[H")
	case tea.KeyEnd:
		return []byte("\x1b[F")
	case tea.KeyPgUp:
		return []byte("\x1b[5~")
	case tea.KeyPgDown:
		return []byte("\x1b[6~")
	case tea.KeyDelete:
		return []byte("\x1b[3~")
	case tea.KeySpace:
		return []byte(" ")
	case tea.KeyRunes:
		return []byte(string(msg.Runes))
	}

	return nil
}
