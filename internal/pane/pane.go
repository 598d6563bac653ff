package pane

import (
	"fmt"
	"strings"
	"time"

	"github.com/techdufus/axon/internal/buffer"
	"github.com/techdufus/axon/internal/history"
	"github.com/techdufus/axon/internal/layout"
	"github.com/techdufus/axon/internal/ptyx"
	"github.com/techdufus/axon/internal/shell"
	"github.com/techdufus/axon/internal/term"
	"github.com/techdufus/axon/internal/theme"
)

// snippetLines caps how much command output is copied into a history entry.
const snippetLines = 5

// recentCap bounds the pane-local command list persisted with a session.
const recentCap = 100

// Pane is one independent terminal view: shell state, scrollback, input
// line, and — while a PTY command runs — a grid fed from the session.
type Pane struct {
	id    string
	state *shell.State

	router *shell.Router
	buf    *buffer.Buffer
	theme  *theme.Theme

	// native-mode line editing
	input     string
	cursorPos int
	saved     string
	histIdx   int
	sugs      []string
	sugIdx    int

	// recent is this pane's own command list, navigated by Up/Down and
	// persisted with the session. The shared smart-history log stays the
	// source for !-expansion, suggestions, and fuzzy search.
	recent []string

	// scroll is how many lines above the bottom the native view sits.
	scroll int

	// PTY mode
	pty       *ptyx.Session
	grid      *term.Grid
	ptyMode   bool
	ptyCmd    string
	ptyStart  time.Time
	closeWant bool

	// overlay state owned by the pane
	searchQuery string
	hintsShown  bool
	viMode      bool

	rows, cols int
	rect       layout.Rect
}

// New creates a native-mode pane with fresh shell state.
func New(id string, router *shell.Router, th *theme.Theme, scrollback int) *Pane {
	st := shell.NewState()
	st.Theme = th.Name
	return &Pane{
		id:      id,
		state:   st,
		router:  router,
		buf:     buffer.New(scrollback),
		theme:   th,
		histIdx: -1,
	}
}

func (p *Pane) ID() string            { return p.id }
func (p *Pane) State() *shell.State   { return p.state }
func (p *Pane) Buffer() *buffer.Buffer { return p.buf }
func (p *Pane) Grid() *term.Grid      { return p.grid }
func (p *Pane) PTYMode() bool         { return p.ptyMode }
func (p *Pane) Input() string         { return p.input }
func (p *Pane) CursorPos() int        { return p.cursorPos }
func (p *Pane) Cwd() string           { return p.state.Cwd }
func (p *Pane) Suggestions() []string { return p.sugs }

// CloseRequested reports whether `exit` asked to close this pane, and
// clears the flag.
func (p *Pane) CloseRequested() bool {
	want := p.closeWant
	p.closeWant = false
	return want
}

// SetTheme switches the theme used for the grid palette and rendering.
func (p *Pane) SetTheme(th *theme.Theme) {
	p.theme = th
	p.state.Theme = th.Name
	if p.grid != nil {
		p.grid.SetPalette(th.Palette)
	}
}

func (p *Pane) Theme() *theme.Theme { return p.theme }

// Resize propagates a new pane rectangle to the grid and the PTY.
func (p *Pane) Resize(rect layout.Rect) {
	p.rect = rect
	rows, cols := rect.H, rect.W
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	p.rows, p.cols = rows, cols
	if p.grid != nil {
		p.grid.Resize(rows, cols)
	}
	if p.pty != nil {
		p.pty.Resize(rows, cols)
	}
}

// Rect returns the pane's last layout rectangle.
func (p *Pane) Rect() layout.Rect { return p.rect }

// Poll drains the PTY session (if any) into the grid. Called once per UI
// frame. On child exit the pane returns to native mode, records history,
// and keeps the grid visible until the next command.
func (p *Pane) Poll() {
	if p.pty == nil {
		return
	}
	events, alive := p.pty.Poll()
	for _, ev := range events {
		switch ev.Kind {
		case ptyx.EventData:
			p.grid.Feed(ev.Data)
		case ptyx.EventExited:
			p.finishPTY(ev.ExitCode, "")
		case ptyx.EventError:
			p.finishPTY(-1, ev.Err)
		}
	}
	if !alive && p.pty != nil && !p.ptyMode {
		// terminal event already handled; nothing left to drain
		p.pty = nil
	}
}

func (p *Pane) finishPTY(exitCode int, errMsg string) {
	duration := time.Since(p.ptyStart)
	if p.pty != nil {
		p.pty.Close()
		p.pty = nil
	}
	p.ptyMode = false

	if errMsg != "" {
		p.buf.AppendLine(fmt.Sprintf("pty: %s", errMsg))
	}
	p.router.History().Record(history.Entry{
		Command:  p.ptyCmd,
		Cwd:      p.state.Cwd,
		ExitCode: exitCode,
		Duration: duration,
	})
	p.ptyCmd = ""
}

// Submit runs the current input line through the router and resets the
// editor. The outcome lands in the buffer (captured/builtin) or attaches a
// PTY session.
func (p *Pane) Submit() {
	line := strings.TrimSpace(p.input)
	p.input = ""
	p.cursorPos = 0
	p.histIdx = -1
	p.saved = ""
	p.sugs = nil
	if line == "" {
		return
	}
	p.rememberCommand(line)
	p.scroll = 0
	// a new command hides the grid left by a finished PTY command
	p.grid = nil

	outcome := p.router.Route(p.state, line)

	if outcome.Kind == shell.OutcomePTY {
		p.startPTY(line, outcome.Argv)
		return
	}

	if outcome.ClearScreen {
		p.buf.Clear()
		return
	}
	if outcome.ExitPane {
		p.closeWant = true
		return
	}

	p.buf.BeginBlock(line)
	if outcome.Output != "" {
		p.buf.Append(outcome.Output)
	}
	p.buf.EndBlock(outcome.ExitCode, outcome.Duration)

	p.router.History().Record(history.Entry{
		Command:  line,
		Cwd:      p.state.Cwd,
		ExitCode: outcome.ExitCode,
		Duration: outcome.Duration,
		Snippet:  firstLines(outcome.Output, snippetLines),
	})
}

// startPTY attaches a fresh session and grid for argv. A spawn failure
// keeps the pane in native mode with the error as a block.
func (p *Pane) startPTY(line string, argv []string) {
	rows, cols := p.rows, p.cols
	if rows < 1 || cols < 1 {
		rows, cols = 24, 80
	}

	grid := term.New(rows, cols, term.ColorDefaultFG, term.ColorDefaultBG)
	grid.SetPalette(p.theme.Palette)

	sess, err := ptyx.Spawn(argv[0], argv[1:], p.state.Cwd, p.state.Environ(), rows, cols)
	if err != nil {
		p.buf.BeginBlock(line)
		p.buf.AppendLine(err.Error())
		p.buf.EndBlock(127, 0)
		p.router.History().Record(history.Entry{
			Command:  line,
			Cwd:      p.state.Cwd,
			ExitCode: 127,
		})
		return
	}

	p.grid = grid
	p.pty = sess
	p.ptyMode = true
	p.ptyCmd = line
	p.ptyStart = time.Now()
}

// ClosePTY force-terminates a running PTY command (Ctrl+C fallback is the
// child's business; this is the explicit close path).
func (p *Pane) ClosePTY() {
	if p.pty != nil {
		p.finishPTY(-1, "")
	}
}

// Close releases pane resources.
func (p *Pane) Close() {
	if p.pty != nil {
		p.pty.Close()
		p.pty = nil
	}
	p.ptyMode = false
}

// --- native-mode line editing ---

// InsertRunes places text at the cursor.
func (p *Pane) InsertRunes(runes []rune) {
	s := string(runes)
	p.input = p.input[:p.cursorPos] + s + p.input[p.cursorPos:]
	p.cursorPos += len(s)
	p.refreshSuggestions()
}

// Backspace deletes the rune before the cursor.
func (p *Pane) Backspace() {
	if p.cursorPos == 0 {
		return
	}
	runes := []rune(p.input[:p.cursorPos])
	cut := len(string(runes[len(runes)-1]))
	p.input = p.input[:p.cursorPos-cut] + p.input[p.cursorPos:]
	p.cursorPos -= cut
	p.refreshSuggestions()
}

// MoveCursor shifts the edit cursor by delta bytes, clamped.
func (p *Pane) MoveCursor(delta int) {
	p.cursorPos += delta
	if p.cursorPos < 0 {
		p.cursorPos = 0
	}
	if p.cursorPos > len(p.input) {
		p.cursorPos = len(p.input)
	}
}

// CursorHome and CursorEnd jump to the line edges.
func (p *Pane) CursorHome() { p.cursorPos = 0 }
func (p *Pane) CursorEnd()  { p.cursorPos = len(p.input) }

// KillLine clears the input line.
func (p *Pane) KillLine() {
	p.input = ""
	p.cursorPos = 0
	p.sugs = nil
}

func (p *Pane) rememberCommand(line string) {
	p.recent = append(p.recent, line)
	if len(p.recent) > recentCap {
		p.recent = p.recent[len(p.recent)-recentCap:]
	}
}

// Recent returns the pane's own command list, oldest first.
func (p *Pane) Recent() []string {
	out := make([]string, len(p.recent))
	copy(out, p.recent)
	return out
}

// SeedRecent replays a persisted command list into the pane (session
// restore).
func (p *Pane) SeedRecent(cmds []string) {
	if len(cmds) > recentCap {
		cmds = cmds[len(cmds)-recentCap:]
	}
	p.recent = make([]string, len(cmds))
	copy(p.recent, cmds)
	p.histIdx = -1
}

// Scroll returns how many lines above the bottom the native view sits.
func (p *Pane) Scroll() int { return p.scroll }

// SetScroll jumps the native view. The renderer bounds the window, so only
// negative offsets are clamped here (a restored offset may precede any
// buffer content).
func (p *Pane) SetScroll(n int) {
	if n < 0 {
		n = 0
	}
	p.scroll = n
}

// ScrollBy moves the native view relative to its current offset, bounded by
// the buffer.
func (p *Pane) ScrollBy(delta int) {
	n := p.scroll + delta
	if n > p.buf.Len() {
		n = p.buf.Len()
	}
	p.SetScroll(n)
}

// HistoryUp walks to the previous command of this pane, saving the
// in-progress input so HistoryDown can restore it.
func (p *Pane) HistoryUp() {
	cmds := p.recent
	if len(cmds) == 0 {
		return
	}
	if p.histIdx == -1 {
		p.saved = p.input
		p.histIdx = len(cmds) - 1
	} else if p.histIdx > 0 {
		p.histIdx--
	} else {
		return
	}
	p.input = cmds[p.histIdx]
	p.cursorPos = len(p.input)
}

// HistoryDown walks forward, restoring the saved input past the newest
// entry.
func (p *Pane) HistoryDown() {
	if p.histIdx == -1 {
		return
	}
	cmds := p.recent
	if p.histIdx < len(cmds)-1 {
		p.histIdx++
		p.input = cmds[p.histIdx]
	} else {
		p.histIdx = -1
		p.input = p.saved
		p.saved = ""
	}
	p.cursorPos = len(p.input)
}

// AcceptSuggestion replaces the input with the highlighted suggestion.
func (p *Pane) AcceptSuggestion() {
	if len(p.sugs) == 0 {
		return
	}
	p.input = p.sugs[p.sugIdx]
	p.cursorPos = len(p.input)
	p.sugs = nil
}

// CycleSuggestion moves the highlight through the suggestion list.
func (p *Pane) CycleSuggestion(delta int) {
	if len(p.sugs) == 0 {
		return
	}
	p.sugIdx = (p.sugIdx + delta + len(p.sugs)) % len(p.sugs)
}

// SuggestionIndex returns the highlighted suggestion position.
func (p *Pane) SuggestionIndex() int { return p.sugIdx }

func (p *Pane) refreshSuggestions() {
	if p.input == "" {
		p.sugs = nil
		return
	}
	p.sugs = p.router.History().Lookup(p.input, p.state.Cwd, 5)
	p.sugIdx = 0
}

// --- overlays ---

func (p *Pane) SetSearchQuery(q string) { p.searchQuery = q }
func (p *Pane) SearchQuery() string     { return p.searchQuery }

// SearchMatches returns the buffer lines containing the query.
func (p *Pane) SearchMatches() []int {
	if p.searchQuery == "" {
		return nil
	}
	var matches []int
	for i, line := range p.buf.Lines() {
		if strings.Contains(line, p.searchQuery) {
			matches = append(matches, i)
		}
	}
	return matches
}

func (p *Pane) ToggleHints() bool {
	p.hintsShown = !p.hintsShown
	return p.hintsShown
}
func (p *Pane) HintsShown() bool { return p.hintsShown }

func (p *Pane) ToggleViMode() bool {
	p.viMode = !p.viMode
	return p.viMode
}
func (p *Pane) ViMode() bool { return p.viMode }

func firstLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
