package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/techdufus/axon/internal/config"
	"github.com/techdufus/axon/internal/history"
	"github.com/techdufus/axon/internal/layout"
	"github.com/techdufus/axon/internal/pane"
	"github.com/techdufus/axon/internal/session"
	"github.com/techdufus/axon/internal/shell"
	"github.com/techdufus/axon/internal/theme"
)

// pollInterval drives the frame loop that drains PTY sessions.
const pollInterval = 33 * time.Millisecond

// Mode selects which overlay owns the keyboard.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFuzzy
	ModeSearch
	ModeHints
)

type pollTickMsg struct{}

// Tab is one split tree plus the panes living in its leaves.
type Tab struct {
	ID    string
	Title string
	Tree  *layout.Tree
	Panes map[string]*pane.Pane
}

// FocusedPane returns the pane owning keyboard input in this tab.
func (t *Tab) FocusedPane() *pane.Pane {
	return t.Panes[t.Tree.Focused()]
}

// Model is the single-threaded event loop state: tabs, overlays, and the
// shared history log. All pane logic runs on this loop; only PTY readers
// live on other goroutines.
type Model struct {
	cfg    *config.Config
	th     *theme.Theme
	hist   *history.Log
	router *shell.Router

	tabs   []*Tab
	active int

	width, height int

	mode         Mode
	overlayInput textinput.Model
	fuzzyResults []string
	fuzzySel     int

	sessionName string
	quitting    bool
}

// NewModel builds the initial model. warnings (from config validation) are
// shown as a block in the first pane.
func NewModel(cfg *config.Config, hist *history.Log, sessionName, warnings string) *Model {
	th, err := theme.Lookup(cfg.Theme)
	if err != nil {
		th = theme.MustDefault()
	}

	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 256

	m := &Model{
		cfg:          cfg,
		th:           th,
		hist:         hist,
		router:       shell.NewRouter(hist),
		overlayInput: input,
		sessionName:  sessionName,
	}
	m.tabs = []*Tab{m.newTab("")}
	if warnings != "" {
		first := m.tabs[0].FocusedPane()
		first.Buffer().BeginBlock("config")
		first.Buffer().Append("config warnings:\n" + warnings)
		first.Buffer().EndBlock(1, 0)
	}
	return m
}

// RestoreSession rebuilds tabs from a saved session document.
func (m *Model) RestoreSession(s *session.Session) {
	if s == nil || len(s.Tabs) == 0 {
		return
	}
	m.tabs = nil
	for _, ts := range s.Tabs {
		tab := m.newTab(ts.Title)
		p := tab.FocusedPane()
		if ts.Cwd != "" {
			p.State().Cwd = ts.Cwd
		}
		p.SeedRecent(ts.History)
		p.SetScroll(ts.Scroll)
		m.tabs = append(m.tabs, tab)
	}
	m.active = s.ActiveTab
	if m.active >= len(m.tabs) {
		m.active = 0
	}
}

// SessionState captures the current tabs for persistence at shutdown.
func (m *Model) SessionState() *session.Session {
	if m.sessionName == "" {
		return nil
	}
	s := &session.Session{Name: m.sessionName, ActiveTab: m.active}
	for _, tab := range m.tabs {
		p := tab.FocusedPane()
		s.Tabs = append(s.Tabs, session.TabState{
			Title:   tab.Title,
			Cwd:     p.Cwd(),
			History: p.Recent(),
			Scroll:  p.Scroll(),
		})
	}
	return s
}

func (m *Model) newTab(title string) *Tab {
	tree := layout.New()
	id := uuid.NewString()
	if title == "" {
		title = fmt.Sprintf("tab %d", len(m.tabs)+1)
	}
	tab := &Tab{
		ID:    id,
		Title: title,
		Tree:  tree,
		Panes: map[string]*pane.Pane{},
	}
	tab.Panes[tree.Focused()] = m.newPane(tree.Focused())
	return tab
}

func (m *Model) newPane(id string) *pane.Pane {
	return pane.New(id, m.router, m.th, m.cfg.ScrollbackLines)
}

// ActiveTab returns the tab owning the viewport.
func (m *Model) ActiveTab() *Tab {
	return m.tabs[m.active]
}

// Cleanup closes every PTY session; called on shutdown.
func (m *Model) Cleanup() {
	for _, tab := range m.tabs {
		for _, p := range tab.Panes {
			p.Close()
		}
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, pollTick())
}

func pollTick() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.relayout()
		return m, nil

	case pollTickMsg:
		m.pollPanes()
		if m.quitting {
			return m, tea.Quit
		}
		return m, pollTick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// pollPanes drives every pane one frame: PTY drain, close requests, and
// theme changes made by the `theme` built-in.
func (m *Model) pollPanes() {
	for _, tab := range m.tabs {
		for _, p := range tab.Panes {
			p.Poll()
		}
	}

	tab := m.ActiveTab()
	focused := tab.FocusedPane()
	if focused.CloseRequested() {
		m.closeFocusedPane()
		return
	}
	if name := focused.State().Theme; name != m.th.Name {
		m.applyTheme(focused, name)
	}
}

func (m *Model) applyTheme(origin *pane.Pane, name string) {
	th, err := theme.Lookup(name)
	if err != nil {
		origin.State().Theme = m.th.Name
		origin.Buffer().AppendLine(err.Error() + " (known: theme <name>, see `help theme`)")
		return
	}
	m.th = th
	m.cfg.Theme = th.Name
	for _, tab := range m.tabs {
		for _, p := range tab.Panes {
			p.SetTheme(th)
		}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeNormal {
		return m.handleOverlayKey(msg)
	}

	switch msg.String() {
	case "ctrl+q":
		m.quitting = true
		return m, tea.Quit
	case "ctrl+t":
		m.tabs = append(m.tabs, m.newTab(""))
		m.active = len(m.tabs) - 1
		m.relayout()
		return m, nil
	case "ctrl+w":
		m.closeFocusedPane()
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil
	case "ctrl+tab":
		m.active = (m.active + 1) % len(m.tabs)
		m.relayout()
		return m, nil
	case "ctrl+shift+d":
		m.splitFocused(layout.Horizontal)
		return m, nil
	case "ctrl+shift+e":
		m.splitFocused(layout.Vertical)
		return m, nil
	case "alt+left":
		m.navigate(layout.Left)
		return m, nil
	case "alt+right":
		m.navigate(layout.Right)
		return m, nil
	case "alt+up":
		m.navigate(layout.Up)
		return m, nil
	case "alt+down":
		m.navigate(layout.Down)
		return m, nil
	case "ctrl+r":
		m.openFuzzy()
		return m, textinput.Blink
	case "ctrl+f":
		m.openSearch()
		return m, textinput.Blink
	case "ctrl+shift+h":
		m.ActiveTab().FocusedPane().ToggleHints()
		if m.ActiveTab().FocusedPane().HintsShown() {
			m.mode = ModeHints
		}
		return m, nil
	case "ctrl+shift+m":
		m.ActiveTab().FocusedPane().ToggleViMode()
		return m, nil
	}

	// Ctrl+1..9 jumps straight to a tab
	if s := msg.String(); len(s) == 6 && s[:5] == "ctrl+" && s[5] >= '1' && s[5] <= '9' {
		idx := int(s[5] - '1')
		if idx < len(m.tabs) {
			m.active = idx
			m.relayout()
		}
		return m, nil
	}

	m.ActiveTab().FocusedPane().HandleKey(msg)
	return m, nil
}

func (m *Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.closeOverlay()
		return m, nil
	case tea.KeyEnter:
		switch m.mode {
		case ModeFuzzy:
			if len(m.fuzzyResults) > 0 {
				p := m.ActiveTab().FocusedPane()
				p.KillLine()
				p.InsertRunes([]rune(m.fuzzyResults[m.fuzzySel]))
			}
		case ModeSearch:
			m.ActiveTab().FocusedPane().SetSearchQuery(m.overlayInput.Value())
		}
		m.closeOverlay()
		return m, nil
	case tea.KeyUp:
		if m.mode == ModeFuzzy && m.fuzzySel > 0 {
			m.fuzzySel--
		}
		return m, nil
	case tea.KeyDown:
		if m.mode == ModeFuzzy && m.fuzzySel < len(m.fuzzyResults)-1 {
			m.fuzzySel++
		}
		return m, nil
	}

	if m.mode == ModeHints {
		// any other key dismisses the hint overlay
		m.closeOverlay()
		return m, nil
	}

	var cmd tea.Cmd
	m.overlayInput, cmd = m.overlayInput.Update(msg)
	if m.mode == ModeFuzzy {
		m.fuzzyResults = m.hist.FuzzySearch(m.overlayInput.Value(), 10)
		m.fuzzySel = 0
	}
	return m, cmd
}

func (m *Model) openFuzzy() {
	m.mode = ModeFuzzy
	m.overlayInput.SetValue("")
	m.overlayInput.Focus()
	m.fuzzyResults = m.hist.FuzzySearch("", 10)
	m.fuzzySel = 0
}

func (m *Model) openSearch() {
	m.mode = ModeSearch
	m.overlayInput.SetValue(m.ActiveTab().FocusedPane().SearchQuery())
	m.overlayInput.Focus()
}

func (m *Model) closeOverlay() {
	if m.mode == ModeHints {
		p := m.ActiveTab().FocusedPane()
		if p.HintsShown() {
			p.ToggleHints()
		}
	}
	m.mode = ModeNormal
	m.overlayInput.Blur()
	m.fuzzyResults = nil
}

func (m *Model) splitFocused(dir layout.Direction) {
	tab := m.ActiveTab()
	oldID := tab.Tree.Focused()
	newID := tab.Tree.Split(dir)
	if newID == "" {
		return
	}
	p := m.newPane(newID)
	// a new pane starts where its sibling was working
	p.State().Cwd = tab.Panes[oldID].Cwd()
	tab.Panes[newID] = p
	m.relayout()
}

func (m *Model) closeFocusedPane() {
	tab := m.ActiveTab()
	id := tab.Tree.Focused()
	p := tab.Panes[id]

	if len(tab.Panes) == 1 {
		// last pane: close the tab instead; last tab closing quits
		p.Close()
		if len(m.tabs) == 1 {
			m.quitting = true
			return
		}
		m.tabs = append(m.tabs[:m.active], m.tabs[m.active+1:]...)
		if m.active >= len(m.tabs) {
			m.active = len(m.tabs) - 1
		}
		m.relayout()
		return
	}

	p.Close()
	delete(tab.Panes, id)
	tab.Tree.Close(id)
	m.relayout()
}

func (m *Model) navigate(dir layout.NavDirection) {
	m.ActiveTab().Tree.Navigate(dir)
}

// relayout recomputes pane rectangles for the active tab and pushes the new
// sizes into grids and PTYs.
func (m *Model) relayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	viewport := layout.Rect{
		X: 0,
		Y: tabBarHeight,
		W: m.width,
		H: m.height - tabBarHeight - statusBarHeight,
	}
	if viewport.H < 1 {
		viewport.H = 1
	}
	tab := m.ActiveTab()
	rects := tab.Tree.Layout(viewport)
	for id, r := range rects {
		if p, ok := tab.Panes[id]; ok {
			// border consumes one cell on each side
			inner := layout.Rect{X: r.X + 1, Y: r.Y + 1, W: r.W - 2, H: r.H - 2}
			p.Resize(inner)
		}
	}
}
