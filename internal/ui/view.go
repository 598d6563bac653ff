package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/techdufus/axon/internal/buffer"
	"github.com/techdufus/axon/internal/layout"
	"github.com/techdufus/axon/internal/pane"
	"github.com/techdufus/axon/internal/term"
)

const (
	tabBarHeight    = 1
	statusBarHeight = 1
)

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}
	if m.mode != ModeNormal {
		return m.renderOverlay()
	}

	var b strings.Builder
	b.WriteString(m.renderTabBar())
	b.WriteByte('\n')
	b.WriteString(m.renderPanes())
	b.WriteByte('\n')
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m *Model) accentColor() lipgloss.Color {
	r, g, bl := m.th.Accent.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, bl))
}

func (m *Model) renderTabBar() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(m.accentColor())
	inactive := lipgloss.NewStyle().Faint(true)

	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		label := fmt.Sprintf(" %d:%s ", i+1, tab.Title)
		if i == m.active {
			parts = append(parts, active.Render(label))
		} else {
			parts = append(parts, inactive.Render(label))
		}
	}
	bar := strings.Join(parts, "│")
	return lipgloss.NewStyle().Width(m.width).MaxHeight(1).Render(bar)
}

// renderPanes composes the active tab's split tree recursively, joining
// child views along each split's direction.
func (m *Model) renderPanes() string {
	tab := m.ActiveTab()
	return m.renderNode(tab.Tree.Structure(), tab)
}

func (m *Model) renderNode(n *layout.NodeView, tab *Tab) string {
	if n.Leaf {
		p, ok := tab.Panes[n.PaneID]
		if !ok {
			return ""
		}
		return m.renderPane(p, n.PaneID == tab.Tree.Focused())
	}
	first := m.renderNode(n.First, tab)
	second := m.renderNode(n.Second, tab)
	if n.Dir == layout.Horizontal {
		return lipgloss.JoinHorizontal(lipgloss.Top, first, second)
	}
	return lipgloss.JoinVertical(lipgloss.Left, first, second)
}

func (m *Model) renderPane(p *pane.Pane, focused bool) string {
	rect := p.Rect()
	if rect.W < 1 || rect.H < 1 {
		return ""
	}

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(rect.W).
		Height(rect.H)
	if focused {
		border = border.BorderForeground(m.accentColor())
	} else {
		border = border.BorderForeground(lipgloss.Color("240"))
	}

	var content string
	if p.PTYMode() || p.Grid() != nil {
		content = m.renderGrid(p)
	} else {
		content = m.renderNative(p, rect)
	}
	return border.Render(content)
}

// renderGrid turns the cell matrix into styled terminal output, batching
// runs of identically-styled cells into one SGR sequence.
func (m *Model) renderGrid(p *pane.Pane) string {
	g := p.Grid()
	rows := g.Render()
	cursor := g.Cursor()

	var out strings.Builder
	for rowIdx, row := range rows {
		if rowIdx > 0 {
			out.WriteByte('\n')
		}

		var batch strings.Builder
		var cur term.Cell
		first := true

		flush := func() {
			if batch.Len() == 0 {
				return
			}
			out.WriteString(sgrFor(cur))
			out.WriteString(batch.String())
			out.WriteString("\x1b[0m")
			batch.Reset()
		}

		for colIdx, cell := range row {
			isCursor := cursor.Visible && rowIdx == cursor.Row && colIdx == cursor.Col
			if isCursor {
				flush()
				out.WriteString("\x1b[7m")
				out.WriteRune(cell.Char)
				out.WriteString("\x1b[27m")
				first = true
				continue
			}
			if !first && !sameStyle(cur, cell) {
				flush()
			}
			cur = cell
			first = false
			batch.WriteRune(cell.Char)
		}
		flush()
	}
	return out.String()
}

func sameStyle(a, b term.Cell) bool {
	return a.FG == b.FG && a.BG == b.BG && a.Style == b.Style
}

// sgrFor builds the escape sequence selecting a cell's colors and
// attributes. Default-sentinel colors emit nothing and inherit the pane
// style.
func sgrFor(c term.Cell) string {
	var parts []string
	if !c.FG.Default() {
		r, g, b := c.FG.RGBA()
		parts = append(parts, fmt.Sprintf("38;2;%d;%d;%d", r, g, b))
	}
	if !c.BG.Default() {
		r, g, b := c.BG.RGBA()
		parts = append(parts, fmt.Sprintf("48;2;%d;%d;%d", r, g, b))
	}
	if c.Style&term.StyleBold != 0 {
		parts = append(parts, "1")
	}
	if c.Style&term.StyleItalic != 0 {
		parts = append(parts, "3")
	}
	if c.Style&term.StyleUnderline != 0 {
		parts = append(parts, "4")
	}
	if c.Style&term.StyleInverse != 0 {
		parts = append(parts, "7")
	}
	if len(parts) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(parts, ";") + "m"
}

// renderNative shows the scrollback tail plus the prompt line and any
// suggestion list.
func (m *Model) renderNative(p *pane.Pane, rect layout.Rect) string {
	promptLines := 1
	sugs := p.Suggestions()
	visible := rect.H - promptLines - len(sugs)
	if visible < 0 {
		visible = 0
	}

	lines := p.Buffer().Lines()
	end := len(lines) - p.Scroll()
	if end < 0 {
		end = 0
	}
	start := end - visible
	if start < 0 {
		start = 0
	}
	lines = lines[start:end]

	var out []string
	for _, line := range lines {
		out = append(out, truncate(line, rect.W))
	}

	prompt := fmt.Sprintf("%s ❯ %s", shortenPath(p.Cwd()), p.Input())
	if p.ViMode() {
		prompt = "[vi] " + prompt
	}
	out = append(out, truncate(prompt, rect.W))

	sel := p.SuggestionIndex()
	sugStyle := lipgloss.NewStyle().Faint(true)
	selStyle := lipgloss.NewStyle().Foreground(m.accentColor())
	for i, s := range sugs {
		label := "  " + truncate(s, rect.W-2)
		if i == sel {
			out = append(out, selStyle.Render(label))
		} else {
			out = append(out, sugStyle.Render(label))
		}
	}

	return strings.Join(out, "\n")
}

func (m *Model) renderStatusBar() string {
	p := m.ActiveTab().FocusedPane()
	left := fmt.Sprintf(" %s  %s", shortenPath(p.Cwd()), m.th.Name)
	if m.sessionName != "" {
		left = fmt.Sprintf(" [%s]%s", m.sessionName, left)
	}
	right := "ctrl+t tab  ctrl+shift+d/e split  ctrl+r history  ctrl+q quit "

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().Faint(true).MaxHeight(1).Render(truncate(bar, m.width))
}

func (m *Model) renderOverlay() string {
	var box string
	switch m.mode {
	case ModeFuzzy:
		box = m.renderFuzzyBox()
	case ModeSearch:
		box = m.renderSearchBox()
	case ModeHints:
		box = m.renderHintsBox()
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) renderFuzzyBox() string {
	w := min(70, m.width-4)
	var b strings.Builder
	b.WriteString("history search\n")
	b.WriteString(m.overlayInput.View())
	b.WriteByte('\n')
	sel := lipgloss.NewStyle().Foreground(m.accentColor())
	for i, r := range m.fuzzyResults {
		line := truncate(r, w-4)
		if i == m.fuzzySel {
			b.WriteString(sel.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteByte('\n')
	}
	return overlayStyle(m.accentColor(), w).Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderSearchBox() string {
	w := min(50, m.width-4)
	matches := m.ActiveTab().FocusedPane().SearchMatches()
	body := fmt.Sprintf("search scrollback\n%s\n%d matching lines",
		m.overlayInput.View(), len(matches))
	return overlayStyle(m.accentColor(), w).Render(body)
}

func (m *Model) renderHintsBox() string {
	w := min(70, m.width-4)
	hints := m.ActiveTab().FocusedPane().Buffer().Hints()
	var b strings.Builder
	b.WriteString("hints\n")
	if len(hints) == 0 {
		b.WriteString("nothing actionable in scrollback")
	}
	for i, h := range hints {
		if i >= 15 {
			fmt.Fprintf(&b, "… %d more", len(hints)-i)
			break
		}
		fmt.Fprintf(&b, "%-9s %s\n", hintKindLabel(h.Kind), truncate(h.Text, w-14))
	}
	return overlayStyle(m.accentColor(), w).Render(strings.TrimRight(b.String(), "\n"))
}

func hintKindLabel(k buffer.HintKind) string {
	switch k {
	case buffer.HintURL:
		return "url"
	case buffer.HintPath:
		return "path"
	case buffer.HintGitHash:
		return "hash"
	case buffer.HintEmail:
		return "email"
	case buffer.HintFileLine:
		return "file:line"
	}
	return "?"
}

func overlayStyle(accent lipgloss.Color, w int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(w)
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(runes[:w-1]) + "…"
}

func shortenPath(path string) string {
	const maxLen = 30
	if len(path) <= maxLen {
		return path
	}
	parts := strings.Split(path, "/")
	if len(parts) > 3 {
		return "…/" + strings.Join(parts[len(parts)-2:], "/")
	}
	return path
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
