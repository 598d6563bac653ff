package theme

import (
	"fmt"
	"sort"

	"github.com/muesli/termenv"

	"github.com/techdufus/axon/internal/term"
)

// Theme is one named color scheme: default foreground/background plus the
// 16-color ANSI palette the grid maps SGR 30-37/90-97 onto.
type Theme struct {
	Name    string
	FG      term.Color
	BG      term.Color
	Accent  term.Color
	Palette [16]term.Color
}

// Default is the theme used when the config names nothing (or nonsense).
const Default = "catppuccin-mocha"

// Lookup returns the named theme.
func Lookup(name string) (*Theme, error) {
	t, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown theme: %s", name)
	}
	return t, nil
}

// MustDefault returns the default theme.
func MustDefault() *Theme {
	return registry[Default]
}

// Names lists all theme names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TermenvColor converts a grid color for lipgloss/termenv rendering,
// resolving the default sentinels against th.
func (th *Theme) TermenvColor(c term.Color) termenv.RGBColor {
	switch c {
	case term.ColorDefaultFG:
		c = th.FG
	case term.ColorDefaultBG:
		c = th.BG
	}
	r, g, b := c.RGBA()
	return termenv.RGBColor(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}

// hex parses "#rrggbb"; themes are defined with literals, so a malformed
// value is a programming error.
func hex(s string) term.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		panic("theme: bad hex literal " + s)
	}
	return term.RGB(r, g, b)
}

func palette(colors ...string) [16]term.Color {
	if len(colors) != 16 {
		panic("theme: palette needs 16 colors")
	}
	var p [16]term.Color
	for i, c := range colors {
		p[i] = hex(c)
	}
	return p
}

var registry = map[string]*Theme{}

func register(t *Theme) {
	registry[t.Name] = t
}

func init() {
	register(&Theme{
		Name: "catppuccin-mocha", FG: hex("#cdd6f4"), BG: hex("#1e1e2e"), Accent: hex("#89b4fa"),
		Palette: palette("#45475a", "#f38ba8", "#a6e3a1", "#f9e2af", "#89b4fa", "#f5c2e7", "#94e2d5", "#bac2de",
			"#585b70", "#f38ba8", "#a6e3a1", "#f9e2af", "#89b4fa", "#f5c2e7", "#94e2d5", "#a6adc8"),
	})
	register(&Theme{
		Name: "catppuccin-latte", FG: hex("#4c4f69"), BG: hex("#eff1f5"), Accent: hex("#1e66f5"),
		Palette: palette("#5c5f77", "#d20f39", "#40a02b", "#df8e1d", "#1e66f5", "#ea76cb", "#179299", "#acb0be",
			"#6c6f85", "#d20f39", "#40a02b", "#df8e1d", "#1e66f5", "#ea76cb", "#179299", "#bcc0cc"),
	})
	register(&Theme{
		Name: "dracula", FG: hex("#f8f8f2"), BG: hex("#282a36"), Accent: hex("#bd93f9"),
		Palette: palette("#21222c", "#ff5555", "#50fa7b", "#f1fa8c", "#bd93f9", "#ff79c6", "#8be9fd", "#f8f8f2",
			"#6272a4", "#ff6e6e", "#69ff94", "#ffffa5", "#d6acff", "#ff92df", "#a4ffff", "#ffffff"),
	})
	register(&Theme{
		Name: "gruvbox-dark", FG: hex("#ebdbb2"), BG: hex("#282828"), Accent: hex("#fabd2f"),
		Palette: palette("#282828", "#cc241d", "#98971a", "#d79921", "#458588", "#b16286", "#689d6a", "#a89984",
			"#928374", "#fb4934", "#b8bb26", "#fabd2f", "#83a598", "#d3869b", "#8ec07c", "#ebdbb2"),
	})
	register(&Theme{
		Name: "gruvbox-light", FG: hex("#3c3836"), BG: hex("#fbf1c7"), Accent: hex("#b57614"),
		Palette: palette("#fbf1c7", "#cc241d", "#98971a", "#d79921", "#458588", "#b16286", "#689d6a", "#7c6f64",
			"#928374", "#9d0006", "#79740e", "#b57614", "#076678", "#8f3f71", "#427b58", "#3c3836"),
	})
	register(&Theme{
		Name: "nord", FG: hex("#d8dee9"), BG: hex("#2e3440"), Accent: hex("#88c0d0"),
		Palette: palette("#3b4252", "#bf616a", "#a3be8c", "#ebcb8b", "#81a1c1", "#b48ead", "#88c0d0", "#e5e9f0",
			"#4c566a", "#bf616a", "#a3be8c", "#ebcb8b", "#81a1c1", "#b48ead", "#8fbcbb", "#eceff4"),
	})
	register(&Theme{
		Name: "solarized-dark", FG: hex("#839496"), BG: hex("#002b36"), Accent: hex("#268bd2"),
		Palette: palette("#073642", "#dc322f", "#859900", "#b58900", "#268bd2", "#d33682", "#2aa198", "#eee8d5",
			"#002b36", "#cb4b16", "#586e75", "#657b83", "#839496", "#6c71c4", "#93a1a1", "#fdf6e3"),
	})
	register(&Theme{
		Name: "solarized-light", FG: hex("#657b83"), BG: hex("#fdf6e3"), Accent: hex("#268bd2"),
		Palette: palette("#073642", "#dc322f", "#859900", "#b58900", "#268bd2", "#d33682", "#2aa198", "#eee8d5",
			"#002b36", "#cb4b16", "#586e75", "#657b83", "#839496", "#6c71c4", "#93a1a1", "#fdf6e3"),
	})
	register(&Theme{
		Name: "tokyo-night", FG: hex("#c0caf5"), BG: hex("#1a1b26"), Accent: hex("#7aa2f7"),
		Palette: palette("#15161e", "#f7768e", "#9ece6a", "#e0af68", "#7aa2f7", "#bb9af7", "#7dcfff", "#a9b1d6",
			"#414868", "#f7768e", "#9ece6a", "#e0af68", "#7aa2f7", "#bb9af7", "#7dcfff", "#c0caf5"),
	})
	register(&Theme{
		Name: "one-dark", FG: hex("#abb2bf"), BG: hex("#282c34"), Accent: hex("#61afef"),
		Palette: palette("#282c34", "#e06c75", "#98c379", "#e5c07b", "#61afef", "#c678dd", "#56b6c2", "#abb2bf",
			"#545862", "#e06c75", "#98c379", "#e5c07b", "#61afef", "#c678dd", "#56b6c2", "#c8ccd4"),
	})
	register(&Theme{
		Name: "one-light", FG: hex("#383a42"), BG: hex("#fafafa"), Accent: hex("#4078f2"),
		Palette: palette("#383a42", "#e45649", "#50a14f", "#c18401", "#4078f2", "#a626a4", "#0184bc", "#fafafa",
			"#a0a1a7", "#e45649", "#50a14f", "#c18401", "#4078f2", "#a626a4", "#0184bc", "#ffffff"),
	})
	register(&Theme{
		Name: "monokai", FG: hex("#f8f8f2"), BG: hex("#272822"), Accent: hex("#a6e22e"),
		Palette: palette("#272822", "#f92672", "#a6e22e", "#f4bf75", "#66d9ef", "#ae81ff", "#a1efe4", "#f8f8f2",
			"#75715e", "#f92672", "#a6e22e", "#f4bf75", "#66d9ef", "#ae81ff", "#a1efe4", "#f9f8f5"),
	})
	register(&Theme{
		Name: "github-dark", FG: hex("#c9d1d9"), BG: hex("#0d1117"), Accent: hex("#58a6ff"),
		Palette: palette("#484f58", "#ff7b72", "#3fb950", "#d29922", "#58a6ff", "#bc8cff", "#39c5cf", "#b1bac4",
			"#6e7681", "#ffa198", "#56d364", "#e3b341", "#79c0ff", "#d2a8ff", "#56d4dd", "#f0f6fc"),
	})
	register(&Theme{
		Name: "github-light", FG: hex("#24292f"), BG: hex("#ffffff"), Accent: hex("#0969da"),
		Palette: palette("#24292f", "#cf222e", "#116329", "#4d2d00", "#0969da", "#8250df", "#1b7c83", "#6e7781",
			"#57606a", "#a40e26", "#1a7f37", "#633c01", "#218bff", "#a475f9", "#3192aa", "#8c959f"),
	})
	register(&Theme{
		Name: "ayu-dark", FG: hex("#bfbdb6"), BG: hex("#0b0e14"), Accent: hex("#e6b450"),
		Palette: palette("#0b0e14", "#ea6c73", "#7fd962", "#f9af4f", "#53bdfa", "#cda1fa", "#90e1c6", "#c7c7c7",
			"#686868", "#f07178", "#aad94c", "#ffb454", "#59c2ff", "#d2a6ff", "#95e6cb", "#ffffff"),
	})
	register(&Theme{
		Name: "everforest", FG: hex("#d3c6aa"), BG: hex("#2d353b"), Accent: hex("#a7c080"),
		Palette: palette("#475258", "#e67e80", "#a7c080", "#dbbc7f", "#7fbbb3", "#d699b6", "#83c092", "#d3c6aa",
			"#475258", "#e67e80", "#a7c080", "#dbbc7f", "#7fbbb3", "#d699b6", "#83c092", "#d3c6aa"),
	})
	register(&Theme{
		Name: "kanagawa", FG: hex("#dcd7ba"), BG: hex("#1f1f28"), Accent: hex("#7e9cd8"),
		Palette: palette("#16161d", "#c34043", "#76946a", "#c0a36e", "#7e9cd8", "#957fb8", "#6a9589", "#c8c093",
			"#727169", "#e82424", "#98bb6c", "#e6c384", "#7fb4ca", "#938aa9", "#7aa89f", "#dcd7ba"),
	})
	register(&Theme{
		Name: "rose-pine", FG: hex("#e0def4"), BG: hex("#191724"), Accent: hex("#ebbcba"),
		Palette: palette("#26233a", "#eb6f92", "#31748f", "#f6c177", "#9ccfd8", "#c4a7e7", "#ebbcba", "#e0def4",
			"#6e6a86", "#eb6f92", "#31748f", "#f6c177", "#9ccfd8", "#c4a7e7", "#ebbcba", "#e0def4"),
	})
	register(&Theme{
		Name: "nightfox", FG: hex("#cdcecf"), BG: hex("#192330"), Accent: hex("#719cd6"),
		Palette: palette("#393b44", "#c94f6d", "#81b29a", "#dbc074", "#719cd6", "#9d79d6", "#63cdcf", "#dfdfe0",
			"#575860", "#d16983", "#8ebaa4", "#e0c989", "#86abdc", "#baa1e2", "#7ad5d6", "#e4e4e5"),
	})
	register(&Theme{
		Name: "zenburn", FG: hex("#dcdccc"), BG: hex("#3f3f3f"), Accent: hex("#f0dfaf"),
		Palette: palette("#4d4d4d", "#705050", "#60b48a", "#dfaf8f", "#506070", "#dc8cc3", "#8cd0d3", "#dcdccc",
			"#709080", "#cc9393", "#7f9f7f", "#f0dfaf", "#94bff3", "#ec93d3", "#93e0e3", "#ffffff"),
	})
}
