package buffer

import "regexp"

// HintKind classifies an actionable target found in the scrollback.
type HintKind int

const (
	HintURL HintKind = iota
	HintPath
	HintGitHash
	HintEmail
	HintFileLine
)

// Hint is one actionable target with its location.
type Hint struct {
	Kind  HintKind
	Line  int
	Start int
	End   int
	Text  string
}

// Hint patterns, ordered so more specific shapes claim their text first
// (file:line before bare path, email before bare word).
var hintPatterns = []struct {
	kind HintKind
	re   *regexp.Regexp
}{
	{HintURL, urlRe},
	{HintEmail, regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},
	{HintFileLine, regexp.MustCompile(`[A-Za-z0-9._/~-]+\.[A-Za-z]+:[0-9]+`)},
	{HintGitHash, regexp.MustCompile(`\b[0-9a-f]{7,40}\b`)},
	{HintPath, regexp.MustCompile(`(?:~|\.{1,2})?/[A-Za-z0-9._/-]+`)},
}

// Hints scans the live lines for actionable targets. Nothing is cached:
// hints are recomputed from the current window on each call.
func (b *Buffer) Hints() []Hint {
	var hints []Hint
	for lineNo, line := range b.lines {
		claimed := make([]bool, len(line))
		for _, p := range hintPatterns {
			for _, loc := range p.re.FindAllStringIndex(line, -1) {
				if rangeClaimed(claimed, loc[0], loc[1]) {
					continue
				}
				for i := loc[0]; i < loc[1]; i++ {
					claimed[i] = true
				}
				hints = append(hints, Hint{
					Kind:  p.kind,
					Line:  lineNo,
					Start: loc[0],
					End:   loc[1],
					Text:  line[loc[0]:loc[1]],
				})
			}
		}
	}
	return hints
}

func rangeClaimed(claimed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}
