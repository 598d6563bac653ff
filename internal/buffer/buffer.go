package buffer

import (
	"regexp"
	"strings"
	"time"
)

// DefaultCap bounds the line list. Eviction is block-aligned: the oldest
// block goes with all of its lines.
const DefaultCap = 10000

var urlRe = regexp.MustCompile(`https?://[^\s]+`)

// Span marks a recognised byte range within one line.
type Span struct {
	Line  int
	Start int
	End   int
}

// Block delimits one command and its output inside the scrollback.
type Block struct {
	Command   string
	StartLine int
	EndLine   int
	Duration  time.Duration
	ExitCode  int
	Success   bool
	open      bool
}

// Buffer is block-structured scrollback for native-mode output. URLs are
// scanned at append time; richer hints are re-extracted on demand.
type Buffer struct {
	lines  []string
	blocks []Block
	urls   []Span
	cap    int

	// evicted counts lines dropped so far; block indices stay absolute and
	// are translated on access.
	evicted int
}

// New creates an empty buffer; capacity <= 0 uses DefaultCap.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Buffer{cap: capacity}
}

// Len returns the live line count.
func (b *Buffer) Len() int {
	return len(b.lines)
}

// Lines returns the live lines, oldest first.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Line returns one live line by index, or "".
func (b *Buffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return b.lines[i]
}

// URLs returns the spans recorded during append, with line numbers
// rebased to the live window.
func (b *Buffer) URLs() []Span {
	out := make([]Span, 0, len(b.urls))
	for _, s := range b.urls {
		if s.Line < b.evicted {
			continue
		}
		out = append(out, Span{Line: s.Line - b.evicted, Start: s.Start, End: s.End})
	}
	return out
}

// Blocks returns closed and open blocks with live line numbers. Blocks
// fully evicted are omitted.
func (b *Buffer) Blocks() []Block {
	out := make([]Block, 0, len(b.blocks))
	for _, blk := range b.blocks {
		if blk.EndLine < b.evicted && !blk.open {
			continue
		}
		blk.StartLine -= b.evicted
		if blk.StartLine < 0 {
			blk.StartLine = 0
		}
		blk.EndLine -= b.evicted
		out = append(out, blk)
	}
	return out
}

// BeginBlock opens a block for command at the current end of the buffer.
func (b *Buffer) BeginBlock(command string) {
	b.blocks = append(b.blocks, Block{
		Command:   command,
		StartLine: b.evicted + len(b.lines),
		EndLine:   b.evicted + len(b.lines),
		open:      true,
	})
}

// EndBlock closes the most recent open block with its result.
func (b *Buffer) EndBlock(exitCode int, duration time.Duration) {
	for i := len(b.blocks) - 1; i >= 0; i-- {
		if b.blocks[i].open {
			b.blocks[i].open = false
			b.blocks[i].EndLine = b.evicted + len(b.lines) - 1
			if b.blocks[i].EndLine < b.blocks[i].StartLine {
				b.blocks[i].EndLine = b.blocks[i].StartLine
			}
			b.blocks[i].ExitCode = exitCode
			b.blocks[i].Duration = duration
			b.blocks[i].Success = exitCode == 0
			return
		}
	}
}

// Append splits text on newlines and adds the lines, scanning each for
// URLs. A trailing newline does not produce an empty final line.
func (b *Buffer) Append(text string) {
	if text == "" {
		return
	}
	text = strings.TrimSuffix(text, "\n")
	for _, line := range strings.Split(text, "\n") {
		abs := b.evicted + len(b.lines)
		for _, loc := range urlRe.FindAllStringIndex(line, -1) {
			b.urls = append(b.urls, Span{Line: abs, Start: loc[0], End: loc[1]})
		}
		b.lines = append(b.lines, line)
	}
	b.evict()
}

// AppendLine adds a single line verbatim.
func (b *Buffer) AppendLine(line string) {
	b.Append(line + "\n")
}

// Clear drops all lines, blocks, and spans.
func (b *Buffer) Clear() {
	b.lines = nil
	b.blocks = nil
	b.urls = nil
	b.evicted = 0
}

// evict drops whole blocks (with their lines) from the front until the
// buffer fits its capacity. Lines before the first block are dropped line
// by line.
func (b *Buffer) evict() {
	for len(b.lines) > b.cap {
		drop := len(b.lines) - b.cap
		if len(b.blocks) > 0 && !b.blocks[0].open {
			blockEnd := b.blocks[0].EndLine - b.evicted
			if blockEnd >= 0 && blockEnd+1 > drop {
				drop = blockEnd + 1
			}
			b.blocks = b.blocks[1:]
		}
		if drop > len(b.lines) {
			drop = len(b.lines)
		}
		b.lines = b.lines[drop:]
		b.evicted += drop

		kept := b.urls[:0]
		for _, s := range b.urls {
			if s.Line >= b.evicted {
				kept = append(kept, s)
			}
		}
		b.urls = kept
	}
}
