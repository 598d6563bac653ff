package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// DefaultCap is the append-only log's entry limit; the oldest entry is
// dropped on overflow.
const DefaultCap = 10000

// Entry is one executed command with the context needed for ranking.
type Entry struct {
	Command     string        `json:"command"`
	Cwd         string        `json:"cwd"`
	ExitCode    int           `json:"exit_code"`
	Timestamp   time.Time     `json:"timestamp"`
	Duration    time.Duration `json:"duration"`
	ProjectType string        `json:"project_type,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	Snippet     string        `json:"snippet,omitempty"`
}

// Log is the smart history: a capped append-only list plus derived global
// and per-directory frequency indices. One instance is shared across panes;
// all access goes through the mutex.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	cap     int

	globalFreq map[string]int
	dirFreq    map[string]map[string]int
}

// NewLog creates an empty log; capacity <= 0 uses DefaultCap.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Log{
		cap:        capacity,
		globalFreq: make(map[string]int),
		dirFreq:    make(map[string]map[string]int),
	}
}

// Record appends an entry, evicting the oldest past capacity and updating
// both frequency indices. Timestamp defaults to now; tags and project type
// are derived when absent.
func (l *Log) Record(e Entry) {
	if strings.TrimSpace(e.Command) == "" {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Tags == nil {
		e.Tags = AutoTags(e.Command)
	}
	if e.ProjectType == "" {
		e.ProjectType = DetectProjectType(e.Cwd)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, e)
	l.bumpLocked(e, 1)
	if len(l.entries) > l.cap {
		old := l.entries[0]
		l.entries = l.entries[1:]
		l.bumpLocked(old, -1)
	}
}

func (l *Log) bumpLocked(e Entry, delta int) {
	l.globalFreq[e.Command] += delta
	if l.globalFreq[e.Command] <= 0 {
		delete(l.globalFreq, e.Command)
	}
	dir := l.dirFreq[e.Cwd]
	if dir == nil {
		if delta < 0 {
			return
		}
		dir = make(map[string]int)
		l.dirFreq[e.Cwd] = dir
	}
	dir[e.Command] += delta
	if dir[e.Command] <= 0 {
		delete(dir, e.Command)
		if len(dir) == 0 {
			delete(l.dirFreq, e.Cwd)
		}
	}
}

// Len returns the number of stored entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Commands returns all command texts oldest-first (the input to history
// expansion).
func (l *Log) Commands() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Command
	}
	return out
}

// Entries returns a snapshot of all entries oldest-first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Lookup returns up to limit distinct commands matching prefix, ranked:
// commands used in cwd first (weighted by their per-directory frequency),
// then by global frequency, then by recency.
func (l *Log) Lookup(prefix, cwd string, limit int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	type cand struct {
		cmd      string
		dirFreq  int
		freq     int
		lastSeen int
	}
	seen := make(map[string]*cand)
	for i, e := range l.entries {
		if !strings.HasPrefix(e.Command, prefix) {
			continue
		}
		c := seen[e.Command]
		if c == nil {
			c = &cand{cmd: e.Command, freq: l.globalFreq[e.Command]}
			if dir := l.dirFreq[cwd]; dir != nil {
				c.dirFreq = dir[e.Command]
			}
			seen[e.Command] = c
		}
		c.lastSeen = i
	}

	cands := make([]*cand, 0, len(seen))
	for _, c := range seen {
		cands = append(cands, c)
	}
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if (a.dirFreq > 0) != (b.dirFreq > 0) {
			return a.dirFreq > 0
		}
		if a.dirFreq != b.dirFreq {
			return a.dirFreq > b.dirFreq
		}
		if a.freq != b.freq {
			return a.freq > b.freq
		}
		return a.lastSeen > b.lastSeen
	})

	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.cmd
	}
	return out
}

// FuzzySearch returns up to limit distinct commands ranked by fuzzy score
// against query, then global frequency, then recency. Commands the query
// does not match at all sort last.
func (l *Log) FuzzySearch(query string, limit int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	type cand struct {
		cmd      string
		score    int
		freq     int
		lastSeen int
	}
	seen := make(map[string]*cand)
	for i, e := range l.entries {
		c := seen[e.Command]
		if c == nil {
			c = &cand{
				cmd:   e.Command,
				score: FuzzyScore(query, e.Command),
				freq:  l.globalFreq[e.Command],
			}
			seen[e.Command] = c
		}
		c.lastSeen = i
	}

	cands := make([]*cand, 0, len(seen))
	for _, c := range seen {
		cands = append(cands, c)
	}
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.freq != b.freq {
			return a.freq > b.freq
		}
		return a.lastSeen > b.lastSeen
	})

	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.cmd
	}
	return out
}

// FuzzyScore rates candidate against query: 1000 for equality, 500 for a
// prefix match, 200 for a substring, otherwise an in-order character walk
// worth 10 per matched character, +5 per consecutive run and +10 at word
// boundaries. A query character with no match aborts with 0.
func FuzzyScore(query, candidate string) int {
	if query == "" {
		return 0
	}
	if query == candidate {
		return 1000
	}
	if strings.HasPrefix(candidate, query) {
		return 500
	}
	if strings.Contains(candidate, query) {
		return 200
	}

	score := 0
	pos := 0
	prevMatch := -2
	for _, qc := range query {
		idx := strings.IndexRune(candidate[pos:], qc)
		if idx < 0 {
			return 0
		}
		at := pos + idx
		score += 10
		if at == prevMatch+1 {
			score += 5
		}
		if at == 0 || isBoundary(candidate[at-1]) {
			score += 10
		}
		prevMatch = at
		pos = at + len(string(qc))
	}
	return score
}

func isBoundary(c byte) bool {
	return c == ' ' || c == '-' || c == '_' || c == '/' || c == '.'
}

// AutoTags derives tags from the head of a command: always argv0, plus the
// subcommand for tools that take one.
func AutoTags(command string) []string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil
	}
	tags := []string{fields[0]}
	switch fields[0] {
	case "git", "cargo", "npm", "go", "docker", "kubectl", "yarn", "pnpm", "make":
		skipValue := false
		for _, f := range fields[1:] {
			if skipValue {
				skipValue = false
				continue
			}
			if strings.HasPrefix(f, "-") {
				// git's -C and -c take the following word as their value
				skipValue = fields[0] == "git" && (f == "-C" || f == "-c")
				continue
			}
			tags = append(tags, f)
			break
		}
	}
	return tags
}

// projectMarkers maps a marker file in cwd to a project type, checked in
// order so more specific markers win.
var projectMarkers = []struct {
	file string
	typ  string
}{
	{"Cargo.toml", "rust"},
	{"go.mod", "go"},
	{"package.json", "node"},
	{"pyproject.toml", "python"},
	{"requirements.txt", "python"},
	{"Gemfile", "ruby"},
	{"pom.xml", "java"},
	{"CMakeLists.txt", "cmake"},
	{"Makefile", "make"},
}

// DetectProjectType inspects cwd for well-known marker files. Best effort;
// returns "" when nothing matches.
func DetectProjectType(cwd string) string {
	if cwd == "" {
		return ""
	}
	for _, m := range projectMarkers {
		if _, err := os.Stat(filepath.Join(cwd, m.file)); err == nil {
			return m.typ
		}
	}
	return ""
}

// Save writes all entries oldest-first as a JSON list, holding a file lock
// so two shutdown paths cannot interleave writes.
func (l *Log) Save(path string) error {
	entries := l.Entries()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a history file written by Save. A missing file is an empty
// history, not an error.
func Load(path string, capacity int) (*Log, error) {
	l := NewLog(capacity)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	for _, e := range entries {
		l.Record(e)
	}
	return l, nil
}
