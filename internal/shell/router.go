package shell

import (
	"fmt"
	"strings"
	"time"

	"github.com/techdufus/axon/internal/history"
)

// maxAliasDepth bounds alias re-expansion so self-referential aliases
// terminate.
const maxAliasDepth = 16

// OutcomeKind says which execution path a command took.
type OutcomeKind int

const (
	// OutcomeBuiltin ran in-process; Output holds the result text.
	OutcomeBuiltin OutcomeKind = iota
	// OutcomeCaptured ran externally with output collected in full.
	OutcomeCaptured
	// OutcomePTY asks the pane to attach a PTY session for Argv.
	OutcomePTY
	// OutcomeHelp returned a command's extended help without executing.
	OutcomeHelp
	// OutcomeError failed before or during execution.
	OutcomeError
)

// Outcome is the routed result of one submitted command line.
type Outcome struct {
	Kind     OutcomeKind
	Output   string
	ExitCode int
	Duration time.Duration

	// Argv is set for OutcomePTY: the command to run under the pane's PTY.
	Argv []string

	// Built-in side effects surfaced to the pane.
	ClearScreen bool
	ExitPane    bool
}

// gitShortcuts rewrite two-letter commands to full git invocations before
// external classification.
var gitShortcuts = map[string][]string{
	"gs": {"git", "status"},
	"gd": {"git", "diff"},
	"gl": {"git", "log", "--oneline", "--graph", "--decorate"},
	"gp": {"git", "push"},
	"ga": {"git", "add"},
	"gc": {"git", "commit"},
}

// interactiveCommands always get a PTY when run alone without redirects.
var interactiveCommands = map[string]bool{
	"vim": true, "nvim": true, "vi": true, "nano": true, "emacs": true,
	"less": true, "more": true, "man": true,
	"top": true, "htop": true, "watch": true,
	"ssh": true, "telnet": true, "tmux": true,
	"python": true, "python3": true, "node": true, "irb": true, "ghci": true,
	"psql": true, "mysql": true, "sqlite3": true, "redis-cli": true,
}

// capturedCommands are known non-interactive: spawn, collect, append.
var capturedCommands = map[string]bool{
	"ls": true, "cat": true, "grep": true, "find": true, "head": true,
	"tail": true, "wc": true, "sort": true, "uniq": true, "cut": true,
	"sed": true, "awk": true, "tr": true, "which": true, "env": true,
	"date": true, "uname": true, "whoami": true, "hostname": true,
	"df": true, "du": true, "ps": true, "curl": true, "git": true,
	"go": true, "cargo": true, "npm": true, "make": true, "touch": true,
	"mkdir": true, "rm": true, "cp": true, "mv": true, "printf": true,
}

// Router classifies parsed stages and drives the matching execution path.
type Router struct {
	builtins map[string]*Builtin
	history  *history.Log

	// CapturedTimeout bounds captured externals; zero means no limit.
	CapturedTimeout time.Duration
}

// NewRouter builds a router over the built-in registry and the shared
// history log (which also backs the `history` built-in and !-expansion).
func NewRouter(hist *history.Log) *Router {
	r := &Router{
		builtins: Builtins(),
		history:  hist,
	}
	r.builtins["history"] = &Builtin{
		Name:        "history",
		Description: "show recent commands",
		Usage:       "history [n]",
		Help:        "history [n]\n\nShows the most recent commands, oldest first.",
		Run: func(st *State, argv []string) (BuiltinResult, error) {
			cmds := hist.Commands()
			n := 20
			if len(argv) > 1 {
				fmt.Sscanf(argv[1], "%d", &n)
			}
			if n > len(cmds) {
				n = len(cmds)
			}
			var b strings.Builder
			base := len(cmds) - n
			for i, c := range cmds[base:] {
				fmt.Fprintf(&b, "%5d  %s\n", base+i+1, c)
			}
			return BuiltinResult{Output: b.String()}, nil
		},
	}
	return r
}

// Builtin looks up a registered built-in by name.
func (r *Router) Builtin(name string) (*Builtin, bool) {
	b, ok := r.builtins[name]
	return b, ok
}

// History exposes the shared log (for expansion and recording).
func (r *Router) History() *history.Log {
	return r.history
}

// Route parses and executes one command line against st. PTY-bound commands
// are not executed here — the pane attaches the session from the returned
// Argv. The caller records history once the command's exit code is known.
func (r *Router) Route(st *State, line string) Outcome {
	start := time.Now()

	expanded, err := ExpandHistory(line, r.history.Commands())
	if err != nil {
		return errOutcome(err, start)
	}
	stages, err := Parse(expanded, st.LookupEnv)
	if err != nil {
		return errOutcome(err, start)
	}
	if len(stages) == 0 {
		return Outcome{Kind: OutcomeBuiltin, Duration: time.Since(start)}
	}

	for i := range stages {
		if err := r.expandAliases(st, &stages[i]); err != nil {
			return errOutcome(err, start)
		}
		if rewrite, ok := gitShortcuts[stages[i].Argv[0]]; ok {
			stages[i].Argv = append(append([]string{}, rewrite...), stages[i].Argv[1:]...)
		}
	}

	if help := r.helpRequest(stages); help != nil {
		return Outcome{Kind: OutcomeHelp, Output: *help, Duration: time.Since(start)}
	}

	// Single stage without redirects may be a built-in or a PTY candidate.
	if len(stages) == 1 && !stages[0].HasRedirect() {
		argv := stages[0].Argv
		if b, ok := r.builtins[argv[0]]; ok {
			return r.runBuiltin(st, b, argv, start)
		}
		if r.wantsPTY(argv[0]) {
			return Outcome{Kind: OutcomePTY, Argv: argv, Duration: time.Since(start)}
		}
	}

	out, code, err := r.runCaptured(st, stages)
	o := Outcome{
		Kind:     OutcomeCaptured,
		Output:   out,
		ExitCode: code,
		Duration: time.Since(start),
	}
	if err != nil {
		o.Kind = OutcomeError
		o.Output += formatError(err)
		if o.ExitCode == 0 {
			o.ExitCode = 1
		}
	}
	return o
}

// wantsPTY decides the execution path for a bare external command:
// known-interactive and unknown commands run under a PTY, known
// non-interactive ones are captured.
func (r *Router) wantsPTY(name string) bool {
	if interactiveCommands[name] {
		return true
	}
	if capturedCommands[name] {
		return false
	}
	return true
}

// expandAliases replaces the stage head with its alias expansion, reparsing
// the expansion text, until no alias matches or the depth limit is hit.
func (r *Router) expandAliases(st *State, stage *Stage) error {
	for depth := 0; ; depth++ {
		if depth >= maxAliasDepth {
			return fmt.Errorf("alias: expansion too deep for %q", stage.Argv[0])
		}
		expansion, ok := st.Aliases[stage.Argv[0]]
		if !ok {
			return nil
		}
		sub, err := Parse(expansion, st.LookupEnv)
		if err != nil {
			return fmt.Errorf("alias %s: %w", stage.Argv[0], err)
		}
		if len(sub) != 1 || sub[0].HasRedirect() || len(sub[0].Argv) == 0 {
			return fmt.Errorf("alias %s: expansion must be a simple command", stage.Argv[0])
		}
		head := stage.Argv[0]
		stage.Argv = append(append([]string{}, sub[0].Argv...), stage.Argv[1:]...)
		// a direct self-reference would never terminate
		if stage.Argv[0] == head {
			return nil
		}
	}
}

// helpRequest returns the extended help text when a recognised command is
// invoked with --help or -h.
func (r *Router) helpRequest(stages []Stage) *string {
	if len(stages) != 1 {
		return nil
	}
	argv := stages[0].Argv
	flagged := false
	for _, a := range argv[1:] {
		if a == "--help" || a == "-h" {
			flagged = true
			break
		}
	}
	if !flagged {
		return nil
	}
	if b, ok := r.builtins[argv[0]]; ok {
		text := b.Help + "\n"
		return &text
	}
	return nil
}

func (r *Router) runBuiltin(st *State, b *Builtin, argv []string, start time.Time) Outcome {
	res, err := b.Run(st, argv)
	o := Outcome{
		Kind:        OutcomeBuiltin,
		Output:      res.Output,
		ClearScreen: res.ClearScreen,
		ExitPane:    res.Exit,
		Duration:    time.Since(start),
	}
	if err != nil {
		o.Kind = OutcomeError
		o.Output = formatError(err)
		o.ExitCode = 1
	}
	return o
}

func errOutcome(err error, start time.Time) Outcome {
	return Outcome{
		Kind:     OutcomeError,
		Output:   formatError(err),
		ExitCode: 1,
		Duration: time.Since(start),
	}
}

func formatError(err error) string {
	msg := err.Error()
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	return msg
}
