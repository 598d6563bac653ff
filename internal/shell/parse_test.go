package shell

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func mustParse(t *testing.T, line string, env EnvLookup) []Stage {
	t.Helper()
	stages, err := Parse(line, env)
	if err != nil {
		t.Fatalf("Parse(%q): %v", line, err)
	}
	return stages
}

func TestParseSimple(t *testing.T) {
	stages := mustParse(t, "ls -la /tmp", nil)
	if len(stages) != 1 {
		t.Fatalf("stage count = %d, want 1", len(stages))
	}
	want := []string{"ls", "-la", "/tmp"}
	if !reflect.DeepEqual(stages[0].Argv, want) {
		t.Errorf("argv = %v, want %v", stages[0].Argv, want)
	}
}

func TestParsePipelineWithRedirect(t *testing.T) {
	stages := mustParse(t, `ls -la | grep "\.rs" > out.txt`, nil)
	if len(stages) != 2 {
		t.Fatalf("stage count = %d, want 2", len(stages))
	}
	if !reflect.DeepEqual(stages[0].Argv, []string{"ls", "-la"}) {
		t.Errorf("stage 1 argv = %v", stages[0].Argv)
	}
	// backslash before '.' is not an escape inside double quotes; both
	// characters reach the argv literally
	if !reflect.DeepEqual(stages[1].Argv, []string{"grep", `\.rs`}) {
		t.Errorf("stage 2 argv = %v", stages[1].Argv)
	}
	if stages[1].Stdout != "out.txt" || stages[1].StdoutAppend {
		t.Errorf("stage 2 stdout = %q append=%v, want out.txt append=false",
			stages[1].Stdout, stages[1].StdoutAppend)
	}
}

func TestParseThreeStagePipeline(t *testing.T) {
	stages := mustParse(t, "a | b | c", nil)
	if len(stages) != 3 {
		t.Fatalf("stage count = %d, want 3", len(stages))
	}
	for i, want := range []string{"a", "b", "c"} {
		if !reflect.DeepEqual(stages[i].Argv, []string{want}) {
			t.Errorf("stage %d argv = %v, want [%s]", i+1, stages[i].Argv, want)
		}
		if stages[i].HasRedirect() {
			t.Errorf("stage %d has unexpected redirect", i+1)
		}
	}
}

func TestParseStageCountMatchesPipes(t *testing.T) {
	lines := []string{
		"one",
		"one | two",
		`a "b | c" | d`,
		"x|y|z|w",
	}
	for _, line := range lines {
		stages := mustParse(t, line, nil)
		pipes := 0
		inQuote := false
		for _, c := range line {
			if c == '"' {
				inQuote = !inQuote
			}
			if c == '|' && !inQuote {
				pipes++
			}
		}
		if len(stages) != pipes+1 {
			t.Errorf("Parse(%q): stage count = %d, want %d", line, len(stages), pipes+1)
		}
	}
}

func TestParseQuoting(t *testing.T) {
	env := func(name string) string {
		if name == "USER" {
			return "kim"
		}
		return ""
	}
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"single quotes literal", `echo 'a $USER | b'`, []string{"echo", "a $USER | b"}},
		{"double quotes expand", `echo "hi $USER"`, []string{"echo", "hi kim"}},
		{"escaped quote in double", `echo "a \" b"`, []string{"echo", `a " b`}},
		{"escaped backslash in double", `echo "a \\ b"`, []string{"echo", `a \ b`}},
		{"backslash literal before other chars", `echo "a\tb"`, []string{"echo", `a\tb`}},
		{"backslash literal before dollar", `echo "\$USER"`, []string{"echo", `\kim`}},
		{"backslash escapes outside quotes", `echo a\ b`, []string{"echo", "a b"}},
		{"bare dollar kept", `echo a$`, []string{"echo", "a$"}},
		{"unset var empty", `echo "$NOPE"x`, []string{"echo", "x"}},
		{"adjacent quoted pieces", `echo 'a'"b"c`, []string{"echo", "abc"}},
		{"var outside quotes", `echo $USER`, []string{"echo", "kim"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stages := mustParse(t, tt.line, env)
			if len(stages) != 1 || !reflect.DeepEqual(stages[0].Argv, tt.want) {
				t.Errorf("argv = %v, want %v", stages[0].Argv, tt.want)
			}
		})
	}
}

func TestParseRedirects(t *testing.T) {
	stages := mustParse(t, "cmd <in.txt >>out.log 2>err.log", nil)
	s := stages[0]
	if !reflect.DeepEqual(s.Argv, []string{"cmd"}) {
		t.Errorf("argv = %v", s.Argv)
	}
	if s.Stdin != "in.txt" {
		t.Errorf("stdin = %q", s.Stdin)
	}
	if s.Stdout != "out.log" || !s.StdoutAppend {
		t.Errorf("stdout = %q append=%v", s.Stdout, s.StdoutAppend)
	}
	if s.Stderr != "err.log" || s.StderrAppend {
		t.Errorf("stderr = %q append=%v", s.Stderr, s.StderrAppend)
	}

	stages = mustParse(t, "cmd 2>>err.log", nil)
	if stages[0].Stderr != "err.log" || !stages[0].StderrAppend {
		t.Errorf("stderr append parse failed: %+v", stages[0])
	}
}

func TestParseTokenStartingWithTwo(t *testing.T) {
	stages := mustParse(t, "echo 2fast 2>log", nil)
	if !reflect.DeepEqual(stages[0].Argv, []string{"echo", "2fast"}) {
		t.Errorf("argv = %v, want [echo 2fast]", stages[0].Argv)
	}
	if stages[0].Stderr != "log" {
		t.Errorf("stderr = %q, want log", stages[0].Stderr)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		kind ParseErrorKind
	}{
		{"unterminated single", "echo 'oops", ErrUnterminatedQuote},
		{"unterminated double", `echo "oops`, ErrUnterminatedQuote},
		{"dangling stdout", "echo hi >", ErrDanglingRedirect},
		{"dangling stdin", "cmd <", ErrDanglingRedirect},
		{"redirect before pipe", "a > | b", ErrDanglingRedirect},
		{"empty stage", "a | | b", ErrEmptyStage},
		{"trailing pipe", "a |", ErrEmptyStage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.line, nil)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse(%q) err = %v, want ParseError", tt.line, err)
			}
			if perr.Kind != tt.kind {
				t.Errorf("kind = %d, want %d", perr.Kind, tt.kind)
			}
		})
	}
}

func TestParseEmptyLine(t *testing.T) {
	stages := mustParse(t, "   ", nil)
	if stages != nil {
		t.Errorf("stages = %v, want nil", stages)
	}
}

func TestExpandHistory(t *testing.T) {
	history := []string{"first", "second", "third"}
	tests := []struct {
		name string
		line string
		want string
	}{
		{"bang bang", "!!", "third"},
		{"bang bang with suffix", "sudo !!", "sudo third"},
		{"nth", "!2", "second"},
		{"nth from end", "!-3", "first"},
		{"single quotes protect", "echo '!!'", "echo '!!'"},
		{"plain bang", "echo a!b", "echo a!b"},
		{"no reference", "echo hi", "echo hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandHistory(tt.line, history)
			if err != nil {
				t.Fatalf("ExpandHistory(%q): %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("ExpandHistory(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestExpandHistoryErrors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		history []string
	}{
		{"bang bang empty history", "!!", nil},
		{"out of range", "!9", []string{"one"}},
		{"negative out of range", "!-5", []string{"one"}},
		{"zero", "!0", []string{"one"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExpandHistory(tt.line, tt.history)
			var perr *ParseError
			if !errors.As(err, &perr) || perr.Kind != ErrBadHistoryRef {
				t.Errorf("ExpandHistory(%q) err = %v, want BadHistoryRef", tt.line, err)
			}
			if err != nil && !strings.Contains(err.Error(), "not found") {
				t.Errorf("error message = %q", err.Error())
			}
		})
	}
}
