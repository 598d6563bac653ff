package shell

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseErrorKind classifies command-line parse failures.
type ParseErrorKind int

const (
	ErrUnterminatedQuote ParseErrorKind = iota
	ErrDanglingRedirect
	ErrBadHistoryRef
	ErrEmptyStage
)

// ParseError is a malformed command line; the command is not executed.
type ParseError struct {
	Kind ParseErrorKind
	Msg  string
}

func (e *ParseError) Error() string { return e.Msg }

func parseErrorf(kind ParseErrorKind, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Stage is one pipeline segment: argv plus any redirects attached to it.
type Stage struct {
	Argv         []string
	Stdin        string
	Stdout       string
	Stderr       string
	StdoutAppend bool
	StderrAppend bool
}

// HasRedirect reports whether any redirect is attached.
func (s *Stage) HasRedirect() bool {
	return s.Stdin != "" || s.Stdout != "" || s.Stderr != ""
}

// ExpandHistory rewrites !!, !n and !-n references against history (oldest
// first) before lexing. References inside single quotes are left alone.
func ExpandHistory(line string, history []string) (string, error) {
	var out strings.Builder
	inSingle := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\'':
			inSingle = !inSingle
			out.WriteByte(c)
		case c == '!' && !inSingle && i+1 < len(line):
			expanded, consumed, err := expandHistoryRef(line[i:], history)
			if err != nil {
				return "", err
			}
			if consumed == 0 {
				out.WriteByte(c)
				continue
			}
			out.WriteString(expanded)
			i += consumed - 1
		default:
			out.WriteByte(c)
		}
	}
	return out.String(), nil
}

// expandHistoryRef parses one reference starting at s[0] == '!'. Returns the
// replacement and the number of bytes consumed, or (_, 0, nil) when s is not
// a history reference.
func expandHistoryRef(s string, history []string) (string, int, error) {
	if strings.HasPrefix(s, "!!") {
		if len(history) == 0 {
			return "", 0, parseErrorf(ErrBadHistoryRef, "!!: event not found")
		}
		return history[len(history)-1], 2, nil
	}

	j := 1
	neg := false
	if j < len(s) && s[j] == '-' {
		neg = true
		j++
	}
	start := j
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == start {
		// not a reference (plain '!', or '!-' with no digits)
		return "", 0, nil
	}
	n, _ := strconv.Atoi(s[start:j])
	idx := n - 1
	if neg {
		idx = len(history) - n
	}
	if n < 1 || idx < 0 || idx >= len(history) {
		return "", 0, parseErrorf(ErrBadHistoryRef, "%s: event not found", s[:j])
	}
	return history[idx], j, nil
}

// EnvLookup resolves $VAR expansions during lexing.
type EnvLookup func(name string) string

type redirectKind int

const (
	redirNone redirectKind = iota
	redirIn
	redirOut
	redirOutAppend
	redirErr
	redirErrAppend
)

// Parse lexes one command line into pipeline stages. History expansion is
// the caller's concern (it happens on the raw line before this).
func Parse(line string, env EnvLookup) ([]Stage, error) {
	if env == nil {
		env = func(string) string { return "" }
	}

	stages := []Stage{}
	cur := Stage{}
	pending := redirNone

	var tok strings.Builder
	hasTok := false

	emit := func() error {
		if !hasTok {
			return nil
		}
		word := tok.String()
		tok.Reset()
		hasTok = false
		switch pending {
		case redirNone:
			cur.Argv = append(cur.Argv, word)
		case redirIn:
			cur.Stdin = word
		case redirOut:
			cur.Stdout = word
			cur.StdoutAppend = false
		case redirOutAppend:
			cur.Stdout = word
			cur.StdoutAppend = true
		case redirErr:
			cur.Stderr = word
			cur.StderrAppend = false
		case redirErrAppend:
			cur.Stderr = word
			cur.StderrAppend = true
		}
		pending = redirNone
		return nil
	}

	endStage := func() error {
		if err := emit(); err != nil {
			return err
		}
		if pending != redirNone {
			return parseErrorf(ErrDanglingRedirect, "redirect missing target")
		}
		if len(cur.Argv) == 0 {
			return parseErrorf(ErrEmptyStage, "empty command before '|'")
		}
		stages = append(stages, cur)
		cur = Stage{}
		return nil
	}

	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == '\'':
			end := strings.IndexByte(line[i+1:], '\'')
			if end < 0 {
				return nil, parseErrorf(ErrUnterminatedQuote, "unterminated single quote")
			}
			tok.WriteString(line[i+1 : i+1+end])
			hasTok = true
			i += end + 2

		case c == '"':
			chunk, consumed, err := lexDoubleQuoted(line[i:], env)
			if err != nil {
				return nil, err
			}
			tok.WriteString(chunk)
			hasTok = true
			i += consumed

		case c == '\\':
			if i+1 < len(line) {
				tok.WriteByte(line[i+1])
				hasTok = true
				i += 2
			} else {
				tok.WriteByte('\\')
				hasTok = true
				i++
			}

		case c == '$':
			name, consumed := lexVarName(line[i:])
			if consumed == 0 {
				tok.WriteByte(c)
				hasTok = true
				i++
			} else {
				value := env(name)
				tok.WriteString(value)
				// an unset variable alone does not create an empty word
				hasTok = hasTok || value != ""
				i += consumed
			}

		case c == ' ' || c == '\t':
			if err := emit(); err != nil {
				return nil, err
			}
			i++

		case c == '|':
			if pending != redirNone && !hasTok {
				return nil, parseErrorf(ErrDanglingRedirect, "redirect missing target")
			}
			if err := endStage(); err != nil {
				return nil, err
			}
			i++

		case c == '<':
			if err := emit(); err != nil {
				return nil, err
			}
			pending = redirIn
			i++

		case c == '>':
			if err := emit(); err != nil {
				return nil, err
			}
			if i+1 < len(line) && line[i+1] == '>' {
				pending = redirOutAppend
				i += 2
			} else {
				pending = redirOut
				i++
			}

		case c == '2' && !hasTok && i+1 < len(line) && line[i+1] == '>':
			if i+2 < len(line) && line[i+2] == '>' {
				pending = redirErrAppend
				i += 3
			} else {
				pending = redirErr
				i += 2
			}

		default:
			tok.WriteByte(c)
			hasTok = true
			i++
		}
	}

	if err := emit(); err != nil {
		return nil, err
	}
	if pending != redirNone {
		return nil, parseErrorf(ErrDanglingRedirect, "redirect missing target")
	}
	if len(cur.Argv) == 0 {
		if len(stages) > 0 {
			return nil, parseErrorf(ErrEmptyStage, "empty command after '|'")
		}
		return nil, nil
	}
	stages = append(stages, cur)
	return stages, nil
}

// lexDoubleQuoted consumes a double-quoted region starting at s[0] == '"'.
// Backslash is special only before '"' or '\\'; before anything else both
// characters are kept literally. $VAR expands.
func lexDoubleQuoted(s string, env EnvLookup) (string, int, error) {
	var out strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		switch {
		case c == '"':
			return out.String(), i + 1, nil
		case c == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\'):
			out.WriteByte(s[i+1])
			i += 2
		case c == '$':
			name, consumed := lexVarName(s[i:])
			if consumed == 0 {
				out.WriteByte(c)
				i++
			} else {
				out.WriteString(env(name))
				i += consumed
			}
		default:
			out.WriteByte(c)
			i++
		}
	}
	return "", 0, parseErrorf(ErrUnterminatedQuote, "unterminated double quote")
}

// lexVarName parses $NAME at s[0] == '$'. Returns ("", 0) when no name
// follows.
func lexVarName(s string) (string, int) {
	j := 1
	for j < len(s) && (isAlnum(s[j]) || s[j] == '_') {
		j++
	}
	if j == 1 {
		return "", 0
	}
	return s[1:j], j
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
