package shell

import (
	"os"
	"path/filepath"
	"strings"
)

// State is the per-pane shell state built-ins read and mutate. The pane
// session owns exactly one.
type State struct {
	Cwd      string
	PrevDir  string
	DirStack []string
	Env      map[string]string
	Aliases  map[string]string
	Theme    string
}

// NewState seeds a state from the current process environment and working
// directory.
func NewState() *State {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "/"
	}
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return &State{
		Cwd:     cwd,
		Env:     env,
		Aliases: make(map[string]string),
	}
}

// LookupEnv is the EnvLookup for this state.
func (s *State) LookupEnv(name string) string {
	return s.Env[name]
}

// Environ flattens the environment for child processes.
func (s *State) Environ() []string {
	env := make([]string, 0, len(s.Env)+1)
	for k, v := range s.Env {
		env = append(env, k+"="+v)
	}
	env = append(env, "TERM=xterm-256color")
	return env
}

// ResolvePath resolves p against the pane cwd, expanding ~ and the `-`
// previous-directory shorthand.
func (s *State) ResolvePath(p string) string {
	switch {
	case p == "-":
		if s.PrevDir != "" {
			return s.PrevDir
		}
		return s.Cwd
	case p == "~":
		return s.homeDir()
	case strings.HasPrefix(p, "~/"):
		return filepath.Join(s.homeDir(), p[2:])
	case filepath.IsAbs(p):
		return filepath.Clean(p)
	default:
		return filepath.Join(s.Cwd, p)
	}
}

func (s *State) homeDir() string {
	if h := s.Env["HOME"]; h != "" {
		return h
	}
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return s.Cwd
}

// Chdir moves the pane cwd, recording the previous directory for `cd -`.
func (s *State) Chdir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "cd", Path: dir, Err: os.ErrInvalid}
	}
	s.PrevDir = s.Cwd
	s.Cwd = dir
	return nil
}
