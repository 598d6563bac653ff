package shell

import (
	"fmt"
	"sort"
	"strings"
)

// BuiltinResult is what an in-process command produced. Built-ins are
// synchronous and bounded; they never block on the network.
type BuiltinResult struct {
	Output      string
	ClearScreen bool
	Exit        bool
}

// Builtin is one in-process command: identity, help, and an execute
// function over the pane state.
type Builtin struct {
	Name        string
	Description string
	Usage       string
	Help        string
	Run         func(st *State, argv []string) (BuiltinResult, error)
}

// Builtins returns the registry keyed by name.
func Builtins() map[string]*Builtin {
	m := make(map[string]*Builtin)
	for _, b := range builtinList {
		m[b.Name] = b
	}
	return m
}

var builtinList []*Builtin

func init() {
	builtinList = []*Builtin{
		{
			Name:        "cd",
			Description: "change the pane working directory",
			Usage:       "cd [dir]",
			Help: `cd [dir]

Changes the pane working directory. With no argument, moves to $HOME.
'-' moves to the previous directory; '~' expands to $HOME. The change
applies to commands launched from this pane only.`,
			Run: func(st *State, argv []string) (BuiltinResult, error) {
				target := "~"
				if len(argv) > 1 {
					target = argv[1]
				}
				printDir := target == "-"
				dir := st.ResolvePath(target)
				if err := st.Chdir(dir); err != nil {
					return BuiltinResult{}, fmt.Errorf("cd: %s: no such directory", target)
				}
				if printDir {
					return BuiltinResult{Output: st.Cwd + "\n"}, nil
				}
				return BuiltinResult{}, nil
			},
		},
		{
			Name:        "pwd",
			Description: "print the pane working directory",
			Usage:       "pwd",
			Help:        "pwd\n\nPrints the pane working directory.",
			Run: func(st *State, argv []string) (BuiltinResult, error) {
				return BuiltinResult{Output: st.Cwd + "\n"}, nil
			},
		},
		{
			Name:        "echo",
			Description: "print arguments",
			Usage:       "echo [args...]",
			Help:        "echo [args...]\n\nPrints its arguments separated by spaces.",
			Run: func(st *State, argv []string) (BuiltinResult, error) {
				return BuiltinResult{Output: strings.Join(argv[1:], " ") + "\n"}, nil
			},
		},
		{
			Name:        "alias",
			Description: "define or list aliases",
			Usage:       "alias [name=value]",
			Help: `alias [name=value]

With no arguments, lists defined aliases. With name=value, defines an
alias expanded before command classification.`,
			Run: func(st *State, argv []string) (BuiltinResult, error) {
				if len(argv) == 1 {
					names := make([]string, 0, len(st.Aliases))
					for n := range st.Aliases {
						names = append(names, n)
					}
					sort.Strings(names)
					var b strings.Builder
					for _, n := range names {
						fmt.Fprintf(&b, "alias %s='%s'\n", n, st.Aliases[n])
					}
					return BuiltinResult{Output: b.String()}, nil
				}
				for _, arg := range argv[1:] {
					name, value, ok := strings.Cut(arg, "=")
					if !ok || name == "" {
						return BuiltinResult{}, fmt.Errorf("alias: invalid assignment %q", arg)
					}
					st.Aliases[name] = value
				}
				return BuiltinResult{}, nil
			},
		},
		{
			Name:        "unalias",
			Description: "remove an alias",
			Usage:       "unalias name",
			Help:        "unalias name\n\nRemoves a previously defined alias.",
			Run: func(st *State, argv []string) (BuiltinResult, error) {
				if len(argv) < 2 {
					return BuiltinResult{}, fmt.Errorf("unalias: name required")
				}
				for _, name := range argv[1:] {
					if _, ok := st.Aliases[name]; !ok {
						return BuiltinResult{}, fmt.Errorf("unalias: %s: not found", name)
					}
					delete(st.Aliases, name)
				}
				return BuiltinResult{}, nil
			},
		},
		{
			Name:        "export",
			Description: "set an environment variable",
			Usage:       "export NAME=value",
			Help: `export NAME=value

Sets an environment variable in the pane environment. The variable is
passed to every process subsequently launched from this pane.`,
			Run: func(st *State, argv []string) (BuiltinResult, error) {
				if len(argv) == 1 {
					names := make([]string, 0, len(st.Env))
					for n := range st.Env {
						names = append(names, n)
					}
					sort.Strings(names)
					var b strings.Builder
					for _, n := range names {
						fmt.Fprintf(&b, "%s=%s\n", n, st.Env[n])
					}
					return BuiltinResult{Output: b.String()}, nil
				}
				for _, arg := range argv[1:] {
					name, value, ok := strings.Cut(arg, "=")
					if !ok || name == "" {
						return BuiltinResult{}, fmt.Errorf("export: invalid assignment %q", arg)
					}
					st.Env[name] = value
				}
				return BuiltinResult{}, nil
			},
		},
		{
			Name:        "unset",
			Description: "remove an environment variable",
			Usage:       "unset NAME",
			Help:        "unset NAME\n\nRemoves a variable from the pane environment.",
			Run: func(st *State, argv []string) (BuiltinResult, error) {
				if len(argv) < 2 {
					return BuiltinResult{}, fmt.Errorf("unset: name required")
				}
				for _, name := range argv[1:] {
					delete(st.Env, name)
				}
				return BuiltinResult{}, nil
			},
		},
		{
			Name:        "pushd",
			Description: "push the current directory and change to a new one",
			Usage:       "pushd dir",
			Help:        "pushd dir\n\nPushes the current directory onto the stack, then cd to dir.",
			Run: func(st *State, argv []string) (BuiltinResult, error) {
				if len(argv) < 2 {
					return BuiltinResult{}, fmt.Errorf("pushd: directory required")
				}
				old := st.Cwd
				if err := st.Chdir(st.ResolvePath(argv[1])); err != nil {
					return BuiltinResult{}, fmt.Errorf("pushd: %s: no such directory", argv[1])
				}
				st.DirStack = append(st.DirStack, old)
				return BuiltinResult{Output: dirsLine(st) + "\n"}, nil
			},
		},
		{
			Name:        "popd",
			Description: "pop the directory stack",
			Usage:       "popd",
			Help:        "popd\n\nPops the top of the directory stack and cd there.",
			Run: func(st *State, argv []string) (BuiltinResult, error) {
				if len(st.DirStack) == 0 {
					return BuiltinResult{}, fmt.Errorf("popd: directory stack empty")
				}
				top := st.DirStack[len(st.DirStack)-1]
				if err := st.Chdir(top); err != nil {
					return BuiltinResult{}, fmt.Errorf("popd: %s: no such directory", top)
				}
				st.DirStack = st.DirStack[:len(st.DirStack)-1]
				return BuiltinResult{Output: dirsLine(st) + "\n"}, nil
			},
		},
		{
			Name:        "dirs",
			Description: "print the directory stack",
			Usage:       "dirs",
			Help:        "dirs\n\nPrints the directory stack, current directory first.",
			Run: func(st *State, argv []string) (BuiltinResult, error) {
				return BuiltinResult{Output: dirsLine(st) + "\n"}, nil
			},
		},
		{
			Name:        "clear",
			Description: "clear the pane",
			Usage:       "clear",
			Help:        "clear\n\nClears the pane output buffer.",
			Run: func(st *State, argv []string) (BuiltinResult, error) {
				return BuiltinResult{ClearScreen: true}, nil
			},
		},
		{
			Name:        "theme",
			Description: "show or switch the color theme",
			Usage:       "theme [name]",
			Help: `theme [name]

With no argument, prints the active theme. With a name, switches to it.
Theme names are validated by the application against its catalogue.`,
			Run: func(st *State, argv []string) (BuiltinResult, error) {
				if len(argv) == 1 {
					return BuiltinResult{Output: st.Theme + "\n"}, nil
				}
				st.Theme = argv[1]
				return BuiltinResult{Output: "theme set to " + argv[1] + "\n"}, nil
			},
		},
		{
			Name:        "exit",
			Description: "close the pane",
			Usage:       "exit",
			Help:        "exit\n\nCloses the pane. The last pane closing closes the tab.",
			Run: func(st *State, argv []string) (BuiltinResult, error) {
				return BuiltinResult{Exit: true}, nil
			},
		},
		{
			Name:        "help",
			Description: "list built-in commands",
			Usage:       "help [command]",
			Help:        "help [command]\n\nLists built-ins, or shows the extended help for one.",
			Run: func(st *State, argv []string) (BuiltinResult, error) {
				reg := Builtins()
				if len(argv) > 1 {
					b, ok := reg[argv[1]]
					if !ok {
						return BuiltinResult{}, fmt.Errorf("help: no such builtin: %s", argv[1])
					}
					return BuiltinResult{Output: b.Help + "\n"}, nil
				}
				names := make([]string, 0, len(reg))
				for n := range reg {
					names = append(names, n)
				}
				sort.Strings(names)
				var out strings.Builder
				for _, n := range names {
					fmt.Fprintf(&out, "%-10s %s\n", n, reg[n].Description)
				}
				return BuiltinResult{Output: out.String()}, nil
			},
		},
	}
}

func dirsLine(st *State) string {
	parts := []string{st.Cwd}
	for i := len(st.DirStack) - 1; i >= 0; i-- {
		parts = append(parts, st.DirStack[i])
	}
	return strings.Join(parts, " ")
}
