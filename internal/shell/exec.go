package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// runCaptured executes a pipeline in captured mode: processes are spawned
// with the pane's cwd and environment, stages are connected stdout-to-stdin,
// and combined stdout+stderr of the pipeline is returned as text. The exit
// code is the final stage's. Reserved for short-lived, non-interactive
// commands; the router never sends interactive children here.
func (r *Router) runCaptured(st *State, stages []Stage) (string, int, error) {
	ctx := context.Background()
	if r.CapturedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.CapturedTimeout)
		defer cancel()
	}

	if r.allExternal(stages) {
		return r.runPiped(ctx, st, stages)
	}
	return r.runSequential(ctx, st, stages)
}

func (r *Router) allExternal(stages []Stage) bool {
	for _, s := range stages {
		if _, ok := r.builtins[s.Argv[0]]; ok {
			return false
		}
	}
	return true
}

// runPiped connects external stages with OS pipes and runs them
// concurrently, as a shell would.
func (r *Router) runPiped(ctx context.Context, st *State, stages []Stage) (string, int, error) {
	var out bytes.Buffer
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	cmds := make([]*exec.Cmd, len(stages))
	errBufs := make([]*bytes.Buffer, len(stages))

	var prevRead *os.File
	for i, stage := range stages {
		cmd := exec.CommandContext(ctx, stage.Argv[0], stage.Argv[1:]...)
		cmd.Dir = st.Cwd
		cmd.Env = st.Environ()

		// stdin: explicit redirect wins over the pipe from the previous stage
		switch {
		case stage.Stdin != "":
			if prevRead != nil {
				closers = append(closers, prevRead)
				prevRead = nil
			}
			f, err := os.Open(st.ResolvePath(stage.Stdin))
			if err != nil {
				return "", 1, &IoError{Op: "open", Err: err}
			}
			closers = append(closers, f)
			cmd.Stdin = f
		case prevRead != nil:
			cmd.Stdin = prevRead
			closers = append(closers, prevRead)
		}

		// stdout: redirect, pipe to the next stage, or capture
		switch {
		case stage.Stdout != "":
			f, err := openRedirect(st, stage.Stdout, stage.StdoutAppend)
			if err != nil {
				return "", 1, err
			}
			closers = append(closers, f)
			cmd.Stdout = f
			prevRead = nil
		case i < len(stages)-1:
			pr, pw, err := os.Pipe()
			if err != nil {
				return "", 1, &IoError{Op: "pipe", Err: err}
			}
			cmd.Stdout = pw
			closers = append(closers, pw)
			prevRead = pr
		default:
			cmd.Stdout = &out
			prevRead = nil
		}

		// stderr: redirect or capture per stage
		if stage.Stderr != "" {
			f, err := openRedirect(st, stage.Stderr, stage.StderrAppend)
			if err != nil {
				return "", 1, err
			}
			closers = append(closers, f)
			cmd.Stderr = f
		} else {
			errBufs[i] = &bytes.Buffer{}
			cmd.Stderr = errBufs[i]
		}

		cmds[i] = cmd
	}

	for i, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			for _, started := range cmds[:i] {
				if started.Process != nil {
					started.Process.Kill()
					started.Wait()
				}
			}
			return "", 127, &SpawnError{Command: cmd.Path, Err: err}
		}
	}

	// Parent copies of the pipe ends must close so downstream stages see EOF.
	for _, c := range closers {
		if f, ok := c.(*os.File); ok && f != nil {
			f.Close()
		}
	}
	closers = nil

	code := 0
	for i, cmd := range cmds {
		err := cmd.Wait()
		var exitErr *exec.ExitError
		switch {
		case err == nil:
			code = 0
		case errors.As(err, &exitErr):
			code = exitErr.ExitCode()
		default:
			return out.String(), 1, &IoError{Op: "wait", Err: err}
		}
		if errBufs[i] != nil {
			out.Write(errBufs[i].Bytes())
		}
	}
	if ctx.Err() != nil {
		return out.String(), code, fmt.Errorf("command timed out")
	}
	return out.String(), code, nil
}

// runSequential handles pipelines containing built-in stages: each stage
// runs to completion and its output becomes the next stage's stdin.
func (r *Router) runSequential(ctx context.Context, st *State, stages []Stage) (string, int, error) {
	var carried []byte
	var out bytes.Buffer
	code := 0

	for i, stage := range stages {
		last := i == len(stages)-1

		var stdin io.Reader
		switch {
		case stage.Stdin != "":
			f, err := os.Open(st.ResolvePath(stage.Stdin))
			if err != nil {
				return out.String(), 1, &IoError{Op: "open", Err: err}
			}
			defer f.Close()
			stdin = f
		case carried != nil:
			stdin = bytes.NewReader(carried)
		}

		var stageOut []byte
		if b, ok := r.builtins[stage.Argv[0]]; ok {
			res, err := b.Run(st, stage.Argv)
			if err != nil {
				return out.String(), 1, err
			}
			stageOut = []byte(res.Output)
			code = 0
		} else {
			var buf, errBuf bytes.Buffer
			cmd := exec.CommandContext(ctx, stage.Argv[0], stage.Argv[1:]...)
			cmd.Dir = st.Cwd
			cmd.Env = st.Environ()
			cmd.Stdin = stdin
			cmd.Stdout = &buf
			cmd.Stderr = &errBuf
			if err := cmd.Run(); err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					code = exitErr.ExitCode()
				} else {
					return out.String(), 127, &SpawnError{Command: stage.Argv[0], Err: err}
				}
			} else {
				code = 0
			}
			out.Write(errBuf.Bytes())
			stageOut = buf.Bytes()
		}

		if stage.Stdout != "" {
			f, err := openRedirect(st, stage.Stdout, stage.StdoutAppend)
			if err != nil {
				return out.String(), 1, err
			}
			f.Write(stageOut)
			f.Close()
			carried = nil
		} else if last {
			out.Write(stageOut)
			carried = nil
		} else {
			carried = stageOut
		}
	}
	if ctx.Err() != nil {
		return out.String(), code, fmt.Errorf("command timed out")
	}
	return out.String(), code, nil
}

func openRedirect(st *State, target string, appendMode bool) (*os.File, error) {
	flags := os.O_WRONLY | os.O_CREATE
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(st.ResolvePath(target), flags, 0644)
	if err != nil {
		return nil, &IoError{Op: "redirect", Err: err}
	}
	return f, nil
}

// SpawnError is an external program that could not be launched.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// IoError is a redirect or pipe failure, surfaced with the OS message.
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }
