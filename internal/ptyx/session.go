package ptyx

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

const (
	readBufferSize = 4096
	// eventBacklog is sized so a stalled consumer applies backpressure to
	// the reader instead of buffering output without bound.
	eventBacklog = 64
)

// ErrSessionClosed is returned by Write and Resize after Close.
var ErrSessionClosed = errors.New("pty session is closed")

// EventKind discriminates reader events.
type EventKind int

const (
	EventData EventKind = iota
	EventExited
	EventError
)

// Event is one item published by the reader goroutine. Data events carry
// output bytes in FIFO order; Exited and Error are terminal — nothing is
// published after them.
type Event struct {
	Kind     EventKind
	Data     []byte
	ExitCode int
	Err      string
}

// Session owns the master side of a pseudo-terminal and the child process
// running on its slave. A dedicated goroutine reads the master and publishes
// events; the session is the sole writer.
type Session struct {
	ptmx   *os.File
	cmd    *exec.Cmd
	events chan Event
	done   chan struct{}

	mu     sync.Mutex
	closed bool
	rows   int
	cols   int
}

// Spawn starts command under a new PTY of the given size, with cwd as its
// working directory and env as its environment (nil inherits the parent's).
func Spawn(command string, args []string, cwd string, env []string, rows, cols int) (*Session, error) {
	cmd := exec.Command(command, args...)
	if cwd != "" {
		cmd.Dir = cwd
	}
	if env != nil {
		cmd.Env = env
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", command, err)
	}

	s := &Session{
		ptmx:   ptmx,
		cmd:    cmd,
		events: make(chan Event, eventBacklog),
		done:   make(chan struct{}),
		rows:   rows,
		cols:   cols,
	}
	go s.readLoop()
	return s, nil
}

// readLoop reads the master in bounded chunks and publishes Data events.
// On read failure it waits on the child: a normal exit becomes Exited, an
// unexpected failure becomes Error. Either way the loop terminates and the
// event channel is closed.
func (s *Session) readLoop() {
	defer close(s.done)
	defer close(s.events)

	buf := make([]byte, readBufferSize)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			s.events <- Event{Kind: EventData, Data: data}
		}
		if err == nil {
			continue
		}

		// The master errors with EIO (or EOF) once the child's side is
		// gone; anything while the child is still alive is a real failure.
		code, waitErr := s.waitChild()
		if waitErr != nil {
			s.events <- Event{Kind: EventError, Err: waitErr.Error()}
			return
		}
		s.events <- Event{Kind: EventExited, ExitCode: code}
		return
	}
}

func (s *Session) waitChild() (int, error) {
	err := s.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// Write enqueues input bytes to the child.
func (s *Session) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrSessionClosed
	}
	return s.ptmx.Write(data)
}

// Poll drains all pending events without blocking and returns them in
// publication order. It returns (events, false) once the terminal event has
// been consumed and the session will produce nothing further.
func (s *Session) Poll() ([]Event, bool) {
	var events []Event
	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				return events, false
			}
			events = append(events, ev)
			if ev.Kind != EventData {
				return events, false
			}
		default:
			return events, true
		}
	}
}

// Resize propagates new terminal dimensions to the kernel and child.
func (s *Session) Resize(rows, cols int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.rows, s.cols = rows, cols
	return pty.Setsize(s.ptmx, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
}

// Size returns the last size handed to the kernel.
func (s *Session) Size() (rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows, s.cols
}

// Close terminates the child, closes the master, and joins the reader. It
// is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	// Closing the master unblocks a pending read so the loop can wind down.
	s.ptmx.Close()

	// Drain so the reader never deadlocks publishing its final event.
	go func() {
		for range s.events {
		}
	}()
	<-s.done
	return nil
}
