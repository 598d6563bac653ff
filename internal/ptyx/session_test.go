package ptyx

import (
	"bytes"
	"testing"
	"time"
)

// drain polls until the session reports it is finished or the deadline
// passes, returning everything read plus the terminal event.
func drain(t *testing.T, s *Session, timeout time.Duration) ([]byte, *Event) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var out bytes.Buffer
	for time.Now().Before(deadline) {
		events, alive := s.Poll()
		for _, ev := range events {
			switch ev.Kind {
			case EventData:
				out.Write(ev.Data)
			default:
				final := ev
				return out.Bytes(), &final
			}
		}
		if !alive {
			return out.Bytes(), nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("session did not finish within %v", timeout)
	return nil, nil
}

func TestSpawnCapturesOutputAndExit(t *testing.T) {
	s, err := Spawn("sh", []string{"-c", "printf hello; exit 3"}, "", nil, 24, 80)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer s.Close()

	out, final := drain(t, s, 5*time.Second)
	if !bytes.Contains(out, []byte("hello")) {
		t.Errorf("output = %q, want it to contain %q", out, "hello")
	}
	if final == nil || final.Kind != EventExited {
		t.Fatalf("final event = %+v, want Exited", final)
	}
	if final.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", final.ExitCode)
	}
}

func TestWriteReachesChild(t *testing.T) {
	s, err := Spawn("cat", nil, "", nil, 24, 80)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer s.Close()

	if _, err := s.Write([]byte("ping\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	var out bytes.Buffer
	for time.Now().Before(deadline) {
		events, alive := s.Poll()
		for _, ev := range events {
			if ev.Kind == EventData {
				out.Write(ev.Data)
			}
		}
		if bytes.Contains(out.Bytes(), []byte("ping")) {
			return
		}
		if !alive {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("echoed output = %q, want it to contain %q", out.Bytes(), "ping")
}

func TestSpawnFailure(t *testing.T) {
	if _, err := Spawn("axon-definitely-not-a-command", nil, "", nil, 24, 80); err == nil {
		t.Fatal("Spawn of a missing binary succeeded")
	}
}

func TestCloseIsIdempotentAndStopsWrites(t *testing.T) {
	s, err := Spawn("cat", nil, "", nil, 24, 80)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := s.Write([]byte("x")); err != ErrSessionClosed {
		t.Errorf("Write after Close = %v, want ErrSessionClosed", err)
	}
	if err := s.Resize(10, 10); err != ErrSessionClosed {
		t.Errorf("Resize after Close = %v, want ErrSessionClosed", err)
	}
}

func TestResize(t *testing.T) {
	s, err := Spawn("cat", nil, "", nil, 24, 80)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer s.Close()

	if err := s.Resize(40, 120); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	rows, cols := s.Size()
	if rows != 40 || cols != 120 {
		t.Errorf("Size = (%d,%d), want (40,120)", rows, cols)
	}
}
