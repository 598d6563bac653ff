package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/techdufus/axon/internal/config"
	"github.com/techdufus/axon/internal/history"
)

// TestEnv isolates config, history, and session files under a temp dir.
type TestEnv struct {
	ConfigDir string
	WorkDir   string
	T         *testing.T
}

func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	baseDir := t.TempDir()
	configDir := filepath.Join(baseDir, "config")
	workDir := filepath.Join(baseDir, "work")

	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		t.Fatalf("failed to create work dir: %v", err)
	}

	t.Setenv("AXON_CONFIG_DIR", configDir)

	return &TestEnv{
		ConfigDir: configDir,
		WorkDir:   workDir,
		T:         t,
	}
}

// WriteConfig persists cfg into the isolated config dir.
func (e *TestEnv) WriteConfig(cfg *config.Config) {
	e.T.Helper()
	path := filepath.Join(e.ConfigDir, "config.json")
	if err := cfg.Save(path); err != nil {
		e.T.Fatalf("failed to write test config: %v", err)
	}
}

// SeedHistory writes a history file with the given commands.
func (e *TestEnv) SeedHistory(commands ...string) {
	e.T.Helper()
	log := history.NewLog(0)
	for _, c := range commands {
		log.Record(history.Entry{Command: c, Cwd: e.WorkDir})
	}
	path, err := config.HistoryPath()
	if err != nil {
		e.T.Fatalf("history path: %v", err)
	}
	if err := log.Save(path); err != nil {
		e.T.Fatalf("failed to seed history: %v", err)
	}
}

// LoadHistory reads back the isolated history file.
func (e *TestEnv) LoadHistory() *history.Log {
	e.T.Helper()
	path, err := config.HistoryPath()
	if err != nil {
		e.T.Fatalf("history path: %v", err)
	}
	log, err := history.Load(path, 0)
	if err != nil {
		e.T.Fatalf("failed to load history: %v", err)
	}
	return log
}
