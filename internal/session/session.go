package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/techdufus/axon/internal/config"
)

// TabState is what survives of a tab across restarts: identity, where it
// was, and what had been typed there.
type TabState struct {
	Title   string   `json:"title"`
	Cwd     string   `json:"cwd"`
	History []string `json:"history"`
	Scroll  int      `json:"scroll"`
}

// Session is one named session document.
type Session struct {
	Name      string     `json:"name"`
	Tabs      []TabState `json:"tabs"`
	ActiveTab int        `json:"active_tab"`
	SavedAt   time.Time  `json:"saved_at"`
}

// Save writes the session document for its name.
func (s *Session) Save() error {
	if s.Name == "" {
		return fmt.Errorf("session: name required")
	}
	path, err := config.SessionPath(s.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	s.SavedAt = time.Now()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a named session. A missing file returns (nil, nil) so startup
// can fall back to a fresh session.
func Load(name string) (*Session, error) {
	path, err := config.SessionPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("session %s: %w", name, err)
	}
	if s.ActiveTab < 0 || s.ActiveTab >= len(s.Tabs) {
		s.ActiveTab = 0
	}
	return &s, nil
}
