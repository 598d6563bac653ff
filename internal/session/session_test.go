package session

import (
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("AXON_CONFIG_DIR", t.TempDir())

	s := &Session{
		Name: "work",
		Tabs: []TabState{
			{Title: "api", Cwd: "/srv/api", History: []string{"make", "make test"}, Scroll: 12},
			{Title: "web", Cwd: "/srv/web"},
		},
		ActiveTab: 1,
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load("work")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load returned nil for existing session")
	}
	if len(loaded.Tabs) != 2 || loaded.ActiveTab != 1 {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Tabs[0].Title != "api" || loaded.Tabs[0].Scroll != 12 {
		t.Errorf("tab state lost: %+v", loaded.Tabs[0])
	}
	if loaded.SavedAt.IsZero() {
		t.Error("SavedAt not stamped")
	}
}

func TestLoadMissingSession(t *testing.T) {
	t.Setenv("AXON_CONFIG_DIR", t.TempDir())
	s, err := Load("ghost")
	if err != nil || s != nil {
		t.Errorf("Load missing = %+v, %v; want nil, nil", s, err)
	}
}

func TestLoadClampsActiveTab(t *testing.T) {
	t.Setenv("AXON_CONFIG_DIR", t.TempDir())
	s := &Session{Name: "x", Tabs: []TabState{{Title: "only"}}, ActiveTab: 9}
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load("x")
	if err != nil || loaded.ActiveTab != 0 {
		t.Errorf("active tab = %d, %v; want 0", loaded.ActiveTab, err)
	}
}

func TestSaveRequiresName(t *testing.T) {
	if err := (&Session{}).Save(); err == nil {
		t.Error("Save without a name succeeded")
	}
}
