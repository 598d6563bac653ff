package update

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestChecker(current, tag string, status int) (*Checker, *httptest.Server) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(`{"tag_name": "` + tag + `", "html_url": "https://example.com/rel"}`))
	}))
	c := NewChecker(current)
	c.API = srv.URL
	return c, srv
}

func TestCheckSkipsDevBuilds(t *testing.T) {
	for _, v := range []string{"dev", ""} {
		c := NewChecker(v)
		c.API = "http://127.0.0.1:1/unreachable"
		result, err := c.Check()
		if err != nil || result.UpdateAvailable {
			t.Errorf("Check(%q) = %+v, %v; want silent no-op", v, result, err)
		}
	}
}

func TestCheckDetectsNewerRelease(t *testing.T) {
	c, srv := newTestChecker("v1.0.0", "v1.1.0", http.StatusOK)
	defer srv.Close()

	result, err := c.Check()
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !result.UpdateAvailable || result.Latest != "v1.1.0" {
		t.Errorf("result = %+v", result)
	}
}

func TestCheckSameVersionIsCurrent(t *testing.T) {
	c, srv := newTestChecker("v1.1.0", "v1.1.0", http.StatusOK)
	defer srv.Close()

	result, err := c.Check()
	if err != nil || result.UpdateAvailable {
		t.Errorf("result = %+v, %v; want up to date", result, err)
	}
}

func TestCheckBadStatus(t *testing.T) {
	c, srv := newTestChecker("v1.0.0", "v1.1.0", http.StatusForbidden)
	defer srv.Close()

	if _, err := c.Check(); err == nil {
		t.Error("Check with 403 succeeded")
	}
}

func TestHintFallsBackToReleaseURL(t *testing.T) {
	r := Result{ReleaseURL: "https://example.com/rel"}
	if got := r.Hint(); got == "" {
		t.Error("Hint returned nothing")
	}
}
