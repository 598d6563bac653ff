package update

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultAPI = "https://api.github.com/repos/techdufus/axon/releases/latest"

// Checker compares the running build against the newest published release.
type Checker struct {
	Current string
	// API is the release endpoint; overridable in tests.
	API    string
	Client *http.Client
}

// Result is the outcome of one check.
type Result struct {
	UpdateAvailable bool
	Latest          string
	ReleaseURL      string
}

type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// NewChecker builds a checker for the given build version.
func NewChecker(current string) *Checker {
	return &Checker{
		Current: current,
		API:     defaultAPI,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Check queries the release endpoint. Development builds ("dev" or empty)
// never report an update.
func (c *Checker) Check() (Result, error) {
	if c.Current == "dev" || c.Current == "" {
		return Result{}, nil
	}

	resp, err := c.Client.Get(c.API)
	if err != nil {
		return Result{}, fmt.Errorf("check for updates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("release endpoint returned status %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return Result{}, fmt.Errorf("parse release info: %w", err)
	}

	latest := strings.TrimPrefix(rel.TagName, "v")
	current := strings.TrimPrefix(c.Current, "v")
	return Result{
		UpdateAvailable: latest != "" && latest != current,
		Latest:          rel.TagName,
		ReleaseURL:      rel.HTMLURL,
	}, nil
}

// Hint suggests how to upgrade, based on how this binary was installed.
func (r Result) Hint() string {
	exe, err := os.Executable()
	if err == nil {
		if strings.Contains(exe, "Cellar") || strings.Contains(exe, "linuxbrew") {
			return "brew upgrade axon"
		}
		if strings.Contains(exe, "/go/bin") {
			return "go install github.com/techdufus/axon@latest"
		}
	}
	return r.ReleaseURL
}
