package explain

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// knownCaseStudies maps case study names used in question banks to their
// markdown file names.
var knownCaseStudies = map[string]string{
	"TerramEarth":              "terramearth.md",
	"Mountkirk Games":          "mountkirk_games.md",
	"EHR Healthcare":           "ehr_healthcare.md",
	"Helicopter Racing League": "hrl.md",
}

// CaseStudies loads case study markdown from a directory and caches it.
type CaseStudies struct {
	dir string

	mu    sync.Mutex
	cache map[string]string
}

// NewCaseStudies reads case studies from dir. An empty dir disables them.
func NewCaseStudies(dir string) *CaseStudies {
	return &CaseStudies{dir: dir, cache: make(map[string]string)}
}

// FileName returns the markdown file for a case study name. Unknown names map
// to their lower snake case form, e.g. "Dress 4 Win" -> "dress_4_win.md".
func FileName(name string) string {
	if f, ok := knownCaseStudies[name]; ok {
		return f
	}
	slug := strings.ToLower(strings.Join(strings.Fields(name), "_"))
	return slug + ".md"
}

// Load returns the case study text, or "" when there is no such file.
func (c *CaseStudies) Load(name string) (string, error) {
	if c == nil || c.dir == "" || strings.TrimSpace(name) == "" {
		return "", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if text, ok := c.cache[name]; ok {
		return text, nil
	}

	b, err := os.ReadFile(filepath.Join(c.dir, FileName(name)))
	if errors.Is(err, fs.ErrNotExist) {
		c.cache[name] = ""
		return "", nil
	}
	if err != nil {
		return "", err
	}
	c.cache[name] = string(b)
	return c.cache[name], nil
}
