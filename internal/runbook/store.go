package runbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aegisops/aegis/internal/model"
)

// Store serves runbook content from a local directory with built-in
// fallbacks. Files are named <category>.md; unknown.md doubles as the
// fallback for categories without a file of their own. Content is held
// in memory so lookups never touch disk on the request path.
type Store struct {
	dir string

	mu    sync.RWMutex
	files map[model.Category]string
}

// NewStore creates a store backed by dir. An empty dir means built-ins
// only. The initial load happens immediately; a missing directory is not
// an error, the store just serves built-ins.
func NewStore(dir string) *Store {
	s := &Store{dir: dir, files: make(map[model.Category]string)}
	if dir != "" {
		if err := s.Reload(); err != nil {
			fmt.Fprintf(os.Stderr, "runbook: initial load failed: %v\n", err)
		}
	}
	return s
}

// Reload re-reads all category files from the directory. Safe to call
// concurrently with Get; readers see either the old or the new snapshot.
func (s *Store) Reload() error {
	if s.dir == "" {
		return nil
	}

	loaded := make(map[model.Category]string)
	for _, c := range []model.Category{model.CategoryLatency, model.CategoryStorage, model.CategoryAuth, model.CategoryUnknown} {
		path := filepath.Join(s.dir, string(c)+".md")
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("runbook: read %s: %w", path, err)
		}
		content := strings.TrimSpace(string(data))
		if content != "" {
			loaded[c] = content
		}
	}

	s.mu.Lock()
	s.files = loaded
	s.mu.Unlock()
	return nil
}

// Get returns runbook content for a category. Lookup order: the category
// file, the unknown.md file, the built-in runbook.
func (s *Store) Get(category model.Category) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if content, ok := s.files[category]; ok {
		return content
	}
	if content, ok := s.files[model.CategoryUnknown]; ok {
		return content
	}
	return Builtin(category)
}

// FormatForPrompt wraps runbook content in the framing block the model
// prompt expects. Empty content produces an empty string.
func FormatForPrompt(content string) string {
	if content == "" {
		return ""
	}
	return fmt.Sprintf(`
## Relevant Runbook Context

%s

Use the above runbook context to inform your analysis and decision.
If the incident matches runbook patterns, increase confidence.
If the incident deviates from runbook patterns, decrease confidence.
`, content)
}
