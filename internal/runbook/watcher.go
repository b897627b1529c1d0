package runbook

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads the runbook store when files in its directory change.
type Watcher struct {
	watcher *fsnotify.Watcher
	store   *Store
}

// NewWatcher creates a file watcher for the store's directory.
// Returns nil (no watcher, no error) when the store has no directory
// or the directory does not exist.
func NewWatcher(store *Store) (*Watcher, error) {
	if store.dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(store.dir); err != nil {
		return nil, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(store.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", store.dir, err)
	}

	return &Watcher{watcher: watcher, store: store}, nil
}

// Run watches for file changes and reloads the store. Blocks until ctx
// is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	// Debounce: wait 500ms after last write before reloading
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, func() {
					if err := w.store.Reload(); err != nil {
						fmt.Fprintf(os.Stderr, "hot-reload failed: %v\n", err)
					} else {
						fmt.Fprintf(os.Stderr, "hot-reload: runbooks reloaded\n")
					}
				})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "file watcher error: %v\n", err)
		}
	}
}
