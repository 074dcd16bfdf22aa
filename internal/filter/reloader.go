package filter

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader watches a suppression pattern file and hot-applies changes.
// Scopes already unfiltered are never re-filtered by a reload.
type Reloader struct {
	watcher *fsnotify.Watcher
	path    string
}

// NewReloader creates a file watcher for the given pattern file.
func NewReloader(path string) (*Reloader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("filter: watch %q: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("filter: create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("filter: watch %q: %w", path, err)
	}
	return &Reloader{watcher: watcher, path: path}, nil
}

// Run watches for changes and reloads patterns. Blocks until ctx is
// cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Debounce: wait 500ms after the last write before reloading.
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, func() {
					if err := r.reload(); err != nil {
						fmt.Fprintf(os.Stderr, "filter hot-reload failed: %v\n", err)
					}
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "filter watcher error: %v\n", err)
		}
	}
}

func (r *Reloader) reload() error {
	p, err := Load(r.path)
	if err != nil {
		return err
	}
	Apply(p)
	return nil
}
