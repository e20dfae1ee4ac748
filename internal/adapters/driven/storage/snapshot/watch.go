package snapshot

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/agenda/internal/logger"
)

// DefaultDebounce coalesces the burst of events produced by one Save.
const DefaultDebounce = 500 * time.Millisecond

// Watch signals on the returned channel whenever a new index file is
// installed in dir. Signals are debounced and the channel is closed when ctx
// is done.
func Watch(ctx context.Context, dir string, debounce time.Duration) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer watcher.Close()

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !installsIndex(event) {
					continue
				}
				logger.Debug("Index file changed: %s", event)
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				fire = timer.C

			case <-fire:
				fire = nil
				select {
				case out <- struct{}{}:
				default:
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Snapshot watcher: %v", err)
			}
		}
	}()

	return out, nil
}

// installsIndex reports whether event puts a new index file in place.
// Temporary files written during Save are ignored.
func installsIndex(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != IndexFile {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write)
}
