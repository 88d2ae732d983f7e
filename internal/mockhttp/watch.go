package mockhttp

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sophiebushman1/jwt-pizza/internal/fixture"
)

// WatchFixtures reloads backend data whenever the fixture file at path is
// rewritten, so edits to the YAML show up in the running mock without a
// restart. The watch runs until ctx is cancelled. The directory is watched
// rather than the file itself because editors replace files on save.
func WatchFixtures(ctx context.Context, backend *fixture.Backend, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fixture watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch fixture directory: %w", err)
	}

	target := filepath.Clean(path)

	go func() {
		defer watcher.Close()

		// Editors fire several events per save, often truncating and then
		// rewriting the file. Events only mark the file pending; the reload
		// runs once the burst has settled, so the final content wins.
		const settle = 200 * time.Millisecond
		var pending time.Time

		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				pending = time.Now()

			case <-ticker.C:
				if pending.IsZero() || time.Since(pending) < settle {
					continue
				}
				pending = time.Time{}

				if err := backend.LoadFile(path); err != nil {
					log.Printf("fixture reload failed, keeping previous data: %v", err)
					continue
				}
				log.Printf("fixture data reloaded from %s", path)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("fixture watcher error: %v", err)
			}
		}
	}()

	return nil
}
