package tokens

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gymhub/gymclient/internal/logging"
)

// settleDelay merges the burst of events SQLite produces for one commit.
const settleDelay = 150 * time.Millisecond

// Watch signals on the returned channel whenever the token database at path
// (or its journal/WAL siblings) changes. It is the storage-changed signal
// consumers use to re-resolve identity. The channel closes when ctx ends.
func Watch(ctx context.Context, path string, logger logging.Logger) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	// Watch the directory: SQLite replaces journal files, and a watch on the
	// file alone is lost on some platforms when the file is recreated.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", abs, err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer w.Close()

		var settle <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !related(abs, ev.Name) || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if settle == nil {
					settle = time.After(settleDelay)
				}
			case <-settle:
				settle = nil
				select {
				case out <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn(ctx, "token file watcher", "error", err)
			}
		}
	}()

	return out, nil
}

func related(dbPath, name string) bool {
	name, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	switch name {
	case dbPath, dbPath + "-journal", dbPath + "-wal":
		return true
	}
	return false
}
