package loader

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fd0/wmconf/internal/tree"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// debounceDelay coalesces the bursts of events written by editors.
const debounceDelay = 100 * time.Millisecond

// ReloadFunc is called with the new tree after a reload changed it.
type ReloadFunc func(root *tree.Entry)

// Watch reloads the configuration whenever one of its files changes, until
// ctx is cancelled. The directories of all files are watched, so files
// replaced by a rename are noticed. With an interval > 0 the configuration is
// also checked periodically, which is needed to pick up changed command
// output. Failed reloads are logged and do not stop watching.
func (l *Loader) Watch(ctx context.Context, interval time.Duration, fn ReloadFunc) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer fsw.Close()

	dirs := make(map[string]struct{})
	var files map[string]struct{}

	update := func() {
		files = make(map[string]struct{})
		for _, name := range l.Files() {
			abs, err := filepath.Abs(name)
			if err != nil {
				continue
			}
			files[abs] = struct{}{}

			dir := filepath.Dir(abs)
			if _, ok := dirs[dir]; ok {
				continue
			}

			if err := fsw.Add(dir); err != nil {
				l.log.Warn("watch directory", zap.String("dir", dir), zap.Error(err))
				continue
			}
			dirs[dir] = struct{}{}
		}
	}

	reload := func() {
		changed, err := l.Reload()
		if err != nil {
			l.log.Warn("reload failed", zap.String("path", l.path), zap.Error(err))
			return
		}

		update()
		if changed {
			fn(l.Root())
		}
	}

	update()

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}

			if _, ok := files[abs]; ok {
				l.log.Debug("file event", zap.String("file", abs), zap.Stringer("op", ev.Op))
				pending = time.After(debounceDelay)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			l.log.Warn("watch", zap.Error(err))

		case <-pending:
			pending = nil
			reload()

		case <-tick:
			reload()
		}
	}
}
