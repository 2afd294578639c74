package directory

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the directory whenever its file changes on disk. A reload
// failure keeps the previous table and logs a warning; the conversation flows
// never see a half-loaded directory. Blocks until ctx is cancelled.
func (d *Directory) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(d.path); err != nil {
		return err
	}

	slog.Info("watching organization directory", "path", d.path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := d.reload(); err != nil {
				slog.Warn("directory reload failed, keeping previous table", "error", err)
				continue
			}
			slog.Info("organization directory reloaded", "organizations", d.Len())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("directory watcher error", "error", err)
		}
	}
}
