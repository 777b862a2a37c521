package app

import (
	stderrors "errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"typeinspector/internal/core/ports"
	"typeinspector/internal/core/watcher"
)

// StartWatcher follows the files of every open buffer and reloads them when
// they change on disk.
func (a *App) StartWatcher() error {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	if a.activeWatcher != nil {
		return nil
	}

	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Watch.ExcludeDirs,
		a.Config.Watch.ExcludeFiles,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	w.SetExtensions(a.grammars.SupportedExtensions())

	ids := a.Workspace.Buffers()
	paths := make([]string, 0, len(ids))
	for _, id := range ids {
		paths = append(paths, string(id))
	}
	if err := w.Watch(paths); err != nil {
		_ = w.Close()
		return err
	}
	a.activeWatcher = w
	slog.Info("watching buffers", "count", len(paths))
	return nil
}

func (a *App) StopWatcher() {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	if a.activeWatcher == nil {
		return
	}
	if err := a.activeWatcher.Close(); err != nil {
		slog.Warn("failed to close watcher", "error", err)
	}
	a.activeWatcher = nil
}

// HandleChanges reloads the open buffers among paths. A deleted file keeps
// its last content.
func (a *App) HandleChanges(paths []string) {
	for _, path := range paths {
		id := ports.BufferID(filepath.Clean(path))
		if _, ok := a.Workspace.Snapshot(id); !ok {
			continue
		}
		if err := a.Workspace.Reload(id); err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				slog.Debug("watched buffer removed from disk", "buffer", id)
				continue
			}
			slog.Warn("failed to reload buffer", "buffer", id, "error", err)
			continue
		}
		slog.Debug("buffer reloaded", "buffer", id)
	}
}
