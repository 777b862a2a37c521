package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"typeinspector/internal/core/config"
	"typeinspector/internal/core/dispatch"
	"typeinspector/internal/core/errors"
	"typeinspector/internal/core/inspector"
	"typeinspector/internal/core/ports"
	"typeinspector/internal/core/watcher"
	"typeinspector/internal/core/workspace"
	"typeinspector/internal/engine/inference"
	"typeinspector/internal/engine/parser"
	"typeinspector/internal/shared/util"
)

// App owns one inspector session and every collaborator it runs against.
type App struct {
	Config    *config.Config
	Workspace *workspace.Workspace
	Syntax    *parser.Provider
	Backend   *inference.Backend
	Session   *inspector.Session
	Executor  *dispatch.Pool

	grammars *parser.GrammarLoader

	watchMu       sync.Mutex
	activeWatcher *watcher.Watcher
	closeOnce     sync.Once
}

func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	grammars, err := parser.NewGrammarLoader()
	if err != nil {
		return nil, err
	}

	ws := workspace.New()
	syntax := parser.NewProvider(ws, grammars)
	backend := inference.NewBackend(cfg.Inference.MaxDepth)
	session := inspector.NewSession(syntax, backend, ws, inspector.OptionsFromConfig(cfg))

	slog.Debug("app initialized",
		"session", session.ID(),
		"workers", cfg.Publisher.Workers,
		"extensions", grammars.SupportedExtensions())

	return &App{
		Config:    cfg,
		Workspace: ws,
		Syntax:    syntax,
		Backend:   backend,
		Session:   session,
		Executor:  dispatch.NewPool(cfg.Publisher.Workers),
		grammars:  grammars,
	}, nil
}

// OpenFile opens a Python source file as a buffer.
func (a *App) OpenFile(path string) (ports.BufferID, error) {
	if a.grammars.LanguageForPath(path) == "" {
		return "", errors.AddContext(
			errors.New(errors.CodeNotSupported, fmt.Sprintf("unsupported file type, expected one of %v", a.grammars.SupportedExtensions())),
			errors.CtxPath, path)
	}
	return a.Workspace.Open(path)
}

// Inspect resolves the status text for one position of a file. The offset
// is a character offset; use OffsetOf to convert a line and column.
func (a *App) Inspect(ctx context.Context, path string, offset int) (inspector.TypeQueryResult, error) {
	if offset < 0 {
		err := errors.AddContext(errors.New(errors.CodeValidationError, "offset must not be negative"), errors.CtxPath, path)
		return "", errors.AddContext(err, errors.CtxOffset, offset)
	}
	id, err := a.OpenFile(path)
	if err != nil {
		return "", err
	}
	return a.Session.Cache().GetOrCompute(ctx, inspector.BufferPositionKey{Buffer: id, Offset: offset}), nil
}

// OffsetOf converts a 1-based line and column of an open buffer.
func (a *App) OffsetOf(id ports.BufferID, pos util.Position) (int, error) {
	snap, ok := a.Workspace.Snapshot(id)
	if !ok {
		return 0, errors.AddContext(errors.New(errors.CodeNotFound, "buffer not open"), errors.CtxBuffer, string(id))
	}
	offset, ok := util.LineColumnToOffset(snap.Content, pos.Line, pos.Column)
	if !ok {
		return 0, errors.AddContext(
			errors.New(errors.CodeValidationError, fmt.Sprintf("position %d:%d is outside the buffer", pos.Line, pos.Column)),
			errors.CtxBuffer, string(id))
	}
	return offset, nil
}

// Host returns the collaborators a widget needs, with dispatcher standing in
// for the UI thread.
func (a *App) Host(dispatcher ports.UIDispatcher) inspector.Host {
	return inspector.Host{
		Buffers:    a.Workspace,
		Editors:    a.Workspace,
		Carets:     a.Workspace,
		Executor:   a.Executor,
		Dispatcher: dispatcher,
	}
}

// Close stops the watcher, waits for background resolutions and tears the
// session down.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.StopWatcher()
		a.Executor.Close()
		a.Session.Close()
		a.Backend.Close()
	})
}
