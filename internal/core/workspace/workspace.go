package workspace

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"typeinspector/internal/core/errors"
	"typeinspector/internal/core/ports"
	"typeinspector/internal/shared/util"
)

type document struct {
	content []byte
	version uint64
}

// Workspace is the host document and editor model: open buffers, editors
// with carets, focus, and the caret and change multicasters.
type Workspace struct {
	mu       sync.RWMutex
	buffers  map[ports.BufferID]*document
	editors  map[string]*Editor
	selected *Editor

	caretListeners  ports.Listeners[ports.EditorHandle]
	changeListeners ports.Listeners[ports.BufferID]
}

func New() *Workspace {
	return &Workspace{
		buffers: make(map[ports.BufferID]*document),
		editors: make(map[string]*Editor),
	}
}

// BufferIDFor derives the buffer identity of a file path.
func BufferIDFor(path string) (ports.BufferID, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "resolve buffer path"), errors.CtxPath, path)
	}
	return ports.BufferID(filepath.Clean(abs)), nil
}

// Open reads path from disk into a buffer. Opening an already open path
// returns the existing buffer untouched.
func (w *Workspace) Open(path string) (ports.BufferID, error) {
	id, err := BufferIDFor(path)
	if err != nil {
		return "", err
	}

	w.mu.RLock()
	_, exists := w.buffers[id]
	w.mu.RUnlock()
	if exists {
		return id, nil
	}

	content, err := os.ReadFile(string(id))
	if err != nil {
		code := errors.CodeInternal
		if os.IsNotExist(err) {
			code = errors.CodeNotFound
		}
		return "", errors.AddContext(errors.Wrap(err, code, "open buffer"), errors.CtxPath, string(id))
	}
	return w.OpenContent(string(id), content)
}

// OpenContent registers an in-memory buffer for path without touching disk.
func (w *Workspace) OpenContent(path string, content []byte) (ports.BufferID, error) {
	id, err := BufferIDFor(path)
	if err != nil {
		return "", err
	}

	w.mu.Lock()
	if _, exists := w.buffers[id]; exists {
		w.mu.Unlock()
		return id, nil
	}
	w.buffers[id] = &document{content: bytes.Clone(content), version: 1}
	w.mu.Unlock()

	slog.Debug("buffer opened", "buffer", id, "bytes", len(content))
	return id, nil
}

// Update replaces a buffer's content and notifies change listeners.
func (w *Workspace) Update(id ports.BufferID, content []byte) error {
	w.mu.Lock()
	doc, ok := w.buffers[id]
	if !ok {
		w.mu.Unlock()
		return errors.AddContext(errors.New(errors.CodeNotFound, "buffer not open"), errors.CtxBuffer, string(id))
	}
	doc.content = bytes.Clone(content)
	doc.version++
	version := doc.version
	w.clampCaretsLocked(id, util.RuneLen(content))
	w.mu.Unlock()

	slog.Debug("buffer updated", "buffer", id, "version", version)
	w.changeListeners.Notify(id)
	return nil
}

// Reload rereads a buffer from disk. Unchanged content is not a change.
func (w *Workspace) Reload(id ports.BufferID) error {
	content, err := os.ReadFile(string(id))
	if err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "reload buffer"), errors.CtxBuffer, string(id))
	}

	w.mu.RLock()
	doc, ok := w.buffers[id]
	same := ok && bytes.Equal(doc.content, content)
	w.mu.RUnlock()
	if !ok {
		return errors.AddContext(errors.New(errors.CodeNotFound, "buffer not open"), errors.CtxBuffer, string(id))
	}
	if same {
		return nil
	}
	return w.Update(id, content)
}

// Close drops a buffer. Editors showing it no longer resolve to a buffer.
func (w *Workspace) Close(id ports.BufferID) {
	w.mu.Lock()
	_, ok := w.buffers[id]
	delete(w.buffers, id)
	w.mu.Unlock()
	if ok {
		w.changeListeners.Notify(id)
	}
}

func (w *Workspace) Snapshot(id ports.BufferID) (ports.Snapshot, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	doc, ok := w.buffers[id]
	if !ok {
		return ports.Snapshot{}, false
	}
	return ports.Snapshot{ID: id, Content: doc.content, Version: doc.version}, true
}

// Buffers returns the open buffer ids in sorted order.
func (w *Workspace) Buffers() []ports.BufferID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ids := make([]ports.BufferID, 0, len(w.buffers))
	for id := range w.buffers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// OpenEditor creates an editor on an open buffer with the caret at 0.
func (w *Workspace) OpenEditor(id ports.BufferID) (*Editor, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.buffers[id]; !ok {
		return nil, errors.AddContext(errors.New(errors.CodeNotFound, "buffer not open"), errors.CtxBuffer, string(id))
	}
	e := newEditor(id)
	w.editors[e.id] = e
	return e, nil
}

// CloseEditor forgets an editor and clears focus if it was selected.
func (w *Workspace) CloseEditor(e *Editor) {
	if e == nil {
		return
	}
	w.mu.Lock()
	delete(w.editors, e.id)
	if w.selected == e {
		w.selected = nil
	}
	w.mu.Unlock()
}

// Select focuses e; nil clears focus.
func (w *Workspace) Select(e *Editor) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e != nil {
		if _, ok := w.editors[e.id]; !ok {
			return errors.New(errors.CodeNotFound, fmt.Sprintf("editor %s not open", e.id))
		}
	}
	w.selected = e
	return nil
}

func (w *Workspace) SelectedEditor() (ports.EditorHandle, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.selected == nil {
		return nil, false
	}
	return w.selected, true
}

// MoveCaret sets the caret, clamped to the buffer, and notifies caret
// listeners on the calling goroutine.
func (w *Workspace) MoveCaret(e *Editor, offset int) error {
	if e == nil {
		return errors.New(errors.CodeValidationError, "editor is required")
	}
	w.mu.RLock()
	doc, ok := w.buffers[e.buffer]
	limit := 0
	if ok {
		limit = util.RuneLen(doc.content)
	}
	w.mu.RUnlock()
	if !ok {
		return errors.AddContext(errors.New(errors.CodeNotFound, "buffer not open"), errors.CtxBuffer, string(e.buffer))
	}

	if offset < 0 {
		offset = 0
	}
	if offset > limit {
		offset = limit
	}
	e.caret.Store(int64(offset))
	w.caretListeners.Notify(e)
	return nil
}

// CurrentBuffer reports the buffer shown by editor while it is open.
func (w *Workspace) CurrentBuffer(editor ports.EditorHandle) (ports.BufferID, bool) {
	e, ok := editor.(*Editor)
	if !ok || e == nil {
		return "", false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if _, open := w.buffers[e.buffer]; !open {
		return "", false
	}
	return e.buffer, true
}

func (w *Workspace) AddCaretListener(fn func(ports.EditorHandle)) ports.Disposable {
	return w.caretListeners.Add(fn)
}

func (w *Workspace) AddChangeListener(fn func(ports.BufferID)) ports.Disposable {
	return w.changeListeners.Add(fn)
}

// ListenerCounts reports live caret and change subscriptions.
func (w *Workspace) ListenerCounts() (caret, change int) {
	return w.caretListeners.Len(), w.changeListeners.Len()
}

func (w *Workspace) clampCaretsLocked(id ports.BufferID, limit int) {
	for _, e := range w.editors {
		if e.buffer == id && int(e.caret.Load()) > limit {
			e.caret.Store(int64(limit))
		}
	}
}
