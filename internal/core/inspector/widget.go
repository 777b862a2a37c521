package inspector

import (
	"context"
	"log/slog"
	"sync"
	"typeinspector/internal/core/ports"
	"typeinspector/internal/shared/observability"
	"typeinspector/internal/shared/util"
)

const (
	WidgetID       = "TypeInspector"
	WidgetTooltip  = "Type of variable under the caret"
	InitialText    = "Unknown"
	CenterAligned  = 0.5
	publishOK      = "published"
	publishStale   = "superseded"
	publishDropped = "disposed"
)

type State int

const (
	StateIdle State = iota
	StateResolving
)

func (s State) String() string {
	if s == StateResolving {
		return "resolving"
	}
	return "idle"
}

// Host bundles the editor-side collaborators a widget talks to.
type Host struct {
	Buffers    ports.BufferProvider
	Editors    ports.EditorSelector
	Carets     ports.CaretSource
	Executor   ports.Executor
	Dispatcher ports.UIDispatcher
}

// Widget is the status-bar text showing the type under the caret.
//
// Caret events arrive on the UI thread. Resolution runs on the executor and
// the result is handed back through the dispatcher, which is the only place
// the text is written.
type Widget struct {
	session *Session
	host    Host
	limiter *util.Limiter
	discard bool

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	text      string
	bar       ports.StatusBar
	subs      []ports.Disposable
	installed bool
	disposed  bool
	nextSeq   uint64
	published uint64
	pending   int
}

func NewWidget(session *Session, host Host) *Widget {
	opts := session.Options()
	ctx, cancel := context.WithCancel(context.Background())
	return &Widget{
		session: session,
		host:    host,
		limiter: util.NewLimiter(opts.MaxResolutionsPerSecond, opts.ResolutionBurst),
		discard: opts.DiscardSuperseded,
		ctx:     ctx,
		cancel:  cancel,
		text:    InitialText,
	}
}

func (w *Widget) ID() string { return WidgetID }

func (w *Widget) Text() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.text
}

func (w *Widget) Tooltip() string { return WidgetTooltip }

func (w *Widget) Alignment() float64 { return CenterAligned }

// Presentation returns the text presentation, which is the widget itself.
func (w *Widget) Presentation() *Widget { return w }

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending > 0 {
		return StateResolving
	}
	return StateIdle
}

// Install attaches the widget to bar, resolves for the selected editor, and
// starts following the caret. Call on the UI thread.
func (w *Widget) Install(bar ports.StatusBar) {
	w.mu.Lock()
	if w.disposed || w.installed {
		w.mu.Unlock()
		return
	}
	w.installed = true
	w.bar = bar
	w.mu.Unlock()

	if editor, ok := w.host.Editors.SelectedEditor(); ok {
		w.trigger(editor)
	}
	subs := []ports.Disposable{
		w.host.Carets.AddCaretListener(w.onCaret),
		w.session.AddInvalidationListener(w.onInvalidated),
	}

	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		for _, sub := range subs {
			sub.Dispose()
		}
		return
	}
	w.subs = append(w.subs, subs...)
	w.mu.Unlock()
}

// Refresh re-resolves for the selected editor. Call on the UI thread.
func (w *Widget) Refresh() {
	if editor, ok := w.host.Editors.SelectedEditor(); ok {
		w.trigger(editor)
	}
}

func (w *Widget) onCaret(editor ports.EditorHandle) {
	observability.CaretEventsTotal.Inc()
	w.trigger(editor)
}

func (w *Widget) onInvalidated(id ports.BufferID) {
	w.host.Dispatcher.InvokeLater(func() {
		editor, ok := w.host.Editors.SelectedEditor()
		if !ok {
			return
		}
		if buffer, ok := w.host.Buffers.CurrentBuffer(editor); ok && buffer == id {
			w.trigger(editor)
		}
	})
}

// trigger captures the caret position now and resolves it in the background.
func (w *Widget) trigger(editor ports.EditorHandle) {
	buffer, hasBuffer := w.host.Buffers.CurrentBuffer(editor)
	offset := editor.CaretOffset()

	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return
	}
	w.nextSeq++
	seq := w.nextSeq
	w.pending++
	w.mu.Unlock()
	observability.InFlightResolutions.Inc()

	w.host.Executor.Submit(func() {
		result := ResultNoFileFound
		if hasBuffer {
			// Throttling only delays; a cancelled wait still resolves.
			_ = w.limiter.Wait(w.ctx, 1)
			result = w.session.Cache().GetOrCompute(w.ctx, BufferPositionKey{Buffer: buffer, Offset: offset})
		}
		w.host.Dispatcher.InvokeLater(func() {
			w.publish(seq, result)
		})
	})
}

func (w *Widget) publish(seq uint64, result TypeQueryResult) {
	observability.InFlightResolutions.Dec()

	w.mu.Lock()
	w.pending--
	switch {
	case w.disposed:
		w.mu.Unlock()
		observability.PublishTotal.WithLabelValues(publishDropped).Inc()
		return
	case w.discard && seq < w.published:
		w.mu.Unlock()
		observability.PublishTotal.WithLabelValues(publishStale).Inc()
		slog.Debug("dropping superseded result", "seq", seq, "published", w.published)
		return
	}
	if seq > w.published {
		w.published = seq
	}
	w.text = string(result)
	bar := w.bar
	w.mu.Unlock()

	observability.PublishTotal.WithLabelValues(publishOK).Inc()
	if bar != nil {
		bar.UpdateWidget(w.ID())
	}
}

// Dispose releases every subscription. Results arriving afterwards are
// ignored.
func (w *Widget) Dispose() {
	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return
	}
	w.disposed = true
	subs := w.subs
	w.subs = nil
	w.bar = nil
	w.mu.Unlock()

	w.cancel()
	for _, sub := range subs {
		sub.Dispose()
	}
}
