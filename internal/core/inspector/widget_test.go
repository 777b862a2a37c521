package inspector

import (
	"testing"
	"typeinspector/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const raceSource = "x = 5\ny = 'a'\n"

// Offsets of x and y in raceSource.
const (
	offsetA = 0
	offsetB = 6
)

func TestWidget_Surface(t *testing.T) {
	f := newFixture(t, raceSource, DefaultOptions())
	factory := NewFactory(f.host)
	w := factory.CreateWidget(f.session)

	assert.Equal(t, "TypeInspector", factory.ID())
	assert.Equal(t, "Type Inspector", factory.DisplayName())
	assert.Equal(t, "TypeInspector", w.ID())
	assert.Equal(t, "Type of variable under the caret", w.Tooltip())
	assert.Equal(t, 0.5, w.Alignment())
	assert.Same(t, w, w.Presentation())
	factory.DisposeWidget(w)
	factory.DisposeWidget(nil)
}

func TestWidget_NoEditorShowsUnknown(t *testing.T) {
	f := newFixture(t, raceSource, DefaultOptions())
	w := NewWidget(f.session, f.host)
	w.Install(f.bar)
	f.settle()

	assert.Equal(t, "Unknown", w.Text())
	assert.Equal(t, StateIdle, w.State())
	assert.Equal(t, 0, f.exec.len())
	assert.Equal(t, 0, f.bar.count())
}

func TestWidget_InstallWithSelectedEditor(t *testing.T) {
	f := newFixture(t, raceSource, DefaultOptions())
	require.NoError(t, f.ws.Select(f.editor))

	w := NewWidget(f.session, f.host)
	w.Install(f.bar)
	assert.Equal(t, StateResolving, w.State())
	assert.Equal(t, "Unknown", w.Text(), "text only changes on the UI dispatcher")

	f.exec.runPending()
	assert.Equal(t, "Unknown", w.Text())
	f.ui.drain()

	assert.Equal(t, "Type: int", w.Text())
	assert.Equal(t, StateIdle, w.State())
	assert.Equal(t, []string{"TypeInspector"}, f.bar.updates)
}

func TestWidget_CaretEvents(t *testing.T) {
	f := newFixture(t, raceSource, DefaultOptions())
	w := NewWidget(f.session, f.host)
	w.Install(f.bar)

	require.NoError(t, f.ws.MoveCaret(f.editor, offsetB))
	f.settle()
	assert.Equal(t, "Type: str", w.Text())

	require.NoError(t, f.ws.MoveCaret(f.editor, 4))
	f.settle()
	assert.Equal(t, "No variable found", w.Text())
	assert.Equal(t, 2, f.bar.count())
}

// Resolution for A completes after resolution for B.
func reorderedCompletion(t *testing.T, opts Options) *Widget {
	t.Helper()
	f := newFixture(t, raceSource, opts)
	w := NewWidget(f.session, f.host)
	w.Install(f.bar)

	require.NoError(t, f.ws.MoveCaret(f.editor, offsetA))
	require.NoError(t, f.ws.MoveCaret(f.editor, offsetB))
	require.Equal(t, 2, f.exec.len())

	f.exec.run(1)
	f.exec.run(0)
	f.ui.drain()
	assert.Equal(t, StateIdle, w.State())

	// Both resolutions ran to completion and filled the cache.
	assert.Equal(t, 2, f.session.Cache().Len())
	return w
}

func TestWidget_SupersededResultDiscarded(t *testing.T) {
	w := reorderedCompletion(t, DefaultOptions())
	assert.Equal(t, "Type: str", w.Text(), "latest caret position wins")
}

func TestWidget_LastCompletionWinsWhenNotDiscarding(t *testing.T) {
	opts := DefaultOptions()
	opts.DiscardSuperseded = false
	w := reorderedCompletion(t, opts)
	assert.Equal(t, "Type: int", w.Text(), "last completion wins")
}

type unknownEditor struct{}

func (unknownEditor) ID() string       { return "detached" }
func (unknownEditor) CaretOffset() int { return 0 }

func TestWidget_EditorWithoutBuffer(t *testing.T) {
	f := newFixture(t, raceSource, DefaultOptions())
	carets := caretSource{&ports.Listeners[ports.EditorHandle]{}}
	f.host.Carets = carets

	w := NewWidget(f.session, f.host)
	w.Install(f.bar)
	carets.Notify(unknownEditor{})
	f.settle()

	assert.Equal(t, "No file found", w.Text())
	assert.Equal(t, 0, f.session.Cache().Len())
}

type caretSource struct{ *ports.Listeners[ports.EditorHandle] }

func (c caretSource) AddCaretListener(fn func(ports.EditorHandle)) ports.Disposable {
	return c.Add(fn)
}

func TestWidget_DisposeStopsUpdates(t *testing.T) {
	f := newFixture(t, raceSource, DefaultOptions())
	w := NewWidget(f.session, f.host)
	w.Install(f.bar)
	caret, _ := f.ws.ListenerCounts()
	assert.Equal(t, 1, caret)

	require.NoError(t, f.ws.MoveCaret(f.editor, offsetA))
	w.Dispose()
	w.Dispose()
	f.settle()

	caret, _ = f.ws.ListenerCounts()
	assert.Equal(t, 0, caret)
	assert.Equal(t, "Unknown", w.Text())
	assert.Equal(t, 0, f.bar.count())

	require.NoError(t, f.ws.MoveCaret(f.editor, offsetB))
	assert.Equal(t, 1, f.exec.len(), "no work after dispose")

	w.Install(f.bar)
	caret, _ = f.ws.ListenerCounts()
	assert.Equal(t, 0, caret, "a disposed widget cannot be reinstalled")
}

func TestWidget_RefreshAfterEdit(t *testing.T) {
	f := newFixture(t, raceSource, DefaultOptions())
	require.NoError(t, f.ws.Select(f.editor))
	w := NewWidget(f.session, f.host)
	w.Install(f.bar)
	f.settle()
	require.Equal(t, "Type: int", w.Text())

	require.NoError(t, f.ws.Update(f.buffer, []byte("x = 'changed'\n")))
	f.settle()
	assert.Equal(t, "Type: str", w.Text())
}

func TestWidget_NoInvalidationKeepsStaleResult(t *testing.T) {
	opts := DefaultOptions()
	opts.InvalidateOnChange = false
	f := newFixture(t, raceSource, opts)
	require.NoError(t, f.ws.Select(f.editor))
	w := NewWidget(f.session, f.host)
	w.Install(f.bar)
	f.settle()

	require.NoError(t, f.ws.Update(f.buffer, []byte("x = 'changed'\n")))
	f.settle()
	assert.Equal(t, "Type: int", w.Text())
}
