package inspector

import (
	"sync"
	"testing"
	"typeinspector/internal/core/ports"
	"typeinspector/internal/core/workspace"
	"typeinspector/internal/engine/inference"
	"typeinspector/internal/engine/parser"

	"github.com/stretchr/testify/require"
)

// manualExecutor holds submitted tasks until the test runs them.
type manualExecutor struct {
	mu    sync.Mutex
	tasks []func()
	next  int
}

func (m *manualExecutor) Submit(task func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
}

func (m *manualExecutor) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// run executes the i-th submitted task.
func (m *manualExecutor) run(i int) {
	m.mu.Lock()
	task := m.tasks[i]
	m.mu.Unlock()
	task()
}

// runPending executes, in order, every task not yet run by runPending.
func (m *manualExecutor) runPending() int {
	ran := 0
	for {
		m.mu.Lock()
		if m.next >= len(m.tasks) {
			m.mu.Unlock()
			return ran
		}
		task := m.tasks[m.next]
		m.next++
		m.mu.Unlock()
		task()
		ran++
	}
}

// queueDispatcher runs closures when the test drains it, standing in for the
// UI thread.
type queueDispatcher struct {
	mu    sync.Mutex
	queue []func()
}

func (q *queueDispatcher) InvokeLater(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue = append(q.queue, fn)
}

func (q *queueDispatcher) drain() {
	for {
		q.mu.Lock()
		if len(q.queue) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.queue[0]
		q.queue = q.queue[1:]
		q.mu.Unlock()
		fn()
	}
}

type recordingBar struct {
	mu      sync.Mutex
	updates []string
}

func (b *recordingBar) UpdateWidget(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, id)
}

func (b *recordingBar) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.updates)
}

// fixture is a full stack over a real workspace, parser, and backend.
type fixture struct {
	ws      *workspace.Workspace
	syntax  *parser.Provider
	backend *inference.Backend
	exec    *manualExecutor
	ui      *queueDispatcher
	bar     *recordingBar
	buffer  ports.BufferID
	editor  *workspace.Editor
	session *Session
	host    Host
}

func newFixture(t *testing.T, src string, opts Options) *fixture {
	t.Helper()
	ws := workspace.New()
	id, err := ws.OpenContent("/tmp/inspect.py", []byte(src))
	require.NoError(t, err)
	editor, err := ws.OpenEditor(id)
	require.NoError(t, err)
	gl, err := parser.NewGrammarLoader()
	require.NoError(t, err)

	f := &fixture{
		ws:      ws,
		syntax:  parser.NewProvider(ws, gl),
		backend: inference.NewBackend(0),
		exec:    &manualExecutor{},
		ui:      &queueDispatcher{},
		bar:     &recordingBar{},
		buffer:  id,
		editor:  editor,
	}
	f.session = NewSession(f.syntax, f.backend, ws, opts)
	f.host = Host{
		Buffers:    ws,
		Editors:    ws,
		Carets:     ws,
		Executor:   f.exec,
		Dispatcher: f.ui,
	}
	t.Cleanup(f.session.Close)
	return f
}

// settle runs every pending task and UI closure until both are empty.
func (f *fixture) settle() {
	for {
		f.ui.drain()
		if f.exec.runPending() == 0 {
			return
		}
	}
}
