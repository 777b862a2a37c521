package tui

import (
	"sync"
	"sync/atomic"
	"typeinspector/internal/core/dispatch"

	tea "github.com/charmbracelet/bubbletea"
)

// invokeMsg carries a closure onto the bubbletea event loop.
type invokeMsg struct {
	fn func()
}

// installMsg asks the model to install its widget from the event loop.
type installMsg struct{}

// Dispatcher runs closures on the bubbletea event loop, which is the UI
// thread of the terminal host. A serial queue forwards them so InvokeLater
// never blocks, even when called from inside Update.
type Dispatcher struct {
	queue *dispatch.Serial

	mu   sync.RWMutex
	send func(tea.Msg)
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{queue: dispatch.NewSerial()}
}

// Attach routes closures into p. Closures queued before Attach are dropped.
func (d *Dispatcher) Attach(p *tea.Program) {
	d.mu.Lock()
	d.send = p.Send
	d.mu.Unlock()
}

func (d *Dispatcher) InvokeLater(fn func()) {
	if fn == nil {
		return
	}
	d.queue.InvokeLater(func() {
		d.mu.RLock()
		send := d.send
		d.mu.RUnlock()
		if send != nil {
			send(invokeMsg{fn: fn})
		}
	})
}

// Close drops closures the program can no longer receive and stops the queue.
func (d *Dispatcher) Close() {
	d.queue.Close()
}

// StatusBar records repaint requests. bubbletea redraws after every message,
// so a request needs no further action.
type StatusBar struct {
	repaints atomic.Int64
}

func (b *StatusBar) UpdateWidget(id string) {
	b.repaints.Add(1)
}

func (b *StatusBar) Repaints() int64 {
	return b.repaints.Load()
}
