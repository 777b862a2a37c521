package dispatch

import (
	"sync"
)

// Serial is a single-goroutine dispatcher. Closures run one at a time in
// submission order, which makes it a stand-in for a UI thread.
type Serial struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

func NewSerial() *Serial {
	s := &Serial{done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	go s.loop()
	return s
}

// InvokeLater queues fn. Calls after Close are ignored.
func (s *Serial) InvokeLater(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue = append(s.queue, fn)
	s.cond.Signal()
}

// Flush blocks until every closure queued before the call has run.
func (s *Serial) Flush() {
	ch := make(chan struct{})
	s.InvokeLater(func() { close(ch) })
	select {
	case <-ch:
	case <-s.done:
	}
}

// Close runs the remaining queue and stops the loop.
func (s *Serial) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	s.cond.Signal()
	s.mu.Unlock()
	<-s.done
}

func (s *Serial) loop() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 && s.closed {
			s.mu.Unlock()
			return
		}
		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		runGuarded("serial", fn)
	}
}
