package ports

import "sync"

// Listeners is a copy-on-notify registry of callbacks. The zero value is
// ready to use.
type Listeners[T any] struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(T)
}

// Add registers fn; disposing the result unregisters it.
func (s *Listeners[T]) Add(fn func(T)) Disposable {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func(T))
	}
	id := s.nextID
	s.nextID++
	s.fns[id] = fn

	var once sync.Once
	return DisposeFunc(func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.fns, id)
			s.mu.Unlock()
		})
	})
}

// Notify calls every listener in registration order, outside the lock.
func (s *Listeners[T]) Notify(value T) {
	s.mu.Lock()
	fns := make([]func(T), 0, len(s.fns))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.fns[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

func (s *Listeners[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fns)
}
