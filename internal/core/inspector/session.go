package inspector

import (
	"log/slog"
	"sync"
	"typeinspector/internal/core/ports"

	"github.com/google/uuid"
)

// Session is the per-project inspector state: one resolver, one result
// cache, and the subscription that keeps the cache in step with buffer
// edits.
type Session struct {
	id       string
	resolver *Resolver
	cache    *Cache
	opts     Options
	logger   *slog.Logger

	changeSub     ports.Disposable
	invalidations ports.Listeners[ports.BufferID]
	closeOnce     sync.Once
}

// NewSession wires a session. changes may be nil when buffers never change.
func NewSession(syntax ports.SyntaxProvider, backend ports.TypeBackend, changes ports.ChangeSource, opts Options) *Session {
	s := &Session{
		id:       uuid.NewString(),
		resolver: NewResolver(syntax, backend),
		opts:     opts,
	}
	s.logger = slog.Default().With("session", s.id)
	s.cache = NewCache(s.resolver.Resolve, opts.CacheCapacity)
	if changes != nil {
		s.changeSub = changes.AddChangeListener(s.onBufferChanged)
	}
	s.logger.Debug("inspector session opened",
		"cache_capacity", opts.CacheCapacity,
		"invalidate_on_change", opts.InvalidateOnChange)
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Cache() *Cache { return s.cache }

func (s *Session) Resolver() *Resolver { return s.resolver }

func (s *Session) Options() Options { return s.opts }

// AddInvalidationListener is notified after a changed buffer has been
// handled, so listeners re-resolve against fresh content.
func (s *Session) AddInvalidationListener(fn func(ports.BufferID)) ports.Disposable {
	return s.invalidations.Add(fn)
}

func (s *Session) onBufferChanged(id ports.BufferID) {
	if s.opts.InvalidateOnChange {
		dropped := s.cache.InvalidateBuffer(id)
		s.logger.Debug("buffer changed, cache invalidated", "buffer", id, "dropped", dropped)
	}
	s.invalidations.Notify(id)
}

// Close releases the change subscription and drops the cache table.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.changeSub != nil {
			s.changeSub.Dispose()
		}
		s.cache.close()
		s.logger.Debug("inspector session closed")
	})
}
