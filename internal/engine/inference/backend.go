// Package inference is a bounded, heuristic Python type evaluator. It sees a
// single buffer and understands literals, operators, builtins, and the
// classes and functions defined in that buffer.
package inference

import (
	"sync"
	"typeinspector/internal/core/errors"
	"typeinspector/internal/core/ports"
	"typeinspector/internal/engine/parser"
)

const DefaultMaxDepth = 16

// Backend hands out read-only analysis sessions. Sessions share the backend
// read lock; Close waits for them to be released.
type Backend struct {
	mu       sync.RWMutex
	closed   bool
	maxDepth int
}

func NewBackend(maxDepth int) *Backend {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Backend{maxDepth: maxDepth}
}

// BeginRead enters a read-only session.
func (b *Backend) BeginRead() (ports.AnalysisSession, error) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return nil, errors.New(errors.CodeClosed, "type backend closed")
	}
	return &session{backend: b}, nil
}

// Close blocks until every session is released, then rejects new ones.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

type session struct {
	backend *Backend
	once    sync.Once
}

func (s *session) Release() {
	s.once.Do(s.backend.mu.RUnlock)
}

// InferType evaluates the type bound by binding. Nodes must come from the
// tree-sitter syntax provider.
func (s *session) InferType(binding ports.SyntaxNode, root ports.SyntaxRoot) (ports.TypeDescriptor, bool, error) {
	node, ok := binding.(*parser.Node)
	if !ok || node == nil {
		return nil, false, errors.AddContext(
			errors.New(errors.CodeNotSupported, "binding is not a tree-sitter node"),
			errors.CtxOperation, "infer")
	}
	if r, ok := root.(*parser.Root); ok && r != node.Root() {
		return nil, false, errors.AddContext(
			errors.New(errors.CodeValidationError, "binding belongs to a different tree"),
			errors.CtxOperation, "infer")
	}

	ev := newEvaluator(node.Root().Source(), node.Root().Node().Raw(), s.backend.maxDepth)
	t := ev.binding(node.Raw())
	if t == nil {
		return nil, false, nil
	}
	return t, true, nil
}
