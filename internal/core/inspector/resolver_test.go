package inspector

import (
	"context"
	"errors"
	"testing"
	"typeinspector/internal/core/ports"

	"github.com/stretchr/testify/assert"
)

func TestResolver_RealStack(t *testing.T) {
	src := "x = 5\nprint(x)\nz = helper()\n"
	f := newFixture(t, src, DefaultOptions())
	r := f.session.Resolver()
	ctx := context.Background()

	assert.Equal(t, TypeQueryResult("Type: int"), r.Resolve(ctx, f.buffer, 0))
	assert.Equal(t, ResultNoVariableFound, r.Resolve(ctx, f.buffer, 8), "inside print(x)")
	assert.Equal(t, ResultNoVariableFound, r.Resolve(ctx, f.buffer, len(src)), "past the end")
	assert.Equal(t, ResultNoVariableFound, r.Resolve(ctx, f.buffer, -1))
	assert.Equal(t, ResultNoTypeRecognized, r.Resolve(ctx, f.buffer, 15), "unresolvable call")
	assert.Equal(t, ResultNoFileFound, r.Resolve(ctx, ports.BufferID("/tmp/unknown.py"), 0))
}

type stubNode struct{ kind string }

func (n stubNode) Kind() string     { return n.kind }
func (n stubNode) Text() string     { return "x" }
func (n stubNode) StartOffset() int { return 0 }
func (n stubNode) EndOffset() int   { return 1 }

type stubRoot struct {
	hasLeaf bool
	closed  int
}

func (r *stubRoot) Buffer() ports.Snapshot { return ports.Snapshot{} }

func (r *stubRoot) ElementAt(offset int) (ports.SyntaxNode, bool) {
	if !r.hasLeaf {
		return nil, false
	}
	return stubNode{kind: "identifier"}, true
}

func (r *stubRoot) Close() { r.closed++ }

type stubSyntax struct {
	root       *stubRoot
	hasBinding bool
}

func (s *stubSyntax) SyntaxTreeOf(ports.BufferID) (ports.SyntaxRoot, bool) {
	if s.root == nil {
		return nil, false
	}
	return s.root, true
}

func (s *stubSyntax) NearestEnclosing(ports.SyntaxNode, ports.NodeKind) (ports.SyntaxNode, bool) {
	if !s.hasBinding {
		return nil, false
	}
	return stubNode{kind: "assignment"}, true
}

type stubType string

func (s stubType) DisplayName() string { return string(s) }

type stubBackend struct {
	beginErr error
	inferErr error
	panicMsg string
	result   ports.TypeDescriptor
	begun    int
	released int
}

func (b *stubBackend) BeginRead() (ports.AnalysisSession, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	b.begun++
	return &stubSession{b: b}, nil
}

type stubSession struct{ b *stubBackend }

func (s *stubSession) InferType(ports.SyntaxNode, ports.SyntaxRoot) (ports.TypeDescriptor, bool, error) {
	if s.b.panicMsg != "" {
		panic(s.b.panicMsg)
	}
	if s.b.inferErr != nil {
		return nil, false, s.b.inferErr
	}
	return s.b.result, s.b.result != nil, nil
}

func (s *stubSession) Release() { s.b.released++ }

func TestResolver_Outcomes(t *testing.T) {
	ctx := context.Background()
	buf := ports.BufferID("/tmp/a.py")

	cases := []struct {
		name    string
		syntax  *stubSyntax
		backend *stubBackend
		want    TypeQueryResult
	}{
		{"NoTree", &stubSyntax{}, &stubBackend{}, ResultNoFileFound},
		{"NoLeaf", &stubSyntax{root: &stubRoot{}}, &stubBackend{}, ResultNoVariableFound},
		{"NoBinding", &stubSyntax{root: &stubRoot{hasLeaf: true}}, &stubBackend{}, ResultNoVariableFound},
		{"NoType", &stubSyntax{root: &stubRoot{hasLeaf: true}, hasBinding: true}, &stubBackend{}, ResultNoTypeRecognized},
		{"Type", &stubSyntax{root: &stubRoot{hasLeaf: true}, hasBinding: true}, &stubBackend{result: stubType("Foo")}, "Type: Foo"},
		{"BeginFails", &stubSyntax{root: &stubRoot{hasLeaf: true}, hasBinding: true}, &stubBackend{beginErr: errors.New("busy")}, ResultNoTypeRecognized},
		{"InferFails", &stubSyntax{root: &stubRoot{hasLeaf: true}, hasBinding: true}, &stubBackend{inferErr: errors.New("boom")}, ResultNoTypeRecognized},
		{"InferPanics", &stubSyntax{root: &stubRoot{hasLeaf: true}, hasBinding: true}, &stubBackend{panicMsg: "kaboom"}, ResultNoTypeRecognized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(tc.syntax, tc.backend)
			assert.NotPanics(t, func() {
				assert.Equal(t, tc.want, r.Resolve(ctx, buf, 0))
			})
			assert.Equal(t, tc.backend.begun, tc.backend.released, "every session released")
			if tc.syntax.root != nil {
				assert.Equal(t, 1, tc.syntax.root.closed, "root closed")
			}
		})
	}
}
