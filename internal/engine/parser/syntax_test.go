package parser

import (
	"strings"
	"testing"
	"typeinspector/internal/core/ports"
	"typeinspector/internal/core/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, path, src string) (*Provider, ports.BufferID) {
	t.Helper()
	ws := workspace.New()
	id, err := ws.OpenContent(path, []byte(src))
	require.NoError(t, err)
	gl, err := NewGrammarLoader()
	require.NoError(t, err)
	return NewProvider(ws, gl), id
}

// bindingAt resolves the binding enclosing the first occurrence of needle
// plus delta characters.
func bindingAt(t *testing.T, p *Provider, id ports.BufferID, src, needle string, delta int) (ports.SyntaxNode, bool) {
	t.Helper()
	root, ok := p.SyntaxTreeOf(id)
	require.True(t, ok)
	t.Cleanup(root.Close)

	idx := strings.Index(src, needle)
	require.GreaterOrEqual(t, idx, 0, "needle %q", needle)
	leaf, ok := root.ElementAt(idx + delta)
	require.True(t, ok)
	return p.NearestEnclosing(leaf, ports.KindVariableBinding)
}

func TestProvider_UnsupportedAndMissing(t *testing.T) {
	p, id := newTestProvider(t, "/tmp/notes.txt", "x = 1\n")
	_, ok := p.SyntaxTreeOf(id)
	assert.False(t, ok)

	_, ok = p.SyntaxTreeOf(ports.BufferID("/tmp/never-opened.py"))
	assert.False(t, ok)
}

func TestRoot_ElementAtBounds(t *testing.T) {
	src := "x = 5\n"
	p, id := newTestProvider(t, "/tmp/a.py", src)
	root, ok := p.SyntaxTreeOf(id)
	require.True(t, ok)
	defer root.Close()

	_, ok = root.ElementAt(-1)
	assert.False(t, ok)
	_, ok = root.ElementAt(len(src))
	assert.False(t, ok)

	leaf, ok := root.ElementAt(0)
	require.True(t, ok)
	assert.Equal(t, "identifier", leaf.Kind())
	assert.Equal(t, "x", leaf.Text())
	assert.Equal(t, 0, leaf.StartOffset())
	assert.Equal(t, 1, leaf.EndOffset())

	leaf, ok = root.ElementAt(4)
	require.True(t, ok)
	assert.Equal(t, "integer", leaf.Kind())
}

func TestRoot_ElementAtUsesCharacterOffsets(t *testing.T) {
	src := "s = \"héllo\"\nn = 1\n"
	p, id := newTestProvider(t, "/tmp/u.py", src)
	root, ok := p.SyntaxTreeOf(id)
	require.True(t, ok)
	defer root.Close()

	// "n" is character 12 even though it is byte 13.
	leaf, ok := root.ElementAt(12)
	require.True(t, ok)
	assert.Equal(t, "n", leaf.Text())
	assert.Equal(t, 12, leaf.StartOffset())
}

func TestProvider_NearestEnclosingBindings(t *testing.T) {
	src := strings.Join([]string{
		"x = 5",
		"a, b = 1, 2",
		"count += 1",
		"for item in [1, 2]:",
		"    pass",
		"if (n := 10) > 5:",
		"    pass",
		"with open('f') as fh:",
		"    pass",
		"self.total = 3",
		"squares = [v * v for v in range(3)]",
		"hint: int = 4",
		"",
	}, "\n")
	p, id := newTestProvider(t, "/tmp/b.py", src)

	cases := []struct {
		needle string
		delta  int
		want   string
	}{
		{"x = 5", 0, "x"},
		{"a, b", 3, "b"},
		{"count", 2, "count"},
		{"item", 1, "item"},
		{"n :=", 0, "n"},
		{"fh", 0, "fh"},
		{"total", 1, "self.total"},
		{"self", 1, "self.total"},
		{"v in", 0, "v"},
		{"hint", 0, "hint"},
	}
	for _, tc := range cases {
		t.Run(tc.needle, func(t *testing.T) {
			node, ok := bindingAt(t, p, id, src, tc.needle, tc.delta)
			require.True(t, ok)
			assert.Equal(t, tc.want, node.Text())
		})
	}
}

func TestProvider_NearestEnclosingNonBindings(t *testing.T) {
	src := "x = 5\nprint(x)\ndef f(p):\n    return p\n"
	p, id := newTestProvider(t, "/tmp/c.py", src)

	for _, needle := range []string{"5", "print", "(x)", "return", "def"} {
		t.Run(needle, func(t *testing.T) {
			delta := 0
			if needle == "(x)" {
				delta = 1
			}
			_, ok := bindingAt(t, p, id, src, needle, delta)
			assert.False(t, ok)
		})
	}
}

func TestRoot_CloseIsIdempotent(t *testing.T) {
	p, id := newTestProvider(t, "/tmp/d.py", "x = 1\n")
	root, err := p.Parse(id)
	require.NoError(t, err)
	root.Close()
	root.Close()
}
