package parser

import (
	"log/slog"
	"sync"
	"time"
	"typeinspector/internal/core/errors"
	"typeinspector/internal/core/ports"
	"typeinspector/internal/shared/observability"
	"typeinspector/internal/shared/util"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Provider parses workspace buffers with tree-sitter and implements
// ports.SyntaxProvider.
type Provider struct {
	buffers ports.BufferProvider
	loader  *GrammarLoader

	mu    sync.Mutex
	pools map[string]*ParserPool
}

func NewProvider(buffers ports.BufferProvider, loader *GrammarLoader) *Provider {
	return &Provider{
		buffers: buffers,
		loader:  loader,
		pools:   make(map[string]*ParserPool),
	}
}

// SyntaxTreeOf parses the current snapshot of id. The caller owns the
// returned root and must Close it.
func (p *Provider) SyntaxTreeOf(id ports.BufferID) (ports.SyntaxRoot, bool) {
	root, err := p.Parse(id)
	if err != nil {
		slog.Debug("syntax tree unavailable", "buffer", id, "error", err)
		return nil, false
	}
	return root, true
}

// Parse is SyntaxTreeOf with the failure reason.
func (p *Provider) Parse(id ports.BufferID) (*Root, error) {
	snap, ok := p.buffers.Snapshot(id)
	if !ok {
		return nil, errors.AddContext(errors.New(errors.CodeNotFound, "buffer not open"), errors.CtxBuffer, string(id))
	}
	lang := p.loader.LanguageForPath(string(id))
	if lang == "" {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxBuffer, string(id))
	}
	return p.parseSnapshot(lang, snap)
}

func (p *Provider) parseSnapshot(lang string, snap ports.Snapshot) (*Root, error) {
	pool, err := p.poolFor(lang)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	sp := pool.Get()
	tree := sp.Parse(snap.Content, nil)
	pool.Put(sp)
	observability.ParsingDuration.Observe(time.Since(start).Seconds())

	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "parse failed"), errors.CtxBuffer, string(snap.ID))
	}
	return &Root{
		snapshot: snap,
		tree:     tree,
		runeLen:  util.RuneLen(snap.Content),
	}, nil
}

func (p *Provider) poolFor(lang string) (*ParserPool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pool, ok := p.pools[lang]; ok {
		return pool, nil
	}
	grammar, ok := p.loader.Language(lang)
	if !ok {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "grammar not loaded"), errors.CtxLanguage, lang)
	}
	pool := NewParserPool(grammar)
	p.pools[lang] = pool
	return pool, nil
}

// NearestEnclosing walks from node to the closest ancestor-or-self of kind.
func (p *Provider) NearestEnclosing(node ports.SyntaxNode, kind ports.NodeKind) (ports.SyntaxNode, bool) {
	n, ok := node.(*Node)
	if !ok || n == nil || kind != ports.KindVariableBinding {
		return nil, false
	}
	for cur := n.raw; cur != nil; cur = cur.Parent() {
		if IsBindingTarget(cur) {
			return n.root.wrap(cur), true
		}
	}
	return nil, false
}

// Root is a parsed buffer snapshot.
type Root struct {
	snapshot ports.Snapshot
	tree     *sitter.Tree
	runeLen  int
	once     sync.Once
}

func (r *Root) Buffer() ports.Snapshot { return r.snapshot }

func (r *Root) Source() []byte { return r.snapshot.Content }

// Node returns the module node.
func (r *Root) Node() *Node { return r.wrap(r.tree.RootNode()) }

// ElementAt returns the smallest node covering the character at offset.
func (r *Root) ElementAt(offset int) (ports.SyntaxNode, bool) {
	n, ok := r.LeafAt(offset)
	if !ok {
		return nil, false
	}
	return n, true
}

// LeafAt is ElementAt returning the concrete node type.
func (r *Root) LeafAt(offset int) (*Node, bool) {
	if offset < 0 || offset >= r.runeLen {
		return nil, false
	}
	b, ok := util.RuneOffsetToByte(r.snapshot.Content, offset)
	if !ok {
		return nil, false
	}
	target := uint(b)

	cur := r.tree.RootNode()
	for {
		next := childCovering(cur, target)
		if next == nil {
			break
		}
		cur = next
	}
	return r.wrap(cur), true
}

func (r *Root) Close() {
	r.once.Do(func() {
		r.tree.Close()
	})
}

func (r *Root) wrap(n *sitter.Node) *Node {
	if n == nil {
		return nil
	}
	return &Node{raw: n, root: r}
}

func childCovering(n *sitter.Node, b uint) *sitter.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if child.StartByte() <= b && b < child.EndByte() {
			return child
		}
	}
	return nil
}

// Node is a tree-sitter node bound to the root it came from.
type Node struct {
	raw  *sitter.Node
	root *Root
}

func (n *Node) Kind() string { return n.raw.Kind() }

func (n *Node) Text() string { return Text(n.raw, n.root.Source()) }

func (n *Node) StartOffset() int {
	return util.ByteOffsetToRune(n.root.Source(), int(n.raw.StartByte()))
}

func (n *Node) EndOffset() int {
	return util.ByteOffsetToRune(n.root.Source(), int(n.raw.EndByte()))
}

// Raw exposes the underlying tree-sitter node; valid until the root closes.
func (n *Node) Raw() *sitter.Node { return n.raw }

func (n *Node) Root() *Root { return n.root }

func (n *Node) Parent() (*Node, bool) {
	p := n.raw.Parent()
	if p == nil {
		return nil, false
	}
	return n.root.wrap(p), true
}

// Text returns the source bytes spanned by node.
func Text(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > end || end > uint(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// SameNode compares nodes by kind and span; tree-sitter hands out fresh
// node values on every navigation call.
func SameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Kind() == b.Kind() && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}
