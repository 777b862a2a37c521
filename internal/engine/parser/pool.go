// # internal/engine/parser/pool.go
package parser

import (
	"sync"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool recycles tree-sitter parser instances so each caret resolution
// does not pay for sitter.NewParser() / parser.Close().
//
// Each pool is tied to a single grammar.
//
//	sp := pool.Get()
//	defer pool.Put(sp)
//	tree := sp.Parse(source, nil)
//
// Concurrency: safe for use by multiple goroutines simultaneously.
type ParserPool struct {
	lang   *sitter.Language
	pool   sync.Pool
	active atomic.Int64
}

// NewParserPool creates a pool for the given grammar. The language must
// remain valid for the lifetime of the pool.
func NewParserPool(lang *sitter.Language) *ParserPool {
	p := &ParserPool{lang: lang}
	p.pool = sync.Pool{
		New: func() any {
			sp := sitter.NewParser()
			_ = sp.SetLanguage(lang)
			return sp
		},
	}
	return p
}

// Get returns a parser configured for the pool's grammar.
func (p *ParserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	// Reset() elsewhere may have cleared the language.
	_ = sp.SetLanguage(p.lang)
	p.active.Add(1)
	return sp
}

// Put resets sp and returns it to the pool. Callers must not use sp after.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	p.active.Add(-1)
	sp.Reset()
	p.pool.Put(sp)
}

// Stats returns the number of parsers currently leased.
func (p *ParserPool) Stats() int {
	return int(p.active.Load())
}
