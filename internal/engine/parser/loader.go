// # internal/engine/parser/loader.go
package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"typeinspector/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

const LanguagePython = "python"

// GrammarLoader holds the compiled grammars and the extension routing table.
type GrammarLoader struct {
	languages  map[string]*sitter.Language
	extensions map[string]string
}

// NewGrammarLoader loads the Python grammar. Extra extensions (".pyw") can be
// routed to it; each must start with a dot.
func NewGrammarLoader(extraExtensions ...string) (*GrammarLoader, error) {
	gl := &GrammarLoader{
		languages: map[string]*sitter.Language{
			LanguagePython: sitter.NewLanguage(tree_sitter_python.Language()),
		},
		extensions: map[string]string{
			".py":  LanguagePython,
			".pyi": LanguagePython,
		},
	}
	for _, ext := range extraExtensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(normalized, ".") || len(normalized) < 2 {
			return nil, errors.New(errors.CodeValidationError, fmt.Sprintf("invalid extension %q", ext))
		}
		gl.extensions[normalized] = LanguagePython
	}
	return gl, nil
}

// Language returns the grammar registered for lang.
func (gl *GrammarLoader) Language(lang string) (*sitter.Language, bool) {
	l, ok := gl.languages[lang]
	return l, ok
}

// LanguageForPath routes a path by extension; "" means unsupported.
func (gl *GrammarLoader) LanguageForPath(path string) string {
	return gl.extensions[strings.ToLower(filepath.Ext(path))]
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	extensions := make([]string, 0, len(gl.extensions))
	for ext := range gl.extensions {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}
