package inference

import (
	"strings"
	"unicode"
)

// Type is an inferred Python type. A Type with Members is a union; otherwise
// it is Name optionally parameterized by Args.
type Type struct {
	Name    string
	Args    []*Type
	Members []*Type
}

func Named(name string, args ...*Type) *Type {
	return &Type{Name: name, Args: args}
}

var (
	tAny      = Named("Any")
	tNone     = Named("None")
	tInt      = Named("int")
	tFloat    = Named("float")
	tComplex  = Named("complex")
	tBool     = Named("bool")
	tStr      = Named("str")
	tBytes    = Named("bytes")
	tEllipsis = Named("...")
)

// DisplayName renders the type the way Python annotations spell it.
func (t *Type) DisplayName() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	t.render(&b)
	return b.String()
}

func (t *Type) String() string { return t.DisplayName() }

func (t *Type) render(b *strings.Builder) {
	if len(t.Members) > 0 {
		for i, m := range t.Members {
			if i > 0 {
				b.WriteString(" | ")
			}
			m.render(b)
		}
		return
	}
	b.WriteString(t.Name)
	if len(t.Args) == 0 {
		return
	}
	b.WriteByte('[')
	for i, a := range t.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		a.render(b)
	}
	b.WriteByte(']')
}

// Is reports whether t is the plain or parameterized type name.
func (t *Type) Is(name string) bool {
	return t != nil && len(t.Members) == 0 && t.Name == name
}

func (t *Type) arg(i int) *Type {
	if t == nil || i >= len(t.Args) {
		return nil
	}
	return t.Args[i]
}

func (t *Type) isUnion() bool { return t != nil && len(t.Members) > 0 }

// Union joins types into a flattened, de-duplicated union. nil members are
// skipped; a single distinct member is returned as is.
func Union(types ...*Type) *Type {
	var members []*Type
	seen := make(map[string]bool)
	var add func(t *Type)
	add = func(t *Type) {
		if t == nil {
			return
		}
		if t.isUnion() {
			for _, m := range t.Members {
				add(m)
			}
			return
		}
		key := t.DisplayName()
		if seen[key] {
			return
		}
		seen[key] = true
		members = append(members, t)
	}
	for _, t := range types {
		add(t)
	}
	switch len(members) {
	case 0:
		return nil
	case 1:
		return members[0]
	}
	return &Type{Members: members}
}

var typingAliases = map[string]string{
	"List":        "list",
	"Dict":        "dict",
	"Set":         "set",
	"FrozenSet":   "frozenset",
	"Tuple":       "tuple",
	"Type":        "type",
	"Text":        "str",
	"DefaultDict": "defaultdict",
	"Deque":       "deque",
}

// ParseAnnotation converts annotation source text into a Type. Text it cannot
// parse is kept verbatim as the type name.
func ParseAnnotation(text string) *Type {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	p := &annotationParser{tokens: tokenizeAnnotation(text)}
	t := p.union()
	if t == nil || p.pos != len(p.tokens) {
		return Named(text)
	}
	return t
}

type annotationParser struct {
	tokens []string
	pos    int
}

func (p *annotationParser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *annotationParser) next() string {
	tok := p.peek()
	if tok != "" {
		p.pos++
	}
	return tok
}

func (p *annotationParser) union() *Type {
	first := p.primary()
	if first == nil {
		return nil
	}
	members := []*Type{first}
	for p.peek() == "|" {
		p.next()
		m := p.primary()
		if m == nil {
			return nil
		}
		members = append(members, m)
	}
	return Union(members...)
}

func (p *annotationParser) primary() *Type {
	tok := p.next()
	switch {
	case tok == "...":
		return tEllipsis
	case tok == "[":
		// Callable parameter list.
		args, ok := p.list("]")
		if !ok {
			return nil
		}
		return &Type{Name: "[" + joinDisplay(args) + "]"}
	case isAnnotationName(tok):
	default:
		return nil
	}

	name := normalizeTypingName(tok)
	if p.peek() != "[" {
		return Named(name)
	}
	p.next()
	args, ok := p.list("]")
	if !ok {
		return nil
	}
	switch name {
	case "Optional":
		if len(args) != 1 {
			return nil
		}
		return Union(args[0], tNone)
	case "Union":
		return Union(args...)
	}
	return Named(name, args...)
}

func (p *annotationParser) list(closer string) ([]*Type, bool) {
	var args []*Type
	if p.peek() == closer {
		p.next()
		return args, true
	}
	for {
		arg := p.union()
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
		switch p.next() {
		case ",":
		case closer:
			return args, true
		default:
			return nil, false
		}
	}
}

func joinDisplay(types []*Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.DisplayName()
	}
	return strings.Join(names, ", ")
}

func normalizeTypingName(name string) string {
	name = strings.TrimPrefix(name, "typing.")
	if alias, ok := typingAliases[name]; ok {
		return alias
	}
	return name
}

func isAnnotationName(tok string) bool {
	if tok == "" {
		return false
	}
	r := rune(tok[0])
	return r == '_' || unicode.IsLetter(r)
}

func tokenizeAnnotation(text string) []string {
	var tokens []string
	runes := []rune(text)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '.' && i+2 < len(runes) && runes[i+1] == '.' && runes[i+2] == '.':
			tokens = append(tokens, "...")
			i += 3
		case r == '[' || r == ']' || r == ',' || r == '|':
			tokens = append(tokens, string(r))
			i++
		case r == '"' || r == '\'':
			// Forward references are unquoted in place.
			j := i + 1
			for j < len(runes) && runes[j] != r {
				j++
			}
			if j >= len(runes) {
				return append(tokens, "\x00")
			}
			tokens = append(tokens, tokenizeAnnotation(string(runes[i+1:j]))...)
			i = j + 1
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			j := i
			for j < len(runes) && (runes[j] == '_' || runes[j] == '.' || unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j])) {
				j++
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
		default:
			return append(tokens, "\x00")
		}
	}
	return tokens
}
