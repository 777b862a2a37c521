package inference

import (
	"strings"
	"typeinspector/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type symbolKind uint8

const (
	symBinding symbolKind = iota + 1
	symParameter
	symFunction
	symClass
	symImport
)

// symbol is what a name resolves to within the buffer.
type symbol struct {
	kind symbolKind
	node *sitter.Node
	// owner is the function or lambda of a parameter.
	owner *sitter.Node
}

var scopeKinds = map[string]bool{
	"module":                   true,
	"function_definition":      true,
	"class_definition":         true,
	"lambda":                   true,
	"list_comprehension":       true,
	"set_comprehension":        true,
	"dictionary_comprehension": true,
	"generator_expression":     true,
}

func enclosingScope(n *sitter.Node) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if scopeKinds[p.Kind()] {
			return p
		}
	}
	return nil
}

func contains(outer, inner *sitter.Node) bool {
	if outer == nil || inner == nil {
		return false
	}
	return outer.StartByte() <= inner.StartByte() && inner.EndByte() <= outer.EndByte()
}

// lookup resolves the identifier ref through the enclosing scopes. Class
// bodies are only visible to code directly inside them.
func (e *evaluator) lookup(ref *sitter.Node) *symbol {
	name := e.text(ref)
	local := true
	for scope := enclosingScope(ref); scope != nil; scope = enclosingScope(scope) {
		if scope.Kind() == "class_definition" && !local {
			continue
		}
		if sym := e.lookupIn(scope, name, ref, local); sym != nil {
			return sym
		}
		local = false
	}
	return nil
}

func (e *evaluator) lookupIn(scope *sitter.Node, name string, ref *sitter.Node, local bool) *symbol {
	switch scope.Kind() {
	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		for _, clause := range namedChildren(scope) {
			if clause.Kind() != "for_in_clause" {
				continue
			}
			if target := e.findTarget(clause.ChildByFieldName("left"), name); target != nil {
				return &symbol{kind: symBinding, node: target}
			}
		}
		return nil
	case "lambda":
		if p := e.findParameter(scope, name); p != nil {
			return &symbol{kind: symParameter, node: p, owner: scope}
		}
		return nil
	case "function_definition":
		if sym := e.nearestBinding(scope.ChildByFieldName("body"), name, ref, local); sym != nil {
			return sym
		}
		if p := e.findParameter(scope, name); p != nil {
			return &symbol{kind: symParameter, node: p, owner: scope}
		}
		return nil
	case "class_definition":
		return e.nearestBinding(scope.ChildByFieldName("body"), name, ref, local)
	}
	return e.nearestBinding(scope, name, ref, local)
}

// findTarget returns the identifier called name inside a target pattern.
func (e *evaluator) findTarget(pattern *sitter.Node, name string) *sitter.Node {
	if pattern == nil {
		return nil
	}
	if pattern.Kind() == "identifier" {
		if e.text(pattern) == name {
			return pattern
		}
		return nil
	}
	for _, child := range namedChildren(pattern) {
		if t := e.findTarget(child, name); t != nil {
			return t
		}
	}
	return nil
}

// nearestBinding picks the closest binding of name before ref in body. Outside
// the local scope a binding anywhere in body is acceptable.
func (e *evaluator) nearestBinding(body *sitter.Node, name string, ref *sitter.Node, local bool) *symbol {
	if body == nil {
		return nil
	}
	var best, first *symbol
	e.walkBindings(body, name, func(sym *symbol) {
		if first == nil {
			first = sym
		}
		if sym.node.StartByte() >= ref.StartByte() || e.evaluates(sym, ref) {
			return
		}
		if best == nil || sym.node.StartByte() > best.node.StartByte() {
			best = sym
		}
	})
	if best != nil {
		return best
	}
	if !local {
		return first
	}
	return nil
}

// evaluates reports whether ref sits inside the expression the symbol's
// binding is computed from, such as `x` in `x = x + 1`.
func (e *evaluator) evaluates(sym *symbol, ref *sitter.Node) bool {
	if sym.kind != symBinding {
		return false
	}
	owner, _ := parser.BindingOwner(sym.node)
	if owner == nil {
		return false
	}
	var value *sitter.Node
	switch owner.Kind() {
	case "assignment", "augmented_assignment", "for_statement", "for_in_clause":
		value = owner.ChildByFieldName("right")
	case "named_expression":
		value = owner.ChildByFieldName("value")
	case "as_pattern_target":
		if as := owner.Parent(); as != nil {
			value = firstNamed(as)
		}
	}
	return contains(value, ref)
}

// walkBindings visits every binding of name in body without entering nested
// scopes. Nested function and class names are reported as definitions.
func (e *evaluator) walkBindings(n *sitter.Node, name string, visit func(*symbol)) {
	for _, child := range namedChildren(n) {
		switch child.Kind() {
		case "function_definition", "class_definition":
			if e.text(child.ChildByFieldName("name")) == name {
				kind := symFunction
				if child.Kind() == "class_definition" {
					kind = symClass
				}
				visit(&symbol{kind: kind, node: child})
			}
			continue
		case "lambda", "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
			continue
		case "import_statement", "import_from_statement":
			if imported := e.importedName(child, name); imported != nil {
				visit(&symbol{kind: symImport, node: imported})
			}
			continue
		case "identifier":
			if e.text(child) == name && parser.IsBindingTarget(child) {
				visit(&symbol{kind: symBinding, node: child})
			}
			continue
		}
		e.walkBindings(child, name, visit)
	}
}

func (e *evaluator) importedName(stmt *sitter.Node, name string) *sitter.Node {
	for _, child := range namedChildren(stmt) {
		switch child.Kind() {
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil && e.text(alias) == name {
				return alias
			}
		case "dotted_name":
			if parser.SameNode(child, stmt.ChildByFieldName("module_name")) {
				continue
			}
			if first := firstNamed(child); first != nil && e.text(first) == name {
				return first
			}
		}
	}
	return nil
}

func (e *evaluator) symbolType(sym *symbol) *Type {
	if sym == nil {
		return nil
	}
	switch sym.kind {
	case symBinding:
		return e.binding(sym.node)
	case symParameter:
		return e.parameter(sym)
	case symFunction:
		return Named("Callable", tEllipsis, orAny(e.functionReturn(sym.node)))
	case symClass:
		return Named("type", Named(e.text(sym.node.ChildByFieldName("name"))))
	}
	return nil
}

var dunderStrings = map[string]bool{
	"__name__": true,
	"__file__": true,
	"__doc__":  true,
}

func (e *evaluator) name(ref *sitter.Node) *Type {
	if sym := e.lookup(ref); sym != nil {
		return e.symbolType(sym)
	}
	if dunderStrings[e.text(ref)] {
		return tStr
	}
	return nil
}

// findParameter returns the parameter node (plain, typed, default, or
// splat) of fn named name.
func (e *evaluator) findParameter(fn *sitter.Node, name string) *sitter.Node {
	for _, p := range namedChildren(fn.ChildByFieldName("parameters")) {
		if e.parameterName(p) == name {
			return p
		}
	}
	return nil
}

func (e *evaluator) parameterName(p *sitter.Node) string {
	switch p.Kind() {
	case "identifier":
		return e.text(p)
	case "default_parameter", "typed_default_parameter":
		return e.text(p.ChildByFieldName("name"))
	case "typed_parameter", "list_splat_pattern", "dictionary_splat_pattern":
		inner := firstNamed(p)
		if inner == nil {
			return ""
		}
		if inner.Kind() == "identifier" {
			return e.text(inner)
		}
		return e.parameterName(inner)
	}
	return ""
}

func (e *evaluator) parameter(sym *symbol) *Type {
	p := sym.node
	var declared *Type
	if ann := p.ChildByFieldName("type"); ann != nil {
		declared = ParseAnnotation(e.text(ann))
	}

	splat := p.Kind()
	if splat == "typed_parameter" {
		if inner := firstNamed(p); inner != nil {
			splat = inner.Kind()
		}
	}
	switch splat {
	case "list_splat_pattern":
		return Named("tuple", orAny(declared), tEllipsis)
	case "dictionary_splat_pattern":
		return Named("dict", tStr, orAny(declared))
	}
	if declared != nil {
		return declared
	}
	if value := p.ChildByFieldName("value"); value != nil {
		return e.infer(value)
	}
	if sym.owner.Kind() == "function_definition" {
		return e.receiver(sym.owner, p)
	}
	return nil
}

// receiver types the implicit first parameter of a method.
func (e *evaluator) receiver(fn, p *sitter.Node) *Type {
	params := namedChildren(fn.ChildByFieldName("parameters"))
	if len(params) == 0 || !parser.SameNode(params[0], p) {
		return nil
	}
	cls := enclosingClass(fn)
	if cls == nil {
		return nil
	}
	className := Named(e.text(cls.ChildByFieldName("name")))
	switch e.decoratorOf(fn) {
	case "staticmethod":
		return nil
	case "classmethod":
		return Named("type", className)
	}
	return className
}

func enclosingClass(fn *sitter.Node) *sitter.Node {
	p := fn.Parent()
	if p != nil && p.Kind() == "decorated_definition" {
		p = p.Parent()
	}
	if p == nil || p.Kind() != "block" {
		return nil
	}
	if cls := p.Parent(); cls != nil && cls.Kind() == "class_definition" {
		return cls
	}
	return nil
}

func (e *evaluator) decoratorOf(fn *sitter.Node) string {
	wrapper := fn.Parent()
	if wrapper == nil || wrapper.Kind() != "decorated_definition" {
		return ""
	}
	for _, child := range namedChildren(wrapper) {
		if child.Kind() != "decorator" {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(e.text(child), "@"))
		if name == "staticmethod" || name == "classmethod" {
			return name
		}
	}
	return ""
}

// functionReturn uses the return annotation, else the first return statement.
func (e *evaluator) functionReturn(fn *sitter.Node) *Type {
	if fn == nil || !e.enter(fn, roleReturn) {
		return nil
	}
	defer e.leave(fn, roleReturn)

	var result *Type
	if rt := fn.ChildByFieldName("return_type"); rt != nil {
		result = ParseAnnotation(e.text(rt))
	} else {
		body := fn.ChildByFieldName("body")
		if e.hasYield(body) {
			return Named("Generator")
		}
		ret := e.firstReturn(body)
		switch {
		case ret == nil:
			result = tNone
		case firstNamed(ret) == nil:
			result = tNone
		default:
			result = e.infer(firstNamed(ret))
		}
	}
	if result != nil && strings.HasPrefix(e.text(fn), "async") {
		return Named("Coroutine", tAny, tAny, result)
	}
	return result
}

func (e *evaluator) firstReturn(n *sitter.Node) *sitter.Node {
	for _, child := range namedChildren(n) {
		switch child.Kind() {
		case "return_statement":
			return child
		case "function_definition", "class_definition", "lambda":
			continue
		}
		if r := e.firstReturn(child); r != nil {
			return r
		}
	}
	return nil
}

func (e *evaluator) hasYield(n *sitter.Node) bool {
	for _, child := range namedChildren(n) {
		switch child.Kind() {
		case "yield":
			return true
		case "function_definition", "class_definition", "lambda":
			continue
		}
		if e.hasYield(child) {
			return true
		}
	}
	return false
}
