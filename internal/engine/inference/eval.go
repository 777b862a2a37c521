package inference

import (
	"strconv"
	"strings"
	"typeinspector/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type role uint8

const (
	roleExpr role = iota
	roleBinding
	roleReturn
)

// maxExprDepth bounds nesting within a single expression, independent of the
// hop limit between statements.
const maxExprDepth = 64

type nodeKey struct {
	start, end uint
	kind       string
	role       role
}

// evaluator infers types over one parsed buffer. It is single-use and not
// safe for concurrent use.
type evaluator struct {
	src      []byte
	module   *sitter.Node
	maxDepth  int
	depth     int
	exprDepth int
	active    map[nodeKey]bool
}

func newEvaluator(src []byte, module *sitter.Node, maxDepth int) *evaluator {
	return &evaluator{
		src:      src,
		module:   module,
		maxDepth: maxDepth,
		active:   make(map[nodeKey]bool),
	}
}

// enter guards against cycles; hops between statements also count toward
// the depth limit.
func (e *evaluator) enter(n *sitter.Node, r role) bool {
	k := nodeKey{start: n.StartByte(), end: n.EndByte(), kind: n.Kind(), role: r}
	if e.active[k] {
		return false
	}
	if r == roleExpr {
		if e.exprDepth >= maxExprDepth {
			return false
		}
		e.exprDepth++
	} else {
		if e.depth >= e.maxDepth {
			return false
		}
		e.depth++
	}
	e.active[k] = true
	return true
}

func (e *evaluator) leave(n *sitter.Node, r role) {
	delete(e.active, nodeKey{start: n.StartByte(), end: n.EndByte(), kind: n.Kind(), role: r})
	if r == roleExpr {
		e.exprDepth--
	} else {
		e.depth--
	}
}

func (e *evaluator) text(n *sitter.Node) string {
	return parser.Text(n, e.src)
}

// binding infers the type bound to target by its owning statement.
func (e *evaluator) binding(target *sitter.Node) *Type {
	if target == nil || !e.enter(target, roleBinding) {
		return nil
	}
	defer e.leave(target, roleBinding)

	owner, path := parser.BindingOwner(target)
	if owner == nil {
		if target.Kind() == "as_pattern_target" {
			return e.asPattern(target.Parent())
		}
		return nil
	}
	switch owner.Kind() {
	case "assignment":
		if ann := owner.ChildByFieldName("type"); ann != nil && len(path) == 0 {
			return ParseAnnotation(e.text(ann))
		}
		return e.destructure(path, target, assignedValue(owner), nil)
	case "augmented_assignment":
		return e.augmented(owner, target)
	case "for_statement", "for_in_clause":
		iterable := e.infer(owner.ChildByFieldName("right"))
		return e.destructure(path, target, nil, elementOf(iterable))
	case "named_expression":
		return e.infer(owner.ChildByFieldName("value"))
	case "as_pattern_target":
		return e.asPattern(owner.Parent())
	case "as_pattern":
		return e.asPattern(owner)
	case "except_clause":
		return e.exceptionInstance(owner.ChildByFieldName("value"))
	}
	return nil
}

// assignedValue skips chained targets: in `a = b = 1` both bind `1`.
func assignedValue(assignment *sitter.Node) *sitter.Node {
	right := assignment.ChildByFieldName("right")
	for right != nil && right.Kind() == "assignment" {
		right = right.ChildByFieldName("right")
	}
	return right
}

// destructure follows path from the outermost pattern down to target,
// projecting either the value expression or its type at each level.
func (e *evaluator) destructure(path []*sitter.Node, target, value *sitter.Node, vt *Type) *Type {
	for i, container := range path {
		child := target
		if i+1 < len(path) {
			child = path[i+1]
		}
		switch container.Kind() {
		case "parenthesized_expression", "list_splat_pattern":
			continue
		}
		items := namedChildren(container)
		idx, after, splatBefore := position(items, child)
		if idx < 0 {
			return nil
		}
		if child.Kind() == "list_splat_pattern" {
			return Named("list", e.rest(value, vt))
		}
		value, vt = e.project(value, vt, idx, after, len(items), splatBefore)
	}
	if value != nil {
		return e.infer(value)
	}
	return vt
}

func position(items []*sitter.Node, child *sitter.Node) (idx, after int, splatBefore bool) {
	for i, item := range items {
		if parser.SameNode(item, child) {
			return i, len(items) - i - 1, splatBefore
		}
		if item.Kind() == "list_splat_pattern" {
			splatBefore = true
		}
	}
	return -1, 0, false
}

func (e *evaluator) rest(value *sitter.Node, vt *Type) *Type {
	if value != nil {
		vt = e.infer(value)
	}
	return elementOf(vt)
}

var sequenceLiterals = map[string]bool{
	"tuple":           true,
	"expression_list": true,
	"list":            true,
}

func (e *evaluator) project(value *sitter.Node, vt *Type, idx, after, count int, splatBefore bool) (*sitter.Node, *Type) {
	if value != nil {
		value = unwrapParens(value)
		if sequenceLiterals[value.Kind()] {
			elems := namedChildren(value)
			hasSplat := false
			for _, el := range elems {
				if el.Kind() == "list_splat" {
					hasSplat = true
				}
			}
			if !hasSplat {
				pos := idx
				if splatBefore {
					pos = len(elems) - after - 1
				}
				if pos >= 0 && pos < len(elems) {
					return elems[pos], nil
				}
			}
		}
		vt = e.infer(value)
	}
	if vt != nil && vt.Is("tuple") && len(vt.Args) == count && !(count == 2 && vt.Args[1].Is("...")) {
		if splatBefore {
			return nil, vt.Args[len(vt.Args)-after-1]
		}
		return nil, vt.Args[idx]
	}
	return nil, elementOf(vt)
}

func unwrapParens(n *sitter.Node) *sitter.Node {
	for n != nil && n.Kind() == "parenthesized_expression" {
		inner := firstNamed(n)
		if inner == nil {
			break
		}
		n = inner
	}
	return n
}

func (e *evaluator) augmented(owner, target *sitter.Node) *Type {
	op := strings.TrimSuffix(e.text(owner.ChildByFieldName("operator")), "=")
	right := e.infer(owner.ChildByFieldName("right"))
	var prev *Type
	if target.Kind() == "identifier" {
		prev = e.symbolType(e.lookup(target))
	}
	if t := binaryResult(op, prev, right); t != nil {
		return t
	}
	if prev != nil {
		return prev
	}
	return right
}

// asPattern types the alias of `with x as y` and `except E as y`.
func (e *evaluator) asPattern(as *sitter.Node) *Type {
	if as == nil || as.Kind() != "as_pattern" {
		return nil
	}
	expr := firstNamed(as)
	for p := as.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "with_item", "with_clause", "with_statement":
			ctx := e.infer(expr)
			if cls := e.classOf(ctx); cls != nil {
				if enter := e.method(cls, "__enter__"); enter != nil {
					if t := e.functionReturn(enter); t != nil {
						return t
					}
				}
			}
			return ctx
		case "except_clause", "except_group_clause":
			return e.exceptionInstance(expr)
		case "block", "module", "case_clause":
			return nil
		}
	}
	return nil
}

func (e *evaluator) exceptionInstance(expr *sitter.Node) *Type {
	expr = unwrapParens(expr)
	if expr == nil {
		return nil
	}
	switch expr.Kind() {
	case "identifier", "attribute":
		return Named(e.text(expr))
	case "tuple", "expression_list":
		var members []*Type
		for _, el := range namedChildren(expr) {
			members = append(members, e.exceptionInstance(el))
		}
		return Union(members...)
	}
	return nil
}

// infer evaluates an expression node.
func (e *evaluator) infer(n *sitter.Node) *Type {
	if n == nil || !e.enter(n, roleExpr) {
		return nil
	}
	defer e.leave(n, roleExpr)

	switch n.Kind() {
	case "integer":
		if hasImaginarySuffix(e.text(n)) {
			return tComplex
		}
		return tInt
	case "float":
		if hasImaginarySuffix(e.text(n)) {
			return tComplex
		}
		return tFloat
	case "string":
		return e.stringType(n)
	case "concatenated_string":
		return e.infer(firstNamed(n))
	case "true", "false":
		return tBool
	case "none":
		return tNone
	case "ellipsis":
		return Named("ellipsis")
	case "list":
		return e.collection("list", n)
	case "set":
		return e.collection("set", n)
	case "tuple", "expression_list":
		return e.tuple(n)
	case "dictionary":
		return e.dictionary(n)
	case "list_comprehension":
		return Named("list", e.infer(n.ChildByFieldName("body")))
	case "set_comprehension":
		return Named("set", e.infer(n.ChildByFieldName("body")))
	case "generator_expression":
		return Named("Generator", orAny(e.infer(n.ChildByFieldName("body"))), tNone, tNone)
	case "dictionary_comprehension":
		body := n.ChildByFieldName("body")
		if body == nil {
			return Named("dict")
		}
		return Named("dict",
			orAny(e.infer(body.ChildByFieldName("key"))),
			orAny(e.infer(body.ChildByFieldName("value"))))
	case "lambda":
		return Named("Callable", tEllipsis, orAny(e.infer(n.ChildByFieldName("body"))))
	case "parenthesized_expression":
		return e.infer(firstNamed(n))
	case "named_expression":
		return e.infer(n.ChildByFieldName("value"))
	case "not_operator", "comparison_operator":
		return tBool
	case "unary_operator":
		return e.unary(n)
	case "binary_operator":
		op := e.text(n.ChildByFieldName("operator"))
		right := n.ChildByFieldName("right")
		t := binaryResult(op, e.infer(n.ChildByFieldName("left")), e.infer(right))
		if op == "**" && t == tInt {
			return e.intPower(right)
		}
		return t
	case "boolean_operator":
		return Union(e.infer(n.ChildByFieldName("left")), e.infer(n.ChildByFieldName("right")))
	case "conditional_expression":
		parts := namedChildren(n)
		if len(parts) != 3 {
			return nil
		}
		return Union(e.infer(parts[0]), e.infer(parts[2]))
	case "call":
		return e.call(n)
	case "identifier":
		return e.name(n)
	case "subscript":
		return e.subscript(n)
	case "attribute":
		return e.attribute(n)
	}
	return nil
}

func hasImaginarySuffix(lit string) bool {
	return strings.HasSuffix(lit, "j") || strings.HasSuffix(lit, "J")
}

func orAny(t *Type) *Type {
	if t == nil {
		return tAny
	}
	return t
}

func (e *evaluator) stringType(n *sitter.Node) *Type {
	lit := e.text(n)
	prefix := lit
	if i := strings.IndexAny(lit, `"'`); i >= 0 {
		prefix = lit[:i]
	}
	if strings.ContainsAny(prefix, "bB") {
		return tBytes
	}
	return tStr
}

func (e *evaluator) elements(n *sitter.Node) *Type {
	var types []*Type
	for _, el := range namedChildren(n) {
		if el.Kind() == "list_splat" {
			types = append(types, elementOf(e.infer(firstNamed(el))))
			continue
		}
		types = append(types, e.infer(el))
	}
	return Union(types...)
}

func (e *evaluator) collection(name string, n *sitter.Node) *Type {
	if len(namedChildren(n)) == 0 {
		return Named(name)
	}
	return Named(name, orAny(e.elements(n)))
}

func (e *evaluator) tuple(n *sitter.Node) *Type {
	items := namedChildren(n)
	if len(items) == 0 {
		return Named("tuple")
	}
	args := make([]*Type, 0, len(items))
	for _, el := range items {
		if el.Kind() == "list_splat" {
			return Named("tuple", orAny(e.elements(n)), tEllipsis)
		}
		args = append(args, orAny(e.infer(el)))
	}
	return Named("tuple", args...)
}

func (e *evaluator) dictionary(n *sitter.Node) *Type {
	var keys, values []*Type
	for _, el := range namedChildren(n) {
		switch el.Kind() {
		case "pair":
			keys = append(keys, e.infer(el.ChildByFieldName("key")))
			values = append(values, e.infer(el.ChildByFieldName("value")))
		case "dictionary_splat":
			inner := e.infer(firstNamed(el))
			keys = append(keys, inner.arg(0))
			values = append(values, inner.arg(1))
		}
	}
	if len(keys) == 0 {
		return Named("dict")
	}
	return Named("dict", orAny(Union(keys...)), orAny(Union(values...)))
}

func (e *evaluator) unary(n *sitter.Node) *Type {
	arg := e.infer(n.ChildByFieldName("argument"))
	if e.text(n.ChildByFieldName("operator")) == "~" {
		if numericRank(arg) > 0 && numericRank(arg) <= 2 {
			return tInt
		}
		return nil
	}
	if rank := numericRank(arg); rank > 0 {
		return numericByRank(max(rank, 2))
	}
	return nil
}

// intPower types int ** int by the exponent's sign: a negative exponent
// yields float and an unknown sign may yield either.
func (e *evaluator) intPower(exp *sitter.Node) *Type {
	for exp != nil && exp.Kind() == "parenthesized_expression" {
		exp = firstNamed(exp)
	}
	if exp == nil {
		return Union(tInt, tFloat)
	}
	switch exp.Kind() {
	case "integer", "true", "false":
		return tInt
	case "unary_operator":
		switch e.text(exp.ChildByFieldName("operator")) {
		case "-":
			if arg := exp.ChildByFieldName("argument"); arg != nil && arg.Kind() == "integer" {
				if v, err := strconv.ParseInt(strings.ReplaceAll(e.text(arg), "_", ""), 0, 64); err == nil && v == 0 {
					return tInt
				}
			}
			return tFloat
		case "+":
			return e.intPower(exp.ChildByFieldName("argument"))
		}
	}
	return Union(tInt, tFloat)
}

// binaryResult applies Python's operator rules to known operand types.
func binaryResult(op string, l, r *Type) *Type {
	if l == nil || r == nil {
		return nil
	}
	lr, rr := numericRank(l), numericRank(r)
	if lr > 0 && rr > 0 {
		rank := max(lr, rr)
		switch op {
		case "/":
			if rank == 4 {
				return tComplex
			}
			return tFloat
		case "+", "-", "*", "//", "%", "**":
			return numericByRank(max(rank, 2))
		case "&", "|", "^":
			if lr == 1 && rr == 1 {
				return tBool
			}
			if rank <= 2 {
				return tInt
			}
		case "<<", ">>":
			if rank <= 2 {
				return tInt
			}
		}
		return nil
	}

	switch op {
	case "+":
		switch {
		case l.Is("str") && r.Is("str"):
			return tStr
		case l.Is("bytes") && r.Is("bytes"):
			return tBytes
		case l.Is("list") && r.Is("list"):
			if elem := Union(l.arg(0), r.arg(0)); elem != nil {
				return Named("list", elem)
			}
			return Named("list")
		case l.Is("tuple") && r.Is("tuple"):
			if isVariadic(l) || isVariadic(r) {
				return Named("tuple", orAny(Union(elementOf(l), elementOf(r))), tEllipsis)
			}
			args := append(append([]*Type{}, l.Args...), r.Args...)
			return Named("tuple", args...)
		}
	case "*":
		seq, count := l, r
		if numericRank(l) > 0 {
			seq, count = r, l
		}
		if numericRank(count) == 0 || numericRank(count) > 2 {
			return nil
		}
		switch {
		case seq.Is("str"), seq.Is("bytes"), seq.Is("list"):
			return seq
		case seq.Is("tuple"):
			return Named("tuple", orAny(elementOf(seq)), tEllipsis)
		}
	case "%":
		if l.Is("str") || l.Is("bytes") {
			return l
		}
	case "|", "&", "-", "^":
		if (l.Is("set") || l.Is("frozenset")) && (r.Is("set") || r.Is("frozenset")) {
			if op == "|" || op == "^" {
				if elem := Union(l.arg(0), r.arg(0)); elem != nil {
					return Named(l.Name, elem)
				}
			}
			return l
		}
		if op == "|" && l.Is("dict") && r.Is("dict") {
			if len(l.Args) == 2 && len(r.Args) == 2 {
				return Named("dict", Union(l.Args[0], r.Args[0]), Union(l.Args[1], r.Args[1]))
			}
			return Named("dict")
		}
	}
	return nil
}

func isVariadic(t *Type) bool {
	return len(t.Args) == 2 && t.Args[1].Is("...")
}

func (e *evaluator) subscript(n *sitter.Node) *Type {
	vt := e.infer(n.ChildByFieldName("value"))
	if vt == nil || vt.isUnion() {
		return nil
	}
	idx := n.ChildByFieldName("subscript")
	isSlice := idx != nil && idx.Kind() == "slice"
	switch vt.Name {
	case "list", "deque", "Sequence":
		if isSlice {
			return vt
		}
		return vt.arg(0)
	case "tuple":
		if isSlice {
			return Named("tuple", orAny(elementOf(vt)), tEllipsis)
		}
		if isVariadic(vt) {
			return vt.Args[0]
		}
		if i, ok := e.intLiteral(idx); ok {
			if i < 0 {
				i += len(vt.Args)
			}
			if i >= 0 && i < len(vt.Args) {
				return vt.Args[i]
			}
			return nil
		}
		return Union(vt.Args...)
	case "dict", "defaultdict", "Mapping", "OrderedDict":
		return vt.arg(1)
	case "str":
		return tStr
	case "bytes", "bytearray":
		if isSlice {
			return vt
		}
		return tInt
	case "range":
		if isSlice {
			return vt
		}
		return tInt
	}
	return nil
}

func (e *evaluator) intLiteral(n *sitter.Node) (int, bool) {
	if n == nil {
		return 0, false
	}
	text := strings.ReplaceAll(strings.TrimSpace(e.text(n)), "_", "")
	i, err := strconv.Atoi(text)
	return i, err == nil
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := n.NamedChildCount()
	out := make([]*sitter.Node, 0, count)
	for i := uint(0); i < count; i++ {
		child := n.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func firstNamed(n *sitter.Node) *sitter.Node {
	children := namedChildren(n)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}
