package inference

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type callArgs struct {
	positional []*sitter.Node
	keywords   map[string]*sitter.Node
}

func (e *evaluator) arguments(call *sitter.Node) callArgs {
	args := callArgs{keywords: make(map[string]*sitter.Node)}
	list := call.ChildByFieldName("arguments")
	if list == nil {
		return args
	}
	if list.Kind() == "generator_expression" {
		args.positional = append(args.positional, list)
		return args
	}
	for _, arg := range namedChildren(list) {
		switch arg.Kind() {
		case "keyword_argument":
			args.keywords[e.text(arg.ChildByFieldName("name"))] = arg.ChildByFieldName("value")
		case "list_splat", "dictionary_splat":
		default:
			args.positional = append(args.positional, arg)
		}
	}
	return args
}

func (a callArgs) at(i int) *sitter.Node {
	if i < len(a.positional) {
		return a.positional[i]
	}
	return nil
}

func (e *evaluator) call(n *sitter.Node) *Type {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return nil
	}
	args := e.arguments(n)
	switch fn.Kind() {
	case "identifier":
		if sym := e.lookup(fn); sym != nil {
			return e.callSymbol(sym)
		}
		return e.builtinCall(e.text(fn), args)
	case "attribute":
		return e.methodCall(fn, args)
	case "parenthesized_expression", "lambda":
		return e.callable(e.infer(fn))
	}
	return nil
}

func (e *evaluator) callSymbol(sym *symbol) *Type {
	switch sym.kind {
	case symClass:
		return Named(e.text(sym.node.ChildByFieldName("name")))
	case symFunction:
		return e.functionReturn(sym.node)
	}
	return e.callable(e.symbolType(sym))
}

// callable returns the result type of calling a value of type t.
func (e *evaluator) callable(t *Type) *Type {
	switch {
	case t == nil:
		return nil
	case t.Is("Callable") && len(t.Args) == 2:
		if t.Args[1].Is("Any") {
			return nil
		}
		return t.Args[1]
	case t.Is("type") && len(t.Args) == 1:
		return t.Args[0]
	}
	return nil
}

func (e *evaluator) builtinCall(name string, args callArgs) *Type {
	first := args.at(0)
	elem := func() *Type { return elementOf(e.infer(first)) }

	switch name {
	case "list", "set", "frozenset":
		if first == nil {
			return Named(name)
		}
		return collectionOf(name, elem())
	case "sorted":
		if first == nil {
			return nil
		}
		return collectionOf("list", elem())
	case "tuple":
		if first == nil {
			return Named("tuple")
		}
		return Named("tuple", orAny(elem()), tEllipsis)
	case "reversed", "iter", "enumerate", "filter":
		target := first
		if name == "filter" {
			target = args.at(1)
		}
		wrapper := map[string]string{"iter": "Iterator"}[name]
		if wrapper == "" {
			wrapper = name
		}
		if target == nil {
			return Named(wrapper)
		}
		return collectionOf(wrapper, elementOf(e.infer(target)))
	case "zip":
		if len(args.positional) == 0 {
			return Named("zip")
		}
		parts := make([]*Type, len(args.positional))
		for i, arg := range args.positional {
			parts[i] = orAny(elementOf(e.infer(arg)))
		}
		return Named("zip", Named("tuple", parts...))
	case "map":
		return Named("map")
	case "next":
		return elem()
	case "abs":
		if t := e.infer(first); numericRank(t) > 0 {
			return numericByRank(max(numericRank(t), 2))
		}
		return nil
	case "sum":
		if t := elem(); numericRank(t) > 0 {
			return numericByRank(max(numericRank(t), 2))
		}
		return tInt
	case "max", "min":
		if len(args.positional) == 1 {
			return elem()
		}
		types := make([]*Type, 0, len(args.positional))
		for _, arg := range args.positional {
			types = append(types, e.infer(arg))
		}
		return Union(types...)
	case "pow":
		if len(args.positional) >= 2 {
			return binaryResult("**", e.infer(args.positional[0]), e.infer(args.positional[1]))
		}
		return nil
	case "type":
		if len(args.positional) == 1 {
			if t := e.infer(first); t != nil {
				return Named("type", t)
			}
		}
		return Named("type")
	case "open":
		return e.openResult(args)
	case "dict":
		if len(args.keywords) > 0 && first == nil {
			values := make([]*Type, 0, len(args.keywords))
			for _, value := range args.keywords {
				values = append(values, e.infer(value))
			}
			return Named("dict", tStr, orAny(Union(values...)))
		}
		if first != nil {
			if t := e.infer(first); t.Is("dict") {
				return t
			}
		}
		return Named("dict")
	}
	if t, ok := builtinReturns[name]; ok {
		return t
	}
	if builtinExceptions[name] {
		return Named(name)
	}
	return nil
}

func collectionOf(name string, elem *Type) *Type {
	if elem == nil {
		return Named(name)
	}
	return Named(name, elem)
}

// openResult follows the mode argument: text modes read str, binary modes
// return buffered byte streams.
func (e *evaluator) openResult(args callArgs) *Type {
	mode := args.at(1)
	if kw, ok := args.keywords["mode"]; ok {
		mode = kw
	}
	if mode == nil || mode.Kind() != "string" {
		return Named("TextIOWrapper")
	}
	m := strings.Trim(e.text(mode), `"'`)
	if !strings.Contains(m, "b") {
		return Named("TextIOWrapper")
	}
	if strings.ContainsAny(m, "wax") {
		return Named("BufferedWriter")
	}
	return Named("BufferedReader")
}

var listMutators = map[string]bool{
	"append": true, "extend": true, "insert": true, "remove": true,
	"clear": true, "sort": true, "reverse": true,
}

var setMutators = map[string]bool{
	"add": true, "discard": true, "remove": true, "clear": true, "update": true,
}

func (e *evaluator) methodCall(attr *sitter.Node, args callArgs) *Type {
	object := attr.ChildByFieldName("object")
	method := e.text(attr.ChildByFieldName("attribute"))
	recv := e.infer(object)
	if recv == nil || recv.isUnion() {
		return nil
	}

	switch recv.Name {
	case "str":
		return strMethods[method]
	case "bytes":
		switch method {
		case "decode", "hex":
			return tStr
		case "split":
			return Named("list", tBytes)
		case "upper", "lower", "strip", "replace", "join":
			return tBytes
		}
		return nil
	case "list":
		switch {
		case listMutators[method]:
			return tNone
		case method == "pop":
			return recv.arg(0)
		case method == "copy":
			return recv
		case method == "index" || method == "count":
			return tInt
		}
		return nil
	case "dict", "defaultdict":
		return e.dictMethod(recv, method, args)
	case "set", "frozenset":
		switch {
		case setMutators[method]:
			return tNone
		case method == "pop":
			return recv.arg(0)
		case method == "union", method == "intersection", method == "difference",
			method == "symmetric_difference", method == "copy":
			return recv
		case method == "issubset", method == "issuperset", method == "isdisjoint":
			return tBool
		}
		return nil
	case "TextIOWrapper":
		return fileMethod(method, tStr)
	case "BufferedReader", "BufferedWriter":
		return fileMethod(method, tBytes)
	case "type":
		// Class-level call such as a classmethod constructor.
		if cls := e.classOf(recv.arg(0)); cls != nil {
			if m := e.method(cls, method); m != nil {
				return e.functionReturn(m)
			}
		}
		return nil
	}

	if cls := e.classOf(recv); cls != nil {
		if m := e.method(cls, method); m != nil {
			return e.functionReturn(m)
		}
	}
	return nil
}

func (e *evaluator) dictMethod(recv *Type, method string, args callArgs) *Type {
	key, value := recv.arg(0), recv.arg(1)
	switch method {
	case "get":
		if def := args.at(1); def != nil {
			return Union(value, e.infer(def))
		}
		if value == nil {
			return nil
		}
		return Union(value, tNone)
	case "keys":
		return collectionOf("dict_keys", key)
	case "values":
		return collectionOf("dict_values", value)
	case "items":
		if key == nil || value == nil {
			return Named("dict_items")
		}
		return Named("dict_items", key, value)
	case "pop", "setdefault":
		return value
	case "copy":
		return recv
	case "update", "clear":
		return tNone
	case "popitem":
		if key == nil || value == nil {
			return Named("tuple")
		}
		return Named("tuple", key, value)
	}
	return nil
}

func fileMethod(method string, chunk *Type) *Type {
	switch method {
	case "read", "readline":
		return chunk
	case "readlines":
		return Named("list", chunk)
	case "write", "tell", "seek", "fileno":
		return tInt
	case "close", "flush":
		return tNone
	case "readable", "writable", "seekable", "isatty":
		return tBool
	}
	return nil
}

// attribute types a member access that is not a call.
func (e *evaluator) attribute(n *sitter.Node) *Type {
	recv := e.infer(n.ChildByFieldName("object"))
	member := e.text(n.ChildByFieldName("attribute"))
	if recv == nil || recv.isUnion() {
		return nil
	}
	switch {
	case recv.Is("complex") && (member == "real" || member == "imag"):
		return tFloat
	case (recv.Is("int") || recv.Is("bool")) && (member == "real" || member == "numerator" || member == "denominator"):
		return tInt
	case recv.Is("TextIOWrapper") && (member == "name" || member == "mode" || member == "encoding"):
		return tStr
	}
	if recv.Is("type") {
		recv = recv.arg(0)
	}
	if cls := e.classOf(recv); cls != nil {
		return e.member(cls, member)
	}
	return nil
}

// classOf finds the buffer-local class definition an instance type names.
func (e *evaluator) classOf(t *Type) *sitter.Node {
	if t == nil || t.isUnion() || len(t.Args) > 0 || t.Name == "" {
		return nil
	}
	return e.findClass(e.module, t.Name)
}

func (e *evaluator) findClass(n *sitter.Node, name string) *sitter.Node {
	if n == nil {
		return nil
	}
	for _, child := range namedChildren(n) {
		switch child.Kind() {
		case "class_definition":
			if e.text(child.ChildByFieldName("name")) == name {
				return child
			}
		case "function_definition":
			continue
		}
		if found := e.findClass(child, name); found != nil {
			return found
		}
	}
	return nil
}

// method finds name in cls or its buffer-local base classes.
func (e *evaluator) method(cls *sitter.Node, name string) *sitter.Node {
	seen := make(map[uint]bool)
	for cls != nil && !seen[cls.StartByte()] {
		seen[cls.StartByte()] = true
		for _, stmt := range namedChildren(cls.ChildByFieldName("body")) {
			def := stmt
			if def.Kind() == "decorated_definition" {
				def = def.ChildByFieldName("definition")
			}
			if def != nil && def.Kind() == "function_definition" && e.text(def.ChildByFieldName("name")) == name {
				return def
			}
		}
		cls = e.baseClass(cls)
	}
	return nil
}

func (e *evaluator) baseClass(cls *sitter.Node) *sitter.Node {
	for _, base := range namedChildren(cls.ChildByFieldName("superclasses")) {
		if base.Kind() != "identifier" {
			continue
		}
		if found := e.findClass(e.module, e.text(base)); found != nil {
			return found
		}
	}
	return nil
}

// member types a class attribute or an attribute assigned through self in
// one of the class's methods.
func (e *evaluator) member(cls *sitter.Node, name string) *Type {
	body := cls.ChildByFieldName("body")
	var found *sitter.Node
	e.walkBindings(body, name, func(sym *symbol) {
		if found == nil && sym.kind == symBinding {
			found = sym.node
		}
	})
	if found != nil {
		return e.binding(found)
	}
	if m := e.method(cls, name); m != nil {
		return Named("Callable", tEllipsis, orAny(e.functionReturn(m)))
	}
	for _, stmt := range namedChildren(body) {
		def := stmt
		if def.Kind() == "decorated_definition" {
			def = def.ChildByFieldName("definition")
		}
		if def == nil || def.Kind() != "function_definition" {
			continue
		}
		params := namedChildren(def.ChildByFieldName("parameters"))
		if len(params) == 0 || params[0].Kind() != "identifier" {
			continue
		}
		if target := e.selfAssignment(def.ChildByFieldName("body"), e.text(params[0]), name); target != nil {
			return e.binding(target)
		}
	}
	return nil
}

func (e *evaluator) selfAssignment(n *sitter.Node, self, name string) *sitter.Node {
	for _, child := range namedChildren(n) {
		switch child.Kind() {
		case "function_definition", "class_definition", "lambda":
			continue
		case "assignment", "augmented_assignment":
			left := child.ChildByFieldName("left")
			if left != nil && left.Kind() == "attribute" &&
				e.text(left.ChildByFieldName("object")) == self &&
				e.text(left.ChildByFieldName("attribute")) == name {
				return left
			}
		}
		if found := e.selfAssignment(child, self, name); found != nil {
			return found
		}
	}
	return nil
}
