package inference

// Return types of builtins whose result does not depend on the arguments.
var builtinReturns = map[string]*Type{
	"int":        tInt,
	"float":      tFloat,
	"complex":    tComplex,
	"str":        tStr,
	"bool":       tBool,
	"bytes":      tBytes,
	"bytearray":  Named("bytearray"),
	"object":     Named("object"),
	"len":        tInt,
	"hash":       tInt,
	"id":         tInt,
	"ord":        tInt,
	"round":      tInt,
	"repr":       tStr,
	"ascii":      tStr,
	"chr":        tStr,
	"hex":        tStr,
	"oct":        tStr,
	"bin":        tStr,
	"format":     tStr,
	"input":      tStr,
	"print":      tNone,
	"isinstance": tBool,
	"issubclass": tBool,
	"callable":   tBool,
	"hasattr":    tBool,
	"all":        tBool,
	"any":        tBool,
	"range":      Named("range"),
	"slice":      Named("slice"),
	"divmod":     Named("tuple", tInt, tInt),
	"dict":       Named("dict"),
	"globals":    Named("dict", tStr, tAny),
	"locals":     Named("dict", tStr, tAny),
	"vars":       Named("dict", tStr, tAny),
	"dir":        Named("list", tStr),
	"memoryview": Named("memoryview"),
	"property":   Named("property"),
	"super":      Named("super"),
}

var builtinExceptions = map[string]bool{
	"BaseException":       true,
	"Exception":           true,
	"ArithmeticError":     true,
	"AssertionError":      true,
	"AttributeError":      true,
	"EOFError":            true,
	"FileNotFoundError":   true,
	"ImportError":         true,
	"IndexError":          true,
	"KeyError":            true,
	"KeyboardInterrupt":   true,
	"LookupError":         true,
	"NameError":           true,
	"NotImplementedError": true,
	"OSError":             true,
	"OverflowError":       true,
	"PermissionError":     true,
	"RuntimeError":        true,
	"StopIteration":       true,
	"TimeoutError":        true,
	"TypeError":           true,
	"ValueError":          true,
	"ZeroDivisionError":   true,
}

// Methods of str keyed by name; nil entries need the receiver or arguments.
var strMethods = map[string]*Type{
	"upper":        tStr,
	"lower":        tStr,
	"title":        tStr,
	"capitalize":   tStr,
	"casefold":     tStr,
	"swapcase":     tStr,
	"strip":        tStr,
	"lstrip":       tStr,
	"rstrip":       tStr,
	"replace":      tStr,
	"join":         tStr,
	"format":       tStr,
	"format_map":   tStr,
	"center":       tStr,
	"ljust":        tStr,
	"rjust":        tStr,
	"zfill":        tStr,
	"expandtabs":   tStr,
	"removeprefix": tStr,
	"removesuffix": tStr,
	"translate":    tStr,
	"split":        Named("list", tStr),
	"rsplit":       Named("list", tStr),
	"splitlines":   Named("list", tStr),
	"partition":    Named("tuple", tStr, tStr, tStr),
	"rpartition":   Named("tuple", tStr, tStr, tStr),
	"encode":       tBytes,
	"find":         tInt,
	"rfind":        tInt,
	"index":        tInt,
	"rindex":       tInt,
	"count":        tInt,
	"startswith":   tBool,
	"endswith":     tBool,
	"isdigit":      tBool,
	"isalpha":      tBool,
	"isalnum":      tBool,
	"isspace":      tBool,
	"isupper":      tBool,
	"islower":      tBool,
	"isnumeric":    tBool,
	"isdecimal":    tBool,
	"isidentifier": tBool,
	"istitle":      tBool,
}

// Element type of iterating a value of the named type, for single-argument
// containers.
var firstArgIterables = map[string]bool{
	"list":        true,
	"set":         true,
	"frozenset":   true,
	"deque":       true,
	"Iterable":    true,
	"Iterator":    true,
	"Sequence":    true,
	"Generator":   true,
	"reversed":    true,
	"filter":      true,
	"map":         true,
	"zip":         true,
	"dict":        true,
	"Mapping":     true,
	"defaultdict": true,
	"dict_keys":   true,
	"dict_values": true,
	"KeysView":    true,
	"ValuesView":  true,
}

// elementOf returns the type produced by iterating over t.
func elementOf(t *Type) *Type {
	if t == nil {
		return nil
	}
	if t.isUnion() {
		elems := make([]*Type, 0, len(t.Members))
		for _, m := range t.Members {
			elems = append(elems, elementOf(m))
		}
		return Union(elems...)
	}
	switch {
	case t.Name == "str":
		return tStr
	case t.Name == "bytes" || t.Name == "bytearray" || t.Name == "range":
		return tInt
	case t.Name == "TextIOWrapper":
		return tStr
	case t.Name == "BufferedReader":
		return tBytes
	case t.Name == "tuple":
		if len(t.Args) == 2 && t.Args[1].Is("...") {
			return t.Args[0]
		}
		return Union(t.Args...)
	case t.Name == "enumerate":
		if elem := t.arg(0); elem != nil {
			return Named("tuple", tInt, elem)
		}
		return nil
	case t.Name == "dict_items" || t.Name == "ItemsView":
		if len(t.Args) == 2 {
			return Named("tuple", t.Args[0], t.Args[1])
		}
		return nil
	case firstArgIterables[t.Name]:
		return t.arg(0)
	}
	return nil
}

// numericRank orders the numeric tower; 0 means not numeric.
func numericRank(t *Type) int {
	switch {
	case t.Is("bool"):
		return 1
	case t.Is("int"):
		return 2
	case t.Is("float"):
		return 3
	case t.Is("complex"):
		return 4
	}
	return 0
}

func numericByRank(rank int) *Type {
	switch rank {
	case 1, 2:
		return tInt
	case 3:
		return tFloat
	case 4:
		return tComplex
	}
	return nil
}
