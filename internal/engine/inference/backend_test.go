package inference

import (
	"strings"
	"testing"
	"time"
	"typeinspector/internal/core/errors"
	"typeinspector/internal/core/ports"
	"typeinspector/internal/core/workspace"
	"typeinspector/internal/engine/parser"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// typeAt infers the binding under the first occurrence of needle.
func typeAt(t *testing.T, b *Backend, src, needle string) (string, bool) {
	t.Helper()
	ws := workspace.New()
	id, err := ws.OpenContent("/tmp/sample.py", []byte(src))
	require.NoError(t, err)
	gl, err := parser.NewGrammarLoader()
	require.NoError(t, err)
	provider := parser.NewProvider(ws, gl)

	root, ok := provider.SyntaxTreeOf(id)
	require.True(t, ok)
	defer root.Close()

	idx := strings.Index(src, needle)
	require.GreaterOrEqual(t, idx, 0, "needle %q not in source", needle)
	leaf, ok := root.ElementAt(utf8.RuneCountInString(src[:idx]))
	require.True(t, ok)
	binding, ok := provider.NearestEnclosing(leaf, ports.KindVariableBinding)
	require.True(t, ok, "no binding at %q", needle)

	session, err := b.BeginRead()
	require.NoError(t, err)
	defer session.Release()

	desc, ok, err := session.InferType(binding, root)
	require.NoError(t, err)
	if !ok {
		return "", false
	}
	return desc.DisplayName(), true
}

func TestInferType(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		needle string
		want   string
	}{
		{"Int", "x = 5\n", "x", "int"},
		{"Float", "f = 1.5\n", "f", "float"},
		{"Complex", "c = 2j\n", "c", "complex"},
		{"Str", "s = 'hi'\n", "s", "str"},
		{"Bytes", "raw = b'hi'\n", "raw", "bytes"},
		{"FString", "msg = f'{1}'\n", "msg", "str"},
		{"Bool", "ok = True\n", "ok", "bool"},
		{"None", "nothing = None\n", "nothing", "None"},
		{"List", "xs = [1, 2, 3]\n", "xs", "list[int]"},
		{"MixedList", "mixed = [1, 'a']\n", "mixed", "list[int | str]"},
		{"EmptyList", "empty = []\n", "empty", "list"},
		{"Dict", "d = {'a': 1}\n", "d", "dict[str, int]"},
		{"Set", "st = {1, 2}\n", "st", "set[int]"},
		{"Tuple", "tp = (1, 'a')\n", "tp", "tuple[int, str]"},
		{"Comprehension", "sq = [i * i for i in range(3)]\n", "sq", "list[int]"},
		{"DictComprehension", "dc = {k: 1.0 for k in 'ab'}\n", "dc", "dict[str, float]"},
		{"Generator", "gen = (n for n in [1])\n", "gen", "Generator[int, None, None]"},
		{"Lambda", "fn = lambda: 1\n", "fn", "Callable[..., int]"},
		{"TrueDivision", "q = 7 / 2\n", "q", "float"},
		{"FloorDivision", "r = 7 // 2\n", "r", "int"},
		{"Promotion", "m = 1 + 2.0\n", "m", "float"},
		{"Power", "pw = 2 ** 3\n", "pw", "int"},
		{"NegativePower", "p = 2 ** -1\n", "p", "float"},
		{"ParenthesizedNegativePower", "p = 10 ** (-2)\n", "p", "float"},
		{"ZeroNegatedPower", "p = 2 ** -0\n", "p", "int"},
		{"UnknownSignPower", "e = 3\np = 2 ** e\n", "p =", "int | float"},
		{"FloatPower", "p = 2.0 ** -1\n", "p", "float"},
		{"Comparison", "cmp = 1 < 2\n", "cmp", "bool"},
		{"Not", "neg = not 0\n", "neg", "bool"},
		{"Negation", "minus = -3\n", "minus", "int"},
		{"Conditional", "u = 1 if input() else 'a'\n", "u", "int | str"},
		{"Or", "o = 0 or 'x'\n", "o", "int | str"},
		{"StrConcat", "greeting = 'a' + 'b'\n", "greeting", "str"},
		{"Builtin", "ln = len('abc')\n", "ln", "int"},
		{"Sorted", "srt = sorted([3, 1])\n", "srt", "list[int]"},
		{"Open", "fh = open('f')\n", "fh", "TextIOWrapper"},
		{"OpenBinary", "fh = open('f', 'rb')\n", "fh", "BufferedReader"},
		{"StrMethod", "up = 'abc'.upper()\n", "up", "str"},
		{"Split", "parts = 'a b'.split()\n", "parts", "list[str]"},
		{"Join", "joined = ', '.join(['a'])\n", "joined", "str"},
		{"DictGet", "d = {'a': 1}\ng = d.get('a')\n", "g =", "int | None"},
		{"LocalClass", "class Point:\n    pass\np = Point()\n", "p =", "Point"},
		{"ReturnAnnotation", "def area(r: float) -> float:\n    return r\na = area(2)\n", "a =", "float"},
		{"FirstReturn", "def label():\n    return 'x'\nnm = label()\n", "nm", "str"},
		{"NoReturn", "def noop():\n    pass\nres = noop()\n", "res", "None"},
		{"Name", "x = 5\ny = x\n", "y", "int"},
		{"LatestBinding", "x = 5\nx = 'a'\ny = x\n", "y", "str"},
		{"AnnotatedParameter", "def f(count: int):\n    total = count\n", "total", "int"},
		{"DefaultParameter", "def f(scale=1.0):\n    k = scale\n", "k =", "float"},
		{"SelfParameter", "class A:\n    def me(self):\n        who = self\n", "who", "A"},
		{"ListIndex", "xs = [1, 2]\nfirst = xs[0]\n", "first", "int"},
		{"DictIndex", "d = {'a': 1.0}\nv = d['a']\n", "v =", "float"},
		{"TupleIndex", "tp = (1, 'a')\nsecond = tp[1]\n", "second", "str"},
		{"Slice", "xs = [1, 2]\nhead = xs[:1]\n", "head", "list[int]"},
		{"Unpacking", "a, b = 1, 's'\n", "b", "str"},
		{"NestedUnpacking", "(a, (b, c)) = (1, (2.0, 'z'))\n", "c", "str"},
		{"UnpackingTupleType", "pair = (1, 'a')\nn, s = pair\n", "s =", "str"},
		{"StarredTarget", "head, *tail = [1, 2, 3]\n", "tail", "list[int]"},
		{"ChainedAssignment", "a = b = 1.5\n", "b", "float"},
		{"ForString", "for ch in 'abc':\n    pass\n", "ch", "str"},
		{"ForItems", "for k, v in {'a': 1}.items():\n    pass\n", "v in", "int"},
		{"ForEnumerate", "for i, w in enumerate(['a']):\n    pass\n", "i,", "int"},
		{"LoopVariableUse", "for i in range(3):\n    y = i\n", "y", "int"},
		{"AugmentedAssignment", "count = 0\ncount += 1.5\n", "count +=", "float"},
		{"Walrus", "if (n := 10) > 5:\n    pass\n", "n", "int"},
		{"WithOpen", "with open('f') as fh:\n    pass\n", "fh", "TextIOWrapper"},
		{"Annotated", "hint: list[str] = []\n", "hint", "list[str]"},
		{"AnnotatedTyping", "from typing import Optional\nval: Optional[int] = None\n", "val", "int | None"},
		{"SelfAttribute", "class A:\n    def __init__(self):\n        self.size = 3\n", "size", "int"},
		{"MethodReturn", "class A:\n    def get(self) -> str:\n        return ''\na = A()\nr = a.get()\n", "r =", "str"},
		{"InstanceAttribute", "class A:\n    def __init__(self):\n        self.size = 3\nw = A().size\n", "w =", "int"},
		{"InheritedMethod", "class Base:\n    def n(self) -> int:\n        return 1\nclass Sub(Base):\n    pass\nz = Sub().n()\n", "z =", "int"},
		{"Closure", "base = 'p'\ndef f():\n    local = base\n", "local", "str"},
		{"Dunder", "mod = __name__\n", "mod", "str"},
	}
	b := NewBackend(0)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := typeAt(t, b, tc.src, tc.needle)
			require.True(t, ok, "expected a type for %q", tc.needle)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInferType_Unknown(t *testing.T) {
	b := NewBackend(0)
	for name, src := range map[string]string{
		"UnresolvedCall": "z = foo()\n",
		"UnknownName":    "z = missing\n",
		"SelfReference":  "z = z\n",
		"Import":         "import os\nz = os\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, ok := typeAt(t, b, src, "z")
			assert.False(t, ok)
		})
	}
}

func TestInferType_DepthLimit(t *testing.T) {
	src := "a = 1\nb = a\nc = b\nd = c\ne = d\n"

	got, ok := typeAt(t, NewBackend(0), src, "e =")
	require.True(t, ok)
	assert.Equal(t, "int", got)

	_, ok = typeAt(t, NewBackend(3), src, "e =")
	assert.False(t, ok)
}

func TestInferType_ExpressionNestingLimit(t *testing.T) {
	const depth = 400
	src := "deep = " + strings.Repeat("[", depth) + "1" + strings.Repeat("]", depth) + "\n"

	got, ok := typeAt(t, NewBackend(0), src, "deep")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(got, "list[list["), got)
	assert.Less(t, strings.Count(got, "list["), depth)
	assert.LessOrEqual(t, strings.Count(got, "list["), maxExprDepth)
	assert.Contains(t, got, "Any")

	shallow, ok := typeAt(t, NewBackend(0), "flat = [[1]]\n", "flat")
	require.True(t, ok)
	assert.Equal(t, "list[list[int]]", shallow)
}

type foreignNode struct{}

func (foreignNode) Kind() string     { return "identifier" }
func (foreignNode) Text() string     { return "x" }
func (foreignNode) StartOffset() int { return 0 }
func (foreignNode) EndOffset() int   { return 1 }

func TestInferType_RejectsForeignNodes(t *testing.T) {
	session, err := NewBackend(0).BeginRead()
	require.NoError(t, err)
	defer session.Release()

	_, ok, err := session.InferType(foreignNode{}, nil)
	assert.False(t, ok)
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}

func TestBackend_CloseWaitsForSessions(t *testing.T) {
	b := NewBackend(0)
	session, err := b.BeginRead()
	require.NoError(t, err)

	closed := make(chan struct{})
	go func() {
		b.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a session was open")
	case <-time.After(50 * time.Millisecond):
	}

	session.Release()
	session.Release()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after Release")
	}

	_, err = b.BeginRead()
	assert.True(t, errors.IsCode(err, errors.CodeClosed))
}
