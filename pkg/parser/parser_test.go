package parser

import (
	"errors"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

func TestNew(t *testing.T) {
	p := New()
	if p == nil {
		t.Fatal("New() returned nil")
	}
	if p.parser == nil {
		t.Error("parser field is nil")
	}
	p.Close()
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"script.py", LangPython},
		{"pkg/module/SCRIPT.PY", LangPython},
		{"types.pyi", LangUnknown},
		{"main.go", LangUnknown},
		{"file.txt", LangUnknown},
		{"file", LangUnknown},
		{".py", LangPython},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectLanguage(tt.path); got != tt.want {
				t.Errorf("DetectLanguage(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"function", "def hello():\n    print('hello')\n"},
		{"async function", "async def fetch(url, timeout=30):\n    return url\n"},
		{"class", "class A:\n    def m(self, x=1):\n        return x\n"},
		{"empty", ""},
	}

	p := New()
	defer p.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Parse([]byte(tt.source), "test.py")
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			defer result.Close()

			if result.Tree == nil {
				t.Fatal("result.Tree is nil")
			}
			if result.Language != LangPython {
				t.Errorf("result.Language = %v, want %v", result.Language, LangPython)
			}
			if string(result.Source) != tt.source {
				t.Error("result.Source doesn't match input")
			}
			if result.Path != "test.py" {
				t.Errorf("result.Path = %v, want test.py", result.Path)
			}
			if result.Tree.RootNode().Type() != "module" {
				t.Errorf("root type = %q, want module", result.Tree.RootNode().Type())
			}
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	p := New()
	defer p.Close()

	tests := []string{
		"def broken syntax",
		"def f(:\n    pass\n",
		"x = (1, 2\n",
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			result, err := p.Parse([]byte(src), "bad.py")
			if err == nil {
				result.Close()
				t.Fatal("Parse() should fail for invalid source")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error = %T, want *ParseError", err)
			}
			if perr.Path != "bad.py" {
				t.Errorf("ParseError.Path = %q, want bad.py", perr.Path)
			}
			if perr.Line == 0 {
				t.Error("ParseError.Line should be set")
			}
		})
	}
}

func TestWalk(t *testing.T) {
	p := New()
	defer p.Close()

	source := "def main():\n    x = 1\n"
	result, err := p.Parse([]byte(source), "test.py")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	defer result.Close()

	var types []string
	Walk(result.Tree.RootNode(), result.Source, func(node *sitter.Node, _ []byte) bool {
		types = append(types, node.Type())
		return true
	})

	want := map[string]bool{"module": false, "function_definition": false, "assignment": false}
	for _, typ := range types {
		if _, ok := want[typ]; ok {
			want[typ] = true
		}
	}
	for typ, found := range want {
		if !found {
			t.Errorf("Walk() did not visit %s", typ)
		}
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	p := New()
	defer p.Close()

	result, err := p.Parse([]byte("def f():\n    g()\n"), "test.py")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	defer result.Close()

	sawCall := false
	Walk(result.Tree.RootNode(), result.Source, func(node *sitter.Node, _ []byte) bool {
		if node.Type() == "call" {
			sawCall = true
		}
		return node.Type() != "function_definition"
	})
	if sawCall {
		t.Error("Walk() descended into a node whose visitor returned false")
	}
}

func TestWalkNil(t *testing.T) {
	called := false
	Walk(nil, nil, func(*sitter.Node, []byte) bool {
		called = true
		return true
	})
	if called {
		t.Error("Walk(nil) should not call visitor")
	}
}

func TestWalkTyped(t *testing.T) {
	p := New()
	defer p.Close()

	source := "def a():\n    pass\n\ndef b():\n    a()\n    a()\n"
	result, err := p.Parse([]byte(source), "test.py")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	defer result.Close()

	if got := len(nodesOfType(result.Tree.RootNode(), result.Source, "function_definition")); got != 2 {
		t.Errorf("function_definition count = %d, want 2", got)
	}
	if got := len(nodesOfType(result.Tree.RootNode(), result.Source, "call")); got != 2 {
		t.Errorf("call count = %d, want 2", got)
	}
}

func TestNamedChildrenSkipsComments(t *testing.T) {
	p := New()
	defer p.Close()

	source := "f(\n    1,  # first\n    b=2,\n)\n"
	result, err := p.Parse([]byte(source), "test.py")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	defer result.Close()

	calls := nodesOfType(result.Tree.RootNode(), result.Source, "call")
	if len(calls) != 1 {
		t.Fatalf("call count = %d, want 1", len(calls))
	}
	args := NamedChildren(calls[0].ChildByFieldName("arguments"))
	if len(args) != 2 {
		t.Fatalf("NamedChildren() = %d nodes, want 2", len(args))
	}
	if args[1].Type() != "keyword_argument" {
		t.Errorf("second argument type = %q, want keyword_argument", args[1].Type())
	}
}

func TestGetNodeText(t *testing.T) {
	p := New()
	defer p.Close()

	source := "def hello():\n    pass\n"
	result, err := p.Parse([]byte(source), "test.py")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	defer result.Close()

	fn := nodesOfType(result.Tree.RootNode(), result.Source, "function_definition")[0]
	if got := GetNodeText(fn.ChildByFieldName("name"), result.Source); got != "hello" {
		t.Errorf("GetNodeText() = %q, want hello", got)
	}
	if got := GetNodeText(nil, result.Source); got != "" {
		t.Errorf("GetNodeText(nil) = %q, want empty", got)
	}
}

func nodesOfType(root *sitter.Node, source []byte, nodeType string) []*sitter.Node {
	var found []*sitter.Node
	WalkTyped(root, source, func(node *sitter.Node, t string, _ []byte) bool {
		if t == nodeType {
			found = append(found, node)
		}
		return true
	})
	return found
}

func TestParseRejectsGrammarAcceptedErrors(t *testing.T) {
	p := New()
	defer p.Close()

	tests := []struct {
		name string
		src  string
		line uint32
		msg  string
	}{
		{"plain after default", "def f(a=1, b):\n    pass\n", 1, "parameter without a default follows parameter with a default"},
		{"typed plain after default", "def f(a: int = 1, b: int):\n    pass\n", 1, "parameter without a default follows parameter with a default"},
		{"plain after default across slash", "def f(a=1, /, b):\n    pass\n", 1, "parameter without a default follows parameter with a default"},
		{"lambda plain after default", "g = lambda a=1, b: a\n", 1, "parameter without a default follows parameter with a default"},
		{"positional after keyword", "g(1)\ng(y=2, 1)\n", 2, "positional argument follows keyword argument"},
		{"positional after double star", "g(**kw, 1)\n", 1, "positional argument follows keyword argument unpacking"},
		{"star after double star", "g(**kw, *args)\n", 1, "iterable argument unpacking follows keyword argument unpacking"},
		{"positional after keyword in class bases", "class C(metaclass=M, Base):\n    pass\n", 1, "positional argument follows keyword argument"},
		{"print statement", "x = 1\nprint h(1, 2)\n", 2, "print statement is not supported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Parse([]byte(tt.src), "bad.py")
			if err == nil {
				result.Close()
				t.Fatal("Parse() should fail")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error = %T, want *ParseError", err)
			}
			if perr.Line != tt.line {
				t.Errorf("ParseError.Line = %d, want %d", perr.Line, tt.line)
			}
			if perr.Msg != tt.msg {
				t.Errorf("ParseError.Msg = %q, want %q", perr.Msg, tt.msg)
			}
		})
	}
}

func TestParseAcceptsValidOrdering(t *testing.T) {
	p := New()
	defer p.Close()

	tests := []string{
		"def f(a, b=1, *args, c, d=2, **kw):\n    pass\n",
		"def f(a=1, *, b):\n    pass\n",
		"def f(a=1, *args: int, b: int):\n    pass\n",
		"def f(a, /, b=1, *, c):\n    pass\n",
		"g = lambda a=1, *, b: a\n",
		"g(1, *a, k=2, *b, **kw)\n",
		"g(**kw, k=1)\n",
		"g(x for x in xs)\n",
		"print(1, 2)\n",
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			result, err := p.Parse([]byte(src), "ok.py")
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			result.Close()
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	err := &ParseError{Path: "a.py", Line: 2, Column: 4}
	if got := err.Error(); got != "a.py:2:4: syntax error" {
		t.Errorf("Error() = %q", got)
	}
	err.Msg = "print statement is not supported"
	if got := err.Error(); got != "a.py:2:4: syntax error: print statement is not supported" {
		t.Errorf("Error() = %q", got)
	}
}
