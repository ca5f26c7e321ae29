package defaults

import (
	"github.com/panbanda/noslop/pkg/lint"
	"github.com/panbanda/noslop/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// extractFile parses path and collects its definitions and call sites.
func extractFile(psr *parser.Parser, path string, source []byte) (*FileFacts, error) {
	result, err := psr.Parse(source, path)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	return extract(result, lint.FromSource(source)), nil
}

// extract performs a single walk over the tree. Definitions without any
// defaulted parameter are dropped here; visibility filtering happens later
// so cached facts do not depend on options.
func extract(result *parser.ParseResult, ignores *lint.IgnoreHandler) *FileFacts {
	facts := &FileFacts{
		Path:        result.Path,
		Definitions: make([]Definition, 0),
		Calls:       make([]CallSite, 0),
	}
	e := &extractor{
		path:    result.Path,
		source:  result.Source,
		ignores: ignores,
		facts:   facts,
	}
	e.visit(result.Tree.RootNode(), false)
	return facts
}

type extractor struct {
	path    string
	source  []byte
	ignores *lint.IgnoreHandler
	facts   *FileFacts
}

// visit walks node. inClassBody is true only for direct statements of a class body.
func (e *extractor) visit(node *sitter.Node, inClassBody bool) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "class_definition":
		e.visit(node.ChildByFieldName("superclasses"), false)
		if body := node.ChildByFieldName("body"); body != nil {
			for i := range int(body.NamedChildCount()) {
				e.visit(body.NamedChild(i), true)
			}
		}
		return

	case "decorated_definition":
		def := node.ChildByFieldName("definition")
		for i := range int(node.NamedChildCount()) {
			child := node.NamedChild(i)
			if child.Type() == "decorator" {
				e.visit(child, false)
			}
		}
		if def != nil && def.Type() == "function_definition" {
			e.function(def, inClassBody, decoratorNames(node, e.source))
			return
		}
		e.visit(def, inClassBody)
		return

	case "function_definition":
		e.function(node, inClassBody, nil)
		return

	case "call":
		e.call(node)
	}

	for i := range int(node.NamedChildCount()) {
		e.visit(node.NamedChild(i), false)
	}
}

// function records a definition and then walks its parameters (defaults may
// contain calls) and body.
func (e *extractor) function(node *sitter.Node, inClassBody bool, decorators []string) {
	name := parser.GetNodeText(node.ChildByFieldName("name"), e.source)
	params := node.ChildByFieldName("parameters")

	def := Definition{
		Name:   name,
		File:   e.path,
		Line:   node.StartPoint().Row + 1,
		Column: node.StartPoint().Column + 1,
		Async:  isAsync(node),
	}

	// Calls are assumed to go through an instance (obj.m(x)). A
	// class-qualified call such as Cls.m(obj, x) passes the receiver
	// explicitly and is over-counted by one positional argument.
	bindsReceiver := inClassBody && !contains(decorators, "staticmethod")
	def.Params, def.Receiver = e.parameters(params, bindsReceiver)
	def.Suppressed = e.ignores.ShouldIgnore(int(def.Line), Code)

	for _, p := range def.Params {
		if p.HasDefault {
			e.facts.Definitions = append(e.facts.Definitions, def)
			break
		}
	}

	e.visit(params, false)
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		e.visit(rt, false)
	}
	e.visit(node.ChildByFieldName("body"), false)
}

// parameters converts a parameters node. When bindsReceiver is set the first
// positional parameter is returned as the receiver instead of a Parameter.
func (e *extractor) parameters(node *sitter.Node, bindsReceiver bool) ([]Parameter, string) {
	var (
		params      []Parameter
		receiver    string
		index       int
		keywordOnly bool
	)

	addPositional := func(p Parameter) {
		if bindsReceiver && receiver == "" && !keywordOnly {
			receiver = p.Name
			return
		}
		if keywordOnly {
			p.Kind = KindKeywordOnly
			p.Index = -1
		} else {
			p.Kind = KindPositionalOrKeyword
			p.Index = index
			index++
		}
		params = append(params, p)
	}

	for _, child := range parser.NamedChildren(node) {
		p := Parameter{
			Line:   child.StartPoint().Row + 1,
			Column: child.StartPoint().Column + 1,
			Index:  -1,
		}

		switch child.Type() {
		case "identifier":
			p.Name = parser.GetNodeText(child, e.source)
			addPositional(p)

		case "typed_parameter":
			inner := firstNamedChild(child)
			switch {
			case inner == nil:
				continue
			case inner.Type() == "list_splat_pattern":
				p.Name = splatName(inner, e.source)
				p.Kind = KindVarPositional
				keywordOnly = true
				params = append(params, p)
			case inner.Type() == "dictionary_splat_pattern":
				p.Name = splatName(inner, e.source)
				p.Kind = KindVarKeyword
				params = append(params, p)
			default:
				p.Name = parser.GetNodeText(inner, e.source)
				addPositional(p)
			}

		case "default_parameter", "typed_default_parameter":
			p.Name = parser.GetNodeText(child.ChildByFieldName("name"), e.source)
			p.HasDefault = true
			p.Default = classifyDefault(child.ChildByFieldName("value"), e.source)
			p.Suppressed = e.ignores.ShouldIgnore(int(p.Line), Code)
			addPositional(p)

		case "list_splat_pattern":
			p.Name = splatName(child, e.source)
			p.Kind = KindVarPositional
			keywordOnly = true
			params = append(params, p)

		case "dictionary_splat_pattern":
			p.Name = splatName(child, e.source)
			p.Kind = KindVarKeyword
			params = append(params, p)

		case "keyword_separator":
			keywordOnly = true

		case "positional_separator":
			for i := range params {
				if params[i].Kind == KindPositionalOrKeyword {
					params[i].Kind = KindPositionalOnly
				}
			}
		}
	}

	return params, receiver
}

// call records a call site whose callee resolves to a simple name.
// Calls on other callee shapes (call results, subscripts, lambdas) are dropped.
func (e *extractor) call(node *sitter.Node) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}

	var callee string
	switch fn.Type() {
	case "identifier":
		callee = parser.GetNodeText(fn, e.source)
	case "attribute":
		callee = parser.GetNodeText(fn.ChildByFieldName("attribute"), e.source)
	}
	if callee == "" {
		return
	}

	site := CallSite{
		File:   e.path,
		Line:   node.StartPoint().Row + 1,
		Callee: callee,
	}

	args := node.ChildByFieldName("arguments")
	if args != nil && args.Type() == "generator_expression" {
		// f(x for x in xs)
		site.Positional = 1
	} else {
		for _, arg := range parser.NamedChildren(args) {
			switch arg.Type() {
			case "keyword_argument":
				site.Keywords = append(site.Keywords, parser.GetNodeText(arg.ChildByFieldName("name"), e.source))
			case "list_splat":
				site.StarArgs = true
			case "dictionary_splat":
				site.StarKwargs = true
			default:
				site.Positional++
			}
		}
	}

	e.facts.Calls = append(e.facts.Calls, site)
}

func isAsync(node *sitter.Node) bool {
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if child.Type() == "async" {
			return true
		}
		if child.Type() == "def" {
			return false
		}
	}
	return false
}

// decoratorNames returns the trailing simple name of each decorator,
// e.g. "staticmethod" for both @staticmethod and @builtins.staticmethod.
func decoratorNames(node *sitter.Node, source []byte) []string {
	var names []string
	for i := range int(node.NamedChildCount()) {
		dec := node.NamedChild(i)
		if dec.Type() != "decorator" {
			continue
		}
		expr := firstNamedChild(dec)
		if expr != nil && expr.Type() == "call" {
			expr = expr.ChildByFieldName("function")
		}
		if expr == nil {
			continue
		}
		switch expr.Type() {
		case "identifier":
			names = append(names, parser.GetNodeText(expr, source))
		case "attribute":
			names = append(names, parser.GetNodeText(expr.ChildByFieldName("attribute"), source))
		}
	}
	return names
}

func firstNamedChild(node *sitter.Node) *sitter.Node {
	children := parser.NamedChildren(node)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

func splatName(node *sitter.Node, source []byte) string {
	if id := firstNamedChild(node); id != nil {
		return parser.GetNodeText(id, source)
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
