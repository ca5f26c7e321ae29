package defaults

import (
	"strings"

	"github.com/panbanda/noslop/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// DefaultShape is the syntactic category of a default value expression.
type DefaultShape string

const (
	ShapeNone      DefaultShape = "none"
	ShapeList      DefaultShape = "list"
	ShapeMapping   DefaultShape = "mapping" // dict or set literal
	ShapeTuple     DefaultShape = "tuple"
	ShapeEmptyCtor DefaultShape = "empty_constructor"
	ShapeLambda    DefaultShape = "lambda"
	ShapeNegative  DefaultShape = "negative_number"
	ShapeLiteral   DefaultShape = "literal"
	ShapeName      DefaultShape = "name"
	ShapeCall      DefaultShape = "call"
	ShapeOther     DefaultShape = "expression"
)

// DefaultValue is a classified default expression. Text carries the source
// text for shapes whose rendering depends on it.
type DefaultValue struct {
	Shape DefaultShape `json:"shape"`
	Text  string       `json:"text,omitempty"`
}

// String renders the default for reports.
func (d DefaultValue) String() string {
	switch d.Shape {
	case ShapeNone:
		return "None"
	case ShapeList:
		return "[...]"
	case ShapeMapping:
		return "{...}"
	case ShapeTuple:
		return "(...)"
	case ShapeLambda:
		return "lambda"
	case ShapeNegative:
		return "-" + d.Text
	case ShapeEmptyCtor, ShapeLiteral, ShapeName:
		return d.Text
	case ShapeCall:
		return "<call>"
	default:
		return "<expr>"
	}
}

// emptyConstructors render as their call text when called with no arguments.
var emptyConstructors = map[string]bool{
	"dict":      true,
	"list":      true,
	"set":       true,
	"tuple":     true,
	"frozenset": true,
}

var literalTypes = map[string]bool{
	"integer":             true,
	"float":               true,
	"string":              true,
	"concatenated_string": true,
	"true":                true,
	"false":               true,
}

// classifyDefault maps a default value node to its shape. First match wins.
// Redundant parentheses are ignored: (None) renders as None.
func classifyDefault(node *sitter.Node, source []byte) DefaultValue {
	for node != nil && node.Type() == "parenthesized_expression" {
		node = firstNamedChild(node)
	}
	if node == nil {
		return DefaultValue{Shape: ShapeOther}
	}

	switch node.Type() {
	case "none":
		return DefaultValue{Shape: ShapeNone}
	case "list":
		return DefaultValue{Shape: ShapeList}
	case "dictionary", "set":
		return DefaultValue{Shape: ShapeMapping}
	case "tuple":
		return DefaultValue{Shape: ShapeTuple}
	case "call":
		fn := node.ChildByFieldName("function")
		if fn != nil && fn.Type() == "identifier" && emptyConstructors[parser.GetNodeText(fn, source)] {
			args := node.ChildByFieldName("arguments")
			if args != nil && args.Type() == "argument_list" && len(parser.NamedChildren(args)) == 0 {
				return DefaultValue{Shape: ShapeEmptyCtor, Text: parser.GetNodeText(node, source)}
			}
		}
		return DefaultValue{Shape: ShapeCall}
	case "lambda":
		return DefaultValue{Shape: ShapeLambda}
	case "unary_operator":
		op := node.ChildByFieldName("operator")
		arg := node.ChildByFieldName("argument")
		if op != nil && arg != nil && op.Type() == "-" && (arg.Type() == "integer" || arg.Type() == "float") {
			return DefaultValue{Shape: ShapeNegative, Text: parser.GetNodeText(arg, source)}
		}
		return DefaultValue{Shape: ShapeOther}
	case "identifier":
		return DefaultValue{Shape: ShapeName, Text: parser.GetNodeText(node, source)}
	}

	if literalTypes[node.Type()] && !isFormatString(node, source) {
		return DefaultValue{Shape: ShapeLiteral, Text: parser.GetNodeText(node, source)}
	}
	return DefaultValue{Shape: ShapeOther}
}

// isFormatString reports whether a string, or any part of an implicitly
// concatenated string, is an f-string. Those are expressions, not literals.
func isFormatString(node *sitter.Node, source []byte) bool {
	switch node.Type() {
	case "string":
		text := parser.GetNodeText(node, source)
		prefix := text[:max(strings.IndexAny(text, `"'`), 0)]
		return strings.ContainsAny(prefix, "fF")
	case "concatenated_string":
		for _, part := range parser.NamedChildren(node) {
			if isFormatString(part, source) {
				return true
			}
		}
	}
	return false
}
