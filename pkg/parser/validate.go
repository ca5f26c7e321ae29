package parser

import sitter "github.com/smacker/go-tree-sitter"

// checkSyntax finds constructs the tree-sitter grammar parses cleanly but
// Python's compiler rejects. It returns the first offending node and a
// description, or nil.
func checkSyntax(root *sitter.Node) (*sitter.Node, string) {
	var (
		bad *sitter.Node
		msg string
	)
	WalkTyped(root, nil, func(node *sitter.Node, nodeType string, _ []byte) bool {
		if bad != nil {
			return false
		}
		switch nodeType {
		case "print_statement":
			bad, msg = node, "print statement is not supported"
		case "exec_statement":
			bad, msg = node, "exec statement is not supported"
		case "parameters", "lambda_parameters":
			bad, msg = checkParameters(node)
		case "argument_list":
			bad, msg = checkArguments(node)
		}
		return bad == nil
	})
	return bad, msg
}

// checkParameters rejects a positional parameter without a default after
// one with a default. Parameters after * or *args are keyword-only and exempt.
func checkParameters(node *sitter.Node) (*sitter.Node, string) {
	var defaulted, starred bool
	for _, child := range NamedChildren(node) {
		switch child.Type() {
		case "default_parameter", "typed_default_parameter":
			if !starred {
				defaulted = true
			}
		case "identifier":
			if defaulted && !starred {
				return child, "parameter without a default follows parameter with a default"
			}
		case "typed_parameter":
			switch inner := firstNamed(child); {
			case inner != nil && inner.Type() == "list_splat_pattern":
				starred = true
			case inner != nil && inner.Type() == "dictionary_splat_pattern":
			case defaulted && !starred:
				return child, "parameter without a default follows parameter with a default"
			}
		case "list_splat_pattern", "keyword_separator":
			starred = true
		}
	}
	return nil, ""
}

// checkArguments applies Python's call argument ordering: no positional
// argument after a keyword argument or **, and no * after **.
func checkArguments(node *sitter.Node) (*sitter.Node, string) {
	var keyword, kwSplat bool
	for _, child := range NamedChildren(node) {
		switch child.Type() {
		case "keyword_argument":
			keyword = true
		case "dictionary_splat":
			kwSplat = true
		case "list_splat":
			if kwSplat {
				return child, "iterable argument unpacking follows keyword argument unpacking"
			}
		default:
			if kwSplat {
				return child, "positional argument follows keyword argument unpacking"
			}
			if keyword {
				return child, "positional argument follows keyword argument"
			}
		}
	}
	return nil, ""
}

func firstNamed(node *sitter.Node) *sitter.Node {
	if children := NamedChildren(node); len(children) > 0 {
		return children[0]
	}
	return nil
}
