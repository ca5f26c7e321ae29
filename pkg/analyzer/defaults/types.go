package defaults

import "strings"

// Code is the issue code reported for a default value no caller relies on.
const Code = "SLOP010"

// ParamKind classifies how a parameter can be bound by a call.
type ParamKind string

const (
	KindPositionalOnly      ParamKind = "positional_only"
	KindPositionalOrKeyword ParamKind = "positional_or_keyword"
	KindKeywordOnly         ParamKind = "keyword_only"
	KindVarPositional       ParamKind = "var_positional"
	KindVarKeyword          ParamKind = "var_keyword"
)

// String returns the string representation.
func (k ParamKind) String() string {
	return string(k)
}

// Positional reports whether arguments can bind to the parameter by position.
func (k ParamKind) Positional() bool {
	return k == KindPositionalOnly || k == KindPositionalOrKeyword
}

// Variadic reports whether the parameter collects extra arguments.
func (k ParamKind) Variadic() bool {
	return k == KindVarPositional || k == KindVarKeyword
}

// Parameter is one formal parameter of a Definition.
type Parameter struct {
	Name string    `json:"name"`
	Kind ParamKind `json:"kind"`
	// Index is the zero-based position among positional parameters,
	// excluding an implicit receiver. -1 for keyword-only and variadic parameters.
	Index      int          `json:"index"`
	HasDefault bool         `json:"has_default"`
	Default    DefaultValue `json:"default,omitzero"`
	Line       uint32       `json:"line"`
	Column     uint32       `json:"column"`
	// Suppressed is set when the parameter's line carries a matching noqa comment.
	Suppressed bool `json:"suppressed,omitempty"`
}

// Definition is a function or method that declares at least one default.
type Definition struct {
	Name   string      `json:"name"`
	File   string      `json:"file"`
	Line   uint32      `json:"line"`
	Column uint32      `json:"column"`
	Params []Parameter `json:"params"`
	// Receiver names the implicitly bound first parameter of a method
	// (usually self or cls). Empty for plain functions and staticmethods.
	Receiver   string `json:"receiver,omitempty"`
	Async      bool   `json:"async,omitempty"`
	Suppressed bool   `json:"suppressed,omitempty"`
}

// IsPrivate reports whether the name starts with exactly one underscore.
func (d *Definition) IsPrivate() bool {
	return isPrivateName(d.Name)
}

// HasVariadic reports whether any parameter is *args or **kwargs.
func (d *Definition) HasVariadic() bool {
	for _, p := range d.Params {
		if p.Kind.Variadic() {
			return true
		}
	}
	return false
}

// IsMethod reports whether the definition binds an implicit receiver.
func (d *Definition) IsMethod() bool {
	return d.Receiver != ""
}

func isPrivateName(name string) bool {
	return strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "__")
}

// CallSite is one call expression whose callee resolved to a simple name.
type CallSite struct {
	File       string   `json:"file"`
	Line       uint32   `json:"line"`
	Callee     string   `json:"callee"`
	Positional int      `json:"positional"`
	Keywords   []string `json:"keywords,omitempty"`
	StarArgs   bool     `json:"star_args,omitempty"`
	StarKwargs bool     `json:"star_kwargs,omitempty"`
}

// HasKeyword reports whether the call passes name as a keyword argument.
func (c *CallSite) HasKeyword(name string) bool {
	for _, kw := range c.Keywords {
		if kw == name {
			return true
		}
	}
	return false
}

// Spread reports whether the call uses *expr or **expr.
func (c *CallSite) Spread() bool {
	return c.StarArgs || c.StarKwargs
}

// Supplies reports whether the call passes an explicit value for p.
// Callers must check Spread first; a spread call never supplies anything
// decidably.
func (c *CallSite) Supplies(p Parameter) bool {
	switch p.Kind {
	case KindPositionalOnly:
		return p.Index < c.Positional
	case KindPositionalOrKeyword:
		return p.Index < c.Positional || c.HasKeyword(p.Name)
	case KindKeywordOnly:
		return c.HasKeyword(p.Name)
	default:
		return false
	}
}

// FileFacts holds everything extracted from one source file.
type FileFacts struct {
	Path        string       `json:"path"`
	Definitions []Definition `json:"definitions"`
	Calls       []CallSite   `json:"calls"`
}
