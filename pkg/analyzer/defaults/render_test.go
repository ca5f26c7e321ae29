package defaults

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDefault(t *testing.T) {
	tests := []struct {
		expr  string
		shape DefaultShape
		want  string
	}{
		{"None", ShapeNone, "None"},
		{"[]", ShapeList, "[...]"},
		{"[1, 2]", ShapeList, "[...]"},
		{"{}", ShapeMapping, "{...}"},
		{`{"a": 1}`, ShapeMapping, "{...}"},
		{"{1}", ShapeMapping, "{...}"},
		{"()", ShapeTuple, "(...)"},
		{"(1, 2)", ShapeTuple, "(...)"},
		{"dict()", ShapeEmptyCtor, "dict()"},
		{"list()", ShapeEmptyCtor, "list()"},
		{"set()", ShapeEmptyCtor, "set()"},
		{"tuple()", ShapeEmptyCtor, "tuple()"},
		{"frozenset()", ShapeEmptyCtor, "frozenset()"},
		{"dict(a=1)", ShapeCall, "<call>"},
		{"list(items)", ShapeCall, "<call>"},
		{"Factory.create()", ShapeCall, "<call>"},
		{"make()", ShapeCall, "<call>"},
		{"lambda: 1", ShapeLambda, "lambda"},
		{"-1", ShapeNegative, "-1"},
		{"-2.5", ShapeNegative, "-2.5"},
		{"-x", ShapeOther, "<expr>"},
		{"10", ShapeLiteral, "10"},
		{"1.5", ShapeLiteral, "1.5"},
		{`"[INFO]"`, ShapeLiteral, `"[INFO]"`},
		{"'x'", ShapeLiteral, "'x'"},
		{"True", ShapeLiteral, "True"},
		{"False", ShapeLiteral, "False"},
		{"DEFAULT_VALUE", ShapeName, "DEFAULT_VALUE"},
		{"(None)", ShapeNone, "None"},
		{"(1)", ShapeLiteral, "1"},
		{"(-1)", ShapeNegative, "-1"},
		{"((x))", ShapeName, "x"},
		{"([1])", ShapeList, "[...]"},
		{`f"x{y}"`, ShapeOther, "<expr>"},
		{`F"plain"`, ShapeOther, "<expr>"},
		{`rf"{a}"`, ShapeOther, "<expr>"},
		{`"a" f"{b}"`, ShapeOther, "<expr>"},
		{`r"raw"`, ShapeLiteral, `r"raw"`},
		{`b"bytes"`, ShapeLiteral, `b"bytes"`},
		{`"a" "b"`, ShapeLiteral, `"a" "b"`},
		{"1 + 2", ShapeOther, "<expr>"},
		{"os.sep", ShapeOther, "<expr>"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			facts := extractSource(t, "def f(x=" + tt.expr + "):\n    pass\n")
			require.Len(t, facts.Definitions, 1)
			require.Len(t, facts.Definitions[0].Params, 1)

			got := facts.Definitions[0].Params[0].Default
			assert.Equal(t, tt.shape, got.Shape)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDefaultValueString(t *testing.T) {
	assert.Equal(t, "<expr>", DefaultValue{}.String())
	assert.Equal(t, "<expr>", DefaultValue{Shape: ShapeOther, Text: "a.b"}.String())
	assert.Equal(t, "<call>", DefaultValue{Shape: ShapeCall, Text: "ignored"}.String())
	assert.Equal(t, "-3", DefaultValue{Shape: ShapeNegative, Text: "3"}.String())
	assert.Equal(t, "NAME", DefaultValue{Shape: ShapeName, Text: "NAME"}.String())
}

func TestTypedDefaultRendering(t *testing.T) {
	facts := extractSource(t, `
def get_config(path: str, fallback: Optional[str] = None, retries: int = -3):
    pass
`)

	def := definitionNamed(t, facts, "get_config")
	require.Len(t, def.Params, 3)
	assert.Equal(t, "None", def.Params[1].Default.String())
	assert.Equal(t, "-3", def.Params[2].Default.String())
}
