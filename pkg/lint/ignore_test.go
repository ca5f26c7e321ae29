package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldIgnore(t *testing.T) {
	lines := []string{
		"def f(x=1):  # noqa",
		"def g(x=1):  # noqa: SLOP010",
		"def h(x=1):  # noqa: E501, SLOP010",
		"def i(x=1):  # noqa: E501",
		"def j(x=1):",
		"def k(x=1):  # NOQA:slop010",
		"s = '# not a comment'",
	}
	h := NewIgnoreHandler(lines)

	tests := []struct {
		line int
		code string
		want bool
	}{
		{1, "SLOP010", true},
		{1, "E501", true},
		{2, "SLOP010", true},
		{2, "E501", false},
		{3, "SLOP010", true},
		{3, "E501", true},
		{4, "SLOP010", false},
		{5, "SLOP010", false},
		{6, "SLOP010", true},
		{7, "SLOP010", false},
		{99, "SLOP010", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, h.ShouldIgnore(tt.line, tt.code), "line %d code %s", tt.line, tt.code)
	}
}

func TestFromSource(t *testing.T) {
	h := FromSource([]byte("x = 1\ny = 2  # noqa\n"))
	assert.False(t, h.ShouldIgnore(1, "SLOP010"))
	assert.True(t, h.ShouldIgnore(2, "SLOP010"))
	assert.Empty(t, FromSource([]byte("x = 1\n")).lines)
}

func TestNilHandler(t *testing.T) {
	var h *IgnoreHandler
	assert.False(t, h.ShouldIgnore(1, "SLOP010"))
}
