package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Excellence in Engineering", "excellence-in-engineering"},
		{"  Leading Whitespace", "leading-whitespace"},
		{"Already-Hyphenated Name", "already-hyphenated-name"},
		{"Weird!!! Chars@@@ Here", "weird-chars-here"},
		{"Multiple   Spaces", "multiple-spaces"},
		{"---edge---", "edge"},
		{"UPPERCASE", "uppercase"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GenerateSlug(tt.input), "input %q", tt.input)
	}
}

func TestIsValidSlug(t *testing.T) {
	assert.True(t, IsValidSlug("my-badge"))
	assert.True(t, IsValidSlug("a"))
	assert.True(t, IsValidSlug("badge-2024"))

	assert.False(t, IsValidSlug(""))
	assert.False(t, IsValidSlug("-leading"))
	assert.False(t, IsValidSlug("trailing-"))
	assert.False(t, IsValidSlug("UpperCase"))
	assert.False(t, IsValidSlug("spaces here"))
}
