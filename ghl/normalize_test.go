// ABOUTME: Tests for person name normalization
// ABOUTME: Covers casing, whitespace handling, nil input, and idempotence
package ghl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"JOHN michael DOE", "John Michael Doe"},
		{"jane smith", "Jane Smith"},
		{"jOhN sMiTh", "John Smith"},
		{"", ""},
		{"   ", ""},
		{"  john  ", "John"},
		{"\tjohn doe", "John Doe"},
		{"john doe\n", "John Doe"},
		{"jane  doe", "Jane  Doe"},
		{"mary-jane o'neil", "Mary-jane O'neil"},
		{"élodie DURAND", "Élodie Durand"},
		{"x", "X"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestNormalizeNamePtr(t *testing.T) {
	assert.Equal(t, "", NormalizeNamePtr(nil))

	name := "ada LOVELACE"
	assert.Equal(t, "Ada Lovelace", NormalizeNamePtr(&name))
}

func TestNormalizeNameIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"john",
		"JOHN michael DOE",
		"\tjohn",
		"john\tdoe",
		"a  b ",
		"  leading and trailing  ",
		"ÉLODIE",
		"o'BRIEN-smith",
		"123 main",
	}

	for _, in := range inputs {
		once := NormalizeName(in)
		assert.Equal(t, once, NormalizeName(once), "input %q", in)
	}
}
