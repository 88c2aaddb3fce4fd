package utils

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		expected  string
	}{
		{"plain text", "Acme Corp", 50, "Acme_Corp"},
		{"illegal chars", `a<b>c:d"e/f\g|h?i*j`, 50, "a_b_c_d_e_f_g_h_i_j"},
		{"whitespace runs", "too   many\t\tspaces", 50, "too_many_spaces"},
		{"leading and trailing spaces", "  padded  ", 50, "padded"},
		{"truncation", "abcdefghij", 5, "abcde"},
		{"truncation on rune boundary", "Großmann", 5, "Groß"},
		{"truncation never splits a rune", "Großmann", 4, "Gro"},
		{"control characters", "a\x00b\x1fc", 50, "a_b_c"},
		{"empty", "", 50, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input, tt.maxLength)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestNormalizeSubject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no prefix", "Invoice for March", "Invoice for March"},
		{"re prefix", "Re: Invoice for March", "Invoice for March"},
		{"fwd prefix", "Fwd: Invoice for March", "Invoice for March"},
		{"stacked prefixes", "Re: Fwd: Re: Invoice", "Invoice"},
		{"numbered prefix", "Re[2]: Invoice", "Invoice"},
		{"case insensitive", "RE: invoice", "invoice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSubject(tt.input))
		})
	}
}
