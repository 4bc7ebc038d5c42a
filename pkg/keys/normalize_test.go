package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "Engineer", want: "engineer"},
		{name: "trims", input: "  data analyst  ", want: "data analyst"},
		{name: "collapses internal whitespace", input: "senior\t\t software \n engineer", want: "senior software engineer"},
		{name: "folds case beyond ASCII", input: "STRASSE", want: "strasse"},
		{name: "folds sharp s", input: "Straße", want: "strasse"},
		{name: "applies NFKC compatibility forms", input: "ﬁnance", want: "finance"},
		{name: "empty stays empty", input: "", want: ""},
		{name: "whitespace only becomes empty", input: " \t\n ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Engineer", "  A  B  C  ", "Straße", "ﬁnance", "007", "", "Ｆｕｌｌｗｉｄｔｈ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize(normalize(%q))", in)
	}
}

func TestFoldNumeric(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"007", "7"},
		{"7", "7"},
		{"7.0", "7"},
		{"7.50", "7.5"},
		{"-3", "-3"},
		{"P-101", "P-101"}, // not numeric, unchanged
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, foldNumeric(tt.input), "foldNumeric(%q)", tt.input)
	}
}
