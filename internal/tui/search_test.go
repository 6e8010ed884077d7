package tui

import (
	"strings"
	"testing"
)

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		text   string
		query  string
		expect bool
	}{
		{"cell row 2 column 3 New York Boston", "york", true},
		{"cell row 2 column 3 New York Boston", "yrk", true},
		{"missing row 4 b.csv Bob 25", "bob", true},
		{"missing row 4 b.csv Bob 25", "row4", true},
		{"row count 3 4", "count", true},
		{"column count row 2 3 2", "colcount", true},
		{"cell row 5 column 1 alpha beta", "xyz", false},
		{"boston", "bstn", true},
		{"boston", "bsnt", false},
		{"New York", "ny", true},
		{"", "a", false},
		{"abc", "", true},
	}
	for _, tt := range tests {
		got := fuzzyMatch(tt.text, tt.query)
		if got != tt.expect {
			t.Errorf("fuzzyMatch(%q, %q) = %v, want %v", tt.text, tt.query, got, tt.expect)
		}
	}
}

func TestSearchableText(t *testing.T) {
	d := compareDiff(t, "a.csv", "b.csv",
		"name, age\nAlice, 30",
		"name, age\nAlice, 31",
	)
	if len(d) != 1 {
		t.Fatalf("expected 1 difference, got %d", len(d))
	}

	text := searchableText(d[0])
	for _, want := range []string{"row 2", "column 2", "30", "31"} {
		if !strings.Contains(text, want) {
			t.Errorf("searchable text %q missing %q", text, want)
		}
	}
}
