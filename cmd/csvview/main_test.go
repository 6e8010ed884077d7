package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/CaptShanks/csvprism/internal/parser"
)

func usePlainProfile(t *testing.T) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(termenv.TrueColor)
	})
}

func TestColumnWidths(t *testing.T) {
	table := parser.Parse("name, age\nAlexandra, 3\nBo, 1000")

	widths := columnWidths(table)
	if len(widths) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(widths))
	}
	if widths[0] != len("Alexandra") {
		t.Errorf("widths[0] = %d, want %d", widths[0], len("Alexandra"))
	}
	if widths[1] != len("1000") {
		t.Errorf("widths[1] = %d, want %d", widths[1], len("1000"))
	}
}

func TestColumnWidthsCapped(t *testing.T) {
	long := strings.Repeat("x", maxCellWidth+20)
	table := parser.Table{{long}}

	widths := columnWidths(table)
	if widths[0] != maxCellWidth {
		t.Errorf("widths[0] = %d, want cap %d", widths[0], maxCellWidth)
	}
}

func TestFormatCellTruncates(t *testing.T) {
	got := formatCell("abcdefghij", 5)
	if runes := len([]rune(got)); runes != 5 {
		t.Errorf("formatted width = %d, want 5 (%q)", runes, got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis tail, got %q", got)
	}

	got = formatCell("ab", 5)
	if got != "ab   " {
		t.Errorf("expected padded cell, got %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	usePlainProfile(t)

	table := parser.Parse("name, city\nAlice, New York\nBob, Boston")
	out := renderTable("users.csv", table)

	if !strings.Contains(out, "users.csv (3 rows, 2 columns)") {
		t.Errorf("missing title line:\n%s", out)
	}
	if !strings.Contains(out, "name   city") {
		t.Errorf("header not aligned to widest cell:\n%s", out)
	}
	if !strings.Contains(out, "2  Alice  New York") {
		t.Errorf("missing first data row:\n%s", out)
	}
	if !strings.Contains(out, "3  Bob    Boston") {
		t.Errorf("missing second data row:\n%s", out)
	}
}
