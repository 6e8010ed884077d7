package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/CaptShanks/csvprism/internal/history"
	"github.com/CaptShanks/csvprism/internal/report"
)

// useTempHome redirects the history directory into a scratch home
func useTempHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestRunCompareModeIdentical(t *testing.T) {
	useTempHome(t)

	file1 := writeTempCSV(t, "a.csv", "name, age\nAlice, 30\n")
	file2 := writeTempCSV(t, "b.csv", "name, age\nAlice, 30\n")

	if code := runCompareMode(file1, file2, ""); code != 0 {
		t.Errorf("exit code = %d, want 0 for identical files", code)
	}
}

func TestRunCompareModeDiffers(t *testing.T) {
	useTempHome(t)

	file1 := writeTempCSV(t, "a.csv", "name, age\nAlice, 30\n")
	file2 := writeTempCSV(t, "b.csv", "name, age\nAlice, 31\n")

	if code := runCompareMode(file1, file2, ""); code != 1 {
		t.Errorf("exit code = %d, want 1 when files differ", code)
	}
}

func TestRunCompareModeMissingFile(t *testing.T) {
	useTempHome(t)

	file1 := writeTempCSV(t, "a.csv", "name\nAlice\n")
	missing := filepath.Join(t.TempDir(), "nope.csv")

	if code := runCompareMode(file1, missing, ""); code != 1 {
		t.Errorf("exit code = %d, want 1 for missing file", code)
	}
	if code := runCompareMode(missing, file1, ""); code != 1 {
		t.Errorf("exit code = %d, want 1 for missing first file", code)
	}
}

func TestRunCompareModeWritesReport(t *testing.T) {
	useTempHome(t)

	file1 := writeTempCSV(t, "a.csv", "name, age\nAlice, 30\nBob, 25\n")
	file2 := writeTempCSV(t, "b.csv", "name, age\nAlice, 31\n")
	outputFile := filepath.Join(t.TempDir(), "report.json")

	if code := runCompareMode(file1, file2, outputFile); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}

	data, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}

	var rec report.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if rec.TotalDifferences != len(rec.Differences) {
		t.Errorf("totalDifferences = %d, but %d differences listed",
			rec.TotalDifferences, len(rec.Differences))
	}
	if rec.TotalDifferences == 0 {
		t.Error("expected differences in report")
	}
	if rec.File1 != file1 || rec.File2 != file2 {
		t.Errorf("report names %q, %q, want %q, %q", rec.File1, rec.File2, file1, file2)
	}
}

func TestRunCompareModeSavesHistory(t *testing.T) {
	useTempHome(t)

	file1 := writeTempCSV(t, "a.csv", "name\nAlice\n")
	file2 := writeTempCSV(t, "b.csv", "name\nBob\n")

	runCompareMode(file1, file2, "")

	entries, err := history.ListEntries("")
	if err != nil {
		t.Fatalf("listing history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	if entries[0].Command != "compare" {
		t.Errorf("history command = %q, want %q", entries[0].Command, "compare")
	}
	if entries[0].Status != history.StatusDiffers {
		t.Errorf("history status = %q, want %q", entries[0].Status, history.StatusDiffers)
	}

	// The stored content must round-trip back into the two inputs
	content, err := os.ReadFile(entries[0].Path)
	if err != nil {
		t.Fatalf("reading history file: %v", err)
	}
	name1, name2, content1, content2, ok := history.ParseCompareContent(string(content))
	if !ok {
		t.Fatal("expected history content to parse")
	}
	if name1 != file1 || name2 != file2 {
		t.Errorf("stored names %q, %q, want %q, %q", name1, name2, file1, file2)
	}
	if content1 != "name\nAlice\n" {
		t.Errorf("stored content1 = %q", content1)
	}
	if content2 != "name\nBob\n" {
		t.Errorf("stored content2 = %q", content2)
	}
}

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"42", true},
		{"0", true},
		{"", false},
		{"-1", false},
		{"1.5", false},
		{"abc", false},
	}
	for _, tt := range tests {
		if got := isNumeric(tt.in); got != tt.want {
			t.Errorf("isNumeric(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMaxDiffsFromEnv(t *testing.T) {
	t.Setenv("CSVPRISM_MAX_DIFFS", "")
	if got := maxDiffsFromEnv(); got != 50 {
		t.Errorf("default maxDiffs = %d, want 50", got)
	}

	t.Setenv("CSVPRISM_MAX_DIFFS", "10")
	if got := maxDiffsFromEnv(); got != 10 {
		t.Errorf("maxDiffs = %d, want 10", got)
	}

	t.Setenv("CSVPRISM_MAX_DIFFS", "bogus")
	if got := maxDiffsFromEnv(); got != 50 {
		t.Errorf("maxDiffs with bad value = %d, want 50", got)
	}
}
