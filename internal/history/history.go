// Package history manages the storage and retrieval of comparison run reports.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// HistoryDir is the directory name for storing run reports
	HistoryDir = ".csvprism"

	// StatusClean indicates a run that found no differences
	StatusClean = "clean"
	// StatusDiffers indicates a run that found differences
	StatusDiffers = "differs"

	// DefaultMaxEntries caps stored reports unless CSVPRISM_HISTORY_MAX overrides it
	DefaultMaxEntries = 50
)

// Entry represents a stored run report
type Entry struct {
	Path      string
	Timestamp time.Time
	Pair      string // sanitized <file1>-vs-<file2> label
	Command   string // compare, view
	Status    string // clean, differs
	Filename  string
}

// GetHistoryDir returns the path to the history directory
func GetHistoryDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, HistoryDir), nil
}

// EnsureHistoryDir creates the history directory if it doesn't exist
func EnsureHistoryDir() (string, error) {
	dir, err := GetHistoryDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create history directory: %w", err)
	}

	return dir, nil
}

// PairLabel builds the filename label for a pair of compared files
func PairLabel(file1, file2 string) string {
	return sanitizeName(file1) + "-vs-" + sanitizeName(file2)
}

// sanitizeName makes a file name safe for history filenames
// Underscores MUST be replaced since they're used as filename delimiters
func sanitizeName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	// IMPORTANT: underscores are filename delimiters, so they must be replaced
	replacer := strings.NewReplacer(
		"_", "-",
		" ", "-",
		"/", "-",
		"\\", "-",
		":", "-",
		".", "-",
	)
	name = replacer.Replace(name)

	// Limit length to keep the combined label reasonable
	if len(name) > 14 {
		name = name[:14]
	}
	if name == "" {
		name = "file"
	}

	return name
}

// GenerateFilename creates a filename for a run report
// Format: YYYY-MM-DD_HH-MM-SS_<pair>_<command>_<status>.txt
func GenerateFilename(pair, command, status string) string {
	now := time.Now()
	return fmt.Sprintf("%s_%s_%s_%s.txt",
		now.Format("2006-01-02_15-04-05"),
		pair,
		command,
		status,
	)
}

// CreateHistoryFile stores one run report and returns its path
func CreateHistoryFile(pair, command, status, content string) (string, error) {
	dir, err := EnsureHistoryDir()
	if err != nil {
		return "", err
	}

	filename := GenerateFilename(pair, command, status)
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write history file: %w", err)
	}

	return path, nil
}

// ListEntries returns all history entries, sorted by timestamp (newest first)
func ListEntries(filterCommand string) ([]Entry, error) {
	dir, err := GetHistoryDir()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []Entry{}, nil
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".txt") {
			continue
		}

		entry, err := parseFilename(f.Name())
		if err != nil {
			continue // Skip files that don't match our format
		}

		entry.Path = filepath.Join(dir, f.Name())
		entry.Filename = f.Name()

		if filterCommand != "" && entry.Command != filterCommand {
			continue
		}

		entries = append(entries, entry)
	}

	// Sort by timestamp, newest first
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	return entries, nil
}

// parseFilename parses a history filename into an Entry
// Format: YYYY-MM-DD_HH-MM-SS_<pair>_<command>_<status>.txt
func parseFilename(filename string) (Entry, error) {
	base := strings.TrimSuffix(filename, ".txt")
	parts := strings.Split(base, "_")

	if len(parts) != 5 {
		return Entry{}, fmt.Errorf("invalid filename format")
	}

	timestamp, err := time.Parse("2006-01-02_15-04-05", parts[0]+"_"+parts[1])
	if err != nil {
		return Entry{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	command := parts[3]
	if command != "compare" && command != "view" {
		return Entry{}, fmt.Errorf("unknown command: %s", command)
	}

	status := parts[4]
	if status != StatusClean && status != StatusDiffers {
		return Entry{}, fmt.Errorf("unknown status: %s", status)
	}

	return Entry{
		Timestamp: timestamp,
		Pair:      parts[2],
		Command:   command,
		Status:    status,
	}, nil
}

// FormatEntry formats an entry for display
func FormatEntry(e Entry) string {
	status := ""
	switch e.Status {
	case StatusClean:
		status = "[CLEAN]"
	case StatusDiffers:
		status = "[DIFFERS]"
	}

	pair := e.Pair
	if pair == "" {
		pair = "-"
	}
	if len(pair) > 32 {
		pair = pair[:29] + "..."
	}

	return fmt.Sprintf("%s  %-32s  %-8s  %-9s",
		e.Timestamp.Format("2006-01-02 15:04:05"),
		pair,
		e.Command,
		status,
	)
}

// GetWorkingDir returns the current working directory name for context
func GetWorkingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return filepath.Base(wd)
}

// CreateHistoryHeader creates a header for a stored run report
func CreateHistoryHeader(command, file1, file2 string) string {
	now := time.Now()

	return fmt.Sprintf(`================================================================================
CSV-Prism History Log
================================================================================
Timestamp:   %s
Command:     %s
File 1:      %s
File 2:      %s
Working Dir: %s
================================================================================

`, now.Format("2006-01-02 15:04:05 MST"),
		command,
		file1,
		file2,
		GetWorkingDir(),
	)
}

const (
	file1Marker  = "--- FILE 1: "
	file2Marker  = "--- FILE 2: "
	markerSuffix = " ---"
)

// BuildCompareContent lays out a stored report so the original inputs
// can be recovered later and re-compared.
func BuildCompareContent(header, file1, file2, content1, content2 string) string {
	var b strings.Builder

	b.WriteString(header)
	b.WriteString(file1Marker + file1 + markerSuffix + "\n")
	b.WriteString(content1)
	if !strings.HasSuffix(content1, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(file2Marker + file2 + markerSuffix + "\n")
	b.WriteString(content2)
	if !strings.HasSuffix(content2, "\n") {
		b.WriteString("\n")
	}

	return b.String()
}

// ParseCompareContent recovers the two original inputs from a stored
// report. Contents come back newline-terminated regardless of how the
// originals ended. ok is false when the content does not carry the
// markers BuildCompareContent writes.
func ParseCompareContent(content string) (name1, name2, content1, content2 string, ok bool) {
	section := 0
	var body1, body2 []string

	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, file1Marker) && strings.HasSuffix(line, markerSuffix):
			name1 = strings.TrimSuffix(strings.TrimPrefix(line, file1Marker), markerSuffix)
			section = 1
		case strings.HasPrefix(line, file2Marker) && strings.HasSuffix(line, markerSuffix):
			name2 = strings.TrimSuffix(strings.TrimPrefix(line, file2Marker), markerSuffix)
			section = 2
		case section == 1:
			body1 = append(body1, line)
		case section == 2:
			body2 = append(body2, line)
		}
	}

	if section != 2 {
		return "", "", "", "", false
	}

	// The final newline of the file splits into one empty trailing line
	if n := len(body2); n > 0 && body2[n-1] == "" {
		body2 = body2[:n-1]
	}

	return name1, name2, strings.Join(body1, "\n") + "\n", strings.Join(body2, "\n") + "\n", true
}

// TruncateName shortens a label to max characters with an ellipsis
func TruncateName(s string, max int) string {
	if len(s) <= max || max <= 3 {
		return s
	}
	return s[:max-3] + "..."
}

// Prune removes the oldest entries beyond maxEntries and returns how many
// files were removed. A maxEntries of 0 or less disables pruning.
func Prune(maxEntries int) (int, error) {
	if maxEntries <= 0 {
		return 0, nil
	}

	entries, err := ListEntries("")
	if err != nil {
		return 0, err
	}
	if len(entries) <= maxEntries {
		return 0, nil
	}

	removed := 0
	for _, e := range entries[maxEntries:] {
		if err := os.Remove(e.Path); err != nil {
			return removed, fmt.Errorf("failed to remove old history file: %w", err)
		}
		removed++
	}

	return removed, nil
}

// Clear removes every stored report and returns how many were removed
func Clear() (int, error) {
	entries, err := ListEntries("")
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if err := os.Remove(e.Path); err != nil {
			return removed, fmt.Errorf("failed to remove history file: %w", err)
		}
		removed++
	}

	return removed, nil
}
