// Package report builds and persists the structured record of one
// comparison run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/CaptShanks/csvprism/internal/compare"
)

// Record is the structured result of a run. TotalDifferences always
// equals the length of Differences.
type Record struct {
	ID               string               `json:"id"`
	Timestamp        string               `json:"timestamp"`
	File1            string               `json:"file1"`
	File2            string               `json:"file2"`
	TotalDifferences int                  `json:"totalDifferences"`
	Differences      []compare.Difference `json:"differences"`
}

// NewRecord stamps a record for the given run with a fresh ID and an
// RFC 3339 UTC timestamp.
func NewRecord(diffs []compare.Difference, file1, file2 string) Record {
	if diffs == nil {
		diffs = []compare.Difference{}
	}
	return Record{
		ID:               uuid.NewString(),
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		File1:            file1,
		File2:            file2,
		TotalDifferences: len(diffs),
		Differences:      diffs,
	}
}

// Write persists the record to path as indented JSON.
func Write(path string, rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
