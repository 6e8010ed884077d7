// Package compare walks two parsed tables position by position and
// records every discrepancy as a tagged Difference. It is pure: nothing
// here prints, and the relocated-row analysis is a separate stage whose
// hints never feed back into the difference list.
package compare

import (
	"strings"

	"github.com/CaptShanks/csvprism/internal/parser"
)

// Compare returns every discrepancy between the two tables in discovery
// order: the row-count check first, then each row top to bottom with
// cells left to right. name1 and name2 are the display names recorded on
// missing-row records.
//
// Comparison is purely positional. No row matching, alignment, or
// reordering heuristic is attempted, so a single inserted row near the
// top of one file shows up as differences in every row after it plus one
// trailing missing row. Documented limitation, not a defect.
func Compare(table1, table2 parser.Table, name1, name2 string) []Difference {
	var diffs []Difference

	if len(table1) != len(table2) {
		diffs = append(diffs, Difference{
			Kind:   KindRowCount,
			Count1: len(table1),
			Count2: len(table2),
		})
	}

	maxRows := max(len(table1), len(table2))
	for i := 0; i < maxRows; i++ {
		if i >= len(table1) {
			diffs = append(diffs, Difference{
				Kind:      KindMissingRow,
				Row:       i + 1,
				PresentIn: name2,
				Data:      table2[i],
			})
			continue
		}
		if i >= len(table2) {
			diffs = append(diffs, Difference{
				Kind:      KindMissingRow,
				Row:       i + 1,
				PresentIn: name1,
				Data:      table1[i],
			})
			continue
		}

		row1, row2 := table1[i], table2[i]
		if len(row1) != len(row2) {
			diffs = append(diffs, Difference{
				Kind:   KindColumnCount,
				Row:    i + 1,
				Count1: len(row1),
				Count2: len(row2),
			})
		}

		// Cells are still compared on a column count mismatch; the
		// shorter row reads as empty strings past its end.
		maxCols := max(len(row1), len(row2))
		for j := 0; j < maxCols; j++ {
			var value1, value2 string
			if j < len(row1) {
				value1 = row1[j]
			}
			if j < len(row2) {
				value2 = row2[j]
			}
			if value1 != value2 {
				diffs = append(diffs, Difference{
					Kind:   KindCell,
					Row:    i + 1,
					Column: j + 1,
					Value1: value1,
					Value2: value2,
				})
			}
		}
	}

	return diffs
}

// Relocation is a hint that a row of the first table, mismatched at its
// own position, has exact-content matches elsewhere in the second table.
// Positions are 1-based.
type Relocation struct {
	Row     int
	FoundAt []int
}

// FindRelocatedRows reports rows of table1 that differ from table2 at
// the same position but whose exact content appears at other positions
// in table2. Rows of table1 beyond table2's length are not analyzed.
func FindRelocatedRows(table1, table2 parser.Table) []Relocation {
	if len(table1) == 0 || len(table2) == 0 {
		return nil
	}

	positions := make(map[string][]int, len(table2))
	for i, row := range table2 {
		key := rowKey(row)
		positions[key] = append(positions[key], i+1)
	}

	var relocations []Relocation
	for i, row := range table1 {
		if i >= len(table2) {
			continue
		}
		key := rowKey(row)
		if key == rowKey(table2[i]) {
			continue
		}
		if found := positions[key]; len(found) > 0 {
			relocations = append(relocations, Relocation{Row: i + 1, FoundAt: found})
		}
	}

	return relocations
}

func rowKey(row []string) string {
	return strings.Join(row, "|")
}
