package compare

import (
	"encoding/json"
	"fmt"
)

// Kind tags a Difference with the category of discrepancy it records.
type Kind string

const (
	KindRowCount    Kind = "row_count_mismatch"
	KindMissingRow  Kind = "missing_row"
	KindColumnCount Kind = "column_count_mismatch"
	KindCell        Kind = "cell_difference"
)

// Difference is one detected discrepancy between two tables. Row and
// Column are 1-based, the way reports show them; which of the remaining
// fields carry meaning depends on Kind.
type Difference struct {
	Kind      Kind
	Row       int      // missing_row, column_count_mismatch, cell_difference
	Column    int      // cell_difference
	Count1    int      // row_count_mismatch, column_count_mismatch
	Count2    int      // row_count_mismatch, column_count_mismatch
	PresentIn string   // missing_row: display name of the file holding the row
	Data      []string // missing_row: the row's fields
	Value1    string   // cell_difference
	Value2    string   // cell_difference
}

// MarshalJSON writes exactly the fields that belong to the record's
// kind, tagged with a "type" key.
func (d Difference) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case KindRowCount:
		return json.Marshal(struct {
			Type   Kind `json:"type"`
			Count1 int  `json:"count1"`
			Count2 int  `json:"count2"`
		}{d.Kind, d.Count1, d.Count2})
	case KindMissingRow:
		return json.Marshal(struct {
			Type      Kind     `json:"type"`
			Row       int      `json:"row"`
			PresentIn string   `json:"presentIn"`
			Data      []string `json:"data"`
		}{d.Kind, d.Row, d.PresentIn, d.Data})
	case KindColumnCount:
		return json.Marshal(struct {
			Type   Kind `json:"type"`
			Row    int  `json:"row"`
			Count1 int  `json:"count1"`
			Count2 int  `json:"count2"`
		}{d.Kind, d.Row, d.Count1, d.Count2})
	case KindCell:
		return json.Marshal(struct {
			Type   Kind   `json:"type"`
			Row    int    `json:"row"`
			Column int    `json:"column"`
			Value1 string `json:"value1"`
			Value2 string `json:"value2"`
		}{d.Kind, d.Row, d.Column, d.Value1, d.Value2})
	}
	return nil, fmt.Errorf("unknown difference kind %q", d.Kind)
}

// Summary counts a difference list by kind.
type Summary struct {
	RowCount    int
	MissingRows int
	ColumnCount int
	Cells       int
}

// Summarize tallies the difference list by kind.
func Summarize(diffs []Difference) Summary {
	var s Summary
	for _, d := range diffs {
		switch d.Kind {
		case KindRowCount:
			s.RowCount++
		case KindMissingRow:
			s.MissingRows++
		case KindColumnCount:
			s.ColumnCount++
		case KindCell:
			s.Cells++
		}
	}
	return s
}

// Total is the number of recorded differences across all kinds.
func (s Summary) Total() int {
	return s.RowCount + s.MissingRows + s.ColumnCount + s.Cells
}

// UnmarshalJSON accepts any tagged record and keeps whichever fields
// were present.
func (d *Difference) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type      Kind     `json:"type"`
		Row       int      `json:"row"`
		Column    int      `json:"column"`
		Count1    int      `json:"count1"`
		Count2    int      `json:"count2"`
		PresentIn string   `json:"presentIn"`
		Data      []string `json:"data"`
		Value1    string   `json:"value1"`
		Value2    string   `json:"value2"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Difference{
		Kind:      raw.Type,
		Row:       raw.Row,
		Column:    raw.Column,
		Count1:    raw.Count1,
		Count2:    raw.Count2,
		PresentIn: raw.PresentIn,
		Data:      raw.Data,
		Value1:    raw.Value1,
		Value2:    raw.Value2,
	}
	return nil
}
