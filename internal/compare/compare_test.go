package compare

import (
	"reflect"
	"testing"

	"github.com/CaptShanks/csvprism/internal/parser"
)

func countKinds(diffs []Difference) map[Kind]int {
	counts := make(map[Kind]int)
	for _, d := range diffs {
		counts[d.Kind]++
	}
	return counts
}

func TestCompareIdentical(t *testing.T) {
	content := "Name,Age\nAlice,30\nBob,25"
	table1 := parser.Parse(content)
	table2 := parser.Parse(content)

	diffs := Compare(table1, table2, "a.csv", "b.csv")

	if len(diffs) != 0 {
		t.Errorf("Expected no differences for identical content, got %d: %v", len(diffs), diffs)
	}
}

func TestCompareSingleCellChange(t *testing.T) {
	table1 := parser.Parse("Name,Age\nAlice,30\nBob,25")
	table2 := parser.Parse("Name,Age\nAlice,31\nBob,25")

	diffs := Compare(table1, table2, "a.csv", "b.csv")

	if len(diffs) != 1 {
		t.Fatalf("Expected exactly 1 difference, got %d: %v", len(diffs), diffs)
	}

	d := diffs[0]
	if d.Kind != KindCell {
		t.Errorf("Expected cell difference, got %s", d.Kind)
	}
	if d.Row != 2 || d.Column != 2 {
		t.Errorf("Expected row 2, column 2, got row %d, column %d", d.Row, d.Column)
	}
	if d.Value1 != "30" || d.Value2 != "31" {
		t.Errorf("Expected values 30 and 31, got %q and %q", d.Value1, d.Value2)
	}
}

func TestCompareExtraRow(t *testing.T) {
	table1 := parser.Parse("Name,Age\nAlice,30")
	table2 := parser.Parse("Name,Age\nAlice,30\nBob,25")

	diffs := Compare(table1, table2, "a.csv", "b.csv")

	if len(diffs) != 2 {
		t.Fatalf("Expected exactly 2 differences, got %d: %v", len(diffs), diffs)
	}

	if diffs[0].Kind != KindRowCount {
		t.Errorf("Expected row count mismatch first, got %s", diffs[0].Kind)
	}
	if diffs[0].Count1 != 2 || diffs[0].Count2 != 3 {
		t.Errorf("Expected counts 2 and 3, got %d and %d", diffs[0].Count1, diffs[0].Count2)
	}

	if diffs[1].Kind != KindMissingRow {
		t.Errorf("Expected missing row second, got %s", diffs[1].Kind)
	}
	if diffs[1].Row != 3 {
		t.Errorf("Expected missing row at row 3, got %d", diffs[1].Row)
	}
	if diffs[1].PresentIn != "b.csv" {
		t.Errorf("Expected row present in b.csv, got %q", diffs[1].PresentIn)
	}
	if !reflect.DeepEqual(diffs[1].Data, []string{"Bob", "25"}) {
		t.Errorf("Expected missing row data [Bob 25], got %v", diffs[1].Data)
	}

	counts := countKinds(diffs)
	if counts[KindCell] != 0 || counts[KindColumnCount] != 0 {
		t.Errorf("Expected no cell or column count differences, got %v", counts)
	}
}

func TestCompareMissingRowInFirstFile(t *testing.T) {
	table1 := parser.Parse("a,b\nc,d\ne,f")
	table2 := parser.Parse("a,b\nc,d")

	diffs := Compare(table1, table2, "first.csv", "second.csv")

	counts := countKinds(diffs)
	if counts[KindMissingRow] != 1 {
		t.Fatalf("Expected 1 missing row, got %d", counts[KindMissingRow])
	}
	for _, d := range diffs {
		if d.Kind == KindMissingRow && d.PresentIn != "first.csv" {
			t.Errorf("Expected row present in first.csv, got %q", d.PresentIn)
		}
	}
}

func TestCompareCaseSensitive(t *testing.T) {
	table1 := parser.Parse("City\nChicago")
	table2 := parser.Parse("City\nchicago")

	diffs := Compare(table1, table2, "a.csv", "b.csv")

	if len(diffs) != 1 {
		t.Fatalf("Expected exactly 1 difference, got %d: %v", len(diffs), diffs)
	}
	if diffs[0].Kind != KindCell {
		t.Errorf("Expected cell difference, got %s", diffs[0].Kind)
	}
	if diffs[0].Value1 != "Chicago" || diffs[0].Value2 != "chicago" {
		t.Errorf("Expected Chicago and chicago, got %q and %q", diffs[0].Value1, diffs[0].Value2)
	}
}

func TestCompareColumnCountMismatch(t *testing.T) {
	table1 := parser.Parse("a,b")
	table2 := parser.Parse("a,b,c")

	diffs := Compare(table1, table2, "a.csv", "b.csv")

	if len(diffs) != 2 {
		t.Fatalf("Expected 2 differences, got %d: %v", len(diffs), diffs)
	}

	if diffs[0].Kind != KindColumnCount {
		t.Errorf("Expected column count mismatch first, got %s", diffs[0].Kind)
	}
	if diffs[0].Row != 1 || diffs[0].Count1 != 2 || diffs[0].Count2 != 3 {
		t.Errorf("Unexpected column count record: %+v", diffs[0])
	}

	// Cells past the shorter row still compare, against the empty string.
	if diffs[1].Kind != KindCell {
		t.Fatalf("Expected cell difference second, got %s", diffs[1].Kind)
	}
	if diffs[1].Column != 3 || diffs[1].Value1 != "" || diffs[1].Value2 != "c" {
		t.Errorf("Unexpected cell record: %+v", diffs[1])
	}
}

func TestCompareDiscoveryOrder(t *testing.T) {
	table1 := parser.Parse("a,b\nc,d\ne,f")
	table2 := parser.Parse("a,x\nc,d,extra\nz,f\ng,h")

	diffs := Compare(table1, table2, "a.csv", "b.csv")

	wantKinds := []Kind{
		KindRowCount,    // 3 vs 4 rows, always first
		KindCell,        // row 1: b vs x
		KindColumnCount, // row 2: 2 vs 3 columns
		KindCell,        // row 2: "" vs extra
		KindCell,        // row 3: e vs z
		KindMissingRow,  // row 4 only in b.csv
	}

	if len(diffs) != len(wantKinds) {
		t.Fatalf("Expected %d differences, got %d: %v", len(wantKinds), len(diffs), diffs)
	}
	for i, want := range wantKinds {
		if diffs[i].Kind != want {
			t.Errorf("Difference %d: expected %s, got %s", i, want, diffs[i].Kind)
		}
	}
}

func TestCompareEmptyAgainstContent(t *testing.T) {
	table1 := parser.Parse("")
	table2 := parser.Parse("a,b\nc,d")

	diffs := Compare(table1, table2, "empty.csv", "full.csv")

	counts := countKinds(diffs)
	if counts[KindRowCount] != 1 {
		t.Errorf("Expected 1 row count mismatch, got %d", counts[KindRowCount])
	}
	if counts[KindMissingRow] != 2 {
		t.Errorf("Expected 2 missing rows, got %d", counts[KindMissingRow])
	}
	if diffs[0].Count1 != 0 || diffs[0].Count2 != 2 {
		t.Errorf("Expected counts 0 and 2, got %d and %d", diffs[0].Count1, diffs[0].Count2)
	}
}

// An inserted row near the top cascades: every later row differs and one
// trailing row goes missing. The positional behavior is intentional.
func TestCompareInsertedRowCascades(t *testing.T) {
	table1 := parser.Parse("h1,h2\na,1\nb,2\nc,3")
	table2 := parser.Parse("h1,h2\nnew,0\na,1\nb,2\nc,3")

	diffs := Compare(table1, table2, "a.csv", "b.csv")

	counts := countKinds(diffs)
	if counts[KindRowCount] != 1 {
		t.Errorf("Expected 1 row count mismatch, got %d", counts[KindRowCount])
	}
	if counts[KindMissingRow] != 1 {
		t.Errorf("Expected 1 trailing missing row, got %d", counts[KindMissingRow])
	}
	// Rows 2..4 all shifted, two cells each.
	if counts[KindCell] != 6 {
		t.Errorf("Expected 6 cell differences from the shift, got %d", counts[KindCell])
	}
}

func TestFindRelocatedRows(t *testing.T) {
	table1 := parser.Parse("a,1\nb,2\nc,3")
	table2 := parser.Parse("b,2\na,1\nc,3")

	relocations := FindRelocatedRows(table1, table2)

	if len(relocations) != 2 {
		t.Fatalf("Expected 2 relocations, got %d: %v", len(relocations), relocations)
	}
	if relocations[0].Row != 1 || !reflect.DeepEqual(relocations[0].FoundAt, []int{2}) {
		t.Errorf("Expected row 1 found at [2], got row %d found at %v", relocations[0].Row, relocations[0].FoundAt)
	}
	if relocations[1].Row != 2 || !reflect.DeepEqual(relocations[1].FoundAt, []int{1}) {
		t.Errorf("Expected row 2 found at [1], got row %d found at %v", relocations[1].Row, relocations[1].FoundAt)
	}
}

func TestFindRelocatedRowsNoHints(t *testing.T) {
	table1 := parser.Parse("a,1\nb,2")
	table2 := parser.Parse("a,1\nx,9")

	if relocations := FindRelocatedRows(table1, table2); len(relocations) != 0 {
		t.Errorf("Expected no relocations, got %v", relocations)
	}

	// Rows beyond the second table's length are not analyzed.
	table3 := parser.Parse("a,1\nb,2\nc,3")
	table4 := parser.Parse("a,1")
	if relocations := FindRelocatedRows(table3, table4); len(relocations) != 0 {
		t.Errorf("Expected no relocations past table2's length, got %v", relocations)
	}
}
