package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/CaptShanks/csvprism/internal/compare"
	"github.com/CaptShanks/csvprism/internal/parser"
)

// DefaultMaxDiffs caps how many entries each report section shows unless
// CSVPRISM_MAX_DIFFS overrides it.
const DefaultMaxDiffs = 50

// maxRelocations caps the row position analysis section.
const maxRelocations = 20

func init() {
	if isTruthy(os.Getenv("CSVPRISM_NO_COLOR")) {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	// Force color output even when not a TTY (for piping)
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Comparison bundles the inputs and results of one comparison run. Name1
// and Name2 are display names (usually the file paths as given on the
// command line) and appear verbatim in rendered output.
type Comparison struct {
	Name1       string
	Name2       string
	Table1      parser.Table
	Table2      parser.Table
	Diffs       []compare.Difference
	Relocations []compare.Relocation
}

// NewComparison compares two parsed tables and bundles everything needed
// to render the result.
func NewComparison(name1, name2 string, table1, table2 parser.Table) Comparison {
	return Comparison{
		Name1:       name1,
		Name2:       name2,
		Table1:      table1,
		Table2:      table2,
		Diffs:       compare.Compare(table1, table2, name1, name2),
		Relocations: compare.FindRelocatedRows(table1, table2),
	}
}

// reportKinds fixes the section order of the printed report.
var reportKinds = []compare.Kind{
	compare.KindRowCount,
	compare.KindMissingRow,
	compare.KindColumnCount,
	compare.KindCell,
}

// PrintReport writes the colorized comparison report to stdout
// (non-interactive mode).
func PrintReport(c Comparison, maxDiffs int) {
	fmt.Print(RenderReport(c, maxDiffs))
}

// RenderReport renders the full comparison report as a string. maxDiffs
// caps each section; values <= 0 fall back to DefaultMaxDiffs.
func RenderReport(c Comparison, maxDiffs int) string {
	if maxDiffs <= 0 {
		maxDiffs = DefaultMaxDiffs
	}

	var b strings.Builder

	rule := strings.Repeat("═", 60)
	title := lipgloss.NewStyle().Bold(true).Foreground(headerColor)
	b.WriteString(mutedColor.Render(rule))
	b.WriteString("\n")
	b.WriteString(title.Render("🔺 CSV-Prism - Comparison Summary"))
	b.WriteString("\n")
	b.WriteString(mutedColor.Render(rule))
	b.WriteString("\n")

	b.WriteString(fileLine(1, c.Name1, c.Table1))
	b.WriteString(fileLine(2, c.Name2, c.Table2))
	b.WriteString("\n")

	if len(c.Diffs) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(addColor).Bold(true).Render("Files are identical"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(summaryLine(compare.Summarize(c.Diffs)))
	b.WriteString("\n\n")

	for _, kind := range reportKinds {
		b.WriteString(renderSection(c, kind, maxDiffs))
	}

	b.WriteString(renderRelocations(c, maxRelocations))

	total := fmt.Sprintf("Total differences found: %d", len(c.Diffs))
	b.WriteString(lipgloss.NewStyle().Foreground(cellColor).Bold(true).Render(total))
	b.WriteString("\n")

	return b.String()
}

// fileLine renders one "File N: name (R rows, C columns)" line.
func fileLine(n int, name string, table parser.Table) string {
	rows, cols := tableDims(table)
	return fmt.Sprintf("File %d: %s %s\n",
		n,
		lipgloss.NewStyle().Foreground(textColor).Bold(true).Render(name),
		mutedColor.Render(fmt.Sprintf("(%d rows, %d columns)", rows, cols)),
	)
}

// tableDims reports a table's row count and the width of its first row.
// Later rows may be ragged; the first row is taken as the nominal width.
func tableDims(t parser.Table) (rows, cols int) {
	rows = len(t)
	if rows > 0 {
		cols = len(t[0])
	}
	return rows, cols
}

// summaryLine renders the one-line category breakdown under the header.
func summaryLine(s compare.Summary) string {
	var parts []string
	if s.RowCount > 0 {
		parts = append(parts, kindRowCountStyle.Render(fmt.Sprintf("%d row count", s.RowCount)))
	}
	if s.MissingRows > 0 {
		parts = append(parts, kindMissingRowStyle.Render(fmt.Sprintf("%d missing rows", s.MissingRows)))
	}
	if s.ColumnCount > 0 {
		parts = append(parts, kindColumnCountStyle.Render(fmt.Sprintf("%d column count", s.ColumnCount)))
	}
	if s.Cells > 0 {
		parts = append(parts, kindCellStyle.Render(fmt.Sprintf("%d cell values", s.Cells)))
	}
	return strings.Join(parts, mutedColor.Render(", "))
}

// renderSection renders one kind's section, or nothing if the kind has no
// entries.
func renderSection(c Comparison, kind compare.Kind, maxDiffs int) string {
	var matching []compare.Difference
	for _, d := range c.Diffs {
		if d.Kind == kind {
			matching = append(matching, d)
		}
	}
	if len(matching) == 0 {
		return ""
	}

	var b strings.Builder
	title := fmt.Sprintf("%s (%d):", KindTitle(kind), len(matching))
	b.WriteString(GetKindStyle(kind).Render(title))
	b.WriteString("\n")

	shown := matching
	if len(shown) > maxDiffs {
		shown = shown[:maxDiffs]
	}
	for _, d := range shown {
		b.WriteString("  ")
		b.WriteString(renderDifferenceLine(d, c))
		b.WriteString("\n")
	}
	if hidden := len(matching) - len(shown); hidden > 0 {
		b.WriteString(mutedColor.Render(fmt.Sprintf("  ... and %d more", hidden)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// renderDifferenceLine renders a single difference as a one-line bullet.
func renderDifferenceLine(d compare.Difference, c Comparison) string {
	switch d.Kind {
	case compare.KindRowCount:
		return fmt.Sprintf("%s %s has %s rows, %s has %s rows",
			countSymbol,
			c.Name1, boldCount(d.Count1),
			c.Name2, boldCount(d.Count2),
		)

	case compare.KindMissingRow:
		symbol := removeSymbol
		dataStyle := lipgloss.NewStyle().Foreground(removeColor)
		if d.PresentIn == c.Name2 {
			symbol = addSymbol
			dataStyle = lipgloss.NewStyle().Foreground(addColor)
		}
		return fmt.Sprintf("%s row %d only in %s: %s",
			symbol, d.Row, d.PresentIn,
			dataStyle.Render(parser.FormatRow(d.Data)),
		)

	case compare.KindColumnCount:
		return fmt.Sprintf("%s row %d has %s columns in %s, %s in %s",
			structSymbol, d.Row,
			boldCount(d.Count1), c.Name1,
			boldCount(d.Count2), c.Name2,
		)

	case compare.KindCell:
		return fmt.Sprintf("%s row %d, column %d: %s%s%s",
			cellSymbol, d.Row, d.Column,
			lipgloss.NewStyle().Foreground(removeColor).Render(fmt.Sprintf("%q", d.Value1)),
			mutedColor.Render(" → "),
			lipgloss.NewStyle().Foreground(addColor).Render(fmt.Sprintf("%q", d.Value2)),
		)

	default:
		return string(d.Kind)
	}
}

func boldCount(n int) string {
	return lipgloss.NewStyle().Foreground(textColor).Bold(true).Render(fmt.Sprintf("%d", n))
}

// FormatHistoryEntryColored formats one history list row with the status
// column colored. Column widths match the header printed by the history
// list command.
func FormatHistoryEntryColored(timestamp, pair, command, status string) string {
	statusStyle := lipgloss.NewStyle().Foreground(addColor)
	if status == "differs" {
		statusStyle = lipgloss.NewStyle().Foreground(removeColor)
	}

	return fmt.Sprintf("%-16s  %-24s  %-8s  %s",
		timestamp,
		pair,
		command,
		statusStyle.Render(status),
	)
}

// renderRelocations renders the row position analysis section, or nothing
// when no relocation hints were found.
func renderRelocations(c Comparison, maxShown int) string {
	if len(c.Relocations) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(relocColor).Bold(true).Render("Row position analysis:"))
	b.WriteString("\n")

	shown := c.Relocations
	if len(shown) > maxShown {
		shown = shown[:maxShown]
	}
	for _, r := range shown {
		positions := make([]string, len(r.FoundAt))
		for i, p := range r.FoundAt {
			positions[i] = fmt.Sprintf("%d", p)
		}
		b.WriteString(fmt.Sprintf("  row %d of %s matches row %s of %s\n",
			r.Row, c.Name1,
			strings.Join(positions, ", "), c.Name2,
		))
	}
	if hidden := len(c.Relocations) - len(shown); hidden > 0 {
		b.WriteString(mutedColor.Render(fmt.Sprintf("  ... and %d more", hidden)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
