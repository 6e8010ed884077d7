package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"

	"github.com/CaptShanks/csvprism/internal/parser"
)

const version = "0.2.0"

// maxCellWidth caps how wide a single column can grow before values are
// truncated with an ellipsis.
const maxCellWidth = 40

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a9b1d6"))
	ruleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#3b4261"))
	rowNumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
)

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

func main() {
	// Check for help/version flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "-h", "--help":
			printUsage()
			os.Exit(0)
		case "-v", "--version":
			fmt.Printf("csvview %s\n", version)
			os.Exit(0)
		}
	}

	// Read from stdin or file
	var input io.Reader
	source := "stdin"

	if len(os.Args) > 1 && os.Args[1] != "-" {
		// Read from file
		file, err := os.Open(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening file: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		input = file
		source = os.Args[1]
	} else {
		// Check if stdin has data
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			// No piped input, show usage
			printUsage()
			os.Exit(0)
		}
		input = os.Stdin
	}

	// Read all input
	var lines []string
	scanner := bufio.NewScanner(input)
	// Increase buffer size for large files
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	table := parser.Parse(strings.Join(lines, "\n"))

	if len(table) == 0 {
		fmt.Println("No rows detected in the input.")
		os.Exit(0)
	}

	fmt.Print(renderTable(source, table))
}

// columnWidths computes the display width of each column, capped at
// maxCellWidth. Ragged rows simply stop contributing to columns they
// do not have.
func columnWidths(t parser.Table) []int {
	var widths []int

	for _, row := range t {
		for j, cell := range row {
			w := len([]rune(cell))
			if w > maxCellWidth {
				w = maxCellWidth
			}
			if j >= len(widths) {
				widths = append(widths, w)
			} else if w > widths[j] {
				widths[j] = w
			}
		}
	}

	return widths
}

// formatCell truncates and pads a cell to the column width
func formatCell(cell string, width int) string {
	cell = truncate.StringWithTail(cell, uint(width), "…")
	if pad := width - len([]rune(cell)); pad > 0 {
		cell += strings.Repeat(" ", pad)
	}
	return cell
}

// renderTable renders the aligned table with the first row treated as
// the header.
func renderTable(source string, t parser.Table) string {
	widths := columnWidths(t)

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("🔺 CSV-Prism - %s (%d rows, %d columns)", source, len(t), len(widths))))
	b.WriteString("\n\n")

	// Row number gutter is sized for the largest row number
	gutter := len(fmt.Sprintf("%d", len(t)))

	// Header row
	b.WriteString(strings.Repeat(" ", gutter+2))
	var cells []string
	for j, w := range widths {
		cell := ""
		if j < len(t[0]) {
			cell = t[0][j]
		}
		cells = append(cells, headerStyle.Render(formatCell(cell, w)))
	}
	b.WriteString(strings.Join(cells, "  "))
	b.WriteString("\n")

	// Per-column rules
	b.WriteString(strings.Repeat(" ", gutter+2))
	var rules []string
	for _, w := range widths {
		rules = append(rules, ruleStyle.Render(strings.Repeat("─", w)))
	}
	b.WriteString(strings.Join(rules, "  "))
	b.WriteString("\n")

	// Data rows
	for i, row := range t[1:] {
		b.WriteString(rowNumStyle.Render(fmt.Sprintf("%*d", gutter, i+2)))
		b.WriteString("  ")
		cells = cells[:0]
		for j, w := range widths {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			cells = append(cells, formatCell(cell, w))
		}
		b.WriteString(strings.Join(cells, "  "))
		b.WriteString("\n")
	}

	return b.String()
}

func printUsage() {
	fmt.Printf(`csvview %s - Aligned CSV table viewer

USAGE:
    cat data.csv | csvview
    csvview <file.csv>

DESCRIPTION:
    csvview pretty-prints a CSV file as an aligned table with the first
    row rendered as the header. It shares CSV-Prism's forgiving parser:
    fields are trimmed, quoting is best-effort, and ragged rows are
    padded rather than rejected.

OPTIONS:
    -h, --help      Show this help message
    -v, --version   Show version

ENVIRONMENT:
    CSVPRISM_NO_COLOR   Set to 1, true, or yes to disable colored output

EXAMPLES:
    # Pipe from another tool
    psql -c 'COPY users TO STDOUT WITH CSV HEADER' | csvview

    # Read from file
    csvview users.csv

`, version)
}
