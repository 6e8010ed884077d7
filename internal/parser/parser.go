package parser

import "strings"

// Table is the parsed form of one CSV file: an ordered sequence of rows,
// each an ordered sequence of field strings. Rows keep whatever length
// their source line produced; nothing is padded.
type Table [][]string

// Parse turns raw CSV text into a Table. It never fails: quoting is a
// plain toggle, so malformed input degrades to best-effort field
// splitting instead of returning an error.
//
// Lines that are empty after trimming whitespace are dropped entirely,
// which makes a genuinely blank data row indistinguishable from a
// trailing blank line. Known limitation, kept on purpose.
func Parse(content string) Table {
	var table Table

	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		table = append(table, parseLine(line))
	}

	return table
}

// parseLine splits one physical line into trimmed fields. A quote toggles
// the in-quotes flag and is consumed; a comma outside quotes ends the
// field. An unterminated quote closes silently at end of line, so the
// accumulated text always becomes the final field.
func parseLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	return append(fields, strings.TrimSpace(current.String()))
}

// Format re-serializes a table: fields containing commas are wrapped in
// quotes, fields are joined with commas, rows with newlines. Feeding the
// result back through Parse reproduces the table as long as no field
// carries a literal quote character.
func Format(t Table) string {
	var b strings.Builder

	for i, row := range t {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(FormatRow(row))
	}

	return b.String()
}

// FormatRow renders a single row in the same comma-joined, quote-wrapped
// form Format uses.
func FormatRow(row []string) string {
	var b strings.Builder

	for j, field := range row {
		if j > 0 {
			b.WriteByte(',')
		}
		if strings.Contains(field, ",") {
			b.WriteByte('"')
			b.WriteString(field)
			b.WriteByte('"')
		} else {
			b.WriteString(field)
		}
	}

	return b.String()
}
