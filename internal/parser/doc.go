// Package parser turns raw CSV text into tables of trimmed field strings.
// Quote characters toggle an "inside quotes" flag so commas inside quotes
// do not split fields; doubled-quote escapes are not interpreted and blank
// lines are dropped, both documented limitations of the format handling.
package parser
