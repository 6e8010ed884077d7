package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CaptShanks/csvprism/internal/history"
	"github.com/CaptShanks/csvprism/internal/parser"
	"github.com/CaptShanks/csvprism/internal/report"
	"github.com/CaptShanks/csvprism/internal/tui"
	"github.com/CaptShanks/csvprism/internal/updater"
)

const version = "0.4.0"

func main() {
	args := os.Args[1:]

	// No args is a usage error: compare mode needs two files
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "-h", "--help":
		printUsage()
		return
	case "-v", "--version", "version":
		runVersionMode()
		return
	case "upgrade":
		runUpgradeMode()
		return
	case "history":
		runHistoryMode(args[1:])
		return
	case "view":
		runViewMode(args[1:])
		return
	}

	// Default: compare mode, <file1> <file2> [outputFile]
	if len(args) < 2 || len(args) > 3 {
		printUsage()
		os.Exit(1)
	}

	outputFile := ""
	if len(args) == 3 {
		outputFile = args[2]
	}
	os.Exit(runCompareMode(args[0], args[1], outputFile))
}

// maxDiffsFromEnv returns the per-section report cap
func maxDiffsFromEnv() int {
	if v := strings.TrimSpace(os.Getenv("CSVPRISM_MAX_DIFFS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return tui.DefaultMaxDiffs
}

// historyMaxFromEnv returns how many history files to keep
func historyMaxFromEnv() int {
	if v := strings.TrimSpace(os.Getenv("CSVPRISM_HISTORY_MAX")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return history.DefaultMaxEntries
}

// readCSVFile reads one input file, reporting errors on stderr
func readCSVFile(path string) (string, bool) {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: file not found: %s\n", path)
		return "", false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		return "", false
	}

	return string(content), true
}

// runCompareMode compares two files and prints the report. The return
// value is the process exit code: 0 when the files match, 1 when they
// differ or anything went wrong.
func runCompareMode(file1, file2, outputFile string) int {
	content1, ok := readCSVFile(file1)
	if !ok {
		return 1
	}
	content2, ok := readCSVFile(file2)
	if !ok {
		return 1
	}

	c := tui.NewComparison(file1, file2, parser.Parse(content1), parser.Parse(content2))

	tui.PrintReport(c, maxDiffsFromEnv())

	if outputFile != "" {
		rec := report.NewRecord(c.Diffs, file1, file2)
		if err := report.Write(outputFile, rec); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			return 1
		}
		fmt.Printf("\nStructured report written to %s\n", outputFile)
	}

	saveHistory("compare", file1, file2, content1, content2, c)

	if len(c.Diffs) > 0 {
		return 1
	}
	return 0
}

// saveHistory stores the inputs of one run so it can be replayed later
// with 'history view'. Failures only warn; they never change the exit
// code.
func saveHistory(command, file1, file2, content1, content2 string, c tui.Comparison) {
	status := history.StatusClean
	if len(c.Diffs) > 0 {
		status = history.StatusDiffers
	}

	header := history.CreateHistoryHeader(command, file1, file2)
	content := history.BuildCompareContent(header, file1, file2, content1, content2)

	if _, err := history.CreateHistoryFile(history.PairLabel(file1, file2), command, status, content); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to save history: %v\n", err)
	}

	if deleted, _ := history.Prune(historyMaxFromEnv()); deleted > 0 {
		fmt.Fprintf(os.Stderr, "Cleaned up %d old history files\n", deleted)
	}
}

// runViewMode compares two files and opens the interactive browser
func runViewMode(args []string) {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			printUsage()
			os.Exit(0)
		}
	}
	if len(args) != 2 {
		printUsage()
		os.Exit(1)
	}

	content1, ok := readCSVFile(args[0])
	if !ok {
		os.Exit(1)
	}
	content2, ok := readCSVFile(args[1])
	if !ok {
		os.Exit(1)
	}

	c := tui.NewComparison(args[0], args[1], parser.Parse(content1), parser.Parse(content2))

	saveHistory("view", args[0], args[1], content1, content2, c)

	if len(c.Diffs) == 0 && len(c.Relocations) == 0 {
		fmt.Println("Files are identical.")
		os.Exit(0)
	}

	runComparisonTUI(c)
}

func runComparisonTUI(c tui.Comparison) {
	p := tea.NewProgram(
		tui.NewModel(c, version),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// runHistoryMode handles history subcommands: list, view, clear
func runHistoryMode(args []string) {
	// Check for help first
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			printHistoryUsage()
			os.Exit(0)
		}
	}

	// No args - show history help
	if len(args) == 0 {
		printHistoryUsage()
		os.Exit(0)
	}

	// Handle subcommands
	switch args[0] {
	case "list":
		runHistoryList(args[1:])
	case "view":
		runHistoryView(args[1:])
	case "clear", "--clear":
		clearHistory()
	default:
		// Check if it's a number (shorthand for view)
		if isNumeric(args[0]) {
			runHistoryView(args)
		} else {
			fmt.Fprintf(os.Stderr, "Unknown history subcommand: %s\n", args[0])
			printHistoryUsage()
			os.Exit(1)
		}
	}
}

// isNumeric checks if a string is a positive integer
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// runHistoryList lists stored comparisons
func runHistoryList(args []string) {
	filterCommand := ""

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--compare", "-c":
			filterCommand = "compare"
		case "--view":
			filterCommand = "view"
		case "--clear":
			clearHistory()
			return
		default:
			if strings.HasPrefix(args[i], "-") {
				fmt.Fprintf(os.Stderr, "Unknown option: %s\n", args[i])
				fmt.Fprintln(os.Stderr, "Use 'csvprism history --help' for usage")
				os.Exit(1)
			}
		}
	}

	entries, err := history.ListEntries(filterCommand)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
		os.Exit(1)
	}

	if len(entries) == 0 {
		histDir, _ := history.GetHistoryDir()
		fmt.Printf("No history files found in %s\n", histDir)
		if filterCommand != "" {
			fmt.Printf("(filtered by: %s)\n", filterCommand)
		}
		return
	}

	histDir, _ := history.GetHistoryDir()
	fmt.Printf("History files in %s:\n\n", histDir)
	// Header: #(3) + 2 + timestamp(16) + 2 + pair(24) + 2 + command(8) + 2 + status
	fmt.Printf("%3s  %-16s  %-24s  %-8s  %s\n", "#", "TIMESTAMP", "PAIR", "COMMAND", "STATUS")
	fmt.Println(strings.Repeat("-", 70))

	for i, entry := range entries {
		pair := entry.Pair
		if pair == "" {
			pair = "-"
		}
		pair = history.TruncateName(pair, 24)

		formatted := tui.FormatHistoryEntryColored(
			entry.Timestamp.Format("2006-01-02 15:04"),
			pair,
			entry.Command,
			entry.Status,
		)
		fmt.Printf("%3d  %s\n", i+1, formatted)
	}

	fmt.Printf("\nTotal: %d entries (max: %d)\n", len(entries), historyMaxFromEnv())
	fmt.Println("\nUse 'csvprism history view <#>' to view a specific entry")
}

// runHistoryView replays a stored comparison in the TUI
func runHistoryView(args []string) {
	var filePath string

	// No args - interactive picker
	if len(args) == 0 {
		entries, err := history.ListEntries("")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
			os.Exit(1)
		}

		if len(entries) == 0 {
			histDir, _ := history.GetHistoryDir()
			fmt.Printf("No history files found in %s\n", histDir)
			os.Exit(0)
		}

		selectedPath, err := tui.RunPicker(entries)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running picker: %v\n", err)
			os.Exit(1)
		}

		if selectedPath == "" {
			// User cancelled
			os.Exit(0)
		}

		filePath = selectedPath
	} else {
		target := args[0]

		// Check if it's a number (index)
		if isNumeric(target) {
			var index int
			_, _ = fmt.Sscanf(target, "%d", &index)
			if index < 1 {
				fmt.Fprintln(os.Stderr, "Index must be 1 or greater")
				os.Exit(1)
			}

			entries, err := history.ListEntries("")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
				os.Exit(1)
			}

			if index > len(entries) {
				fmt.Fprintf(os.Stderr, "Index %d out of range (only %d entries)\n", index, len(entries))
				os.Exit(1)
			}

			filePath = entries[index-1].Path
		} else {
			// It's a filename - find the full path
			histDir, err := history.GetHistoryDir()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error getting history directory: %v\n", err)
				os.Exit(1)
			}
			filePath = filepath.Join(histDir, target)
		}
	}

	// Read the file
	content, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	name1, name2, content1, content2, ok := history.ParseCompareContent(string(content))
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: %s is not a csvprism history file\n", filepath.Base(filePath))
		os.Exit(1)
	}

	c := tui.NewComparison(name1, name2, parser.Parse(content1), parser.Parse(content2))

	if len(c.Diffs) == 0 && len(c.Relocations) == 0 {
		fmt.Println("Files are identical.")
		os.Exit(0)
	}

	runComparisonTUI(c)
}

// clearHistory removes all history files
func clearHistory() {
	histDir, err := history.GetHistoryDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting history directory: %v\n", err)
		os.Exit(1)
	}

	entries, err := history.ListEntries("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
		os.Exit(1)
	}

	if len(entries) == 0 {
		fmt.Println("No history files to clear.")
		return
	}

	fmt.Printf("This will delete %d history files from %s\n", len(entries), histDir)
	fmt.Print("Are you sure? (y/N): ")

	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')

	if strings.ToLower(strings.TrimSpace(response)) != "y" {
		fmt.Println("Cancelled.")
		return
	}

	deleted, err := history.Clear()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error clearing history: %v\n", err)
	}
	fmt.Printf("Deleted %d history files.\n", deleted)
}

// runVersionMode displays the csvprism version and checks for updates
func runVersionMode() {
	fmt.Printf("csvprism v%s\n", version)

	// Check for updates (skip if disabled)
	if !updater.IsSkipUpdateCheck() {
		if latest, hasUpdate, err := updater.CheckLatest(version); err == nil && hasUpdate {
			fmt.Printf("\nUpdate available: v%s. Run 'csvprism upgrade' to update (or re-run the install script).\n", latest)
		}
	}
}

// runUpgradeMode upgrades csvprism to the latest version
func runUpgradeMode() {
	_, hasUpdate, err := updater.CheckLatest(version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error checking for updates: %v\n", err)
		fmt.Println(updater.CurlFallbackMessage(err))
		os.Exit(1)
	}
	if !hasUpdate {
		fmt.Println("Already up to date.")
		return
	}

	newVer, err := updater.Upgrade(version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", updater.CurlFallbackMessage(err))
		os.Exit(1)
	}
	fmt.Printf("Upgraded to v%s. Restart csvprism to use the new version.\n", newVer)
}

func printUsage() {
	fmt.Printf(`csvprism %s - CSV file comparison tool

USAGE:
    csvprism <file1> <file2>                # Compare two CSV files
    csvprism <file1> <file2> <output.json>  # Compare and write a JSON report
    csvprism view <file1> <file2>           # Compare in the interactive TUI
    csvprism history [options]              # List and replay past comparisons

DESCRIPTION:
    CSV-Prism compares two CSV files cell by cell and reports row count
    mismatches, missing rows, column count mismatches, and changed cell
    values. Matching is positional and case-sensitive; fields are trimmed
    of surrounding whitespace before comparison.

COMMANDS:
    (none)      Compare mode - print a categorized difference report
    view        Compare and browse differences interactively
    history     List and replay stored comparisons
    version     Show csvprism version (includes update check)
    upgrade     Upgrade csvprism to the latest release

GLOBAL OPTIONS:
    -h, --help      Show this help
    -v, --version   Show version (includes update check)

ENVIRONMENT:
    CSVPRISM_NO_COLOR     Set to 1, true, or yes to disable colored output
    CSVPRISM_MAX_DIFFS    Max differences listed per report section (default: %d)
    CSVPRISM_HISTORY_MAX  History files kept before pruning (default: %d)
    CSVPRISM_SKIP_UPDATE_CHECK        Set to 1, true, or yes to skip update checks
    CSVPRISM_UPDATE_CHECK_INTERVAL    Days between TUI update checks (default: 7)

EXIT CODES:
    0   Files match (no differences)
    1   Differences found, or an error occurred

CONTROLS (view mode):
    j/k         Move cursor up/down
    Enter/Space Toggle expand/collapse
    l/h         Expand/collapse current difference
    d/u         Half page down/up
    gg/G        Go to first/last difference
    e/c         Expand/collapse all
    a           Toggle row-aligned file diff
    /           Search differences
    n/N         Next/previous match
    f           Filter by difference kind
    s           Sort differences
    q/Esc       Quit

HISTORY:
    Every comparison is saved to ~/%s/
    Use 'csvprism history' to list and replay them.

EXAMPLES:
    # Compare two exports
    csvprism users_old.csv users_new.csv

    # Compare and write a structured report
    csvprism users_old.csv users_new.csv report.json

    # Browse differences interactively
    csvprism view users_old.csv users_new.csv

    # Replay the most recent comparison
    csvprism history view 1

`, version, tui.DefaultMaxDiffs, history.DefaultMaxEntries, history.HistoryDir)
}

func printHistoryUsage() {
	fmt.Printf(`csvprism history - Manage comparison history

USAGE:
    csvprism history <subcommand> [options]

DESCRIPTION:
    List and replay comparisons stored in ~/%s/

SUBCOMMANDS:
    list            List all stored comparisons
    view            Interactive picker to select and replay
    view <#|file>   Replay a stored comparison in the TUI
                    # = index (1 = most recent)
                    file = exact filename
    clear           Delete all history files

LIST OPTIONS:
    -c, --compare   Show only compare runs
    --view          Show only view runs
    --clear         Delete all history files

EXAMPLES:
    csvprism history list                # List all history
    csvprism history list --compare      # List only compare runs
    csvprism history view                # Interactive picker
    csvprism history view 1              # Replay most recent comparison
    csvprism history 1                   # Shorthand for 'view 1'
    csvprism history view 2025-01-14_10-30-00_users-vs-users_compare_differs.txt

`, history.HistoryDir)
}
