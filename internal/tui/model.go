package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/CaptShanks/csvprism/internal/compare"
	"github.com/CaptShanks/csvprism/internal/parser"
	"github.com/CaptShanks/csvprism/internal/updater"
)

// SortOrder selects how the difference list is ordered
type SortOrder string

const (
	SortDefault SortOrder = "default" // discovery order
	SortByKind  SortOrder = "kind"
	SortByRow   SortOrder = "row"
)

// sortOptions lists selectable sort orders in picker order
var sortOptions = []SortOrder{
	SortDefault,
	SortByKind,
	SortByRow,
}

// kindOrder fixes grouping order when sorting by kind
var kindOrder = map[compare.Kind]int{
	compare.KindRowCount:    0,
	compare.KindMissingRow:  1,
	compare.KindColumnCount: 2,
	compare.KindCell:        3,
}

// filterableKinds lists kinds shown in the filter picker
var filterableKinds = []compare.Kind{
	compare.KindRowCount,
	compare.KindMissingRow,
	compare.KindColumnCount,
	compare.KindCell,
}

// UpdateAvailableMsg is sent when a newer release is found
type UpdateAvailableMsg struct {
	Version string
}

// Model is the main TUI model for browsing differences
type Model struct {
	comparison Comparison
	version    string

	viewport viewport.Model
	ready    bool
	width    int
	height   int

	cursor   int
	expanded map[int]bool

	// alignedView switches to the row-aligned diff of the whole files
	alignedView bool

	// Line positions of displayed differences, for cursor tracking
	diffLineStarts   []int
	contentLineCount int

	// Search state
	searchInput   textinput.Model
	searching     bool
	searchQuery   string
	searchMatches []int // positions in the displayed list
	currentMatch  int

	// Filter state
	filtering    bool
	filterCursor int
	kindFilters  map[compare.Kind]bool

	// Sort state
	sorting    bool
	sortCursor int
	sortOrder  SortOrder

	// Pending multi-key sequences (gg)
	pendingG bool

	updateAvailable string
}

// NewModel creates the difference browser for a comparison
func NewModel(c Comparison, version string) Model {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.CharLimit = 100
	ti.Width = 40

	return Model{
		comparison:  c,
		version:     version,
		expanded:    make(map[int]bool),
		searchInput: ti,
		sortOrder:   SortDefault,
	}
}

// Init starts the async update check
func (m Model) Init() tea.Cmd {
	return checkUpdateCmd(m.version)
}

func checkUpdateCmd(version string) tea.Cmd {
	return func() tea.Msg {
		if updater.IsSkipUpdateCheck() {
			return nil
		}
		latest, hasUpdate, err := updater.CheckLatestWithCache(version, updater.UpdateCheckIntervalDays())
		if err != nil || !hasUpdate {
			return nil
		}
		return UpdateAvailableMsg{Version: latest}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case UpdateAvailableMsg:
		m.updateAvailable = msg.Version
		if m.ready {
			m.resizeViewport()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()
		m.updateViewportContent()
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		if m.sorting {
			return m.handleSortKey(msg)
		}
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleNormalKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// resizeViewport recomputes the viewport size from the window size and
// the fixed header/footer heights.
func (m *Model) resizeViewport() {
	headerHeight := 4
	footerHeight := 3
	if m.updateAvailable != "" {
		footerHeight = 4
	}
	verticalMargins := headerHeight + footerHeight

	if !m.ready {
		m.viewport = viewport.New(m.width-4, m.height-verticalMargins)
		m.viewport.YPosition = headerHeight
		m.ready = true
	} else {
		m.viewport.Width = m.width - 4
		m.viewport.Height = m.height - verticalMargins
	}
}

// normalKeyHandler handles one key in normal mode. The bool reports
// whether the key was consumed; unconsumed keys fall through to the
// viewport.
type normalKeyHandler func(m Model) (Model, tea.Cmd, bool)

var normalKeyHandlers = map[string]normalKeyHandler{
	"q":         handleQuit,
	"ctrl+c":    handleQuit,
	"up":        handleCursorUp,
	"k":         handleCursorUp,
	"down":      handleCursorDown,
	"j":         handleCursorDown,
	"enter":     handleToggleExpand,
	" ":         handleToggleExpand,
	"l":         handleExpand,
	"right":     handleExpand,
	"h":         handleCollapse,
	"left":      handleCollapse,
	"backspace": handleCollapse,
	"e":         handleExpandAll,
	"c":         handleCollapseAll,
	"f":         handleOpenFilter,
	"s":         handleOpenSort,
	"a":         handleToggleAlignedView,
	"/":         handleStartSearch,
	"n":         handleNextMatch,
	"N":         handlePrevMatch,
	"esc":       handleEscape,
	"d":         handleHalfPageDown,
	"ctrl+d":    handleHalfPageDown,
	"u":         handleHalfPageUp,
	"ctrl+u":    handleHalfPageUp,
	"g":         handleGKey,
	"G":         handleGotoBottom,
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key != "g" {
		m.pendingG = false
	}

	if handler, ok := normalKeyHandlers[key]; ok {
		newModel, cmd, handled := handler(m)
		if handled {
			return newModel, cmd
		}
		m = newModel
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func handleQuit(m Model) (Model, tea.Cmd, bool) {
	return m, tea.Quit, true
}

func handleCursorUp(m Model) (Model, tea.Cmd, bool) {
	if m.alignedView {
		return m, nil, false
	}
	if m.cursor > 0 {
		m.cursor--
		m.updateViewportContent()
		m.ensureCursorVisible()
	}
	return m, nil, true
}

func handleCursorDown(m Model) (Model, tea.Cmd, bool) {
	if m.alignedView {
		return m, nil, false
	}
	if m.cursor < len(m.displayedDiffs())-1 {
		m.cursor++
		m.updateViewportContent()
		m.ensureCursorVisible()
	}
	return m, nil, true
}

func handleToggleExpand(m Model) (Model, tea.Cmd, bool) {
	if m.alignedView {
		return m, nil, true
	}
	displayed := m.displayedDiffs()
	if len(displayed) == 0 || m.cursor >= len(displayed) {
		return m, nil, true
	}
	idx := displayed[m.cursor]
	m.expanded[idx] = !m.expanded[idx]
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil, true
}

func handleExpand(m Model) (Model, tea.Cmd, bool) {
	if m.alignedView {
		return m, nil, true
	}
	displayed := m.displayedDiffs()
	if len(displayed) == 0 || m.cursor >= len(displayed) {
		return m, nil, true
	}
	m.expanded[displayed[m.cursor]] = true
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil, true
}

func handleCollapse(m Model) (Model, tea.Cmd, bool) {
	if m.alignedView {
		return m, nil, true
	}
	displayed := m.displayedDiffs()
	if len(displayed) == 0 || m.cursor >= len(displayed) {
		return m, nil, true
	}
	delete(m.expanded, displayed[m.cursor])
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil, true
}

func handleExpandAll(m Model) (Model, tea.Cmd, bool) {
	if m.alignedView {
		return m, nil, true
	}
	for _, idx := range m.displayedDiffs() {
		m.expanded[idx] = true
	}
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil, true
}

func handleCollapseAll(m Model) (Model, tea.Cmd, bool) {
	if m.alignedView {
		return m, nil, true
	}
	m.expanded = make(map[int]bool)
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil, true
}

func handleOpenFilter(m Model) (Model, tea.Cmd, bool) {
	if m.alignedView {
		return m, nil, true
	}
	m.filtering = true
	m.filterCursor = 0
	return m, nil, true
}

func handleOpenSort(m Model) (Model, tea.Cmd, bool) {
	if m.alignedView {
		return m, nil, true
	}
	m.sorting = true
	m.sortCursor = 0
	for i, opt := range sortOptions {
		if opt == m.sortOrder {
			m.sortCursor = i
		}
	}
	return m, nil, true
}

func handleToggleAlignedView(m Model) (Model, tea.Cmd, bool) {
	m.alignedView = !m.alignedView
	m.updateViewportContent()
	if m.alignedView {
		m.viewport.GotoTop()
	} else {
		m.ensureCursorVisible()
	}
	return m, nil, true
}

func handleStartSearch(m Model) (Model, tea.Cmd, bool) {
	if m.alignedView {
		return m, nil, true
	}
	m.searching = true
	m.searchInput.SetValue("")
	m.searchInput.Focus()
	return m, nil, true
}

func handleNextMatch(m Model) (Model, tea.Cmd, bool) {
	if len(m.searchMatches) == 0 {
		return m, nil, true
	}
	m.currentMatch = (m.currentMatch + 1) % len(m.searchMatches)
	m.cursor = m.searchMatches[m.currentMatch]
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil, true
}

func handlePrevMatch(m Model) (Model, tea.Cmd, bool) {
	if len(m.searchMatches) == 0 {
		return m, nil, true
	}
	m.currentMatch = (m.currentMatch - 1 + len(m.searchMatches)) % len(m.searchMatches)
	m.cursor = m.searchMatches[m.currentMatch]
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil, true
}

func handleEscape(m Model) (Model, tea.Cmd, bool) {
	if m.searchQuery != "" {
		m.clearSearch()
		return m, nil, true
	}
	if len(m.kindFilters) > 0 {
		m.kindFilters = nil
		m.cursor = 0
		m.updateViewportContent()
		return m, nil, true
	}
	return m, tea.Quit, true
}

func handleHalfPageDown(m Model) (Model, tea.Cmd, bool) {
	m.viewport.HalfViewDown()
	return m, nil, true
}

func handleHalfPageUp(m Model) (Model, tea.Cmd, bool) {
	m.viewport.HalfViewUp()
	return m, nil, true
}

func handleGKey(m Model) (Model, tea.Cmd, bool) {
	if m.pendingG {
		m.pendingG = false
		m.cursor = 0
		m.updateViewportContent()
		m.viewport.GotoTop()
		return m, nil, true
	}
	m.pendingG = true
	return m, nil, true
}

func handleGotoBottom(m Model) (Model, tea.Cmd, bool) {
	if m.alignedView {
		m.viewport.GotoBottom()
		return m, nil, true
	}
	displayed := m.displayedDiffs()
	if len(displayed) > 0 {
		m.cursor = len(displayed) - 1
	}
	m.updateViewportContent()
	m.viewport.GotoBottom()
	return m, nil, true
}

// handleFilterKey handles keys while the filter picker is open
func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.kindFilters = nil
		m.filtering = false
		m.cursor = 0
		m.updateViewportContent()
	case "enter":
		m.filtering = false
		m.clampCursor()
		m.updateViewportContent()
	case "up", "k":
		if m.filterCursor > 0 {
			m.filterCursor--
		}
	case "down", "j":
		if m.filterCursor < len(filterableKinds)-1 {
			m.filterCursor++
		}
	case " ":
		kind := filterableKinds[m.filterCursor]
		if m.kindFilters == nil {
			m.kindFilters = make(map[compare.Kind]bool)
		}
		if m.kindFilters[kind] {
			delete(m.kindFilters, kind)
			if len(m.kindFilters) == 0 {
				m.kindFilters = nil
			}
		} else {
			m.kindFilters[kind] = true
		}
	case "a":
		m.kindFilters = make(map[compare.Kind]bool)
		for _, k := range filterableKinds {
			m.kindFilters[k] = true
		}
	case "c":
		m.kindFilters = nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// handleSortKey handles keys while the sort picker is open
func (m Model) handleSortKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.sorting = false
	case "enter", " ":
		m.sortOrder = sortOptions[m.sortCursor]
		m.sorting = false
		m.cursor = 0
		m.updateViewportContent()
		m.viewport.GotoTop()
	case "up", "k":
		if m.sortCursor > 0 {
			m.sortCursor--
		}
	case "down", "j":
		if m.sortCursor < len(sortOptions)-1 {
			m.sortCursor++
		}
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// handleSearchKey handles keys while the search input is focused
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		m.clearSearch()
		return m, nil
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		m.searchQuery = m.searchInput.Value()
		m.performSearch()
		m.updateViewportContent()
		m.ensureCursorVisible()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *Model) clearSearch() {
	m.searchQuery = ""
	m.searchInput.SetValue("")
	m.searchMatches = nil
	m.currentMatch = 0
	m.updateViewportContent()
}

func (m *Model) clampCursor() {
	n := len(m.displayedDiffs())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// displayedDiffs returns indices into comparison.Diffs after applying
// the kind filter and sort order.
func (m Model) displayedDiffs() []int {
	indices := make([]int, 0, len(m.comparison.Diffs))
	for i, d := range m.comparison.Diffs {
		if len(m.kindFilters) > 0 && !m.kindFilters[d.Kind] {
			continue
		}
		indices = append(indices, i)
	}

	diffs := m.comparison.Diffs
	switch m.sortOrder {
	case SortByKind:
		sort.SliceStable(indices, func(a, b int) bool {
			return kindOrder[diffs[indices[a]].Kind] < kindOrder[diffs[indices[b]].Kind]
		})
	case SortByRow:
		sort.SliceStable(indices, func(a, b int) bool {
			da, db := diffs[indices[a]], diffs[indices[b]]
			if da.Row != db.Row {
				return da.Row < db.Row
			}
			return da.Column < db.Column
		})
	}

	return indices
}

// fuzzyMatch reports whether query is a case-insensitive subsequence of
// text.
func fuzzyMatch(text, query string) bool {
	if query == "" {
		return true
	}
	text = strings.ToLower(text)
	query = strings.ToLower(query)

	tIdx := 0
	for _, qc := range query {
		found := false
		for tIdx < len(text) {
			if rune(text[tIdx]) == qc {
				found = true
				tIdx++
				break
			}
			tIdx++
		}
		if !found {
			return false
		}
	}
	return true
}

// performSearch recomputes match positions for the current query. Terms
// are space separated and must all match (AND).
func (m *Model) performSearch() {
	m.searchMatches = nil
	m.currentMatch = 0
	if m.searchQuery == "" {
		return
	}

	terms := strings.Fields(strings.ToLower(m.searchQuery))
	displayed := m.displayedDiffs()
	for pos, idx := range displayed {
		searchable := searchableText(m.comparison.Diffs[idx])
		allMatch := true
		for _, term := range terms {
			if !fuzzyMatch(searchable, term) {
				allMatch = false
				break
			}
		}
		if allMatch {
			m.searchMatches = append(m.searchMatches, pos)
		}
	}

	if len(m.searchMatches) > 0 {
		m.cursor = m.searchMatches[0]
	}
}

// searchableText flattens a difference into the text the search runs
// over.
func searchableText(d compare.Difference) string {
	switch d.Kind {
	case compare.KindRowCount:
		return fmt.Sprintf("row count %d %d", d.Count1, d.Count2)
	case compare.KindMissingRow:
		return fmt.Sprintf("missing row %d %s %s", d.Row, d.PresentIn, strings.Join(d.Data, " "))
	case compare.KindColumnCount:
		return fmt.Sprintf("column count row %d %d %d", d.Row, d.Count1, d.Count2)
	case compare.KindCell:
		return fmt.Sprintf("cell row %d column %d %s %s", d.Row, d.Column, d.Value1, d.Value2)
	default:
		return string(d.Kind)
	}
}

func (m Model) isSearchMatch(pos int) bool {
	for _, p := range m.searchMatches {
		if p == pos {
			return true
		}
	}
	return false
}

// updateViewportContent re-renders the list or the aligned diff into the
// viewport.
func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	if m.alignedView {
		m.viewport.SetContent(m.renderAlignedDiff())
		return
	}
	m.viewport.SetContent(m.renderDifferences())
}

// ensureCursorVisible scrolls the viewport so the cursor line is on
// screen.
func (m *Model) ensureCursorVisible() {
	if m.cursor < 0 || m.cursor >= len(m.diffLineStarts) {
		return
	}
	line := m.diffLineStarts[m.cursor]
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height - 1
	if line < top {
		m.viewport.SetYOffset(line)
	} else if line > bottom {
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

// renderDifferences renders the difference list with expansion state,
// tracking line starts for cursor scrolling.
func (m *Model) renderDifferences() string {
	displayed := m.displayedDiffs()
	m.diffLineStarts = make([]int, len(displayed))

	var b strings.Builder
	lineCount := 0

	if len(displayed) == 0 {
		var msg string
		switch {
		case len(m.comparison.Diffs) == 0:
			msg = "Files are identical."
		case len(m.kindFilters) > 0:
			msg = "No differences match the active filter."
		default:
			msg = "No differences to show."
		}
		b.WriteString(mutedColor.Render(msg))
		b.WriteString("\n")
		lineCount++
	}

	for pos, idx := range displayed {
		d := m.comparison.Diffs[idx]
		m.diffLineStarts[pos] = lineCount

		if pos == m.cursor {
			b.WriteString(m.renderSelectedDiffLine(d, m.expanded[idx]))
		} else {
			b.WriteString(m.renderDiffLine(d, m.expanded[idx], m.isSearchMatch(pos)))
		}
		b.WriteString("\n")
		lineCount++

		if m.expanded[idx] {
			detail := m.renderExpandedDifference(d)
			for _, line := range strings.Split(detail, "\n") {
				b.WriteString(line)
				b.WriteString("\n")
				lineCount++
			}
		}
	}

	if len(displayed) > 0 {
		b.WriteString("\n")
		b.WriteString(mutedColor.Render("── End of Differences ──"))
		b.WriteString("\n")
		lineCount += 2
	}

	m.contentLineCount = lineCount

	// Pad so short content does not float above the footer
	for lineCount < m.viewport.Height {
		b.WriteString("\n")
		lineCount++
	}

	return b.String()
}

// renderDiffLine renders one collapsed or expanded list entry
func (m Model) renderDiffLine(d compare.Difference, expanded, isMatch bool) string {
	var b strings.Builder

	if expanded {
		b.WriteString(expandedIndicator)
	} else {
		b.WriteString(collapsedIndicator)
	}
	b.WriteString(" ")
	b.WriteString(m.diffSymbol(d))
	b.WriteString(" ")

	label := m.diffLabel(d)
	if isMatch && m.searchQuery != "" {
		b.WriteString(highlightMatch(label, m.searchQuery))
	} else {
		b.WriteString(GetKindStyle(d.Kind).Render(label))
	}

	b.WriteString(" ")
	b.WriteString(mutedColor.Render(kindDescription(d.Kind)))

	return b.String()
}

// renderSelectedDiffLine renders the cursor line with a full-width
// background highlight.
func (m Model) renderSelectedDiffLine(d compare.Difference, expanded bool) string {
	var content strings.Builder

	if expanded {
		content.WriteString("▼")
	} else {
		content.WriteString("▶")
	}
	content.WriteString(" ")
	content.WriteString(m.plainDiffSymbol(d))
	content.WriteString(" ")
	content.WriteString(m.diffLabel(d))
	content.WriteString(" ")
	content.WriteString(kindDescription(d.Kind))

	line := content.String()
	targetWidth := m.width - 4
	if targetWidth > 0 && len(line) < targetWidth {
		line = line + strings.Repeat(" ", targetWidth-len(line))
	}

	style := lipgloss.NewStyle().
		Background(selectedBg).
		Foreground(GetKindColor(d.Kind)).
		Bold(true)

	return style.Render(line)
}

// diffSymbol returns the styled symbol for a difference, with missing
// rows rendered directionally.
func (m Model) diffSymbol(d compare.Difference) string {
	if d.Kind == compare.KindMissingRow {
		if d.PresentIn == m.comparison.Name2 {
			return addSymbol
		}
		return removeSymbol
	}
	return GetKindSymbol(d.Kind)
}

func (m Model) plainDiffSymbol(d compare.Difference) string {
	switch d.Kind {
	case compare.KindRowCount:
		return "≠"
	case compare.KindMissingRow:
		if d.PresentIn == m.comparison.Name2 {
			return "+"
		}
		return "-"
	case compare.KindColumnCount:
		return "#"
	default:
		return "~"
	}
}

// diffLabel renders the unstyled one-line summary of a difference
func (m Model) diffLabel(d compare.Difference) string {
	switch d.Kind {
	case compare.KindRowCount:
		return fmt.Sprintf("%d rows vs %d rows", d.Count1, d.Count2)
	case compare.KindMissingRow:
		return fmt.Sprintf("row %d only in %s", d.Row, d.PresentIn)
	case compare.KindColumnCount:
		return fmt.Sprintf("row %d: %d columns vs %d", d.Row, d.Count1, d.Count2)
	case compare.KindCell:
		return fmt.Sprintf("row %d, column %d: %q → %q", d.Row, d.Column, d.Value1, d.Value2)
	default:
		return string(d.Kind)
	}
}

func kindDescription(kind compare.Kind) string {
	switch kind {
	case compare.KindRowCount:
		return "row count mismatch"
	case compare.KindMissingRow:
		return "missing row"
	case compare.KindColumnCount:
		return "column count mismatch"
	case compare.KindCell:
		return "cell difference"
	default:
		return ""
	}
}

// renderExpandedDifference renders the indented detail block under an
// expanded entry.
func (m Model) renderExpandedDifference(d compare.Difference) string {
	switch d.Kind {
	case compare.KindRowCount:
		return m.renderExpandedRowCount(d)
	case compare.KindMissingRow:
		return m.renderExpandedMissingRow(d)
	case compare.KindColumnCount:
		return m.renderExpandedColumnCount(d)
	case compare.KindCell:
		return m.renderExpandedCell(d)
	default:
		return ""
	}
}

const detailIndent = "    "

func (m Model) renderExpandedRowCount(d compare.Difference) string {
	var b strings.Builder
	b.WriteString(detailIndent)
	b.WriteString(mutedColor.Render(m.comparison.Name1+": ") + fmt.Sprintf("%d rows", d.Count1))
	b.WriteString("\n")
	b.WriteString(detailIndent)
	b.WriteString(mutedColor.Render(m.comparison.Name2+": ") + fmt.Sprintf("%d rows", d.Count2))
	return b.String()
}

func (m Model) renderExpandedMissingRow(d compare.Difference) string {
	color := removeColor
	if d.PresentIn == m.comparison.Name2 {
		color = addColor
	}
	cellStyle := lipgloss.NewStyle().Foreground(color)

	var b strings.Builder
	for i, cell := range d.Data {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(detailIndent)
		b.WriteString(mutedColor.Render(fmt.Sprintf("column %d: ", i+1)))
		b.WriteString(cellStyle.Render(cell))

		if decoded, ok := TryDecodeValue(cell); ok {
			b.WriteString("\n")
			b.WriteString(m.renderDecodedBlock(fmt.Sprintf("column %d", i+1), decoded, cellStyle))
		}
	}
	if len(d.Data) == 0 {
		b.WriteString(detailIndent)
		b.WriteString(mutedColor.Render("(empty row)"))
	}
	return b.String()
}

func (m Model) renderExpandedColumnCount(d compare.Difference) string {
	row1 := m.rowAt(m.comparison.Table1, d.Row)
	row2 := m.rowAt(m.comparison.Table2, d.Row)

	var b strings.Builder
	b.WriteString(detailIndent)
	b.WriteString(mutedColor.Render(m.comparison.Name1+": ") + parser.FormatRow(row1))
	b.WriteString("\n")
	b.WriteString(detailIndent)
	b.WriteString(mutedColor.Render(m.comparison.Name2+": ") + parser.FormatRow(row2))
	return b.String()
}

func (m Model) renderExpandedCell(d compare.Difference) string {
	var b strings.Builder

	row1 := m.rowAt(m.comparison.Table1, d.Row)
	row2 := m.rowAt(m.comparison.Table2, d.Row)
	if row1 != nil {
		b.WriteString(detailIndent)
		b.WriteString(mutedColor.Render(fmt.Sprintf("row %d of %s: ", d.Row, m.comparison.Name1)))
		b.WriteString(parser.FormatRow(row1))
		b.WriteString("\n")
	}
	if row2 != nil {
		b.WriteString(detailIndent)
		b.WriteString(mutedColor.Render(fmt.Sprintf("row %d of %s: ", d.Row, m.comparison.Name2)))
		b.WriteString(parser.FormatRow(row2))
		b.WriteString("\n")
	}

	b.WriteString(detailIndent)
	b.WriteString(oldValueStyle.Render(fmt.Sprintf("%q", d.Value1)))
	b.WriteString(mutedColor.Render(" → "))
	b.WriteString(newValueStyle.Render(fmt.Sprintf("%q", d.Value2)))

	oldDecoded, oldOk := TryDecodeValue(d.Value1)
	newDecoded, newOk := TryDecodeValue(d.Value2)
	switch {
	case oldOk && newOk:
		b.WriteString("\n")
		b.WriteString(m.renderDecodedDiff(oldDecoded, newDecoded))
	case oldOk:
		b.WriteString("\n")
		b.WriteString(m.renderDecodedBlock("old value", oldDecoded, oldValueStyle))
	case newOk:
		b.WriteString("\n")
		b.WriteString(m.renderDecodedBlock("new value", newDecoded, newValueStyle))
	}

	return b.String()
}

// rowAt returns the 1-based row of a table, or nil when out of range
func (m Model) rowAt(t parser.Table, row int) []string {
	if row < 1 || row > len(t) {
		return nil
	}
	return t[row-1]
}

// renderDecodedBlock renders a decoded payload between markers
func (m Model) renderDecodedBlock(label, decoded string, style lipgloss.Style) string {
	maxWidth := m.detailWidth()

	var b strings.Builder
	b.WriteString(detailIndent)
	b.WriteString(decodedStyle.Render("┄┄┄ decoded " + label + " ┄┄┄"))
	for _, line := range strings.Split(decoded, "\n") {
		wrapped := wrapText(line, maxWidth)
		for _, wl := range strings.Split(wrapped, "\n") {
			b.WriteString("\n")
			b.WriteString(detailIndent)
			b.WriteString(style.Render("  " + wl))
		}
	}
	b.WriteString("\n")
	b.WriteString(detailIndent)
	b.WriteString(decodedStyle.Render("┄┄┄ end " + label + " ┄┄┄"))
	return b.String()
}

// renderDecodedDiff renders a line diff of two decoded payloads
func (m Model) renderDecodedDiff(oldDecoded, newDecoded string) string {
	oldLines := strings.Split(oldDecoded, "\n")
	newLines := strings.Split(newDecoded, "\n")
	diff := ComputeDiff(oldLines, newLines)
	contextDiff := ContextDiff(diff, 3)

	var b strings.Builder
	b.WriteString(detailIndent)
	b.WriteString(decodedStyle.Render("┄┄┄ decoded value diff ┄┄┄"))
	b.WriteString("\n")
	if contextDiff == nil {
		b.WriteString(detailIndent)
		b.WriteString(mutedColor.Render("  (no changes in decoded content)"))
		b.WriteString("\n")
	} else {
		renderDiffLines(&b, contextDiff, detailIndent, m.detailWidth())
	}
	b.WriteString(detailIndent)
	b.WriteString(decodedStyle.Render("┄┄┄ end decoded value diff ┄┄┄"))
	return b.String()
}

func (m Model) detailWidth() int {
	if m.viewport.Width > 0 {
		return m.viewport.Width
	}
	return 80
}

// renderAlignedDiff renders the row-aligned diff of the two whole files
func (m Model) renderAlignedDiff() string {
	var b strings.Builder
	b.WriteString(mutedColor.Render(fmt.Sprintf("Aligned row diff: %s vs %s", m.comparison.Name1, m.comparison.Name2)))
	b.WriteString("\n\n")

	diff := TableDiff(m.comparison.Table1, m.comparison.Table2)
	contextDiff := ContextDiff(diff, 3)
	if contextDiff == nil {
		b.WriteString(mutedColor.Render("Files are identical."))
		b.WriteString("\n")
		return b.String()
	}

	renderDiffLines(&b, contextDiff, "", m.detailWidth())
	b.WriteString("\n")
	b.WriteString(mutedColor.Render("── End of Diff ──"))
	b.WriteString("\n")
	return b.String()
}

// renderDiffLines writes context-diff lines into a builder, handling all
// DiffOp types including DiffSeparator for collapsed equal runs.
func renderDiffLines(b *strings.Builder, diff []DiffLine, indent string, maxWidth int) {
	for _, d := range diff {
		switch d.Op {
		case DiffSeparator:
			b.WriteString(indent)
			b.WriteString(mutedColor.Render("@@ ··· @@"))
			b.WriteString("\n")
		case DiffDelete:
			wrapped := wrapText(d.Text, maxWidth-len(indent)-4)
			for _, wl := range strings.Split(wrapped, "\n") {
				b.WriteString(indent)
				b.WriteString(lipgloss.NewStyle().Foreground(removeColor).Render("- " + wl))
				b.WriteString("\n")
			}
		case DiffInsert:
			wrapped := wrapText(d.Text, maxWidth-len(indent)-4)
			for _, wl := range strings.Split(wrapped, "\n") {
				b.WriteString(indent)
				b.WriteString(lipgloss.NewStyle().Foreground(addColor).Render("+ " + wl))
				b.WriteString("\n")
			}
		case DiffEqual:
			wrapped := wrapText(d.Text, maxWidth-len(indent)-4)
			for _, wl := range strings.Split(wrapped, "\n") {
				b.WriteString(indent)
				b.WriteString(mutedColor.Render("  " + wl))
				b.WriteString("\n")
			}
		}
	}
}

func wrapText(s string, width int) string {
	if width <= 10 {
		return s
	}
	return wordwrap.String(s, width)
}

func highlightMatch(text, query string) string {
	lower := strings.ToLower(text)
	lowerQuery := strings.ToLower(query)

	idx := strings.Index(lower, lowerQuery)
	if idx == -1 {
		return text
	}

	before := text[:idx]
	match := text[idx : idx+len(query)]
	after := text[idx+len(query):]

	return before + matchStyle.Render(match) + after
}

// sortOrderLabel returns a display label for a sort option
func sortOrderLabel(opt SortOrder) string {
	switch opt {
	case SortDefault:
		return "default (discovery order)"
	case SortByKind:
		return "by kind"
	case SortByRow:
		return "by row"
	default:
		return string(opt)
	}
}

// sortOrderHint returns a one-line hint explaining what a sort option does
func sortOrderHint(opt SortOrder) string {
	switch opt {
	case SortDefault:
		return "as the comparison found them"
	case SortByKind:
		return "group row count, missing rows, columns, cells"
	case SortByRow:
		return "ascending by row, then column"
	default:
		return ""
	}
}

// filterKindLabel returns a short label for the filter picker
func filterKindLabel(kind compare.Kind) string {
	switch kind {
	case compare.KindRowCount:
		return "row count"
	case compare.KindMissingRow:
		return "missing rows"
	case compare.KindColumnCount:
		return "column count"
	case compare.KindCell:
		return "cells"
	default:
		return string(kind)
	}
}

// viewFilterPicker renders the filter picker overlay (returns full view, caller returns early).
func (m Model) viewFilterPicker() string {
	var b strings.Builder
	b.WriteString(searchStyle.Render("Filter by kind (Space: toggle, a: all, c: clear, Enter: apply, Esc: clear all and close)"))
	b.WriteString("\n\n")
	for i, kind := range filterableKinds {
		checked := "[ ]"
		if m.kindFilters != nil && m.kindFilters[kind] {
			checked = "[x]"
		}
		rowStyle := lipgloss.NewStyle().Foreground(textColor)
		if i == m.filterCursor {
			rowStyle = rowStyle.Background(selectedBg)
		}
		b.WriteString(rowStyle.Render("  "+checked+" ") + GetKindStyle(kind).Render(filterKindLabel(kind)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k: navigate • Space: toggle • a: select all • c: clear all • Enter: apply • Esc: clear all and close"))
	return appStyle.Render(detailBorderStyle.Render(b.String()))
}

// viewSortPicker renders the sort picker overlay (returns full view, caller returns early).
func (m Model) viewSortPicker() string {
	var b strings.Builder
	b.WriteString(searchStyle.Render("Sort by (Enter/Space: select, Esc: close)"))
	b.WriteString("\n\n")
	for i, opt := range sortOptions {
		marker := "  "
		if opt == m.sortOrder {
			marker = "● "
		}
		rowStyle := lipgloss.NewStyle().Foreground(textColor)
		if i == m.sortCursor {
			rowStyle = rowStyle.Background(selectedBg)
		}
		line := marker + sortOrderLabel(opt) + " " + mutedColor.Render(sortOrderHint(opt))
		b.WriteString(rowStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k: navigate • Enter/Space: select • Esc: close"))
	return appStyle.Render(detailBorderStyle.Render(b.String()))
}

// viewHeader renders the header and summary.
func (m Model) viewHeader() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("🔺 CSV-Prism - CSV Comparison Viewer"))
	b.WriteString("\n")

	s := compare.Summarize(m.comparison.Diffs)
	if s.Total() == 0 {
		b.WriteString(summaryStyle.Render(fmt.Sprintf("  %s vs %s: no differences",
			m.comparison.Name1, m.comparison.Name2)))
	} else {
		b.WriteString(summaryStyle.Render(fmt.Sprintf("  %s vs %s: %s",
			m.comparison.Name1, m.comparison.Name2, summaryLine(s))))
	}
	b.WriteString("\n\n")
	return b.String()
}

// viewFilterStatus renders the filter status line when filters are active.
func (m Model) viewFilterStatus() string {
	if len(m.kindFilters) == 0 {
		return ""
	}
	var labels []string
	for _, kind := range filterableKinds {
		if m.kindFilters[kind] {
			labels = append(labels, filterKindLabel(kind))
		}
	}
	return searchStyle.Render(fmt.Sprintf("Filter: %s (%d active) • f: change • Esc: clear all", strings.Join(labels, ", "), len(labels))) + "\n\n"
}

// viewSortStatus renders the sort status line when not default.
func (m Model) viewSortStatus() string {
	if m.sortOrder == SortDefault || m.sortOrder == "" {
		return ""
	}
	return searchStyle.Render(fmt.Sprintf("Sort: %s • s: change", sortOrderLabel(m.sortOrder))) + "\n\n"
}

// viewSearchBar renders the search bar or match info.
func (m Model) viewSearchBar() string {
	if m.searching {
		return searchStyle.Render("Search: ") + m.searchInput.View() + "\n\n"
	}
	if m.searchQuery != "" {
		return searchStyle.Render(fmt.Sprintf("Search: %q (%d/%d matches)", m.searchQuery, m.currentMatch+1, len(m.searchMatches))) + "\n\n"
	}
	return ""
}

// viewHelpFooter returns the help footer text.
func (m Model) viewHelpFooter() string {
	if m.alignedView {
		return "j/k/↑↓: scroll • d/u: half page • gg/G: top/bottom • a: back to differences • q: quit"
	}
	help := "j/k/↑↓: navigate • l/→: expand • h/←/⌫: collapse • d/u: scroll • e/c: all • gg/G: top/bottom • a: aligned diff • /: search • f: filter • s: sort • q: quit"
	if len(m.kindFilters) > 0 {
		help += " • Esc: clear filter"
	}
	return help
}

// viewUpdateNudge renders the update available nudge.
func (m Model) viewUpdateNudge() string {
	if m.updateAvailable == "" {
		return ""
	}
	nudgeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Italic(true)
	return "\n" + nudgeStyle.Render(fmt.Sprintf("Update available: v%s. Run 'csvprism upgrade' to update.", m.updateAvailable))
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.filtering {
		return m.viewFilterPicker()
	}
	if m.sorting {
		return m.viewSortPicker()
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString(m.viewFilterStatus())
	b.WriteString(m.viewSortStatus())
	b.WriteString(m.viewSearchBar())
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.viewHelpFooter()))
	b.WriteString(m.viewUpdateNudge())
	return appStyle.Render(b.String())
}
