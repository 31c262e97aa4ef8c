// Package tui implements the interactive checklist dashboard.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/config"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/store"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/task"
)

// view represents the current screen state.
type view int

const (
	viewChecklist view = iota
	viewDetail
)

// Key and layout constants.
const (
	keyEsc = "esc"

	boardChrome = 2 // blank line + status bar below the column area
	errorChrome = 1 // extra line when error toast is displayed
)

// Dashboard is the top-level bubbletea model. It renders the current
// checklist as section columns of task cards and writes toggles straight
// through the store.
type Dashboard struct {
	st  *store.Store
	cfg *config.Config

	snap       store.Snapshot
	industries []string // sorted bulk keys, empty in single mode
	industry   int      // index into industries
	tasks      []task.Task

	columns   []column
	activeCol int
	activeRow int
	view      view
	width     int
	height    int
	err       error
}

// column groups tasks belonging to a single section.
type column struct {
	section   string
	tasks     []task.Task
	scrollOff int // first visible row index
}

// NewDashboard creates a Dashboard model backed by the given store.
func NewDashboard(st *store.Store, cfg *config.Config) *Dashboard {
	d := &Dashboard{st: st, cfg: cfg}
	d.load()
	return d
}

// Init implements tea.Model.
func (d *Dashboard) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return d.handleKey(msg)
	case tea.MouseMsg:
		return d.handleMouse(msg)
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		return d, nil
	case ReloadMsg:
		d.st.Reload()
		d.load()
		return d, nil
	}
	return d, nil
}

// View implements tea.Model.
func (d *Dashboard) View() string {
	if d.width == 0 {
		return "Loading..."
	}
	if d.view == viewDetail {
		return d.viewTaskDetail()
	}
	return d.viewChecklist()
}

func (d *Dashboard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c"))) {
		return d, tea.Quit
	}

	if d.view == viewDetail {
		switch msg.String() {
		case "q", keyEsc, "enter":
			d.view = viewChecklist
		case " ":
			d.toggleSelected()
			d.view = viewChecklist
		}
		return d, nil
	}

	switch msg.String() {
	case "q", keyEsc:
		return d, tea.Quit
	case "h", "left":
		if d.activeCol > 0 {
			d.activeCol--
			d.clampRow()
		}
	case "l", "right":
		if d.activeCol < len(d.columns)-1 {
			d.activeCol++
			d.clampRow()
		}
	case "j", "down":
		col := d.currentColumn()
		if col != nil && d.activeRow < len(col.tasks)-1 {
			d.activeRow++
			d.ensureVisible()
		}
	case "k", "up":
		if d.activeRow > 0 {
			d.activeRow--
			d.ensureVisible()
		}
	case " ", "x":
		d.toggleSelected()
	case "enter":
		if d.selectedTask() != nil {
			d.view = viewDetail
		}
	case "tab":
		d.cycleClient()
	case "]":
		d.cycleIndustry(1)
	case "[":
		d.cycleIndustry(-1)
	case "r":
		d.st.Reload()
		d.load()
	}
	return d, nil
}

// handleMouse handles mouse click events for card selection.
func (d *Dashboard) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return d, nil
	}
	if d.view != viewChecklist {
		return d, nil
	}

	colWidth := d.columnWidth()
	clickedCol := msg.X / colWidth
	if clickedCol >= len(d.columns) {
		return d, nil
	}

	col := &d.columns[clickedCol]
	lineY := msg.Y - 1
	if lineY < 0 {
		d.activeCol = clickedCol
		d.clampRow()
		return d, nil
	}

	cardLine := 0
	for rowIdx := col.scrollOff; rowIdx < len(col.tasks); rowIdx++ {
		cardH := d.cardHeight(col.tasks[rowIdx], colWidth)
		if lineY < cardLine+cardH {
			d.activeCol = clickedCol
			d.activeRow = rowIdx
			d.ensureVisible()
			return d, nil
		}
		cardLine += cardH
	}

	d.activeCol = clickedCol
	d.clampRow()
	return d, nil
}

// toggleSelected flips the selected task through the store and reloads.
func (d *Dashboard) toggleSelected() {
	t := d.selectedTask()
	if t == nil {
		return
	}
	if _, _, err := d.st.ToggleTask(t.ID, d.industryKey()); err != nil {
		d.err = err
	}
	d.load()
}

// cycleClient switches to the next client in creation order (single mode).
func (d *Dashboard) cycleClient() {
	if len(d.snap.Clients) < 2 || d.snap.Mode != store.ModeSingle {
		return
	}

	ordered := make([]store.Client, 0, len(d.snap.Clients))
	for _, c := range d.snap.Clients {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].CreatedAt < ordered[j].CreatedAt })

	next := 0
	for i, c := range ordered {
		if c.ID == d.snap.ActiveClientID {
			next = (i + 1) % len(ordered)
			break
		}
	}
	if _, err := d.st.SwitchClient(ordered[next].ID); err != nil {
		d.err = err
	}
	d.load()
}

// cycleIndustry moves between bulk-mode industry tabs.
func (d *Dashboard) cycleIndustry(delta int) {
	if len(d.industries) < 2 {
		return
	}
	d.industry = (d.industry + delta + len(d.industries)) % len(d.industries)
	d.rebuildColumns()
}

// industryKey returns the bulk key mutations should target, or "".
func (d *Dashboard) industryKey() string {
	if d.snap.Mode == store.ModeBulk && d.industry < len(d.industries) {
		return d.industries[d.industry]
	}
	return ""
}

// load pulls a fresh snapshot and rebuilds the column layout.
func (d *Dashboard) load() {
	d.snap = d.st.Snapshot()

	d.industries = d.industries[:0]
	if d.snap.Mode == store.ModeBulk {
		for industry := range d.snap.BulkTasks {
			d.industries = append(d.industries, industry)
		}
		sort.Strings(d.industries)
		if d.industry >= len(d.industries) {
			d.industry = 0
		}
	} else {
		d.industry = 0
	}

	d.rebuildColumns()
}

func (d *Dashboard) rebuildColumns() {
	if k := d.industryKey(); k != "" {
		d.tasks = d.snap.BulkTasks[k]
	} else {
		d.tasks = d.snap.Tasks
	}

	// One column per section that actually has tasks, in rollout order.
	d.columns = d.columns[:0]
	for _, section := range task.Sections() {
		var col column
		col.section = section
		for _, t := range d.tasks {
			if t.Section == section {
				col.tasks = append(col.tasks, t)
			}
		}
		if len(col.tasks) > 0 {
			d.columns = append(d.columns, col)
		}
	}

	if d.activeCol >= len(d.columns) {
		d.activeCol = 0
	}
	d.clampRow()
}

func (d *Dashboard) currentColumn() *column {
	if d.activeCol >= 0 && d.activeCol < len(d.columns) {
		return &d.columns[d.activeCol]
	}
	return nil
}

func (d *Dashboard) selectedTask() *task.Task {
	col := d.currentColumn()
	if col == nil || len(col.tasks) == 0 {
		return nil
	}
	if d.activeRow >= 0 && d.activeRow < len(col.tasks) {
		return &col.tasks[d.activeRow]
	}
	return nil
}

func (d *Dashboard) clampRow() {
	col := d.currentColumn()
	if col == nil || len(col.tasks) == 0 {
		d.activeRow = 0
		return
	}
	if d.activeRow >= len(col.tasks) {
		d.activeRow = len(col.tasks) - 1
	}
	d.ensureVisible()
}

// chromeHeight returns the number of lines consumed by non-card elements below
// the column area: blank line + status bar (+ error line when an error is shown).
func (d *Dashboard) chromeHeight() int {
	h := boardChrome
	if d.err != nil {
		h += errorChrome
	}
	return h
}

// visibleCardsForColumn returns the number of cards that fit in the column,
// accounting for scroll indicator lines ("↑ N more" / "↓ N more") that
// consume vertical space.
func (d *Dashboard) visibleCardsForColumn(col *column, width int) int {
	budget := d.height - d.chromeHeight()
	if budget < 1 {
		return 1
	}

	// Always need 1 line for column header.
	avail := budget - 1

	if col.scrollOff > 0 {
		avail--
	}

	n := d.fitCardsInHeight(col, avail, width)

	if col.scrollOff+n < len(col.tasks) {
		// Re-compute with 1 fewer line for the down indicator.
		n = d.fitCardsInHeight(col, avail-1, width)
		if n < 1 {
			n = 1
		}
	}

	return n
}

// ensureVisible adjusts the active column's scroll offset so the
// selected row is within the visible window.
func (d *Dashboard) ensureVisible() {
	col := d.currentColumn()
	if col == nil {
		return
	}
	w := d.columnWidth()

	for range len(col.tasks) + 1 {
		maxVis := d.visibleCardsForColumn(col, w)

		switch {
		case d.activeRow >= col.scrollOff+maxVis:
			col.scrollOff = d.activeRow - maxVis + 1
		case d.activeRow < col.scrollOff:
			col.scrollOff = d.activeRow
		default:
			return // selected row is visible
		}
	}
}

func (d *Dashboard) fitCardsInHeight(col *column, avail, width int) int {
	if len(col.tasks) == 0 {
		return 1
	}
	if avail < 1 {
		return 1
	}

	used := 0
	count := 0
	for i := col.scrollOff; i < len(col.tasks); i++ {
		cardLines := d.cardHeight(col.tasks[i], width)
		if count > 0 && used+cardLines > avail {
			break
		}
		count++
		used += cardLines
		if used >= avail {
			break
		}
	}

	if count < 1 {
		return 1
	}
	return count
}

// --- Messages ---

// ReloadMsg is sent by the file watcher to trigger a dashboard refresh.
type ReloadMsg struct{}

// --- Styles ---

var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	activeColumnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	activeCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("226")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	robotStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("44"))

	// priorityBorders colors a card's border by its priority.
	priorityBorders = map[string]lipgloss.Color{
		task.PriorityCritical: "196",
		task.PriorityHigh:     "208",
		task.PriorityMedium:   "226",
		task.PriorityLow:      "240",
	}

	dialogPadY = 1
	dialogPadX = 2

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(dialogPadY, dialogPadX)
)

// --- View rendering ---

func (d *Dashboard) viewChecklist() string {
	if len(d.columns) == 0 {
		return "No tasks yet. Run `ksef-checklist generate` first.\n\n" +
			statusBarStyle.Render(" q:quit")
	}

	colWidth := d.columnWidth()

	renderedCols := make([]string, len(d.columns))
	for i, col := range d.columns {
		renderedCols[i] = d.renderColumn(i, col, colWidth)
	}

	boardView := lipgloss.JoinHorizontal(lipgloss.Top, renderedCols...)

	// Ensure the board view fits within the available height. At very small
	// terminal sizes, a single card can exceed the budget. Clamp from the
	// bottom (keeping headers at the top) and pad if needed.
	targetHeight := d.height - d.chromeHeight()
	if targetHeight > 0 {
		actual := strings.Count(boardView, "\n") + 1
		if actual > targetHeight {
			viewLines := strings.SplitN(boardView, "\n", targetHeight+1)
			boardView = strings.Join(viewLines[:targetHeight], "\n")
		} else if actual < targetHeight {
			boardView += strings.Repeat("\n", targetHeight-actual)
		}
	}

	statusBar := d.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, boardView, "", statusBar)
}

func (d *Dashboard) columnWidth() int {
	if d.width == 0 || len(d.columns) == 0 {
		return 30 //nolint:mnd // default column width
	}
	w := d.width / len(d.columns)
	const maxColWidth = 60
	if w > maxColWidth {
		w = maxColWidth
	}
	return w
}

func (d *Dashboard) renderColumn(colIdx int, col column, width int) string {
	done := 0
	for _, t := range col.tasks {
		if t.Completed {
			done++
		}
	}
	headerText := fmt.Sprintf("%s (%d/%d)", col.section, done, len(col.tasks))
	const headerPad = 2
	headerText = truncate(headerText, width-headerPad)

	var header string
	if colIdx == d.activeCol {
		header = activeColumnHeaderStyle.Width(width).Render(headerText)
	} else {
		header = columnHeaderStyle.Width(width).Render(headerText)
	}

	maxVis := d.visibleCardsForColumn(&col, width)
	start := col.scrollOff
	end := start + maxVis
	if end > len(col.tasks) {
		end = len(col.tasks)
	}
	if start > len(col.tasks) {
		start = len(col.tasks)
	}

	parts := []string{header}

	if start > 0 {
		indicator := fmt.Sprintf("  ↑ %d more", start)
		parts = append(parts, dimStyle.Width(width).Render(truncate(indicator, width)))
	}

	for rowIdx := start; rowIdx < end; rowIdx++ {
		t := col.tasks[rowIdx]
		active := colIdx == d.activeCol && rowIdx == d.activeRow
		parts = append(parts, d.renderCard(t, active, width))
	}

	if end < len(col.tasks) {
		remaining := len(col.tasks) - end
		indicator := fmt.Sprintf("  ↓ %d more", remaining)
		parts = append(parts, dimStyle.Width(width).Render(truncate(indicator, width)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (d *Dashboard) renderCard(t task.Task, active bool, width int) string {
	content := strings.Join(d.cardContentLines(t, width), "\n")

	style := activeCardStyle
	if !active {
		border := priorityBorders[t.Priority]
		if border == "" {
			border = "240"
		}
		style = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1)
	}

	return style.Width(width - 2).Render(content) //nolint:mnd // border width
}

func (d *Dashboard) cardHeight(t task.Task, width int) int {
	return len(d.cardContentLines(t, width)) + 2 //nolint:mnd // top and bottom borders
}

func (d *Dashboard) cardContentLines(t task.Task, width int) []string {
	const cardChrome = 4 // border (2) + padding (2)
	cardWidth := width - cardChrome
	if cardWidth < 1 {
		cardWidth = 1
	}

	mark := dimStyle.Render("[ ] ")
	titleStyle := lipgloss.NewStyle()
	if t.Completed {
		mark = doneStyle.Render("[x] ")
		titleStyle = dimStyle
	}

	const markLen = 4
	titleLines := wrapTitle(t.Title, cardWidth-markLen, d.cfg.TitleLines())
	lines := make([]string, 0, len(titleLines)+1)
	lines = append(lines, mark+titleStyle.Render(titleLines[0]))
	for _, l := range titleLines[1:] {
		lines = append(lines, strings.Repeat(" ", markLen)+titleStyle.Render(l))
	}

	meta := fmt.Sprintf("%s · %dh · D+%d", t.Priority, t.EstimatedHours, t.DeadlineDays)
	if t.Automatable {
		meta += " · " + robotStyle.Render("bot")
	}
	if t.Notes != "" {
		meta += " · ✎"
	}
	lines = append(lines, dimStyle.Render(truncate(meta, cardWidth)))

	return lines
}

func (d *Dashboard) renderStatusBar() string {
	done := 0
	for _, t := range d.tasks {
		if t.Completed {
			done++
		}
	}
	pct := 0
	if len(d.tasks) > 0 {
		pct = done * 100 / len(d.tasks)
	}

	scope := "personal plan"
	switch {
	case d.snap.Mode == store.ModeBulk && len(d.industries) > 0:
		scope = fmt.Sprintf("industry %s (%d/%d)", d.industries[d.industry], d.industry+1, len(d.industries))
	default:
		if c, ok := d.snap.ActiveClient(); ok {
			scope = c.Name
		}
	}

	status := fmt.Sprintf(" %s | %d/%d done (%d%%) | space:toggle enter:detail tab:client [ ]:industry q:quit",
		scope, done, len(d.tasks), pct)
	status = truncate(status, d.width)

	if d.err != nil {
		errStr := errorStyle.Render(truncate("Error: "+d.err.Error(), d.width))
		return errStr + "\n" + statusBarStyle.Render(status)
	}

	return statusBarStyle.Render(status)
}

func (d *Dashboard) viewTaskDetail() string {
	t := d.selectedTask()
	if t == nil {
		d.view = viewChecklist
		return d.viewChecklist()
	}

	const detailWidth = 64
	wrapW := min(detailWidth, d.width-2*dialogPadX-2)
	if wrapW < 20 {
		wrapW = 20
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(truncate(t.Title, wrapW)))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("%s · %s · %dh · day %d", t.Priority, t.Section, t.EstimatedHours, t.DeadlineDays))
	if t.Completed {
		sb.WriteString(doneStyle.Render("  done"))
	}
	sb.WriteString("\n")
	if t.Automatable {
		fn := t.RobotFunction
		if fn == "" {
			fn = "delegable to the local agent"
		}
		sb.WriteString(robotStyle.Render("automation: "+fn) + "\n")
	}
	if len(t.Dependencies) > 0 {
		sb.WriteString(dimStyle.Render("after: "+strings.Join(t.Dependencies, ", ")) + "\n")
	}
	if t.Description != "" {
		sb.WriteString("\n")
		for _, line := range wrapTitle(t.Description, wrapW, 12) { //nolint:mnd // detail body lines
			sb.WriteString(line + "\n")
		}
	}
	if t.Notes != "" {
		sb.WriteString("\n" + dimStyle.Render("note: "+t.Notes) + "\n")
	}
	sb.WriteString("\n" + dimStyle.Render("space:toggle  esc:back"))

	return dialogStyle.Render(sb.String())
}

// wrapTitle splits text across maxLines lines, word-wrapping at word
// boundaries. Each line is at most maxWidth characters.
func wrapTitle(text string, maxWidth, maxLines int) []string {
	if maxLines < 1 {
		maxLines = 1
	}
	if lipgloss.Width(text) <= maxWidth || maxLines == 1 {
		return []string{truncate(text, maxWidth)}
	}

	words := strings.Fields(text)
	lines := make([]string, 0, maxLines)
	var current strings.Builder

	for i, word := range words {
		if current.Len() == 0 {
			current.WriteString(word)
			continue
		}
		if lipgloss.Width(current.String())+1+lipgloss.Width(word) <= maxWidth {
			current.WriteByte(' ')
			current.WriteString(word)
		} else {
			lines = append(lines, truncate(current.String(), maxWidth))
			current.Reset()
			current.WriteString(word)
			if len(lines) == maxLines-1 {
				// Last line: append all remaining words.
				for _, w := range words[i+1:] {
					current.WriteByte(' ')
					current.WriteString(w)
				}
				break
			}
		}
	}
	if current.Len() > 0 {
		lines = append(lines, truncate(current.String(), maxWidth))
	}
	return lines
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	// Slice by runes to avoid breaking multi-byte UTF-8 characters.
	runes := []rune(s)
	target := maxLen - 3 //nolint:mnd // room for "..."
	if target > len(runes) {
		target = len(runes)
	}
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}
