package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/agent"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/store"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/task"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Priority colors matching the TUI palette.
	priorityStyles = map[string]lipgloss.Style{
		task.PriorityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		task.PriorityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		task.PriorityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		task.PriorityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	// Section colors aligned with the TUI column-header palette.
	sectionStyles = map[string]lipgloss.Style{
		task.SectionPreparatory:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		task.SectionCompliance:    lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
		task.SectionAnalysis:      lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
		task.SectionTechnical:     lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		task.SectionErrorHandling: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		task.SectionTests:         lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		task.SectionDeployment:    lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	}

	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	robotStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("44")).Bold(true)
	onStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)
	offStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	priorityStyles = map[string]lipgloss.Style{}
	sectionStyles = map[string]lipgloss.Style{}
	doneStyle = lipgloss.NewStyle()
	robotStyle = lipgloss.NewStyle()
	onStyle = lipgloss.NewStyle()
	offStyle = lipgloss.NewStyle()
}

// TaskTable renders a list of tasks as a formatted table.
func TaskTable(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	// Calculate column widths.
	const pad = 2
	idW, doneW, prioW, sectionW, titleW, hoursW := 4, 6, 10, 9, 5, 7
	for _, t := range tasks {
		idW = max(idW, len(t.ID)+pad)
		prioW = max(prioW, len(t.Priority)+pad)
		sectionW = max(sectionW, len(t.Section)+pad)
		titleW = max(titleW, min(len(t.Title)+pad, 50)) //nolint:mnd // max title column width
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s %s",
		idW, "ID", doneW, "DONE", prioW, "PRIORITY",
		sectionW, "SECTION", titleW, "TITLE", hoursW, "HOURS", "DEADLINE")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, t := range tasks {
		title := t.Title
		const maxTitle = 48
		if len(title) > maxTitle {
			title = title[:maxTitle-3] + "..."
		}
		if t.Automatable {
			title += " " + robotStyle.Render("[bot]")
		}

		row := fmt.Sprintf("%-*s %s %s %s %s %-*d D+%d",
			idW, t.ID,
			padRight(doneDisplay(t.Completed), doneW),
			padRight(styledValue(t.Priority, priorityStyles), prioW),
			padRight(styledValue(t.Section, sectionStyles), sectionW),
			padRight(title, titleW),
			hoursW, t.EstimatedHours,
			t.DeadlineDays)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail.
func TaskDetail(w io.Writer, t task.Task) {
	titleLine := fmt.Sprintf("Task %s: %s", t.ID, t.Title)
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", len(titleLine)))

	printField(w, "Done", doneDisplay(t.Completed))
	printField(w, "Priority", styledValue(t.Priority, priorityStyles))
	printField(w, "Section", styledValue(t.Section, sectionStyles))
	printField(w, "Estimate", strconv.Itoa(t.EstimatedHours)+"h")
	printField(w, "Deadline", fmt.Sprintf("day %d of the rollout", t.DeadlineDays))
	if len(t.Dependencies) > 0 {
		printField(w, "Depends on", strings.Join(t.Dependencies, ", "))
	} else {
		printField(w, "Depends on", dimStyle.Render("--"))
	}
	if t.Automatable {
		fn := t.RobotFunction
		if fn == "" {
			fn = "delegable to the local agent"
		}
		printField(w, "Automation", robotStyle.Render(fn))
	}
	if t.Notes != "" {
		printField(w, "Notes", t.Notes)
	}

	if t.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, t.Description)
	}
}

// ProgressTable renders checklist completion overall and per section.
func ProgressTable(w io.Writer, name string, p task.Progress) {
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(name))
	fmt.Fprintf(w, "Progress: %d/%d tasks (%d%%)\n\n", p.Completed, p.Total, p.Percent)

	header := fmt.Sprintf("%-16s %6s %6s %7s", "SECTION", "DONE", "TOTAL", "HOURS")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, s := range p.Sections {
		const sectionColW = 16
		fmt.Fprintf(w, "%s %6d %6d %7d\n",
			padRight(styledValue(s.Section, sectionStyles), sectionColW),
			s.Completed, s.Total, s.Hours)
	}
}

// ClientTable renders the client list, marking the active one.
func ClientTable(w io.Writer, clients map[string]store.Client, activeID string) {
	if len(clients) == 0 {
		fmt.Fprintln(os.Stderr, "No clients found.")
		return
	}

	ordered := make([]store.Client, 0, len(clients))
	for _, c := range clients {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].CreatedAt < ordered[j].CreatedAt })

	header := fmt.Sprintf("%-38s %-24s %-12s %-8s %s", "ID", "NAME", "NIP", "TASKS", "CREATED")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, c := range ordered {
		name := c.Name
		if c.ID == activeID {
			name += " " + onStyle.Render("(active)")
		}
		nip := c.NIP
		if nip == "" {
			nip = dimStyle.Render("--")
		}
		created := time.UnixMilli(c.CreatedAt).Format("2006-01-02")
		fmt.Fprintf(w, "%-38s %s %s %-8d %s\n",
			c.ID, padRight(name, 24), padRight(nip, 12), len(c.Tasks), created) //nolint:mnd // column widths
	}
}

// AgentStatusTable renders the automation agent health report.
func AgentStatusTable(w io.Writer, s *agent.Status) {
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render("Automation agent"))
	printField(w, "Status", onOff(s.Status == "online", s.Status))
	printField(w, "KSeF link", onOff(s.KSeFConnected, boolWord(s.KSeFConnected)))
	printField(w, "Database", onOff(s.DBHealthy, boolWord(s.DBHealthy)))
	printField(w, "Queue", strconv.Itoa(s.RedisQueue)+" pending")
	printField(w, "Processed", strconv.Itoa(s.ProcessedToday)+" today")
}

// AgentLogTable renders agent log entries, oldest first.
func AgentLogTable(w io.Writer, entries []agent.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No log entries.")
		return
	}
	for _, e := range entries {
		level := e.Level
		if level == "" {
			level = "info"
		}
		fmt.Fprintf(w, "%s %s %s\n", dimStyle.Render(e.Time), padRight("["+level+"]", 8), e.Text) //nolint:mnd // level column width
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func doneDisplay(completed bool) string {
	if completed {
		return doneStyle.Render("[x]")
	}
	return dimStyle.Render("[ ]")
}

func onOff(ok bool, word string) string {
	if ok {
		return onStyle.Render(word)
	}
	return offStyle.Render(word)
}

func boolWord(ok bool) string {
	if ok {
		return "healthy"
	}
	return "down"
}

// styledValue renders s using a matching style from the map, or returns s unchanged.
func styledValue(s string, styles map[string]lipgloss.Style) string {
	if st, ok := styles[s]; ok {
		return st.Render(s)
	}
	return s
}
