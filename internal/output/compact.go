package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/task"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t))
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t task.Task) {
	fmt.Fprintln(w, formatTaskLine(t))

	meta := fmt.Sprintf("  est:%dh deadline:D+%d", t.EstimatedHours, t.DeadlineDays)
	if len(t.Dependencies) > 0 {
		meta += " deps:" + strings.Join(t.Dependencies, ",")
	}
	fmt.Fprintln(w, meta)

	if t.Notes != "" {
		fmt.Fprintln(w, "  note: "+t.Notes)
	}
	if t.Description != "" {
		for _, line := range strings.Split(t.Description, "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t task.Task) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	line := "[" + mark + "] " + t.ID + " [" + t.Section + "/" + t.Priority + "] " + t.Title
	if t.Automatable {
		line += " (bot)"
	}
	return line
}
