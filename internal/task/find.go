package task

import (
	"strings"
)

// IndexByID returns the position of the task with the given id, or -1.
func IndexByID(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// FindByID returns a copy of the task with the given id.
func FindByID(tasks []Task, id string) (Task, bool) {
	if i := IndexByID(tasks, id); i >= 0 {
		return tasks[i].Clone(), true
	}
	return Task{}, false
}

// FilterOptions selects a subset of a task list. Zero values match everything.
type FilterOptions struct {
	Section   string
	Priority  string
	Completed *bool  // nil = both
	Search    string // case-insensitive match on title, description, notes
}

// Filter returns the tasks matching the given options, preserving order.
func Filter(tasks []Task, opts FilterOptions) []Task {
	search := strings.ToLower(opts.Search)
	var out []Task
	for _, t := range tasks {
		if opts.Section != "" && t.Section != opts.Section {
			continue
		}
		if opts.Priority != "" && t.Priority != opts.Priority {
			continue
		}
		if opts.Completed != nil && t.Completed != *opts.Completed {
			continue
		}
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesSearch(t Task, lowered string) bool {
	return strings.Contains(strings.ToLower(t.Title), lowered) ||
		strings.Contains(strings.ToLower(t.Description), lowered) ||
		strings.Contains(strings.ToLower(t.Notes), lowered)
}
