package task

import (
	"github.com/Deokateoer1/ksef-checklist-builder/internal/clierr"
)

// ValidatePriority checks that a priority is one of the allowed values.
func ValidatePriority(priority string) error {
	if PriorityIndex(priority) >= 0 {
		return nil
	}
	return clierr.Newf(clierr.InvalidPriority, "invalid priority %q", priority).
		WithDetails(map[string]any{
			"priority": priority,
			"allowed":  Priorities(),
		})
}

// ValidateSection checks that a section is one of the allowed values.
func ValidateSection(section string) error {
	if SectionIndex(section) >= 0 {
		return nil
	}
	return clierr.Newf(clierr.InvalidSection, "invalid section %q", section).
		WithDetails(map[string]any{
			"section": section,
			"allowed": Sections(),
		})
}

// ValidateList checks a generated or imported task list: every task must
// have a non-empty id, a known priority and section, and ids must be
// pairwise distinct within the list. Dependencies are informational and
// deliberately not resolved against the list.
func ValidateList(tasks []Task) error {
	seen := make(map[string]bool, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			return clierr.Newf(clierr.InvalidInput, "task at index %d has empty id", i)
		}
		if seen[t.ID] {
			return clierr.Newf(clierr.InvalidInput, "duplicate task id %q", t.ID).
				WithDetails(map[string]any{"id": t.ID})
		}
		seen[t.ID] = true
		if t.Title == "" {
			return clierr.Newf(clierr.InvalidInput, "task %q has empty title", t.ID)
		}
		if err := ValidatePriority(t.Priority); err != nil {
			return err
		}
		if err := ValidateSection(t.Section); err != nil {
			return err
		}
		if t.EstimatedHours < 0 {
			return clierr.Newf(clierr.InvalidInput,
				"task %q has negative estimated hours", t.ID)
		}
	}
	return nil
}
