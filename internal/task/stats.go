package task

import "sort"

// SectionStats summarizes completion within one section.
type SectionStats struct {
	Section   string `json:"section"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Hours     int    `json:"hours"`
}

// Progress summarizes completion of a whole checklist.
type Progress struct {
	Total     int            `json:"total"`
	Completed int            `json:"completed"`
	Percent   int            `json:"percent"`
	Sections  []SectionStats `json:"sections"`
}

// Summarize computes completion counts overall and per section.
// Sections with no tasks are omitted; section order follows Sections().
func Summarize(tasks []Task) Progress {
	bySection := make(map[string]*SectionStats)
	p := Progress{}
	for _, t := range tasks {
		p.Total++
		if t.Completed {
			p.Completed++
		}
		s := bySection[t.Section]
		if s == nil {
			s = &SectionStats{Section: t.Section}
			bySection[t.Section] = s
		}
		s.Total++
		s.Hours += t.EstimatedHours
		if t.Completed {
			s.Completed++
		}
	}
	if p.Total > 0 {
		p.Percent = p.Completed * 100 / p.Total
	}
	for _, name := range Sections() {
		if s, ok := bySection[name]; ok {
			p.Sections = append(p.Sections, *s)
			delete(bySection, name)
		}
	}
	// Unknown sections (imported data) go last, after the fixed stages.
	rest := make([]string, 0, len(bySection))
	for name := range bySection {
		rest = append(rest, name)
	}
	sort.Strings(rest)
	for _, name := range rest {
		p.Sections = append(p.Sections, *bySection[name])
	}
	return p
}
