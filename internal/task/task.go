// Package task defines the checklist task model and helpers over task lists.
package task

// Task represents a single implementation task within a checklist.
// IDs are opaque strings assigned at generation time and are stable for
// the lifetime of the checklist. Only Completed and Notes change after
// creation; everything else is frozen generator output.
type Task struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Priority       string   `json:"priority"`
	Section        string   `json:"section"`
	EstimatedHours int      `json:"estimatedHours"`
	DeadlineDays   int      `json:"deadlineDays"`
	Dependencies   []string `json:"dependencies"`
	Completed      bool     `json:"completed"`
	Notes          string   `json:"notes,omitempty"`
	Automatable    bool     `json:"automatable"`
	RobotFunction  string   `json:"robotFunction,omitempty"`
}

// Priorities in severity order, highest first.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// Sections are the fixed workflow stages of a KSeF rollout, in rollout order.
const (
	SectionPreparatory   = "preparatory"
	SectionCompliance    = "compliance"
	SectionAnalysis      = "analysis"
	SectionTechnical     = "technical"
	SectionErrorHandling = "error-handling"
	SectionTests         = "tests"
	SectionDeployment    = "deployment"
)

// Priorities returns the allowed priority values in severity order.
func Priorities() []string {
	return []string{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// Sections returns the allowed section values in rollout order.
func Sections() []string {
	return []string{
		SectionPreparatory,
		SectionCompliance,
		SectionAnalysis,
		SectionTechnical,
		SectionErrorHandling,
		SectionTests,
		SectionDeployment,
	}
}

// PriorityIndex returns the index of a priority in severity order, or -1.
func PriorityIndex(priority string) int {
	return indexOf(Priorities(), priority)
}

// SectionIndex returns the index of a section in rollout order, or -1.
func SectionIndex(section string) int {
	return indexOf(Sections(), section)
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	if t.Dependencies != nil {
		c.Dependencies = append([]string(nil), t.Dependencies...)
	}
	return c
}

// CloneList returns a deep copy of a task list.
func CloneList(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

func indexOf(slice []string, item string) int {
	for i, s := range slice {
		if s == item {
			return i
		}
	}
	return -1
}
