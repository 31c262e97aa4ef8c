package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/clierr"
)

func demoTasks() []Task {
	return []Task{
		{ID: "a", Title: "Audit invoice fields", Priority: PriorityCritical, Section: SectionPreparatory, EstimatedHours: 4},
		{ID: "b", Title: "Map FA-3 schema", Priority: PriorityHigh, Section: SectionTechnical, EstimatedHours: 8, Completed: true},
		{ID: "c", Title: "Sanitize P_7 descriptions", Priority: PriorityHigh, Section: SectionTechnical, EstimatedHours: 2, Notes: "blocked on ERP vendor"},
	}
}

func TestValidateListRejectsDuplicateIDs(t *testing.T) {
	tasks := demoTasks()
	tasks[2].ID = "a"
	err := ValidateList(tasks)
	var cliErr *clierr.Error
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierr.InvalidInput, cliErr.Code)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestValidateListRejectsBadFields(t *testing.T) {
	for name, mutate := range map[string]func(*Task){
		"empty id":       func(x *Task) { x.ID = "" },
		"empty title":    func(x *Task) { x.Title = "" },
		"bad priority":   func(x *Task) { x.Priority = "urgent" },
		"bad section":    func(x *Task) { x.Section = "misc" },
		"negative hours": func(x *Task) { x.EstimatedHours = -1 },
	} {
		t.Run(name, func(t *testing.T) {
			tasks := demoTasks()
			mutate(&tasks[1])
			assert.Error(t, ValidateList(tasks))
		})
	}
	assert.NoError(t, ValidateList(demoTasks()))
	assert.NoError(t, ValidateList(nil))
}

func TestCloneIsIndependent(t *testing.T) {
	orig := Task{ID: "a", Title: "x", Dependencies: []string{"b"}}
	c := orig.Clone()
	c.Dependencies[0] = "changed"
	assert.Equal(t, "b", orig.Dependencies[0])

	list := CloneList([]Task{orig})
	list[0].Title = "changed"
	assert.Equal(t, "x", orig.Title)
	assert.Nil(t, CloneList(nil))
}

func TestFilter(t *testing.T) {
	tasks := demoTasks()

	assert.Len(t, Filter(tasks, FilterOptions{}), 3)
	assert.Len(t, Filter(tasks, FilterOptions{Section: SectionTechnical}), 2)
	assert.Len(t, Filter(tasks, FilterOptions{Priority: PriorityCritical}), 1)

	done := true
	got := Filter(tasks, FilterOptions{Completed: &done})
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	// Search spans title, description, and notes, case-insensitively.
	got = Filter(tasks, FilterOptions{Search: "erp VENDOR"})
	assert.Empty(t, got)
	got = Filter(tasks, FilterOptions{Search: "erp vendor"})
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)
	got = Filter(tasks, FilterOptions{Search: "FA-3"})
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestFindByID(t *testing.T) {
	tasks := demoTasks()

	got, ok := FindByID(tasks, "b")
	require.True(t, ok)
	assert.Equal(t, "Map FA-3 schema", got.Title)

	// The returned copy does not alias the list.
	got.Title = "mutated"
	assert.Equal(t, "Map FA-3 schema", tasks[1].Title)

	_, ok = FindByID(tasks, "zzz")
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	p := Summarize(demoTasks())
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 1, p.Completed)
	assert.Equal(t, 33, p.Percent)

	require.Len(t, p.Sections, 2)
	// Rollout order: preparatory before technical.
	assert.Equal(t, SectionPreparatory, p.Sections[0].Section)
	assert.Equal(t, SectionTechnical, p.Sections[1].Section)
	assert.Equal(t, 10, p.Sections[1].Hours)
	assert.Equal(t, 1, p.Sections[1].Completed)
}

func TestSummarizeEmpty(t *testing.T) {
	p := Summarize(nil)
	assert.Equal(t, 0, p.Total)
	assert.Equal(t, 0, p.Percent)
	assert.Empty(t, p.Sections)
}
