package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/clierr"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/generator"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/profile"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/task"
)

func testProfile() profile.Profile {
	return profile.Profile{
		CompanySize:     profile.SizeSmall,
		Industry:        "transport",
		ERPSystem:       profile.ERPPopular,
		MonthlyInvoices: profile.InvoicesLow,
	}
}

func sampleTasks(prefix string, n int) []task.Task {
	tasks := make([]task.Task, n)
	for i := range tasks {
		tasks[i] = task.Task{
			ID:             fmt.Sprintf("%s-%d", prefix, i+1),
			Title:          fmt.Sprintf("Task %d", i+1),
			Priority:       task.PriorityHigh,
			Section:        task.SectionPreparatory,
			EstimatedHours: 2,
			DeadlineDays:   30,
		}
	}
	return tasks
}

func fixedGen(tasks []task.Task) generator.Generator {
	return generator.Func(func(_ context.Context, _ profile.Profile) ([]task.Task, error) {
		return task.CloneList(tasks), nil
	})
}

func newTestStore(t *testing.T, gen generator.Generator) *Store {
	t.Helper()
	dir := t.TempDir()
	st := Open(Paths{
		State: filepath.Join(dir, "state.json"),
		Lock:  filepath.Join(dir, ".lock"),
		Log:   filepath.Join(dir, "activity.jsonl"),
	}, gen)
	t.Cleanup(st.Close)
	return st
}

func TestGenerateSynthesizesDefaultClient(t *testing.T) {
	st := newTestStore(t, fixedGen(sampleTasks("t", 3)))

	require.NoError(t, st.Generate(context.Background(), testProfile()))

	snap := st.Snapshot()
	assert.Len(t, snap.Tasks, 3)
	assert.Equal(t, ModeSingle, snap.Mode)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "transport", snap.Profile.Industry)

	// First solo generation wraps the plan in a default client.
	require.Contains(t, snap.Clients, "personal-setup")
	assert.Equal(t, "personal-setup", snap.ActiveClientID)
	assert.Len(t, snap.Clients["personal-setup"].Tasks, 3)
}

func TestGenerateFailureChangesNothing(t *testing.T) {
	st := newTestStore(t, fixedGen(sampleTasks("t", 2)))
	require.NoError(t, st.Generate(context.Background(), testProfile()))

	failing := generator.Func(func(_ context.Context, _ profile.Profile) ([]task.Task, error) {
		return nil, errors.New("model unavailable")
	})
	st.gen = failing

	err := st.Generate(context.Background(), testProfile())
	require.Error(t, err)
	var cliErr *clierr.Error
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierr.GenerationFailed, cliErr.Code)

	// Previous checklist survives intact.
	snap := st.Snapshot()
	assert.Len(t, snap.Tasks, 2)
	assert.Equal(t, "model unavailable", st.LastError())
}

func TestGenerateRejectsInvalidProfile(t *testing.T) {
	st := newTestStore(t, fixedGen(sampleTasks("t", 1)))

	p := testProfile()
	p.CompanySize = "gigantic"
	err := st.Generate(context.Background(), p)

	var cliErr *clierr.Error
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierr.InvalidProfile, cliErr.Code)
	assert.True(t, st.Snapshot().Empty())
}

func TestGenerateBusyGuard(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var startedOnce sync.Once
	blocking := generator.Func(func(_ context.Context, _ profile.Profile) ([]task.Task, error) {
		startedOnce.Do(func() { close(started) })
		<-release
		return sampleTasks("t", 1), nil
	})
	st := newTestStore(t, blocking)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = st.Generate(context.Background(), testProfile())
	}()

	<-started
	err := st.Generate(context.Background(), testProfile())
	var cliErr *clierr.Error
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierr.GenerationBusy, cliErr.Code)

	close(release)
	wg.Wait()

	// Once the first call finishes, generation is allowed again.
	assert.NoError(t, st.Generate(context.Background(), testProfile()))
}

func TestToggleTaskIsIdempotentPair(t *testing.T) {
	st := newTestStore(t, fixedGen(sampleTasks("t", 2)))
	require.NoError(t, st.Generate(context.Background(), testProfile()))

	got, changed, err := st.ToggleTask("t-1", "")
	require.NoError(t, err)
	require.True(t, changed)
	assert.True(t, got.Completed)

	got, changed, err = st.ToggleTask("t-1", "")
	require.NoError(t, err)
	require.True(t, changed)
	assert.False(t, got.Completed)

	snap := st.Snapshot()
	assert.False(t, snap.Tasks[0].Completed)
	assert.False(t, snap.Tasks[1].Completed)
}

func TestToggleUnknownIDIsNoOp(t *testing.T) {
	st := newTestStore(t, fixedGen(sampleTasks("t", 1)))
	require.NoError(t, st.Generate(context.Background(), testProfile()))

	_, changed, err := st.ToggleTask("missing", "")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestToggleMirrorsIntoActiveClient(t *testing.T) {
	st := newTestStore(t, fixedGen(sampleTasks("t", 2)))
	require.NoError(t, st.Generate(context.Background(), testProfile()))

	_, changed, err := st.ToggleTask("t-2", "")
	require.NoError(t, err)
	require.True(t, changed)

	c, ok := st.Snapshot().ActiveClient()
	require.True(t, ok)
	assert.True(t, c.Tasks[1].Completed)
}

func TestUpdateTaskNote(t *testing.T) {
	st := newTestStore(t, fixedGen(sampleTasks("t", 1)))
	require.NoError(t, st.Generate(context.Background(), testProfile()))

	changed, err := st.UpdateTaskNote("t-1", "waiting for IT", "")
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, "waiting for IT", st.Snapshot().Tasks[0].Notes)

	// Empty note clears, still a change.
	changed, err = st.UpdateTaskNote("t-1", "", "")
	require.NoError(t, err)
	require.True(t, changed)
	assert.Empty(t, st.Snapshot().Tasks[0].Notes)

	changed, err = st.UpdateTaskNote("missing", "x", "")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestGenerateBulkPartialFailure(t *testing.T) {
	gen := generator.Func(func(_ context.Context, p profile.Profile) ([]task.Task, error) {
		if p.Industry == "construction" {
			return nil, errors.New("quota exceeded")
		}
		return sampleTasks(p.Industry, 2), nil
	})
	st := newTestStore(t, gen)

	var calls []string
	progress := func(current, total int, status string) {
		calls = append(calls, fmt.Sprintf("%d/%d %s", current, total, status))
	}

	industries := []string{"transport", "construction", "retail"}
	require.NoError(t, st.GenerateBulk(context.Background(), industries, testProfile(), false, progress))

	// Progress fires before each industry, including the failing one.
	require.Equal(t, []string{
		"1/3 Analyzing industry: transport",
		"2/3 Analyzing industry: construction",
		"3/3 Analyzing industry: retail",
	}, calls)

	snap := st.Snapshot()
	assert.Equal(t, ModeBulk, snap.Mode)
	assert.Empty(t, snap.Tasks)
	assert.Len(t, snap.BulkTasks, 2)
	assert.Contains(t, snap.BulkTasks, "transport")
	assert.Contains(t, snap.BulkTasks, "retail")
	assert.NotContains(t, snap.BulkTasks, "construction")
}

func TestGenerateBulkMergeKeepsOrder(t *testing.T) {
	gen := generator.Func(func(_ context.Context, p profile.Profile) ([]task.Task, error) {
		return sampleTasks(p.Industry, 1), nil
	})
	st := newTestStore(t, gen)

	require.NoError(t, st.GenerateBulk(context.Background(), []string{"retail", "transport"}, testProfile(), true, nil))

	snap := st.Snapshot()
	assert.Equal(t, ModeSingle, snap.Mode)
	assert.Empty(t, snap.BulkTasks)
	require.Len(t, snap.Tasks, 2)
	assert.Equal(t, "retail-1", snap.Tasks[0].ID)
	assert.Equal(t, "transport-1", snap.Tasks[1].ID)
}

func TestGenerateBulkRequiresIndustries(t *testing.T) {
	st := newTestStore(t, fixedGen(nil))
	err := st.GenerateBulk(context.Background(), nil, testProfile(), false, nil)
	var cliErr *clierr.Error
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierr.InvalidInput, cliErr.Code)
}

func TestBulkToggleTargetsOneIndustry(t *testing.T) {
	gen := generator.Func(func(_ context.Context, p profile.Profile) ([]task.Task, error) {
		return sampleTasks("t", 1), nil
	})
	st := newTestStore(t, gen)
	require.NoError(t, st.GenerateBulk(context.Background(), []string{"transport", "retail"}, testProfile(), false, nil))

	_, changed, err := st.ToggleTask("t-1", "transport")
	require.NoError(t, err)
	require.True(t, changed)

	snap := st.Snapshot()
	assert.True(t, snap.BulkTasks["transport"][0].Completed)
	assert.False(t, snap.BulkTasks["retail"][0].Completed)

	// Unknown industry key is a no-op.
	_, changed, err = st.ToggleTask("t-1", "nonexistent")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestClientsAreIsolated(t *testing.T) {
	st := newTestStore(t, fixedGen(sampleTasks("t", 2)))
	st.SetIDFunc(sequentialIDs("client"))

	acme, err := st.AddClient(context.Background(), "Acme", "1111111111", testProfile())
	require.NoError(t, err)
	beta, err := st.AddClient(context.Background(), "Beta", "", testProfile())
	require.NoError(t, err)
	require.NotEqual(t, acme.ID, beta.ID)

	// Beta is active; toggling mutates Beta's list only.
	_, changed, err := st.ToggleTask("t-1", "")
	require.NoError(t, err)
	require.True(t, changed)

	snap := st.Snapshot()
	assert.Equal(t, beta.ID, snap.ActiveClientID)
	assert.True(t, snap.Clients[beta.ID].Tasks[0].Completed)
	assert.False(t, snap.Clients[acme.ID].Tasks[0].Completed)
}

func TestSwitchAndRemoveClient(t *testing.T) {
	st := newTestStore(t, fixedGen(sampleTasks("t", 1)))
	st.SetIDFunc(sequentialIDs("client"))

	acme, err := st.AddClient(context.Background(), "Acme", "", testProfile())
	require.NoError(t, err)
	beta, err := st.AddClient(context.Background(), "Beta", "", testProfile())
	require.NoError(t, err)

	ok, err := st.SwitchClient(acme.ID)
	require.NoError(t, err)
	require.True(t, ok)
	snap := st.Snapshot()
	assert.Equal(t, acme.ID, snap.ActiveClientID)
	assert.Len(t, snap.Tasks, 1)

	ok, err = st.SwitchClient("nope")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = st.RemoveClient(acme.ID)
	require.NoError(t, err)
	require.True(t, ok)
	snap = st.Snapshot()
	assert.NotContains(t, snap.Clients, acme.ID)
	assert.Empty(t, snap.ActiveClientID)
	assert.Contains(t, snap.Clients, beta.ID)

	ok, err = st.RemoveClient(acme.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddClientFailureCreatesNothing(t *testing.T) {
	failing := generator.Func(func(_ context.Context, _ profile.Profile) ([]task.Task, error) {
		return nil, errors.New("boom")
	})
	st := newTestStore(t, failing)

	_, err := st.AddClient(context.Background(), "Acme", "", testProfile())
	require.Error(t, err)
	assert.True(t, st.Snapshot().Empty())
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{State: filepath.Join(dir, "state.json"), Lock: filepath.Join(dir, ".lock")}

	st := Open(paths, fixedGen(sampleTasks("t", 2)))
	require.NoError(t, st.Generate(context.Background(), testProfile()))
	_, _, err := st.ToggleTask("t-2", "")
	require.NoError(t, err)
	st.Close()

	reopened := Open(paths, fixedGen(nil))
	defer reopened.Close()
	snap := reopened.Snapshot()
	require.Len(t, snap.Tasks, 2)
	assert.False(t, snap.Tasks[0].Completed)
	assert.True(t, snap.Tasks[1].Completed)
	assert.Equal(t, "personal-setup", snap.ActiveClientID)
}

func TestOpenWithCorruptStateStartsFresh(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(statePath, []byte("{not json"), 0o600))

	st := Open(Paths{State: statePath}, fixedGen(nil))
	defer st.Close()
	assert.True(t, st.Snapshot().Empty())
}

func TestReset(t *testing.T) {
	st := newTestStore(t, fixedGen(sampleTasks("t", 1)))
	require.NoError(t, st.Generate(context.Background(), testProfile()))
	require.FileExists(t, st.paths.State)

	require.NoError(t, st.Reset())
	assert.True(t, st.Snapshot().Empty())
	assert.NoFileExists(t, st.paths.State)

	// Resetting an already-clean store is fine.
	require.NoError(t, st.Reset())
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	st := newTestStore(t, fixedGen(sampleTasks("t", 1)))
	require.NoError(t, st.Generate(context.Background(), testProfile()))

	snap := st.Snapshot()
	snap.Tasks[0].Completed = true
	snap.Clients["personal-setup"].Tasks[0].Title = "mutated"

	fresh := st.Snapshot()
	assert.False(t, fresh.Tasks[0].Completed)
	assert.Equal(t, "Task 1", fresh.Clients["personal-setup"].Tasks[0].Title)
}

func TestToggleNotifiesAgent(t *testing.T) {
	st := newTestStore(t, fixedGen(sampleTasks("t", 1)))
	require.NoError(t, st.Generate(context.Background(), testProfile()))

	n := &recordingNotifier{got: make(chan notification, 1)}
	st.SetNotifier(n)

	_, _, err := st.ToggleTask("t-1", "")
	require.NoError(t, err)

	select {
	case got := <-n.got:
		assert.Equal(t, "t-1", got.id)
		assert.True(t, got.completed)
	case <-time.After(2 * time.Second):
		t.Fatal("agent notification never fired")
	}
}

func TestActivityLog(t *testing.T) {
	st := newTestStore(t, fixedGen(sampleTasks("t", 1)))
	require.NoError(t, st.Generate(context.Background(), testProfile()))
	_, _, err := st.ToggleTask("t-1", "")
	require.NoError(t, err)

	entries, err := ReadLog(st.paths.Log, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "generate", entries[0].Action)
	assert.Equal(t, "toggle", entries[1].Action)
	assert.Equal(t, "t-1", entries[1].TaskID)

	limited, err := ReadLog(st.paths.Log, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "toggle", limited[0].Action)
}

type notification struct {
	id        string
	completed bool
}

type recordingNotifier struct {
	got chan notification
}

func (r *recordingNotifier) UpdateTaskStatus(_ context.Context, id string, completed bool) error {
	r.got <- notification{id: id, completed: completed}
	return nil
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
