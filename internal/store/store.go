package store

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/clierr"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/generator"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/profile"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/task"
)

const (
	// defaultClientID names the client synthesized for a first solo generation.
	defaultClientID   = "personal-setup"
	defaultClientName = "My KSeF Plan"

	// notifyBudget bounds one detached agent notification including its
	// retry/backoff sequence.
	notifyBudget = 10 * time.Second

	// closeGrace is how long Close waits for outstanding notifications.
	// Slow or retrying calls are abandoned; their result is discarded anyway.
	closeGrace = 200 * time.Millisecond
)

// Notifier mirrors task status changes to the local automation agent.
// Implemented by agent.Client.
type Notifier interface {
	UpdateTaskStatus(ctx context.Context, taskID string, completed bool) error
}

// Paths names the files the store persists to.
type Paths struct {
	State string // snapshot JSON
	Lock  string // advisory lock serializing snapshot writes
	Log   string // activity log (empty disables logging)
}

// Store is the single source of truth for checklist data. Every mutation
// is atomic on the snapshot and immediately followed by a persistence
// attempt. Construct one per process and pass it by reference; there is
// no package-level instance.
type Store struct {
	mu       sync.Mutex
	paths    Paths
	snap     Snapshot
	gen      generator.Generator
	notifier Notifier

	generating bool
	lastErr    string

	wg    sync.WaitGroup
	newID func() string
	now   func() time.Time
}

// Open creates a Store rehydrated from the persisted snapshot at
// paths.State. A missing or corrupt file yields an empty store; corruption
// is logged and never fatal.
func Open(paths Paths, gen generator.Generator) *Store {
	return &Store{
		paths: paths,
		snap:  loadSnapshot(paths.State),
		gen:   gen,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// SetNotifier attaches a best-effort agent notifier.
func (s *Store) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetIDFunc overrides client id generation (for testing).
func (s *Store) SetIDFunc(fn func() string) {
	s.newID = fn
}

// SetNow overrides the clock (for testing).
func (s *Store) SetNow(fn func() time.Time) {
	s.now = fn
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Reload re-reads the persisted snapshot, discarding in-memory state.
// Used by the dashboard when another process changes the state file.
func (s *Store) Reload() {
	snap := loadSnapshot(s.paths.State)
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// LastError returns the most recent generation error message, or "".
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Close waits briefly for outstanding agent notifications, then abandons
// them. Safe to call multiple times.
func (s *Store) Close() {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(closeGrace):
	}
}

// beginGeneration marks a generation in flight, rejecting concurrent calls.
func (s *Store) beginGeneration() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generating {
		return clierr.New(clierr.GenerationBusy, "a generation call is already in progress")
	}
	s.generating = true
	return nil
}

func (s *Store) endGeneration() {
	s.mu.Lock()
	s.generating = false
	s.mu.Unlock()
}

// recordFailure stores the generation error without touching any data.
func (s *Store) recordFailure(err error) error {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
	return clierr.Newf(clierr.GenerationFailed, "generation failed: %v", err)
}

// Generate replaces the current single-mode checklist with a freshly
// generated one. If no client exists yet, a default client wrapping the
// profile is synthesized; if a client is active, its tasks are updated to
// match. On failure nothing changes.
func (s *Store) Generate(ctx context.Context, p profile.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.beginGeneration(); err != nil {
		return err
	}
	defer s.endGeneration()

	tasks, err := s.gen.Generate(ctx, p)
	if err != nil {
		return s.recordFailure(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
	s.snap.Tasks = tasks
	s.snap.Profile = &p
	s.snap.BulkTasks = nil
	s.snap.Mode = ModeSingle

	if len(s.snap.Clients) == 0 {
		s.snap.Clients[defaultClientID] = Client{
			ID:        defaultClientID,
			Name:      defaultClientName,
			Profile:   p,
			Tasks:     task.CloneList(tasks),
			CreatedAt: s.now().UnixMilli(),
		}
		s.snap.ActiveClientID = defaultClientID
	} else if c, ok := s.snap.ActiveClient(); ok {
		c.Tasks = task.CloneList(tasks)
		s.snap.Clients[c.ID] = c
	}

	s.logMutation("generate", "", p.Industry)
	return s.persistLocked()
}

// BulkProgress reports sequential bulk generation progress.
type BulkProgress func(current, total int, status string)

// GenerateBulk generates one checklist per industry, sequentially and in
// the given order. A single industry's failure is logged to stderr and
// that industry is omitted; the rest proceed. With merge, the final state
// is the concatenation of all generated lists in single mode; otherwise
// the per-industry map is retained in bulk mode.
func (s *Store) GenerateBulk(ctx context.Context, industries []string, base profile.Profile, merge bool, progress BulkProgress) error {
	if len(industries) == 0 {
		return clierr.New(clierr.InvalidInput, "at least one industry is required")
	}
	if err := s.beginGeneration(); err != nil {
		return err
	}
	defer s.endGeneration()

	results := make(map[string][]task.Task, len(industries))
	total := len(industries)
	for i, industry := range industries {
		if progress != nil {
			progress(i+1, total, fmt.Sprintf("Analyzing industry: %s", industry))
		}
		if err := ctx.Err(); err != nil {
			return s.recordFailure(err)
		}
		tasks, err := s.gen.Generate(ctx, base.WithIndustry(industry))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping industry %q: %v\n", industry, err)
			continue
		}
		results[industry] = tasks
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
	if merge {
		var merged []task.Task
		for _, industry := range industries {
			merged = append(merged, results[industry]...)
		}
		s.snap.Tasks = merged
		s.snap.BulkTasks = nil
		s.snap.Mode = ModeSingle
	} else {
		s.snap.Tasks = nil
		s.snap.BulkTasks = results
		s.snap.Mode = ModeBulk
	}

	s.logMutation("bulk-generate", "", fmt.Sprintf("%d/%d industries", len(results), total))
	return s.persistLocked()
}

// ToggleTask flips the completed flag of the task with the given id.
// With industryKey set, the mutation targets that entry of the bulk
// result; otherwise the single task list, mirrored into the active
// client. Unknown ids are a no-op, not an error. Returns the updated
// task and whether anything changed.
func (s *Store) ToggleTask(id, industryKey string) (task.Task, bool, error) {
	s.mu.Lock()

	var updated task.Task
	changed := false
	if industryKey != "" {
		if list, ok := s.snap.BulkTasks[industryKey]; ok {
			if i := task.IndexByID(list, id); i >= 0 {
				next := task.CloneList(list)
				next[i].Completed = !next[i].Completed
				s.snap.BulkTasks[industryKey] = next
				updated = next[i].Clone()
				changed = true
			}
		}
	} else if i := task.IndexByID(s.snap.Tasks, id); i >= 0 {
		s.snap.Tasks[i].Completed = !s.snap.Tasks[i].Completed
		s.mirrorToActiveClient()
		updated = s.snap.Tasks[i].Clone()
		changed = true
	}

	if !changed {
		s.mu.Unlock()
		return task.Task{}, false, nil
	}

	s.logMutation("toggle", id, fmt.Sprintf("completed=%t", updated.Completed))
	err := s.persistLocked()
	s.mu.Unlock()

	// Agent notification is detached from the mutation path; its outcome
	// is discarded.
	s.notifyTaskStatus(updated.ID, updated.Completed)

	return updated, true, err
}

// UpdateTaskNote replaces the notes field of the task with the given id,
// verbatim. Same targeting rules as ToggleTask.
func (s *Store) UpdateTaskNote(id, note, industryKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	if industryKey != "" {
		if list, ok := s.snap.BulkTasks[industryKey]; ok {
			if i := task.IndexByID(list, id); i >= 0 {
				next := task.CloneList(list)
				next[i].Notes = note
				s.snap.BulkTasks[industryKey] = next
				changed = true
			}
		}
	} else if i := task.IndexByID(s.snap.Tasks, id); i >= 0 {
		s.snap.Tasks[i].Notes = note
		s.mirrorToActiveClient()
		changed = true
	}

	if !changed {
		return false, nil
	}

	s.logMutation("note", id, "")
	return true, s.persistLocked()
}

// AddClient generates a checklist for the profile and, on success, creates
// a new client with a fresh unique id, marks it active, and makes its
// checklist current. On failure no client is created.
func (s *Store) AddClient(ctx context.Context, name, nip string, p profile.Profile) (Client, error) {
	if name == "" {
		return Client{}, clierr.New(clierr.InvalidInput, "client name is required")
	}
	if err := p.Validate(); err != nil {
		return Client{}, err
	}
	if err := s.beginGeneration(); err != nil {
		return Client{}, err
	}
	defer s.endGeneration()

	tasks, err := s.gen.Generate(ctx, p)
	if err != nil {
		return Client{}, s.recordFailure(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
	c := Client{
		ID:        s.newID(),
		Name:      name,
		NIP:       nip,
		Profile:   p,
		Tasks:     tasks,
		CreatedAt: s.now().UnixMilli(),
	}
	s.snap.Clients[c.ID] = c
	s.snap.ActiveClientID = c.ID
	s.snap.Tasks = task.CloneList(tasks)
	s.snap.Profile = &p
	s.snap.BulkTasks = nil
	s.snap.Mode = ModeSingle

	s.logMutation("client-add", c.ID, name)
	return c.Clone(), s.persistLocked()
}

// SwitchClient makes the client with the given id active and exposes its
// checklist as current. Returns false (no-op) if the id is unknown.
func (s *Store) SwitchClient(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.snap.Clients[id]
	if !ok {
		return false, nil
	}
	s.snap.ActiveClientID = id
	s.snap.Tasks = task.CloneList(c.Tasks)
	p := c.Profile
	s.snap.Profile = &p
	s.snap.Mode = ModeSingle

	s.logMutation("client-switch", id, c.Name)
	return true, s.persistLocked()
}

// RemoveClient deletes the client. If it was active, no client is active
// afterwards; callers must handle the resulting empty state. Returns
// false if the id is unknown.
func (s *Store) RemoveClient(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.snap.Clients[id]
	if !ok {
		return false, nil
	}
	delete(s.snap.Clients, id)
	if s.snap.ActiveClientID == id {
		s.snap.ActiveClientID = ""
	}

	s.logMutation("client-remove", id, c.Name)
	return true, s.persistLocked()
}

// Reset clears the snapshot back to empty and erases the persisted copy.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = NewSnapshot()
	s.lastErr = ""
	s.logMutation("reset", "", "")
	if err := os.Remove(s.paths.State); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing persisted state: %w", err)
	}
	return nil
}

// mirrorToActiveClient copies the current single task list into the active
// client, if one exists. Callers must hold s.mu.
func (s *Store) mirrorToActiveClient() {
	c, ok := s.snap.ActiveClient()
	if !ok {
		return
	}
	c.Tasks = task.CloneList(s.snap.Tasks)
	s.snap.Clients[c.ID] = c
}

// notifyTaskStatus fires a detached agent notification. The result is
// discarded; Close drains stragglers with a short grace period.
func (s *Store) notifyTaskStatus(id string, completed bool) {
	if s.notifier == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyBudget)
		defer cancel()
		_ = s.notifier.UpdateTaskStatus(ctx, id, completed)
	}()
}
