// Package store owns all checklist state for a session: the snapshot of
// tasks, bulk results, clients and the active profile, plus its
// persistence to a single well-known JSON file.
package store

import (
	"github.com/Deokateoer1/ksef-checklist-builder/internal/profile"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/task"
)

// Store modes.
const (
	ModeSingle = "single"
	ModeBulk   = "bulk"
)

// Client is a named checklist owner, used when one operator (an accounting
// office) manages checklists for many companies.
type Client struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	NIP       string          `json:"nip,omitempty"`
	Profile   profile.Profile `json:"profile"`
	Tasks     []task.Task     `json:"tasks"`
	CreatedAt int64           `json:"createdAt"` // Unix milliseconds
}

// Clone returns a deep copy of the client.
func (c Client) Clone() Client {
	out := c
	out.Tasks = task.CloneList(c.Tasks)
	return out
}

// Snapshot is the full persisted state and the unit of export/share.
// It is exclusively owned by the Store; accessors hand out deep copies.
type Snapshot struct {
	Tasks          []task.Task            `json:"tasks"`
	BulkTasks      map[string][]task.Task `json:"bulkTasks,omitempty"`
	Profile        *profile.Profile       `json:"profile"`
	Mode           string                 `json:"mode"`
	Clients        map[string]Client      `json:"clients"`
	ActiveClientID string                 `json:"activeClientId,omitempty"`
}

// NewSnapshot returns an empty snapshot in single mode.
func NewSnapshot() Snapshot {
	return Snapshot{
		Mode:    ModeSingle,
		Clients: map[string]Client{},
	}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Tasks = task.CloneList(s.Tasks)
	if s.BulkTasks != nil {
		out.BulkTasks = make(map[string][]task.Task, len(s.BulkTasks))
		for k, v := range s.BulkTasks {
			out.BulkTasks[k] = task.CloneList(v)
		}
	}
	if s.Profile != nil {
		p := *s.Profile
		out.Profile = &p
	}
	out.Clients = make(map[string]Client, len(s.Clients))
	for id, c := range s.Clients {
		out.Clients[id] = c.Clone()
	}
	return out
}

// normalize fills zero values left by deserialization so the rest of the
// store never has to nil-check the clients map or the mode flag.
func (s *Snapshot) normalize() {
	if s.Clients == nil {
		s.Clients = map[string]Client{}
	}
	if s.Mode == "" {
		s.Mode = ModeSingle
	}
}

// ActiveClient returns the active client, if any.
func (s Snapshot) ActiveClient() (Client, bool) {
	if s.ActiveClientID == "" {
		return Client{}, false
	}
	c, ok := s.Clients[s.ActiveClientID]
	return c, ok
}

// Empty reports whether the snapshot holds no checklist data at all.
func (s Snapshot) Empty() bool {
	return len(s.Tasks) == 0 && len(s.BulkTasks) == 0 && len(s.Clients) == 0 && s.Profile == nil
}
