package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/clierr"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/task"
)

// Export writes the current snapshot as indented JSON. The representation
// is identical to the persisted one, so an exported file can be imported
// back losslessly.
func (s *Store) Export(w io.Writer) error {
	snap := s.Snapshot()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// validateSnapshot checks an imported snapshot's shape: a known mode and
// well-formed task lists everywhere.
func validateSnapshot(snap Snapshot) error {
	if snap.Mode != ModeSingle && snap.Mode != ModeBulk {
		return fmt.Errorf("unknown mode %q", snap.Mode)
	}
	if err := task.ValidateList(snap.Tasks); err != nil {
		return fmt.Errorf("tasks: %w", err)
	}
	for industry, list := range snap.BulkTasks {
		if err := task.ValidateList(list); err != nil {
			return fmt.Errorf("bulk tasks for %q: %w", industry, err)
		}
	}
	for id, c := range snap.Clients {
		if c.ID != id {
			return fmt.Errorf("client %q has mismatched id %q", id, c.ID)
		}
		if err := task.ValidateList(c.Tasks); err != nil {
			return fmt.Errorf("client %q tasks: %w", id, err)
		}
	}
	if snap.ActiveClientID != "" {
		if _, ok := snap.Clients[snap.ActiveClientID]; !ok {
			return fmt.Errorf("active client %q does not exist", snap.ActiveClientID)
		}
	}
	return nil
}

// Import validates a snapshot file and writes it to the well-known state
// path, overwriting the previous value. The in-memory store is left
// untouched: the import takes effect on the next load, not as a live
// merge. On a malformed file the previously persisted state is untouched.
func (s *Store) Import(srcPath string) error {
	data, err := os.ReadFile(srcPath) //nolint:gosec // user-supplied import path
	if err != nil {
		return clierr.Newf(clierr.ImportFailed, "reading import file: %v", err)
	}
	return s.importRaw(data)
}

// ImportShared imports a snapshot from a shareable-link value (the base64
// payload of the state query parameter, or a full link).
func (s *Store) ImportShared(link string) error {
	encoded := link
	if u, err := url.Parse(link); err == nil && u.Query().Get("state") != "" {
		encoded = u.Query().Get("state")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return clierr.Newf(clierr.ImportFailed, "decoding shared state: %v", err)
	}
	return s.importRaw(data)
}

func (s *Store) importRaw(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return clierr.Newf(clierr.ImportFailed, "parsing snapshot: %v", err)
	}
	snap.normalize()
	if err := validateSnapshot(snap); err != nil {
		return clierr.Newf(clierr.ImportFailed, "invalid snapshot: %v", err)
	}

	out, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	return writeStateFile(s.paths, out)
}

// ShareLink encodes the entire snapshot, base64, as a query parameter of
// the given base URL. No compression, no expiry, no server round-trip.
func (s *Store) ShareLink(baseURL string) (string, error) {
	snap := s.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshaling snapshot: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(data)

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	q := u.Query()
	q.Set("state", encoded)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
