package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/filelock"
)

const (
	stateFileMode = 0o600
	stateDirMode  = 0o750
)

// loadSnapshot reads the persisted snapshot. A missing file means a fresh
// start; a corrupt file is treated the same way (logged, never fatal) so
// a broken state file can never brick the tool.
func loadSnapshot(path string) Snapshot {
	data, err := os.ReadFile(path) //nolint:gosec // state path from trusted data dir
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: cannot read saved state: %v\n", err)
		}
		return NewSnapshot()
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring corrupt saved state: %v\n", err)
		return NewSnapshot()
	}
	snap.normalize()
	return snap
}

// persistLocked writes the full snapshot to the state file, overwriting
// any prior value. An advisory lock serializes writes across concurrent
// processes so two invocations cannot interleave a read-modify-write
// cycle. Callers must hold s.mu.
func (s *Store) persistLocked() error {
	data, err := json.Marshal(s.snap)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	return writeStateFile(s.paths, data)
}

// writeStateFile writes raw snapshot JSON under the advisory lock.
func writeStateFile(paths Paths, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(paths.State), stateDirMode); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if paths.Lock != "" {
		unlock, err := filelock.Lock(paths.Lock)
		if err != nil {
			return fmt.Errorf("acquiring state lock: %w", err)
		}
		defer unlock() //nolint:errcheck // best-effort unlock on exit
	}
	if err := os.WriteFile(paths.State, data, stateFileMode); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}
