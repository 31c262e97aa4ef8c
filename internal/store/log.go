package store

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"time"
)

const (
	logFileMode   = 0o600
	maxLogEntries = 10000 // truncate oldest entries when the log exceeds this size
)

// LogEntry records one checklist mutation in the activity log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	TaskID    string    `json:"task_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// logMutation appends an entry to the activity log. Errors are silently
// discarded because logging must never fail a mutation. Callers must hold
// s.mu (the log shares ordering with snapshot writes).
func (s *Store) logMutation(action, taskID, detail string) {
	if s.paths.Log == "" {
		return
	}
	entry := LogEntry{
		Timestamp: s.now(),
		Action:    action,
		TaskID:    taskID,
		Detail:    detail,
	}
	_ = appendLog(s.paths.Log, entry)
}

func appendLog(path string, entry LogEntry) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode) //nolint:gosec // log path from trusted data dir
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}

	// Truncation is best-effort; a too-long log is not worth failing over.
	_ = truncateLogIfNeeded(path)
	return nil
}

// truncateLogIfNeeded rewrites the log keeping only the most recent
// entries once it grows past maxLogEntries.
func truncateLogIfNeeded(path string) error {
	f, err := os.Open(path) //nolint:gosec // trusted path
	if err != nil {
		return err
	}

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	_ = f.Close()

	if err := scanner.Err(); err != nil {
		return err
	}
	if len(lines) <= maxLogEntries {
		return nil
	}

	lines = lines[len(lines)-maxLogEntries:]

	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(buf.String()), logFileMode)
}

// ReadLog returns up to limit most recent activity entries, newest last.
// A missing log yields an empty slice.
func ReadLog(path string, limit int) ([]LogEntry, error) {
	f, err := os.Open(path) //nolint:gosec // trusted path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e LogEntry
		if json.Unmarshal(scanner.Bytes(), &e) != nil {
			continue // skip malformed lines
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}
