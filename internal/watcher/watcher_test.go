package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherFiresOnStateWrite(t *testing.T) {
	dir := t.TempDir()
	state := filepath.Join(dir, "state.json")

	fired := make(chan struct{}, 1)
	w, err := New(state, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, nil)

	require.NoError(t, os.WriteFile(state, []byte(`{}`), 0o600))

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never fired for state write")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	state := filepath.Join(dir, "state.json")

	fired := make(chan struct{}, 1)
	w, err := New(state, func() { fired <- struct{}{} })
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, nil)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))

	select {
	case <-fired:
		t.Fatal("watcher fired for an unrelated file")
	case <-time.After(500 * time.Millisecond):
	}
}
