package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsChangedFiles(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, nil, 100*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	got := make(chan []string, 1)
	w.Start(context.Background(), func(paths []string) {
		select {
		case got <- paths:
		default:
		}
	})

	target := filepath.Join(dir, "main.py")
	require.NoError(t, os.WriteFile(target, []byte("x = 1\n"), 0o644))

	select {
	case paths := <-got:
		assert.Contains(t, paths, target)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}
}

func TestWatcherIgnoresUnknownExtensions(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, []string{".py"}, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	got := make(chan []string, 1)
	w.Start(context.Background(), func(paths []string) {
		select {
		case got <- paths:
		default:
		}
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))

	select {
	case paths := <-got:
		t.Fatalf("unexpected callback for %v", paths)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestStopIsIdempotent(t *testing.T) {
	w, err := New(t.TempDir(), nil, 50*time.Millisecond)
	require.NoError(t, err)
	w.Start(context.Background(), func([]string) {})

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
