package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{OnChange: func(string) error { return nil }})
	assert.Error(t, err)

	_, err = New(Config{Path: "events.txt"})
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.txt")

	w, err := New(Config{Path: path, OnChange: func(string) error { return nil }})
	require.NoError(t, err)
	defer w.Stop()

	assert.Equal(t, DefaultStabilityThreshold, w.stabilityThreshold)
	assert.Equal(t, path, w.Path())
}

func TestFileWatcher_StartStop(t *testing.T) {
	dir := t.TempDir()

	w, err := New(Config{
		Path:     filepath.Join(dir, "events.txt"),
		OnChange: func(string) error { return nil },
	})
	require.NoError(t, err)

	require.NoError(t, w.Start())
	time.Sleep(10 * time.Millisecond)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestFileWatcher_ReportsChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.txt")
	writeFile(t, path, "1 alice 1000\n")

	changed := make(chan string, 4)
	w, err := New(Config{
		Path:               path,
		StabilityThreshold: 50 * time.Millisecond,
		OnChange: func(p string) error {
			changed <- p
			return nil
		},
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	writeFile(t, path, "1 alice 1000\n-1 alice 2000\n")

	select {
	case got := <-changed:
		assert.Equal(t, path, got)
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for change event")
	}
}

func TestFileWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.txt")
	writeFile(t, path, "")

	var calls atomic.Int32
	w, err := New(Config{
		Path:               path,
		StabilityThreshold: 150 * time.Millisecond,
		OnChange: func(string) error {
			calls.Add(1)
			return nil
		},
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	for i := 0; i < 5; i++ {
		writeFile(t, path, "1 alice 1000\n")
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFileWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.txt")
	writeFile(t, path, "")

	var calls atomic.Int32
	w, err := New(Config{
		Path:               path,
		StabilityThreshold: 30 * time.Millisecond,
		OnChange: func(string) error {
			calls.Add(1)
			return nil
		},
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	writeFile(t, filepath.Join(dir, "other.txt"), "noise")
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, int32(0), calls.Load())
}

func TestFileWatcher_ReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.txt")
	writeFile(t, path, "1 alice 1000\n")

	removed := make(chan string, 1)
	w, err := New(Config{
		Path:               path,
		StabilityThreshold: 30 * time.Millisecond,
		OnChange:           func(string) error { return nil },
		OnRemove: func(p string) error {
			removed <- p
			return nil
		},
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.Remove(path))

	select {
	case got := <-removed:
		assert.Equal(t, path, got)
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for remove event")
	}
}

func TestFileWatcher_StopWaitsForRunningCallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.txt")
	writeFile(t, path, "1 1000 alice\n")

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var finished atomic.Bool

	w, err := New(Config{
		Path:               path,
		StabilityThreshold: 20 * time.Millisecond,
		OnChange: func(string) error {
			select {
			case started <- struct{}{}:
			default:
			}
			<-release
			finished.Store(true)
			return nil
		},
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())

	writeFile(t, path, "1 1000 alice\n-1 2000 alice\n")

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("change callback was not called")
	}

	stopped := make(chan struct{})
	go func() {
		_ = w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the callback was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the callback finished")
	}
	assert.True(t, finished.Load())
}
