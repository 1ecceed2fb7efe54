package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/wouteroostervld/unitygraph/pkg/filter"
)

func TestNew(t *testing.T) {
	w, err := New(nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	if w.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", w.debounce, DefaultDebounce)
	}
	if !filepath.IsAbs(w.root) {
		t.Errorf("root %q is not absolute", w.root)
	}
}

func TestWatch(t *testing.T) {
	tempDir := t.TempDir()

	w, err := New(&Config{Root: tempDir})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(tempDir); err != nil {
		t.Errorf("Watch failed: %v", err)
	}

	watched := w.Watched()
	if len(watched) != 1 {
		t.Errorf("expected 1 watched dir, got %d", len(watched))
	}

	// Watch same dir again - should be idempotent
	if err := w.Watch(tempDir); err != nil {
		t.Errorf("second Watch failed: %v", err)
	}

	if len(w.Watched()) != 1 {
		t.Error("watching same dir twice should not duplicate")
	}
}

func TestUnwatch(t *testing.T) {
	tempDir := t.TempDir()

	w, err := New(&Config{Root: tempDir})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	w.Watch(tempDir)

	if err := w.Unwatch(tempDir); err != nil {
		t.Errorf("Unwatch failed: %v", err)
	}

	if len(w.Watched()) != 0 {
		t.Error("expected 0 watched dirs after unwatch")
	}
}

func TestWatchTree(t *testing.T) {
	tempDir := t.TempDir()
	for _, dir := range []string{"Assets/Scripts", "Assets/Scenes", "Library/Cache"} {
		if err := os.MkdirAll(filepath.Join(tempDir, dir), 0700); err != nil {
			t.Fatal(err)
		}
	}

	w, err := New(&Config{
		Root:  tempDir,
		Rules: filter.New(nil, []string{"Library"}, nil, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.WatchTree(tempDir); err != nil {
		t.Fatalf("WatchTree failed: %v", err)
	}

	// root, Assets, Assets/Scenes, Assets/Scripts
	if got := len(w.Watched()); got != 4 {
		t.Errorf("expected 4 watched dirs, got %d: %v", got, w.Watched())
	}
	for _, dir := range w.Watched() {
		if filepath.Base(dir) == "Library" || filepath.Base(dir) == "Cache" {
			t.Errorf("excluded directory %s is watched", dir)
		}
	}
}

func startWatcher(t *testing.T, cfg *Config) chan []string {
	t.Helper()

	changes := make(chan []string, 10)
	cfg.OnChange = func(paths []string) {
		changes <- paths
	}

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WatchTree(cfg.Root); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return changes
}

func TestFileChangeDetection(t *testing.T) {
	tempDir := t.TempDir()
	changes := startWatcher(t, &Config{Root: tempDir, DebounceDelay: 50 * time.Millisecond})

	if err := os.WriteFile(filepath.Join(tempDir, "Player.cs"), []byte("class Player {}"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changes:
		if len(paths) != 1 || paths[0] != "Player.cs" {
			t.Errorf("got change batch %v, want [Player.cs]", paths)
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for file change event")
	}
}

func TestDebounce(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.txt")
	changes := startWatcher(t, &Config{Root: tempDir, DebounceDelay: 100 * time.Millisecond})

	// Write multiple times rapidly
	for i := 0; i < 5; i++ {
		os.WriteFile(testFile, []byte(string(rune('a'+i))), 0600)
		time.Sleep(20 * time.Millisecond)
	}

	// Should only get ONE debounced batch
	batches := 0
	timeout := time.After(400 * time.Millisecond)

loop:
	for {
		select {
		case paths := <-changes:
			batches++
			if len(paths) != 1 || paths[0] != "test.txt" {
				t.Errorf("got change batch %v, want [test.txt]", paths)
			}
		case <-timeout:
			break loop
		}
	}

	if batches != 1 {
		t.Errorf("expected 1 debounced batch, got %d", batches)
	}
}

func TestFilteredFilesIgnored(t *testing.T) {
	tempDir := t.TempDir()
	changes := startWatcher(t, &Config{
		Root:          tempDir,
		Rules:         filter.New(nil, []string{"**/*.tmp"}, nil, nil),
		DebounceDelay: 50 * time.Millisecond,
	})

	os.WriteFile(filepath.Join(tempDir, "junk.tmp"), []byte("x"), 0600)
	os.WriteFile(filepath.Join(tempDir, "keep.cs"), []byte("x"), 0600)

	select {
	case paths := <-changes:
		for _, p := range paths {
			if p == "junk.tmp" {
				t.Errorf("excluded file reported: %v", paths)
			}
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for file change event")
	}
}

func TestNewDirectoryWatched(t *testing.T) {
	tempDir := t.TempDir()
	changes := startWatcher(t, &Config{Root: tempDir, DebounceDelay: 50 * time.Millisecond})

	sub := filepath.Join(tempDir, "Prefabs")
	if err := os.Mkdir(sub, 0700); err != nil {
		t.Fatal(err)
	}
	// Give the watcher time to add the new directory
	time.Sleep(150 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(sub, "Hero.prefab"), []byte("%YAML 1.1"), 0600); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(2 * time.Second)
	for {
		select {
		case paths := <-changes:
			for _, p := range paths {
				if p == "Prefabs/Hero.prefab" {
					return
				}
			}
		case <-timeout:
			t.Fatal("timeout waiting for change in new directory")
		}
	}
}

func TestStartStopNoLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	w, err := New(&Config{Root: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WatchTree(w.root); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(ctx) }()

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Start returned %v, want context.Canceled", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
