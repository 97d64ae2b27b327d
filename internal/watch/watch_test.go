package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"lattice/internal/builder"
	"lattice/internal/content"
	"lattice/internal/extract"
	"lattice/internal/graph"
	"lattice/internal/shared/util"
)

type changeRecorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (c *changeRecorder) record(paths []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, paths)
}

func (c *changeRecorder) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func (c *changeRecorder) wait(t *testing.T, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if c.count() >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("saw %d change batches, want at least %d", c.count(), want)
}

func TestWatcherDebouncesBurst(t *testing.T) {
	root := t.TempDir()
	rec := &changeRecorder{}

	w, err := NewWatcher(100*time.Millisecond, nil, nil, nil, rec.record)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()
	if err := w.Watch(root); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// A burst of writes inside the debounce window collapses into one batch.
	for i := 0; i < 3; i++ {
		name := filepath.Join(root, "note.md")
		if err := os.WriteFile(name, []byte("content"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	rec.wait(t, 1)
	time.Sleep(200 * time.Millisecond)
	if got := rec.count(); got != 1 {
		t.Errorf("batches = %d, want 1", got)
	}
}

func TestWatcherFiltersNonContent(t *testing.T) {
	root := t.TempDir()
	rec := &changeRecorder{}

	w, err := NewWatcher(50*time.Millisecond, nil, nil, []string{"*.tmp.md"}, rec.record)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()
	if err := w.Watch(root); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "draft.tmp.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Errorf("filtered files triggered %d batches", got)
	}

	if err := os.WriteFile(filepath.Join(root, "real.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec.wait(t, 1)
}

func TestRebuilderPublishesNewSnapshot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.md"), []byte("---\ntitle: A\n---\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := content.NewSource(root, content.SourceOptions{})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	b := builder.New(extract.FrontmatterExtractor{}, builder.Options{}, nil)
	handle := graph.NewHandle(nil)
	limiter := util.NewLimiter(100, 100)
	r := NewRebuilder(b, src, nil, handle, limiter, nil)

	if err := r.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	first := handle.Load()
	if first.NodeCount() != 1 {
		t.Fatalf("nodes = %d", first.NodeCount())
	}

	if err := os.WriteFile(filepath.Join(root, "b.md"), []byte("---\ntitle: B\n---\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	if handle.Load().NodeCount() != 2 {
		t.Errorf("new snapshot not published")
	}
	// The old snapshot is still a consistent graph for readers holding it.
	if first.NodeCount() != 1 {
		t.Errorf("previous snapshot mutated")
	}
}
