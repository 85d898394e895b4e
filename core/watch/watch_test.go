package watch_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/artpar/modeldiff/core/formatter"
	"github.com/artpar/modeldiff/core/watch"
	"github.com/rs/zerolog"
)

// fileCompare reports the file content as the schema name so tests can see
// which version was read.
func fileCompare(path string) watch.CompareFunc {
	return func() (formatter.Result, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return formatter.Result{}, err
		}
		if string(data) == "invalid" {
			return formatter.Result{}, errors.New("invalid document")
		}
		return formatter.Result{Schema: string(data)}, nil
	}
}

func TestWatcher_Reload(t *testing.T) {
	path := writeDoc(t, "v1")

	w, err := watch.New(fileCompare(path), []string{path}, 0, zerolog.Nop())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer w.Stop()

	if err := w.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}
	if got := w.Last().Schema; got != "v1" {
		t.Errorf("Last().Schema = %q, want v1", got)
	}

	if err := os.WriteFile(path, []byte("v2"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := w.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}
	if got := w.Last().Schema; got != "v2" {
		t.Errorf("Last().Schema = %q, want v2", got)
	}
}

func TestWatcher_ReloadErrorKeepsLast(t *testing.T) {
	path := writeDoc(t, "v1")

	w, err := watch.New(fileCompare(path), []string{path}, 0, zerolog.Nop())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer w.Stop()

	var reloadErrs []error
	w.OnReload(func(err error) { reloadErrs = append(reloadErrs, err) })

	if err := w.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}
	if err := os.WriteFile(path, []byte("invalid"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := w.Reload(); err == nil {
		t.Error("Reload should fail for invalid document")
	}

	if got := w.Last().Schema; got != "v1" {
		t.Errorf("should keep previous result, got %q", got)
	}
	if len(reloadErrs) != 2 || reloadErrs[0] != nil || reloadErrs[1] == nil {
		t.Errorf("OnReload errors = %v, want [nil, error]", reloadErrs)
	}
}

func TestWatcher_OnDiff(t *testing.T) {
	path := writeDoc(t, "v1")

	w, err := watch.New(fileCompare(path), []string{path}, 0, zerolog.Nop())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer w.Stop()

	var mu sync.Mutex
	var received []string
	w.OnDiff(func(res formatter.Result) {
		mu.Lock()
		received = append(received, res.Schema)
		mu.Unlock()
	})

	_ = w.Reload()

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 || received[0] != "v1" {
		t.Errorf("OnDiff received %v, want [v1]", received)
	}
}

func TestWatcher_WatchFiles(t *testing.T) {
	path := writeDoc(t, "v1")
	other := filepath.Join(filepath.Dir(path), "unrelated.txt")

	w, err := watch.New(fileCompare(path), []string{path}, 10*time.Millisecond, zerolog.Nop())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer w.Stop()

	var calls atomic.Int32
	w.OnDiff(func(formatter.Result) { calls.Add(1) })

	if err := w.WatchFiles(); err != nil {
		t.Fatalf("WatchFiles error: %v", err)
	}

	if err := os.WriteFile(other, []byte("noise"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("v2"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for w.Last().Schema != "v2" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if got := w.Last().Schema; got != "v2" {
		t.Errorf("after file watch, Last().Schema = %q, want v2", got)
	}
	if calls.Load() == 0 {
		t.Error("file watcher did not trigger reload")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	path := writeDoc(t, "v1")

	w, err := watch.New(fileCompare(path), []string{path}, 0, zerolog.Nop())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := w.WatchFiles(); err != nil {
		t.Fatalf("WatchFiles error: %v", err)
	}
	w.WatchSignals()

	w.Stop()
	w.Stop()
}

func TestWatcher_ConcurrentAccess(t *testing.T) {
	path := writeDoc(t, "v1")

	w, err := watch.New(fileCompare(path), []string{path}, 0, zerolog.Nop())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer w.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = w.Last()
			}
		}()
	}

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Reload()
		}()
	}

	wg.Wait()
}

// Helpers

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	return path
}
