package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestMatches(t *testing.T) {
	w, err := New(Config{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := map[string]bool{
		"/in/stock.xlsx":           true,
		"/in/stock.XLSM":           true,
		"/in/stock_processed.xlsx": false,
		"/in/~$stock.xlsx":         false,
		"/in/.~lock.stock.xlsx":    false,
		"/in/stock.csv":            false,
		"/in/report.docx":          false,
	}
	for path, want := range tests {
		if got := w.Matches(path); got != want {
			t.Errorf("Matches(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	w, err := New(Config{Directories: []string{"."}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if w.Config.Debounce != 500*time.Millisecond {
		t.Errorf("default debounce = %v", w.Config.Debounce)
	}
	if w.Config.Suffix != "_processed" {
		t.Errorf("default suffix = %q", w.Config.Suffix)
	}
}

func TestWatcherProcessesNewWorkbook(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var handled []string
	got := make(chan struct{}, 1)

	w, err := New(Config{Directories: []string{dir}, Debounce: 50 * time.Millisecond}, func(path string) error {
		mu.Lock()
		handled = append(handled, filepath.Base(path))
		mu.Unlock()
		select {
		case got <- struct{}{}:
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "stock_processed.xlsx"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "stock.xlsx"), []byte("x"), 0644)

	select {
	case <-got:
	case <-time.After(3 * time.Second):
		t.Fatal("handler was not called")
	}

	// Let any stray events settle before stopping.
	time.Sleep(150 * time.Millisecond)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(handled) != 1 || handled[0] != "stock.xlsx" {
		t.Errorf("handled = %v, want [stock.xlsx]", handled)
	}

	events := w.Events()
	if len(events) != 1 || events[0].Status != "processed" {
		t.Errorf("unexpected events: %+v", events)
	}
}
