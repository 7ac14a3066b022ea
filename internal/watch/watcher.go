// Package watch monitors directories and processes workbooks as they appear.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/klytics/unmerge/internal/formats/xlsx"
	"github.com/klytics/unmerge/internal/processor"
	"github.com/klytics/unmerge/internal/progress"
)

// Config holds the watcher configuration.
type Config struct {
	Directories []string
	Recursive   bool
	Debounce    time.Duration
	// Suffix marks files this tool wrote. They are never picked up again.
	Suffix string
}

// Event records one handled file.
type Event struct {
	Time      time.Time `json:"time"`
	Path      string    `json:"path"`
	Operation string    `json:"operation"`
	Status    string    `json:"status"` // "processed" or "error"
	Error     string    `json:"error,omitempty"`
}

// Handler is called once per settled file event.
type Handler func(path string) error

// Watcher monitors directories for new or modified workbooks.
type Watcher struct {
	Config  Config
	Logger  *progress.Logger
	Handler Handler

	mu       sync.Mutex
	events   []Event
	watcher  *fsnotify.Watcher
	debounce map[string]*time.Timer
	wg       sync.WaitGroup
}

// New creates a new Watcher with the given configuration.
func New(config Config, handler Handler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}

	if config.Debounce <= 0 {
		config.Debounce = 500 * time.Millisecond
	}
	if config.Suffix == "" {
		config.Suffix = processor.DefaultSuffix
	}

	return &Watcher{
		Config:   config,
		Logger:   progress.NewLogger("watch", false),
		Handler:  handler,
		watcher:  fsw,
		debounce: make(map[string]*time.Timer),
	}, nil
}

// Start watches the configured directories. It blocks until ctx is cancelled
// and waits for in-flight handlers before returning.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.wg.Wait()

	for _, dir := range w.Config.Directories {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("could not resolve %s: %w", dir, err)
		}

		if w.Config.Recursive {
			if err := w.addRecursive(absDir); err != nil {
				return err
			}
		} else if err := w.watcher.Add(absDir); err != nil {
			return fmt.Errorf("could not watch %s: %w", absDir, err)
		}
	}

	w.Logger.Printf("Watching %d directory(ies)", len(w.Config.Directories))

	for {
		select {
		case <-ctx.Done():
			w.Logger.Printf("Stopping watcher")
			w.stopTimers()
			return w.watcher.Close()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Printf("Error: %v", err)
		}
	}
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != dir {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}
		return nil
	})
}

// Matches reports whether path is a workbook the watcher should process.
func (w *Watcher) Matches(path string) bool {
	if !xlsx.Supported(path) {
		return false
	}
	base := filepath.Base(path)
	// Office lock files.
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".~") {
		return false
	}
	return !processor.IsOutput(path, w.Config.Suffix)
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.Matches(event.Name) {
		return
	}

	path, op := event.Name, event.Op.String()

	w.mu.Lock()
	defer w.mu.Unlock()
	// A stopped timer hands its WaitGroup slot to the replacement.
	if timer, ok := w.debounce[path]; !ok || !timer.Stop() {
		w.wg.Add(1)
	}
	var t *time.Timer
	t = time.AfterFunc(w.Config.Debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.debounce[path] == t {
			delete(w.debounce, path)
		}
		w.mu.Unlock()
		w.processFile(path, op)
	})
	w.debounce[path] = t
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.debounce {
		if timer.Stop() {
			w.wg.Done()
		}
		delete(w.debounce, path)
	}
}

func (w *Watcher) processFile(path, operation string) {
	evt := Event{
		Time:      time.Now(),
		Path:      path,
		Operation: operation,
		Status:    "processed",
	}

	if w.Handler != nil {
		if err := w.Handler(path); err != nil {
			evt.Status = "error"
			evt.Error = err.Error()
			w.Logger.Printf("Error processing %s: %v", path, err)
		} else {
			w.Logger.Printf("Processed %s", path)
		}
	}

	w.mu.Lock()
	w.events = append(w.events, evt)
	w.mu.Unlock()
}

// Events returns a copy of all recorded events.
func (w *Watcher) Events() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	events := make([]Event, len(w.events))
	copy(events, w.events)
	return events
}
