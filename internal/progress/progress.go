// Package progress provides terminal progress indicators and the status
// logger. All output goes to stderr so stdout stays clean for previews and
// JSON.
package progress

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Bar renders a file-count progress bar for batch runs.
type Bar struct {
	Total   int
	Current int
	Label   string
	Width   int
	Enabled bool
	Out     io.Writer

	mu sync.Mutex
}

// New creates a progress bar.
// Disabled when stderr is not a TTY, with --json, or with UNMERGE_NO_PROGRESS=1.
func New(label string, total int) *Bar {
	return &Bar{
		Total:   total,
		Label:   label,
		Width:   40,
		Enabled: shouldEnable(),
		Out:     os.Stderr,
	}
}

// Increment advances the bar by 1 and redraws.
func (b *Bar) Increment(status string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Current++
	if b.Current > b.Total {
		b.Current = b.Total
	}
	b.render(status)
}

// Finish clears the bar and prints a summary line.
func (b *Bar) Finish(summary string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.Enabled {
		return
	}
	fmt.Fprintf(b.out(), "\r\033[K✓ %s\n", summary)
}

func (b *Bar) render(status string) {
	if !b.Enabled {
		return
	}

	filled := 0
	if b.Total > 0 {
		filled = b.Current * b.Width / b.Total
	}
	if filled > b.Width {
		filled = b.Width
	}

	bar := strings.Repeat("=", filled) + strings.Repeat(" ", b.Width-filled)
	fmt.Fprintf(b.out(), "\r\033[K%s [%s] %d/%d  %s",
		b.Label, bar, b.Current, b.Total, status)
}

func (b *Bar) out() io.Writer {
	if b.Out == nil {
		return os.Stderr
	}
	return b.Out
}

// Pct returns the current percentage (0-100) of the bar.
func (b *Bar) Pct() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Total == 0 {
		return 0
	}
	return float64(b.Current) / float64(b.Total) * 100
}

// Spinner shows activity while a workbook is loaded or saved.
type Spinner struct {
	Label   string
	Enabled bool

	mu      sync.Mutex
	done    chan struct{}
	stopped bool
}

// NewSpinner creates a spinner.
func NewSpinner(label string) *Spinner {
	return &Spinner{
		Label:   label,
		Enabled: shouldEnable(),
		done:    make(chan struct{}),
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	if !s.Enabled {
		return
	}

	s.mu.Lock()
	s.stopped = false
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		frames := []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}
		i := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.mu.Lock()
				if !s.stopped {
					fmt.Fprintf(os.Stderr, "\r\033[K%c %s", frames[i%len(frames)], s.Label)
					i++
				}
				s.mu.Unlock()
			}
		}
	}()
}

// Stop stops the spinner and prints a result. An empty result just clears
// the line.
func (s *Spinner) Stop(result string) {
	s.mu.Lock()
	s.stopped = true
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	s.mu.Unlock()

	switch {
	case !s.Enabled:
	case result == "":
		fmt.Fprint(os.Stderr, "\r\033[K")
	default:
		fmt.Fprintf(os.Stderr, "\r\033[K✓ %s\n", result)
	}
}

// Update changes the spinner label while it's running.
func (s *Spinner) Update(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Label = label
}

// Logger writes prefixed status lines to stderr. Debugf is silent unless
// Verbose is set.
type Logger struct {
	Verbose bool
	l       *log.Logger
}

// NewLogger creates a Logger with a bracketed prefix, e.g. "[unmerge] ".
func NewLogger(prefix string, verbose bool) *Logger {
	return NewLoggerTo(os.Stderr, prefix, verbose)
}

// NewLoggerTo creates a Logger writing to w.
func NewLoggerTo(w io.Writer, prefix string, verbose bool) *Logger {
	return &Logger{
		Verbose: verbose,
		l:       log.New(w, "["+prefix+"] ", log.LstdFlags),
	}
}

// Printf logs a status line.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.l.Printf(format, args...)
}

// Debugf logs only in verbose mode.
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.Verbose {
		l.l.Printf("debug: "+format, args...)
	}
}

// Std exposes the underlying *log.Logger.
func (l *Logger) Std() *log.Logger {
	return l.l
}

func shouldEnable() bool {
	if os.Getenv("UNMERGE_NO_PROGRESS") == "1" {
		return false
	}
	if os.Getenv("UNMERGE_JSON") == "true" {
		return false
	}
	return isTTY()
}

func isTTY() bool {
	stat, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
