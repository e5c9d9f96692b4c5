package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Spinner shows an animated label while a blocking call runs, then a final
// status line with the elapsed time.
type Spinner struct {
	mu       sync.Mutex
	label    string
	out      io.Writer
	frame    int
	started  time.Time
	stop     chan struct{}
	done     chan struct{}
	running  bool
	lastLine string
}

// NewSpinner creates a spinner writing to out.
func NewSpinner(out io.Writer, label string) *Spinner {
	return &Spinner{label: label, out: out}
}

// Start begins the animation. Calling Start twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.started = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.render()
	go s.animate()
}

// Success ends the spinner with a check mark.
func (s *Spinner) Success() {
	s.finish(SuccessStyle().Render(SymbolSuccess))
}

// Fail ends the spinner with a cross.
func (s *Spinner) Fail() {
	s.finish(ErrorStyle().Render(SymbolFail))
}

// Skip ends the spinner with a skipped mark.
func (s *Spinner) Skip() {
	s.finish(WarningStyle().Render(SymbolSkipped))
}

func (s *Spinner) halt() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()
	<-s.done
}

func (s *Spinner) finish(symbol string) {
	s.halt()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	fmt.Fprintf(s.out, "%s %s %s\n", symbol, s.label, MutedStyle().Render(formatDuration(time.Since(s.started))))
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.mu.Unlock()
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()

	style := lipgloss.NewStyle().Foreground(ColorInfo)
	line := fmt.Sprintf("%s %s...", style.Render(spinnerFrames[s.frame]), s.label)
	s.clear()
	fmt.Fprint(s.out, line)
	s.lastLine = line
}

// clear blanks the last rendered line. Callers hold s.mu.
func (s *Spinner) clear() {
	if s.lastLine == "" {
		return
	}
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", lipgloss.Width(s.lastLine))+"\r")
	s.lastLine = ""
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
