package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Spinner shows progress on a writer (typically stderr) while the CLI waits
// on the suggestion source or a decision batch. Update is safe from any goroutine.
type Spinner struct {
	mu       sync.Mutex
	w        io.Writer
	message  string
	started  time.Time
	interval time.Duration
	done     chan struct{}
	exited   chan struct{}
	running  bool
}

// NewSpinner creates a spinner that writes to w.
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{w: w, interval: 80 * time.Millisecond}
}

// Start begins the animation. Starting a running spinner only swaps the message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	if s.running {
		return
	}
	s.running = true
	s.started = time.Now()
	s.done = make(chan struct{})
	s.exited = make(chan struct{})
	go s.loop(s.done, s.exited)
}

// Update changes the displayed message while the spinner is running.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop halts the spinner and clears its line. It is idempotent.
func (s *Spinner) Stop() {
	s.halt("")
}

// Done halts the spinner and leaves msg with the elapsed time in its place.
func (s *Spinner) Done(msg string) {
	s.halt(msg)
}

func (s *Spinner) halt(final string) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	done, exited := s.done, s.exited
	s.mu.Unlock()

	close(done)
	<-exited

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", 80))
	if final != "" {
		fmt.Fprintf(s.w, "✔ %s (%s)\n", final, time.Since(s.started).Round(time.Millisecond))
	}
}

func (s *Spinner) loop(done <-chan struct{}, exited chan<- struct{}) {
	defer close(exited)
	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	i := 0
	for {
		select {
		case <-done:
			return
		case <-tick.C:
			s.mu.Lock()
			frame := spinnerFrames[i%len(spinnerFrames)]
			elapsed := time.Since(s.started).Truncate(time.Second)
			line := fmt.Sprintf("\r%c %s %s", frame, s.message, elapsed)
			// pad so a shorter message fully overwrites the previous one
			fmt.Fprintf(s.w, "%-80s", line)
			s.mu.Unlock()
			i++
		}
	}
}
