// Package notify surfaces transient messages (toasts) to the user.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Level classifies a toast.
type Level int

const (
	Info Level = iota
	Success
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notifier shows a toast. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(level Level, msg string)
}

// Event is one recorded toast.
type Event struct {
	Level   Level
	Message string
}

// Writer prints each toast on its own line.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Notifier that prints to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (n *Writer) Notify(level Level, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "[%s] %s\n", level, msg)
}

// Recorder keeps every toast in memory. Used by tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(level Level, msg string) {
	r.mu.Lock()
	r.events = append(r.events, Event{Level: level, Message: msg})
	r.mu.Unlock()
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Has reports whether a toast with this level and message was recorded.
func (r *Recorder) Has(level Level, msg string) bool {
	for _, e := range r.Events() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

// Count returns how many toasts of the given level were recorded.
func (r *Recorder) Count(level Level) int {
	n := 0
	for _, e := range r.Events() {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Reset drops all recorded toasts.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// Discard drops every toast.
type Discard struct{}

func (Discard) Notify(Level, string) {}
