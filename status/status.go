// Package status carries human-readable progress from the key recovery operations to their host.
package status

import (
	"sync"
)

// Level is a severity hint for a status message.
type Level int

const (
	Info    Level = 0
	Success Level = 1
	Error   Level = 2
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

// Func receives status messages. It may be called zero or more times per operation.
type Func func(message string, level Level)

// Report calls fn when it is non-nil.
func (fn Func) Report(message string, level Level) {
	if fn != nil {
		fn(message, level)
	}
}

// Log accumulates messages and forwards them to an optional downstream Func.
type Log struct {
	mu      sync.Mutex
	lines   []string
	forward Func
}

func NewLog(forward Func) *Log {
	return &Log{forward: forward}
}

// Report appends message and forwards it.
func (l *Log) Report(message string, level Level) {
	l.mu.Lock()
	l.lines = append(l.lines, message)
	l.mu.Unlock()
	l.forward.Report(message, level)
}

// Lines returns a copy of everything reported so far.
func (l *Log) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}
