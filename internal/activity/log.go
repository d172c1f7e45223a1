// Package activity keeps the user-facing activity log: a short, capped history of
// what the pilot did, with failures tagged by a fixed prefix.
package activity

import (
	"strings"
	"sync"
	"time"

	"github.com/jonathan/career-pilot/internal/logging"
)

const (
	// MaxLines is the number of most recent lines retained
	MaxLines = 50
	// ErrorPrefix marks a line as a failure
	ErrorPrefix = "ERR:"
	// InitialLine is written when a log is created
	InitialLine = "System initialized. Waiting for user profile..."

	subscriberBuffer = 16
)

// Line is one activity entry
type Line struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

// IsError reports whether the line records a failure
func (l Line) IsError() bool {
	return strings.HasPrefix(l.Text, ErrorPrefix)
}

// Log is a concurrency-safe ring of at most MaxLines lines
type Log struct {
	mu     sync.RWMutex
	lines  []Line
	subs   map[int]chan Line
	nextID int
	logger *logging.Logger
	now    func() time.Time
}

// Option configures a Log
type Option func(*Log)

// WithLogger mirrors every line to a structured logger
func WithLogger(logger *logging.Logger) Option {
	return func(l *Log) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

// New creates a log holding the initial line
func New(opts ...Option) *Log {
	l := &Log{
		lines:  make([]Line, 0, MaxLines),
		subs:   make(map[int]chan Line),
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.Add(InitialLine)
	return l
}

// Add appends an informational line
func (l *Log) Add(text string) Line {
	return l.append(text)
}

// Error appends a failure line, adding the error prefix when missing
func (l *Log) Error(text string) Line {
	if !strings.HasPrefix(text, ErrorPrefix) {
		text = ErrorPrefix + " " + text
	}
	return l.append(text)
}

func (l *Log) append(text string) Line {
	l.mu.Lock()
	line := Line{At: l.now(), Text: text}
	if len(l.lines) == MaxLines {
		copy(l.lines, l.lines[1:])
		l.lines = l.lines[:MaxLines-1]
	}
	l.lines = append(l.lines, line)
	for _, ch := range l.subs {
		select {
		case ch <- line:
		default:
			// slow subscriber, drop
		}
	}
	l.mu.Unlock()

	if line.IsError() {
		l.logger.Warn("activity", "line", text)
	} else {
		l.logger.Info("activity", "line", text)
	}
	return line
}

// Lines returns a copy of the retained lines, oldest first
func (l *Log) Lines() []Line {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Line(nil), l.lines...)
}

// Len returns the number of retained lines
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.lines)
}

// Errors returns only the failure lines
func (l *Log) Errors() []Line {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Line
	for _, line := range l.lines {
		if line.IsError() {
			out = append(out, line)
		}
	}
	return out
}

// Subscribe returns a channel receiving every line appended after the call.
// Lines are dropped for a subscriber whose buffer is full. Call cancel to unsubscribe.
func (l *Log) Subscribe() (<-chan Line, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	ch := make(chan Line, subscriberBuffer)
	l.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}
