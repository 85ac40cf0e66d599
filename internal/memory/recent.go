// Package memory remembers what was recently said in each scope so the
// generator does not repeat itself.
package memory

import (
	"sync"
	"time"
)

const (
	DefaultCapacity = 25
	DefaultWindow   = 10 * time.Minute
)

type Entry struct {
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Recent is a bounded FIFO of sent texts per scope. A text counts as seen
// while it is in the FIFO and younger than the window. A zero window never
// expires entries.
type Recent struct {
	mu       sync.Mutex
	capacity int
	window   time.Duration
	now      func() time.Time
	scopes   map[string][]Entry
}

type Option func(*Recent)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Recent) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRecent(capacity int, window time.Duration, opts ...Option) *Recent {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if window < 0 {
		window = 0
	}
	r := &Recent{
		capacity: capacity,
		window:   window,
		now:      time.Now,
		scopes:   map[string][]Entry{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recent) Seen(scope, text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for _, e := range r.scopes[scope] {
		if e.Text != text {
			continue
		}
		if r.window == 0 || now.Sub(e.At) < r.window {
			return true
		}
	}
	return false
}

func (r *Recent) Remember(scope, text string) {
	if text == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := append(r.scopes[scope], Entry{Text: text, At: r.now()})
	if len(entries) > r.capacity {
		entries = entries[len(entries)-r.capacity:]
	}
	r.scopes[scope] = entries
}

// Entries returns a copy of the FIFO of scope, oldest first.
func (r *Recent) Entries(scope string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.scopes[scope]...)
}

func (r *Recent) Reset(scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scopes, scope)
}
