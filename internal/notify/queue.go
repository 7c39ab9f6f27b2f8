// Package notify implements the operator-facing notification channel: a
// bounded FIFO queue of toast-style messages with per-item expiry.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is one operator-visible message.
type Notification struct {
	ID        string
	Level     Level
	Message   string
	CreatedAt time.Time
}

// Notifier is the surface consumed by the mutation coordinator.
type Notifier interface {
	Push(level Level, message string) Notification
}

const (
	DefaultCapacity = 5
	DefaultTTL      = 3 * time.Second
)

// Queue is a bounded FIFO of notifications. When full, the oldest entry is
// evicted. Each entry expires on its own timer, not a shared one.
type Queue struct {
	mu       sync.Mutex
	items    []Notification
	timers   map[string]*time.Timer
	capacity int
	ttl      time.Duration
	closed   bool
}

// NewQueue creates a queue with the given capacity and per-item ttl.
// Non-positive arguments fall back to the defaults.
func NewQueue(capacity int, ttl time.Duration) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{
		timers:   make(map[string]*time.Timer),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Push appends a notification, evicting the oldest entry when the queue is
// full, and arms its expiry timer.
func (q *Queue) Push(level Level, message string) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return n
	}
	if len(q.items) >= q.capacity {
		oldest := q.items[0]
		q.items = q.items[1:]
		q.stopTimerLocked(oldest.ID)
	}
	q.items = append(q.items, n)
	q.timers[n.ID] = time.AfterFunc(q.ttl, func() { q.Dismiss(n.ID) })
	return n
}

// Dismiss removes a notification by ID. Unknown IDs are ignored.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			break
		}
	}
	q.stopTimerLocked(id)
}

// Active returns the currently visible notifications, oldest first.
func (q *Queue) Active() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Close stops all expiry timers and drops pending items. Pushes after Close
// are no-ops.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	for id := range q.timers {
		q.stopTimerLocked(id)
	}
	q.items = nil
}

func (q *Queue) stopTimerLocked(id string) {
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
}
