// Package activity keeps a bounded, newest-first log of store mutations for
// the sidebar feed.
package activity

import (
	"sync"
	"time"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/utils"
)

// DefaultCapacity matches the sidebar, which shows at most 20 entries.
const DefaultCapacity = 20

// Log is a fixed-capacity ring: insertion at head, eviction from tail.
type Log struct {
	mu      sync.Mutex
	cap     int
	entries []models.ActivityEntry
}

// NewLog returns a Log with the given capacity; cap <= 0 uses
// DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{cap: capacity}
}

// Push records a mutation event at the head, evicting the oldest entry when
// the log is full. Returns the stored entry.
func (l *Log) Push(typ, message, actor string) models.ActivityEntry {
	e := models.ActivityEntry{
		ID:        utils.GenActivityID(),
		Type:      typ,
		Message:   message,
		Actor:     actor,
		CreatedTS: time.Now().UTC().UnixNano(),
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]models.ActivityEntry{e}, l.entries...)
	if len(l.entries) > l.cap {
		l.entries = l.entries[:l.cap]
	}
	return e
}

// Head returns the entries newest-first. The returned slice is a copy.
func (l *Log) Head() []models.ActivityEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.ActivityEntry(nil), l.entries...)
}

// Len reports the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
