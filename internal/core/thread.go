package core

import (
	"sync"

	"github.com/google/uuid"
)

// Thread is a named public discussion topic. Each thread owns exactly one
// public room whose id equals the thread id.
type Thread struct {
	ID           string
	Title        string
	Description  string
	CreatedBy    string
	MessageCount int
}

// ThreadCatalog holds threads in creation order. Threads are never deleted.
type ThreadCatalog struct {
	mu      sync.RWMutex
	ordered []*Thread
	byID    map[string]*Thread
}

// NewThreadCatalog constructs an empty catalog.
func NewThreadCatalog() *ThreadCatalog {
	return &ThreadCatalog{byID: make(map[string]*Thread)}
}

// Create appends a new thread with a fresh id and zero messages.
func (c *ThreadCatalog) Create(creator, title, description string) Thread {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &Thread{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		CreatedBy:   creator,
	}
	c.ordered = append(c.ordered, t)
	c.byID[t.ID] = t
	return *t
}

// Get returns a copy of the thread with the given id.
func (c *ThreadCatalog) Get(id string) (Thread, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.byID[id]
	if !ok {
		return Thread{}, false
	}
	return *t, true
}

// SetMessageCount overwrites the cached message count. The count duplicates
// the history length and is recomputed from it on every join, so a missed
// increment heals the next time someone opens the thread.
func (c *ThreadCatalog) SetMessageCount(id string, n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.byID[id]
	if !ok {
		return false
	}
	t.MessageCount = n
	return true
}

// IncrementMessageCount bumps the cached count after an accepted post.
func (c *ThreadCatalog) IncrementMessageCount(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.byID[id]
	if !ok {
		return false
	}
	t.MessageCount++
	return true
}

// Snapshot returns copies of all threads in creation order.
func (c *ThreadCatalog) Snapshot() []Thread {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Thread, 0, len(c.ordered))
	for _, t := range c.ordered {
		out = append(out, *t)
	}
	return out
}
