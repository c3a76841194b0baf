package core

import (
	"sort"
	"sync"
)

type presenceEntry struct {
	online bool
	client *Client
}

// Presence tracks which identities are online and which live client handle
// currently serves each of them. An identity has at most one live client;
// a new connection silently supersedes the old one.
type Presence struct {
	mu      sync.RWMutex
	entries map[string]*presenceEntry
}

// NewPresence constructs an empty presence registry.
func NewPresence() *Presence {
	return &Presence{entries: make(map[string]*presenceEntry)}
}

// SetOnline binds the client as the live connection for identity,
// overwriting any stale handle. Idempotent.
func (p *Presence) SetOnline(identity string, c *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[identity]
	if !ok {
		e = &presenceEntry{}
		p.entries[identity] = e
	}
	e.online = true
	e.client = c
}

// SetOffline clears the live connection for identity. No-op if already offline.
func (p *Presence) SetOffline(identity string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[identity]; ok {
		e.online = false
		e.client = nil
	}
}

// DropClient marks identity offline only if c is still its live connection.
// Returns true if presence changed. A superseded connection disconnecting
// must not knock the replacement offline.
func (p *Presence) DropClient(identity string, c *Client) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[identity]
	if !ok || e.client != c {
		return false
	}
	e.online = false
	e.client = nil
	return true
}

// IsOnline reports whether identity has a live connection.
func (p *Presence) IsOnline(identity string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	e, ok := p.entries[identity]
	return ok && e.online
}

// ClientOf returns the live client for identity, if any.
func (p *Presence) ClientOf(identity string) (*Client, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	e, ok := p.entries[identity]
	if !ok || !e.online || e.client == nil {
		return nil, false
	}
	return e.client, true
}

// OnlineUsers returns a sorted snapshot of online identities,
// optionally excluding one.
func (p *Presence) OnlineUsers(excluding string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]string, 0, len(p.entries))
	for identity, e := range p.entries {
		if !e.online || identity == excluding {
			continue
		}
		out = append(out, identity)
	}
	sort.Strings(out)
	return out
}
