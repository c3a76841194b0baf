package core

import "sync"

// RoomKind distinguishes the two room scopes.
type RoomKind int

const (
	// RoomThread is the public room owned by a thread; its id is the thread id.
	RoomThread RoomKind = iota
	// RoomPrivate is the room for an unordered identity pair.
	RoomPrivate
)

// PrivateRoomID derives the room id for an unordered identity pair.
// Symmetric: PrivateRoomID(a, b) == PrivateRoomID(b, a). Both participants
// can compute it independently without a lookup round-trip.
func PrivateRoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "private_" + a + "_" + b
}

type room struct {
	kind    RoomKind
	members map[string]struct{}
	public  []*PublicMessage
	private []PrivateMessage
}

// RoomDirectory owns membership sets and message histories for every room.
// Rooms are created lazily on first touch and never deleted; membership
// never shrinks (disconnect clears presence, not membership).
type RoomDirectory struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

// NewRoomDirectory constructs an empty directory.
func NewRoomDirectory() *RoomDirectory {
	return &RoomDirectory{rooms: make(map[string]*room)}
}

func (d *RoomDirectory) ensure(id string, kind RoomKind) *room {
	r, ok := d.rooms[id]
	if !ok {
		r = &room{kind: kind, members: make(map[string]struct{})}
		d.rooms[id] = r
	}
	return r
}

// Ensure creates the room if absent.
func (d *RoomDirectory) Ensure(id string, kind RoomKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure(id, kind)
}

// Join adds identity to the room's membership, creating the room if absent.
// Idempotent.
func (d *RoomDirectory) Join(identity, id string, kind RoomKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure(id, kind).members[identity] = struct{}{}
}

// Members returns the membership snapshot, optionally excluding one identity.
func (d *RoomDirectory) Members(id, excluding string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(r.members))
	for identity := range r.members {
		if identity == excluding {
			continue
		}
		out = append(out, identity)
	}
	return out
}

// IsMember reports whether identity belongs to the room.
func (d *RoomDirectory) IsMember(identity, id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[id]
	if !ok {
		return false
	}
	_, member := r.members[identity]
	return member
}

// SharesRoom reports whether two identities are members of at least one
// common room. Used by the room-scoped fan-out strategy.
func (d *RoomDirectory) SharesRoom(a, b string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, r := range d.rooms {
		if _, ok := r.members[a]; !ok {
			continue
		}
		if _, ok := r.members[b]; ok {
			return true
		}
	}
	return false
}

// AppendPublic appends to a thread room's history, creating it lazily,
// and returns the new history length.
func (d *RoomDirectory) AppendPublic(id string, msg *PublicMessage) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	r := d.ensure(id, RoomThread)
	r.public = append(r.public, msg)
	return len(r.public)
}

// PublicHistory returns deep copies of the room's messages in insertion
// order. An unknown room yields an empty history, not an error.
func (d *RoomDirectory) PublicHistory(id string) []PublicMessage {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[id]
	if !ok {
		return []PublicMessage{}
	}
	out := make([]PublicMessage, 0, len(r.public))
	for _, m := range r.public {
		out = append(out, m.Clone())
	}
	return out
}

// AppendPrivate appends to a private room's history, creating it lazily.
// A message may land in a room nobody has formally started.
func (d *RoomDirectory) AppendPrivate(id string, msg PrivateMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r := d.ensure(id, RoomPrivate)
	r.private = append(r.private, msg)
}

// PrivateHistory returns the private room's messages in insertion order.
func (d *RoomDirectory) PrivateHistory(id string) []PrivateMessage {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[id]
	if !ok {
		return []PrivateMessage{}
	}
	return append([]PrivateMessage{}, r.private...)
}

// React adds identity to the emoji's reaction set on the given message,
// idempotently. It returns a copy of the LAST message in the history,
// which is what gets rebroadcast to the room -- not necessarily the
// message that was reacted to. Clients depend on this refresh shape;
// flip to the reacted message only together with a contract bump.
// ok is false when the room has no messages at all.
func (d *RoomDirectory) React(id, messageID, emoji, identity string) (last PublicMessage, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, found := d.rooms[id]
	if !found || len(r.public) == 0 {
		return PublicMessage{}, false
	}
	for _, m := range r.public {
		if m.ID == messageID {
			m.AddReaction(emoji, identity)
			break
		}
	}
	return r.public[len(r.public)-1].Clone(), true
}
