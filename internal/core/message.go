package core

import (
	"time"

	"github.com/google/uuid"
)

// PublicMessage is a message posted into a thread's room.
// Reactions map an emoji to the identities that reacted with it;
// each identity appears at most once per emoji.
type PublicMessage struct {
	ID        string
	Author    string
	Body      string
	CreatedAt time.Time
	Reactions map[string][]string
}

// NewPublicMessage constructs a message with a fresh id and server timestamp.
func NewPublicMessage(author, body string) *PublicMessage {
	return &PublicMessage{
		ID:        uuid.NewString(),
		Author:    author,
		Body:      body,
		CreatedAt: time.Now(),
		Reactions: make(map[string][]string),
	}
}

// AddReaction records identity under emoji. Returns false if the identity
// already reacted with that emoji; re-reacting never removes.
func (m *PublicMessage) AddReaction(emoji, identity string) bool {
	for _, who := range m.Reactions[emoji] {
		if who == identity {
			return false
		}
	}
	m.Reactions[emoji] = append(m.Reactions[emoji], identity)
	return true
}

// Clone returns a deep copy safe to hand out after the directory lock is released.
func (m *PublicMessage) Clone() PublicMessage {
	cp := *m
	cp.Reactions = make(map[string][]string, len(m.Reactions))
	for emoji, who := range m.Reactions {
		cp.Reactions[emoji] = append([]string(nil), who...)
	}
	return cp
}

// PrivateMessage is a message in a private pair room.
// It carries no id and no reactions.
type PrivateMessage struct {
	Author    string
	Body      string
	CreatedAt time.Time
}

// NewPrivateMessage constructs a private message with a server timestamp.
func NewPrivateMessage(author, body string) PrivateMessage {
	return PrivateMessage{
		Author:    author,
		Body:      body,
		CreatedAt: time.Now(),
	}
}
