package core

import "encoding/json"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventUserList carries the full online-user list (global presence model).
	EventUserList EventKind = iota
	// EventThreadList carries the full thread catalog in creation order.
	EventThreadList
	// EventThreadMessages replays a thread's history to a joining client.
	EventThreadMessages
	// EventPublicMessage delivers one public message to room members.
	EventPublicMessage
	// EventPrivateInvitation tells the target that someone opened a chat.
	EventPrivateInvitation
	// EventPrivateStarted confirms the room and replays history to the initiator.
	EventPrivateStarted
	// EventPrivateMessages replays a private room's history to a joiner.
	EventPrivateMessages
	// EventPrivateJoined tells current members that someone joined the room.
	EventPrivateJoined
	// EventPrivateMessage delivers one private message to room members.
	EventPrivateMessage
	// EventScreenShareStarted announces a screen share to a room.
	EventScreenShareStarted
	// EventScreenShareStopped announces the end of a screen share.
	EventScreenShareStopped
	// EventScreenShareOffer relays an SDP offer.
	EventScreenShareOffer
	// EventScreenShareAnswer relays an SDP answer.
	EventScreenShareAnswer
	// EventScreenShareICECandidate relays an ICE candidate.
	EventScreenShareICECandidate
	// EventError reports a user-visible failure (private chat targeting only).
	EventError
)

// Event is sent to clients to describe what happened in the system.
// Only the fields relevant to the Kind are set.
type Event struct {
	Kind       EventKind
	Users      []string
	Threads    []Thread
	ThreadID   string
	RoomID     string
	From       string
	TargetUser string
	Message    *PublicMessage
	Messages   []PublicMessage
	Private    *PrivateMessage
	History    []PrivateMessage
	Payload    json.RawMessage
	Error      *CoreError
}
