package core

import "encoding/json"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandCreateThread creates a public thread and its room.
	CommandCreateThread CommandKind = iota
	// CommandJoinThread subscribes the client to a thread's room and replays history.
	CommandJoinThread
	// CommandPublicMessage posts a message into a thread's room.
	CommandPublicMessage
	// CommandReactMessage adds an emoji reaction to a public message.
	CommandReactMessage
	// CommandStartPrivateChat opens a private pair room with a target user.
	CommandStartPrivateChat
	// CommandJoinPrivateChat joins an existing private room by id.
	CommandJoinPrivateChat
	// CommandPrivateMessage posts a message into a private room.
	CommandPrivateMessage
	// CommandStartScreenShare announces a screen share to a room.
	CommandStartScreenShare
	// CommandStopScreenShare announces the end of a screen share.
	CommandStopScreenShare
	// CommandScreenShareOffer relays an SDP offer to a room.
	CommandScreenShareOffer
	// CommandScreenShareAnswer relays an SDP answer to one target user.
	CommandScreenShareAnswer
	// CommandScreenShareICECandidate relays an ICE candidate to a room.
	CommandScreenShareICECandidate
)

// Command represents an action requested by a client. Payload stays opaque;
// the relay never interprets signaling bodies.
type Command struct {
	Kind        CommandKind
	ThreadID    string
	Title       string
	Description string
	Body        string
	MessageID   string
	Emoji       string
	TargetUser  string
	RoomID      string
	Payload     json.RawMessage
}
