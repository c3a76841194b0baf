package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeCreateThread      = "create_thread"
	InboundTypeJoinThread        = "join_thread"
	InboundTypePublicMessage     = "public_message"
	InboundTypeReactMessage      = "react_message"
	InboundTypeStartPrivateChat  = "start_private_chat"
	InboundTypeJoinPrivateChat   = "join_private_chat"
	InboundTypePrivateMessage    = "private_message"
	InboundTypeStartScreenShare  = "start_screen_share"
	InboundTypeStopScreenShare   = "stop_screen_share"
	InboundTypeScreenShareOffer  = "screen_share_offer"
	InboundTypeScreenShareAnswer = "screen_share_answer"
	InboundTypeScreenShareICE    = "screen_share_ice_candidate"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventUserListUpdated        = "user_list_updated"
	EventThreadsUpdated         = "threads_updated"
	EventThreadMessages         = "thread_messages"
	EventPublicMessageReceived  = "public_message_received"
	EventPrivateChatInvitation  = "private_chat_invitation"
	EventPrivateChatStarted     = "private_chat_started"
	EventPrivateChatMessages    = "private_chat_messages"
	EventPrivateChatJoined      = "private_chat_joined"
	EventPrivateMessageReceived = "private_message_received"
	EventScreenShareStarted     = "screen_share_started"
	EventScreenShareStopped     = "screen_share_stopped"
	EventScreenShareOfferRecv   = "screen_share_offer_received"
	EventScreenShareAnswerRecv  = "screen_share_answer_received"
	EventScreenShareICERecv     = "screen_share_ice_candidate_received"
)

// CreateThreadData requests a new public thread.
type CreateThreadData struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// JoinThreadData requests to join a thread's room.
type JoinThreadData struct {
	ThreadID string `json:"thread_id"`
}

// PublicMessageData is a chat message for a thread.
type PublicMessageData struct {
	ThreadID string `json:"thread_id"`
	Message  string `json:"message"`
}

// ReactMessageData adds an emoji reaction to a public message.
type ReactMessageData struct {
	ThreadID  string `json:"thread_id"`
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

// StartPrivateChatData opens a private chat with a target user.
type StartPrivateChatData struct {
	TargetUser string `json:"target_user"`
}

// JoinPrivateChatData joins a private room by id.
type JoinPrivateChatData struct {
	RoomID string `json:"room_id"`
}

// PrivateMessageData is a chat message for a private room.
type PrivateMessageData struct {
	RoomID  string `json:"room_id"`
	Message string `json:"message"`
}

// ScreenShareData scopes a screen-share announcement to a room.
type ScreenShareData struct {
	RoomID string `json:"room_id"`
}

// ScreenShareOfferData carries an opaque SDP offer for a room.
type ScreenShareOfferData struct {
	RoomID string          `json:"room_id"`
	Offer  json.RawMessage `json:"offer"`
}

// ScreenShareAnswerData carries an opaque SDP answer for one target user.
type ScreenShareAnswerData struct {
	RoomID     string          `json:"room_id"`
	TargetUser string          `json:"target_user"`
	Answer     json.RawMessage `json:"answer"`
}

// ScreenShareICEData carries an opaque ICE candidate for a room.
type ScreenShareICEData struct {
	RoomID    string          `json:"room_id"`
	Candidate json.RawMessage `json:"candidate"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// ThreadInfo mirrors a catalog thread on the wire.
type ThreadInfo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	CreatedBy    string `json:"created_by"`
	MessageCount int    `json:"message_count"`
}

// PublicMessageInfo mirrors a public message on the wire.
type PublicMessageInfo struct {
	ID        string              `json:"id"`
	Username  string              `json:"username"`
	Message   string              `json:"message"`
	Timestamp string              `json:"timestamp"`
	Reactions map[string][]string `json:"reactions"`
}

// PrivateMessageInfo mirrors a private message on the wire.
type PrivateMessageInfo struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// EventUserListData carries the online-user list.
type EventUserListData struct {
	Users []string `json:"users"`
}

// EventThreadsData carries the full thread list.
type EventThreadsData struct {
	Threads []ThreadInfo `json:"threads"`
}

// EventThreadMessagesData replays a thread's history.
type EventThreadMessagesData struct {
	ThreadID string              `json:"thread_id"`
	Messages []PublicMessageInfo `json:"messages"`
}

// EventPrivateInvitationData notifies the target of an incoming chat.
type EventPrivateInvitationData struct {
	FromUser string `json:"from_user"`
	RoomID   string `json:"room_id"`
}

// EventPrivateStartedData confirms a private room to the initiator.
type EventPrivateStartedData struct {
	RoomID     string               `json:"room_id"`
	TargetUser string               `json:"target_user"`
	Messages   []PrivateMessageInfo `json:"messages"`
}

// EventPrivateMessagesData replays a private room's history.
type EventPrivateMessagesData struct {
	RoomID   string               `json:"room_id"`
	Messages []PrivateMessageInfo `json:"messages"`
}

// EventPrivateJoinedData notifies members that a user joined the room.
type EventPrivateJoinedData struct {
	RoomID   string `json:"room_id"`
	Username string `json:"username"`
}

// EventScreenShareData announces a screen-share state change.
type EventScreenShareData struct {
	Username string `json:"username"`
	RoomID   string `json:"room_id"`
}

// EventScreenShareOfferData relays an opaque offer.
type EventScreenShareOfferData struct {
	Offer    json.RawMessage `json:"offer"`
	FromUser string          `json:"from_user"`
}

// EventScreenShareAnswerData relays an opaque answer.
type EventScreenShareAnswerData struct {
	Answer json.RawMessage `json:"answer"`
}

// EventScreenShareICEData relays an opaque ICE candidate.
type EventScreenShareICEData struct {
	Candidate json.RawMessage `json:"candidate"`
	FromUser  string          `json:"from_user"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
