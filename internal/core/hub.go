package core

import (
	"context"

	"github.com/rs/zerolog"
)

// FanoutMode selects how presence and thread-list refreshes spread.
type FanoutMode string

const (
	// FanoutBroadcast refreshes every connected client on every mutation.
	// This is the historical contract: every user sees every other user's
	// status and the full thread list at all times.
	FanoutBroadcast FanoutMode = "broadcast"
	// FanoutRooms restricts presence refreshes to clients sharing a room
	// with the affected user, and thread refreshes to that thread's members.
	FanoutRooms FanoutMode = "rooms"
)

type clientCommand struct {
	client *Client
	cmd    *Command
}

// Hub is the message router. It resolves sender identity via the presence
// registry, mutates the room directory and thread catalog, and fans the
// resulting events out to the right recipients. A single Run loop is the
// only writer; delivery into client event channels never blocks.
type Hub struct {
	log    *zerolog.Logger
	fanout FanoutMode

	presence *Presence
	threads  *ThreadCatalog
	rooms    *RoomDirectory

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand

	clients map[*Client]struct{}
	quits   map[*Client]chan struct{}
}

// NewHub constructs a hub with empty registries.
func NewHub(logger *zerolog.Logger, fanout FanoutMode) *Hub {
	if fanout == "" {
		fanout = FanoutBroadcast
	}
	return &Hub{
		log:        logger,
		fanout:     fanout,
		presence:   NewPresence(),
		threads:    NewThreadCatalog(),
		rooms:      NewRoomDirectory(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand, 64),
		clients:    make(map[*Client]struct{}),
		quits:      make(map[*Client]chan struct{}),
	}
}

// RegisterClient hands a freshly connected client to the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient removes a disconnected client from the hub.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// OnlineUsers returns a snapshot of online identities, optionally excluding
// one. Safe to call from any goroutine; it does not enter the run loop.
func (h *Hub) OnlineUsers(excluding string) []string {
	return h.presence.OnlineUsers(excluding)
}

// Threads returns the thread catalog in creation order.
func (h *Hub) Threads() []Thread {
	return h.threads.Snapshot()
}

// Run processes registrations and commands until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for _, quit := range h.quits {
			close(quit)
		}
	}()

	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			quit := make(chan struct{})
			h.quits[c] = quit
			go h.pump(c, quit)
			h.handleConnect(c)
		case c := <-h.unregister:
			if quit, ok := h.quits[c]; ok {
				close(quit)
				delete(h.quits, c)
			}
			delete(h.clients, c)
			h.handleDisconnect(c)
		case cc := <-h.commands:
			h.dispatch(cc.client, cc.cmd)
		case <-ctx.Done():
			return
		}
	}
}

// pump forwards one client's commands into the central loop.
func (h *Hub) pump(c *Client, quit <-chan struct{}) {
	for {
		select {
		case cmd := <-c.Commands:
			select {
			case h.commands <- clientCommand{client: c, cmd: cmd}:
			case <-quit:
				return
			}
		case <-quit:
			return
		}
	}
}

func (h *Hub) handleConnect(c *Client) {
	if c.Identity == "" {
		h.log.Debug().Str("client_id", c.ID).Msg("connect without identity ignored")
		return
	}
	h.presence.SetOnline(c.Identity, c)
	h.broadcastPresence(c.Identity)
	h.broadcastThreads("")
	h.log.Info().Str("user", c.Identity).Msg("connected")
}

func (h *Hub) handleDisconnect(c *Client) {
	if c.Identity == "" {
		return
	}
	// A superseded handle disconnecting must not knock the live one offline.
	if h.presence.DropClient(c.Identity, c) {
		h.broadcastPresence(c.Identity)
		h.log.Info().Str("user", c.Identity).Msg("disconnected")
	}
}

func (h *Hub) dispatch(c *Client, cmd *Command) {
	identity := c.Identity
	if identity == "" {
		// Silent drop: no mutation, no broadcast, no error event.
		h.log.Debug().Str("client_id", c.ID).Msg("dropping command from unauthenticated client")
		return
	}

	switch cmd.Kind {
	case CommandCreateThread:
		h.createThread(c, identity, cmd)
	case CommandJoinThread:
		h.joinThread(c, identity, cmd)
	case CommandPublicMessage:
		h.publicMessage(identity, cmd)
	case CommandReactMessage:
		h.reactMessage(identity, cmd)
	case CommandStartPrivateChat:
		h.startPrivateChat(c, identity, cmd)
	case CommandJoinPrivateChat:
		h.joinPrivateChat(c, identity, cmd)
	case CommandPrivateMessage:
		h.privateMessage(identity, cmd)
	case CommandStartScreenShare:
		h.relayToRoom(identity, cmd.RoomID, &Event{Kind: EventScreenShareStarted, RoomID: cmd.RoomID, From: identity})
	case CommandStopScreenShare:
		h.relayToRoom(identity, cmd.RoomID, &Event{Kind: EventScreenShareStopped, RoomID: cmd.RoomID, From: identity})
	case CommandScreenShareOffer:
		h.relayToRoom(identity, cmd.RoomID, &Event{Kind: EventScreenShareOffer, RoomID: cmd.RoomID, From: identity, Payload: cmd.Payload})
	case CommandScreenShareAnswer:
		h.relayToUser(cmd.TargetUser, &Event{Kind: EventScreenShareAnswer, RoomID: cmd.RoomID, From: identity, Payload: cmd.Payload})
	case CommandScreenShareICECandidate:
		h.relayToRoom(identity, cmd.RoomID, &Event{Kind: EventScreenShareICECandidate, RoomID: cmd.RoomID, From: identity, Payload: cmd.Payload})
	default:
		h.log.Debug().Int("kind", int(cmd.Kind)).Msg("unknown command kind ignored")
	}
}

func (h *Hub) createThread(c *Client, identity string, cmd *Command) {
	t := h.threads.Create(identity, cmd.Title, cmd.Description)
	h.rooms.Ensure(t.ID, RoomThread)
	h.broadcastThreads("")
	c.send(&Event{Kind: EventThreadMessages, ThreadID: t.ID, Messages: []PublicMessage{}})
	h.log.Info().Str("user", identity).Str("thread_id", t.ID).Str("title", t.Title).Msg("thread created")
}

func (h *Hub) joinThread(c *Client, identity string, cmd *Command) {
	// Joining an unknown thread is not an error: the room is created lazily
	// and an empty history comes back.
	h.rooms.Join(identity, cmd.ThreadID, RoomThread)
	history := h.rooms.PublicHistory(cmd.ThreadID)
	h.threads.SetMessageCount(cmd.ThreadID, len(history))
	h.broadcastThreads(cmd.ThreadID)
	c.send(&Event{Kind: EventThreadMessages, ThreadID: cmd.ThreadID, Messages: history})
}

func (h *Hub) publicMessage(identity string, cmd *Command) {
	msg := NewPublicMessage(identity, cmd.Body)
	h.rooms.AppendPublic(cmd.ThreadID, msg)
	out := msg.Clone()
	h.deliverToRoom(cmd.ThreadID, "", &Event{Kind: EventPublicMessage, ThreadID: cmd.ThreadID, Message: &out})
	h.threads.IncrementMessageCount(cmd.ThreadID)
	h.broadcastThreads(cmd.ThreadID)
}

func (h *Hub) reactMessage(identity string, cmd *Command) {
	// The refresh event carries the LAST message of the thread, which is
	// not necessarily the one reacted to. Wire contract, do not "fix" here.
	last, ok := h.rooms.React(cmd.ThreadID, cmd.MessageID, cmd.Emoji, identity)
	if !ok {
		return
	}
	h.deliverToRoom(cmd.ThreadID, "", &Event{Kind: EventPublicMessage, ThreadID: cmd.ThreadID, Message: &last})
}

func (h *Hub) startPrivateChat(c *Client, identity string, cmd *Command) {
	target := cmd.TargetUser
	targetClient, online := h.presence.ClientOf(target)
	if !online {
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeTargetUnavailable, "User offline")})
		return
	}

	roomID := PrivateRoomID(identity, target)
	h.rooms.Join(identity, roomID, RoomPrivate)
	targetClient.send(&Event{Kind: EventPrivateInvitation, RoomID: roomID, From: identity})
	c.send(&Event{
		Kind:       EventPrivateStarted,
		RoomID:     roomID,
		TargetUser: target,
		History:    h.rooms.PrivateHistory(roomID),
	})
}

func (h *Hub) joinPrivateChat(c *Client, identity string, cmd *Command) {
	// No invitation check: any authenticated identity that knows the room id
	// may join. Authentication is the only gate.
	others := h.rooms.Members(cmd.RoomID, identity)
	h.rooms.Join(identity, cmd.RoomID, RoomPrivate)
	for _, member := range others {
		if mc, ok := h.presence.ClientOf(member); ok {
			mc.send(&Event{Kind: EventPrivateJoined, RoomID: cmd.RoomID, From: identity})
		}
	}
	c.send(&Event{
		Kind:    EventPrivateMessages,
		RoomID:  cmd.RoomID,
		History: h.rooms.PrivateHistory(cmd.RoomID),
	})
}

func (h *Hub) privateMessage(identity string, cmd *Command) {
	msg := NewPrivateMessage(identity, cmd.Body)
	h.rooms.AppendPrivate(cmd.RoomID, msg)
	h.deliverToRoom(cmd.RoomID, "", &Event{Kind: EventPrivateMessage, RoomID: cmd.RoomID, Private: &msg})
}

// relayToRoom forwards a signaling event to every room member except the
// sender. The payload stays opaque.
func (h *Hub) relayToRoom(sender, roomID string, ev *Event) {
	h.deliverToRoom(roomID, sender, ev)
}

// relayToUser forwards a signaling event to one identity's live connection.
// Dropped silently if the target is offline.
func (h *Hub) relayToUser(target string, ev *Event) {
	if tc, ok := h.presence.ClientOf(target); ok {
		tc.send(ev)
	}
}

// deliverToRoom pushes an event to the live connection of every room member,
// optionally excluding one identity. Offline members miss the event; the
// room history is the only backlog.
func (h *Hub) deliverToRoom(roomID, excluding string, ev *Event) {
	for _, member := range h.rooms.Members(roomID, excluding) {
		if mc, ok := h.presence.ClientOf(member); ok {
			mc.send(ev)
		}
	}
}

// broadcastPresence refreshes user lists after a presence change of affected.
func (h *Hub) broadcastPresence(affected string) {
	ev := &Event{Kind: EventUserList, Users: h.presence.OnlineUsers("")}
	for c := range h.clients {
		if h.fanout == FanoutRooms && c.Identity != affected && !h.rooms.SharesRoom(c.Identity, affected) {
			continue
		}
		c.send(ev)
	}
}

// broadcastThreads refreshes thread lists. threadID scopes the refresh under
// FanoutRooms; an empty threadID (connect, creation) always goes to everyone
// so new threads are discoverable.
func (h *Hub) broadcastThreads(threadID string) {
	ev := &Event{Kind: EventThreadList, Threads: h.threads.Snapshot()}
	for c := range h.clients {
		if h.fanout == FanoutRooms && threadID != "" && !h.rooms.IsMember(c.Identity, threadID) {
			continue
		}
		c.send(ev)
	}
}
