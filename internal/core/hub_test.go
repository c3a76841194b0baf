package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	return startHubWithFanout(t, FanoutBroadcast)
}

func startHubWithFanout(t *testing.T, fanout FanoutMode) *Hub {
	t.Helper()

	logger := zerolog.Nop()
	hub := NewHub(&logger, fanout)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func connect(t *testing.T, hub *Hub, identity string) *Client {
	t.Helper()

	c := NewClient(identity+"-conn", identity)
	hub.RegisterClient(c)
	// Connect always fans out the user list; wait for it so later
	// assertions see a settled hub.
	mustEvent(t, c.Events, EventUserList)
	return c
}

func createThread(t *testing.T, hub *Hub, c *Client, title string) string {
	t.Helper()

	c.Commands <- &Command{Kind: CommandCreateThread, Title: title}
	ev := mustEvent(t, c.Events, EventThreadMessages)
	if ev.ThreadID == "" {
		t.Fatalf("expected thread id in creation ack")
	}
	return ev.ThreadID
}

func TestHubThreadLifecycle(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "alice")
	threadID := createThread(t, hub, alice, "General")

	alice.Commands <- &Command{Kind: CommandJoinThread, ThreadID: threadID}
	joinEv := mustEvent(t, alice.Events, EventThreadMessages)
	if len(joinEv.Messages) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(joinEv.Messages))
	}

	alice.Commands <- &Command{Kind: CommandPublicMessage, ThreadID: threadID, Body: "hello"}
	msgEv := mustEvent(t, alice.Events, EventPublicMessage)
	if msgEv.Message.Author != "alice" || msgEv.Message.Body != "hello" {
		t.Fatalf("unexpected message event: %+v", msgEv.Message)
	}

	bob := connect(t, hub, "bob")
	bob.Commands <- &Command{Kind: CommandJoinThread, ThreadID: threadID}
	historyEv := mustEvent(t, bob.Events, EventThreadMessages)
	if len(historyEv.Messages) != 1 {
		t.Fatalf("expected history of 1, got %d", len(historyEv.Messages))
	}
	got := historyEv.Messages[0]
	if got.Author != "alice" || got.Body != "hello" || len(got.Reactions) != 0 {
		t.Fatalf("unexpected history entry: %+v", got)
	}

	threads := hub.Threads()
	if len(threads) != 1 || threads[0].MessageCount != 1 {
		t.Fatalf("expected one thread with message_count 1, got %+v", threads)
	}
}

func TestHubMessageCountTracksHistory(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "alice")
	threadID := createThread(t, hub, alice, "Counting")
	alice.Commands <- &Command{Kind: CommandJoinThread, ThreadID: threadID}
	mustEvent(t, alice.Events, EventThreadMessages)

	const n = 5
	for i := 0; i < n; i++ {
		alice.Commands <- &Command{Kind: CommandPublicMessage, ThreadID: threadID, Body: "m"}
		mustEvent(t, alice.Events, EventPublicMessage)
	}

	// Rejoin recomputes the count from the history.
	alice.Commands <- &Command{Kind: CommandJoinThread, ThreadID: threadID}
	ev := mustEvent(t, alice.Events, EventThreadMessages)
	if len(ev.Messages) != n {
		t.Fatalf("expected %d messages, got %d", n, len(ev.Messages))
	}
	if got := hub.Threads()[0].MessageCount; got != n {
		t.Fatalf("expected message_count %d, got %d", n, got)
	}
}

func TestHubReactionRebroadcastsLastMessage(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "alice")
	threadID := createThread(t, hub, alice, "Reactions")
	alice.Commands <- &Command{Kind: CommandJoinThread, ThreadID: threadID}
	mustEvent(t, alice.Events, EventThreadMessages)

	alice.Commands <- &Command{Kind: CommandPublicMessage, ThreadID: threadID, Body: "first"}
	first := mustEvent(t, alice.Events, EventPublicMessage).Message
	alice.Commands <- &Command{Kind: CommandPublicMessage, ThreadID: threadID, Body: "last"}
	last := mustEvent(t, alice.Events, EventPublicMessage).Message

	// Reacting to the first message rebroadcasts the last one.
	alice.Commands <- &Command{Kind: CommandReactMessage, ThreadID: threadID, MessageID: first.ID, Emoji: "👍"}
	ev := mustEvent(t, alice.Events, EventPublicMessage)
	if ev.Message.ID != last.ID {
		t.Fatalf("expected rebroadcast of last message %s, got %s", last.ID, ev.Message.ID)
	}

	// Idempotence: a second identical reaction keeps the set at one entry.
	alice.Commands <- &Command{Kind: CommandReactMessage, ThreadID: threadID, MessageID: last.ID, Emoji: "🔥"}
	mustEvent(t, alice.Events, EventPublicMessage)
	alice.Commands <- &Command{Kind: CommandReactMessage, ThreadID: threadID, MessageID: last.ID, Emoji: "🔥"}
	ev = mustEvent(t, alice.Events, EventPublicMessage)
	if got := ev.Message.Reactions["🔥"]; len(got) != 1 || got[0] != "alice" {
		t.Fatalf("expected single 🔥 reaction from alice, got %v", got)
	}
}

func TestHubPrivateChatRoundTrip(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")

	alice.Commands <- &Command{Kind: CommandStartPrivateChat, TargetUser: "bob"}

	invite := mustEvent(t, bob.Events, EventPrivateInvitation)
	wantRoom := PrivateRoomID("alice", "bob")
	if invite.RoomID != wantRoom || invite.From != "alice" {
		t.Fatalf("unexpected invitation: %+v", invite)
	}

	started := mustEvent(t, alice.Events, EventPrivateStarted)
	if started.RoomID != wantRoom || started.TargetUser != "bob" || len(started.History) != 0 {
		t.Fatalf("unexpected started event: %+v", started)
	}

	bob.Commands <- &Command{Kind: CommandJoinPrivateChat, RoomID: wantRoom}
	mustEvent(t, bob.Events, EventPrivateMessages)
	joined := mustEvent(t, alice.Events, EventPrivateJoined)
	if joined.From != "bob" || joined.RoomID != wantRoom {
		t.Fatalf("unexpected joined event: %+v", joined)
	}

	alice.Commands <- &Command{Kind: CommandPrivateMessage, RoomID: wantRoom, Body: "hi bob"}
	if ev := mustEvent(t, bob.Events, EventPrivateMessage); ev.Private.Body != "hi bob" {
		t.Fatalf("unexpected private message: %+v", ev.Private)
	}
	bob.Commands <- &Command{Kind: CommandPrivateMessage, RoomID: wantRoom, Body: "hi alice"}
	if ev := mustEvent(t, alice.Events, EventPrivateMessage); ev.Private.Author != "bob" {
		t.Fatalf("unexpected private message: %+v", ev.Private)
	}

	// Both sides see the identical, grown history.
	bob.Commands <- &Command{Kind: CommandJoinPrivateChat, RoomID: wantRoom}
	history := mustEvent(t, bob.Events, EventPrivateMessages).History
	if len(history) != 2 || history[0].Body != "hi bob" || history[1].Body != "hi alice" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestHubPrivateChatTargetOffline(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "alice")
	alice.Commands <- &Command{Kind: CommandStartPrivateChat, TargetUser: "carol"}

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeTargetUnavailable {
		t.Fatalf("expected target_unavailable error, got %+v", ev)
	}
	// No room materialized as a side effect.
	if members := hub.rooms.Members(PrivateRoomID("alice", "carol"), ""); len(members) != 0 {
		t.Fatalf("expected no room members, got %v", members)
	}
}

func TestHubUnauthenticatedCommandsDropped(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "alice")
	threadID := createThread(t, hub, alice, "General")
	alice.Commands <- &Command{Kind: CommandJoinThread, ThreadID: threadID}
	mustEvent(t, alice.Events, EventThreadMessages)
	drain(alice.Events)

	anon := NewClient("anon-conn", "")
	hub.RegisterClient(anon)
	anon.Commands <- &Command{Kind: CommandPublicMessage, ThreadID: threadID, Body: "sneaky"}

	// No append, no broadcast, no error.
	mustNoEvent(t, alice.Events, EventPublicMessage)
	mustNoEvent(t, anon.Events, EventError)

	alice.Commands <- &Command{Kind: CommandJoinThread, ThreadID: threadID}
	if ev := mustEvent(t, alice.Events, EventThreadMessages); len(ev.Messages) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(ev.Messages))
	}
}

func TestHubPresenceBroadcasts(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "alice")

	bob := NewClient("bob-conn", "bob")
	hub.RegisterClient(bob)

	// Everyone, not just room mates, sees bob appear.
	ev := mustEvent(t, alice.Events, EventUserList)
	if !contains(ev.Users, "bob") || !contains(ev.Users, "alice") {
		t.Fatalf("expected alice and bob online, got %v", ev.Users)
	}

	hub.UnregisterClient(bob)
	ev = mustEvent(t, alice.Events, EventUserList)
	if contains(ev.Users, "bob") {
		t.Fatalf("expected bob offline, got %v", ev.Users)
	}
}

func TestHubReconnectSupersedesConnection(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "alice")
	stale := connect(t, hub, "bob")
	mustEvent(t, alice.Events, EventUserList)
	fresh := connect(t, hub, "bob")
	mustEvent(t, alice.Events, EventUserList)

	// The stale handle going away must not mark bob offline.
	hub.UnregisterClient(stale)
	mustNoEvent(t, alice.Events, EventUserList)

	hub.UnregisterClient(fresh)
	ev := mustEvent(t, alice.Events, EventUserList)
	if contains(ev.Users, "bob") {
		t.Fatalf("expected bob offline after live handle left, got %v", ev.Users)
	}
}

func TestHubScreenShareRelay(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")
	roomID := PrivateRoomID("alice", "bob")
	alice.Commands <- &Command{Kind: CommandStartPrivateChat, TargetUser: "bob"}
	mustEvent(t, alice.Events, EventPrivateStarted)
	bob.Commands <- &Command{Kind: CommandJoinPrivateChat, RoomID: roomID}
	mustEvent(t, bob.Events, EventPrivateMessages)
	drain(alice.Events)
	drain(bob.Events)

	// Room-scoped relays exclude the sender.
	alice.Commands <- &Command{Kind: CommandScreenShareOffer, RoomID: roomID, Payload: []byte(`{"sdp":"offer"}`)}
	offer := mustEvent(t, bob.Events, EventScreenShareOffer)
	if offer.From != "alice" || string(offer.Payload) != `{"sdp":"offer"}` {
		t.Fatalf("unexpected offer relay: %+v", offer)
	}
	mustNoEvent(t, alice.Events, EventScreenShareOffer)

	// Answers go straight to the target identity.
	bob.Commands <- &Command{Kind: CommandScreenShareAnswer, RoomID: roomID, TargetUser: "alice", Payload: []byte(`{"sdp":"answer"}`)}
	answer := mustEvent(t, alice.Events, EventScreenShareAnswer)
	if string(answer.Payload) != `{"sdp":"answer"}` {
		t.Fatalf("unexpected answer relay: %+v", answer)
	}

	// An offline target drops the answer silently.
	bob.Commands <- &Command{Kind: CommandScreenShareAnswer, RoomID: roomID, TargetUser: "carol", Payload: []byte(`{}`)}
	mustNoEvent(t, bob.Events, EventError)

	alice.Commands <- &Command{Kind: CommandStopScreenShare, RoomID: roomID}
	stopped := mustEvent(t, bob.Events, EventScreenShareStopped)
	if stopped.From != "alice" || stopped.RoomID != roomID {
		t.Fatalf("unexpected stop relay: %+v", stopped)
	}
}

func TestHubFanoutRoomsScopesPresence(t *testing.T) {
	hub := startHubWithFanout(t, FanoutRooms)

	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")

	// No shared room yet: bob appearing does not refresh alice.
	mustNoEvent(t, alice.Events, EventUserList)

	roomID := PrivateRoomID("alice", "bob")
	alice.Commands <- &Command{Kind: CommandStartPrivateChat, TargetUser: "bob"}
	mustEvent(t, alice.Events, EventPrivateStarted)
	bob.Commands <- &Command{Kind: CommandJoinPrivateChat, RoomID: roomID}
	mustEvent(t, bob.Events, EventPrivateMessages)
	mustEvent(t, alice.Events, EventPrivateJoined)
	drain(alice.Events)

	// Now they share a room, so bob leaving reaches alice.
	hub.UnregisterClient(bob)
	ev := mustEvent(t, alice.Events, EventUserList)
	if contains(ev.Users, "bob") {
		t.Fatalf("expected bob offline, got %v", ev.Users)
	}
}

func TestHubFanoutRoomsScopesThreadRefreshes(t *testing.T) {
	hub := startHubWithFanout(t, FanoutRooms)

	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")
	drain(alice.Events)
	drain(bob.Events)

	// Creation is always global so new threads stay discoverable.
	threadID := createThread(t, hub, alice, "General")
	mustEvent(t, bob.Events, EventThreadList)
	drain(alice.Events)
	drain(bob.Events)

	// Joining and posting refresh members only.
	alice.Commands <- &Command{Kind: CommandJoinThread, ThreadID: threadID}
	mustEvent(t, alice.Events, EventThreadList)
	mustNoEvent(t, bob.Events, EventThreadList)

	alice.Commands <- &Command{Kind: CommandPublicMessage, ThreadID: threadID, Body: "hello"}
	mustEvent(t, alice.Events, EventPublicMessage)
	mustEvent(t, alice.Events, EventThreadList)
	mustNoEvent(t, bob.Events, EventThreadList)
	mustNoEvent(t, bob.Events, EventPublicMessage)
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
