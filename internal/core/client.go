package core

// eventBuffer sizes the per-client event channel. Joins replay history and
// every presence change fans out a full user list, so this is roomier than
// a plain message queue would need.
const eventBuffer = 32

// Client is a connected participant as seen by the core layer.
// Identity is the authenticated user handle bound at the transport
// handshake; ID identifies the connection itself.
type Client struct {
	ID       string
	Identity string
	Commands chan *Command
	Events   chan *Event
}

// NewClient constructs a client with initialized channels.
func NewClient(id, identity string) *Client {
	return &Client{
		ID:       id,
		Identity: identity,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, eventBuffer),
	}
}

// send delivers an event without blocking. Slow or stale consumers drop;
// there is no retry and no backlog beyond room history.
func (c *Client) send(ev *Event) {
	select {
	case c.Events <- ev:
	default:
	}
}
