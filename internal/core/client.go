package core

// DefaultClientBuffer is the outbound queue length used when none is given.
const DefaultClientBuffer = 64

// Client is a websocket connection as seen by the core layer.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	// Rooms is owned by the hub goroutine once the client is registered.
	Rooms map[string]struct{}

	done chan struct{}
}

// NewClient constructs a client with initialized channels.
// buffer sets the Events capacity; non-positive values use DefaultClientBuffer.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultClientBuffer
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, buffer),
		Rooms:    make(map[string]struct{}),
		done:     make(chan struct{}),
	}
}

// Done is closed once the hub has unregistered the client.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
