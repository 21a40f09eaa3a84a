package core

import (
	"context"

	"github.com/rs/zerolog"
)

// Observer receives hub activity notifications. Calls happen on the hub
// goroutine and must not block.
type Observer interface {
	ClientRegistered()
	ClientUnregistered()
	RoomsActive(n int)
	EventDelivered(delivered, dropped int)
}

type nopObserver struct{}

func (nopObserver) ClientRegistered()       {}
func (nopObserver) ClientUnregistered()     {}
func (nopObserver) RoomsActive(int)         {}
func (nopObserver) EventDelivered(int, int) {}

// Option configures a Hub.
type Option func(*Hub)

// WithObserver reports hub activity to o.
func WithObserver(o Observer) Option {
	return func(h *Hub) {
		if o != nil {
			h.observer = o
		}
	}
}

// WithLogger sets the hub logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.log = logger
		}
	}
}

// Hub owns room membership. All state is confined to the Run goroutine;
// other goroutines talk to it through channels.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
	deliveries chan Delivery
	stats      chan chan Stats
	done       chan struct{}

	clients map[*Client]struct{}
	rooms   map[string]*Room

	observer Observer
	log      *zerolog.Logger
}

// NewHub creates a new hub. Call Run exactly once to start it.
func NewHub(opts ...Option) *Hub {
	nop := zerolog.Nop()
	h := &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand, 64),
		deliveries: make(chan Delivery, 256),
		stats:      make(chan chan Stats),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]*Room),
		observer:   nopObserver{},
		log:        &nop,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run processes hub traffic until ctx is cancelled. On exit every client is
// unregistered and its Events channel closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.removeClient(c)
			}
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case cc := <-h.commands:
			h.handleCommand(cc.client, cc.cmd)
		case d := <-h.deliveries:
			h.deliver(d)
		case reply := <-h.stats:
			reply <- h.snapshot()
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// RegisterClient adds a client with no room memberships.
func (h *Hub) RegisterClient(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// UnregisterClient removes the client from every room and closes its Events
// channel. Unknown or already removed clients are ignored.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Deliver queues an event for every client currently in d.Room.
func (h *Hub) Deliver(d Delivery) error {
	if d.Room == "" || d.Name == "" {
		return ErrIncompleteDelivery
	}
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}
	select {
	case h.deliveries <- d:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Stats returns a membership snapshot.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case h.stats <- reply:
	case <-h.done:
		return Stats{}, ErrHubStopped
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

func (h *Hub) addClient(c *Client) {
	if _, exists := h.clients[c]; exists {
		return
	}
	h.clients[c] = struct{}{}
	h.observer.ClientRegistered()
	go h.forward(c)
}

// forward feeds the client's commands into the hub loop until the client
// is unregistered or the hub stops.
func (h *Hub) forward(c *Client) {
	for {
		select {
		case cmd := <-c.Commands:
			if cmd == nil {
				continue
			}
			select {
			case h.commands <- clientCommand{client: c, cmd: cmd}:
			case <-c.done:
				return
			case <-h.done:
				return
			}
		case <-c.done:
			return
		case <-h.done:
			return
		}
	}
}

func (h *Hub) removeClient(c *Client) {
	if _, exists := h.clients[c]; !exists {
		return
	}
	for name := range c.Rooms {
		h.leave(c, name)
	}
	delete(h.clients, c)
	close(c.done)
	close(c.Events)

	h.observer.ClientUnregistered()
	h.observer.RoomsActive(len(h.rooms))
}

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	// Commands can still be in flight after the client was removed.
	if _, exists := h.clients[c]; !exists {
		return
	}

	switch cmd.Kind {
	case CommandSubscribe:
		if cmd.Room == "" {
			return
		}
		room, ok := h.rooms[cmd.Room]
		if !ok {
			room = NewRoom(cmd.Room)
			h.rooms[cmd.Room] = room
			h.observer.RoomsActive(len(h.rooms))
		}
		if room.AddClient(c) {
			c.Rooms[cmd.Room] = struct{}{}
			h.log.Debug().Str("client_id", c.ID).Str("room", cmd.Room).Msg("client subscribed")
		}
	case CommandUnsubscribe:
		if cmd.Room == "" {
			return
		}
		if h.leave(c, cmd.Room) {
			h.log.Debug().Str("client_id", c.ID).Str("room", cmd.Room).Msg("client unsubscribed")
			h.observer.RoomsActive(len(h.rooms))
		}
	}
}

// leave removes c from the named room and drops the room once empty.
func (h *Hub) leave(c *Client, name string) bool {
	delete(c.Rooms, name)
	room, ok := h.rooms[name]
	if !ok {
		return false
	}
	removed := room.RemoveClient(c)
	if room.Empty() {
		delete(h.rooms, name)
	}
	return removed
}

func (h *Hub) deliver(d Delivery) {
	room, ok := h.rooms[d.Room]
	if !ok {
		h.observer.EventDelivered(0, 0)
		return
	}

	delivered, dropped := room.Broadcast(&Event{Room: d.Room, Name: d.Name, Data: d.Data})
	if dropped > 0 {
		h.log.Warn().Str("room", d.Room).Str("event", d.Name).Int("dropped", dropped).Msg("slow clients skipped")
	}
	h.observer.EventDelivered(delivered, dropped)
}

func (h *Hub) snapshot() Stats {
	rooms := make(map[string]int, len(h.rooms))
	for name, room := range h.rooms {
		rooms[name] = room.Size()
	}
	return Stats{Clients: len(h.clients), Rooms: rooms}
}
