package core

import (
	"context"
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, name string) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Name == name {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event %q not received", name)
	return nil
}

func expectNoEvent(t *testing.T, ch <-chan *Event, wait time.Duration) {
	t.Helper()

	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(wait):
	}
}

// waitRoomSize polls hub stats until room has n members (0 means the room is gone).
func waitRoomSize(t *testing.T, hub *Hub, room string, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		stats, err := hub.Stats(context.Background())
		if err != nil {
			t.Fatalf("stats: %v", err)
		}
		if stats.Rooms[room] == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %q never reached %d members", room, n)
}

func startHub(t *testing.T, opts ...Option) (*Hub, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	hub := NewHub(opts...)
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func mustRegister(t *testing.T, hub *Hub, id string, buffer int) *Client {
	t.Helper()

	c := NewClient(id, buffer)
	if err := hub.RegisterClient(c); err != nil {
		t.Fatalf("register %s: %v", id, err)
	}
	return c
}
