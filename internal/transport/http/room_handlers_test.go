package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vovakirdan/pushrelay/internal/core"
	"github.com/vovakirdan/pushrelay/internal/metrics"
)

func TestListRooms(t *testing.T) {
	ts, hub := startTestServer(t, testConfig(), nil)

	clients := map[string][]string{
		"a": {"zeta", "alpha"},
		"b": {"alpha"},
		"c": nil,
	}
	for id, rooms := range clients {
		c := core.NewClient(id, 0)
		if err := hub.RegisterClient(c); err != nil {
			t.Fatalf("register: %v", err)
		}
		for _, room := range rooms {
			c.Commands <- &core.Command{Kind: core.CommandSubscribe, Room: room}
		}
	}
	waitStats(t, hub, "memberships applied", func(s core.Stats) bool {
		return s.Clients == 3 && s.Rooms["alpha"] == 2 && s.Rooms["zeta"] == 1
	})

	resp, err := ts.Client().Get(ts.URL + "/api/rooms")
	if err != nil {
		t.Fatalf("GET /api/rooms: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body RoomsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := []RoomResponse{{Name: "alpha", Members: 2}, {Name: "zeta", Members: 1}}
	if body.Clients != 3 {
		t.Fatalf("clients = %d, want 3", body.Clients)
	}
	if len(body.Rooms) != len(want) {
		t.Fatalf("rooms = %+v, want %+v", body.Rooms, want)
	}
	for i := range want {
		if body.Rooms[i] != want[i] {
			t.Fatalf("rooms[%d] = %+v, want %+v", i, body.Rooms[i], want[i])
		}
	}
}

func TestListRoomsEmpty(t *testing.T) {
	ts, _ := startTestServer(t, testConfig(), nil)

	resp, err := ts.Client().Get(ts.URL + "/api/rooms")
	if err != nil {
		t.Fatalf("GET /api/rooms: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if got := strings.TrimSpace(string(raw)); got != `{"clients":0,"rooms":[]}` {
		t.Fatalf("body = %s", got)
	}
}

func TestListRoomsHubStopped(t *testing.T) {
	hub := core.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	ts := serveHub(t, hub, testConfig(), nil)
	resp, err := ts.Client().Get(ts.URL + "/api/rooms")
	if err != nil {
		t.Fatalf("GET /api/rooms: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewRelay(reg)
	ts, hub := startTestServer(t, testConfig(), reg, core.WithObserver(m))

	c := core.NewClient("metrics", 0)
	if err := hub.RegisterClient(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	waitStats(t, hub, "client registered", func(s core.Stats) bool { return s.Clients == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/metrics", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(raw), "pushrelay_clients_connected 1") {
		t.Fatalf("metrics output missing clients gauge:\n%s", raw)
	}
}

func TestMetricsEndpointDisabled(t *testing.T) {
	ts, _ := startTestServer(t, testConfig(), nil)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
