package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/pushrelay/internal/config"
	"github.com/vovakirdan/pushrelay/internal/proto"
	"github.com/vovakirdan/pushrelay/internal/pubsub"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8001/ws", "WebSocket address")
	room := flag.String("room", "lobby", "room to subscribe to")
	redisAddr := flag.String("redis", "", "redis address; when set, publish test events until one arrives")
	channel := flag.String("channel", "push", "pub/sub channel")
	event := flag.String("event", "chat", "event name to publish")
	data := flag.String("data", `"hello from smoke test"`, "JSON payload to publish")
	count := flag.Int("count", 1, "number of events to print before exiting")
	timeout := flag.Duration("timeout", 10*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	roomPayload, err := json.Marshal(proto.RoomData{Room: proto.RoomName(*room)})
	if err != nil {
		return fmt.Errorf("marshal subscribe: %w", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeSubscribe, Data: roomPayload}); err != nil {
		return fmt.Errorf("send subscribe: %w", err)
	}
	fmt.Printf("Subscribed to room %q\n", *room)

	received := make(chan struct{})
	if *redisAddr != "" {
		go publishUntil(ctx, received, config.RedisConfig{Addr: *redisAddr}, *channel, proto.Envelope{
			Room: proto.RoomName(*room),
			Name: *event,
			Data: json.RawMessage(*data),
		})
	}

	for seen := 0; seen < *count; seen++ {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if seen == 0 {
			close(received)
		}
		fmt.Printf("Received: type=%s event=%s data=%s\n", outbound.Type, outbound.Event, string(outbound.Data))
	}
	return nil
}

// publishUntil republishes env until the first event arrives, since the
// subscribe frame is processed asynchronously.
func publishUntil(ctx context.Context, received <-chan struct{}, cfg config.RedisConfig, channel string, env proto.Envelope) {
	client := pubsub.NewRedisClient(cfg)
	defer client.Close()
	publisher := pubsub.NewRedisPublisher(client)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		if _, err := publisher.Publish(ctx, channel, env); err != nil {
			log.Printf("ws_smoke: publish: %v", err)
		}
		select {
		case <-received:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
