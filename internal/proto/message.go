package proto

import "encoding/json"

// Inbound is the envelope for frames coming from a websocket client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeSubscribe   = "subscribe"
	InboundTypeUnsubscribe = "unsubscribe"

	OutboundTypeEvent = "event"
)

// RoomData is the payload of subscribe and unsubscribe frames.
type RoomData struct {
	Room RoomName `json:"room"`
}

// Outbound is the envelope for frames sent to a websocket client.
// Data is forwarded verbatim from the pub/sub envelope.
type Outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data"`
}
