package http

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vovakirdan/pushrelay/internal/core"
	"github.com/vovakirdan/pushrelay/internal/proto"
)

var (
	errRoomRequired = errors.New("room is required")
	errUnknownType  = errors.New("unknown message type")
)

// inboundToCommand decodes a client frame. Every error means the frame is ignored.
func inboundToCommand(raw []byte) (*core.Command, error) {
	var inbound proto.Inbound
	if err := json.Unmarshal(raw, &inbound); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	var kind core.CommandKind
	switch inbound.Type {
	case proto.InboundTypeSubscribe:
		kind = core.CommandSubscribe
	case proto.InboundTypeUnsubscribe:
		kind = core.CommandUnsubscribe
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownType, inbound.Type)
	}

	var data proto.RoomData
	if len(inbound.Data) > 0 {
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", inbound.Type, err)
		}
	}
	if data.Room == "" {
		return nil, errRoomRequired
	}

	return &core.Command{Kind: kind, Room: data.Room.String()}, nil
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	return proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: event.Name,
		Data:  json.RawMessage(event.Data),
	}
}
