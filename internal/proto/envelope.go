package proto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrEnvelopeMalformed means the payload is not a JSON object of the expected shape.
	ErrEnvelopeMalformed = errors.New("malformed envelope")
	// ErrEnvelopeIncomplete means room or name is missing.
	ErrEnvelopeIncomplete = errors.New("envelope missing room or name")
)

// Envelope is a message published on the relay channel.
type Envelope struct {
	Room RoomName        `json:"room"`
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// ParseEnvelope decodes and validates a raw pub/sub payload.
// The returned error wraps ErrEnvelopeMalformed or ErrEnvelopeIncomplete.
func ParseEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrEnvelopeMalformed, err)
	}
	if err := env.Validate(); err != nil {
		return env, err
	}
	return env, nil
}

// Validate reports whether the envelope can be delivered.
func (e Envelope) Validate() error {
	if e.Room == "" || e.Name == "" {
		return ErrEnvelopeIncomplete
	}
	return nil
}

// RoomName accepts both JSON strings and numbers; producers historically
// published numeric room ids.
type RoomName string

// UnmarshalJSON implements json.Unmarshaler.
func (r *RoomName) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = RoomName(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("room must be a string or number: %w", err)
	}
	*r = RoomName(n.String())
	return nil
}

func (r RoomName) String() string {
	return string(r)
}
