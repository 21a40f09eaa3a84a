package proto

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantErr  error
		wantRoom RoomName
		wantName string
		wantData string
	}{
		{
			name:     "complete",
			raw:      `{"room":"lobby","name":"chat","data":"hi"}`,
			wantRoom: "lobby",
			wantName: "chat",
			wantData: `"hi"`,
		},
		{
			name:     "numeric room",
			raw:      `{"room":42,"name":"joined","data":{"name":"bob"}}`,
			wantRoom: "42",
			wantName: "joined",
			wantData: `{"name":"bob"}`,
		},
		{
			name:     "data absent",
			raw:      `{"room":"lobby","name":"ping"}`,
			wantRoom: "lobby",
			wantName: "ping",
		},
		{name: "missing room", raw: `{"name":"chat","data":1}`, wantErr: ErrEnvelopeIncomplete},
		{name: "empty room", raw: `{"room":"","name":"chat"}`, wantErr: ErrEnvelopeIncomplete},
		{name: "missing name", raw: `{"room":"lobby","data":1}`, wantErr: ErrEnvelopeIncomplete},
		{name: "null object", raw: `null`, wantErr: ErrEnvelopeIncomplete},
		{name: "not json", raw: `hello`, wantErr: ErrEnvelopeMalformed},
		{name: "array", raw: `[1,2]`, wantErr: ErrEnvelopeMalformed},
		{name: "bool room", raw: `{"room":true,"name":"chat"}`, wantErr: ErrEnvelopeMalformed},
		{name: "numeric name", raw: `{"room":"lobby","name":5}`, wantErr: ErrEnvelopeMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := ParseEnvelope([]byte(tt.raw))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if env.Room != tt.wantRoom || env.Name != tt.wantName {
				t.Fatalf("got room=%q name=%q", env.Room, env.Name)
			}
			if string(env.Data) != tt.wantData {
				t.Fatalf("data = %s, want %s", env.Data, tt.wantData)
			}
		})
	}
}

func TestOutboundNullData(t *testing.T) {
	raw, err := json.Marshal(Outbound{Type: OutboundTypeEvent, Event: "ping"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(raw); got != `{"type":"event","event":"ping","data":null}` {
		t.Fatalf("unexpected outbound: %s", got)
	}
}
