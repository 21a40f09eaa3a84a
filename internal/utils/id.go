package utils

import "github.com/google/uuid"

// NewID returns a random identifier for a websocket client.
func NewID() string {
	return uuid.NewString()
}
