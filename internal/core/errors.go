package core

import "errors"

var (
	// ErrHubStopped is returned when the hub's Run loop has exited.
	ErrHubStopped = errors.New("hub stopped")
	// ErrIncompleteDelivery is returned for deliveries without a room or event name.
	ErrIncompleteDelivery = errors.New("delivery requires room and name")
)
