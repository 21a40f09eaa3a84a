package core

// Event is a named payload pushed to every member of a room.
// Data is shared between recipients and must not be modified.
type Event struct {
	Room string
	Name string
	Data []byte
}

// Delivery asks the hub to emit Name with Data to the members of Room.
type Delivery struct {
	Room string
	Name string
	Data []byte
}

// Stats is a point-in-time snapshot of hub membership.
type Stats struct {
	Clients int
	Rooms   map[string]int
}
