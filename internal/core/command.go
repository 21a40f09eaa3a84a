package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandSubscribe adds the client to a room.
	CommandSubscribe CommandKind = iota
	// CommandUnsubscribe removes the client from a room.
	CommandUnsubscribe
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	Room string
}

type clientCommand struct {
	client *Client
	cmd    *Command
}
