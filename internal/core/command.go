package core

// CommandKind describes what an inbound event asks the hub to do.
type CommandKind int

const (
	// CommandPing refreshes the sender's last-seen timestamp.
	CommandPing CommandKind = iota
	// CommandJoin announces presence and binds the connection to a name.
	CommandJoin
	// CommandExit removes the named participant from the presence table.
	CommandExit
	// CommandSend appends a chat payload to history and relays it verbatim.
	CommandSend
	// CommandClear empties the history log.
	CommandClear
)

// Command represents an action requested over an open connection.
type Command struct {
	Kind CommandKind
	// Name is the participant display name for ping, join and exit.
	Name string
	// Frame is the raw inbound frame for send, relayed byte-for-byte.
	Frame Frame
}

// Frame is an opaque transport frame. Binary distinguishes binary from
// text framing so relays preserve it.
type Frame struct {
	Binary bool
	Data   []byte
}
