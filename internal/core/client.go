package core

// Client is one open output channel as seen by the core layer. The transport
// drains Events and writes each one to the underlying connection.
type Client struct {
	ID     string
	Events chan *Event

	// identity is the participant name bound at join time, used to resolve
	// the owner of a closing connection without scanning the presence table.
	// Only the hub goroutine touches it.
	identity string
}

// NewClient constructs a client with an event buffer of the given size.
// A client that stops draining Events loses broadcasts once the buffer
// fills; it never blocks the hub.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 64
	}
	return &Client{
		ID:     id,
		Events: make(chan *Event, buffer),
	}
}
