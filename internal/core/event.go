package core

import "encoding/json"

// EventKind is a notification the hub emits to clients.
type EventKind int

const (
	// EventHistory delivers the history log snapshot: once on connect,
	// and again (empty) after a clear.
	EventHistory EventKind = iota
	// EventPresence delivers the full presence snapshot after every join,
	// exit, disconnect and eviction sweep.
	EventPresence
	// EventRelay forwards a chat frame exactly as the sender framed it.
	EventRelay
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind EventKind

	// Messages holds raw chat payloads for EventHistory.
	Messages []json.RawMessage

	// Participants holds the presence snapshot for EventPresence.
	Participants []Participant

	// Frame holds the relayed payload for EventRelay.
	Frame Frame
}

// Participant is a registered, currently-present chat identity.
type Participant struct {
	ID   string
	Name string
}
