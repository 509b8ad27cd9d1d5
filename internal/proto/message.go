package proto

import "encoding/json"

// Inbound is the envelope for frames coming from the client. Only the type
// discriminator and the user reference are decoded; send payloads stay
// opaque and are relayed as received.
type Inbound struct {
	Type string  `json:"type"`
	User UserRef `json:"user"`
}

// UserRef names the participant an inbound event refers to.
type UserRef struct {
	Name string `json:"name"`
}

const (
	InboundTypePing  = "ping"
	InboundTypeJoin  = "join"
	InboundTypeExit  = "exit"
	InboundTypeSend  = "send"
	InboundTypeClear = "clear"

	OutboundTypeHistory = "history"
)

// HistoryEvent carries the history log snapshot: sent once on connect, and
// again (empty) after a clear.
type HistoryEvent struct {
	Type string            `json:"type"`
	Data []json.RawMessage `json:"data"`
}

// PresenceUser is one element of the presence snapshot, which goes over the
// wire as a bare JSON array.
type PresenceUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
