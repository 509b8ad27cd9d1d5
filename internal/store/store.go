package store

import (
	"context"
	"time"
)

// User is a registration journal entry: every successful name registration
// is recorded here, even after the participant exits or is evicted.
type User struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Message is a persisted chat event. Payload is the raw frame as received
// from the sender; the server never inspects its contents.
type Message struct {
	ID        int64
	Payload   []byte
	Binary    bool
	CreatedAt time.Time
}

// UserStore handles the registration journal.
type UserStore interface {
	// SaveUser records a successful registration.
	SaveUser(ctx context.Context, u *User) error

	// ListUsers returns all recorded registrations in insertion order.
	ListUsers(ctx context.Context) ([]*User, error)
}

// MessageStore handles chat history persistence.
type MessageStore interface {
	// SaveMessage appends a message to the history log.
	SaveMessage(ctx context.Context, m *Message) error

	// ListMessages returns the full history log in insertion order.
	ListMessages(ctx context.Context) ([]*Message, error)

	// ClearMessages empties the history log.
	ClearMessages(ctx context.Context) error
}

// Store combines all persistence interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close releases the underlying database handle.
	Close() error
}
