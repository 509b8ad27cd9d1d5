package core

import "errors"

var (
	// ErrNameTaken is returned when registering a name that is already held
	// by a current participant.
	ErrNameTaken = errors.New("name already taken")
	// ErrEmptyName is returned when registering an empty name.
	ErrEmptyName = errors.New("name is required")
	// ErrHubStopped is returned for calls made after the hub has shut down.
	ErrHubStopped = errors.New("hub stopped")
)
