package event

import (
	"auction-chat/domain"
)

// ConnStateChanged is emitted on every connection lifecycle transition.
// Reason carries the raw server wording on disconnects and failures;
// classification happens in the errors package, not here.
type ConnStateChanged struct {
	State  domain.ConnState
	Reason string
}

func (e ConnStateChanged) RoomID() domain.RoomID { return "" }

// ErrorReceived is a generic application-level error pushed by the server.
type ErrorReceived struct {
	Room    domain.RoomID
	Message string
}

func (e ErrorReceived) RoomID() domain.RoomID { return e.Room }
