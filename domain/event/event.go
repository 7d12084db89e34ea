package event

import (
	"auction-chat/domain"
)

// DomainEvent is anything the dispatch loop applies to local state and
// fans out to sinks. Connection-scoped events report an empty RoomID.
type DomainEvent interface {
	RoomID() domain.RoomID
}
