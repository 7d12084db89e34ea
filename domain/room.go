package domain

// RoomID identifies the chat channel scoped to one auction listing.
// It is the auction post id as assigned by the backend.
type RoomID string

// RoomStatus reflects whether composition is allowed in the room.
// A disabled room stays subscribed: system messages keep flowing.
type RoomStatus int

const (
	RoomActive RoomStatus = iota
	RoomDisabled
)

func (s RoomStatus) String() string {
	if s == RoomDisabled {
		return "disabled"
	}
	return "active"
}
