package event

import (
	"time"

	"auction-chat/domain"
)

// MessageReceived covers both live pushes and history backfill entries;
// the room state merges them at most once by message id.
type MessageReceived struct {
	Message domain.Message
}

func (e MessageReceived) RoomID() domain.RoomID { return e.Message.Room }

// HistoryLoaded carries the REST backfill for a room, tagged with the
// room generation at fetch time so stale results can be discarded.
type HistoryLoaded struct {
	Room       domain.RoomID
	Generation uint64
	Messages   []domain.Message
	Active     bool
	Notice     string
}

func (e HistoryLoaded) RoomID() domain.RoomID { return e.Room }

type ParticipantsSnapshot struct {
	Room         domain.RoomID
	Participants []domain.Participant
}

func (e ParticipantsSnapshot) RoomID() domain.RoomID { return e.Room }

type ParticipantJoined struct {
	Room        domain.RoomID
	Participant domain.Participant
}

func (e ParticipantJoined) RoomID() domain.RoomID { return e.Room }

type ParticipantLeft struct {
	Room   domain.RoomID
	UserID string
}

func (e ParticipantLeft) RoomID() domain.RoomID { return e.Room }

type TypingChanged struct {
	Room   domain.RoomID
	UserID string
	Typing bool
	At     time.Time
}

func (e TypingChanged) RoomID() domain.RoomID { return e.Room }

type ChatDisabled struct {
	Room   domain.RoomID
	Reason string
}

func (e ChatDisabled) RoomID() domain.RoomID { return e.Room }

// AuctionEvent is a typed auction lifecycle notification pushed over the
// live channel (e.g. "auction-ended").
type AuctionEvent struct {
	Room domain.RoomID
	Type string
}

func (e AuctionEvent) RoomID() domain.RoomID { return e.Room }

type RoomJoined struct {
	Room domain.RoomID
}

func (e RoomJoined) RoomID() domain.RoomID { return e.Room }

type RoomLeft struct {
	Room domain.RoomID
}

func (e RoomLeft) RoomID() domain.RoomID { return e.Room }
