// Package projection builds local room state from observed events.
// Handles ordering, deduplication, and typing aggregation.
// Does not emit events or interact with the transport directly.
package projection

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"

	"auction-chat/domain"
	"auction-chat/domain/event"
)

// RoomState mirrors the server-authoritative view of the current room:
// a message sequence ordered history-first and merged at most once by
// id, a
// participant set unique by user id, and per-participant typing flags.
//
// The state is reset whenever the client leaves the room or the
// connection drops; the server offers no replay across reconnects.
type RoomState struct {
	mu           sync.RWMutex
	selfID       string
	room         domain.RoomID
	generation   uint64
	status       domain.RoomStatus
	notice       string
	messages     []domain.Message
	seen         map[string]struct{}
	participants []domain.Participant
	discarded    uint64
}

func NewRoomState(selfID string) *RoomState {
	return &RoomState{
		selfID: selfID,
		status: domain.RoomActive,
		seen:   make(map[string]struct{}),
	}
}

// EnterRoom switches the current room, clearing all prior room state and
// bumping the generation counter. The returned generation tags the
// history fetch issued for this entry so a late result for a room the
// client already left is discarded, never applied.
func (s *RoomState) EnterRoom(room domain.RoomID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.room = room
	s.generation++
	return s.generation
}

// LeaveRoom clears the current room id and all cached room state.
func (s *RoomState) LeaveRoom() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.room = ""
	s.generation++
}

func (s *RoomState) reset() {
	s.messages = nil
	s.participants = nil
	s.seen = make(map[string]struct{})
	s.status = domain.RoomActive
	s.notice = ""
}

// Consume applies one domain event to the local room state.
func (s *RoomState) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch evt := e.(type) {
	case event.MessageReceived:
		s.merge(evt.Message)

	case event.HistoryLoaded:
		if evt.Generation != s.generation || evt.Room != s.room {
			s.discarded++
			return nil
		}
		// History is the authoritative prefix of the sequence. Live
		// messages that raced ahead of the fetch are re-merged after
		// it, keeping only the ids history does not already carry.
		live := s.messages
		s.messages = nil
		s.seen = make(map[string]struct{})
		for _, msg := range evt.Messages {
			s.merge(msg)
		}
		for _, msg := range live {
			s.merge(msg)
		}
		if !evt.Active {
			s.status = domain.RoomDisabled
			s.notice = evt.Notice
		}

	case event.ParticipantsSnapshot:
		if evt.Room != s.room {
			return nil
		}
		s.participants = append([]domain.Participant(nil), evt.Participants...)

	case event.ParticipantJoined:
		s.upsert(evt.Participant)

	case event.ParticipantLeft:
		s.participants = lo.Filter(s.participants, func(p domain.Participant, _ int) bool {
			return p.UserID != evt.UserID
		})

	case event.TypingChanged:
		for i := range s.participants {
			if s.participants[i].UserID == evt.UserID {
				s.participants[i].Typing = evt.Typing
				s.participants[i].TypingSince = evt.At
			}
		}

	case event.ChatDisabled:
		s.status = domain.RoomDisabled
		s.notice = evt.Reason

	case event.AuctionEvent:
		if evt.Type == "auction-ended" {
			s.status = domain.RoomDisabled
			s.notice = "Auction has ended. Chat is now disabled."
		}

	case event.RoomLeft:
		// A leave for a room already superseded by a newer join must
		// not touch the state of the room the client is now in.
		if evt.Room != s.room {
			return nil
		}
		s.reset()
		s.room = ""

	case event.ConnStateChanged:
		if !evt.State.Live() {
			s.reset()
		}
	}
	return nil
}

// merge inserts a message at most once by id; an id already present
// leaves the sequence unchanged regardless of arrival order.
func (s *RoomState) merge(msg domain.Message) {
	if msg.Room != s.room {
		return
	}
	if _, ok := s.seen[msg.ID]; ok {
		return
	}
	s.seen[msg.ID] = struct{}{}
	s.messages = append(s.messages, msg)
}

func (s *RoomState) upsert(p domain.Participant) {
	for i := range s.participants {
		if s.participants[i].UserID == p.UserID {
			s.participants[i] = p
			return
		}
	}
	s.participants = append(s.participants, p)
}

// SweepStaleTyping clears typing flags not refreshed within the window.
// Defense against participants that vanish without a typing-stop or a
// user-left event.
func (s *RoomState) SweepStaleTyping(now time.Time, window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.participants {
		if s.participants[i].Typing && now.Sub(s.participants[i].TypingSince) > window {
			s.participants[i].Typing = false
		}
	}
}

// Room returns the current room id, empty when none is joined.
func (s *RoomState) Room() domain.RoomID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room
}

// Generation returns the current room generation.
func (s *RoomState) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Status reports whether composition is allowed in the current room.
func (s *RoomState) Status() domain.RoomStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Notice returns the server wording attached to a disabled room.
func (s *RoomState) Notice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notice
}

// Messages returns a copy of the ordered message sequence.
func (s *RoomState) Messages() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Message(nil), s.messages...)
}

// Participants returns a copy of the participant set.
func (s *RoomState) Participants() []domain.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Participant(nil), s.participants...)
}

// TypingUsernames returns the names to render in the typing aggregate.
// The local user never appears in it.
func (s *RoomState) TypingUsernames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	typing := lo.Filter(s.participants, func(p domain.Participant, _ int) bool {
		return p.Typing && p.UserID != s.selfID
	})
	return lo.Map(typing, func(p domain.Participant, _ int) string {
		return p.Username
	})
}

// Discarded counts stale async results dropped by the generation check.
func (s *RoomState) Discarded() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.discarded
}
