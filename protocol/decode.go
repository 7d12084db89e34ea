package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"auction-chat/domain"
	"auction-chat/domain/event"
)

// DecodeEvent normalizes a server frame into a domain event. The room
// argument is the client's current room; the backend omits postId on
// several event kinds and sole-room context fills the gap.
// A nil event with a nil error means the frame carries nothing the
// client state cares about.
func DecodeEvent(env Envelope, room domain.RoomID, now time.Time) (event.DomainEvent, error) {
	switch env.Event {
	case EventNewMessage:
		var p MessagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("new-message payload: %w", err)
		}
		return event.MessageReceived{Message: NormalizeMessage(p, room, now)}, nil

	case EventRoomParticipants:
		var p RoomParticipantsPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("room-participants payload: %w", err)
		}
		target := room
		if p.PostID != "" {
			target = domain.RoomID(p.PostID)
		}
		participants := make([]domain.Participant, 0, len(p.Participants))
		for _, pp := range p.Participants {
			participants = append(participants, toParticipant(pp, now))
		}
		return event.ParticipantsSnapshot{Room: target, Participants: participants}, nil

	case EventUserJoined:
		var p ParticipantPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("user-joined payload: %w", err)
		}
		joined := toParticipant(p, now)
		joined.Typing = false
		return event.ParticipantJoined{Room: room, Participant: joined}, nil

	case EventUserLeft:
		var p ParticipantPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("user-left payload: %w", err)
		}
		return event.ParticipantLeft{Room: room, UserID: p.ResolveUserID()}, nil

	case EventUserTyping:
		var p TypingPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("user-typing payload: %w", err)
		}
		return event.TypingChanged{
			Room:   room,
			UserID: p.ResolveUserID(),
			Typing: p.IsTyping,
			At:     now,
		}, nil

	case EventChatDisabled:
		var p NoticePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("chat-disabled payload: %w", err)
		}
		return event.ChatDisabled{Room: room, Reason: p.Message}, nil

	case EventAuctionEvent:
		var p AuctionEventPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("auction-event payload: %w", err)
		}
		return event.AuctionEvent{Room: room, Type: p.Type}, nil

	case EventSystemMessage:
		var p NoticePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("system-message payload: %w", err)
		}
		return event.MessageReceived{
			Message: domain.NewSystemMessage(room, p.Message, parseTimestamp(p.Timestamp, now)),
		}, nil

	case EventError:
		var p ErrorPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("error payload: %w", err)
		}
		return event.ErrorReceived{Room: room, Message: p.Message}, nil
	}

	return nil, nil
}

// NormalizeMessage maps a wire payload onto the common Message shape.
// Both history entries and live pushes go through it, which is what
// makes the id-based merge safe regardless of arrival order.
func NormalizeMessage(p MessagePayload, room domain.RoomID, now time.Time) domain.Message {
	target := room
	if p.PostID != "" {
		target = domain.RoomID(p.PostID)
	}
	kind := domain.KindUser
	if p.Type == string(domain.KindSystem) {
		kind = domain.KindSystem
	}
	msg := domain.Message{
		ID:        p.ResolveID(),
		Room:      target,
		AuthorID:  p.ResolveUserID(),
		Author:    p.ResolveUsername(),
		AvatarRef: p.ResolveProfileImage(),
		Body:      p.Message,
		At:        parseTimestamp(p.Timestamp, now),
		Kind:      kind,
	}
	return msg.EnsureID()
}

func toParticipant(p ParticipantPayload, now time.Time) domain.Participant {
	participant := domain.Participant{
		UserID:    p.ResolveUserID(),
		Username:  p.Username,
		AvatarRef: p.ProfileImage,
		Typing:    p.IsTyping,
	}
	if p.IsTyping {
		participant.TypingSince = now
	}
	return participant
}

func parseTimestamp(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fallback
	}
	return at
}
