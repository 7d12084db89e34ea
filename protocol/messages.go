// Package protocol defines the JSON envelopes exchanged with the chat
// server over the live channel. Event names follow the backend's wiring.
package protocol

import (
	"encoding/json"
)

// EventName identifies the type of a live-channel frame.
type EventName string

const (
	// Client -> Server
	EventJoinAuction  EventName = "join-auction"
	EventLeaveAuction EventName = "leave-auction"
	EventSendMessage  EventName = "send-message"
	EventTypingStart  EventName = "typing-start"
	EventTypingStop   EventName = "typing-stop"
	EventAuth         EventName = "auth"

	// Server -> Client
	EventConnected        EventName = "connected"
	EventNewMessage       EventName = "new-message"
	EventRoomParticipants EventName = "room-participants"
	EventUserJoined       EventName = "user-joined"
	EventUserLeft         EventName = "user-left"
	EventUserTyping       EventName = "user-typing"
	EventChatDisabled     EventName = "chat-disabled"
	EventAuctionEvent     EventName = "auction-event"
	EventSystemMessage    EventName = "system-message"
	EventError            EventName = "error"
)

// Envelope wraps all live-channel frames with an event name.
type Envelope struct {
	Event EventName       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// AuthPayload is sent by the client inside the handshake.
type AuthPayload struct {
	Token string `json:"token"`
}

// RoomIntent is the payload of join/leave/typing intents.
type RoomIntent struct {
	PostID string `json:"postId"`
}

// SendMessagePayload is sent by the client to post a message.
type SendMessagePayload struct {
	PostID  string `json:"postId"`
	Message string `json:"message"`
}

// UserRef mirrors the backend's populated user sub-document. The backend
// is inconsistent about nesting, so both shapes are accepted downstream.
type UserRef struct {
	MongoID      string `json:"_id,omitempty"`
	Username     string `json:"username,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// MessagePayload is pushed by the server for each new message. The id and
// author fields may arrive flat or nested under User.
type MessagePayload struct {
	MongoID      string   `json:"_id,omitempty"`
	ID           string   `json:"id,omitempty"`
	PostID       string   `json:"postId"`
	UserID       string   `json:"userId,omitempty"`
	Username     string   `json:"username,omitempty"`
	ProfileImage string   `json:"profileImage,omitempty"`
	User         *UserRef `json:"user,omitempty"`
	Message      string   `json:"message"`
	Timestamp    string   `json:"timestamp,omitempty"`
	Type         string   `json:"type,omitempty"`
}

// ParticipantPayload describes one room participant.
type ParticipantPayload struct {
	UserID       string `json:"userId,omitempty"`
	MongoID      string `json:"_id,omitempty"`
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage,omitempty"`
	IsTyping     bool   `json:"isTyping,omitempty"`
}

// RoomParticipantsPayload lists the current members of a room.
type RoomParticipantsPayload struct {
	PostID       string               `json:"postId,omitempty"`
	Participants []ParticipantPayload `json:"participants"`
}

// TypingPayload toggles the typing flag of one participant.
type TypingPayload struct {
	UserID   string `json:"userId,omitempty"`
	MongoID  string `json:"_id,omitempty"`
	IsTyping bool   `json:"isTyping"`
}

// NoticePayload carries chat-disabled and system-message texts.
type NoticePayload struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

// AuctionEventPayload is a typed auction lifecycle notification.
type AuctionEventPayload struct {
	Type string `json:"type"`
}

// ErrorPayload is a generic application-level error frame.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewEnvelope creates an envelope with the given event name and payload.
func NewEnvelope(name EventName, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: name, Data: raw}, nil
}

// ParseEnvelope decodes a raw frame.
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(data, &env)
	return env, err
}

// ResolveUserID returns the first non-empty id among the flat and nested
// placements used by the backend.
func (p MessagePayload) ResolveUserID() string {
	if p.User != nil && p.User.MongoID != "" {
		return p.User.MongoID
	}
	return p.UserID
}

// ResolveUsername prefers the nested user sub-document.
func (p MessagePayload) ResolveUsername() string {
	if p.User != nil && p.User.Username != "" {
		return p.User.Username
	}
	return p.Username
}

// ResolveProfileImage prefers the nested user sub-document.
func (p MessagePayload) ResolveProfileImage() string {
	if p.User != nil && p.User.ProfileImage != "" {
		return p.User.ProfileImage
	}
	return p.ProfileImage
}

// ResolveID prefers the Mongo id over an explicit one.
func (p MessagePayload) ResolveID() string {
	if p.MongoID != "" {
		return p.MongoID
	}
	return p.ID
}

// ResolveUserID handles both flat and Mongo-style participant ids.
func (p ParticipantPayload) ResolveUserID() string {
	if p.UserID != "" {
		return p.UserID
	}
	return p.MongoID
}

// ResolveUserID handles both flat and Mongo-style typing ids.
func (p TypingPayload) ResolveUserID() string {
	if p.UserID != "" {
		return p.UserID
	}
	return p.MongoID
}
