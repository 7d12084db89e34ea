// Package domain contains core concepts of the auction chat client.
// This file defines Message events and related rules.
// Messages are immutable and deduplicated by ID when merged into a room.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageKind string

const (
	KindUser   MessageKind = "user"
	KindSystem MessageKind = "system"
)

// Message represents an immutable chat event as rendered by the client.
// The ID is the server-assigned identifier; payloads arriving without one
// get a client-generated UUID so the merge rule stays total.
type Message struct {
	ID        string
	Room      RoomID
	AuthorID  string
	Author    string
	AvatarRef string
	Body      string
	At        time.Time
	Kind      MessageKind
}

// NewSystemMessage builds a system message pushed over the live channel.
func NewSystemMessage(room RoomID, body string, at time.Time) Message {
	return Message{
		ID:       uuid.NewString(),
		Room:     room,
		AuthorID: "system",
		Author:   "System",
		Body:     body,
		At:       at,
		Kind:     KindSystem,
	}
}

// EnsureID fills a missing identifier with a client-generated UUID.
func (m Message) EnsureID() Message {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return m
}
