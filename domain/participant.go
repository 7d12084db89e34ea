// Package domain contains core concepts of the auction chat client.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Participant is a user currently subscribed to a room's live events.
// Typing is the only mutable field; TypingSince tracks when the flag was
// last refreshed so stale flags can be swept if the server never pairs
// a typing-stop with the start.
type Participant struct {
	UserID      string
	Username    string
	AvatarRef   string
	Typing      bool
	TypingSince time.Time
}
