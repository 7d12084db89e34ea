package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"auction-chat/domain"
	"auction-chat/domain/event"
)

func TestNormalizeMessage_Flat_And_Nested_Payloads(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	stamp := now.Add(-time.Hour)

	tests := []struct {
		name     string
		payload  MessagePayload
		expected domain.Message
	}{
		{
			name: "Flat user fields",
			payload: MessagePayload{
				MongoID:   "m-1",
				PostID:    "auction-1",
				UserID:    "u-1",
				Username:  "Alice",
				Message:   "hello",
				Timestamp: stamp.Format(time.RFC3339),
			},
			expected: domain.Message{
				ID:       "m-1",
				Room:     "auction-1",
				AuthorID: "u-1",
				Author:   "Alice",
				Body:     "hello",
				At:       stamp,
				Kind:     domain.KindUser,
			},
		},
		{
			name: "Nested user document wins over flat fields",
			payload: MessagePayload{
				MongoID:  "m-2",
				PostID:   "auction-1",
				UserID:   "stale",
				Username: "stale",
				User:     &UserRef{MongoID: "u-2", Username: "Bob", ProfileImage: "bob.png"},
				Message:  "hi",
			},
			expected: domain.Message{
				ID:        "m-2",
				Room:      "auction-1",
				AuthorID:  "u-2",
				Author:    "Bob",
				AvatarRef: "bob.png",
				Body:      "hi",
				At:        now,
				Kind:      domain.KindUser,
			},
		},
		{
			name: "System type flag",
			payload: MessagePayload{
				ID:      "m-3",
				PostID:  "auction-1",
				Message: "auction extended",
				Type:    "system",
			},
			expected: domain.Message{
				ID:   "m-3",
				Room: "auction-1",
				Body: "auction extended",
				At:   now,
				Kind: domain.KindSystem,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeMessage(tt.payload, "auction-1", now)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeMessage_Generates_Id_When_Missing(t *testing.T) {
	now := time.Now().UTC()
	got := NormalizeMessage(MessagePayload{PostID: "auction-1", Message: "no id"}, "auction-1", now)
	require.NotEmpty(t, got.ID)
}

func TestNormalizeMessage_Falls_Back_To_Current_Room(t *testing.T) {
	now := time.Now().UTC()
	got := NormalizeMessage(MessagePayload{MongoID: "m-9", Message: "hi"}, "auction-7", now)
	require.Equal(t, domain.RoomID("auction-7"), got.Room)
}

func TestDecodeEvent(t *testing.T) {
	now := time.Now().UTC()
	room := domain.RoomID("auction-1")

	mustEnvelope := func(name EventName, payload any) Envelope {
		env, err := NewEnvelope(name, payload)
		require.NoError(t, err)
		return env
	}

	t.Run("Typing frame", func(t *testing.T) {
		env := mustEnvelope(EventUserTyping, TypingPayload{MongoID: "u-1", IsTyping: true})
		evt, err := DecodeEvent(env, room, now)
		require.NoError(t, err)
		typing, ok := evt.(event.TypingChanged)
		require.True(t, ok)
		require.Equal(t, "u-1", typing.UserID)
		require.True(t, typing.Typing)
	})

	t.Run("Chat disabled frame", func(t *testing.T) {
		env := mustEnvelope(EventChatDisabled, NoticePayload{Message: "Chat is disabled for this auction"})
		evt, err := DecodeEvent(env, room, now)
		require.NoError(t, err)
		disabled, ok := evt.(event.ChatDisabled)
		require.True(t, ok)
		require.Equal(t, "Chat is disabled for this auction", disabled.Reason)
	})

	t.Run("Unknown frame is ignored", func(t *testing.T) {
		evt, err := DecodeEvent(Envelope{Event: "connected", Data: json.RawMessage(`{"ok":true}`)}, room, now)
		require.NoError(t, err)
		require.Nil(t, evt)
	})

	t.Run("Malformed payload", func(t *testing.T) {
		_, err := DecodeEvent(Envelope{Event: EventNewMessage, Data: json.RawMessage(`{`)}, room, now)
		require.Error(t, err)
	})
}
