package projection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"auction-chat/domain"
	"auction-chat/domain/event"
)

func message(id string, room domain.RoomID, author string) domain.Message {
	return domain.Message{
		ID:       id,
		Room:     room,
		AuthorID: author,
		Author:   author,
		Body:     "hello",
		At:       time.Now(),
		Kind:     domain.KindUser,
	}
}

func TestRoomState_MergeIsIdempotent(t *testing.T) {
	state := NewRoomState("me")
	state.EnterRoom("post-1")
	ctx := context.Background()

	msg := message("m1", "post-1", "alice")
	require.NoError(t, state.Consume(ctx, event.MessageReceived{Message: msg}))
	require.NoError(t, state.Consume(ctx, event.MessageReceived{Message: msg}))

	require.Len(t, state.Messages(), 1)
}

func TestRoomState_JoinRace_NoDuplicateAcrossHistoryAndLive(t *testing.T) {
	state := NewRoomState("me")
	generation := state.EnterRoom("post-42")
	ctx := context.Background()

	// Live push for m2 lands before the history fetch resolves.
	require.NoError(t, state.Consume(ctx, event.MessageReceived{
		Message: message("m2", "post-42", "bob"),
	}))
	require.NoError(t, state.Consume(ctx, event.HistoryLoaded{
		Room:       "post-42",
		Generation: generation,
		Messages: []domain.Message{
			message("m1", "post-42", "alice"),
			message("m2", "post-42", "bob"),
		},
		Active: true,
	}))

	// History is the authoritative prefix: [m1, m2], m2 not duplicated.
	messages := state.Messages()
	require.Len(t, messages, 2)
	require.Equal(t, "m1", messages[0].ID)
	require.Equal(t, "m2", messages[1].ID)
}

func TestRoomState_HistoryOrdersBeforeRacedLiveMessages(t *testing.T) {
	state := NewRoomState("me")
	generation := state.EnterRoom("post-42")
	ctx := context.Background()

	// m3 is live-only and raced ahead of the fetch; it must end up
	// after the history prefix, not before it.
	require.NoError(t, state.Consume(ctx, event.MessageReceived{
		Message: message("m3", "post-42", "carol"),
	}))
	require.NoError(t, state.Consume(ctx, event.HistoryLoaded{
		Room:       "post-42",
		Generation: generation,
		Messages: []domain.Message{
			message("m1", "post-42", "alice"),
			message("m2", "post-42", "bob"),
		},
		Active: true,
	}))

	messages := state.Messages()
	require.Len(t, messages, 3)
	require.Equal(t, []string{"m1", "m2", "m3"}, []string{
		messages[0].ID, messages[1].ID, messages[2].ID,
	})
}

func TestRoomState_LeaveForSupersededRoomKeepsNewRoom(t *testing.T) {
	state := NewRoomState("me")
	state.EnterRoom("post-1")
	state.EnterRoom("post-2")
	ctx := context.Background()

	// The leave for post-1 trails the join of post-2 through the
	// dispatch queue; it must not clear the room just entered.
	require.NoError(t, state.Consume(ctx, event.RoomLeft{Room: "post-1"}))
	require.Equal(t, domain.RoomID("post-2"), state.Room())

	require.NoError(t, state.Consume(ctx, event.MessageReceived{
		Message: message("m1", "post-2", "alice"),
	}))
	require.Len(t, state.Messages(), 1)

	// A leave for the room actually occupied still clears everything.
	require.NoError(t, state.Consume(ctx, event.RoomLeft{Room: "post-2"}))
	require.Equal(t, domain.RoomID(""), state.Room())
	require.Empty(t, state.Messages())
}

func TestRoomState_StaleHistoryDiscarded(t *testing.T) {
	state := NewRoomState("me")
	generation := state.EnterRoom("post-1")
	state.EnterRoom("post-2")
	ctx := context.Background()

	require.NoError(t, state.Consume(ctx, event.HistoryLoaded{
		Room:       "post-1",
		Generation: generation,
		Messages:   []domain.Message{message("m1", "post-1", "alice")},
		Active:     true,
	}))

	require.Empty(t, state.Messages())
	require.Equal(t, uint64(1), state.Discarded())
}

func TestRoomState_RoomIsolationOnSwitch(t *testing.T) {
	state := NewRoomState("me")
	state.EnterRoom("post-a")
	ctx := context.Background()

	require.NoError(t, state.Consume(ctx, event.MessageReceived{
		Message: message("m1", "post-a", "alice"),
	}))
	require.NoError(t, state.Consume(ctx, event.ParticipantJoined{
		Room:        "post-a",
		Participant: domain.Participant{UserID: "u1", Username: "alice"},
	}))

	state.EnterRoom("post-b")

	require.Empty(t, state.Messages())
	require.Empty(t, state.Participants())
}

func TestRoomState_ResetOnConnectionDrop(t *testing.T) {
	state := NewRoomState("me")
	state.EnterRoom("post-a")
	ctx := context.Background()

	require.NoError(t, state.Consume(ctx, event.MessageReceived{
		Message: message("m1", "post-a", "alice"),
	}))
	require.NoError(t, state.Consume(ctx, event.ConnStateChanged{
		State:  domain.Reconnecting,
		Reason: "transport error",
	}))

	require.Empty(t, state.Messages())
	require.Empty(t, state.Participants())
}

func TestRoomState_TypingExcludesSelf(t *testing.T) {
	state := NewRoomState("me")
	state.EnterRoom("post-a")
	ctx := context.Background()

	require.NoError(t, state.Consume(ctx, event.ParticipantsSnapshot{
		Room: "post-a",
		Participants: []domain.Participant{
			{UserID: "me", Username: "self"},
			{UserID: "u1", Username: "alice"},
		},
	}))
	now := time.Now()
	require.NoError(t, state.Consume(ctx, event.TypingChanged{Room: "post-a", UserID: "me", Typing: true, At: now}))
	require.NoError(t, state.Consume(ctx, event.TypingChanged{Room: "post-a", UserID: "u1", Typing: true, At: now}))

	require.Equal(t, []string{"alice"}, state.TypingUsernames())
}

func TestRoomState_SweepStaleTyping(t *testing.T) {
	state := NewRoomState("me")
	state.EnterRoom("post-a")
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, state.Consume(ctx, event.ParticipantsSnapshot{
		Room:         "post-a",
		Participants: []domain.Participant{{UserID: "u1", Username: "alice"}},
	}))
	require.NoError(t, state.Consume(ctx, event.TypingChanged{Room: "post-a", UserID: "u1", Typing: true, At: start}))

	state.SweepStaleTyping(start.Add(2*time.Second), 5*time.Second)
	require.Equal(t, []string{"alice"}, state.TypingUsernames())

	state.SweepStaleTyping(start.Add(6*time.Second), 5*time.Second)
	require.Empty(t, state.TypingUsernames())
}

func TestRoomState_DisabledChatKeepsSystemMessages(t *testing.T) {
	state := NewRoomState("me")
	generation := state.EnterRoom("post-a")
	ctx := context.Background()

	require.NoError(t, state.Consume(ctx, event.HistoryLoaded{
		Room:       "post-a",
		Generation: generation,
		Active:     false,
		Notice:     "Auction ended",
	}))
	require.Equal(t, domain.RoomDisabled, state.Status())
	require.Equal(t, "Auction ended", state.Notice())

	system := domain.NewSystemMessage("post-a", "auction ended, chat disabled", time.Now())
	require.NoError(t, state.Consume(ctx, event.MessageReceived{Message: system}))

	messages := state.Messages()
	require.Len(t, messages, 1)
	require.Equal(t, domain.KindSystem, messages[0].Kind)
}

func TestRoomState_IgnoresOtherRoomMessages(t *testing.T) {
	state := NewRoomState("me")
	state.EnterRoom("post-a")
	ctx := context.Background()

	require.NoError(t, state.Consume(ctx, event.MessageReceived{
		Message: message("m1", "post-b", "alice"),
	}))
	require.Empty(t, state.Messages())
}
