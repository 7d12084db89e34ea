package sink

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"auction-chat/domain"
	"auction-chat/domain/event"
	"auction-chat/mocks"
)

func TestArchiveSink_Stores_And_Indexes_Live_Message(t *testing.T) {
	ctrl := gomock.NewController(t)
	transcript := mocks.NewMockITranscriptRepository(ctrl)
	index := mocks.NewMockISearchIndex(ctrl)

	m := domain.Message{
		ID:     uuid.NewString(),
		Room:   "auction-7",
		Author: "Alice",
		Body:   "sold!",
		At:     time.Now().UTC(),
		Kind:   domain.KindUser,
	}
	transcript.EXPECT().StoreMessage(m).Return(nil)
	index.EXPECT().IndexMessage(m).Return(nil)

	s := NewArchiveSink(transcript, index, slog.Default())
	require.NoError(t, s.Consume(context.Background(), event.MessageReceived{Message: m}))
}

func TestArchiveSink_Stores_Every_History_Entry(t *testing.T) {
	ctrl := gomock.NewController(t)
	transcript := mocks.NewMockITranscriptRepository(ctrl)
	index := mocks.NewMockISearchIndex(ctrl)

	room := domain.RoomID("auction-7")
	at := time.Now().UTC()
	messages := []domain.Message{
		{ID: uuid.NewString(), Room: room, Author: "Alice", Body: "one", At: at, Kind: domain.KindUser},
		{ID: uuid.NewString(), Room: room, Author: "Bob", Body: "two", At: at.Add(time.Minute), Kind: domain.KindUser},
	}
	for _, m := range messages {
		transcript.EXPECT().StoreMessage(m).Return(nil)
		index.EXPECT().IndexMessage(m).Return(nil)
	}

	s := NewArchiveSink(transcript, index, slog.Default())
	err := s.Consume(context.Background(), event.HistoryLoaded{Room: room, Generation: 1, Messages: messages, Active: true})
	require.NoError(t, err)
}

func TestArchiveSink_Ignores_Other_Events(t *testing.T) {
	ctrl := gomock.NewController(t)
	transcript := mocks.NewMockITranscriptRepository(ctrl)
	index := mocks.NewMockISearchIndex(ctrl)

	s := NewArchiveSink(transcript, index, slog.Default())
	err := s.Consume(context.Background(), event.TypingChanged{Room: "auction-7", UserID: "u1", Typing: true})
	require.NoError(t, err)
}
