package repositories

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"auction-chat/domain"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func userMessage(room domain.RoomID, author, body string, at time.Time) domain.Message {
	return domain.Message{
		ID:       uuid.NewString(),
		Room:     room,
		AuthorID: uuid.NewString(),
		Author:   author,
		Body:     body,
		At:       at,
		Kind:     domain.KindUser,
	}
}

func Test_Record_Multiple_Messages(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewTranscriptRepository(db, slog.Default(), nil)
	room := domain.RoomID("auction-42")
	at := time.Now().UTC()
	stored := []domain.Message{
		userMessage(room, "Alice", "opening bid?", at),
		userMessage(room, "Bob", "starting at 50", at.Add(1*time.Minute)),
		userMessage(room, "Clara", "I'll take it", at.Add(2*time.Minute)),
	}
	for _, m := range stored {
		req.NoError(repository.StoreMessage(m))
	}

	fetched, _, err := repository.GetMessages(room, nil)
	req.NoError(err)
	req.Len(fetched, len(stored))
	// Reverse scan: newest first.
	req.Equal(stored[2], fetched[0])
	req.Equal(stored[0], fetched[2])
}

func Test_Record_Messages_And_Limit(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	limit := 2
	repository := NewTranscriptRepository(db, slog.Default(), &limit)
	room := domain.RoomID("auction-42")
	at := time.Now().UTC()
	for i := 0; i < 5; i++ {
		m := userMessage(room, "Alice", fmt.Sprintf("bid %d", i), at.Add(time.Duration(i)*time.Minute))
		req.NoError(repository.StoreMessage(m))
	}

	fetched, _, err := repository.GetMessages(room, nil)
	req.NoError(err)
	req.Len(fetched, limit)
	req.Equal("bid 4", fetched[0].Body)
	req.Equal("bid 3", fetched[1].Body)
}

func Test_Pagination_Cursor_Resumes_Scan(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	limit := 2
	repository := NewTranscriptRepository(db, slog.Default(), &limit)
	room := domain.RoomID("auction-42")
	at := time.Now().UTC()
	for i := 1; i <= 5; i++ {
		m := userMessage(room, "Alice", fmt.Sprintf("bid %d", i), at.Add(time.Duration(i)*time.Minute))
		req.NoError(repository.StoreMessage(m))
	}

	page1, cursor1, err := repository.GetMessages(room, nil)
	req.NoError(err)
	req.Len(page1, 2)
	req.Equal("bid 5", page1[0].Body)
	req.Equal("bid 4", page1[1].Body)

	page2, cursor2, err := repository.GetMessages(room, cursor1)
	req.NoError(err)
	req.Len(page2, 2)
	req.Equal("bid 3", page2[0].Body)
	req.Equal("bid 2", page2[1].Body)

	page3, _, err := repository.GetMessages(room, cursor2)
	req.NoError(err)
	req.Len(page3, 1)
	req.Equal("bid 1", page3[0].Body)
}

func Test_Rooms_Are_Isolated(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewTranscriptRepository(db, slog.Default(), nil)
	at := time.Now().UTC()
	req.NoError(repository.StoreMessage(userMessage("auction-1", "Alice", "hello one", at)))
	req.NoError(repository.StoreMessage(userMessage("auction-2", "Bob", "hello two", at)))

	fetched, _, err := repository.GetMessages("auction-1", nil)
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("hello one", fetched[0].Body)
}
