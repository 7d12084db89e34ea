//go:generate go run go.uber.org/mock/mockgen -source=transcript.go -destination=../mocks/mock_transcript_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"

	"auction-chat/domain"
)

type ITranscriptRepository interface {
	StoreMessage(message domain.Message) error
	GetMessages(room domain.RoomID, cursor *string) ([]domain.Message, *string, error)
}

// TranscriptRepository keeps a local archive of every message seen in a
// room, surviving reconnects and room switches.
type TranscriptRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewTranscriptRepository(db *badger.DB, log *slog.Logger, limitMessages *int) TranscriptRepository {
	return TranscriptRepository{db: db, log: log, limitMessages: limitMessages}
}

type diskMessage struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	AuthorID  string    `json:"authorId"`
	Author    string    `json:"author"`
	AvatarRef string    `json:"avatarRef,omitempty"`
	Body      string    `json:"body"`
	At        time.Time `json:"at"`
	Kind      string    `json:"kind"`
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{room_id}:{timestamp_padded}:{id}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using the message id as a collision disconnector
//     if two messages arrive at the same nanosecond.
func (t TranscriptRepository) StoreMessage(message domain.Message) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		message.Room,
		message.At.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return err
	}
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetMessages retrieves the newest messages of a room using a reverse
// prefix scan. Thanks to the padded timestamp in the key, messages are
// naturally sorted by time. It stops collecting once the configured
// limitMessages is reached; the returned cursor resumes the scan on
// the next page.
func (t TranscriptRepository) GetMessages(room domain.RoomID, cursor *string) ([]domain.Message, *string, error) {
	var byteMessages [][]byte
	var lastKey string
	err := t.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", room)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible timestamp, then walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if t.limitMessages != nil && len(byteMessages) == *t.limitMessages {
				t.log.Debug(fmt.Sprintf("Maximum of %d message reached", *t.limitMessages))
				break
			}
			item := it.Item()
			// Memorize cursor part of the actual key
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				byteMessages = append(byteMessages, value)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var messages []domain.Message
	for _, b := range byteMessages {
		var dm diskMessage
		if err = json.Unmarshal(b, &dm); err != nil {
			return nil, nil, err
		}
		messages = append(messages, toMessage(dm))
	}
	return messages, lo.ToPtr(lastKey), nil
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:        message.ID,
		Room:      string(message.Room),
		AuthorID:  message.AuthorID,
		Author:    message.Author,
		AvatarRef: message.AvatarRef,
		Body:      message.Body,
		At:        message.At.UTC(),
		Kind:      string(message.Kind),
	}
}

func toMessage(dm diskMessage) domain.Message {
	return domain.Message{
		ID:        dm.ID,
		Room:      domain.RoomID(dm.Room),
		AuthorID:  dm.AuthorID,
		Author:    dm.Author,
		AvatarRef: dm.AvatarRef,
		Body:      dm.Body,
		At:        dm.At,
		Kind:      domain.MessageKind(dm.Kind),
	}
}
