//go:generate go run go.uber.org/mock/mockgen -source=index.go -destination=../mocks/mock_search_index.go -package=mocks
package repositories

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/blugelabs/bluge"

	"auction-chat/domain"
)

type ISearchIndex interface {
	IndexMessage(message domain.Message) error
	Search(ctx context.Context, terms string, room domain.RoomID, limit int) ([]domain.Message, error)
}

// SearchIndex maintains a full-text index over archived message bodies
// so the terminal client can grep past auctions.
type SearchIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewSearchIndex(writer *bluge.Writer, log *slog.Logger) *SearchIndex {
	return &SearchIndex{writer: writer, log: log}
}

// IndexMessage upserts a message keyed by its id. Re-indexing the same
// id is harmless, which keeps the sink idempotent alongside the
// dedup-by-id merge rule.
func (s *SearchIndex) IndexMessage(message domain.Message) error {
	doc := bluge.NewDocument(message.ID).
		AddField(bluge.NewTextField("body", message.Body).StoreValue()).
		AddField(bluge.NewKeywordField("room", string(message.Room)).StoreValue()).
		AddField(bluge.NewKeywordField("authorId", message.AuthorID).StoreValue()).
		AddField(bluge.NewKeywordField("author", message.Author).StoreValue()).
		AddField(bluge.NewKeywordField("kind", string(message.Kind)).StoreValue()).
		AddField(bluge.NewKeywordField("at", strconv.FormatInt(message.At.UnixNano(), 10)).StoreValue())
	return s.writer.Update(doc.ID(), doc)
}

// Search runs a match query over message bodies, optionally scoped to a
// single room, newest-scored first.
func (s *SearchIndex) Search(ctx context.Context, terms string, room domain.RoomID, limit int) ([]domain.Message, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("body"))
	if room != "" {
		query.AddMust(bluge.NewTermQuery(string(room)).SetField("room"))
	}

	request := bluge.NewTopNSearch(limit, query)
	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var messages []domain.Message
	match, err := iterator.Next()
	for err == nil && match != nil {
		var m domain.Message
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				m.ID = string(value)
			case "body":
				m.Body = string(value)
			case "room":
				m.Room = domain.RoomID(value)
			case "authorId":
				m.AuthorID = string(value)
			case "author":
				m.Author = string(value)
			case "kind":
				m.Kind = domain.MessageKind(value)
			case "at":
				if nanos, parseErr := strconv.ParseInt(string(value), 10, 64); parseErr == nil {
					m.At = time.Unix(0, nanos).UTC()
				}
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		messages = append(messages, m)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}
	return messages, nil
}
