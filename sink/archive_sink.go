package sink

import (
	"context"
	"log/slog"

	"auction-chat/domain/event"
	"auction-chat/repositories"
)

// ArchiveSink persists every message the client sees, live or
// backfilled, to the local transcript archive and the search index.
// Both targets are idempotent on message id, so replays after a
// reconnect do not duplicate entries.
type ArchiveSink struct {
	transcript repositories.ITranscriptRepository
	index      repositories.ISearchIndex
	log        *slog.Logger
}

func NewArchiveSink(transcript repositories.ITranscriptRepository, index repositories.ISearchIndex, log *slog.Logger) ArchiveSink {
	return ArchiveSink{transcript: transcript, index: index, log: log}
}

func (a ArchiveSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageReceived:
		if err := a.transcript.StoreMessage(evt.Message); err != nil {
			return err
		}
		return a.index.IndexMessage(evt.Message)
	case event.HistoryLoaded:
		for _, m := range evt.Messages {
			if err := a.transcript.StoreMessage(m); err != nil {
				return err
			}
			if err := a.index.IndexMessage(m); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}
