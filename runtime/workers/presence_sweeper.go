package workers

import (
	"context"
	"log/slog"
	"time"

	"auction-chat/projection"
)

// PresenceSweeper clears typing flags the server never paired with a
// typing-stop. The protocol assumes the server always sends stop or a
// user-left event; this sweep is the client-side fallback for
// participants that vanish ungracefully.
type PresenceSweeper struct {
	log      *slog.Logger
	state    *projection.RoomState
	interval time.Duration
	window   time.Duration
}

func NewPresenceSweeper(log *slog.Logger, state *projection.RoomState, interval, window time.Duration) *PresenceSweeper {
	return &PresenceSweeper{log: log, state: state, interval: interval, window: window}
}

func (w *PresenceSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping presence sweeper")
			return ctx.Err()
		case now := <-ticker.C:
			w.state.SweepStaleTyping(now, w.window)
		}
	}
}
