package sink

import (
	"context"
	"fmt"

	"github.com/gookit/color"

	"auction-chat/domain"
	"auction-chat/domain/event"
	"auction-chat/moderation"
)

// ConsoleSink renders domain events for the terminal client. Message
// bodies pass through the moderation veil before display; the archive
// keeps the raw text.
type ConsoleSink struct {
	veil    *moderation.Veil
	colours bool
}

func NewConsoleSink(veil *moderation.Veil, colours bool) ConsoleSink {
	return ConsoleSink{veil: veil, colours: colours}
}

func (c ConsoleSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageReceived:
		c.printMessage(evt.Message)
	case event.HistoryLoaded:
		c.printf(color.FgGray, "--- %d earlier message(s) loaded ---", len(evt.Messages))
		for _, m := range evt.Messages {
			c.printMessage(m)
		}
		if evt.Notice != "" {
			c.printf(color.FgYellow, "* %s", evt.Notice)
		}
	case event.ParticipantJoined:
		c.printf(color.FgGreen, "* %s joined", evt.Participant.Username)
	case event.ParticipantLeft:
		c.printf(color.FgGray, "* a participant left")
	case event.ChatDisabled:
		c.printf(color.FgYellow, "* chat disabled: %s", evt.Reason)
	case event.AuctionEvent:
		c.printf(color.FgMagenta, "* auction event: %s", evt.Type)
	case event.ConnStateChanged:
		if evt.Reason != "" {
			c.printf(color.FgRed, "* connection: %s (%s)", evt.State, evt.Reason)
		} else {
			c.printf(color.FgCyan, "* connection: %s", evt.State)
		}
	case event.ErrorReceived:
		c.printf(color.FgRed, "* server error: %s", evt.Message)
	}
	return nil
}

func (c ConsoleSink) printMessage(m domain.Message) {
	body := c.veil.Apply(m.Body)
	switch m.Kind {
	case domain.KindSystem:
		c.printf(color.FgYellow, "[%s] %s", m.At.Local().Format("15:04:05"), body)
	default:
		stamp := m.At.Local().Format("15:04:05")
		if c.colours {
			fmt.Printf("[%s] %s %s\n", stamp, color.New(color.FgCyan).Render(m.Author+":"), body)
			return
		}
		fmt.Printf("[%s] %s: %s\n", stamp, m.Author, body)
	}
}

func (c ConsoleSink) printf(fg color.Color, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if c.colours {
		line = color.New(fg).Render(line)
	}
	fmt.Println(line)
}
