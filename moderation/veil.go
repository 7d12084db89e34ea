package moderation

import (
	"fmt"
	"log/slog"

	"github.com/abadojack/whatlanggo"
)

// Veil is the render-time filter: it masks censored words and logs the
// detected language of flagged bodies for moderation follow-up.
type Veil struct {
	moderator Moderator
	log       *slog.Logger
}

func NewVeil(moderator Moderator, log *slog.Logger) *Veil {
	return &Veil{moderator: moderator, log: log}
}

// Apply returns the body as it should be rendered.
func (v *Veil) Apply(body string) string {
	masked, found := v.moderator.Censor(body)
	if len(found) > 0 {
		info := whatlanggo.Detect(body)
		v.log.Debug(fmt.Sprintf("Masked %d censored word(s)", len(found)),
			"lang", info.Lang.Iso6391())
	}
	return masked
}
