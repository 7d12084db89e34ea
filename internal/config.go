package internal

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	SocketURL  string `env:"SOCKET_URL,required=true" validate:"required,url"`
	APIBaseURL string `env:"API_BASE_URL,required=true" validate:"required,url"`
	ChatToken  string `env:"CHAT_TOKEN"`
	ChatCookie string `env:"CHAT_COOKIE"`

	MaxReconnects  int           `env:"MAX_RECONNECTS,required=true"`
	ReconnectDelay time.Duration `env:"RECONNECT_DELAY,required=true"`
	BufferSize     int           `env:"BUFFER_SIZE,required=true"`
	TypingQuiet    time.Duration `env:"TYPING_QUIET,required=true"`
	TypingWindow   time.Duration `env:"TYPING_WINDOW,required=true"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL,required=true"`
	HistoryTimeout time.Duration `env:"HISTORY_TIMEOUT,required=true"`

	CharReplacement string `env:"CHARACTER_REPLACEMENT,required=true"`
	LimitMessages   *int   `env:"LIMIT_MESSAGES"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	LogLevel        string        `env:"LOG_LEVEL,required=true"`
	TelemetryPeriod time.Duration `env:"TELEMETRY_PERIOD,required=true"`
	DebugPort       int           `env:"DEBUG_PORT"`
}

var validate = validator.New()

func (c Config) Validate() error {
	return validate.Struct(c)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
