package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"auction-chat/auth"
	"auction-chat/domain"
	"auction-chat/errors"
	"auction-chat/history"
	"auction-chat/internal"
	"auction-chat/moderation"
	"auction-chat/observability"
	"auction-chat/projection"
	"auction-chat/repositories"
	"auction-chat/runtime"
	"auction-chat/runtime/workers"
	"auction-chat/services"
	"auction-chat/sink"
	"auction-chat/transport"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "auctionchat terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the client lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because it ensures
// all 'defer' statements (like database cleanup) are executed before the program exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config validation failed: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Credential
	token := resolveToken(config)
	if token == "" {
		return exitConfig, errors.ErrNoCredential
	}
	identity, err := auth.ParseIdentity(token)
	if err != nil {
		return exitConfig, fmt.Errorf("cannot read identity from token: %w", err)
	}
	if auth.Expired(token, time.Now()) {
		logger.Warn("Token is expired, the server will reject the connection")
	}
	session := domain.Session{Token: token, Identity: identity}

	// 3. Storage (BadgerDB + Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures the database lock is released and buffers are flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	transcript := repositories.NewTranscriptRepository(db, logger, config.LimitMessages)
	index := repositories.NewSearchIndex(blugeWriter, logger)

	// 4. Moderation veil for the rendered stream
	censored, err := moderation.LoadEmbedded()
	if err != nil {
		return exitRuntime, fmt.Errorf("cannot load censored words: %w", err)
	}
	moderator, err := moderation.NewModerator(censored.Words, charReplacement, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderation setup failed: %w", err)
	}
	veil := moderation.NewVeil(moderator, logger)
	logger.Debug("Moderation dictionaries loaded", "languages", censored.Languages, "words", len(censored.Words))

	// 5. Connection manager and sinks
	monitoring := observability.NewMonitoringManager()
	roomState := projection.NewRoomState(identity.UserID)
	ws := transport.NewWebsocketTransport(config.SocketURL, logger)
	historyClient := history.NewClient(config.APIBaseURL, token, config.HistoryTimeout, logger)

	manager := runtime.NewManager(logger, ws, historyClient, session, roomState, monitoring, runtime.Options{
		MaxReconnects:  config.MaxReconnects,
		ReconnectDelay: config.ReconnectDelay,
		BufferSize:     config.BufferSize,
		TypingQuiet:    config.TypingQuiet,
	})
	manager.AddSinks(
		sink.NewArchiveSink(transcript, index, logger),
		sink.NewConsoleSink(veil, true),
	)

	service := services.NewChatService(manager, roomState, transcript, index)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Supervision
	sup := workers.NewSupervisor(logger)
	sup.Add(
		manager,
		workers.NewTelemetryWorker(logger, monitoring, config.TelemetryPeriod),
		workers.NewPresenceSweeper(logger, roomState, config.SweepInterval, config.TypingWindow),
	)

	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	// 8. Optional archive inspector
	if config.DebugPort > 0 {
		url := fmt.Sprintf("http://localhost:%d/inspect", config.DebugPort)
		logger.Info("Debug transcript inspector available", "url", url)
		internal.StartDebugServer(db, config.DebugPort, "/inspect", internal.TranscriptMapper, statsProvider(monitoring))
	}

	// 9. Connect and hand over to the console
	if err := manager.Connect(ctx); err != nil {
		return exitRuntime, fmt.Errorf("connection failed: %w", err)
	}

	go consoleLoop(ctx, logger, service, stop)

	<-ctx.Done()
	logger.Info("Shutting down gracefully...")
	manager.Disconnect()
	<-supDone
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

// resolveToken prefers the explicit CHAT_TOKEN, then falls back to the
// token cookie of a browser cookie string pasted into CHAT_COOKIE.
func resolveToken(config internal.Config) string {
	if config.ChatToken != "" {
		return config.ChatToken
	}
	token, _ := auth.TokenFromCookies(config.ChatCookie)
	return token
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	return options
}

func statsProvider(monitoring *observability.MonitoringManager) internal.StatsProvider {
	return func() map[string]any {
		stats := monitoring.GetLatest()
		return map[string]any{
			"Events applied":  stats.EventsApplied,
			"Messages seen":   stats.MessagesSeen,
			"Reconnects":      stats.Reconnects,
			"Stale discarded": stats.StaleDiscarded,
			"Send failures":   stats.SendFailures,
		}
	}
}
