// Package runtime owns the connection lifecycle and the serialized
// event dispatch for one chat session. It orchestrates transport,
// history backfill, and sinks without containing domain rules.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"auction-chat/contract"
	"auction-chat/domain"
	"auction-chat/domain/event"
	"auction-chat/errors"
	"auction-chat/observability"
	"auction-chat/projection"
	"auction-chat/protocol"
	"auction-chat/typing"
)

const (
	DefaultMaxReconnects  = 5
	DefaultReconnectDelay = time.Second
	DefaultBufferSize     = 256
)

// Options tunes the manager; zero values fall back to protocol defaults.
type Options struct {
	MaxReconnects  int
	ReconnectDelay time.Duration
	BufferSize     int
	TypingQuiet    time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxReconnects <= 0 {
		o.MaxReconnects = DefaultMaxReconnects
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = DefaultReconnectDelay
	}
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultBufferSize
	}
	if o.TypingQuiet <= 0 {
		o.TypingQuiet = typing.DefaultQuietPeriod
	}
	return o
}

// Manager is the single shared connection owner for a session. At most
// one live transport connection exists at a time; all state transitions
// and event applications happen on one serialized dispatch loop.
type Manager struct {
	mu         sync.Mutex
	log        *slog.Logger
	transport  contract.Transport
	history    contract.HistoryFetcher
	session    domain.Session
	roomState  *projection.RoomState
	monitoring *observability.MonitoringManager
	opts       Options

	state     domain.ConnState
	lastError string
	conn      contract.Conn
	events    chan event.DomainEvent
	sinks     []contract.EventSink
	notifier  *typing.Notifier

	// lifeCtx scopes the read pump and reconnect loop to the session.
	lifeCtx  context.Context
	lifeStop context.CancelFunc
}

func NewManager(
	log *slog.Logger,
	transport contract.Transport,
	history contract.HistoryFetcher,
	session domain.Session,
	roomState *projection.RoomState,
	monitoring *observability.MonitoringManager,
	opts Options,
) *Manager {
	opts = opts.withDefaults()
	m := &Manager{
		log:        log,
		transport:  transport,
		history:    history,
		session:    session,
		roomState:  roomState,
		monitoring: monitoring,
		opts:       opts,
		state:      domain.Disconnected,
		events:     make(chan event.DomainEvent, opts.BufferSize),
		sinks:      []contract.EventSink{roomState},
	}
	m.notifier = typing.NewNotifier(opts.TypingQuiet, m.emitTypingStart, m.emitTypingStop)
	return m
}

// AddSinks registers additional consumers of the dispatch loop.
// Must be called before Run.
func (m *Manager) AddSinks(sinks ...contract.EventSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, sinks...)
}

// State returns the current connection state.
func (m *Manager) State() domain.ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastError returns the user-facing copy for the last failure, empty
// when the connection is healthy.
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastError
}

// Run is the serialized dispatch loop; it applies every event to the
// sinks in registration order. One event at a time, no handler
// parallelism for the same connection.
func (m *Manager) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			m.log.Debug("Stopping dispatch loop")
			return ctx.Err()
		case evt, ok := <-m.events:
			if !ok {
				return nil
			}
			m.monitoring.EventApplied()
			if _, isMsg := evt.(event.MessageReceived); isMsg {
				m.monitoring.MessageSeen()
			}
			for _, sink := range m.sinks {
				if err := sink.Consume(ctx, evt); err != nil {
					m.log.Warn("Sink rejected event", "err", err)
				}
			}
		}
	}
}

// Connect opens the connection for the session credential. No
// credential, no attempt. An authentication rejection is terminal for
// the credential: the state moves to Failed and no retry is scheduled.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.session.HasCredential() {
		return errors.ErrNoCredential
	}

	m.mu.Lock()
	if m.state == domain.Connected || m.state == domain.Connecting || m.state == domain.Reconnecting {
		m.mu.Unlock()
		return nil
	}
	m.lifeCtx, m.lifeStop = context.WithCancel(ctx)
	m.mu.Unlock()

	m.transition(domain.Connecting, "")

	conn, err := m.transport.Dial(m.lifeCtx, m.session.Token)
	if err != nil {
		if errors.Classify(err.Error()) == errors.FailureAuth {
			m.transition(domain.Failed, err.Error())
			return err
		}
		// Transient initial failure goes through the same bounded
		// retry budget as a mid-session drop.
		return m.reconnect(err.Error())
	}

	m.adopt(conn)
	return nil
}

// Disconnect tears the connection down; no retry follows. Room caches
// clear through the ConnStateChanged event.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	stop := m.lifeStop
	m.mu.Unlock()

	m.notifier.Cancel()
	m.transition(domain.Disconnected, "")
	if conn != nil {
		_ = conn.Close()
	}
	if stop != nil {
		stop()
	}
}

// JoinRoom subscribes to an auction room. Requires a live connection.
// Any previous room gets an explicit leave before the join, then the
// history backfill races the live subscription; the generation tag keeps
// a late fetch result from polluting the next room.
func (m *Manager) JoinRoom(room domain.RoomID) error {
	conn := m.liveConn()
	if conn == nil {
		return errors.ErrNotConnected
	}
	if room == "" {
		return errors.ErrNoCurrentRoom
	}

	if previous := m.roomState.Room(); previous != "" && previous != room {
		m.notifier.Cancel()
		if err := conn.WriteEvent(string(protocol.EventLeaveAuction), protocol.RoomIntent{PostID: string(previous)}); err != nil {
			m.log.Warn("Leave intent failed during room switch", "room", previous, "err", err)
		}
		m.enqueue(event.RoomLeft{Room: previous})
	}

	generation := m.roomState.EnterRoom(room)
	if err := conn.WriteEvent(string(protocol.EventJoinAuction), protocol.RoomIntent{PostID: string(room)}); err != nil {
		return fmt.Errorf("join intent for room %s: %w", room, err)
	}
	m.enqueue(event.RoomJoined{Room: room})

	go m.fetchHistory(room, generation)
	return nil
}

// LeaveRoom unsubscribes from the current room and clears its caches.
func (m *Manager) LeaveRoom() error {
	room := m.roomState.Room()
	if room == "" {
		return errors.ErrNoCurrentRoom
	}

	m.notifier.Cancel()
	if conn := m.liveConn(); conn != nil {
		if err := conn.WriteEvent(string(protocol.EventLeaveAuction), protocol.RoomIntent{PostID: string(room)}); err != nil {
			m.log.Warn("Leave intent failed", "room", room, "err", err)
		}
	}
	m.roomState.LeaveRoom()
	m.enqueue(event.RoomLeft{Room: room})
	return nil
}

// SendMessage posts a message body to the current room.
func (m *Manager) SendMessage(body string) error {
	conn := m.liveConn()
	if conn == nil {
		m.monitoring.SendFailure()
		return errors.ErrNotConnected
	}
	room := m.roomState.Room()
	if room == "" {
		m.monitoring.SendFailure()
		return errors.ErrNoCurrentRoom
	}
	if m.roomState.Status() == domain.RoomDisabled {
		m.monitoring.SendFailure()
		return errors.ErrChatDisabled
	}
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return errors.ErrEmptyMessage
	}
	return conn.WriteEvent(string(protocol.EventSendMessage), protocol.SendMessagePayload{
		PostID:  string(room),
		Message: trimmed,
	})
}

// Keystroke feeds the typing debounce: one typing-start on the first
// keystroke after idle, one typing-stop after the quiet period.
func (m *Manager) Keystroke() {
	if m.liveConn() == nil || m.roomState.Room() == "" {
		return
	}
	m.notifier.Keystroke()
}

func (m *Manager) emitTypingStart() { m.emitTyping(protocol.EventTypingStart) }
func (m *Manager) emitTypingStop()  { m.emitTyping(protocol.EventTypingStop) }

func (m *Manager) emitTyping(name protocol.EventName) {
	conn := m.liveConn()
	room := m.roomState.Room()
	if conn == nil || room == "" {
		return
	}
	if err := conn.WriteEvent(string(name), protocol.RoomIntent{PostID: string(room)}); err != nil {
		m.log.Debug("Typing signal failed", "event", name, "err", err)
	}
}

// fetchHistory backfills persisted messages, tagged with the room
// generation at issue time. Failure is partial: live chat continues.
func (m *Manager) fetchHistory(room domain.RoomID, generation uint64) {
	ctx := m.lifeContext()
	if ctx == nil {
		return
	}
	page, err := m.history.Fetch(ctx, room)
	if err != nil {
		m.log.Warn("History fetch failed, continuing live-only", "room", room, "err", err)
		return
	}
	if m.roomState.Generation() != generation {
		m.monitoring.StaleDiscarded()
		m.log.Debug("Discarding stale history fetch", "room", room)
		return
	}
	m.enqueue(event.HistoryLoaded{
		Room:       room,
		Generation: generation,
		Messages:   page.Messages,
		Active:     page.Active,
		Notice:     page.Notice,
	})
}

// adopt installs a freshly dialed connection and starts its read pump.
func (m *Manager) adopt(conn contract.Conn) {
	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()
	m.transition(domain.Connected, "")
	go m.readPump(conn)
}

// readPump forwards server frames to the dispatch queue until the
// connection drops. The reconnect loop runs inline after the pump
// exits, which makes attempts strictly sequential by construction.
func (m *Manager) readPump(conn contract.Conn) {
	for {
		env, err := conn.ReadEnvelope()
		if err != nil {
			if m.State() != domain.Connected {
				// Explicit disconnect already handled.
				return
			}
			_ = conn.Close()
			_ = m.reconnect(err.Error())
			return
		}
		m.apply(env)
	}
}

func (m *Manager) apply(env protocol.Envelope) {
	evt, err := protocol.DecodeEvent(env, m.roomState.Room(), time.Now().UTC())
	if err != nil {
		m.log.Warn("Undecodable frame", "event", env.Event, "err", err)
		return
	}
	if evt == nil {
		return
	}
	if errEvt, ok := evt.(event.ErrorReceived); ok {
		m.handleServerError(errEvt)
	}
	m.enqueue(evt)
}

// handleServerError applies the error taxonomy: auth rejections kill
// the connection for good, application-level errors only degrade.
func (m *Manager) handleServerError(errEvt event.ErrorReceived) {
	switch errors.Classify(errEvt.Message) {
	case errors.FailureAuth:
		m.log.Error("Server rejected credential", "reason", errEvt.Message)
		m.mu.Lock()
		conn := m.conn
		m.conn = nil
		m.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		m.transition(domain.Failed, errEvt.Message)
	default:
		m.log.Warn("Server error", "reason", errEvt.Message)
	}
}

// reconnect runs the bounded sequential retry loop: fixed delay, one
// attempt in flight, Failed once the budget is spent or the server
// rejects the credential.
func (m *Manager) reconnect(reason string) error {
	m.transition(domain.Reconnecting, reason)

	ctx := m.lifeContext()
	if ctx == nil {
		m.transition(domain.Disconnected, "")
		return nil
	}

	lastReason := reason
	for attempt := 1; attempt <= m.opts.MaxReconnects; attempt++ {
		select {
		case <-ctx.Done():
			m.transition(domain.Disconnected, "")
			return ctx.Err()
		case <-time.After(m.opts.ReconnectDelay):
		}

		m.monitoring.Reconnect()
		m.log.Info("Reconnect attempt", "attempt", attempt, "max", m.opts.MaxReconnects)

		conn, err := m.transport.Dial(ctx, m.session.Token)
		if err == nil {
			m.adopt(conn)
			m.rejoinCurrentRoom()
			return nil
		}
		lastReason = err.Error()
		if errors.Classify(lastReason) == errors.FailureAuth {
			m.transition(domain.Failed, lastReason)
			return err
		}
		m.log.Warn("Reconnect attempt failed", "attempt", attempt, "err", err)
	}

	m.transition(domain.Failed, lastReason)
	return fmt.Errorf("%w after %d attempts: %s", errors.ErrRetryExhausted, m.opts.MaxReconnects, lastReason)
}

// rejoinCurrentRoom re-subscribes after a successful reconnect. The
// server keeps no membership across connections, so the join and a
// fresh history fetch rebuild the room from scratch.
func (m *Manager) rejoinCurrentRoom() {
	room := m.roomState.Room()
	if room == "" {
		return
	}
	conn := m.liveConn()
	if conn == nil {
		return
	}
	generation := m.roomState.EnterRoom(room)
	if err := conn.WriteEvent(string(protocol.EventJoinAuction), protocol.RoomIntent{PostID: string(room)}); err != nil {
		m.log.Warn("Re-join intent failed", "room", room, "err", err)
		return
	}
	go m.fetchHistory(room, generation)
}

func (m *Manager) transition(state domain.ConnState, reason string) {
	m.mu.Lock()
	previous := m.state
	m.state = state
	switch {
	case state == domain.Connected:
		m.lastError = ""
	case reason != "":
		m.lastError = errors.UserMessage(reason)
	}
	m.mu.Unlock()

	if previous != state {
		m.log.Info("Connection state changed", "from", previous.String(), "to", state.String(), "reason", reason)
		m.enqueue(event.ConnStateChanged{State: state, Reason: reason})
	}
}

// enqueue hands an event to the dispatch loop. The send blocks when
// the buffer is full: dropping a ConnStateChanged or HistoryLoaded
// would leave the room state permanently wrong, and the loop is the
// sole consumer so the queue always drains.
func (m *Manager) enqueue(evt event.DomainEvent) {
	select {
	case m.events <- evt:
	default:
		m.log.Warn("Dispatch queue full, waiting", "event", fmt.Sprintf("%T", evt))
		m.events <- evt
	}
}

func (m *Manager) liveConn() contract.Conn {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != domain.Connected {
		return nil
	}
	return m.conn
}

func (m *Manager) lifeContext() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lifeCtx
}
