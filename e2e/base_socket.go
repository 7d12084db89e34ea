package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"auction-chat/protocol"
)

type BaseSocketSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSocketSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

// Step prints a colorized header for a scenario step in logs
func (s *BaseSocketSuite) Step(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// SignToken issues a locally signed credential. The client only reads
// the claims, so any HMAC secret works here.
func SignToken(t *testing.T, userID, username string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"userId":   userID,
		"username": username,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("e2e-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

// RoomScript describes how the scripted server behaves for one room.
type RoomScript struct {
	Participants []protocol.ParticipantPayload
	LiveMessages []protocol.MessagePayload // pushed right after join, before any history could land
	History      []protocol.MessagePayload
	Active       bool
	Notice       string
}

// ScriptedServer is an in-process stand-in for the auction backend: a
// websocket endpoint plus the REST history companion.
type ScriptedServer struct {
	t      *testing.T
	debug  bool
	server *httptest.Server

	mu       sync.Mutex
	rooms    map[string]RoomScript
	received []protocol.Envelope
}

func NewScriptedServer(t *testing.T, debug bool, rooms map[string]RoomScript) *ScriptedServer {
	f := &ScriptedServer{t: t, debug: debug, rooms: rooms}

	mux := http.NewServeMux()
	mux.HandleFunc("/socket", f.handleSocket)
	mux.HandleFunc("/api/chat/messages/", f.handleHistory)
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

// SocketURL rewrites the test server address for the websocket dialer.
func (f *ScriptedServer) SocketURL() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/socket"
}

func (f *ScriptedServer) APIBaseURL() string {
	return f.server.URL
}

// Received returns a copy of every client frame seen so far.
func (f *ScriptedServer) Received() []protocol.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]protocol.Envelope(nil), f.received...)
}

// ReceivedCount counts client frames with the given event name.
func (f *ScriptedServer) ReceivedCount(name protocol.EventName) int {
	count := 0
	for _, env := range f.Received() {
		if env.Event == name {
			count++
		}
	}
	return count
}

var upgrader = websocket.Upgrader{}

func (f *ScriptedServer) handleSocket(w http.ResponseWriter, r *http.Request) {
	if auth := r.Header.Get("Authorization"); !strings.HasPrefix(auth, "Bearer ") {
		http.Error(w, "Authentication error: No token provided", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var env protocol.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		f.record(env)

		switch env.Event {
		case protocol.EventAuth:
			f.write(conn, protocol.EventConnected, map[string]any{"ok": true})
		case protocol.EventJoinAuction:
			var intent protocol.RoomIntent
			_ = json.Unmarshal(env.Data, &intent)
			script := f.script(intent.PostID)
			f.write(conn, protocol.EventRoomParticipants, protocol.RoomParticipantsPayload{
				PostID:       intent.PostID,
				Participants: script.Participants,
			})
			for _, m := range script.LiveMessages {
				f.write(conn, protocol.EventNewMessage, m)
			}
			if !script.Active {
				f.write(conn, protocol.EventChatDisabled, protocol.NoticePayload{Message: script.Notice})
			}
		case protocol.EventSendMessage:
			var p protocol.SendMessagePayload
			_ = json.Unmarshal(env.Data, &p)
			f.write(conn, protocol.EventNewMessage, protocol.MessagePayload{
				MongoID:   uuid.NewString(),
				PostID:    p.PostID,
				User:      &protocol.UserRef{MongoID: "self-1", Username: "SelfUser"},
				Message:   p.Message,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
		}
	}
}

func (f *ScriptedServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	room := strings.TrimPrefix(r.URL.Path, "/api/chat/messages/")
	script := f.script(room)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"messages": script.History,
		"isActive": script.Active,
		"message":  script.Notice,
	})
}

func (f *ScriptedServer) script(room string) RoomScript {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rooms[room]
}

func (f *ScriptedServer) record(env protocol.Envelope) {
	f.mu.Lock()
	f.received = append(f.received, env)
	f.mu.Unlock()
	if f.debug {
		f.t.Logf("RECV %s: %s", env.Event, string(env.Data))
	}
}

func (f *ScriptedServer) write(conn *websocket.Conn, name protocol.EventName, payload any) {
	env, err := protocol.NewEnvelope(name, payload)
	if err != nil {
		f.t.Errorf("cannot build %s frame: %v", name, err)
		return
	}
	if f.debug {
		f.t.Logf("SEND %s: %s", env.Event, string(env.Data))
	}
	_ = conn.WriteJSON(env)
}
