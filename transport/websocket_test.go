package transport

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"auction-chat/protocol"
)

var upgrader = websocket.Upgrader{}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWebsocketTransport_DialPlacesCredentialTwice(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	authFrames := make(chan protocol.Envelope, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var env protocol.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		authFrames <- env
	}))
	defer server.Close()

	transport := NewWebsocketTransport(wsURL(server), log)
	conn, err := transport.Dial(context.Background(), "tok")
	require.NoError(t, err)
	defer conn.Close()

	select {
	case env := <-authFrames:
		require.Equal(t, protocol.EventAuth, env.Event)
	case <-time.After(time.Second):
		t.Fatal("server never received the auth frame")
	}
}

// A frame that is not valid JSON must be skipped, not reported as a
// connection failure: the caller treats ReadEnvelope errors as drops
// and would otherwise burn its reconnect attempts on one bad frame.
func TestWebsocketTransport_ReadSkipsUnparsableFrame(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var env protocol.Envelope
		require.NoError(t, conn.ReadJSON(&env)) // auth frame

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"event":"user-typing","data":{"userId":"u1","isTyping":true}}`)))

		// Hold the connection open until the client is done reading.
		_, _, _ = conn.ReadMessage()
	}))
	defer server.Close()

	transport := NewWebsocketTransport(wsURL(server), log)
	conn, err := transport.Dial(context.Background(), "tok")
	require.NoError(t, err)
	defer conn.Close()

	env, err := conn.ReadEnvelope()
	require.NoError(t, err)
	require.Equal(t, protocol.EventUserTyping, env.Event)
}

func TestWebsocketTransport_ReadReportsClosedConnection(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		var env protocol.Envelope
		require.NoError(t, conn.ReadJSON(&env)) // auth frame
		_ = conn.Close()
	}))
	defer server.Close()

	transport := NewWebsocketTransport(wsURL(server), log)
	conn, err := transport.Dial(context.Background(), "tok")
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.ReadEnvelope()
	require.Error(t, err)
}
