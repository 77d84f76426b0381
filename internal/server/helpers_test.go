package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Tyrowin/roomrelay/internal/chat"
	"github.com/Tyrowin/roomrelay/internal/server"
)

const (
	testOriginURL = "http://localhost:8080"
	readTimeout   = 2 * time.Second
)

// startTestApp runs a relay behind an httptest server. mutate may adjust the
// default configuration first.
func startTestApp(t *testing.T, mutate func(cfg *server.Config)) (*server.App, *httptest.Server) {
	t.Helper()

	cfg := server.NewConfig()
	if mutate != nil {
		mutate(cfg)
	}
	app := server.NewApp(*cfg, zerolog.Nop())
	app.Start()

	testServer := httptest.NewServer(app.Handler)
	t.Cleanup(func() {
		if err := app.Shutdown(5 * time.Second); err != nil {
			t.Errorf("App shutdown failed: %v", err)
		}
		testServer.Close()
	})
	return app, testServer
}

// buildWebSocketURL converts an http:// test server URL to its /ws endpoint.
func buildWebSocketURL(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
}

// connectWebSocket dials the relay with a browser-like Origin header.
func connectWebSocket(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	headers.Set("Origin", testOriginURL)

	conn, resp, err := dialer.Dial(buildWebSocketURL(serverURL), headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// emit sends one event envelope. data may be nil for payload-less events.
func emit(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()

	frame := map[string]any{"event": event}
	if data != nil {
		frame["data"] = data
	}
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("Failed to send %q: %v", event, err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) chat.Frame {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}
	frame, err := chat.Decode(raw)
	if err != nil {
		t.Fatalf("Received invalid frame %q: %v", raw, err)
	}
	return frame
}

// expectSystemMessage reads the next frame and checks it is the given
// system message.
func expectSystemMessage(t *testing.T, conn *websocket.Conn, want string) {
	t.Helper()

	frame := readFrame(t, conn)
	if frame.Event != chat.EventSystemMessage {
		t.Fatalf("Expected system message %q, got %s %s", want, frame.Event, frame.Data)
	}
	var text string
	if err := json.Unmarshal(frame.Data, &text); err != nil {
		t.Fatalf("Invalid system message payload: %v", err)
	}
	if text != want {
		t.Fatalf("Expected system message %q, got %q", want, text)
	}
}

func expectChatMessage(t *testing.T, conn *websocket.Conn, username, msg string) chat.Message {
	t.Helper()

	frame := readFrame(t, conn)
	if frame.Event != chat.EventChatMessage {
		t.Fatalf("Expected chat message, got %s %s", frame.Event, frame.Data)
	}
	var m chat.Message
	if err := json.Unmarshal(frame.Data, &m); err != nil {
		t.Fatalf("Invalid chat message payload: %v", err)
	}
	if m.Username != username || m.Msg != msg {
		t.Fatalf("Expected %s: %q, got %s: %q", username, msg, m.Username, m.Msg)
	}
	return m
}

// expectNoMessage fails if any frame arrives within timeout.
func expectNoMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	_, raw, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("Expected no message, got %s", raw)
	}
}

// joinRoom joins code as name and consumes the welcome message.
func joinRoom(t *testing.T, conn *websocket.Conn, code, name string) {
	t.Helper()

	emit(t, conn, chat.EventJoin, chat.JoinRequest{Code: code, Username: name})
	expectSystemMessage(t, conn, "Welcome to chat: "+code)
}

// closeWebSocket sends a normal close frame and closes the connection.
func closeWebSocket(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		t.Logf("Close frame error: %v", err)
	}
	_ = conn.Close()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(readTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}
