// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the built-in test page.
package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

// HealthMessage is the body served by the health endpoint.
const HealthMessage = "Ephemeral Chat Backend - Running"

func newUpgrader(policy *originPolicy) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     policy.checkOrigin,
	}
}

// WebSocketHandler upgrades GET requests to WebSocket connections and
// registers each one with hub as a new client.
func WebSocketHandler(hub *Hub, upgrader *websocket.Upgrader, maxMessageSize int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Debug().Err(err).Str("addr", r.RemoteAddr).Msg("WebSocket upgrade failed")
			return
		}

		client := NewClient(conn, hub, r.RemoteAddr, maxMessageSize)

		// The hub launches the pump goroutines.
		if !hub.Register(client) {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			_ = conn.Close()
		}
	}
}

// HealthHandler responds with a static confirmation that the service is up.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, HealthMessage)
}

// TestPageHandler serves an HTML page for joining a room and chatting from
// a browser.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = fmt.Fprint(w, testPage)
}

const testPage = `<!DOCTYPE html>
<html>
<head>
    <title>Room Relay Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #log { border: 1px solid #ccc; height: 300px; padding: 10px; overflow-y: scroll; margin: 10px 0; background-color: #f9f9f9; }
        input[type="text"] { padding: 5px; margin-right: 10px; }
        .system { color: gray; font-style: italic; }
        .typing { color: #999; height: 1em; }
    </style>
</head>
<body>
    <h1>Room Relay Test</h1>
    <div>
        <input type="text" id="code" placeholder="Room code">
        <input type="text" id="name" placeholder="Display name">
        <button onclick="join()">Join</button>
        <button onclick="whoIsHere()">Who is here?</button>
    </div>
    <div id="log"></div>
    <div id="typing" class="typing"></div>
    <div>
        <input type="text" id="text" placeholder="Type a message..." style="width: 300px">
        <button onclick="sendText()">Send</button>
    </div>
    <script>
        const log = document.getElementById('log');
        const typing = document.getElementById('typing');
        const text = document.getElementById('text');
        const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
        const ws = new WebSocket(scheme + location.host + '/ws');
        let typingTimer = null;

        function emit(event, data) {
            const frame = { event: event };
            if (data !== undefined) { frame.data = data; }
            ws.send(JSON.stringify(frame));
        }

        function line(content, cls) {
            const el = document.createElement('div');
            if (cls) { el.className = cls; }
            el.textContent = content;
            log.appendChild(el);
            log.scrollTop = log.scrollHeight;
        }

        ws.onmessage = function(event) {
            const frame = JSON.parse(event.data);
            switch (frame.event) {
            case 'system message':
                line(frame.data, 'system');
                break;
            case 'chat message':
                line('[' + new Date(frame.data.time).toLocaleTimeString() + '] ' + frame.data.username + ': ' + frame.data.msg);
                break;
            case 'user typing':
                typing.textContent = frame.data + ' is typing...';
                clearTimeout(typingTimer);
                typingTimer = setTimeout(function() { typing.textContent = ''; }, 2000);
                break;
            case 'chat closed':
                line('Chat closed', 'system');
                break;
            }
        };
        ws.onclose = function() { line('Connection closed', 'system'); };

        function join() {
            emit('join', { code: document.getElementById('code').value, username: document.getElementById('name').value });
        }
        function whoIsHere() { emit('request users'); }
        function sendText() {
            emit('chat message', text.value);
            text.value = '';
        }
        text.addEventListener('input', function() { emit('typing', true); });
        text.addEventListener('keypress', function(e) { if (e.key === 'Enter') { sendText(); } });
    </script>
</body>
</html>`
