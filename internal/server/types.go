// Package server defines the contracts between the WebSocket transport and
// the chat core, plus helpers shared by client and hub logic.
package server

import (
	"strings"

	"github.com/Tyrowin/roomrelay/internal/chat"
)

// EventHandler consumes the events read from client connections.
// Disconnect is called exactly once per connection, after its last Dispatch.
type EventHandler interface {
	Dispatch(s *chat.Session, f chat.Frame)
	Disconnect(s *chat.Session)
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
