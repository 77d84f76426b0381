package chat

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultName is used when a client joins without a usable display name.
const DefaultName = "Anonymous"

// ConnID identifies one live connection.
type ConnID string

// NewConnID returns a fresh random connection identifier.
func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

// Session is the server-side state of one connection. It is owned by the
// transport and only touched from that connection's read pump, or from the
// hub after the read pump has exited.
type Session struct {
	ID   ConnID
	Name string
	Room string
}

// NewSession creates an unjoined session.
func NewSession(id ConnID) *Session {
	return &Session{ID: id, Name: DefaultName}
}

// Joined reports whether the session currently belongs to a room.
func (s *Session) Joined() bool {
	return s.Room != ""
}

func displayName(raw string) string {
	if name := strings.TrimSpace(raw); name != "" {
		return name
	}
	return DefaultName
}
