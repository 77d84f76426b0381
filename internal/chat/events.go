// Package chat implements the room registry, the broadcast engine and the
// event dispatcher of the relay.
package chat

import (
	"encoding/json"
	"fmt"
)

// Event names exchanged with clients.
const (
	EventJoin          = "join"
	EventChatMessage   = "chat message"
	EventTyping        = "typing"
	EventRequestUsers  = "request users"
	EventSystemMessage = "system message"
	EventUserTyping    = "user typing"
	EventChatClosed    = "chat closed"
)

// Frame is the JSON envelope carried by every WebSocket text message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Event is an outbound event before encoding.
type Event struct {
	Name string
	Data any
}

// JoinRequest is the payload of an inbound join event.
type JoinRequest struct {
	Code     string `json:"code"`
	Username string `json:"username,omitempty"`
}

// SystemMessage builds a "system message" event carrying text.
func SystemMessage(text string) Event {
	return Event{Name: EventSystemMessage, Data: text}
}

// Encode marshals an event into its wire envelope.
func Encode(ev Event) ([]byte, error) {
	f := Frame{Event: ev.Name}
	if ev.Data != nil {
		raw, err := json.Marshal(ev.Data)
		if err != nil {
			return nil, fmt.Errorf("encode %q payload: %w", ev.Name, err)
		}
		f.Data = raw
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode %q frame: %w", ev.Name, err)
	}
	return b, nil
}

// Decode parses a wire envelope.
func Decode(b []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(b, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}
