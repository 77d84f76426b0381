package chat

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tyrowin/roomrelay/internal/metrics"
)

type handlerFunc func(s *Session, data json.RawMessage)

// Dispatcher routes inbound events to their handlers. Handlers run one at a
// time so the order in which rooms are mutated is the order in which their
// broadcasts are queued.
type Dispatcher struct {
	mu       sync.Mutex
	registry *Registry
	out      Broadcaster
	log      zerolog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	handlers map[string]handlerFunc
}

// NewDispatcher wires the event table over reg and out.
func NewDispatcher(reg *Registry, out Broadcaster, logger zerolog.Logger, m *metrics.Metrics) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		out:      out,
		log:      logger.With().Str("component", "dispatch").Logger(),
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
	d.handlers = map[string]handlerFunc{
		EventJoin:         d.handleJoin,
		EventChatMessage:  d.handleMessage,
		EventTyping:       d.handleTyping,
		EventRequestUsers: d.handleRequestUsers,
	}
	return d
}

// Dispatch runs the handler registered for f.Event. Unknown events and
// undecodable payloads are ignored.
func (d *Dispatcher) Dispatch(s *Session, f Frame) {
	h, ok := d.handlers[f.Event]
	if !ok {
		d.log.Debug().Str("conn", string(s.ID)).Str("event", f.Event).Msg("ignoring unknown event")
		return
	}
	h(s, f.Data)
}

func (d *Dispatcher) handleJoin(s *Session, data json.RawMessage) {
	var req JoinRequest
	if !d.decode(s, EventJoin, data, &req) {
		return
	}
	d.Join(s, req.Code, req.Username)
}

func (d *Dispatcher) handleMessage(s *Session, data json.RawMessage) {
	var body string
	if !d.decode(s, EventChatMessage, data, &body) {
		return
	}
	d.Message(s, body)
}

func (d *Dispatcher) handleTyping(s *Session, data json.RawMessage) {
	var typing bool
	if !d.decode(s, EventTyping, data, &typing) {
		return
	}
	d.Typing(s, typing)
}

func (d *Dispatcher) handleRequestUsers(s *Session, _ json.RawMessage) {
	d.RequestUsers(s)
}

func (d *Dispatcher) decode(s *Session, event string, data json.RawMessage, v any) bool {
	if len(data) == 0 {
		d.log.Debug().Str("conn", string(s.ID)).Str("event", event).Msg("ignoring event without payload")
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		d.log.Debug().Err(err).Str("conn", string(s.ID)).Str("event", event).Msg("ignoring malformed payload")
		return false
	}
	return true
}

// Join puts s into room code under username. A session already in another
// room leaves it first.
func (d *Dispatcher) Join(s *Session, code, username string) {
	if code == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if s.Joined() && s.Room != code {
		d.leave(s)
	}

	s.Name = displayName(username)
	s.Room = code
	// AddMember creates the room in the same critical section.
	d.registry.AddMember(code, s.ID, s.Name)

	d.out.BroadcastToRoom(code, SystemMessage(s.Name+" joined"), s.ID)
	d.out.SendToConnection(s.ID, SystemMessage("Welcome to chat: "+code))
}

// Message appends body to the sender's room and echoes it to every member,
// sender included.
func (d *Dispatcher) Message(s *Session, body string) {
	text := strings.TrimSpace(body)
	if text == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if !s.Joined() {
		return
	}
	msg := Message{Username: s.Name, Msg: text, Time: d.now()}
	if !d.registry.AppendMessage(s.Room, msg) {
		return
	}
	d.metrics.MessageRelayed()
	d.out.BroadcastToRoom(s.Room, Event{Name: EventChatMessage, Data: msg}, "")
}

// Typing tells the rest of the room that s is typing. A false signal is
// not forwarded.
func (d *Dispatcher) Typing(s *Session, typing bool) {
	if !typing {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if !s.Joined() {
		return
	}
	d.out.BroadcastToRoom(s.Room, Event{Name: EventUserTyping, Data: s.Name}, s.ID)
}

// RequestUsers replies to s with the names currently in its room.
func (d *Dispatcher) RequestUsers(s *Session) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !s.Joined() {
		return
	}
	names := d.registry.SnapshotNames(s.Room)
	listing := "nobody"
	if len(names) > 0 {
		listing = strings.Join(names, ", ")
	}
	d.out.SendToConnection(s.ID, SystemMessage("Users in chat: "+listing))
}

// Disconnect removes s from its room once its connection is gone.
func (d *Dispatcher) Disconnect(s *Session) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !s.Joined() {
		return
	}
	d.leave(s)
}

// leave must be called with d.mu held.
func (d *Dispatcher) leave(s *Session) {
	code := s.Room
	s.Room = ""

	removed, deleted := d.registry.Leave(code, s.ID)
	if !removed {
		return
	}
	d.out.BroadcastToRoom(code, SystemMessage(s.Name+" left"), s.ID)
	if !deleted {
		return
	}
	// The room is already gone, so this reaches nobody.
	d.out.BroadcastToRoom(code, Event{Name: EventChatClosed}, "")
	d.log.Info().Str("room", code).Msg("chat deleted")
}
