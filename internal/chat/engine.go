package chat

import (
	"github.com/rs/zerolog"

	"github.com/Tyrowin/roomrelay/internal/metrics"
)

// Transport pushes an encoded frame to one connection without waiting. It
// returns false when the frame was dropped.
type Transport interface {
	Deliver(id ConnID, frame []byte) bool
}

// Broadcaster fans events out to room members or single connections.
// Implementations must not block the caller on slow receivers.
type Broadcaster interface {
	BroadcastToRoom(code string, ev Event, except ConnID)
	SendToConnection(id ConnID, ev Event)
}

// Engine is the fire-and-forget Broadcaster. Room membership is read from
// the registry at call time.
type Engine struct {
	registry  *Registry
	transport Transport
	log       zerolog.Logger
	metrics   *metrics.Metrics
}

var _ Broadcaster = (*Engine)(nil)

// NewEngine creates an Engine delivering through t.
func NewEngine(reg *Registry, t Transport, logger zerolog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		registry:  reg,
		transport: t,
		log:       logger.With().Str("component", "broadcast").Logger(),
		metrics:   m,
	}
}

// BroadcastToRoom delivers ev to every member of code except the given
// connection. An empty except excludes nobody.
func (e *Engine) BroadcastToRoom(code string, ev Event, except ConnID) {
	members := e.registry.Members(code)
	if len(members) == 0 {
		return
	}
	frame, ok := e.encode(ev)
	if !ok {
		return
	}
	for _, id := range members {
		if except != "" && id == except {
			continue
		}
		e.deliver(id, ev.Name, frame)
	}
}

// SendToConnection delivers ev to a single connection.
func (e *Engine) SendToConnection(id ConnID, ev Event) {
	frame, ok := e.encode(ev)
	if !ok {
		return
	}
	e.deliver(id, ev.Name, frame)
}

func (e *Engine) encode(ev Event) ([]byte, bool) {
	frame, err := Encode(ev)
	if err != nil {
		e.log.Error().Err(err).Str("event", ev.Name).Msg("dropping unencodable event")
		return nil, false
	}
	return frame, true
}

func (e *Engine) deliver(id ConnID, name string, frame []byte) {
	if !e.transport.Deliver(id, frame) {
		e.metrics.DeliveryDropped()
		e.log.Debug().Str("conn", string(id)).Str("event", name).Msg("delivery dropped")
	}
}
