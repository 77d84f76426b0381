// Package server coordinates client registration, frame delivery, and
// connection cleanup for the relay via the Hub type.
package server

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tyrowin/roomrelay/internal/chat"
	"github.com/Tyrowin/roomrelay/internal/metrics"
)

// Hub is the transport adapter. It tracks live WebSocket clients by
// connection id, delivers encoded frames to them, and reports each closed
// connection to its EventHandler exactly once.
type Hub struct {
	clients    map[chat.ConnID]*Client
	register   chan *Client
	unregister chan *Client
	handler    EventHandler
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	log        zerolog.Logger
	metrics    *metrics.Metrics
}

var _ chat.Transport = (*Hub)(nil)

// NewHub creates a Hub. SetHandler must be called before Run.
func NewHub(logger zerolog.Logger, m *metrics.Metrics) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[chat.ConnID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		log:        logger.With().Str("component", "hub").Logger(),
		metrics:    m,
	}
}

// SetHandler installs the consumer of client events.
func (h *Hub) SetHandler(handler EventHandler) {
	h.handler = handler
}

// Register hands a new client to the hub, which starts its pumps. It
// returns false once the hub is shutting down.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// unregisterClient is called by a read pump on exit.
func (h *Hub) unregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		h.removeClient(client)
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Deliver queues frame for the client with the given id without blocking.
// Unknown, closed, or saturated clients drop the frame.
func (h *Hub) Deliver(id chat.ConnID, frame []byte) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	client, exists := h.clients[id]
	if !exists || client.closed {
		return false
	}

	select {
	case client.send <- frame:
		return true
	default:
		return false
	}
}

// Run starts the hub's event loop, handling client registration and
// unregistration until Shutdown is called.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				h.log.Warn().Msg("received nil client registration; skipping")
				continue
			}
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mutex.Lock()
	client.closed = false
	h.clients[client.ID()] = client
	clientCount := len(h.clients)
	h.mutex.Unlock()

	h.metrics.ConnectionOpened()
	client.log.Info().Int("clients", clientCount).Msg("client registered")

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

// removeClient forgets the client, closes its send queue and reports the
// disconnect. Repeated calls for the same client are no-ops.
func (h *Hub) removeClient(client *Client) {
	h.mutex.Lock()
	if current, ok := h.clients[client.ID()]; !ok || current != client {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, client.ID())
	client.closed = true
	clientCount := len(h.clients)
	h.mutex.Unlock()

	// Closed after releasing the lock; Deliver checks client.closed first.
	close(client.send)
	h.metrics.ConnectionClosed()
	client.log.Info().Int("clients", clientCount).Msg("client unregistered")

	if h.handler != nil {
		h.handler.Disconnect(client.session)
	}
}

// shutdownClients closes every active connection. Each read pump then
// unregisters its client.
func (h *Hub) shutdownClients() {
	h.log.Info().Msg("shutting down all client connections")

	h.mutex.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.RUnlock()

	for _, client := range clients {
		if client.conn != nil {
			if err := client.conn.Close(); err != nil {
				if !isExpectedCloseError(err) {
					client.log.Warn().Err(err).Msg("closing client connection")
				}
			}
		}
	}

	h.log.Info().Int("clients", len(clients)).Msg("closed client connections")
}

// Shutdown stops the hub and waits for all client goroutines to finish,
// or until the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info().Msg("initiating hub shutdown")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info().Msg("hub shutdown completed")
		return nil
	case <-time.After(timeout):
		h.log.Warn().Msg("hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
