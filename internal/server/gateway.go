// Package server coordinates client registration, event dispatch, and
// connection cleanup for the chat WebSocket transport via the Gateway type.
package server

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Alfredbis29/hireme-chat-server/internal/chat"
	"github.com/Alfredbis29/hireme-chat-server/pkg/metrics"
)

// clientFrame couples a raw inbound frame with the client that sent it.
type clientFrame struct {
	client  *Client
	payload []byte
}

// Gateway is the transport adapter between WebSocket connections and the chat
// hub. It owns the connection table, forwards decoded frames to the hub, and
// fans the hub's computed deliveries back out over buffered per-client send
// channels. All shared state is mutex protected; the hub lock is never held
// while a network send is in flight.
type Gateway struct {
	hub      *chat.Hub
	metrics  *metrics.Metrics
	cfg      Config
	origins  *originPolicy
	upgrader websocket.Upgrader

	clients    map[string]*Client
	frames     chan clientFrame
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewGateway creates a Gateway bound to the given hub and metrics. A nil cfg
// selects defaults; invalid fields are sanitized.
func NewGateway(hub *chat.Hub, cfg *Config, m *metrics.Metrics) *Gateway {
	resolved := defaultConfig()
	if cfg != nil {
		resolved = *cfg
	}
	resolved = resolved.sanitized()

	if m == nil {
		m = metrics.New()
	}

	ctx, cancel := context.WithCancel(context.Background())
	g := &Gateway{
		hub:        hub,
		metrics:    m,
		cfg:        resolved,
		origins:    newOriginPolicy(resolved.AllowedOrigins),
		clients:    make(map[string]*Client),
		frames:     make(chan clientFrame),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     g.origins.checkOrigin,
	}
	return g
}

// GetRegisterChan returns the channel used for registering new clients.
// This channel is write-only from the caller's perspective.
func (g *Gateway) GetRegisterChan() chan<- *Client {
	return g.register
}

// GetUnregisterChan returns the channel used for unregistering clients.
// This channel is write-only from the caller's perspective.
func (g *Gateway) GetUnregisterChan() chan<- *Client {
	return g.unregister
}

// Run starts the gateway's main event loop, handling client registration,
// unregistration, and inbound frame dispatch. This method should be called
// in a separate goroutine as it runs indefinitely.
func (g *Gateway) Run() {
	defer close(g.done)

	for {
		select {
		case <-g.ctx.Done():
			g.shutdownClients()
			return

		case client := <-g.register:
			if client == nil {
				log.Printf("Received nil client registration; skipping")
				continue
			}
			g.addClient(client)

		case client := <-g.unregister:
			g.removeClient(client)
			g.deliver(g.hub.Disconnect(client.id))

		case frame := <-g.frames:
			g.metrics.EventsTotal.WithLabelValues(eventName(frame.payload)).Inc()
			g.deliver(g.hub.Dispatch(frame.client.id, frame.payload))
		}
	}
}

func (g *Gateway) addClient(client *Client) {
	g.mutex.Lock()
	client.closed = false
	g.clients[client.id] = client
	clientCount := len(g.clients)
	g.mutex.Unlock()
	log.Printf("Client %s registered from %s. Total clients: %d", client.id, client.addr, clientCount)
	g.metrics.ActiveConnections.Set(float64(clientCount))

	g.wg.Add(2)
	go func() {
		defer g.wg.Done()
		client.writePump()
	}()
	go func() {
		defer g.wg.Done()
		client.readPump()
	}()

	g.deliver(g.hub.Connect(client.id))
}

func (g *Gateway) removeClient(client *Client) {
	g.mutex.Lock()
	if current, ok := g.clients[client.id]; ok && current == client {
		delete(g.clients, client.id)
		client.closed = true
		clientCount := len(g.clients)
		g.mutex.Unlock()
		// Close the channel after releasing the lock
		close(client.send)
		log.Printf("Client %s unregistered from %s. Total clients: %d", client.id, client.addr, clientCount)
		g.metrics.ActiveConnections.Set(float64(clientCount))
	} else {
		g.mutex.Unlock()
	}
}

// deliver fans each hub-computed delivery out to its recipient set and
// evicts clients whose send buffers are full.
func (g *Gateway) deliver(deliveries []chat.Delivery) {
	for _, delivery := range deliveries {
		if len(delivery.Payload) == 0 || len(delivery.To) == 0 {
			continue
		}

		var clientsToRemove []*Client
		for _, id := range delivery.To {
			g.mutex.RLock()
			client := g.clients[id]
			g.mutex.RUnlock()
			if client == nil {
				continue
			}
			if g.safeSend(client, delivery.Payload) {
				g.metrics.DeliveriesTotal.Inc()
			} else {
				clientsToRemove = append(clientsToRemove, client)
			}
		}
		g.removeFailedClients(clientsToRemove)
	}
}

func (g *Gateway) safeSend(client *Client, message []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in safeSend: %v", r)
		}
	}()

	// Hold the lock during the entire send operation to prevent race conditions
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	current, exists := g.clients[client.id]
	if !exists || current != client || client.closed {
		return false
	}

	// Try to send the message (channel might be closed, so we need to recover from panic)
	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// removeFailedClients drops clients that could not receive a delivery and
// lets the hub announce their departure to the rest of their room.
func (g *Gateway) removeFailedClients(clientsToRemove []*Client) {
	if len(clientsToRemove) == 0 {
		return
	}

	g.mutex.Lock()
	var removed []*Client
	for _, client := range clientsToRemove {
		if current, exists := g.clients[client.id]; exists && current == client {
			delete(g.clients, client.id)
			client.closed = true
			removed = append(removed, client)
			log.Printf("Client %s from %s removed due to full send buffer", client.id, client.addr)
		}
	}
	clientCount := len(g.clients)
	g.mutex.Unlock()

	// Close channels after releasing the lock
	for _, client := range removed {
		close(client.send)
		g.metrics.EvictionsTotal.Inc()
		g.deliver(g.hub.Disconnect(client.id))
	}
	if len(removed) > 0 {
		g.metrics.ActiveConnections.Set(float64(clientCount))
	}
}

// shutdownClients gracefully closes all active client connections
func (g *Gateway) shutdownClients() {
	log.Println("Shutting down all client connections...")

	g.mutex.Lock()
	clients := make([]*Client, 0, len(g.clients))
	for _, client := range g.clients {
		clients = append(clients, client)
	}
	g.mutex.Unlock()

	// Close all client connections
	for _, client := range clients {
		if client.conn != nil {
			if err := client.conn.Close(); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("Error closing client connection from %s: %v", client.addr, err)
				}
			}
		}
	}

	log.Printf("Closed %d client connections", len(clients))
}

// Shutdown initiates graceful shutdown of the gateway and waits for all
// goroutines to complete. It returns after all client connections are closed
// and pump goroutines have finished, or when the timeout is reached.
func (g *Gateway) Shutdown(timeout time.Duration) error {
	log.Println("Initiating gateway shutdown...")

	// Signal shutdown
	g.cancel()

	// Wait for Run() to complete
	<-g.done

	// Wait for all client goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Gateway shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Gateway shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}

// eventName peeks at a frame's event field for metrics labeling.
func eventName(frame []byte) string {
	var env struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(frame, &env); err != nil || env.Event == "" {
		return "unknown"
	}
	return env.Event
}
