package websocket

import (
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/lockedin-be/internal/metrics"
)

type directMessage struct {
	userID string
	data   []byte
}

type replyMessage struct {
	client *Client
	data   []byte
}

// Hub maintains the set of active clients and routes messages to them.
// Only Run touches the client maps and sends on or closes a client's Send.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// User IDs to the set of connections of that user.
	subscriptions map[string]map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	broadcast chan []byte
	direct    chan directMessage
	replies   chan replyMessage
	quit      chan struct{}

	count atomic.Int64
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		broadcast:     make(chan []byte, 256),
		direct:        make(chan directMessage, 256),
		replies:       make(chan replyMessage, 256),
		quit:          make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			h.addSubscription(client)
			h.updateCount()
			log.Info().Str("user_id", client.UserID).Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Str("user_id", client.UserID).Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				h.deliver(client, message)
			}
		case msg := <-h.direct:
			for client := range h.subscriptions[msg.userID] {
				h.deliver(client, msg.data)
			}
		case msg := <-h.replies:
			// the client may have been dropped since it queued the reply
			if h.clients[msg.client] {
				h.deliver(msg.client, msg.data)
			}
		case <-h.quit:
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// Add registers a client unless the hub has stopped.
func (h *Hub) Add(client *Client) {
	select {
	case h.Register <- client:
	case <-h.quit:
		close(client.Send)
	}
}

// Remove unregisters a client unless the hub has stopped.
func (h *Hub) Remove(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.quit:
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.quit)
}

// ClientCount is the number of registered connections.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// NotifyUser sends an action to every connection of one user.
func (h *Hub) NotifyUser(userID, action string, payload interface{}) {
	data, err := NewMessage(action, payload)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode websocket message")
		return
	}
	select {
	case h.direct <- directMessage{userID: userID, data: data}:
	case <-h.quit:
	}
}

// Broadcast sends an action to every connected client.
func (h *Hub) Broadcast(action string, payload interface{}) {
	data, err := NewMessage(action, payload)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode websocket message")
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.quit:
	}
}

// reply hands a message for one client to Run.
func (h *Hub) reply(client *Client, data []byte) {
	select {
	case h.replies <- replyMessage{client: client, data: data}:
	case <-h.quit:
	}
}

// deliver queues a message, dropping clients that cannot keep up.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		log.Warn().Str("user_id", client.UserID).Msg("Dropping slow websocket client")
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.Send)
	h.removeSubscription(client)
	h.updateCount()
}

func (h *Hub) addSubscription(client *Client) {
	if h.subscriptions[client.UserID] == nil {
		h.subscriptions[client.UserID] = make(map[*Client]bool)
	}
	h.subscriptions[client.UserID][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	if subs, ok := h.subscriptions[client.UserID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, client.UserID)
		}
	}
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.SetWebsocketClients(len(h.clients))
}
