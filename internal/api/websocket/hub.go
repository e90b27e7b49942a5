package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Client represents a connected WebSocket client
type Client struct {
	conn         *websocket.Conn
	generationID string
	send         chan []byte
}

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by generation ID
	clients map[string]map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Guard clients map
	mu sync.RWMutex
}

// NewHub creates a new websocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's message handling loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[client.generationID]; !ok {
				h.clients[client.generationID] = make(map[*Client]bool)
			}
			h.clients[client.generationID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.generationID]; ok {
				delete(h.clients[client.generationID], client)
				close(client.send)

				// If no more clients for this generation, remove the map
				if len(h.clients[client.generationID]) == 0 {
					delete(h.clients, client.generationID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register registers a new client connection
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client connection
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastToGeneration sends a message to all clients following a generation
func (h *Hub) BroadcastToGeneration(generationID string, message Message) {
	messageJSON, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshalling WebSocket message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.clients[generationID]
	if !ok {
		return // No clients for this generation
	}

	for client := range clients {
		select {
		case client.send <- messageJSON:
			// Message sent successfully
		default:
			// Client's send buffer is full, unregister
			go h.Unregister(client)
		}
	}
}

// HandleConnection handles an incoming WebSocket connection
func (h *Hub) HandleConnection(conn *websocket.Conn, generationID string) {
	client := &Client{
		conn:         conn,
		generationID: generationID,
		send:         make(chan []byte, 256),
	}

	h.Register(client)

	// Send initial status
	initialMsg := Message{
		Type: "connected",
		Data: map[string]interface{}{
			"generation_id": generationID,
			"status":        "connected",
		},
	}
	msgJSON, _ := json.Marshal(initialMsg)
	client.send <- msgJSON

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump(h)
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
	}()

	for {
		message, ok := <-c.send
		if !ok {
			// Hub closed the channel
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		err := c.conn.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			return
		}
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		// Incoming messages are ignored, the stream is one-way
	}
}
