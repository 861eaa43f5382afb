package notify

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
)

// Hub fans outbound events out to connected websocket clients. Each client
// subscribes to the room of its own user ID, so a published event reaches
// every session the recipient has open.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.mu.Unlock()
			h.logger.Debug("notify client registered", slog.String("room", client.room))

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, okClient := clients[client]; okClient {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Debug("notify client unregistered", slog.String("room", client.room))
		}
	}
}

// Publish implements Publisher. Events for recipients with no open session
// are dropped; notifications are best-effort.
func (h *Hub) Publish(userID int, event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal notify event", slog.String("type", event.Type), slog.Any("error", err))
		return
	}

	room := roomForUser(userID)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		select {
		case client.send <- message:
		default:
			// Slow client; skip rather than block the publisher.
		}
	}
}

func roomForUser(userID int) string {
	return "user_" + strconv.Itoa(userID)
}
