package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SportsAmigo/SportsAmigo-sub000/middleware"
	"github.com/SportsAmigo/SportsAmigo-sub000/notify"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware; the
	// upgrade itself accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebsocketHandler struct {
	hub    *notify.Hub
	logger *slog.Logger
}

func NewWebsocketHandler(hub *notify.Hub, logger *slog.Logger) *WebsocketHandler {
	return &WebsocketHandler{hub: hub, logger: logger}
}

// Serve upgrades the connection and subscribes the authenticated user to
// their notification room.
func (h *WebsocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err, "user_id", userID)
		return
	}

	client := notify.NewClient(h.hub, conn, userID)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
