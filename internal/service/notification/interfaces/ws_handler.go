package interfaces

import (
	"net/http"
	"strconv"

	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/notification/application"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// WSHandler upgrades GET /ws?userId= into a push connection.
type WSHandler struct {
	hub *application.Hub
}

func NewWSHandler(hub *application.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

func (h *WSHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.serveWS)
}

func (h *WSHandler) serveWS(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid userId", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := h.hub.Register(userID, conn)
	go client.WritePump()
	logger.Ctx(r.Context()).Info().Int64("user_id", userID).Msg("websocket connected")

	// Read loop exists only to detect the close; clients never send.
	go func() {
		defer h.hub.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
