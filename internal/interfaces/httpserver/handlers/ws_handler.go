package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"crewlink-server/services/messaging-api/internal/config"
	"crewlink-server/services/messaging-api/internal/domain/chat"
	"crewlink-server/services/messaging-api/internal/domain/user"
	"crewlink-server/services/messaging-api/internal/infrastructure/auth"
	"crewlink-server/services/messaging-api/internal/realtime"
)

// WebSocketHandler upgrades authenticated clients into live hub sessions.
type WebSocketHandler struct {
	verifier *auth.Verifier
	users    user.Repository
	hub      *realtime.Hub
	opts     realtime.Options
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewWebSocketHandler constructs the handler.
func NewWebSocketHandler(cfg *config.Config, verifier *auth.Verifier, users user.Repository, hub *realtime.Hub, log zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		verifier: verifier,
		users:    users,
		hub:      hub,
		opts: realtime.Options{
			WriteTimeout: cfg.WSWriteTimeout,
			PongTimeout:  cfg.WSPongTimeout,
			SendBuffer:   cfg.WSSendBuffer,
		},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Cross-origin access is controlled at the gateway.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log.With().Str("handler", "websocket").Logger(),
	}
}

// Serve handles GET /ws. Browsers cannot set headers on websocket requests,
// so the token travels as a query parameter.
func (h *WebSocketHandler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	email, err := h.verifier.Decode(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	account, err := h.users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := realtime.NewConnection(ws, account.ID, h.opts, h.log)
	h.hub.Register(conn)

	if payload, err := json.Marshal(chat.NewConnectionEstablished()); err == nil {
		_ = conn.Send(payload)
	}

	go conn.WritePump()
	go func() {
		conn.ReadLoop()
		h.hub.Unregister(conn)
	}()
}
