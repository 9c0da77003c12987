package handlers

import (
	"github.com/rs/zerolog"

	"crewlink-server/services/messaging-api/internal/config"
	"crewlink-server/services/messaging-api/internal/domain/chat"
	"crewlink-server/services/messaging-api/internal/domain/user"
	"crewlink-server/services/messaging-api/internal/infrastructure/auth"
	"crewlink-server/services/messaging-api/internal/realtime"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Chat      *ChatHandler
	WebSocket *WebSocketHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	cfg *config.Config,
	chatService chat.Service,
	users user.Repository,
	verifier *auth.Verifier,
	hub *realtime.Hub,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Chat:      NewChatHandler(chatService, users, log),
		WebSocket: NewWebSocketHandler(cfg, verifier, users, hub, log),
	}
}
