package routes

import (
	"github.com/gin-gonic/gin"

	"crewlink-server/services/messaging-api/internal/interfaces/httpserver/handlers"
	v1 "crewlink-server/services/messaging-api/internal/interfaces/httpserver/routes/v1"
)

// Provider coordinates all route registrations.
type Provider struct {
	V1 *v1.Routes
}

// NewProvider constructs the route provider.
func NewProvider(handlerProvider *handlers.Provider) *Provider {
	return &Provider{
		V1: v1.NewRoutes(handlerProvider),
	}
}

// Register attaches all protected routes to the router group.
func (p *Provider) Register(router gin.IRouter) {
	p.V1.Register(router)
}
