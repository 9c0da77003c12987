package v1

import (
	"github.com/gin-gonic/gin"

	"crewlink-server/services/messaging-api/internal/interfaces/httpserver/handlers"
)

func registerChatRoutes(router gin.IRoutes, handler *handlers.ChatHandler) {
	router.POST("/chat/conversations", handler.CreateConversation)
	router.GET("/chat/conversations", handler.ListConversations)
	router.GET("/chat/conversations/:conversation_id/messages", handler.ListMessages)
	router.POST("/chat/conversations/:conversation_id/messages", handler.SendMessage)
	router.POST("/chat/conversations/:conversation_id/read", handler.MarkRead)
	router.POST("/chat/conversations/:conversation_id/archive", handler.Archive)
}
