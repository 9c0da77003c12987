package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"crewlink-server/services/messaging-api/internal/domain"
	"crewlink-server/services/messaging-api/internal/domain/chat"
	"crewlink-server/services/messaging-api/internal/domain/user"
	"crewlink-server/services/messaging-api/internal/infrastructure/metrics"
	"crewlink-server/services/messaging-api/internal/interfaces/httpserver/middlewares"
	"crewlink-server/services/messaging-api/internal/interfaces/httpserver/requests"
	"crewlink-server/services/messaging-api/internal/interfaces/httpserver/responses"
	"crewlink-server/services/messaging-api/internal/utils/platformerrors"
)

// ChatHandler exposes HTTP entrypoints for conversations and messages.
type ChatHandler struct {
	service chat.Service
	users   user.Repository
	log     zerolog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(service chat.Service, users user.Repository, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		users:   users,
		log:     log.With().Str("handler", "chat").Logger(),
	}
}

func (h *ChatHandler) principal(c *gin.Context) *domain.Principal {
	principal := middlewares.PrincipalFromContext(c)
	if principal == nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "chat-no-principal")
		return nil
	}
	return principal
}

// CreateConversation handles POST /v1/chat/conversations
func (h *ChatHandler) CreateConversation(c *gin.Context) {
	principal := h.principal(c)
	if principal == nil {
		return
	}

	var req requests.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "create-conversation-bind")
		return
	}

	caller, err := h.users.FindByID(c.Request.Context(), principal.UserID)
	if err != nil {
		responses.HandleError(c, err, "failed to load caller")
		return
	}

	summary, created, err := h.service.CreateConversation(c.Request.Context(), caller, req.CounterpartyID)
	if err != nil {
		responses.HandleError(c, err, "failed to create conversation")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, responses.ConversationCreatedResponse{Conversation: summary})
}

// ListConversations handles GET /v1/chat/conversations
func (h *ChatHandler) ListConversations(c *gin.Context) {
	principal := h.principal(c)
	if principal == nil {
		return
	}

	summaries, err := h.service.ListConversations(c.Request.Context(), principal.UserID)
	if err != nil {
		responses.HandleError(c, err, "failed to list conversations")
		return
	}
	if summaries == nil {
		summaries = []*chat.ConversationSummary{}
	}

	c.JSON(http.StatusOK, responses.ConversationListResponse{Conversations: summaries})
}

// ListMessages handles GET /v1/chat/conversations/:conversation_id/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	principal := h.principal(c)
	if principal == nil {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "limit must be an integer", "list-messages-limit")
			return
		}
		limit = parsed
	}

	page, err := h.service.ListMessages(
		c.Request.Context(),
		principal.UserID,
		c.Param("conversation_id"),
		c.Query("before_id"),
		limit,
	)
	if err != nil {
		responses.HandleError(c, err, "failed to list messages")
		return
	}
	if page.Messages == nil {
		page.Messages = []*chat.MessageView{}
	}

	c.JSON(http.StatusOK, page)
}

// SendMessage handles POST /v1/chat/conversations/:conversation_id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	principal := h.principal(c)
	if principal == nil {
		return
	}

	var req requests.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "send-message-bind")
		return
	}

	view, err := h.service.SendMessage(
		c.Request.Context(),
		principal.UserID,
		c.Param("conversation_id"),
		req.Body,
		chat.ContentType(req.ContentType),
		req.AttachmentURL,
	)
	if err != nil {
		responses.HandleError(c, err, "failed to send message")
		return
	}

	metrics.RecordMessageSent(view.ContentType)
	c.JSON(http.StatusCreated, responses.MessageCreatedResponse{Message: view})
}

// MarkRead handles POST /v1/chat/conversations/:conversation_id/read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	principal := h.principal(c)
	if principal == nil {
		return
	}

	// An empty body means "mark everything read".
	var req requests.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "mark-read-bind")
		return
	}

	receipt, err := h.service.MarkRead(c.Request.Context(), principal.UserID, c.Param("conversation_id"), req.MessageID)
	if err != nil {
		responses.HandleError(c, err, "failed to mark conversation read")
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// Archive handles POST /v1/chat/conversations/:conversation_id/archive
func (h *ChatHandler) Archive(c *gin.Context) {
	principal := h.principal(c)
	if principal == nil {
		return
	}

	var req requests.ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "archive-bind")
		return
	}

	if err := h.service.SetArchived(c.Request.Context(), principal.UserID, c.Param("conversation_id"), *req.Archived); err != nil {
		responses.HandleError(c, err, "failed to update archive state")
		return
	}

	c.JSON(http.StatusOK, gin.H{"archived": *req.Archived})
}
