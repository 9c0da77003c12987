// Package requests defines the request payloads accepted by the HTTP API.
package requests

// CreateConversationRequest opens (or returns) the conversation with another user.
type CreateConversationRequest struct {
	CounterpartyID uint `json:"counterparty_id" binding:"required"`
}

// SendMessageRequest appends a message to a conversation.
type SendMessageRequest struct {
	Body          string  `json:"body" binding:"required"`
	ContentType   string  `json:"content_type"`
	AttachmentURL *string `json:"attachment_url"`
}

// MarkReadRequest acknowledges messages up to an optional cursor. Without a
// message id the whole conversation is marked read.
type MarkReadRequest struct {
	MessageID *string `json:"message_id"`
}

// ArchiveRequest sets the caller's archive flag on a conversation.
type ArchiveRequest struct {
	Archived *bool `json:"archived" binding:"required"`
}
