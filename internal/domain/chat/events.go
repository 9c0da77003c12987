package chat

// Event names pushed over the websocket.
const (
	EventConnectionEstablished = "connection.established"
	EventConversationCreated   = "conversation.created"
	EventMessageCreated        = "message.created"
	EventConversationRead      = "conversation.read"
)

// Event is a payload deliverable over a live connection. EventName doubles
// as the "event" field of the serialized JSON.
type Event interface {
	EventName() string
}

// ConnectionEstablishedEvent greets a freshly opened connection.
type ConnectionEstablishedEvent struct {
	Event string `json:"event"`
}

// NewConnectionEstablished builds the handshake greeting.
func NewConnectionEstablished() ConnectionEstablishedEvent {
	return ConnectionEstablishedEvent{Event: EventConnectionEstablished}
}

func (ConnectionEstablishedEvent) EventName() string { return EventConnectionEstablished }

// ConversationCreatedEvent notifies the counterpart about a new conversation.
type ConversationCreatedEvent struct {
	Event        string               `json:"event"`
	Conversation *ConversationSummary `json:"conversation"`
}

// NewConversationCreated wraps a summary in its event envelope.
func NewConversationCreated(summary *ConversationSummary) ConversationCreatedEvent {
	return ConversationCreatedEvent{Event: EventConversationCreated, Conversation: summary}
}

func (ConversationCreatedEvent) EventName() string { return EventConversationCreated }

// MessageCreatedEvent carries a freshly appended message to its recipients.
type MessageCreatedEvent struct {
	Event   string       `json:"event"`
	Message *MessageView `json:"message"`
}

// NewMessageCreated wraps a message view in its event envelope.
func NewMessageCreated(view *MessageView) MessageCreatedEvent {
	return MessageCreatedEvent{Event: EventMessageCreated, Message: view}
}

func (MessageCreatedEvent) EventName() string { return EventMessageCreated }

// ConversationReadEvent tells the other participant their messages were read.
type ConversationReadEvent struct {
	Event          string  `json:"event"`
	ConversationID string  `json:"conversation_id"`
	UserID         uint    `json:"user_id"`
	MessageID      *string `json:"message_id"`
}

// NewConversationRead builds the read acknowledgement event.
func NewConversationRead(conversationID string, userID uint, messageID *string) ConversationReadEvent {
	return ConversationReadEvent{
		Event:          EventConversationRead,
		ConversationID: conversationID,
		UserID:         userID,
		MessageID:      messageID,
	}
}

func (ConversationReadEvent) EventName() string { return EventConversationRead }
