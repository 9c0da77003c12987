package entities

import (
	"time"

	"crewlink-server/services/messaging-api/internal/domain/chat"
	"crewlink-server/services/messaging-api/internal/domain/user"
)

// Conversation represents the database schema for direct conversations. The
// participant pair is stored in canonical order and backed by a unique index
// so concurrent first contact cannot create duplicates.
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Type     string `gorm:"type:varchar(40);not null;default:'contractor_subcontractor'"`
	UserLoID uint   `gorm:"uniqueIndex:idx_conversation_pair;not null"`
	UserHiID uint   `gorm:"uniqueIndex:idx_conversation_pair;not null"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversations"
}

// ConversationParticipant stores per-user conversation state.
type ConversationParticipant struct {
	ConversationID uint      `gorm:"primaryKey;autoIncrement:false"`
	UserID         uint      `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`

	Role              string     `gorm:"type:varchar(32);not null"`
	JoinedAt          time.Time  `gorm:"not null"`
	LastReadMessageID *uint      ``
	LastReadAt        *time.Time ``
	UnreadCount       int        `gorm:"not null;default:0;check:unread_count >= 0"`
	IsArchived        bool       `gorm:"not null;default:false"`
}

// TableName specifies the table name for ConversationParticipant.
func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}

// Message stores each ledger entry. The (conversation_id, created_at, id)
// index serves keyset pagination.
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index:idx_message_conversation_page,priority:2"`

	PublicID       string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	ConversationID uint       `gorm:"index:idx_message_conversation_page,priority:1;not null"`
	SenderID       uint       `gorm:"index;not null"`
	Body           string     `gorm:"type:text;not null"`
	ContentType    string     `gorm:"type:varchar(20);not null;default:'text'"`
	AttachmentURL  *string    `gorm:"type:varchar(1024)"`
	DeliveredAt    *time.Time ``
	ReadAt         *time.Time ``
}

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// EtoD converts database entity to domain model.
func (c *Conversation) EtoD() *chat.Conversation {
	return &chat.Conversation{
		ID:        c.ID,
		PublicID:  c.PublicID,
		Type:      chat.ConversationType(c.Type),
		UserLoID:  c.UserLoID,
		UserHiID:  c.UserHiID,
		CreatedAt: c.CreatedAt,
	}
}

// NewSchemaConversation creates a database entity from domain model.
func NewSchemaConversation(c *chat.Conversation) *Conversation {
	return &Conversation{
		ID:        c.ID,
		PublicID:  c.PublicID,
		Type:      string(c.Type),
		UserLoID:  c.UserLoID,
		UserHiID:  c.UserHiID,
		CreatedAt: c.CreatedAt,
	}
}

// EtoD converts database entity to domain model.
func (p *ConversationParticipant) EtoD() *chat.Participant {
	return &chat.Participant{
		ConversationID:    p.ConversationID,
		UserID:            p.UserID,
		Role:              user.Role(p.Role),
		JoinedAt:          p.JoinedAt,
		LastReadMessageID: p.LastReadMessageID,
		LastReadAt:        p.LastReadAt,
		UnreadCount:       p.UnreadCount,
		IsArchived:        p.IsArchived,
	}
}

// NewSchemaParticipant creates a database entity from domain model.
func NewSchemaParticipant(p *chat.Participant) *ConversationParticipant {
	return &ConversationParticipant{
		ConversationID:    p.ConversationID,
		UserID:            p.UserID,
		Role:              string(p.Role),
		JoinedAt:          p.JoinedAt,
		LastReadMessageID: p.LastReadMessageID,
		LastReadAt:        p.LastReadAt,
		UnreadCount:       p.UnreadCount,
		IsArchived:        p.IsArchived,
	}
}

// EtoD converts database entity to domain model.
func (m *Message) EtoD() *chat.Message {
	return &chat.Message{
		ID:             m.ID,
		PublicID:       m.PublicID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		ContentType:    chat.ContentType(m.ContentType),
		AttachmentURL:  m.AttachmentURL,
		CreatedAt:      m.CreatedAt,
		DeliveredAt:    m.DeliveredAt,
		ReadAt:         m.ReadAt,
	}
}

// NewSchemaMessage creates a database entity from domain model.
func NewSchemaMessage(m *chat.Message) *Message {
	return &Message{
		ID:             m.ID,
		PublicID:       m.PublicID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		ContentType:    string(m.ContentType),
		AttachmentURL:  m.AttachmentURL,
		CreatedAt:      m.CreatedAt,
		DeliveredAt:    m.DeliveredAt,
		ReadAt:         m.ReadAt,
	}
}
