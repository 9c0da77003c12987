// Package chat implements the messaging core: direct conversations between a
// contractor and a subcontractor, the append-only message ledger with unread
// accounting, and the realtime fan-out contract.
package chat

import (
	"context"
	"time"

	"crewlink-server/services/messaging-api/internal/domain/user"
)

// ConversationType is the kind of conversation. Only direct
// contractor-subcontractor conversations exist today.
type ConversationType string

const ConversationTypeContractorSubcontractor ConversationType = "contractor_subcontractor"

// ContentType classifies a message body.
type ContentType string

const (
	ContentTypeText   ContentType = "text"
	ContentTypeImage  ContentType = "image"
	ContentTypeFile   ContentType = "file"
	ContentTypeSystem ContentType = "system"
)

// Valid reports whether c is a known content type.
func (c ContentType) Valid() bool {
	switch c {
	case ContentTypeText, ContentTypeImage, ContentTypeFile, ContentTypeSystem:
		return true
	}
	return false
}

// Conversation is a direct channel between exactly two users. The pair is
// stored in canonical order (UserLoID < UserHiID) so the unique index over
// the two columns makes the pair a natural key.
type Conversation struct {
	ID        uint
	PublicID  string
	Type      ConversationType
	UserLoID  uint
	UserHiID  uint
	CreatedAt time.Time
}

// OtherUserID returns the counterpart of userID in the conversation pair.
func (c *Conversation) OtherUserID(userID uint) uint {
	if c.UserLoID == userID {
		return c.UserHiID
	}
	return c.UserLoID
}

// HasUser reports whether userID is one of the two participants.
func (c *Conversation) HasUser(userID uint) bool {
	return c.UserLoID == userID || c.UserHiID == userID
}

// Participant is a user's per-conversation state: role at join time, the
// unread counter and the read cursor.
type Participant struct {
	ConversationID    uint
	UserID            uint
	Role              user.Role
	JoinedAt          time.Time
	LastReadMessageID *uint
	LastReadAt        *time.Time
	UnreadCount       int
	IsArchived        bool
}

// Message is one ledger entry. ID is the insertion-ordered primary key used
// as the pagination tie-breaker; PublicID is the API-facing identifier.
type Message struct {
	ID             uint
	PublicID       string
	ConversationID uint
	SenderID       uint
	Body           string
	ContentType    ContentType
	AttachmentURL  *string
	CreatedAt      time.Time
	DeliveredAt    *time.Time
	ReadAt         *time.Time
}

// ConversationRepository defines storage operations for conversations and
// their participant rows.
type ConversationRepository interface {
	// Create persists the conversation and both participant rows in one
	// transaction. Returns a Conflict error when the canonical pair already
	// exists.
	Create(ctx context.Context, conv *Conversation, participants []*Participant) error
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	// FindByPair looks up the conversation for a canonically ordered pair.
	// Returns a NotFound error when no conversation exists.
	FindByPair(ctx context.Context, userLoID, userHiID uint) (*Conversation, error)
	// ListForUser returns the user's conversations with the matching
	// participant row, excluding archived ones.
	ListForUser(ctx context.Context, userID uint) ([]*Conversation, []*Participant, error)
	Participants(ctx context.Context, conversationID uint) ([]*Participant, error)
	// FindParticipant returns a NotFound error when the user is not a member.
	FindParticipant(ctx context.Context, conversationID, userID uint) (*Participant, error)
	SetArchived(ctx context.Context, conversationID, userID uint, archived bool) error
}

// MessageRepository defines storage operations for the message ledger.
type MessageRepository interface {
	// Append inserts the message and increments the unread counter of every
	// recipient in one transaction.
	Append(ctx context.Context, msg *Message, recipientIDs []uint) error
	FindByPublicID(ctx context.Context, conversationID uint, publicID string) (*Message, error)
	// ListBefore returns up to limit messages strictly older than before in
	// descending ledger order. A nil before starts from the newest message.
	ListBefore(ctx context.Context, conversationID uint, before *Message, limit int) ([]*Message, error)
	// Latest returns the newest message, or (nil, nil) for an empty ledger.
	Latest(ctx context.Context, conversationID uint) (*Message, error)
	// MarkRead resets the reader's unread counter, advances the read cursor
	// and stamps read_at on messages not sent by the reader, all in one
	// transaction.
	MarkRead(ctx context.Context, conversationID, readerID uint, lastRead *Message, readAt time.Time) error
}

// Publisher delivers an event to the live connections of a set of users.
// Implementations must not block the caller.
type Publisher interface {
	Publish(userIDs []uint, event Event)
}

// MediaResolver turns a stored image path into a URL clients can fetch.
type MediaResolver interface {
	ResolveURL(path string) *string
}
