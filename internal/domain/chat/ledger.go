package chat

import (
	"context"
	"strings"
	"time"

	"crewlink-server/services/messaging-api/internal/utils/idgen"
	"crewlink-server/services/messaging-api/internal/utils/platformerrors"
)

const (
	messageIDPrefix = "msg"

	// Pagination limits. A request outside [1, MaxPageLimit] is clamped.
	DefaultPageLimit = 50
	MaxPageLimit     = 100

	maxBodyLength = 4000
)

// Ledger owns the append-only message history of a conversation and the
// per-participant unread accounting.
type Ledger struct {
	messages      MessageRepository
	conversations ConversationRepository
}

// NewLedger builds a Ledger.
func NewLedger(messages MessageRepository, conversations ConversationRepository) *Ledger {
	return &Ledger{messages: messages, conversations: conversations}
}

// ClampLimit normalizes a requested page size into [1, MaxPageLimit]. Zero or
// negative values fall back to the default.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

// Append validates and persists a message from sender, incrementing the
// unread counter of every other participant in the same transaction. It
// returns the stored message and the recipient ids for fan-out.
func (l *Ledger) Append(ctx context.Context, conv *Conversation, senderID uint, body string, contentType ContentType, attachmentURL *string) (*Message, []uint, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"message body must not be empty", nil, "")
	}
	if len(body) > maxBodyLength {
		return nil, nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"message body exceeds maximum length", nil, "")
	}
	if contentType == "" {
		contentType = ContentTypeText
	}
	if !contentType.Valid() {
		return nil, nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"unknown content type", nil, "")
	}

	publicID, err := idgen.GenerateSecureID(messageIDPrefix, 16)
	if err != nil {
		return nil, nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate message id")
	}

	msg := &Message{
		PublicID:       publicID,
		ConversationID: conv.ID,
		SenderID:       senderID,
		Body:           body,
		ContentType:    contentType,
		AttachmentURL:  attachmentURL,
		CreatedAt:      time.Now().UTC(),
	}
	recipients := []uint{conv.OtherUserID(senderID)}

	if err := l.messages.Append(ctx, msg, recipients); err != nil {
		return nil, nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to append message")
	}
	return msg, recipients, nil
}

// Page is one slice of conversation history in ascending ledger order.
type Page struct {
	Messages []*Message
	HasMore  bool
}

// ListPage returns up to limit messages older than beforePublicID (or the
// newest messages when beforePublicID is empty), oldest first. HasMore
// reports whether older history remains beyond the returned slice.
func (l *Ledger) ListPage(ctx context.Context, conv *Conversation, beforePublicID string, limit int) (*Page, error) {
	limit = ClampLimit(limit)

	var before *Message
	if beforePublicID != "" {
		cursor, err := l.messages.FindByPublicID(ctx, conv.ID, beforePublicID)
		if err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to resolve pagination cursor")
		}
		before = cursor
	}

	// Fetch one extra row to detect whether older history remains.
	rows, err := l.messages.ListBefore(ctx, conv.ID, before, limit+1)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list messages")
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	// Rows arrive newest first; the API contract is ascending ledger order.
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return &Page{Messages: rows, HasMore: hasMore}, nil
}

// Receipt describes the outcome of a read acknowledgement.
type Receipt struct {
	ConversationID    string
	ReaderID          uint
	LastReadMessageID *string
	ReadAt            time.Time
}

// MarkRead resets the reader's unread counter and stamps read_at on messages
// from the counterpart. When upToPublicID is nil the cursor advances to the
// newest message. It returns the receipt and the ids of the other
// participants to notify. Acknowledging an empty conversation still resets
// the counter.
func (l *Ledger) MarkRead(ctx context.Context, conv *Conversation, readerID uint, upToPublicID *string) (*Receipt, []uint, error) {
	var (
		latest *Message
		err    error
	)
	if upToPublicID != nil {
		latest, err = l.messages.FindByPublicID(ctx, conv.ID, *upToPublicID)
		if err != nil {
			return nil, nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to resolve read cursor")
		}
	} else {
		latest, err = l.messages.Latest(ctx, conv.ID)
		if err != nil {
			return nil, nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load latest message")
		}
	}

	readAt := time.Now().UTC()
	if err := l.messages.MarkRead(ctx, conv.ID, readerID, latest, readAt); err != nil {
		return nil, nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to mark conversation read")
	}

	receipt := &Receipt{
		ConversationID: conv.PublicID,
		ReaderID:       readerID,
		ReadAt:         readAt,
	}
	if latest != nil {
		id := latest.PublicID
		receipt.LastReadMessageID = &id
	}
	return receipt, []uint{conv.OtherUserID(readerID)}, nil
}
