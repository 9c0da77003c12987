package chat

import (
	"context"
	"sort"
	"time"

	"crewlink-server/services/messaging-api/internal/domain/user"
	"crewlink-server/services/messaging-api/internal/utils/functional"
	"crewlink-server/services/messaging-api/internal/utils/platformerrors"
)

// Counterpart is the other participant's public identity as shown in a
// conversation summary.
type Counterpart struct {
	UserID    uint      `json:"user_id"`
	Role      user.Role `json:"role"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url"`
}

// ConversationSummary is one row of a user's conversation list.
type ConversationSummary struct {
	ID          string           `json:"id"`
	Type        ConversationType `json:"type"`
	Counterpart Counterpart      `json:"counterpart"`
	LastMessage *MessageView     `json:"last_message"`
	UnreadCount int              `json:"unread_count"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// MessageView is the API shape of a ledger entry.
type MessageView struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       uint       `json:"sender_id"`
	Body           string     `json:"body"`
	ContentType    string     `json:"content_type"`
	AttachmentURL  *string    `json:"attachment_url"`
	CreatedAt      time.Time  `json:"created_at"`
	ReadAt         *time.Time `json:"read_at"`
}

// MessagePage is one page of conversation history, oldest first.
type MessagePage struct {
	Messages []*MessageView `json:"messages"`
	HasMore  bool           `json:"has_more"`
}

// ReadReceipt acknowledges that a user has caught up in a conversation.
type ReadReceipt struct {
	ConversationID    string    `json:"conversation_id"`
	LastReadMessageID *string   `json:"last_read_message_id"`
	UnreadCount       int       `json:"unread_count"`
	ReadAt            time.Time `json:"read_at"`
}

// Service is the messaging facade the transport layer talks to.
type Service interface {
	CreateConversation(ctx context.Context, caller *user.User, counterpartyID uint) (*ConversationSummary, bool, error)
	ListConversations(ctx context.Context, callerID uint) ([]*ConversationSummary, error)
	ListMessages(ctx context.Context, callerID uint, conversationID, beforeMessageID string, limit int) (*MessagePage, error)
	SendMessage(ctx context.Context, callerID uint, conversationID, body string, contentType ContentType, attachmentURL *string) (*MessageView, error)
	MarkRead(ctx context.Context, callerID uint, conversationID string, upToMessageID *string) (*ReadReceipt, error)
	SetArchived(ctx context.Context, callerID uint, conversationID string, archived bool) error
}

type service struct {
	directory     *Directory
	ledger        *Ledger
	conversations ConversationRepository
	users         user.Repository
	publisher     Publisher
	media         MediaResolver
}

// NewService wires the messaging facade.
func NewService(directory *Directory, ledger *Ledger, conversations ConversationRepository, users user.Repository, publisher Publisher, media MediaResolver) Service {
	return &service{
		directory:     directory,
		ledger:        ledger,
		conversations: conversations,
		users:         users,
		publisher:     publisher,
		media:         media,
	}
}

// resolveForRead loads the conversation and checks membership. Non-members
// get NotFound so the endpoint does not leak conversation existence.
func (s *service) resolveForRead(ctx context.Context, callerID uint, conversationID string) (*Conversation, error) {
	conv, err := s.conversations.FindByPublicID(ctx, conversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load conversation")
	}
	if !conv.HasUser(callerID) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"conversation not found", nil, "")
	}
	return conv, nil
}

// resolveForWrite loads the conversation and checks membership. Non-members
// get Forbidden.
func (s *service) resolveForWrite(ctx context.Context, callerID uint, conversationID string) (*Conversation, error) {
	conv, err := s.conversations.FindByPublicID(ctx, conversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load conversation")
	}
	if !conv.HasUser(callerID) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"not a participant of this conversation", nil, "")
	}
	return conv, nil
}

func (s *service) CreateConversation(ctx context.Context, caller *user.User, counterpartyID uint) (*ConversationSummary, bool, error) {
	conv, created, err := s.directory.GetOrCreate(ctx, caller, counterpartyID)
	if err != nil {
		return nil, false, err
	}

	summary, err := s.summarize(ctx, conv, caller.ID, nil)
	if err != nil {
		return nil, false, err
	}

	if created {
		// The counterpart gets the summary from their own point of view.
		otherID := conv.OtherUserID(caller.ID)
		theirs, err := s.summarize(ctx, conv, otherID, nil)
		if err != nil {
			return nil, false, err
		}
		s.publisher.Publish([]uint{otherID}, NewConversationCreated(theirs))
	}
	return summary, created, nil
}

func (s *service) ListConversations(ctx context.Context, callerID uint) ([]*ConversationSummary, error) {
	convs, participants, err := s.conversations.ListForUser(ctx, callerID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list conversations")
	}

	byConv := make(map[uint]*Participant, len(participants))
	for _, p := range participants {
		byConv[p.ConversationID] = p
	}

	summaries := make([]*ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary, err := s.summarize(ctx, conv, callerID, byConv[conv.ID])
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

func (s *service) ListMessages(ctx context.Context, callerID uint, conversationID, beforeMessageID string, limit int) (*MessagePage, error) {
	conv, err := s.resolveForRead(ctx, callerID, conversationID)
	if err != nil {
		return nil, err
	}

	page, err := s.ledger.ListPage(ctx, conv, beforeMessageID, limit)
	if err != nil {
		return nil, err
	}

	views := functional.Map(page.Messages, func(msg *Message) *MessageView {
		return s.messageView(conv, msg)
	})
	return &MessagePage{Messages: views, HasMore: page.HasMore}, nil
}

func (s *service) SendMessage(ctx context.Context, callerID uint, conversationID, body string, contentType ContentType, attachmentURL *string) (*MessageView, error) {
	conv, err := s.resolveForWrite(ctx, callerID, conversationID)
	if err != nil {
		return nil, err
	}

	msg, recipients, err := s.ledger.Append(ctx, conv, callerID, body, contentType, attachmentURL)
	if err != nil {
		return nil, err
	}

	view := s.messageView(conv, msg)
	s.publisher.Publish(recipients, NewMessageCreated(view))
	return view, nil
}

func (s *service) MarkRead(ctx context.Context, callerID uint, conversationID string, upToMessageID *string) (*ReadReceipt, error) {
	conv, err := s.resolveForWrite(ctx, callerID, conversationID)
	if err != nil {
		return nil, err
	}

	receipt, recipients, err := s.ledger.MarkRead(ctx, conv, callerID, upToMessageID)
	if err != nil {
		return nil, err
	}

	out := &ReadReceipt{
		ConversationID:    receipt.ConversationID,
		LastReadMessageID: receipt.LastReadMessageID,
		UnreadCount:       0,
		ReadAt:            receipt.ReadAt,
	}
	s.publisher.Publish(recipients, NewConversationRead(receipt.ConversationID, receipt.ReaderID, receipt.LastReadMessageID))
	return out, nil
}

func (s *service) SetArchived(ctx context.Context, callerID uint, conversationID string, archived bool) error {
	conv, err := s.resolveForWrite(ctx, callerID, conversationID)
	if err != nil {
		return err
	}
	if err := s.conversations.SetArchived(ctx, conv.ID, callerID, archived); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update archive state")
	}
	return nil
}

// summarize builds the list row for one conversation from the caller's point
// of view. participant may be nil, in which case the row is loaded.
func (s *service) summarize(ctx context.Context, conv *Conversation, callerID uint, participant *Participant) (*ConversationSummary, error) {
	if participant == nil {
		row, err := s.conversations.FindParticipant(ctx, conv.ID, callerID)
		if err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load participant state")
		}
		participant = row
	}

	otherID := conv.OtherUserID(callerID)
	other, err := s.users.FindByID(ctx, otherID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load conversation counterpart")
	}

	var avatarURL *string
	if path := other.AvatarPath(); path != nil {
		avatarURL = s.media.ResolveURL(*path)
	}

	summary := &ConversationSummary{
		ID:   conv.PublicID,
		Type: conv.Type,
		Counterpart: Counterpart{
			UserID:    other.ID,
			Role:      other.Role,
			Name:      other.DisplayName(),
			AvatarURL: avatarURL,
		},
		UnreadCount: participant.UnreadCount,
		CreatedAt:   conv.CreatedAt,
		UpdatedAt:   conv.CreatedAt,
	}

	latest, err := s.ledger.messages.Latest(ctx, conv.ID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load latest message")
	}
	if latest != nil {
		summary.LastMessage = s.messageView(conv, latest)
		summary.UpdatedAt = latest.CreatedAt
	}
	return summary, nil
}

func (s *service) messageView(conv *Conversation, msg *Message) *MessageView {
	return &MessageView{
		ID:             msg.PublicID,
		ConversationID: conv.PublicID,
		SenderID:       msg.SenderID,
		Body:           msg.Body,
		ContentType:    string(msg.ContentType),
		AttachmentURL:  msg.AttachmentURL,
		CreatedAt:      msg.CreatedAt,
		ReadAt:         msg.ReadAt,
	}
}
