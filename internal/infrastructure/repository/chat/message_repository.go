package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "crewlink-server/services/messaging-api/internal/domain/chat"
	"crewlink-server/services/messaging-api/internal/infrastructure/database/entities"
	"crewlink-server/services/messaging-api/internal/utils/platformerrors"
)

// MessageRepository persists the message ledger and unread accounting.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs the message repository.
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

var _ domain.MessageRepository = (*MessageRepository)(nil)

// Append inserts the message and increments every recipient's unread counter
// in one transaction. The increment runs in SQL so concurrent sends never
// lose updates.
func (r *MessageRepository) Append(ctx context.Context, msg *domain.Message, recipientIDs []uint) error {
	entity := entities.NewSchemaMessage(msg)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entity).Error; err != nil {
			return err
		}
		if len(recipientIDs) == 0 {
			return nil
		}
		return tx.Model(&entities.ConversationParticipant{}).
			Where("conversation_id = ? AND user_id IN ?", entity.ConversationID, recipientIDs).
			Update("unread_count", gorm.Expr("unread_count + 1")).Error
	})
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to append message",
			err,
			"append-message-error",
		)
	}

	msg.ID = entity.ID
	msg.CreatedAt = entity.CreatedAt
	return nil
}

// FindByPublicID retrieves a message scoped to its conversation.
func (r *MessageRepository) FindByPublicID(ctx context.Context, conversationID uint, publicID string) (*domain.Message, error) {
	var entity entities.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND public_id = ?", conversationID, publicID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("message not found: %s", publicID),
				nil,
				"find-message-not-found",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find message",
			err,
			"find-message-error",
		)
	}
	return entity.EtoD(), nil
}

// ListBefore returns up to limit messages strictly older than before, newest
// first. The internal id breaks created_at ties.
func (r *MessageRepository) ListBefore(ctx context.Context, conversationID uint, before *domain.Message, limit int) ([]*domain.Message, error) {
	query := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if before != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			before.CreatedAt, before.CreatedAt, before.ID)
	}

	var rows []entities.Message
	if err := query.Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list messages",
			err,
			"list-messages-error",
		)
	}

	out := make([]*domain.Message, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].EtoD())
	}
	return out, nil
}

// Latest returns the newest message of a conversation, or (nil, nil) when
// the ledger is empty.
func (r *MessageRepository) Latest(ctx context.Context, conversationID uint) (*domain.Message, error) {
	var entity entities.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to load latest message",
			err,
			"latest-message-error",
		)
	}
	return entity.EtoD(), nil
}

// MarkRead resets the reader's unread counter, advances the read cursor and
// stamps read_at on the counterpart's unread messages. The read_at IS NULL
// guard keeps the first stamp, so retries and late acknowledgements never
// move a receipt backwards.
func (r *MessageRepository) MarkRead(ctx context.Context, conversationID, readerID uint, lastRead *domain.Message, readAt time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"unread_count": 0,
			"last_read_at": readAt,
		}
		if lastRead != nil {
			updates["last_read_message_id"] = lastRead.ID
		}
		if err := tx.Model(&entities.ConversationParticipant{}).
			Where("conversation_id = ? AND user_id = ?", conversationID, readerID).
			Updates(updates).Error; err != nil {
			return err
		}

		return tx.Model(&entities.Message{}).
			Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL",
				conversationID, readerID).
			Update("read_at", readAt).Error
	})
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to mark conversation read",
			err,
			"mark-read-error",
		)
	}
	return nil
}
