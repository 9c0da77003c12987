package chat

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "crewlink-server/services/messaging-api/internal/domain/chat"
	"crewlink-server/services/messaging-api/internal/infrastructure/database/entities"
	"crewlink-server/services/messaging-api/internal/utils/functional"
	"crewlink-server/services/messaging-api/internal/utils/platformerrors"
)

// ConversationRepository persists conversations and participant rows.
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository constructs the conversation repository.
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

var _ domain.ConversationRepository = (*ConversationRepository)(nil)

// Create inserts the conversation and both participant rows in one
// transaction. The unique pair index turns a concurrent duplicate into a
// Conflict error.
func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation, participants []*domain.Participant) error {
	entity := entities.NewSchemaConversation(conv)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entity).Error; err != nil {
			return err
		}
		for _, p := range participants {
			row := entities.NewSchemaParticipant(p)
			row.ConversationID = entity.ID
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				"conversation already exists for pair",
				err,
				"create-conversation-conflict",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create conversation",
			err,
			"create-conversation-error",
		)
	}

	conv.ID = entity.ID
	conv.CreatedAt = entity.CreatedAt
	for _, p := range participants {
		p.ConversationID = entity.ID
	}
	return nil
}

// FindByPublicID retrieves a conversation by its public identifier.
func (r *ConversationRepository) FindByPublicID(ctx context.Context, publicID string) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("conversation not found: %s", publicID),
				nil,
				"find-conversation-not-found",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find conversation",
			err,
			"find-conversation-error",
		)
	}
	return entity.EtoD(), nil
}

// FindByPair retrieves the conversation for a canonically ordered user pair.
func (r *ConversationRepository) FindByPair(ctx context.Context, userLoID, userHiID uint) (*domain.Conversation, error) {
	var entity entities.Conversation
	err := r.db.WithContext(ctx).
		Where("user_lo_id = ? AND user_hi_id = ?", userLoID, userHiID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"conversation not found for pair",
				nil,
				"find-pair-not-found",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find conversation by pair",
			err,
			"find-pair-error",
		)
	}
	return entity.EtoD(), nil
}

// ListForUser returns the user's non-archived conversations with the
// matching participant state.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID uint) ([]*domain.Conversation, []*domain.Participant, error) {
	var rows []entities.ConversationParticipant
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_archived = false", userID).
		Find(&rows).Error
	if err != nil {
		return nil, nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list participant rows",
			err,
			"list-for-user-error",
		)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ConversationID)
	}

	var convRows []entities.Conversation
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&convRows).Error; err != nil {
		return nil, nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list conversations",
			err,
			"list-conversations-error",
		)
	}

	byID := make(map[uint]*entities.Conversation, len(convRows))
	for i := range convRows {
		byID[convRows[i].ID] = &convRows[i]
	}

	convs := make([]*domain.Conversation, 0, len(rows))
	participants := make([]*domain.Participant, 0, len(rows))
	for i := range rows {
		conv, ok := byID[rows[i].ConversationID]
		if !ok {
			continue
		}
		convs = append(convs, conv.EtoD())
		participants = append(participants, rows[i].EtoD())
	}
	return convs, participants, nil
}

// Participants returns both participant rows of a conversation.
func (r *ConversationRepository) Participants(ctx context.Context, conversationID uint) ([]*domain.Participant, error) {
	var rows []entities.ConversationParticipant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list participants",
			err,
			"list-participants-error",
		)
	}

	return functional.Map(rows, func(row entities.ConversationParticipant) *domain.Participant {
		return row.EtoD()
	}), nil
}

// FindParticipant retrieves one participant row.
func (r *ConversationRepository) FindParticipant(ctx context.Context, conversationID, userID uint) (*domain.Participant, error) {
	var row entities.ConversationParticipant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"participant not found",
				nil,
				"find-participant-not-found",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find participant",
			err,
			"find-participant-error",
		)
	}
	return row.EtoD(), nil
}

// SetArchived flips the archive flag on a participant row.
func (r *ConversationRepository) SetArchived(ctx context.Context, conversationID, userID uint, archived bool) error {
	result := r.db.WithContext(ctx).
		Model(&entities.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("is_archived", archived)
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update archive flag",
			result.Error,
			"set-archived-error",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			"participant not found",
			nil,
			"set-archived-not-found",
		)
	}
	return nil
}
