package chat

import (
	"context"
	"time"

	"crewlink-server/services/messaging-api/internal/domain/user"
	"crewlink-server/services/messaging-api/internal/utils/idgen"
	"crewlink-server/services/messaging-api/internal/utils/platformerrors"
)

const conversationIDPrefix = "conv"

// Directory resolves the single conversation between a pair of users,
// creating it on first contact.
type Directory struct {
	conversations ConversationRepository
	users         user.Repository
}

// NewDirectory builds a Directory.
func NewDirectory(conversations ConversationRepository, users user.Repository) *Directory {
	return &Directory{conversations: conversations, users: users}
}

// canonicalPair orders two user ids so the pair has one storage form.
func canonicalPair(a, b uint) (lo, hi uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// rolesCompatible allows direct messaging only between a contractor and a
// subcontractor.
func rolesCompatible(a, b user.Role) bool {
	return (a == user.RoleContractor && b == user.RoleSubcontractor) ||
		(a == user.RoleSubcontractor && b == user.RoleContractor)
}

// FindExisting returns the conversation between the caller and other, or a
// NotFound error when they have never talked.
func (d *Directory) FindExisting(ctx context.Context, callerID, otherID uint) (*Conversation, error) {
	lo, hi := canonicalPair(callerID, otherID)
	return d.conversations.FindByPair(ctx, lo, hi)
}

// GetOrCreate returns the conversation between the caller and other, creating
// it when none exists. Creation validates that the counterpart exists, that
// the caller is not messaging themselves and that the role pair is a
// contractor and a subcontractor. Concurrent first contact is resolved by the
// unique pair index: on a Conflict the winner's row is re-read and returned.
func (d *Directory) GetOrCreate(ctx context.Context, caller *user.User, otherID uint) (*Conversation, bool, error) {
	if caller.ID == otherID {
		return nil, false, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"cannot start a conversation with yourself", nil, "")
	}

	lo, hi := canonicalPair(caller.ID, otherID)
	conv, err := d.conversations.FindByPair(ctx, lo, hi)
	if err == nil {
		return conv, false, nil
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, false, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to look up conversation")
	}

	other, err := d.users.FindByID(ctx, otherID)
	if err != nil {
		return nil, false, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load conversation counterpart")
	}
	if !rolesCompatible(caller.Role, other.Role) {
		return nil, false, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"conversations require one contractor and one subcontractor", nil, "")
	}

	publicID, err := idgen.GenerateSecureID(conversationIDPrefix, 16)
	if err != nil {
		return nil, false, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate conversation id")
	}

	now := time.Now().UTC()
	conv = &Conversation{
		PublicID:  publicID,
		Type:      ConversationTypeContractorSubcontractor,
		UserLoID:  lo,
		UserHiID:  hi,
		CreatedAt: now,
	}
	participants := []*Participant{
		{UserID: caller.ID, Role: caller.Role, JoinedAt: now},
		{UserID: other.ID, Role: other.Role, JoinedAt: now},
	}

	if err := d.conversations.Create(ctx, conv, participants); err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
			// Lost the race against a concurrent first message. The winner's
			// row is the conversation for this pair.
			existing, findErr := d.conversations.FindByPair(ctx, lo, hi)
			if findErr != nil {
				return nil, false, platformerrors.AsError(ctx, platformerrors.LayerDomain, findErr, "failed to load conversation after conflict")
			}
			return existing, false, nil
		}
		return nil, false, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create conversation")
	}
	return conv, true, nil
}
