package chat

import (
	"context"
	"sync"
	"time"

	"crewlink-server/services/messaging-api/internal/domain/user"
	"crewlink-server/services/messaging-api/internal/utils/platformerrors"
)

// memStore is an in-memory implementation of the conversation and message
// repositories with the same error semantics as the database-backed ones.
type memStore struct {
	mu            sync.Mutex
	nextConvID    uint
	nextMsgID     uint
	conversations []*Conversation
	participants  []*Participant
	messages      []*Message
}

func newMemStore() *memStore {
	return &memStore{nextConvID: 1, nextMsgID: 1}
}

func notFound(msg string) error {
	return platformerrors.NewError(context.Background(), platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, msg, nil, "")
}

func (s *memStore) Create(_ context.Context, conv *Conversation, participants []*Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.conversations {
		if existing.UserLoID == conv.UserLoID && existing.UserHiID == conv.UserHiID {
			return platformerrors.NewError(context.Background(), platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
				"conversation already exists for pair", nil, "")
		}
	}
	conv.ID = s.nextConvID
	s.nextConvID++
	stored := *conv
	s.conversations = append(s.conversations, &stored)
	for _, p := range participants {
		row := *p
		row.ConversationID = conv.ID
		s.participants = append(s.participants, &row)
	}
	return nil
}

func (s *memStore) FindByPublicID(_ context.Context, publicID string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conversations {
		if c.PublicID == publicID {
			out := *c
			return &out, nil
		}
	}
	return nil, notFound("conversation not found")
}

func (s *memStore) FindByPair(_ context.Context, userLoID, userHiID uint) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conversations {
		if c.UserLoID == userLoID && c.UserHiID == userHiID {
			out := *c
			return &out, nil
		}
	}
	return nil, notFound("conversation not found")
}

func (s *memStore) ListForUser(_ context.Context, userID uint) ([]*Conversation, []*Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var convs []*Conversation
	var rows []*Participant
	for _, p := range s.participants {
		if p.UserID != userID || p.IsArchived {
			continue
		}
		for _, c := range s.conversations {
			if c.ID == p.ConversationID {
				cc, pp := *c, *p
				convs = append(convs, &cc)
				rows = append(rows, &pp)
			}
		}
	}
	return convs, rows, nil
}

func (s *memStore) Participants(_ context.Context, conversationID uint) ([]*Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []*Participant
	for _, p := range s.participants {
		if p.ConversationID == conversationID {
			pp := *p
			rows = append(rows, &pp)
		}
	}
	return rows, nil
}

func (s *memStore) FindParticipant(_ context.Context, conversationID, userID uint) (*Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.participants {
		if p.ConversationID == conversationID && p.UserID == userID {
			pp := *p
			return &pp, nil
		}
	}
	return nil, notFound("participant not found")
}

func (s *memStore) SetArchived(_ context.Context, conversationID, userID uint, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.participants {
		if p.ConversationID == conversationID && p.UserID == userID {
			p.IsArchived = archived
			return nil
		}
	}
	return notFound("participant not found")
}

func (s *memStore) Append(_ context.Context, msg *Message, recipientIDs []uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = s.nextMsgID
	s.nextMsgID++
	stored := *msg
	s.messages = append(s.messages, &stored)
	for _, p := range s.participants {
		if p.ConversationID != msg.ConversationID {
			continue
		}
		for _, id := range recipientIDs {
			if p.UserID == id {
				p.UnreadCount++
			}
		}
	}
	return nil
}

func (s *memStore) FindByPublicID2(conversationID uint, publicID string) (*Message, error) {
	for _, m := range s.messages {
		if m.ConversationID == conversationID && m.PublicID == publicID {
			out := *m
			return &out, nil
		}
	}
	return nil, notFound("message not found")
}

type memMessages struct{ store *memStore }

func (s *memStore) Messages() MessageRepository { return &memMessages{store: s} }

func (r *memMessages) Append(ctx context.Context, msg *Message, recipientIDs []uint) error {
	return r.store.Append(ctx, msg, recipientIDs)
}

func (r *memMessages) FindByPublicID(_ context.Context, conversationID uint, publicID string) (*Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.FindByPublicID2(conversationID, publicID)
}

func (r *memMessages) ListBefore(_ context.Context, conversationID uint, before *Message, limit int) ([]*Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*Message
	for i := len(r.store.messages) - 1; i >= 0 && len(out) < limit; i-- {
		m := r.store.messages[i]
		if m.ConversationID != conversationID {
			continue
		}
		if before != nil && m.ID >= before.ID {
			continue
		}
		mm := *m
		out = append(out, &mm)
	}
	return out, nil
}

func (r *memMessages) Latest(_ context.Context, conversationID uint) (*Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := len(r.store.messages) - 1; i >= 0; i-- {
		if r.store.messages[i].ConversationID == conversationID {
			out := *r.store.messages[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memMessages) MarkRead(_ context.Context, conversationID, readerID uint, lastRead *Message, readAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.participants {
		if p.ConversationID == conversationID && p.UserID == readerID {
			p.UnreadCount = 0
			t := readAt
			p.LastReadAt = &t
			if lastRead != nil {
				id := lastRead.ID
				p.LastReadMessageID = &id
			}
		}
	}
	for _, m := range r.store.messages {
		if m.ConversationID != conversationID || m.SenderID == readerID || m.ReadAt != nil {
			continue
		}
		t := readAt
		m.ReadAt = &t
	}
	return nil
}

// memUsers is an in-memory user.Repository.
type memUsers struct {
	users map[uint]*user.User
}

func newMemUsers(users ...*user.User) *memUsers {
	byID := make(map[uint]*user.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return &memUsers{users: byID}
}

func (r *memUsers) FindByID(_ context.Context, id uint) (*user.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, notFound("user not found")
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, notFound("user not found")
}

// capturePublisher records every Publish call.
type capturePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	userIDs []uint
	event   Event
}

func (p *capturePublisher) Publish(userIDs []uint, event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{userIDs: userIDs, event: event})
}

func (p *capturePublisher) captured() []capturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]capturedEvent, len(p.events))
	copy(out, p.events)
	return out
}

// prefixResolver resolves media paths against a fixed base.
type prefixResolver struct{ base string }

func (r prefixResolver) ResolveURL(path string) *string {
	if path == "" {
		return nil
	}
	url := r.base + "/" + path
	return &url
}

func testContractor(id uint) *user.User {
	name := "Acme Builds"
	return &user.User{
		ID:         id,
		Email:      "contractor@example.com",
		Role:       user.RoleContractor,
		Contractor: &user.ContractorProfile{UserID: id, BusinessName: &name},
	}
}

func testSubcontractor(id uint) *user.User {
	name := "Bolt Electric"
	img := "avatars/sub.png"
	return &user.User{
		ID:            id,
		Email:         "sub@example.com",
		Role:          user.RoleSubcontractor,
		Subcontractor: &user.SubcontractorProfile{UserID: id, Name: &name, ImagePath: &img},
	}
}
