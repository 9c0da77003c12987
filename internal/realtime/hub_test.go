package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"crewlink-server/services/messaging-api/internal/domain/chat"
)

// fakeSession records sent payloads and can simulate a full send buffer.
type fakeSession struct {
	id     string
	userID uint

	mu      sync.Mutex
	sent    [][]byte
	rejects bool
	closed  bool
}

func newFakeSession(id string, userID uint) *fakeSession {
	return &fakeSession{id: id, userID: userID}
}

func (s *fakeSession) ID() string   { return s.id }
func (s *fakeSession) UserID() uint { return s.userID }

func (s *fakeSession) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rejects {
		return fmt.Errorf("send buffer full")
	}
	s.sent = append(s.sent, payload)
	return nil
}

func (s *fakeSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeSession) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func TestPublishReachesAllUserSessions(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	phone := newFakeSession("c1", 1)
	laptop := newFakeSession("c2", 1)
	other := newFakeSession("c3", 2)
	stranger := newFakeSession("c4", 3)
	for _, s := range []*fakeSession{phone, laptop, other, stranger} {
		hub.Register(s)
	}

	hub.Publish([]uint{1, 2}, chat.NewMessageCreated(&chat.MessageView{ID: "msg_1"}))

	for _, s := range []*fakeSession{phone, laptop, other} {
		if s.sentCount() != 1 {
			t.Errorf("session %s received %d payloads, want 1", s.id, s.sentCount())
		}
	}
	if stranger.sentCount() != 0 {
		t.Errorf("stranger received %d payloads, want 0", stranger.sentCount())
	}

	var ev chat.MessageCreatedEvent
	if err := json.Unmarshal(phone.sent[0], &ev); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if ev.Event != chat.EventMessageCreated {
		t.Errorf("event = %q, want %q", ev.Event, chat.EventMessageCreated)
	}
	if ev.Message == nil || ev.Message.ID != "msg_1" {
		t.Errorf("event message = %+v, want msg_1", ev.Message)
	}
}

func TestPublishToOfflineUser(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	// No sessions at all: must not panic or block.
	hub.Publish([]uint{7}, chat.NewConversationCreated(nil))
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	s := newFakeSession("c1", 1)
	hub.Register(s)
	hub.Unregister(s)

	hub.Publish([]uint{1}, chat.NewMessageCreated(nil))
	if s.sentCount() != 0 {
		t.Errorf("unregistered session received %d payloads, want 0", s.sentCount())
	}

	// Double unregister is harmless.
	hub.Unregister(s)
}

func TestSlowSessionIsDropped(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	healthy := newFakeSession("c1", 1)
	slow := newFakeSession("c2", 1)
	slow.rejects = true
	hub.Register(healthy)
	hub.Register(slow)

	hub.Publish([]uint{1}, chat.NewMessageCreated(nil))

	if !slow.isClosed() {
		t.Error("slow session not closed")
	}
	if healthy.sentCount() != 1 {
		t.Errorf("healthy session received %d payloads, want 1", healthy.sentCount())
	}

	// The dropped session receives nothing further.
	hub.Publish([]uint{1}, chat.NewMessageCreated(nil))
	if healthy.sentCount() != 2 {
		t.Errorf("healthy session received %d payloads, want 2", healthy.sentCount())
	}
	if slow.sentCount() != 0 {
		t.Errorf("slow session received %d payloads, want 0", slow.sentCount())
	}
}

func TestConcurrentPublish(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	sessions := make([]*fakeSession, 8)
	for i := range sessions {
		sessions[i] = newFakeSession(fmt.Sprintf("c%d", i), uint(i%4+1))
		hub.Register(sessions[i])
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Publish([]uint{1, 2, 3, 4}, chat.NewMessageCreated(nil))
		}()
	}
	wg.Wait()

	for _, s := range sessions {
		if s.sentCount() != 16 {
			t.Errorf("session %s received %d payloads, want 16", s.id, s.sentCount())
		}
	}
}

func TestRegisterDuringSlotCleanup(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	// A session registering while the user's last other session unregisters
	// must land in the live slot, not in one the cleanup just removed.
	for i := 0; i < 2000; i++ {
		old := newFakeSession(fmt.Sprintf("old-%d", i), 1)
		hub.Register(old)

		fresh := newFakeSession(fmt.Sprintf("fresh-%d", i), 1)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.Unregister(old)
		}()
		go func() {
			defer wg.Done()
			hub.Register(fresh)
		}()
		wg.Wait()

		hub.Publish([]uint{1}, chat.NewMessageCreated(nil))
		if fresh.sentCount() != 1 {
			t.Fatalf("iteration %d: fresh session received %d payloads, want 1", i, fresh.sentCount())
		}
		hub.Unregister(fresh)
	}
}

func TestCloseAll(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	a := newFakeSession("c1", 1)
	b := newFakeSession("c2", 2)
	hub.Register(a)
	hub.Register(b)

	hub.CloseAll()

	if !a.isClosed() || !b.isClosed() {
		t.Error("CloseAll left sessions open")
	}
	hub.Publish([]uint{1, 2}, chat.NewMessageCreated(nil))
	if a.sentCount() != 0 || b.sentCount() != 0 {
		t.Error("closed sessions still receive payloads")
	}
}
