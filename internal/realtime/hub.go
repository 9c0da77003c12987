package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"crewlink-server/services/messaging-api/internal/domain/chat"
	"crewlink-server/services/messaging-api/internal/infrastructure/metrics"
)

// Session is one live websocket attachment. A user may hold several at once,
// one per device or tab.
type Session interface {
	ID() string
	UserID() uint
	Send(payload []byte) error
	Close()
}

// slot holds the live sessions of one user behind its own lock so fan-out to
// different users never contends.
type slot struct {
	mu       sync.Mutex
	sessions map[string]Session
}

// Hub routes events to the live sessions of their recipients.
type Hub struct {
	mu    sync.RWMutex
	slots map[uint]*slot
	log   zerolog.Logger
}

// NewHub builds an empty Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		slots: make(map[uint]*slot),
		log:   log,
	}
}

var _ chat.Publisher = (*Hub)(nil)

// Register attaches a session to its user's slot. The insert happens with
// h.mu still held so the empty-slot cleanup in Unregister cannot drop the
// slot between lookup and insert.
func (h *Hub) Register(s Session) {
	h.mu.Lock()
	sl, ok := h.slots[s.UserID()]
	if !ok {
		sl = &slot{sessions: make(map[string]Session)}
		h.slots[s.UserID()] = sl
	}
	sl.mu.Lock()
	sl.sessions[s.ID()] = s
	sl.mu.Unlock()
	h.mu.Unlock()

	metrics.ActiveConnections.Inc()
	h.log.Debug().Uint("user_id", s.UserID()).Str("connection_id", s.ID()).Msg("session registered")
}

// Unregister detaches a session. Unknown sessions are ignored, so the
// disconnect path may call it unconditionally.
func (h *Hub) Unregister(s Session) {
	h.mu.Lock()
	sl, ok := h.slots[s.UserID()]
	h.mu.Unlock()
	if !ok {
		return
	}

	sl.mu.Lock()
	_, present := sl.sessions[s.ID()]
	delete(sl.sessions, s.ID())
	empty := len(sl.sessions) == 0
	sl.mu.Unlock()

	if present {
		metrics.ActiveConnections.Dec()
		h.log.Debug().Uint("user_id", s.UserID()).Str("connection_id", s.ID()).Msg("session unregistered")
	}

	if empty {
		h.mu.Lock()
		if current, ok := h.slots[s.UserID()]; ok {
			current.mu.Lock()
			if len(current.sessions) == 0 {
				delete(h.slots, s.UserID())
			}
			current.mu.Unlock()
		}
		h.mu.Unlock()
	}
}

// Publish delivers an event to every live session of the given users. The
// event is marshalled once. Sessions whose send buffer is full are dropped:
// a client that cannot keep up reconnects and re-syncs over HTTP.
func (h *Hub) Publish(userIDs []uint, event chat.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("event", event.EventName()).Msg("marshal fanout payload")
		metrics.RecordFanoutDropped("marshal_error")
		return
	}

	eventType := event.EventName()

	for _, userID := range userIDs {
		h.mu.RLock()
		sl, ok := h.slots[userID]
		h.mu.RUnlock()
		if !ok {
			continue
		}

		sl.mu.Lock()
		var stale []Session
		for _, s := range sl.sessions {
			if err := s.Send(data); err != nil {
				stale = append(stale, s)
				continue
			}
			metrics.RecordFanout(eventType)
		}
		sl.mu.Unlock()

		for _, s := range stale {
			h.log.Warn().Uint("user_id", s.UserID()).Str("connection_id", s.ID()).Msg("dropping slow session")
			metrics.RecordFanoutDropped("send_buffer_full")
			h.Unregister(s)
			s.Close()
		}
	}
}

// CloseAll tears down every live session, used during shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	slots := h.slots
	h.slots = make(map[uint]*slot)
	h.mu.Unlock()

	for _, sl := range slots {
		sl.mu.Lock()
		for _, s := range sl.sessions {
			s.Close()
			metrics.ActiveConnections.Dec()
		}
		sl.sessions = make(map[string]Session)
		sl.mu.Unlock()
	}
}
