package chat

import (
	"sync"
	"time"

	"easyvideo/internal/domain"
)

const welcomeMessage = "Welcome to Easy Video! I can help you create images and videos using natural language. " +
	"Try saying something like \"Create an image of a sunset over mountains\" or \"Generate a video of a cat playing with a ball\"."

// Session is a point-in-time copy of one conversation and its canvas.
type Session struct {
	ID        string              `json:"id"`
	Messages  []domain.Message    `json:"messages"`
	Canvas    []domain.CanvasItem `json:"canvas"`
	Busy      bool                `json:"busy"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// session is the mutable state behind a Session. Messages and canvas are
// append-only and only the orchestrator appends to them.
type session struct {
	mu        sync.Mutex
	id        string
	messages  []domain.Message
	canvas    []domain.CanvasItem
	busy      bool
	closed    bool
	createdAt time.Time
	updatedAt time.Time
}

func newSession(id string, now time.Time) *session {
	return &session{
		id: id,
		messages: []domain.Message{{
			ID:        id + "-welcome",
			Content:   welcomeMessage,
			Role:      domain.RoleAssistant,
			Timestamp: now,
		}},
		canvas:    []domain.CanvasItem{},
		createdAt: now,
		updatedAt: now,
	}
}

func (s *session) snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *session) snapshotLocked() Session {
	messages := make([]domain.Message, len(s.messages))
	for i, m := range s.messages {
		if m.GeneratedContent != nil {
			gc := *m.GeneratedContent
			m.GeneratedContent = &gc
		}
		messages[i] = m
	}
	return Session{
		ID:        s.id,
		Messages:  messages,
		Canvas:    append([]domain.CanvasItem(nil), s.canvas...),
		Busy:      s.busy,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}

// begin marks the session busy and records the user message. It fails with
// ErrSessionBusy while another submission is in flight.
func (s *session) begin(msg domain.Message) ([]domain.CanvasItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return nil, domain.ErrSessionBusy
	}
	s.busy = true
	s.messages = append(s.messages, msg)
	s.updatedAt = msg.Timestamp
	return append([]domain.CanvasItem(nil), s.canvas...), nil
}

// complete appends the assistant message and, when present, its canvas item
// in one step, clears the busy flag and returns the resulting snapshot.
func (s *session) complete(msg domain.Message, item *domain.CanvasItem) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item != nil {
		s.canvas = append(s.canvas, *item)
	}
	s.messages = append(s.messages, msg)
	s.busy = false
	s.updatedAt = msg.Timestamp
	return s.snapshotLocked()
}

// close marks the session as removed from the store. A closed session is
// never handed out again.
func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
