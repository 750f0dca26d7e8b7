package relay

import (
	"sync"
	"time"

	apperrors "github.com/connect-campus/peer-session-service/pkg/util"
)

// Subscription is one member's live handle on a room. Events are consumed
// from Events(); the channel closes when the member is disconnected (evicted,
// hub shutdown) or has left.
type Subscription struct {
	hub    *Hub
	roomID string
	userID string
	events chan Event

	closeMu sync.Mutex
	closed  bool

	leaveOnce sync.Once
}

// RoomID returns the joined room.
func (s *Subscription) RoomID() string { return s.roomID }

// UserID returns the local member identity.
func (s *Subscription) UserID() string { return s.userID }

// Events exposes the inbound event stream.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Send relays a message to all other current room members. Fire and forget:
// at most once per peer, no delivery guarantee once a peer is gone. Per-sender
// ordering is preserved by the single fan-out path.
func (s *Subscription) Send(msg Message) error {
	s.closeMu.Lock()
	closed := s.closed
	s.closeMu.Unlock()
	if closed {
		return apperrors.NewConnectionError("room left", nil)
	}

	msg.RoomID = s.roomID
	msg.SenderID = s.userID
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}
	if msg.Kind == "" {
		msg.Kind = MessageKindChat
	}
	s.hub.broadcast(s, msg)
	return nil
}

// Leave releases room membership and stops delivery. Safe to call any number
// of times, and safe even if the join never fully completed.
func (s *Subscription) Leave() {
	s.leaveOnce.Do(func() {
		s.hub.leave(s)
	})
}

// closeLocked closes the event channel once. Called with hub lock held.
func (s *Subscription) closeLocked() {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}
