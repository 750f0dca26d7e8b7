package relay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/connect-campus/peer-session-service/pkg/util"
)

// MessageKind distinguishes the two payload classes a room carries. Signal
// payloads (offer/answer/candidate equivalents) are relayed verbatim, never
// interpreted.
type MessageKind string

const (
	MessageKindSignal MessageKind = "signal"
	MessageKindChat   MessageKind = "chat"
)

// Message is the unit relayed to all other current room members.
type Message struct {
	RoomID   string          `json:"room_id"`
	SenderID string          `json:"sender_id"`
	Kind     MessageKind     `json:"kind"`
	Payload  json.RawMessage `json:"payload"`
	SentAt   time.Time       `json:"sent_at"`
}

// EventType enumerates subscription events.
type EventType string

const (
	EventJoined   EventType = "joined"
	EventMessage  EventType = "message"
	EventPeerLeft EventType = "peer_left"
)

// Event is delivered on a subscription's channel. Channel closure signals
// that this member itself was disconnected (evicted or hub shutdown);
// EventPeerLeft reports the remote side leaving.
type Event struct {
	Type    EventType
	RoomID  string
	PeerID  string
	Message *Message
}

// RoomSession is one member's handle on a joined room.
type RoomSession interface {
	Send(msg Message) error
	Events() <-chan Event
	Leave()
}

// Client joins rooms on behalf of a local participant.
type Client interface {
	Join(ctx context.Context, roomID, userID string) (RoomSession, error)
}

// Hub keeps the room registry. No history is retained: a message reaches the
// members present at send time and is gone.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]*room
	buffer int
	logger *zap.Logger
	closed bool
}

type room struct {
	id      string
	members map[string]*Subscription
}

// NewHub creates a hub. buffer bounds each member's pending event queue;
// members that fall behind are evicted rather than blocking the room.
func NewHub(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 32
	}
	return &Hub{
		rooms:  make(map[string]*room),
		buffer: buffer,
		logger: logger,
	}
}

// Client returns a Client backed by this hub.
func (h *Hub) Client() Client {
	return hubClient{hub: h}
}

type hubClient struct {
	hub *Hub
}

func (c hubClient) Join(ctx context.Context, roomID, userID string) (RoomSession, error) {
	return c.hub.Join(ctx, roomID, userID)
}

// Join adds userID to the room, creating it on demand. One subscription per
// room per user: rejoining supersedes the previous one, whose channel closes
// so its reader observes a disconnect.
func (h *Hub) Join(ctx context.Context, roomID, userID string) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewConnectionError("relay join aborted", err)
	}
	if roomID == "" || userID == "" {
		return nil, apperrors.NewValidationError("room id and user id required", nil)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, apperrors.NewConnectionError("relay shut down", nil)
	}

	rm, ok := h.rooms[roomID]
	if !ok {
		rm = &room{id: roomID, members: make(map[string]*Subscription)}
		h.rooms[roomID] = rm
	}

	if existing, ok := rm.members[userID]; ok {
		// a reconnect for the same user replaces the old subscription
		existing.closeLocked()
		delete(rm.members, userID)
	}

	sub := &Subscription{
		hub:    h,
		roomID: roomID,
		userID: userID,
		events: make(chan Event, h.buffer),
	}
	rm.members[userID] = sub

	// tell the newcomer who is already here, and the room who arrived.
	// deliverLocked may evict members (including sub itself) along the way,
	// so membership is re-checked on every delivery.
	peerIDs := make([]string, 0, len(rm.members))
	for peerID := range rm.members {
		if peerID != userID {
			peerIDs = append(peerIDs, peerID)
		}
	}
	for _, peerID := range peerIDs {
		h.deliverLocked(rm, sub, Event{Type: EventJoined, RoomID: roomID, PeerID: peerID})
		if rm.members[userID] != sub {
			// the cascade already announced the departure; stop here so no
			// peer hears a join after the peer_left
			break
		}
		h.deliverLocked(rm, rm.members[peerID], Event{Type: EventJoined, RoomID: roomID, PeerID: userID})
	}

	if rm.members[userID] != sub {
		// an eviction cascade took the newcomer out before the join finished
		return nil, apperrors.NewConnectionError("room join overrun", nil)
	}

	h.logger.Debug("room join", zap.String("room", roomID), zap.String("user", userID))
	return sub, nil
}

// Close evicts every member in every room.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, rm := range h.rooms {
		for _, sub := range rm.members {
			sub.closeLocked()
		}
	}
	h.rooms = make(map[string]*room)
}

// RoomSize reports current membership; zero for unknown rooms.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm, ok := h.rooms[roomID]
	if !ok {
		return 0
	}
	return len(rm.members)
}

// broadcast fans a message out to every other member of the sender's room.
func (h *Hub) broadcast(sender *Subscription, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm, ok := h.rooms[sender.roomID]
	if !ok {
		return
	}
	for peerID, sub := range rm.members {
		if peerID == sender.userID {
			continue
		}
		h.deliverLocked(rm, sub, Event{Type: EventMessage, RoomID: sender.roomID, PeerID: msg.SenderID, Message: &msg})
	}
}

// deliverLocked pushes an event without ever blocking the room. A member whose
// queue is full is evicted; its closed channel is the disconnect signal.
// Evictions cascade: delivering a peer_left can itself overflow another
// member, so by the time a caller's loop reaches a subscription it may
// already be gone. Stale handles are skipped, never sent to.
func (h *Hub) deliverLocked(rm *room, sub *Subscription, ev Event) {
	if sub == nil || rm.members[sub.userID] != sub {
		return
	}
	select {
	case sub.events <- ev:
	default:
		h.logger.Warn("evicting slow room member",
			zap.String("room", rm.id), zap.String("user", sub.userID))
		h.removeLocked(rm, sub)
	}
}

func (h *Hub) leave(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm, ok := h.rooms[sub.roomID]
	if !ok {
		return
	}
	if current, ok := rm.members[sub.userID]; !ok || current != sub {
		return
	}
	h.removeLocked(rm, sub)
}

func (h *Hub) removeLocked(rm *room, sub *Subscription) {
	delete(rm.members, sub.userID)
	sub.closeLocked()
	for _, peer := range rm.members {
		h.deliverLocked(rm, peer, Event{Type: EventPeerLeft, RoomID: rm.id, PeerID: sub.userID})
	}
	if len(rm.members) == 0 {
		delete(h.rooms, rm.id)
	}
}
