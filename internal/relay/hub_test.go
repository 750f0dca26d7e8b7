package relay

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/connect-campus/peer-session-service/pkg/util"
)

func newTestHub(buffer int) *Hub {
	return NewHub(buffer, zap.NewNop())
}

func recvEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "event channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestJoinNotifiesBothSides(t *testing.T) {
	hub := newTestHub(8)
	ctx := context.Background()

	first, err := hub.Join(ctx, "room-1", "U1")
	require.NoError(t, err)

	second, err := hub.Join(ctx, "room-1", "U2")
	require.NoError(t, err)

	ev := recvEvent(t, first)
	assert.Equal(t, EventJoined, ev.Type)
	assert.Equal(t, "U2", ev.PeerID)

	ev = recvEvent(t, second)
	assert.Equal(t, EventJoined, ev.Type)
	assert.Equal(t, "U1", ev.PeerID)

	assert.Equal(t, 2, hub.RoomSize("room-1"))
}

func TestRejoinSupersedesPreviousSubscription(t *testing.T) {
	hub := newTestHub(8)
	ctx := context.Background()

	stale, err := hub.Join(ctx, "room-1", "U1")
	require.NoError(t, err)
	fresh, err := hub.Join(ctx, "room-1", "U1")
	require.NoError(t, err)
	require.NotSame(t, stale, fresh)
	assert.Equal(t, 1, hub.RoomSize("room-1"))

	// the replaced connection observes a disconnect
	_, ok := <-stale.Events()
	assert.False(t, ok)

	// events flow to the fresh subscription only
	peer, err := hub.Join(ctx, "room-1", "U2")
	require.NoError(t, err)
	recvEvent(t, peer)
	ev := recvEvent(t, fresh)
	assert.Equal(t, EventJoined, ev.Type)
	assert.Equal(t, "U2", ev.PeerID)

	// the stale handle's Leave must not tear down the fresh subscription
	stale.Leave()
	assert.Equal(t, 2, hub.RoomSize("room-1"))
}

func TestJoinSurvivesEvictionCascade(t *testing.T) {
	// a join notification into a full queue evicts that member, and the
	// peer_left flood from the eviction can evict further members while the
	// join loop is still iterating; the hub must stay consistent in every
	// map iteration order
	for i := 0; i < 25; i++ {
		hub := NewHub(1, zap.NewNop())
		ctx := context.Background()

		a, err := hub.Join(ctx, "room-1", "A")
		require.NoError(t, err)
		b, err := hub.Join(ctx, "room-1", "B")
		require.NoError(t, err)
		recvEvent(t, a) // drain A; B stays backlogged with a full queue

		c, err := hub.Join(ctx, "room-1", "C")
		if err != nil {
			assert.True(t, apperrors.HasCode(err, "CONNECTION_FAILED"))
		} else {
			c.Leave()
		}

		// the backlogged member ends up evicted, not blocked
		deadline := time.After(time.Second)
		for open := true; open; {
			select {
			case _, ok := <-b.Events():
				open = ok
			case <-deadline:
				t.Fatal("backlogged member was not evicted")
			}
		}

		// the hub remains serviceable afterwards
		fresh, err := hub.Join(ctx, "room-2", "D")
		require.NoError(t, err)
		fresh.Leave()
	}
}

func TestJoinValidation(t *testing.T) {
	hub := newTestHub(8)

	_, err := hub.Join(context.Background(), "", "U1")
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = hub.Join(cancelled, "room-1", "U1")
	assert.True(t, apperrors.HasCode(err, "CONNECTION_FAILED"))
}

func TestSendFansOutToPeersOnly(t *testing.T) {
	hub := newTestHub(8)
	ctx := context.Background()

	sender, err := hub.Join(ctx, "room-1", "U1")
	require.NoError(t, err)
	receiver, err := hub.Join(ctx, "room-1", "U2")
	require.NoError(t, err)
	recvEvent(t, sender)   // joined U2
	recvEvent(t, receiver) // joined U1

	payload, _ := json.Marshal(map[string]string{"text": "hello"})
	require.NoError(t, sender.Send(Message{Kind: MessageKindChat, Payload: payload}))

	ev := recvEvent(t, receiver)
	require.Equal(t, EventMessage, ev.Type)
	require.NotNil(t, ev.Message)
	assert.Equal(t, "U1", ev.Message.SenderID)
	assert.Equal(t, "room-1", ev.Message.RoomID)
	assert.Equal(t, MessageKindChat, ev.Message.Kind)
	assert.JSONEq(t, `{"text":"hello"}`, string(ev.Message.Payload))
	assert.False(t, ev.Message.SentAt.IsZero())

	// no echo back to the sender
	select {
	case ev := <-sender.Events():
		t.Fatalf("sender received unexpected event %v", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPerSenderOrderingPreserved(t *testing.T) {
	hub := newTestHub(16)
	ctx := context.Background()

	sender, err := hub.Join(ctx, "room-1", "U1")
	require.NoError(t, err)
	receiver, err := hub.Join(ctx, "room-1", "U2")
	require.NoError(t, err)
	recvEvent(t, sender)
	recvEvent(t, receiver)

	for i := 0; i < 5; i++ {
		payload, _ := json.Marshal(i)
		require.NoError(t, sender.Send(Message{Kind: MessageKindSignal, Payload: payload}))
	}
	for i := 0; i < 5; i++ {
		ev := recvEvent(t, receiver)
		require.Equal(t, EventMessage, ev.Type)
		var got int
		require.NoError(t, json.Unmarshal(ev.Message.Payload, &got))
		assert.Equal(t, i, got)
	}
}

func TestLeaveIsIdempotentAndNotifiesPeer(t *testing.T) {
	hub := newTestHub(8)
	ctx := context.Background()

	first, err := hub.Join(ctx, "room-1", "U1")
	require.NoError(t, err)
	second, err := hub.Join(ctx, "room-1", "U2")
	require.NoError(t, err)
	recvEvent(t, first)
	recvEvent(t, second)

	first.Leave()
	first.Leave()
	first.Leave()

	ev := recvEvent(t, second)
	assert.Equal(t, EventPeerLeft, ev.Type)
	assert.Equal(t, "U1", ev.PeerID)
	assert.Equal(t, 1, hub.RoomSize("room-1"))

	// leaver's channel is closed exactly once
	_, ok := <-first.Events()
	assert.False(t, ok)
}

func TestSendAfterLeaveFails(t *testing.T) {
	hub := newTestHub(8)
	sub, err := hub.Join(context.Background(), "room-1", "U1")
	require.NoError(t, err)
	sub.Leave()

	err = sub.Send(Message{Kind: MessageKindChat})
	assert.True(t, apperrors.HasCode(err, "CONNECTION_FAILED"))
}

func TestSlowConsumerEvicted(t *testing.T) {
	hub := NewHub(1, zap.NewNop())
	ctx := context.Background()

	sender, err := hub.Join(ctx, "room-1", "U1")
	require.NoError(t, err)
	slow, err := hub.Join(ctx, "room-1", "U2")
	require.NoError(t, err)
	recvEvent(t, sender)
	// slow never drains; its buffer of 1 holds the joined event

	// the full buffer means this message cannot be queued; the slow member
	// is evicted instead of blocking the room
	payload, _ := json.Marshal("x")
	require.NoError(t, sender.Send(Message{Kind: MessageKindChat, Payload: payload}))

	assert.Equal(t, 1, hub.RoomSize("room-1"))

	// eviction closes the slow member's channel after pending events drain
	drained := 0
	for range slow.Events() {
		drained++
	}
	assert.GreaterOrEqual(t, drained, 1)

	ev := recvEvent(t, sender)
	assert.Equal(t, EventPeerLeft, ev.Type)
	assert.Equal(t, "U2", ev.PeerID)
}

func TestEmptyRoomsAreReaped(t *testing.T) {
	hub := newTestHub(8)
	sub, err := hub.Join(context.Background(), "room-1", "U1")
	require.NoError(t, err)
	sub.Leave()

	hub.mu.Lock()
	_, exists := hub.rooms["room-1"]
	hub.mu.Unlock()
	assert.False(t, exists)
}

func TestHubCloseDisconnectsEveryone(t *testing.T) {
	hub := newTestHub(8)
	sub, err := hub.Join(context.Background(), "room-1", "U1")
	require.NoError(t, err)

	hub.Close()

	_, ok := <-sub.Events()
	assert.False(t, ok)

	_, err = hub.Join(context.Background(), "room-2", "U2")
	assert.True(t, apperrors.HasCode(err, "CONNECTION_FAILED"))
}
