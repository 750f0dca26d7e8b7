package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/connect-campus/peer-session-service/internal/events"
	"github.com/connect-campus/peer-session-service/internal/relay"
	apperrors "github.com/connect-campus/peer-session-service/pkg/util"
)

// State enumerates the coordinator lifecycle.
type State string

const (
	StateIdle          State = "IDLE"
	StateAwaitingMedia State = "AWAITING_MEDIA"
	StateConnected     State = "CONNECTED"
	StateEnding        State = "ENDING"
	StateEnded         State = "ENDED"
)

// SettleFunc applies reward settlement for a terminated session. The callee
// owns deduplication; the coordinator guarantees it calls at most once per
// coordinator instance.
type SettleFunc func(ctx context.Context, requestID, requesterID, helperID string, amount int64) error

// Config describes one logical session instance.
type Config struct {
	RequestID   string
	RequesterID string
	HelperID    string
	RoomID      string
	LocalUserID string
	Amount      int64
	JoinTimeout time.Duration

	// OnEvent, when set, receives relay events observed while connected.
	// It runs on the watch goroutine and must not block.
	OnEvent func(relay.Event)
}

// Coordinator drives a single accepted request through an active session to
// completion. Transitions are serialized: a user-initiated end and an
// asynchronous disconnect race to the same Ending path and the loser becomes
// a no-op.
type Coordinator struct {
	cfg        Config
	relay      relay.Client
	media      MediaAcquirer
	settle     SettleFunc
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu          sync.Mutex
	state       State
	stream      MediaStream
	room        relay.RoomSession
	cancelStart context.CancelFunc
	done        chan struct{}
}

// NewCoordinator builds a coordinator in Idle. The relay client is an
// injected collaborator, never a shared singleton, so concurrent coordinators
// hold no hidden mutable state.
func NewCoordinator(cfg Config, relayClient relay.Client, media MediaAcquirer, settle SettleFunc, dispatcher events.Dispatcher, logger *zap.Logger) *Coordinator {
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = 10 * time.Second
	}
	return &Coordinator{
		cfg:        cfg,
		relay:      relayClient,
		media:      media,
		settle:     settle,
		dispatcher: dispatcher,
		logger:     logger,
		state:      StateIdle,
		done:       make(chan struct{}),
	}
}

// State reports the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed once the coordinator reaches Ended.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Send relays a message while connected.
func (c *Coordinator) Send(msg relay.Message) error {
	c.mu.Lock()
	room := c.room
	state := c.state
	c.mu.Unlock()
	if state != StateConnected || room == nil {
		return apperrors.NewInvalidState("session not connected", nil)
	}
	return room.Send(msg)
}

// Start moves Idle -> AwaitingMedia -> Connected. On media or join failure it
// moves directly to Ended with all partially acquired resources released;
// neither failure is retried here and neither triggers settlement.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		state := c.state
		c.mu.Unlock()
		return apperrors.NewInvalidState("session already started", map[string]any{"state": state})
	}
	c.state = StateAwaitingMedia
	startCtx, cancel := context.WithCancel(ctx)
	c.cancelStart = cancel
	c.mu.Unlock()
	defer cancel()

	stream, err := c.media.Acquire(startCtx)
	if err != nil {
		c.abort(nil, nil)
		return apperrors.NewMediaUnavailable(err)
	}

	joinCtx, cancelJoin := context.WithTimeout(startCtx, c.cfg.JoinTimeout)
	defer cancelJoin()
	room, err := c.relay.Join(joinCtx, c.cfg.RoomID, c.cfg.LocalUserID)
	if err != nil {
		c.abort(stream, nil)
		return apperrors.NewConnectionError("relay join failed", err)
	}

	c.mu.Lock()
	if c.state != StateAwaitingMedia {
		// abandoned while acquiring; release everything that made it this far
		c.mu.Unlock()
		stream.Stop()
		room.Leave()
		return apperrors.NewInvalidState("session start abandoned", nil)
	}
	c.state = StateConnected
	c.stream = stream
	c.room = room
	c.mu.Unlock()

	c.publish(events.EventSessionStarted, events.SessionStartedPayload{RoomID: c.cfg.RoomID})
	c.logger.Info("session connected",
		zap.String("request_id", c.cfg.RequestID),
		zap.String("room_id", c.cfg.RoomID))

	go c.watch(room)
	return nil
}

// End terminates the session on local user action. Duplicate calls, and calls
// racing a relay disconnect, are no-ops after the first.
func (c *Coordinator) End(ctx context.Context) error {
	return c.terminate(ctx, "end")
}

// watch consumes relay events until the peer leaves or the stream closes;
// either way the session terminates identically to a local End.
func (c *Coordinator) watch(room relay.RoomSession) {
	for ev := range room.Events() {
		if ev.Type == relay.EventPeerLeft {
			_ = c.terminate(context.Background(), "disconnect")
			return
		}
		if c.cfg.OnEvent != nil {
			c.cfg.OnEvent(ev)
		}
	}
	// channel closed: relay-level disconnect
	_ = c.terminate(context.Background(), "disconnect")
}

// terminate is the single Connected -> Ending -> Ended path. The mutex-guarded
// state check admits exactly one caller; everyone else observes Ending/Ended
// and returns nil, so user end and disconnect are observationally identical.
func (c *Coordinator) terminate(ctx context.Context, trigger string) error {
	c.mu.Lock()
	switch c.state {
	case StateEnding, StateEnded:
		c.mu.Unlock()
		return nil
	case StateIdle:
		c.state = StateEnded
		close(c.done)
		c.mu.Unlock()
		return nil
	case StateAwaitingMedia:
		// abandon an in-flight start; Start's own path releases resources
		c.state = StateEnded
		cancel := c.cancelStart
		close(c.done)
		c.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return nil
	}

	c.state = StateEnding
	stream := c.stream
	room := c.room
	c.stream = nil
	c.room = nil
	c.mu.Unlock()

	if room != nil {
		room.Leave()
	}
	if stream != nil {
		stream.Stop()
	}

	var settleErr error
	if c.settle != nil {
		settleErr = c.settle(ctx, c.cfg.RequestID, c.cfg.RequesterID, c.cfg.HelperID, c.cfg.Amount)
		if settleErr != nil {
			c.logger.Error("settlement failed",
				zap.String("request_id", c.cfg.RequestID), zap.Error(settleErr))
		}
	}

	c.mu.Lock()
	c.state = StateEnded
	close(c.done)
	c.mu.Unlock()

	c.publish(events.EventSessionEnded, events.SessionEndedPayload{RoomID: c.cfg.RoomID, Trigger: trigger})
	c.logger.Info("session ended",
		zap.String("request_id", c.cfg.RequestID),
		zap.String("trigger", trigger))
	return settleErr
}

// abort releases partial resources from a failed start and lands in Ended
// without settlement: no session occurred.
func (c *Coordinator) abort(stream MediaStream, room relay.RoomSession) {
	if room != nil {
		room.Leave()
	}
	if stream != nil {
		stream.Stop()
	}
	c.mu.Lock()
	if c.state == StateEnded {
		c.mu.Unlock()
		return
	}
	c.state = StateEnded
	close(c.done)
	c.mu.Unlock()
}

func (c *Coordinator) publish(eventType events.EventType, payload interface{}) {
	if c.dispatcher == nil {
		return
	}
	_ = c.dispatcher.Publish(context.Background(), events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		RequestID: c.cfg.RequestID,
		ActorID:   c.cfg.LocalUserID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
