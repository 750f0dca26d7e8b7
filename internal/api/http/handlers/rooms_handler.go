package handlers

import (
	"context"
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/connect-campus/peer-session-service/internal/auth"
	"github.com/connect-campus/peer-session-service/internal/relay"
	apperrors "github.com/connect-campus/peer-session-service/pkg/util"
)

const wsUserKey = "ws_user_id"

// RoomsHandler bridges websocket clients onto the relay hub. Payloads are
// relayed verbatim: signaling and chat alike pass through untouched.
type RoomsHandler struct {
	hub    *relay.Hub
	logger *zap.Logger
}

// NewRoomsHandler constructs handler.
func NewRoomsHandler(hub *relay.Hub, logger *zap.Logger) *RoomsHandler {
	return &RoomsHandler{hub: hub, logger: logger}
}

type wsInbound struct {
	Kind    relay.MessageKind `json:"kind"`
	Payload json.RawMessage   `json:"payload"`
}

type wsOutbound struct {
	Type    relay.EventType `json:"type"`
	RoomID  string          `json:"room_id"`
	PeerID  string          `json:"peer_id,omitempty"`
	Message *relay.Message  `json:"message,omitempty"`
}

// Upgrade gates the route to websocket handshakes and stashes the caller
// identity for the connection handler.
func (h *RoomsHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return apperrors.NewValidationError("websocket upgrade required", nil)
	}
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	c.Locals(wsUserKey, principal.UserID)
	return c.Next()
}

// Serve returns the websocket connection handler.
func (h *RoomsHandler) Serve() fiber.Handler {
	return websocket.New(h.handle)
}

func (h *RoomsHandler) handle(conn *websocket.Conn) {
	roomID := conn.Params("roomID")
	userID, _ := conn.Locals(wsUserKey).(string)

	sub, err := h.hub.Join(context.Background(), roomID, userID)
	if err != nil {
		h.logger.Warn("room join rejected",
			zap.String("room", roomID), zap.String("user", userID), zap.Error(err))
		_ = conn.Close()
		return
	}
	defer sub.Leave()

	// writer: a closed event channel means we were disconnected by the hub
	go func() {
		for ev := range sub.Events() {
			out := wsOutbound{Type: ev.Type, RoomID: ev.RoomID, PeerID: ev.PeerID, Message: ev.Message}
			if err := conn.WriteJSON(out); err != nil {
				sub.Leave()
				return
			}
		}
		_ = conn.Close()
	}()

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		if err := sub.Send(relay.Message{Kind: in.Kind, Payload: in.Payload}); err != nil {
			return
		}
	}
}
