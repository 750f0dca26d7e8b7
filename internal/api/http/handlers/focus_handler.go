package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/connect-campus/peer-session-service/internal/api/dto"
	"github.com/connect-campus/peer-session-service/internal/auth"
	"github.com/connect-campus/peer-session-service/internal/domain"
	"github.com/connect-campus/peer-session-service/internal/service"
	apperrors "github.com/connect-campus/peer-session-service/pkg/util"
)

// FocusHandler serves Pomodoro session endpoints.
type FocusHandler struct {
	focus *service.FocusService
}

// NewFocusHandler constructs handler.
func NewFocusHandler(focus *service.FocusService) *FocusHandler {
	return &FocusHandler{focus: focus}
}

// CreateSession POST /sessions.
func (h *FocusHandler) CreateSession(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.FocusSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	session, err := h.focus.Record(c.UserContext(), principal.UserID, req.Topic, req.Duration)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": focusSessionResponse(session)})
}

// ListSessions GET /sessions.
func (h *FocusHandler) ListSessions(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	sessions, err := h.focus.List(c.UserContext(), principal.UserID, parseInt(c.Query("limit"), 100))
	if err != nil {
		return err
	}
	resp := dto.FocusSessionListResponse{Sessions: make([]dto.FocusSessionResponse, 0, len(sessions))}
	for i := range sessions {
		resp.Sessions = append(resp.Sessions, focusSessionResponse(&sessions[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// ResetSessions DELETE /sessions. Admin only.
func (h *FocusHandler) ResetSessions(c *fiber.Ctx) error {
	if err := h.focus.Reset(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func focusSessionResponse(session *domain.FocusSession) dto.FocusSessionResponse {
	return dto.FocusSessionResponse{
		ID:          session.ID,
		Topic:       session.Topic,
		Duration:    session.Duration,
		FocusPoints: session.FocusPoints,
		CreatedAt:   session.CreatedAt,
	}
}
