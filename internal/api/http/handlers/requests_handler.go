package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/connect-campus/peer-session-service/internal/api/dto"
	"github.com/connect-campus/peer-session-service/internal/auth"
	"github.com/connect-campus/peer-session-service/internal/domain"
	"github.com/connect-campus/peer-session-service/internal/service"
	apperrors "github.com/connect-campus/peer-session-service/pkg/util"
)

// RequestsHandler manages help request endpoints.
type RequestsHandler struct {
	registry   *service.RegistryService
	settlement *service.SettlementService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(registry *service.RegistryService, settlement *service.SettlementService) *RequestsHandler {
	return &RequestsHandler{registry: registry, settlement: settlement}
}

// CreateRequest POST /requests.
func (h *RequestsHandler) CreateRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.registry.Create(c.UserContext(), principal.UserID, service.RequestCreateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestResponse(request)})
}

// ListRequests GET /requests.
func (h *RequestsHandler) ListRequests(c *fiber.Ctx) error {
	var status *domain.RequestStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		parsed := domain.RequestStatus(strings.ToUpper(raw))
		status = &parsed
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)

	requests, err := h.registry.List(c.UserContext(), status, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, requestResponse(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetRequest GET /requests/:id.
func (h *RequestsHandler) GetRequest(c *fiber.Ctx) error {
	request, err := h.registry.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// AcceptRequest PUT /requests/:id/accept.
func (h *RequestsHandler) AcceptRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	request, err := h.registry.Accept(c.UserContext(), c.Params("id"), principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// CompleteRequest PUT /requests/:id/complete.
func (h *RequestsHandler) CompleteRequest(c *fiber.Ctx) error {
	request, err := h.registry.Complete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// SettleRequest POST /requests/:id/settle.
func (h *RequestsHandler) SettleRequest(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SettleRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	amount := req.Amount
	if amount == 0 {
		amount = h.settlement.DefaultAmount()
	}

	request, err := h.registry.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if request.HelperID == nil {
		return apperrors.NewInvalidState("request was never accepted",
			map[string]any{"request_id": request.ID})
	}

	result, err := h.settlement.Settle(c.UserContext(), request.ID, request.RequesterID, *request.HelperID, amount)
	if err != nil {
		return err
	}

	resp := dto.SettleResponse{
		Applied: result.Applied,
		Request: requestResponse(result.Request),
	}
	if result.Helper != nil {
		helper := userResponse(result.Helper)
		resp.Helper = &helper
	}
	if result.Requester != nil {
		requester := userResponse(result.Requester)
		resp.Requester = &requester
	}
	return c.JSON(fiber.Map{"data": resp})
}

// ResetRequests DELETE /requests. Admin only.
func (h *RequestsHandler) ResetRequests(c *fiber.Ctx) error {
	if err := h.registry.Reset(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func requestResponse(request *domain.HelpRequest) dto.RequestResponse {
	return dto.RequestResponse{
		ID:          request.ID,
		RequesterID: request.RequesterID,
		HelperID:    request.HelperID,
		Title:       request.Title,
		Description: request.Description,
		Status:      request.Status,
		RoomID:      request.RoomID(),
		CreatedAt:   request.CreatedAt,
		UpdatedAt:   request.UpdatedAt,
		CompletedAt: request.CompletedAt,
	}
}
