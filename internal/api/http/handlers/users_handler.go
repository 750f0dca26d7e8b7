package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/connect-campus/peer-session-service/internal/api/dto"
	"github.com/connect-campus/peer-session-service/internal/domain"
	"github.com/connect-campus/peer-session-service/internal/service"
)

// UsersHandler serves user and leaderboard endpoints.
type UsersHandler struct {
	leaderboard *service.LeaderboardService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(leaderboard *service.LeaderboardService) *UsersHandler {
	return &UsersHandler{leaderboard: leaderboard}
}

// ListUsers GET /users. Sorted by xp descending with ranks attached.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	limit := parseInt(c.Query("limit"), 100)
	ranked, err := h.leaderboard.Top(c.UserContext(), limit)
	if err != nil {
		return err
	}
	items := make([]dto.RankedUserResponse, 0, len(ranked))
	for _, row := range ranked {
		items = append(items, dto.RankedUserResponse{
			Rank:         row.Rank,
			UserResponse: userResponse(&row.User),
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetUser GET /users/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.leaderboard.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		XP:    user.XP,
		Level: user.Level,
	}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
