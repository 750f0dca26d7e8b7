package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/connect-campus/peer-session-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller as established by the
// external identity issuer.
type Principal struct {
	UserID string
	Name   string
	Admin  bool
}

// AuthMiddleware validates bearer tokens and attaches the principal.
type AuthMiddleware struct {
	tokens *TokenVerifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return apperrors.NewUnauthorized("missing bearer token")
	}

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	c.Locals(principalKey, &Principal{
		UserID: claims.Subject,
		Name:   name,
		Admin:  claims.Admin,
	})
	return c.Next()
}

// RequireAdmin gates admin-only routes; must run after Handle.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.Admin {
			return apperrors.NewForbidden("admin required")
		}
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// bearerToken extracts the token from the Authorization header, falling back
// to the access_token query parameter for websocket upgrades where browsers
// cannot set headers.
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Query("access_token")
}
