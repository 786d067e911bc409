package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lanoanh-osi/ServiceOps/internal/session"
	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal is the authenticated caller: its gateway session and the
// upstream session stored under it.
type Principal struct {
	SessionID string
	Session   session.Session
	Store     session.Store
}

// AuthMiddleware validates bearer tokens and loads the session.
type AuthMiddleware struct {
	tokens   *TokenManager
	sessions session.Provider
	manager  *session.Manager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, sessions session.Provider, manager *session.Manager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions, manager: manager}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	store := m.sessions.Open(claims.SessionID)
	current, err := m.manager.Current(c.UserContext(), store)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if current.IsLoggedOut() {
		return apperrors.NewUnauthorized("session expired")
	}

	c.Locals(principalKey, &Principal{SessionID: claims.SessionID, Session: current, Store: store})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
