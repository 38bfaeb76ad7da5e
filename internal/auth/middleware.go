package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/internship-portal/internal/domain"
	apperrors "github.com/spec-kit/internship-portal/pkg/util"
)

const (
	principalKey   = "auth_principal"
	legacyTokenKey = "x-auth-token"
)

// Principal represents the authenticated caller as decoded from the token.
type Principal struct {
	UserID string
	Role   domain.Role
}

// IsAdmin reports whether the caller holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == domain.RoleAdmin
}

// AuthMiddleware validates bearer tokens and stores the principal on the request.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
// A missing token is a 401; a token that is present but unusable is a 403.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, present, wellFormed := extractToken(c)
	if !present {
		return apperrors.NewUnauthorized("access token required")
	}
	if !wellFormed {
		return apperrors.NewForbidden("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return apperrors.NewForbidden("invalid or expired token")
	}

	c.Locals(principalKey, &Principal{UserID: claims.UserID, Role: claims.Role})
	return c.Next()
}

func extractToken(c *fiber.Ctx) (token string, present, wellFormed bool) {
	authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if strings.EqualFold(authHeader, "Bearer") {
		authHeader = ""
	}
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", true, false
		}
		token = strings.TrimSpace(parts[1])
		if token == "" {
			return "", false, false
		}
		return token, true, true
	}
	if legacy := strings.TrimSpace(c.Get(legacyTokenKey)); legacy != "" {
		return legacy, true, true
	}
	return "", false, false
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
