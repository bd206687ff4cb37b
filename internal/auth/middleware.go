package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/redlink/internal/domain"
	apperrors "github.com/spec-kit/redlink/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated donor session.
type Principal struct {
	DonorID string
	Donor   domain.Donor
}

// DonorLookup resolves the donor behind a session token.
type DonorLookup interface {
	GetByID(ctx context.Context, id string) (domain.Donor, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	donors DonorLookup
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, donors DonorLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, donors: donors}
}

// Handle enforces authentication for protected routes. A token whose session
// was closed by logout is rejected.
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

	donor, err := m.donors.GetByID(c.UserContext(), claims.DonorID)
	if err != nil {
		if errors.Is(err, domain.ErrDonorNotFound) {
			return apperrors.NewUnauthorized("session closed")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{DonorID: donor.ID, Donor: donor})
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
