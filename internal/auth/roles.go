package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireDonor ensures a donor session is authenticated.
func RequireDonor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.DonorID == "" {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
