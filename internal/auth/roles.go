package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireSession ensures a logged-in technician is attached to the request.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Session.IsLoggedOut() {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}

// RequireStaffCode ensures the session user carries a staff code, which
// accept and create calls need.
func RequireStaffCode() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Session.Identity().StaffCode == "" {
			return fiber.NewError(http.StatusForbidden, "staff code required")
		}
		return c.Next()
	}
}
