package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lanoanh-osi/ServiceOps/internal/api/dto"
	"github.com/lanoanh-osi/ServiceOps/internal/auth"
	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/session"
	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

func respond(c *fiber.Ctx, status int, data any) error {
	body := fiber.Map{"success": true, "status": status}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

func ok(c *fiber.Ctx, data any) error {
	return respond(c, http.StatusOK, data)
}

// bind parses the JSON body into req and validates it.
func bind(c *fiber.Ctx, req any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	return dto.Validate(req)
}

func currentSession(c *fiber.Ctx) (session.Session, error) {
	principal, found := auth.PrincipalFromContext(c)
	if !found {
		return session.LoggedOut, apperrors.NewUnauthorized("session required")
	}
	return principal.Session, nil
}

func ticketType(c *fiber.Ctx) (domain.TicketType, error) {
	t, found := domain.ParseTicketType(c.Params("type"))
	if !found {
		return "", apperrors.NewValidationError("unknown ticket type", map[string]any{"type": c.Params("type")})
	}
	return t, nil
}

func ticketID(c *fiber.Ctx) (string, error) {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return "", apperrors.NewValidationError("ticket id is required", nil)
	}
	return id, nil
}
