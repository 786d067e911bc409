package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/service"
	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

// TicketsHandler serves ticket reads.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// List GET /tickets?type=&status=&page=&page_size=.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.List(c.UserContext(), sess, q)
	if err != nil {
		return err
	}
	return ok(c, page)
}

// Counts GET /tickets/counts.
func (h *TicketsHandler) Counts(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	counts, err := h.service.Counts(c.UserContext(), sess)
	if err != nil {
		return err
	}
	return ok(c, counts)
}

// Unassigned GET /tickets/unassigned.
func (h *TicketsHandler) Unassigned(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	page, err := h.service.Unassigned(c.UserContext(), sess)
	if err != nil {
		return err
	}
	return ok(c, page)
}

// Detail GET /tickets/:type/:id.
func (h *TicketsHandler) Detail(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	t, err := ticketType(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	detail, err := h.service.Detail(c.UserContext(), sess, t, id)
	if err != nil {
		return err
	}
	return ok(c, detail)
}

// Performance GET /me/performance.
func (h *TicketsHandler) Performance(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	metrics, err := h.service.Performance(c.UserContext(), sess)
	if err != nil {
		return err
	}
	return ok(c, metrics)
}

func parseListQuery(c *fiber.Ctx) (service.ListQuery, error) {
	t, found := domain.ParseTicketType(c.Query("type"))
	if !found {
		return service.ListQuery{}, apperrors.NewValidationError("unknown ticket type", map[string]any{"type": c.Query("type")})
	}
	q := service.ListQuery{
		Type:     t,
		Page:     c.QueryInt("page", 0),
		PageSize: c.QueryInt("page_size", 0),
	}
	if raw := c.Query("status"); raw != "" {
		b, found := domain.ParseBucket(raw)
		if !found {
			return service.ListQuery{}, apperrors.NewValidationError("unknown status", map[string]any{"status": raw})
		}
		q.Bucket = b
	}
	return q, nil
}
