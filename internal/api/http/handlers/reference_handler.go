package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/lanoanh-osi/ServiceOps/internal/api/dto"
	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/service"
	"github.com/lanoanh-osi/ServiceOps/internal/session"
)

// ReferenceHandler serves option lists and device lookups.
type ReferenceHandler struct {
	service *service.ReferenceService
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(referenceService *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{service: referenceService}
}

// ActivityTypes GET /reference/activity-types.
func (h *ReferenceHandler) ActivityTypes(c *fiber.Ctx) error {
	return h.options(c, h.service.ActivityTypes)
}

// MaintenanceCategories GET /reference/maintenance-categories.
func (h *ReferenceHandler) MaintenanceCategories(c *fiber.Ctx) error {
	return h.options(c, h.service.MaintenanceCategories)
}

// MaintenanceTypes GET /reference/maintenance-types.
func (h *ReferenceHandler) MaintenanceTypes(c *fiber.Ctx) error {
	return h.options(c, h.service.MaintenanceTypes)
}

// CheckDevice POST /reference/devices/check.
func (h *ReferenceHandler) CheckDevice(c *fiber.Ctx) error {
	return h.lookup(c, h.service.CheckDevice)
}

// CheckSerial POST /reference/serials/check.
func (h *ReferenceHandler) CheckSerial(c *fiber.Ctx) error {
	return h.lookup(c, h.service.CheckSerial)
}

func (h *ReferenceHandler) options(c *fiber.Ctx, fetch func(context.Context, session.Session) ([]string, error)) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	opts, err := fetch(c.UserContext(), sess)
	if err != nil {
		return err
	}
	return ok(c, opts)
}

func (h *ReferenceHandler) lookup(c *fiber.Ctx, fetch func(context.Context, session.Session, string) (domain.DeviceLookup, error)) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.SerialRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	device, err := fetch(c.UserContext(), sess, req.Serial)
	if err != nil {
		return err
	}
	return ok(c, device)
}
