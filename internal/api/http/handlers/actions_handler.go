package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lanoanh-osi/ServiceOps/internal/api/dto"
	"github.com/lanoanh-osi/ServiceOps/internal/service"
	"github.com/lanoanh-osi/ServiceOps/internal/session"
)

// ActionsHandler serves ticket mutations. Every mutation answers with the
// plain success envelope; the client refetches the detail.
type ActionsHandler struct {
	service *service.ActionService
}

// NewActionsHandler constructs handler.
func NewActionsHandler(actionService *service.ActionService) *ActionsHandler {
	return &ActionsHandler{service: actionService}
}

// mutation resolves session and ticket id, binds req when non-nil, then
// runs fn.
func (h *ActionsHandler) mutation(c *fiber.Ctx, req any, fn func(sess session.Session, id string) error) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	if req != nil {
		if err := bind(c, req); err != nil {
			return err
		}
	}
	if err := fn(sess, id); err != nil {
		return err
	}
	return ok(c, fiber.Map{"ticket_id": id})
}

// Accept POST /tickets/:type/:id/accept.
func (h *ActionsHandler) Accept(c *fiber.Ctx) error {
	t, err := ticketType(c)
	if err != nil {
		return err
	}
	return h.mutation(c, nil, func(sess session.Session, id string) error {
		return h.service.Accept(c.UserContext(), sess, t, id)
	})
}

// CompleteDelivery POST /tickets/delivery/:id/complete.
func (h *ActionsHandler) CompleteDelivery(c *fiber.Ctx) error {
	var req dto.DeliveryCompleteRequest
	return h.mutation(c, &req, func(sess session.Session, id string) error {
		return h.service.CompleteDelivery(c.UserContext(), sess, id, req.Input())
	})
}

// UpdateContact POST /tickets/maintenance/:id/contact.
func (h *ActionsHandler) UpdateContact(c *fiber.Ctx) error {
	var req service.ContactInput
	return h.mutation(c, &req, func(sess session.Session, id string) error {
		return h.service.UpdateContact(c.UserContext(), sess, id, req)
	})
}

// UpdateDevice POST /tickets/maintenance/:id/device.
func (h *ActionsHandler) UpdateDevice(c *fiber.Ctx) error {
	var req service.DeviceInput
	return h.mutation(c, &req, func(sess session.Session, id string) error {
		return h.service.UpdateDevice(c.UserContext(), sess, id, req)
	})
}

// UpdateType POST /tickets/maintenance/:id/type.
func (h *ActionsHandler) UpdateType(c *fiber.Ctx) error {
	var req service.TypeInput
	return h.mutation(c, &req, func(sess session.Session, id string) error {
		return h.service.UpdateType(c.UserContext(), sess, id, req)
	})
}

// FirstResponse POST /tickets/maintenance/:id/first-response.
func (h *ActionsHandler) FirstResponse(c *fiber.Ctx) error {
	var req dto.FirstResponseRequest
	return h.mutation(c, &req, func(sess session.Session, id string) error {
		return h.service.RecordFirstResponse(c.UserContext(), sess, id, req.Input())
	})
}

// Supplier POST /tickets/maintenance/:id/supplier.
func (h *ActionsHandler) Supplier(c *fiber.Ctx) error {
	var req service.SupplierInput
	return h.mutation(c, &req, func(sess session.Session, id string) error {
		return h.service.RecordSupplier(c.UserContext(), sess, id, req)
	})
}

// Start POST /tickets/maintenance/:id/start.
func (h *ActionsHandler) Start(c *fiber.Ctx) error {
	var req dto.StageRequest
	return h.mutation(c, &req, func(sess session.Session, id string) error {
		return h.service.StartExecution(c.UserContext(), sess, id, req.Input())
	})
}

// Result POST /tickets/maintenance/:id/result.
func (h *ActionsHandler) Result(c *fiber.Ctx) error {
	var req dto.StageRequest
	return h.mutation(c, &req, func(sess session.Session, id string) error {
		return h.service.RecordResult(c.UserContext(), sess, id, req.Input())
	})
}

// ActivityInfo POST /tickets/sales/:id/info.
func (h *ActionsHandler) ActivityInfo(c *fiber.Ctx) error {
	var req service.ActivityInfoInput
	return h.mutation(c, &req, func(sess session.Session, id string) error {
		return h.service.UpdateActivityInfo(c.UserContext(), sess, id, req)
	})
}

// ActivityResult POST /tickets/sales/:id/result.
func (h *ActionsHandler) ActivityResult(c *fiber.Ctx) error {
	var req dto.ActivityResultRequest
	return h.mutation(c, &req, func(sess session.Session, id string) error {
		return h.service.RecordActivityResult(c.UserContext(), sess, id, req.Note)
	})
}

// CreateActivity POST /tickets/sales.
func (h *ActionsHandler) CreateActivity(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.CreateActivityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id, err := h.service.CreateActivity(c.UserContext(), sess, req.Input())
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, fiber.Map{"ticket_id": id})
}

// CreateEmergency POST /tickets/maintenance/emergency.
func (h *ActionsHandler) CreateEmergency(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.CreateEmergencyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id, err := h.service.CreateEmergency(c.UserContext(), sess, req.Input())
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, fiber.Map{"ticket_id": id})
}
