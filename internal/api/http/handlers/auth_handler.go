package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lanoanh-osi/ServiceOps/internal/api/dto"
	"github.com/lanoanh-osi/ServiceOps/internal/auth"
	"github.com/lanoanh-osi/ServiceOps/internal/service"
	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

// AuthHandler serves login, logout and the password flows.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.service.Login(c.UserContext(), req.Email, req.Password, req.PlayerID)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// Logout POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, found := auth.PrincipalFromContext(c)
	if !found {
		return apperrors.NewUnauthorized("session required")
	}
	if err := h.service.Logout(c.UserContext(), principal.SessionID, principal.Store); err != nil {
		return err
	}
	return ok(c, nil)
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"user": sess.User, "identity": sess.Identity()})
}

// SendOTP POST /auth/otp/send.
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req dto.SendOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.service.SendOTP(c.UserContext(), req.Email); err != nil {
		return err
	}
	return respond(c, http.StatusAccepted, nil)
}

// ResetPassword POST /auth/otp/reset.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.service.ResetPassword(c.UserContext(), req.Email, req.OTP, req.NewPassword); err != nil {
		return err
	}
	return ok(c, nil)
}

// ChangePassword POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.service.ChangePassword(c.UserContext(), sess, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return ok(c, nil)
}
