package webhook

import (
	"context"
	"strings"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

// Workflow endpoint paths.
const (
	PathLogin          = "/webhook/login"
	PathSendOTP        = "/webhook/sent-otp"
	PathResetOTP       = "/webhook/reset-otp"
	PathChangePassword = "/webhook/change-password"
	PathChangePlayerID = "/webhook/change-onesignal-id"

	PathUnassigned  = "/webhook/tickets/not-assigned"
	PathPerformance = "/webhook/performance-metrics"

	PathDeliveryComplete = "/webhook/tickets/delivery-installation/complete"

	PathMaintenanceContact       = "/webhook/ticket/maintenance-update-contact-info"
	PathMaintenanceDevice        = "/webhook/ticket/maintenance-update-device-info"
	PathMaintenanceType          = "/webhook/ticket/maintenance-update-type"
	PathMaintenanceFirstResponse = "/webhook/ticket/maintenance-update-first-response"
	PathMaintenanceSupplier      = "/webhook/ticket/maintenance-update-supplier"
	PathMaintenanceStart         = "/webhook/ticket/maintenance-start"
	// The upstream workflow is registered under this misspelling.
	PathMaintenanceResult = "/webhook/ticket/maintenance-resut"

	PathActivityInfo   = "/webhook/ticket/activity-support-update-info"
	PathActivityResult = "/webhook/ticket/activity-support-result"

	PathActivityCreate    = "/webhook/tickets/activity-support-create"
	PathMaintenanceCreate = "/webhook/maintenance-ticket-create"

	PathActivityTypes          = "/webhook/activity-types"
	PathMaintenanceCategories  = "/webhook/maintenance-ticket-category"
	PathMaintenanceTicketTypes = "/webhook/maintenance-ticket-type"
	PathCheckDevice            = "/webhook/check-device"
	PathSerialCheck            = "/webhook/serial-check"
)

// Body keys shared by most workflows.
const (
	KeyTicketID  = "ticket-id"
	KeyStaffCode = "staff-code"
	KeyEmail     = "email"
	KeyData      = "data"
)

var categorySegment = map[domain.TicketType]string{
	domain.TicketTypeDelivery:    "delivery-installation",
	domain.TicketTypeMaintenance: "maintenance-repair",
	domain.TicketTypeSales:       "activity-support",
}

// ListPath returns the unpaged list endpoint of a category.
func ListPath(t domain.TicketType) string {
	return "/webhook/tickets/" + categorySegment[t]
}

// DetailPath returns the detail endpoint of a category.
func DetailPath(t domain.TicketType) string {
	return ListPath(t) + "-detail"
}

// AcceptPath returns the accept endpoint; activity tickets cannot be accepted.
func AcceptPath(t domain.TicketType) (string, bool) {
	if t == domain.TicketTypeSales {
		return "", false
	}
	return ListPath(t) + "/accept", true
}

// IdentityBody returns the identity keys for an authenticated body, omitting
// unknown values.
func IdentityBody(id domain.Identity) map[string]any {
	body := map[string]any{}
	if id.Email != "" {
		body[KeyEmail] = id.Email
	}
	if id.StaffCode != "" {
		body[KeyStaffCode] = id.StaffCode
	}
	return body
}

// LoginResult is a successful upstream login.
type LoginResult struct {
	Token string
	User  map[string]any
}

// Login exchanges credentials for a bearer token and user record. Anything
// other than an explicit "success" with a token is a failure.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	env := c.Do(ctx, Request{
		Path: PathLogin,
		Body: map[string]any{"email": email, "password": password},
	})
	if !env.Success {
		msg := env.Message
		if env.Status != 0 {
			msg = firstNonEmpty(BodyMessage(env.Data), apperrors.MsgLoginFailed)
		}
		return LoginResult{}, apperrors.NewUpstreamError(env.Status, msg, false)
	}

	rec := first(env.Data)
	token, _ := rec["token"].(string)
	if !IsSuccess(env.Data) || strings.TrimSpace(token) == "" {
		msg := firstNonEmpty(BodyMessage(env.Data), apperrors.MsgLoginFailed)
		return LoginResult{}, apperrors.NewUpstreamError(env.Status, msg, true)
	}

	user, _ := rec["user"].(map[string]any)
	if user == nil {
		user = map[string]any{}
	}
	if _, ok := user["email"]; !ok && email != "" {
		user["email"] = email
	}
	return LoginResult{Token: token, User: user}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
