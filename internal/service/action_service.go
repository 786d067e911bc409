package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/events"
	"github.com/lanoanh-osi/ServiceOps/internal/geo"
	"github.com/lanoanh-osi/ServiceOps/internal/mapper"
	"github.com/lanoanh-osi/ServiceOps/internal/media"
	"github.com/lanoanh-osi/ServiceOps/internal/session"
	"github.com/lanoanh-osi/ServiceOps/internal/webhook"
	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

// Default failure messages for ticket creation.
const (
	MsgCreateFailed          = "Tạo ticket không thành công"
	MsgCreateEmergencyFailed = "Tạo ticket khẩn cấp không thành công"
	MsgImageRequired         = "Vui lòng đính kèm ít nhất một hình ảnh"
)

// Default statuses of created tickets.
const (
	StatusNotStarted = "Chưa bắt đầu"
	StatusCompleted  = "Đã hoàn thành"
)

// Locator resolves a device position into a location string.
type Locator interface {
	Describe(ctx context.Context, p *geo.Point) string
}

// ActionService submits ticket mutations. Each is one POST judged by an
// explicit "success" body status; nothing is retried.
type ActionService struct {
	client     *webhook.Client
	media      *media.Processor
	locator    Locator
	dispatcher events.Dispatcher
	now        func() time.Time
	logger     *zap.Logger
}

// ActionDependencies bundles collaborators for the action service.
type ActionDependencies struct {
	Client     *webhook.Client
	Media      *media.Processor
	Locator    Locator
	Dispatcher events.Dispatcher
	Now        func() time.Time
	Logger     *zap.Logger
}

// NewActionService constructs the service.
func NewActionService(deps ActionDependencies) *ActionService {
	svc := &ActionService{
		client:     deps.Client,
		media:      deps.Media,
		locator:    deps.Locator,
		dispatcher: deps.Dispatcher,
		now:        deps.Now,
		logger:     deps.Logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.media == nil {
		svc.media = media.NewProcessor(0, 0, svc.logger)
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// DeliveryCompleteInput closes a delivery ticket.
type DeliveryCompleteInput struct {
	Note     string
	Products []string
	Serials  []string
	// Images are base64 or data URLs; they are sent as JPEG data URLs.
	Images []string
}

// ContactInput updates the maintenance contact block.
type ContactInput struct {
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Mail    string `json:"mail,omitempty"`
}

// DeviceInput updates the maintenance device block.
type DeviceInput struct {
	Brand       string `json:"brand,omitempty"`
	Model       string `json:"model,omitempty"`
	Serial      string `json:"serial,omitempty"`
	InstallDate string `json:"install-date,omitempty"`
}

// TypeInput reclassifies a maintenance ticket.
type TypeInput struct {
	Type     string `json:"type,omitempty"`
	Category string `json:"category,omitempty"`
}

// FirstResponseInput records the first customer contact.
type FirstResponseInput struct {
	Time    string
	Content string
	Image   string
}

// SupplierInput records the supplier's instruction.
type SupplierInput struct {
	ContactDate     string `json:"contact-date,omitempty"`
	ResponseDate    string `json:"response-date,omitempty"`
	ResponseContent string `json:"response-content,omitempty"`
}

// StageInput is shared by the start and result stages. Location, when set,
// overrides Position.
type StageInput struct {
	Note     string
	Images   []string
	Time     string
	Location string
	Position *geo.Point
}

// ActivityInfoInput updates an activity ticket's main information.
type ActivityInfoInput struct {
	Subject     string `json:"subject,omitempty"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
	Customer    string `json:"customer,omitempty"`
	ContactName string `json:"contactName,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// CreateActivityInput creates an activity/support ticket.
type CreateActivityInput struct {
	Name         string
	Description  string
	CustomerName string
	Type         string
	Deadline     string
	Status       string
	CompleteDate string
	Note         string
}

// CreateEmergencyInput creates an already-handled emergency maintenance ticket.
type CreateEmergencyInput struct {
	Name         string
	Phone        string
	Email        string
	Company      string
	Serial       string
	Issue        string
	Category     string
	ServiceType  string
	Status       string
	Assignee     string
	ArriveTime   string
	CompleteTime string
	Brand        string
	Model        string
}

// Accept claims a delivery or maintenance ticket.
func (s *ActionService) Accept(ctx context.Context, sess session.Session, t domain.TicketType, ticketID string) error {
	path, ok := webhook.AcceptPath(t)
	if !ok {
		return apperrors.NewValidationError("activity tickets cannot be accepted", map[string]any{"type": t})
	}
	body := map[string]any{
		webhook.KeyTicketID:  ticketID,
		webhook.KeyStaffCode: sess.Identity().StaffCode,
	}
	return s.submit(ctx, sess, t, domain.ActionAccept, ticketID, path, body, apperrors.MsgUpdateFailed)
}

// CompleteDelivery closes a delivery ticket. The first image is sent as
// base64-result-image; all of them as base64-result-images when more than one.
func (s *ActionService) CompleteDelivery(ctx context.Context, sess session.Session, ticketID string, in DeliveryCompleteInput) error {
	if err := s.check(sess, ticketID); err != nil {
		return err
	}
	imgs, err := s.processImages(in.Images)
	if err != nil {
		return err
	}

	body := webhook.IdentityBody(sess.Identity())
	body[webhook.KeyTicketID] = ticketID
	body["note"] = in.Note
	body["products"] = nonNil(in.Products)
	body["serials"] = nonNil(in.Serials)
	if len(imgs) > 0 {
		body["base64-result-image"] = imgs[0].DataURL()
		if len(imgs) > 1 {
			urls := make([]string, len(imgs))
			for i, img := range imgs {
				urls[i] = img.DataURL()
			}
			body["base64-result-images"] = urls
		}
	}
	return s.submit(ctx, sess, domain.TicketTypeDelivery, domain.ActionDeliveryDone, ticketID, webhook.PathDeliveryComplete, body, apperrors.MsgUpdateFailed)
}

// UpdateContact updates the maintenance contact block.
func (s *ActionService) UpdateContact(ctx context.Context, sess session.Session, ticketID string, in ContactInput) error {
	return s.update(ctx, sess, domain.TicketTypeMaintenance, domain.ActionContactInfo, ticketID, webhook.PathMaintenanceContact, in)
}

// UpdateDevice updates the maintenance device block.
func (s *ActionService) UpdateDevice(ctx context.Context, sess session.Session, ticketID string, in DeviceInput) error {
	return s.update(ctx, sess, domain.TicketTypeMaintenance, domain.ActionDeviceInfo, ticketID, webhook.PathMaintenanceDevice, in)
}

// UpdateType reclassifies a maintenance ticket.
func (s *ActionService) UpdateType(ctx context.Context, sess session.Session, ticketID string, in TypeInput) error {
	return s.update(ctx, sess, domain.TicketTypeMaintenance, domain.ActionTypeCategory, ticketID, webhook.PathMaintenanceType, in)
}

// RecordFirstResponse records the first response stage; the image is optional.
func (s *ActionService) RecordFirstResponse(ctx context.Context, sess session.Session, ticketID string, in FirstResponseInput) error {
	if err := s.check(sess, ticketID); err != nil {
		return err
	}
	data := map[string]any{
		"first-response-time":    s.timeOrNow(in.Time),
		"first-response-content": in.Content,
	}
	if strings.TrimSpace(in.Image) != "" {
		img, err := s.processImage(in.Image)
		if err != nil {
			return err
		}
		data["first-response-image"] = img.Base64()
	}
	return s.update(ctx, sess, domain.TicketTypeMaintenance, domain.ActionFirstResponse, ticketID, webhook.PathMaintenanceFirstResponse, data)
}

// RecordSupplier records the supplier instruction stage.
func (s *ActionService) RecordSupplier(ctx context.Context, sess session.Session, ticketID string, in SupplierInput) error {
	return s.update(ctx, sess, domain.TicketTypeMaintenance, domain.ActionSupplier, ticketID, webhook.PathMaintenanceSupplier, in)
}

// StartExecution records arrival on site. At least one image is required
// and is checked before any network call.
func (s *ActionService) StartExecution(ctx context.Context, sess session.Session, ticketID string, in StageInput) error {
	if err := s.check(sess, ticketID); err != nil {
		return err
	}
	img, err := s.requireImage(in.Images)
	if err != nil {
		return err
	}
	data := map[string]any{
		"start-image":    img,
		"start-time":     s.timeOrNow(in.Time),
		"start-location": s.location(ctx, in),
	}
	return s.update(ctx, sess, domain.TicketTypeMaintenance, domain.ActionStart, ticketID, webhook.PathMaintenanceStart, data)
}

// RecordResult records the outcome of the work. At least one image is
// required and is checked before any network call.
func (s *ActionService) RecordResult(ctx context.Context, sess session.Session, ticketID string, in StageInput) error {
	if err := s.check(sess, ticketID); err != nil {
		return err
	}
	img, err := s.requireImage(in.Images)
	if err != nil {
		return err
	}
	data := map[string]any{
		"note":            in.Note,
		"result-image":    img,
		"result-time":     s.timeOrNow(in.Time),
		"result-location": s.location(ctx, in),
	}
	return s.update(ctx, sess, domain.TicketTypeMaintenance, domain.ActionResult, ticketID, webhook.PathMaintenanceResult, data)
}

// UpdateActivityInfo updates an activity ticket's main information.
func (s *ActionService) UpdateActivityInfo(ctx context.Context, sess session.Session, ticketID string, in ActivityInfoInput) error {
	return s.update(ctx, sess, domain.TicketTypeSales, domain.ActionActivityInfo, ticketID, webhook.PathActivityInfo, in)
}

// RecordActivityResult records the activity result note.
func (s *ActionService) RecordActivityResult(ctx context.Context, sess session.Session, ticketID, note string) error {
	return s.update(ctx, sess, domain.TicketTypeSales, domain.ActionActivityResult, ticketID, webhook.PathActivityResult, map[string]any{"note": note})
}

// CreateActivity creates an activity/support ticket assigned to the caller
// and returns its generated id.
func (s *ActionService) CreateActivity(ctx context.Context, sess session.Session, in CreateActivityInput) (string, error) {
	if err := requireSession(sess); err != nil {
		return "", err
	}
	ticketID := s.NewTicketID()
	body := map[string]any{
		webhook.KeyTicketID: ticketID,
		"name":              in.Name,
		"type":              in.Type,
		"description":       in.Description,
		"customer-name":     in.CustomerName,
		"deadline":          in.Deadline,
		"status":            firstNonEmpty(in.Status, StatusNotStarted),
		"complete-date":     in.CompleteDate,
		"note":              in.Note,
		"assignee":          sess.Identity().StaffCode,
	}
	if err := s.submit(ctx, sess, domain.TicketTypeSales, domain.ActionCreateActivity, ticketID, webhook.PathActivityCreate, body, MsgCreateFailed); err != nil {
		return "", err
	}
	return ticketID, nil
}

// CreateEmergency creates an emergency maintenance ticket and returns its
// generated id.
func (s *ActionService) CreateEmergency(ctx context.Context, sess session.Session, in CreateEmergencyInput) (string, error) {
	if err := requireSession(sess); err != nil {
		return "", err
	}
	ticketID := s.NewTicketID()
	// The workflow reads the status under the misspelled "stutus" key.
	body := map[string]any{
		webhook.KeyTicketID: ticketID,
		"customer-name":     in.Name,
		"phone":             in.Phone,
		"email":             in.Email,
		"company":           in.Company,
		"serial":            in.Serial,
		"brand":             in.Brand,
		"model":             in.Model,
		"issue":             in.Issue,
		"service-type":      in.ServiceType,
		"category":          in.Category,
		"stutus":            firstNonEmpty(in.Status, StatusCompleted),
		"assignee":          firstNonEmpty(in.Assignee, sess.Identity().StaffCode),
		"start-time":        in.ArriveTime,
		"complete-time":     in.CompleteTime,
	}
	if err := s.submit(ctx, sess, domain.TicketTypeMaintenance, domain.ActionCreateEmergency, ticketID, webhook.PathMaintenanceCreate, body, MsgCreateEmergencyFailed); err != nil {
		return "", err
	}
	return ticketID, nil
}

// NewTicketID returns "TK" followed by the last six digits of the
// millisecond clock.
func (s *ActionService) NewTicketID() string {
	ms := fmt.Sprint(s.now().UnixMilli())
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return "TK" + ms
}

// update sends the common {"ticket-id", data, email?, staff-code?} body.
func (s *ActionService) update(ctx context.Context, sess session.Session, t domain.TicketType, kind domain.ActionKind, ticketID, path string, data any) error {
	if err := s.check(sess, ticketID); err != nil {
		return err
	}
	body := webhook.IdentityBody(sess.Identity())
	body[webhook.KeyTicketID] = ticketID
	body[webhook.KeyData] = data
	return s.submit(ctx, sess, t, kind, ticketID, path, body, apperrors.MsgUpdateFailed)
}

func (s *ActionService) submit(ctx context.Context, sess session.Session, t domain.TicketType, kind domain.ActionKind, ticketID, path string, body map[string]any, defaultMsg string) error {
	if err := s.check(sess, ticketID); err != nil {
		return err
	}
	env, err := s.client.Mutate(ctx, webhook.Request{Path: path, Body: body, Token: sess.Token}, defaultMsg)
	s.publish(ctx, sess, t, kind, ticketID, err == nil, env.Message)
	if err != nil {
		s.logger.Info("ticket action failed",
			zap.String("action", string(kind)),
			zap.String("ticket_id", ticketID),
			zap.Int("status", env.Status),
			zap.String("message", env.Message))
	}
	return err
}

func (s *ActionService) publish(ctx context.Context, sess session.Session, t domain.TicketType, kind domain.ActionKind, ticketID string, ok bool, msg string) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventActionSubmitted,
		TicketID:  ticketID,
		Actor:     events.ActorFrom(sess.Identity()),
		Timestamp: s.now().UTC(),
		Payload: events.ActionSubmittedPayload{
			TicketType: t,
			Action:     kind,
			Success:    ok,
			Message:    msg,
		},
	})
	if err != nil {
		s.logger.Warn("action event handlers failed", zap.String("ticket_id", ticketID), zap.Error(err))
	}
}

func (s *ActionService) check(sess session.Session, ticketID string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if strings.TrimSpace(ticketID) == "" {
		return apperrors.NewValidationError("ticket id is required", nil)
	}
	return nil
}

// requireImage processes the first image as raw JPEG base64.
func (s *ActionService) requireImage(encoded []string) (string, error) {
	var nonEmpty []string
	for _, e := range encoded {
		if strings.TrimSpace(e) != "" {
			nonEmpty = append(nonEmpty, e)
		}
	}
	if len(nonEmpty) == 0 {
		return "", apperrors.NewValidationError(MsgImageRequired, nil)
	}
	img, err := s.processImage(nonEmpty[0])
	if err != nil {
		return "", err
	}
	return img.Base64(), nil
}

func (s *ActionService) processImage(encoded string) (media.Image, error) {
	img, err := s.media.ProcessEncoded(encoded)
	if err != nil {
		return media.Image{}, apperrors.NewValidationError("invalid image", map[string]any{"reason": err.Error()})
	}
	return img, nil
}

func (s *ActionService) processImages(encoded []string) ([]media.Image, error) {
	var nonEmpty []string
	for _, e := range encoded {
		if strings.TrimSpace(e) != "" {
			nonEmpty = append(nonEmpty, e)
		}
	}
	imgs, err := s.media.ProcessAll(nonEmpty)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid image", map[string]any{"reason": err.Error()})
	}
	return imgs, nil
}

func (s *ActionService) location(ctx context.Context, in StageInput) string {
	if loc := strings.TrimSpace(in.Location); loc != "" {
		return loc
	}
	if s.locator == nil {
		if in.Position != nil && in.Position.Valid() {
			return in.Position.Coordinates()
		}
		return geo.Unknown
	}
	return s.locator.Describe(ctx, in.Position)
}

func (s *ActionService) timeOrNow(v string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return s.now().UTC().Format(mapper.TimeLayout)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
