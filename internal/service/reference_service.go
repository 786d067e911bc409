package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/mapper"
	"github.com/lanoanh-osi/ServiceOps/internal/payload"
	"github.com/lanoanh-osi/ServiceOps/internal/session"
	"github.com/lanoanh-osi/ServiceOps/internal/webhook"
	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

// Lookup failure messages.
const (
	MsgSerialMissing  = "Serial không tồn tại"
	MsgSerialNotFound = "Serial not found"
)

// ReferenceService serves option lists and device lookups.
type ReferenceService struct {
	client *webhook.Client
}

// NewReferenceService constructs the service.
func NewReferenceService(client *webhook.Client) *ReferenceService {
	return &ReferenceService{client: client}
}

// ActivityTypes lists activity type options.
func (s *ReferenceService) ActivityTypes(ctx context.Context, sess session.Session) ([]string, error) {
	return s.options(ctx, sess, webhook.PathActivityTypes)
}

// MaintenanceCategories lists maintenance category options.
func (s *ReferenceService) MaintenanceCategories(ctx context.Context, sess session.Session) ([]string, error) {
	return s.options(ctx, sess, webhook.PathMaintenanceCategories)
}

// MaintenanceTypes lists maintenance service type options.
func (s *ReferenceService) MaintenanceTypes(ctx context.Context, sess session.Session) ([]string, error) {
	return s.options(ctx, sess, webhook.PathMaintenanceTicketTypes)
}

// CheckDevice resolves device metadata from a serial; a lookup with no
// metadata is not found.
func (s *ReferenceService) CheckDevice(ctx context.Context, sess session.Session, serial string) (domain.DeviceLookup, error) {
	env, err := s.lookup(ctx, sess, webhook.PathCheckDevice, serial)
	if err != nil {
		return domain.DeviceLookup{}, err
	}
	device := mapper.MapDevice(env.Data)
	if device.IsEmpty() {
		return domain.DeviceLookup{}, apperrors.NewUpstreamError(http.StatusNotFound, MsgSerialMissing, false)
	}
	return device, nil
}

// CheckSerial is the serial-check variant used by the device form. The
// workflow reports unknown serials through its body status.
func (s *ReferenceService) CheckSerial(ctx context.Context, sess session.Session, serial string) (domain.DeviceLookup, error) {
	env, err := s.lookup(ctx, sess, webhook.PathSerialCheck, serial)
	if err != nil {
		return domain.DeviceLookup{}, err
	}
	if strings.Contains(strings.ToLower(webhook.BodyStatus(env.Data)), "serial not found") {
		return domain.DeviceLookup{}, apperrors.NewUpstreamError(http.StatusNotFound, MsgSerialNotFound, false)
	}
	return mapper.MapDevice(env.Data), nil
}

func (s *ReferenceService) lookup(ctx context.Context, sess session.Session, path, serial string) (webhook.Envelope, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return webhook.Envelope{}, apperrors.NewValidationError("serial is required", nil)
	}
	env := s.client.Do(ctx, webhook.Request{
		Path:  path,
		Body:  map[string]any{"serial": serial},
		Token: sess.Token,
	})
	if !env.Success {
		return env, env.Err()
	}
	return env, nil
}

func (s *ReferenceService) options(ctx context.Context, sess session.Session, path string) ([]string, error) {
	env := s.client.Do(ctx, webhook.Request{Method: http.MethodGet, Path: path, Token: sess.Token})
	if !env.Success {
		return nil, env.Err()
	}
	opts := payload.Options(env.Data)
	if opts == nil {
		opts = []string{}
	}
	return opts, nil
}
