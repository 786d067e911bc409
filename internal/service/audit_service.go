package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/events"
	"github.com/lanoanh-osi/ServiceOps/internal/repository"
)

// CacheInvalidator drops a technician's cached ticket lists.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, id domain.Identity) error
}

// AuditService reacts to submitted actions and session changes: it logs
// them, appends actions to the action log and invalidates list caches.
type AuditService struct {
	dispatcher events.Dispatcher
	actions    repository.ActionLogRepository
	cache      CacheInvalidator
	logger     *zap.Logger
}

// NewAuditService creates the service. actions and cache may be nil.
func NewAuditService(dispatcher events.Dispatcher, actions repository.ActionLogRepository, cache CacheInvalidator, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		actions:    actions,
		cache:      cache,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventActionSubmitted, a.handleActionSubmitted)
	a.dispatcher.Subscribe(events.EventSessionOpened, a.handleSession)
	a.dispatcher.Subscribe(events.EventSessionClosed, a.handleSession)
}

func (a *AuditService) handleActionSubmitted(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.ActionSubmittedPayload)
	if !ok {
		return fmt.Errorf("action event %s: unexpected payload %T", event.ID, event.Payload)
	}
	a.logger.Info("ActionSubmitted",
		zap.String("ticket_id", event.TicketID),
		zap.String("type", string(p.TicketType)),
		zap.String("action", string(p.Action)),
		zap.Bool("success", p.Success),
		zap.String("staff_code", event.Actor.StaffCode))

	var errs []error
	if a.actions != nil {
		entry := &domain.ActionLog{
			TicketID:   event.TicketID,
			TicketType: p.TicketType,
			Action:     p.Action,
			StaffCode:  event.Actor.StaffCode,
			Email:      event.Actor.Email,
			Success:    p.Success,
			Message:    p.Message,
		}
		if err := a.actions.Append(ctx, entry); err != nil {
			errs = append(errs, fmt.Errorf("append action log: %w", err))
		}
	}
	if p.Success {
		if err := a.invalidate(ctx, event.Actor.Identity()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *AuditService) handleSession(ctx context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), zap.String("staff_code", event.Actor.StaffCode))
	if event.Type == events.EventSessionClosed {
		return a.invalidate(ctx, event.Actor.Identity())
	}
	return nil
}

func (a *AuditService) invalidate(ctx context.Context, id domain.Identity) error {
	if a.cache == nil || id.IsZero() {
		return nil
	}
	if err := a.cache.Invalidate(ctx, id); err != nil {
		return fmt.Errorf("invalidate ticket cache: %w", err)
	}
	return nil
}
