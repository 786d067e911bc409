// Package push registers the technician's device push subscription after
// login. Delivery itself belongs to the push provider.
package push

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/repository"
	"github.com/lanoanh-osi/ServiceOps/internal/session"
	"github.com/lanoanh-osi/ServiceOps/internal/webhook"
)

// MsgLinkFailed is reported when the upstream refuses the player id.
const MsgLinkFailed = "Cập nhật OneSignal Player ID không thành công"

// Body keys of the device registration payload.
const keyPlayerID = "player-id"

// ErrNoPlayerID marks a login without a push subscription; hooks skip it.
var ErrNoPlayerID = errors.New("push: no player id")

// Body builds the registration payload shared by both upstream hooks.
func Body(id domain.Identity, playerID string) map[string]any {
	return map[string]any{
		webhook.KeyEmail:     id.Email,
		webhook.KeyStaffCode: id.StaffCode,
		keyPlayerID:          playerID,
	}
}

// Reporter posts the player id to the save-player-id URL. The response is
// ignored beyond logging.
type Reporter struct {
	client *webhook.Client
	url    string
	logger *zap.Logger
}

// NewReporter builds a Reporter posting to url.
func NewReporter(client *webhook.Client, url string, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{client: client, url: url, logger: logger}
}

// Name implements session.Hook.
func (r *Reporter) Name() string { return "push.save-player-id" }

// AfterLogin implements session.Hook.
func (r *Reporter) AfterLogin(ctx context.Context, s session.Session, meta session.LoginMeta) error {
	if meta.PlayerID == "" {
		return nil
	}
	env := r.client.Do(ctx, webhook.Request{
		Path: r.url,
		Body: Body(s.Identity(), meta.PlayerID),
	})
	if !env.Success {
		return fmt.Errorf("report player id: status %d: %s", env.Status, env.Message)
	}
	r.logger.Debug("player id reported", zap.String("player_id", meta.PlayerID))
	return nil
}

// Linker ties the player id to the technician on the workflow platform.
type Linker struct {
	client *webhook.Client
}

// NewLinker builds a Linker.
func NewLinker(client *webhook.Client) *Linker {
	return &Linker{client: client}
}

// Name implements session.Hook.
func (l *Linker) Name() string { return "push.change-onesignal-id" }

// AfterLogin implements session.Hook.
func (l *Linker) AfterLogin(ctx context.Context, s session.Session, meta session.LoginMeta) error {
	if meta.PlayerID == "" {
		return nil
	}
	_, err := l.client.Mutate(ctx, webhook.Request{
		Path:  webhook.PathChangePlayerID,
		Body:  Body(s.Identity(), meta.PlayerID),
		Token: s.Token,
	}, MsgLinkFailed)
	return err
}

// Registry records devices in Postgres and deactivates them on logout.
type Registry struct {
	repo   repository.PushDeviceRepository
	logger *zap.Logger
}

// NewRegistry builds a Registry; a nil repo makes it a no-op.
func NewRegistry(repo repository.PushDeviceRepository, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{repo: repo, logger: logger}
}

// Name implements session.Hook.
func (r *Registry) Name() string { return "push.registry" }

// AfterLogin implements session.Hook.
func (r *Registry) AfterLogin(ctx context.Context, s session.Session, meta session.LoginMeta) error {
	if r.repo == nil || meta.PlayerID == "" {
		return nil
	}
	id := s.Identity()
	device := &domain.PushDevice{PlayerID: meta.PlayerID, Email: id.Email, StaffCode: id.StaffCode}
	if err := r.repo.Upsert(ctx, device); err != nil {
		return fmt.Errorf("register device: %w", err)
	}
	return nil
}

// BeforeLogout implements session.LogoutHook.
func (r *Registry) BeforeLogout(ctx context.Context, s session.Session) error {
	if r.repo == nil {
		return nil
	}
	id := s.Identity()
	if id.IsZero() {
		return nil
	}
	n, err := r.repo.DeactivateByStaff(ctx, id.Email, id.StaffCode)
	if err != nil {
		return fmt.Errorf("deactivate devices: %w", err)
	}
	r.logger.Debug("devices deactivated", zap.Int64("count", n))
	return nil
}

// Hooks assembles the post-login hooks in registration order.
func Hooks(client *webhook.Client, saveURL string, repo repository.PushDeviceRepository, logger *zap.Logger) []session.Hook {
	hooks := []session.Hook{NewLinker(client)}
	if saveURL != "" {
		hooks = append([]session.Hook{NewReporter(client, saveURL, logger)}, hooks...)
	}
	return append(hooks, NewRegistry(repo, logger))
}
