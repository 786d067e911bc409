package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lanoanh-osi/ServiceOps/internal/auth"
	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/events"
	"github.com/lanoanh-osi/ServiceOps/internal/session"
	"github.com/lanoanh-osi/ServiceOps/internal/webhook"
	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

// Password flow failure messages.
const (
	MsgOTPFailed            = "Gửi OTP không thành công"
	MsgResetFailed          = "Đặt lại mật khẩu không thành công"
	MsgChangePasswordFailed = "Đổi mật khẩu không thành công"
)

// AuthService opens and closes gateway sessions around the upstream login
// and proxies the password flows.
type AuthService struct {
	client     *webhook.Client
	manager    *session.Manager
	sessions   session.Provider
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	Client     *webhook.Client
	Manager    *session.Manager
	Sessions   session.Provider
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// LoginOutput is a successful gateway login.
type LoginOutput struct {
	Token domain.GatewayToken `json:"token"`
	User  map[string]any      `json:"user"`
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		client:     deps.Client,
		manager:    deps.Manager,
		sessions:   deps.Sessions,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Login authenticates upstream into a fresh session and issues a gateway
// token for it. Post-login hooks never fail the login.
func (s *AuthService) Login(ctx context.Context, email, password, playerID string) (LoginOutput, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginOutput{}, apperrors.NewValidationError("email and password are required", nil)
	}

	sid := uuid.NewString()
	store := s.sessions.Open(sid)
	sess, err := s.manager.Login(ctx, store, email, password, session.LoginMeta{PlayerID: playerID})
	if err != nil {
		return LoginOutput{}, err
	}

	token, exp, err := s.tokens.GenerateToken(sid, sess.Identity().Email)
	if err != nil {
		_ = store.Clear(ctx, session.KeyToken, session.KeyUser)
		return LoginOutput{}, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventSessionOpened, sess, events.SessionPayload{SessionID: sid, PlayerID: playerID})
	s.logger.Info("technician logged in", zap.String("session_id", sid), zap.String("staff_code", sess.Identity().StaffCode))
	return LoginOutput{
		Token: domain.GatewayToken{Token: token, SessionID: sid, ExpiresAt: exp},
		User:  sess.User,
	}, nil
}

// Logout runs logout hooks and clears the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string, store session.Store) error {
	current, _ := s.manager.Current(ctx, store)
	if err := s.manager.Logout(ctx, store); err != nil {
		return apperrors.NewInternalError(err)
	}
	if !current.IsLoggedOut() {
		s.publish(ctx, events.EventSessionClosed, current, events.SessionPayload{SessionID: sessionID})
	}
	return nil
}

// Current reads the session behind a gateway session id.
func (s *AuthService) Current(ctx context.Context, sessionID string) (session.Session, error) {
	return s.manager.Current(ctx, s.sessions.Open(sessionID))
}

// SendOTP asks the workflow to email a reset code.
func (s *AuthService) SendOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperrors.NewValidationError("email is required", nil)
	}
	_, err := s.client.Mutate(ctx, webhook.Request{
		Path: webhook.PathSendOTP,
		Body: map[string]any{webhook.KeyEmail: email},
	}, MsgOTPFailed)
	return err
}

// ResetPassword sets a new password using an emailed code.
func (s *AuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(otp) == "" || newPassword == "" {
		return apperrors.NewValidationError("email, otp and new password are required", nil)
	}
	_, err := s.client.Mutate(ctx, webhook.Request{
		Path: webhook.PathResetOTP,
		Body: map[string]any{
			webhook.KeyEmail: strings.TrimSpace(email),
			"otp":            strings.TrimSpace(otp),
			"new-password":   newPassword,
		},
	}, MsgResetFailed)
	return err
}

// ChangePassword changes the logged-in technician's password.
func (s *AuthService) ChangePassword(ctx context.Context, sess session.Session, oldPassword, newPassword string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if oldPassword == "" || newPassword == "" {
		return apperrors.NewValidationError("old and new password are required", nil)
	}
	body := webhook.IdentityBody(sess.Identity())
	body["old-password"] = oldPassword
	body["new-password"] = newPassword
	_, err := s.client.Mutate(ctx, webhook.Request{
		Path:  webhook.PathChangePassword,
		Body:  body,
		Token: sess.Token,
	}, MsgChangePasswordFailed)
	return err
}

func (s *AuthService) publish(ctx context.Context, t events.EventType, sess session.Session, p events.SessionPayload) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      t,
		Actor:     events.ActorFrom(sess.Identity()),
		Timestamp: time.Now().UTC(),
		Payload:   p,
	})
	if err != nil {
		s.logger.Warn("session event handlers failed", zap.String("event", string(t)), zap.Error(err))
	}
}
