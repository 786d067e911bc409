package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanoanh-osi/ServiceOps/internal/auth"
	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/events"
	"github.com/lanoanh-osi/ServiceOps/internal/session"
	"github.com/lanoanh-osi/ServiceOps/internal/webhook"
	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

type authFixture struct {
	svc      *AuthService
	up       *fakeUpstream
	sessions *session.MemoryProvider
	tokens   *auth.TokenManager
	events   *eventLog
}

func newAuthFixture(t *testing.T, replies map[string]reply) authFixture {
	t.Helper()
	up := newFakeUpstream(t, replies)
	client := up.client(t)
	provider := session.NewMemoryProvider()
	tokens := auth.NewTokenManager("secret", time.Hour)
	d := events.NewInMemoryDispatcher()
	log := &eventLog{}
	d.Subscribe(events.EventSessionOpened, log.handler)
	d.Subscribe(events.EventSessionClosed, log.handler)

	svc := NewAuthService(AuthDependencies{
		Client:     client,
		Manager:    session.NewManager(client, nil),
		Sessions:   provider,
		Tokens:     tokens,
		Dispatcher: d,
	})
	return authFixture{svc: svc, up: up, sessions: provider, tokens: tokens, events: log}
}

func TestLoginStoresSessionAndAuthenticatesLaterCalls(t *testing.T) {
	f := newAuthFixture(t, map[string]reply{
		webhook.PathLogin:       {Body: `{"status":"success","token":"t1","user":{"email":"tech@osi.vn"}}`},
		webhook.PathPerformance: {Body: `[{"tickets_completed":1}]`},
	})
	ctx := context.Background()

	out, err := f.svc.Login(ctx, "tech@osi.vn", "x", "")
	require.NoError(t, err)
	assert.Equal(t, "tech@osi.vn", out.User["email"])

	claims, err := f.tokens.ParseToken(out.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, out.Token.SessionID, claims.SessionID)

	store := f.sessions.Open(claims.SessionID)
	token, _ := store.Get(ctx, session.KeyToken)
	user, _ := store.Get(ctx, session.KeyUser)
	assert.Equal(t, "t1", token)
	assert.JSONEq(t, `{"email":"tech@osi.vn"}`, user)

	sess, err := f.svc.Current(ctx, claims.SessionID)
	require.NoError(t, err)
	tickets := NewTicketService(TicketDependencies{Client: f.up.client(t)})
	_, err = tickets.Performance(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "Bearer t1", f.up.callsTo(webhook.PathPerformance)[0].Auth)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, events.EventSessionOpened, f.events.events[0].Type)
}

func TestLoginFailureLeavesNoSession(t *testing.T) {
	f := newAuthFixture(t, map[string]reply{
		webhook.PathLogin: {Body: `{"status":"error"}`},
	})
	_, err := f.svc.Login(context.Background(), "tech@osi.vn", "bad", "")
	de := apperrors.ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, apperrors.MsgLoginFailed, de.Message)
	assert.Empty(t, f.events.events)

	_, err = f.svc.Login(context.Background(), " ", "x", "")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestLogoutClearsBothKeys(t *testing.T) {
	f := newAuthFixture(t, map[string]reply{
		webhook.PathLogin: {Body: `{"status":"success","token":"t1","user":{"email":"tech@osi.vn"}}`},
	})
	ctx := context.Background()
	out, err := f.svc.Login(ctx, "tech@osi.vn", "x", "")
	require.NoError(t, err)

	store := f.sessions.Open(out.Token.SessionID)
	require.NoError(t, f.svc.Logout(ctx, out.Token.SessionID, store))

	sess, err := f.svc.Current(ctx, out.Token.SessionID)
	require.NoError(t, err)
	assert.True(t, sess.IsLoggedOut())
	user, _ := store.Get(ctx, session.KeyUser)
	assert.Empty(t, user)
	assert.Equal(t, events.EventSessionClosed, f.events.events[len(f.events.events)-1].Type)
}

func TestPasswordFlows(t *testing.T) {
	f := newAuthFixture(t, map[string]reply{
		webhook.PathSendOTP:        {Body: okBody},
		webhook.PathResetOTP:       {Body: `{"status":"error","message":"OTP không đúng"}`},
		webhook.PathChangePassword: {Body: okBody},
	})
	ctx := context.Background()

	require.NoError(t, f.svc.SendOTP(ctx, "tech@osi.vn"))
	assert.Equal(t, "tech@osi.vn", f.up.callsTo(webhook.PathSendOTP)[0].Body["email"])

	err := f.svc.ResetPassword(ctx, "tech@osi.vn", "000000", "new")
	assert.Equal(t, "OTP không đúng", apperrors.ToDomainError(err).Message)

	require.NoError(t, f.svc.ChangePassword(ctx, tech, "old", "new"))
	body := f.up.callsTo(webhook.PathChangePassword)[0].Body
	assert.Equal(t, "old", body["old-password"])
	assert.Equal(t, "NV01", body["staff-code"])

	err = f.svc.ChangePassword(ctx, session.LoggedOut, "old", "new")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}

type memoryActionLog struct {
	entries []domain.ActionLog
}

func (m *memoryActionLog) Append(_ context.Context, e *domain.ActionLog) error {
	e.ID = "1"
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memoryActionLog) ListByTicket(context.Context, string, int) ([]domain.ActionLog, error) {
	return m.entries, nil
}

type countingInvalidator struct {
	ids []domain.Identity
}

func (c *countingInvalidator) Invalidate(_ context.Context, id domain.Identity) error {
	c.ids = append(c.ids, id)
	return nil
}

func TestAuditRecordsActionsAndInvalidates(t *testing.T) {
	path, _ := webhook.AcceptPath(domain.TicketTypeMaintenance)
	up := newFakeUpstream(t, map[string]reply{
		path:                        {Body: okBody},
		webhook.PathMaintenanceType: {Body: `{"status":"error"}`},
	})
	d := events.NewInMemoryDispatcher()
	logRepo := &memoryActionLog{}
	inv := &countingInvalidator{}
	NewAuditService(d, logRepo, inv, nil).RegisterHandlers()

	svc := NewActionService(ActionDependencies{Client: up.client(t), Dispatcher: d})
	require.NoError(t, svc.Accept(context.Background(), tech, domain.TicketTypeMaintenance, "MT1"))
	require.Error(t, svc.UpdateType(context.Background(), tech, "MT1", TypeInput{Type: "Bảo hành"}))

	require.Len(t, logRepo.entries, 2)
	assert.True(t, logRepo.entries[0].Success)
	assert.Equal(t, domain.ActionAccept, logRepo.entries[0].Action)
	assert.False(t, logRepo.entries[1].Success)
	assert.Equal(t, apperrors.MsgUpdateFailed, logRepo.entries[1].Message)
	assert.Equal(t, []domain.Identity{tech.Identity()}, inv.ids, "only successful actions invalidate")
}
