package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/session"
	"github.com/lanoanh-osi/ServiceOps/internal/webhook"
	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

type fakeDevices struct {
	mu          sync.Mutex
	upserted    []domain.PushDevice
	deactivated []string
	err         error
}

func (f *fakeDevices) Upsert(_ context.Context, d *domain.PushDevice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	d.Active = true
	f.upserted = append(f.upserted, *d)
	return nil
}

func (f *fakeDevices) Deactivate(_ context.Context, playerID string) error {
	f.deactivated = append(f.deactivated, playerID)
	return nil
}

func (f *fakeDevices) DeactivateByStaff(_ context.Context, _, staffCode string) (int64, error) {
	f.deactivated = append(f.deactivated, staffCode)
	return 1, f.err
}

func (f *fakeDevices) ListActiveByStaff(context.Context, string) ([]domain.PushDevice, error) {
	return f.upserted, nil
}

var tech = session.Session{Token: "tok", User: map[string]any{"email": "a@b.vn", "staffCode": "NV9"}}

func recordServer(t *testing.T, reply string) (*httptest.Server, *[]map[string]any, *[]string) {
	t.Helper()
	var (
		mu     sync.Mutex
		bodies []map[string]any
		paths  []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		bodies = append(bodies, body)
		paths = append(paths, r.URL.Path+"|"+r.Header.Get("Authorization"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, &bodies, &paths
}

func TestLinkerSendsIdentityAndPlayerID(t *testing.T) {
	srv, bodies, paths := recordServer(t, `{"status":"success"}`)
	client, err := webhook.NewClient(webhook.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	require.NoError(t, NewLinker(client).AfterLogin(context.Background(), tech, session.LoginMeta{PlayerID: "p-1"}))
	require.Len(t, *bodies, 1)
	assert.Equal(t, map[string]any{"email": "a@b.vn", "staff-code": "NV9", "player-id": "p-1"}, (*bodies)[0])
	assert.Equal(t, "/webhook/change-onesignal-id|Bearer tok", (*paths)[0])
}

func TestLinkerRejection(t *testing.T) {
	srv, _, _ := recordServer(t, `{"status":"error"}`)
	client, _ := webhook.NewClient(webhook.Config{BaseURL: srv.URL})

	err := NewLinker(client).AfterLogin(context.Background(), tech, session.LoginMeta{PlayerID: "p-1"})
	require.Error(t, err)
	assert.Equal(t, MsgLinkFailed, apperrors.ToDomainError(err).Message)
}

func TestReporterUsesAbsoluteURL(t *testing.T) {
	srv, bodies, paths := recordServer(t, `{}`)
	client, _ := webhook.NewClient(webhook.Config{BaseURL: "http://127.0.0.1:1"})

	r := NewReporter(client, srv.URL+"/webhook/save-player-id", nil)
	require.NoError(t, r.AfterLogin(context.Background(), tech, session.LoginMeta{PlayerID: "p-2"}))
	assert.Equal(t, "p-2", (*bodies)[0]["player-id"])
	assert.Equal(t, "/webhook/save-player-id|", (*paths)[0])
}

func TestHooksSkipWithoutPlayerID(t *testing.T) {
	srv, bodies, _ := recordServer(t, `{"status":"success"}`)
	client, _ := webhook.NewClient(webhook.Config{BaseURL: srv.URL})
	repo := &fakeDevices{}

	for _, h := range Hooks(client, srv.URL+"/save", repo, nil) {
		require.NoError(t, h.AfterLogin(context.Background(), tech, session.LoginMeta{}))
	}
	assert.Empty(t, *bodies)
	assert.Empty(t, repo.upserted)
}

func TestRegistryLifecycle(t *testing.T) {
	repo := &fakeDevices{}
	reg := NewRegistry(repo, nil)

	require.NoError(t, reg.AfterLogin(context.Background(), tech, session.LoginMeta{PlayerID: "p-3"}))
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "NV9", repo.upserted[0].StaffCode)

	require.NoError(t, reg.BeforeLogout(context.Background(), tech))
	assert.Equal(t, []string{"NV9"}, repo.deactivated)

	repo.err = errors.New("db down")
	assert.Error(t, reg.AfterLogin(context.Background(), tech, session.LoginMeta{PlayerID: "p-4"}))
	assert.NoError(t, NewRegistry(nil, nil).AfterLogin(context.Background(), tech, session.LoginMeta{PlayerID: "p"}))
}

func TestFailingHookDoesNotBlockLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == webhook.PathLogin {
			_, _ = w.Write([]byte(`{"status":"success","token":"tok","user":{"staff-code":"NV9"}}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	client, _ := webhook.NewClient(webhook.Config{BaseURL: srv.URL})
	repo := &fakeDevices{}

	mgr := session.NewManager(client, nil, Hooks(client, srv.URL+"/save", repo, nil)...)
	store := session.NewMemoryProvider().Open("sid")
	s, err := mgr.Login(context.Background(), store, "a@b.vn", "pw", session.LoginMeta{PlayerID: "p-5"})
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)
	assert.Len(t, repo.upserted, 1, "registry still runs after upstream hooks fail")
}
