package http

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lanoanh-osi/ServiceOps/internal/api/http/handlers"
	"github.com/lanoanh-osi/ServiceOps/internal/auth"
	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/observability"
	"github.com/lanoanh-osi/ServiceOps/internal/service"
	"github.com/lanoanh-osi/ServiceOps/internal/session"
	"github.com/lanoanh-osi/ServiceOps/internal/webhook"
)

const deliveryList = `[{"data":[
	{"ticket_id":"DL1","customer_name":"Cty A","status":"Đã hoàn thành"},
	{"ticket_id":"DL2","customer_name":"Cty B","status":"Đang thực hiện"}
]}]`

type gateway struct {
	mu       sync.Mutex
	app      *fiber.App
	upstream map[string]string
	auths    []string
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	g := &gateway{upstream: map[string]string{
		webhook.PathLogin: `{"status":"success","token":"t1","user":{"email":"tech@osi.vn","staff-code":"NV01"}}`,
		webhook.ListPath(domain.TicketTypeDelivery): deliveryList,
	}}
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		g.mu.Lock()
		g.auths = append(g.auths, r.Header.Get("Authorization"))
		body, found := g.upstream[r.URL.Path]
		g.mu.Unlock()
		if !found {
			w.WriteHeader(nethttp.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	client, err := webhook.NewClient(webhook.Config{BaseURL: srv.URL})
	require.NoError(t, err)
	provider := session.NewMemoryProvider()
	manager := session.NewManager(client, nil)
	tokens := auth.NewTokenManager("secret", time.Hour)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("gw", "test", nil, nil, metrics),
		Auth: handlers.NewAuthHandler(service.NewAuthService(service.AuthDependencies{
			Client: client, Manager: manager, Sessions: provider, Tokens: tokens,
		})),
		Tickets:        handlers.NewTicketsHandler(service.NewTicketService(service.TicketDependencies{Client: client})),
		Actions:        handlers.NewActionsHandler(service.NewActionService(service.ActionDependencies{Client: client})),
		Reference:      handlers.NewReferenceHandler(service.NewReferenceService(client)),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, provider, manager),
	})
	g.app = app
	return g
}

func (g *gateway) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := g.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (g *gateway) reply(path, body string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.upstream[path] = body
}

func (g *gateway) login(t *testing.T) string {
	t.Helper()
	status, body := g.do(t, fiber.MethodPost, "/auth/login", "", `{"email":"tech@osi.vn","password":"x"}`)
	require.Equal(t, nethttp.StatusOK, status, body)
	data := body["data"].(map[string]any)
	return data["token"].(map[string]any)["token"].(string)
}

func TestLoginThenListUsesUpstreamToken(t *testing.T) {
	g := newGateway(t)
	jwt := g.login(t)

	status, body := g.do(t, fiber.MethodGet, "/tickets?type=delivery&status=completed", jwt, "")
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, true, body["success"])
	page := body["data"].(map[string]any)
	assert.EqualValues(t, 1, page["total"])
	assert.Equal(t, "DL1", page["items"].([]any)[0].(map[string]any)["id"])
	g.mu.Lock()
	assert.Equal(t, "Bearer t1", g.auths[len(g.auths)-1])
	g.mu.Unlock()

	status, body = g.do(t, fiber.MethodGet, "/auth/me", jwt, "")
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "NV01", body["data"].(map[string]any)["identity"].(map[string]any)["staff_code"])
}

func TestErrorEnvelope(t *testing.T) {
	g := newGateway(t)

	status, body := g.do(t, fiber.MethodGet, "/tickets?type=delivery", "", "")
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
	assert.EqualValues(t, nethttp.StatusUnauthorized, body["status"])
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	jwt := g.login(t)
	status, body = g.do(t, fiber.MethodGet, "/tickets?type=boats", jwt, "")
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])

	status, body = g.do(t, fiber.MethodPost, "/auth/login", "", `{"email":""}`)
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "notblank", body["details"].(map[string]any)["email"])

	status, body = g.do(t, fiber.MethodGet, "/nowhere", "", "")
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestUpstreamRejectionRendersMessage(t *testing.T) {
	g := newGateway(t)
	jwt := g.login(t)
	path, _ := webhook.AcceptPath(domain.TicketTypeDelivery)
	g.reply(path, `{"status":"error","message":"Phiếu đã được nhận"}`)

	status, body := g.do(t, fiber.MethodPost, "/tickets/delivery/DL2/accept", jwt, "")
	assert.Equal(t, nethttp.StatusUnprocessableEntity, status)
	assert.Equal(t, "UPSTREAM_REJECTED", body["code"])
	assert.Equal(t, "Phiếu đã được nhận", body["message"])

	g.reply(path, `{"status":"success"}`)
	status, body = g.do(t, fiber.MethodPost, "/tickets/delivery/DL2/accept", jwt, "")
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "DL2", body["data"].(map[string]any)["ticket_id"])
}

func TestLogoutEndsSession(t *testing.T) {
	g := newGateway(t)
	jwt := g.login(t)

	status, _ := g.do(t, fiber.MethodPost, "/auth/logout", jwt, "")
	require.Equal(t, nethttp.StatusOK, status)

	status, body := g.do(t, fiber.MethodGet, "/auth/me", jwt, "")
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "session expired", body["message"])
}

func TestHealthLive(t *testing.T) {
	g := newGateway(t)
	status, body := g.do(t, fiber.MethodGet, "/health/live", "", "")
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = g.do(t, fiber.MethodGet, "/health/ready", "", "")
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "disabled", body["dependencies"].(map[string]any)["postgres"])
}
