// Package webhook is the transport to the workflow platform. Every exchange is
// normalized into an Envelope so callers have one failure path.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/lanoanh-osi/ServiceOps/internal/observability"
	"github.com/lanoanh-osi/ServiceOps/internal/payload"
	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 32 << 20

var absoluteURL = regexp.MustCompile(`^(?i)(https?:)?//`)

// Config configures a Client.
type Config struct {
	BaseURL string
	// Timeout of zero leaves the runtime default (no client-side deadline).
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// Client issues JSON requests against the webhook base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// Request describes one call. Method defaults to POST.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Token, when set, is sent as a bearer credential.
	Token string
}

// Envelope is the uniform result of every call.
type Envelope struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Err converts a failed envelope into a domain error; nil on success.
func (e Envelope) Err() error {
	if e.Success {
		return nil
	}
	return apperrors.NewUpstreamError(e.Status, e.Message, false)
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base != "" {
		if _, err := url.Parse(base); err != nil {
			return nil, fmt.Errorf("webhook: invalid base url %q: %w", cfg.BaseURL, err)
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{baseURL: base, httpClient: httpClient, logger: logger, metrics: cfg.Metrics}, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs req. It never returns a Go error: transport failures yield
// status 0, HTTP failures carry the HTTP status and a best-effort message.
func (c *Client) Do(ctx context.Context, req Request) Envelope {
	start := time.Now()
	env := c.do(ctx, req)

	outcome := "ok"
	switch {
	case env.Status == 0:
		outcome = "unreachable"
	case !env.Success:
		outcome = "http_" + fmt.Sprint(env.Status)
	}
	c.metrics.RecordWebhook(req.Path, outcome, time.Since(start))
	return env
}

func (c *Client) do(ctx context.Context, req Request) Envelope {
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	target := c.resolve(req.Path)
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return Envelope{Status: 0, Message: err.Error()}
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return Envelope{Status: 0, Message: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("webhook unreachable", zap.String("path", req.Path), zap.Error(err))
		msg := err.Error()
		if msg == "" {
			msg = apperrors.MsgNetworkError
		}
		return Envelope{Status: 0, Message: msg}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Envelope{Status: 0, Message: err.Error()}
	}
	c.logger.Debug("webhook response",
		zap.String("method", method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.String("size", humanize.Bytes(uint64(len(raw)))),
	)

	var data any
	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "application/json") {
		data, err = payload.Decode(raw)
		if err != nil {
			c.logger.Warn("webhook returned malformed json", zap.String("path", req.Path), zap.Error(err))
			data = nil
		}
	} else if len(raw) > 0 {
		data = string(raw)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := BodyMessage(data)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if msg == "" {
			msg = "Request failed"
		}
		return Envelope{Status: resp.StatusCode, Message: msg, Data: data}
	}
	return Envelope{Success: true, Status: resp.StatusCode, Data: data}
}

// Mutate performs req and additionally requires an explicit "success" body
// status. HTTP success with any other body status, or none, is a failure
// carrying the server message or defaultMessage.
func (c *Client) Mutate(ctx context.Context, req Request, defaultMessage string) (Envelope, error) {
	env := c.Do(ctx, req)
	if !env.Success {
		return env, env.Err()
	}
	if IsSuccess(env.Data) {
		return env, nil
	}
	msg := BodyMessage(env.Data)
	if msg == "" {
		msg = defaultMessage
	}
	c.logger.Info("webhook rejected mutation", zap.String("path", req.Path), zap.String("message", msg))
	return Envelope{Status: env.Status, Message: msg, Data: env.Data}, apperrors.NewUpstreamError(env.Status, msg, true)
}

func (c *Client) resolve(path string) string {
	if absoluteURL.MatchString(path) {
		if strings.HasPrefix(path, "//") {
			return "https:" + path
		}
		return path
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// BodyStatus returns the "status" string of the first response record.
func BodyStatus(data any) string {
	s, _ := first(data)["status"].(string)
	return strings.TrimSpace(s)
}

// BodyMessage returns the "message" string of the first response record.
func BodyMessage(data any) string {
	s, _ := first(data)["message"].(string)
	return strings.TrimSpace(s)
}

// IsSuccess reports whether the body status is "success", ignoring case.
func IsSuccess(data any) bool {
	return strings.EqualFold(BodyStatus(data), "success")
}

func first(data any) payload.Record {
	switch v := data.(type) {
	case payload.Record:
		return v
	case []any:
		for _, item := range v {
			if rec, ok := item.(payload.Record); ok {
				return rec
			}
		}
	}
	return payload.Record{}
}
