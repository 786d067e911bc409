package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lanoanh-osi/ServiceOps/internal/session"
	"github.com/lanoanh-osi/ServiceOps/internal/webhook"
)

var fixedNow = time.Date(2025, 9, 26, 10, 55, 21, 298_000_000, time.UTC)

var tech = session.Session{
	Token: "t1",
	User:  map[string]any{"email": "tech@osi.vn", "staff-code": "NV01"},
}

type call struct {
	Path   string
	Method string
	Auth   string
	Body   map[string]any
}

type reply struct {
	Status int
	Body   string
}

// fakeUpstream stands in for the workflow platform.
type fakeUpstream struct {
	mu      sync.Mutex
	calls   []call
	replies map[string]reply
	srv     *httptest.Server
}

func newFakeUpstream(t *testing.T, replies map[string]reply) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{replies: replies}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.calls = append(f.calls, call{Path: r.URL.Path, Method: r.Method, Auth: r.Header.Get("Authorization"), Body: body})
		rep, ok := f.replies[r.URL.Path]
		f.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if rep.Status != 0 {
			w.WriteHeader(rep.Status)
		}
		_, _ = w.Write([]byte(rep.Body))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeUpstream) client(t *testing.T) *webhook.Client {
	t.Helper()
	c, err := webhook.NewClient(webhook.Config{BaseURL: f.srv.URL})
	require.NoError(t, err)
	return c
}

func (f *fakeUpstream) callsTo(path string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeUpstream) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
