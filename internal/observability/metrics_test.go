package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", "GET", 200, time.Millisecond)
	m.RecordRequest("/tickets", "GET", 200, time.Millisecond)
	m.RecordError("/tickets", "GET", "UPSTREAM_FAILED")
	m.RecordWebhook("/webhook/login", "ok", 10*time.Millisecond)
	m.RecordWebhook("/webhook/login", "ok", 30*time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/tickets|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["/tickets|GET|UPSTREAM_FAILED"])
	assert.Equal(t, int64(2), snap.Webhooks["/webhook/login|ok"])
	assert.Equal(t, int64(20), snap.WebhookAvgMS["/webhook/login|ok"])
	assert.Equal(t, []string{"/webhook/login|ok"}, Keys(snap.Webhooks))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordWebhook("/", "ok", 0)
	assert.Empty(t, m.Snapshot().Requests)
}
