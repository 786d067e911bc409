package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for gateway requests and
// outbound webhook calls.
type Metrics struct {
	mu           sync.Mutex
	startedAt    time.Time
	requestCount map[string]int64
	errorCount   map[string]int64
	webhookCount map[string]int64
	webhookNanos map[string]int64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	UptimeSeconds int64            `json:"uptime_seconds"`
	Requests      map[string]int64 `json:"requests"`
	Errors        map[string]int64 `json:"errors"`
	Webhooks      map[string]int64 `json:"webhooks"`
	WebhookAvgMS  map[string]int64 `json:"webhook_avg_ms"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		startedAt:    time.Now(),
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		webhookCount: make(map[string]int64),
		webhookNanos: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, strconv.Itoa(status))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := pathKey(path, method, code)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordWebhook counts an outbound call by path and outcome.
func (m *Metrics) RecordWebhook(path, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + outcome
	m.mu.Lock()
	defer m.mu.Unlock()
	m.webhookCount[key]++
	m.webhookNanos[key] += duration.Nanoseconds()
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	avg := make(map[string]int64, len(m.webhookCount))
	for key, count := range m.webhookCount {
		if count > 0 {
			avg[key] = time.Duration(m.webhookNanos[key] / count).Milliseconds()
		}
	}
	return Snapshot{
		UptimeSeconds: int64(time.Since(m.startedAt).Seconds()),
		Requests:      copyCounts(m.requestCount),
		Errors:        copyCounts(m.errorCount),
		Webhooks:      copyCounts(m.webhookCount),
		WebhookAvgMS:  avg,
	}
}

// Keys returns the sorted counter keys of a snapshot map.
func Keys(counts map[string]int64) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func pathKey(path, method, suffix string) string {
	return path + "|" + method + "|" + suffix
}
