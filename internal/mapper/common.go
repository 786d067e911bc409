// Package mapper turns flattened webhook records into ticket view-models.
// Mapping is permissive: malformed or missing fields default rather than fail.
package mapper

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cast"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/payload"
	"github.com/lanoanh-osi/ServiceOps/internal/status"
)

// TimeLayout is the ISO-8601 form used for defaulted timestamps.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// MaxTitleLen is the rune length after which delivery titles are cut.
const MaxTitleLen = 112

const (
	defaultCustomer         = "Khách hàng"
	defaultDeliveryTitle    = "Ticket giao hàng / lắp đặt"
	defaultMaintenanceTitle = "Bảo trì / Sửa chữa"
	defaultActivityTitle    = "Hoạt động & Hỗ trợ"
	defaultGoodsName        = "Hàng hóa"
	defaultDeviceName       = "Thiết bị"
)

var idKeys = []string{"ticket_id", "ticket-id", "ticketId", "id"}

// Mapper holds the classifier and clock used by every category mapping.
type Mapper struct {
	classifier *status.Classifier
	now        func() time.Time
}

// New builds a Mapper. A nil classifier uses the embedded rule table and a
// nil clock uses time.Now.
func New(classifier *status.Classifier, now func() time.Time) *Mapper {
	if classifier == nil {
		classifier = status.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Mapper{classifier: classifier, now: now}
}

// Classifier exposes the status rules in use.
func (m *Mapper) Classifier() *status.Classifier {
	return m.classifier
}

// MapSummary maps one list record of the given category.
func (m *Mapper) MapSummary(rec payload.Record, category domain.TicketType) domain.TicketSummary {
	switch category {
	case domain.TicketTypeDelivery:
		return m.deliverySummary(rec)
	case domain.TicketTypeMaintenance:
		return m.maintenanceSummary(rec)
	default:
		return m.activitySummary(rec)
	}
}

// MapSummaries maps every record, skipping records with no ticket id.
func (m *Mapper) MapSummaries(records []payload.Record, category domain.TicketType) []domain.TicketSummary {
	out := make([]domain.TicketSummary, 0, len(records))
	for _, rec := range records {
		summary := m.MapSummary(rec, category)
		if summary.ID == "" {
			continue
		}
		out = append(out, summary)
	}
	return out
}

// MapDetail maps a detail record; fallbackID fills a missing ticket id.
func (m *Mapper) MapDetail(rec payload.Record, category domain.TicketType, fallbackID string) domain.TicketDetail {
	var detail domain.TicketDetail
	switch category {
	case domain.TicketTypeDelivery:
		detail = m.deliveryDetail(rec)
	case domain.TicketTypeMaintenance:
		detail = m.maintenanceDetail(rec)
	default:
		detail = m.activityDetail(rec)
	}
	if detail.ID == "" {
		detail.ID = fallbackID
	}
	if detail.GoodsInfo == nil {
		detail.GoodsInfo = []domain.GoodsItem{}
	}
	if detail.DeviceInfo == nil {
		detail.DeviceInfo = []domain.DeviceItem{}
	}
	return detail
}

func (m *Mapper) applyStatus(s *domain.TicketSummary, raw string) {
	res := m.classifier.Normalize(raw)
	s.RawStatus = raw
	s.Status = res.Bucket
	s.StatusDisplayLabel = res.Label
}

// deadline resolves the first non-empty of candidates, else the current time.
func (m *Mapper) deadline(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return m.now().UTC().Format(TimeLayout)
}

// Clean converts v to a trimmed string, mapping the literal upstream sentinels
// "undefined" and "null" to empty.
func Clean(v any) string {
	if v == nil {
		return ""
	}
	switch v.(type) {
	case map[string]any, []any:
		return ""
	}
	s := strings.TrimSpace(cast.ToString(v))
	if isSentinel(s) {
		return ""
	}
	return s
}

func isSentinel(s string) bool {
	return s == "undefined" || s == "null"
}

// text returns the first non-empty cleaned value among keys.
func text(rec payload.Record, keys ...string) string {
	for _, key := range keys {
		if s := Clean(rec[key]); s != "" {
			return s
		}
	}
	return ""
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// nested returns rec[key] when it is an object, else an empty record.
func nested(rec payload.Record, key string) payload.Record {
	if inner, ok := rec[key].(map[string]any); ok {
		return inner
	}
	return payload.Record{}
}

// list returns the records under rec[key], accepting a single object too.
func list(rec payload.Record, key string) []payload.Record {
	switch v := rec[key].(type) {
	case []any:
		out := make([]payload.Record, 0, len(v))
		for _, item := range v {
			if r, ok := item.(map[string]any); ok {
				out = append(out, r)
			}
		}
		return out
	case map[string]any:
		if len(v) == 0 {
			return nil
		}
		return []payload.Record{v}
	}
	return nil
}

func number(v any) float64 {
	if s, ok := v.(string); ok && isSentinel(strings.TrimSpace(s)) {
		return 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return f
}

func quantity(v any) int {
	n := cast.ToInt(number(v))
	if n <= 0 {
		return 1
	}
	return n
}

func ticketID(rec payload.Record) string {
	return text(rec, idKeys...)
}

// TruncateTitle cuts s to MaxTitleLen runes plus an ellipsis.
func TruncateTitle(s string) string {
	if utf8.RuneCountInString(s) <= MaxTitleLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxTitleLen]) + "..."
}

// SplitProducts splits a comma-joined product list, dropping blanks and
// sentinels.
func SplitProducts(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || isSentinel(part) {
			continue
		}
		out = append(out, part)
	}
	return out
}

func images(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
