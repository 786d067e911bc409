package mapper

import (
	"github.com/lanoanh-osi/ServiceOps/internal/domain"
)

// FilterByTab keeps the tickets whose raw upstream status belongs to the
// bucket tab of category. An empty bucket keeps everything. When filtering
// empties a non-empty list the unfiltered list is returned and fellBack is
// true, so a tab never shows an empty state while tickets exist.
func (m *Mapper) FilterByTab(items []domain.TicketSummary, category domain.TicketType, bucket domain.Bucket) (out []domain.TicketSummary, fellBack bool) {
	if bucket == "" {
		return items, false
	}
	out = make([]domain.TicketSummary, 0, len(items))
	for _, item := range items {
		if m.classifier.InTab(category, item.RawStatus, bucket) {
			out = append(out, item)
		}
	}
	if len(out) == 0 && len(items) > 0 {
		return items, true
	}
	return out, false
}

// CountByTab counts tickets per bucket tab without the empty-state fallback.
func (m *Mapper) CountByTab(items []domain.TicketSummary, category domain.TicketType) map[domain.Bucket]int {
	counts := make(map[domain.Bucket]int, len(domain.Buckets))
	for _, bucket := range domain.Buckets {
		counts[bucket] = 0
	}
	for _, item := range items {
		for _, bucket := range domain.Buckets {
			if m.classifier.InTab(category, item.RawStatus, bucket) {
				counts[bucket]++
			}
		}
	}
	return counts
}
