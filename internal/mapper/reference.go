package mapper

import (
	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/payload"
)

// MapPerformance reads the first metrics record; missing figures are zero.
func MapPerformance(node any) domain.PerformanceMetrics {
	rec := payload.Unwrap(node)
	return domain.PerformanceMetrics{
		TicketsCompleted:     number(rec["tickets_completed"]),
		TicketsPending:       number(rec["tickets_pending"]),
		OnTimeCompletionRate: number(rec["on_time_completion_rate"]),
		QuickResponseRate:    number(rec["quick_response_rate"]),
		AvgCustomerRating:    number(rec["avg_customer_rating"]),
	}
}

// MapDevice reads device metadata. The upstream spells the install date key
// both "instal-date" and "install-date".
func MapDevice(node any) domain.DeviceLookup {
	rec := payload.Unwrap(node)
	return domain.DeviceLookup{
		Brand:       text(rec, "brand"),
		Model:       text(rec, "model"),
		InstallDate: text(rec, "instal-date", "install-date"),
	}
}
