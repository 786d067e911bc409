package domain

// PerformanceMetrics are the technician's dashboard figures.
type PerformanceMetrics struct {
	TicketsCompleted     float64 `json:"tickets_completed"`
	TicketsPending       float64 `json:"tickets_pending"`
	OnTimeCompletionRate float64 `json:"on_time_completion_rate"`
	QuickResponseRate    float64 `json:"quick_response_rate"`
	AvgCustomerRating    float64 `json:"avg_customer_rating"`
}

// DeviceLookup is device metadata resolved from a serial.
type DeviceLookup struct {
	Brand       string `json:"brand,omitempty"`
	Model       string `json:"model,omitempty"`
	InstallDate string `json:"install-date,omitempty"`
}

// IsEmpty reports whether no metadata came back.
func (d DeviceLookup) IsEmpty() bool {
	return d.Brand == "" && d.Model == "" && d.InstallDate == ""
}
