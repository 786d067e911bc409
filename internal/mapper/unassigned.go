package mapper

import (
	"strings"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/payload"
)

// Upstream category labels on the unassigned queue.
const (
	LabelDelivery    = "Giao hàng và Lắp đặt"
	LabelMaintenance = "Bảo trì / Sửa chữa"
	// LabelUnassigned is the display label of every unassigned ticket.
	LabelUnassigned = "Chưa phân công"
)

// CategoryFromLabel resolves an upstream category label; anything unknown is
// treated as activity/support.
func CategoryFromLabel(label string) domain.TicketType {
	switch strings.TrimSpace(label) {
	case LabelDelivery:
		return domain.TicketTypeDelivery
	case LabelMaintenance:
		return domain.TicketTypeMaintenance
	}
	return domain.TicketTypeSales
}

// MapUnassigned maps one record of the unassigned queue. Such tickets are
// always in the assigned bucket awaiting a technician.
func (m *Mapper) MapUnassigned(rec payload.Record) domain.TicketSummary {
	rawType := text(rec, "type")
	customer := firstOf(text(rec, "customer", "customer_name"), defaultCustomer)
	id := ticketID(rec)
	if id == "" {
		id = "TK-" + m.now().UTC().Format("20060102150405.000")
	}
	return domain.TicketSummary{
		ID:                 id,
		Type:               CategoryFromLabel(rawType),
		Title:              customer,
		Customer:           customer,
		Address:            text(rec, "address"),
		Deadline:           m.deadline(text(rec, "deadline")),
		Status:             domain.BucketAssigned,
		StatusDisplayLabel: LabelUnassigned,
		SubTypeLabel:       rawType,
	}
}
