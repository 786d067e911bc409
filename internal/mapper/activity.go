package mapper

import (
	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/payload"
)

func (m *Mapper) activitySummary(rec payload.Record) domain.TicketSummary {
	s := domain.TicketSummary{
		ID:           ticketID(rec),
		Type:         domain.TicketTypeSales,
		Title:        firstOf(text(rec, "activity_name", "title", "customer_name"), defaultActivityTitle),
		ProjectCode:  text(rec, "order_id"),
		Customer:     firstOf(text(rec, "customer_name"), defaultCustomer),
		Deadline:     m.deadline(text(rec, "deadline"), text(rec, "assign_time"), text(rec, "created_time")),
		SubTypeLabel: text(rec, "type"),
		Description:  text(rec, "description"),
	}
	m.applyStatus(&s, text(rec, "status"))
	return s
}

// activityDetail accepts the nested detail shape (customer_info, status
// object, result, timestamps, related_order) and falls back to the flat list
// keys when a block is absent.
func (m *Mapper) activityDetail(rec payload.Record) domain.TicketDetail {
	customer := nested(rec, "customer_info")
	state := nested(rec, "status")
	result := nested(rec, "result")
	stamps := nested(rec, "timestamps")
	related := nested(rec, "related_order")

	rawStatus := text(state, "current")
	if rawStatus == "" {
		rawStatus = text(rec, "status")
	}

	subject := firstOf(text(rec, "activity_name", "name", "title", "activity_type"), defaultActivityTitle)
	customerName := firstOf(text(customer, "company_name"), text(rec, "customer_name"), defaultCustomer)
	createdAt := firstOf(text(stamps, "created_at"), text(rec, "created_time"))
	completedAt := text(state, "completed_at")

	s := domain.TicketSummary{
		ID:           ticketID(rec),
		Type:         domain.TicketTypeSales,
		Title:        subject,
		ProjectCode:  firstOf(text(related, "order_id"), text(rec, "order_id")),
		Customer:     customerName,
		Deadline:     m.deadline(text(state, "deadline"), text(rec, "deadline"), text(rec, "assign_time"), createdAt),
		SubTypeLabel: text(rec, "activity_type", "type"),
		Description:  text(rec, "description"),
	}
	m.applyStatus(&s, rawStatus)

	detail := domain.TicketDetail{
		TicketSummary: s,
		CustomerInfo: domain.CustomerInfo{
			Name:         customerName,
			ContactPhone: firstOf(text(customer, "phone"), text(rec, "phone_number")),
			ContactEmail: text(customer, "email"),
		},
		ActivityInfo: &domain.ActivityInfo{
			Subject:     subject,
			Description: s.Description,
			Owner:       text(customer, "contact_name"),
			StartTime:   createdAt,
			EndTime:     completedAt,
		},
		ActivityResult: &domain.StageRecord{
			Time: completedAt,
			Note: text(result, "notes"),
		},
		Notes: text(result, "summary"),
	}
	if s.ProjectCode != "" {
		detail.OrderInfo = &domain.OrderInfo{OrderCode: s.ProjectCode, SecretCodes: []domain.SecretCode{}}
	}
	return detail
}
