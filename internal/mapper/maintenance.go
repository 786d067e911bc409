package mapper

import (
	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/payload"
)

func (m *Mapper) maintenanceSummary(rec payload.Record) domain.TicketSummary {
	s := domain.TicketSummary{
		ID:           ticketID(rec),
		Type:         domain.TicketTypeMaintenance,
		Title:        firstOf(text(rec, "title", "customer_name"), defaultMaintenanceTitle),
		ProjectCode:  text(rec, "order_id"),
		Customer:     firstOf(text(rec, "customer_name"), defaultCustomer),
		Address:      text(rec, "address"),
		Deadline:     m.deadline(text(rec, "deadline"), text(rec, "assign_time"), text(rec, "created_time")),
		SubTypeLabel: text(rec, "type"),
		Description:  text(rec, "description"),
	}
	m.applyStatus(&s, text(rec, "status"))
	return s
}

func (m *Mapper) maintenanceDetail(rec payload.Record) domain.TicketDetail {
	order := nested(rec, "order_detail")
	devices := list(rec, "devices")
	device := payload.Record{}
	if len(devices) > 0 {
		device = devices[0]
	}

	s := domain.TicketSummary{
		ID:   ticketID(rec),
		Type: domain.TicketTypeMaintenance,
		Title: firstOf(
			text(rec, "title", "problem_description", "ticket_type", "customer_name"),
			"Ticket bảo trì / sửa chữa",
		),
		ProjectCode: text(rec, "order_id"),
		Customer:    firstOf(text(rec, "customer_name"), defaultCustomer),
		Address:     text(order, "deliveryAddress"),
		Deadline: m.deadline(
			text(rec, "deadline"),
			text(rec, "assign_time"),
			text(rec, "request_time", "created_time"),
			text(rec, "start_time"),
		),
		SubTypeLabel: text(rec, "ticket_type", "type"),
		Description:  text(rec, "problem_description", "description"),
	}
	if s.Address == "" {
		s.Address = text(rec, "company", "address")
	}
	m.applyStatus(&s, text(rec, "status"))

	detail := domain.TicketDetail{
		TicketSummary: s,
		CustomerInfo: domain.CustomerInfo{
			Name:         s.Customer,
			Address:      text(order, "deliveryAddress"),
			ContactPhone: text(rec, "phone_number"),
			ContactEmail: text(rec, "email"),
		},
		Notes: text(rec, "customer_response", "feedback_content"),
		MaintenanceExtra: &domain.MaintenanceExtra{
			Company:          text(rec, "company"),
			TicketType:       text(rec, "ticket_type"),
			TicketCategory:   text(rec, "ticket_category"),
			DeviceBrand:      firstOf(text(rec, "device_brand"), text(device, "brand")),
			DeviceModel:      firstOf(text(rec, "device_model"), text(device, "name")),
			SerialNumber:     firstOf(text(rec, "serial_number"), text(device, "serialNumber")),
			InstallationDate: text(device, "installationDate"),
			ImageDeviceURL:   text(rec, "image_device"),
			CreatedAt:        text(rec, "request_time"),
			AssignedAt:       text(rec, "assign_time"),
			StartLocation:    text(rec, "start_location"),
			CompleteLocation: text(rec, "complete_location"),
		},
		FirstResponse: &domain.StageRecord{
			Time:      firstOf(text(rec, "first_response_time"), text(rec, "assign_time")),
			Note:      text(rec, "first_response_content"),
			ImageURLs: images(text(rec, "first_response_image")),
		},
		SupplierInstruction: &domain.SupplierStage{
			Time:         text(rec, "supplier_response_time", "supplier_contact_time"),
			ContactTime:  text(rec, "supplier_contact_time"),
			ResponseTime: text(rec, "supplier_response_time"),
			Note:         text(rec, "supplier_response_content"),
		},
		StartExecution: &domain.StageRecord{
			Time:      text(rec, "start_time"),
			ImageURLs: images(text(rec, "start_image")),
		},
		ResultRecord: &domain.StageRecord{
			Time:      text(rec, "complete_time"),
			Note:      text(rec, "feedback_content"),
			ImageURLs: images(text(rec, "complete_image")),
		},
	}

	if len(order) > 0 {
		detail.OrderInfo = &domain.OrderInfo{
			OrderCode:       text(order, "orderCode"),
			SecretCodes:     []domain.SecretCode{},
			CustomerName:    text(order, "customerName"),
			TotalAmount:     number(order["totalPrice"]),
			OrderDate:       text(order, "orderDate"),
			Description:     text(order, "orderDescription"),
			DeliveryDate:    text(order, "deliveryDate", "expectedDelivery"),
			ContactName:     text(order, "staffName"),
			ContactPhone:    text(order, "phone"),
			DeliveryAddress: text(order, "deliveryAddress"),
			Status:          text(order, "status"),
		}
	}

	for _, dv := range devices {
		model := text(dv, "name", "deviceCode", "device_model")
		serial := text(dv, "serialNumber")
		if model == "" && serial == "" {
			continue
		}
		detail.DeviceInfo = append(detail.DeviceInfo, domain.DeviceItem{Model: model, Serial: serial, Quantity: 1})
	}
	return detail
}
