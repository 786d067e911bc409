package mapper

import (
	"strings"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/payload"
)

func (m *Mapper) deliverySummary(rec payload.Record) domain.TicketSummary {
	productList := text(rec, "product_list")
	s := domain.TicketSummary{
		ID:          ticketID(rec),
		Type:        domain.TicketTypeDelivery,
		ProjectCode: text(rec, "project_code", "order_id"),
		Customer:    firstOf(text(rec, "customer_name"), defaultCustomer),
		Address:     text(rec, "address"),
		Deadline:    m.deadline(text(rec, "deadline"), text(rec, "assign_time"), text(rec, "created_time")),
		Products:    SplitProducts(productList),
		Description: text(rec, "description"),
	}
	s.Title = TruncateTitle(firstOf(
		text(rec, "customer_name"),
		text(rec, "project_code"),
		strings.Join(s.Products, ", "),
		defaultDeliveryTitle,
	))
	m.applyStatus(&s, text(rec, "status"))
	return s
}

func (m *Mapper) deliveryDetail(rec payload.Record) domain.TicketDetail {
	summary := m.deliverySummary(rec)

	order := nested(rec, "orderDetail")
	products := list(rec, "products")

	var goods []domain.GoodsItem
	var codes []domain.SecretCode
	var names []string
	for _, p := range products {
		name, sku := text(p, "name"), text(p, "sku")
		if name == "" && sku == "" {
			continue
		}
		if isDeviceCategory(text(p, "category")) {
			continue
		}
		qty := quantity(p["quantity"])
		goods = append(goods, domain.GoodsItem{SKU: sku, Name: firstOf(name, defaultGoodsName), Quantity: qty})
		codes = append(codes, domain.SecretCode{Code: sku, Name: firstOf(name, defaultGoodsName), Quantity: qty})
		if name != "" {
			names = append(names, name)
		}
	}
	if len(summary.Products) == 0 {
		summary.Products = names
		if text(rec, "customer_name") == "" && text(rec, "project_code") == "" && len(names) > 0 {
			summary.Title = TruncateTitle(strings.Join(names, ", "))
		}
	}

	var devices []domain.DeviceItem
	for _, dv := range list(rec, "devices") {
		model := text(dv, "name", "deviceCode")
		serial := text(dv, "serialNumber")
		if model == "" && serial == "" {
			continue
		}
		devices = append(devices, domain.DeviceItem{Model: firstOf(model, defaultDeviceName), Serial: serial, Quantity: 1})
	}

	if summary.ProjectCode == "" {
		summary.ProjectCode = text(order, "orderCode")
	}

	detail := domain.TicketDetail{
		TicketSummary: summary,
		CustomerInfo: domain.CustomerInfo{
			Name:         summary.Customer,
			Address:      summary.Address,
			ContactPhone: text(rec, "phone_number"),
		},
		OrderInfo: &domain.OrderInfo{
			OrderCode:       firstOf(text(order, "orderCode"), text(rec, "order_id"), summary.ProjectCode),
			ItemsCount:      len(goods),
			SecretCodes:     nonNilCodes(codes),
			CustomerName:    text(order, "customerName"),
			TotalAmount:     number(order["totalAmount"]),
			OrderDate:       text(order, "orderDate"),
			Description:     text(order, "description"),
			DeliveryDate:    text(order, "deliveryDate"),
			ContactName:     text(order, "contactName"),
			ContactPhone:    text(order, "contactPhone"),
			DeliveryAddress: text(order, "deliveryAddress"),
			AssignedDate:    text(order, "assignedDate"),
			Status:          text(order, "status"),
		},
		GoodsInfo:  goods,
		DeviceInfo: devices,
		Notes:      firstOf(text(order, "description"), summary.Description),
	}

	finishedTime, finishedNote, finishedImage := text(rec, "finished_time"), text(rec, "finished_note"), text(rec, "finished_image")
	if finishedTime != "" || finishedNote != "" || finishedImage != "" {
		detail.ActivityResult = &domain.StageRecord{Time: finishedTime, Note: finishedNote, ImageURLs: images(finishedImage)}
	}
	return detail
}

// MissingCore reports whether a delivery detail lacks every identifying
// field, in which case callers merge it with the list entry.
func MissingCore(d domain.TicketDetail) bool {
	return isPlaceholder(d.CustomerInfo.Name) && d.Address == "" && d.ProjectCode == "" &&
		len(d.GoodsInfo) == 0 && len(d.DeviceInfo) == 0
}

// MergeSummary fills empty detail fields from the matching list entry.
func MergeSummary(d domain.TicketDetail, s domain.TicketSummary) domain.TicketDetail {
	if d.Title == "" || d.Title == defaultDeliveryTitle {
		d.Title = firstOf(s.Title, d.Title)
	}
	d.ProjectCode = firstOf(d.ProjectCode, s.ProjectCode)
	if isPlaceholder(d.Customer) {
		d.Customer = s.Customer
	}
	d.Address = firstOf(d.Address, s.Address)
	d.Deadline = firstOf(d.Deadline, s.Deadline)
	if d.RawStatus == "" && s.RawStatus != "" {
		d.RawStatus = s.RawStatus
		d.Status = s.Status
		d.StatusDisplayLabel = s.StatusDisplayLabel
	}
	if len(d.Products) == 0 {
		d.Products = s.Products
	}
	if isPlaceholder(d.CustomerInfo.Name) {
		d.CustomerInfo.Name = s.Customer
	}
	d.CustomerInfo.Address = firstOf(d.CustomerInfo.Address, s.Address)
	return d
}

func isPlaceholder(customer string) bool {
	return customer == "" || customer == defaultCustomer
}

func isDeviceCategory(category string) bool {
	c := strings.ToLower(category)
	return strings.Contains(c, "thiết bị") || strings.Contains(c, "thiet bi")
}

func nonNilCodes(codes []domain.SecretCode) []domain.SecretCode {
	if codes == nil {
		return []domain.SecretCode{}
	}
	return codes
}
