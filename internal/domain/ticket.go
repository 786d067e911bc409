package domain

import "strings"

// TicketType is the closed set of business categories.
type TicketType string

const (
	TicketTypeDelivery    TicketType = "delivery"
	TicketTypeMaintenance TicketType = "maintenance"
	TicketTypeSales       TicketType = "sales"
)

// TicketTypes lists every category in display order.
var TicketTypes = []TicketType{TicketTypeDelivery, TicketTypeMaintenance, TicketTypeSales}

// ParseTicketType accepts the canonical names plus the upstream path aliases.
func ParseTicketType(raw string) (TicketType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "delivery", "delivery-installation":
		return TicketTypeDelivery, true
	case "maintenance", "maintenance-repair":
		return TicketTypeMaintenance, true
	case "sales", "activity", "activity-support":
		return TicketTypeSales, true
	}
	return "", false
}

// Bucket is the canonical status a raw upstream phrase is classified into.
type Bucket string

const (
	BucketAssigned   Bucket = "assigned"
	BucketInProgress Bucket = "in-progress"
	BucketCompleted  Bucket = "completed"
)

// Buckets lists the canonical buckets in tab order.
var Buckets = []Bucket{BucketAssigned, BucketInProgress, BucketCompleted}

// ParseBucket validates a bucket name; empty input means "no filter".
func ParseBucket(raw string) (Bucket, bool) {
	switch Bucket(strings.ToLower(strings.TrimSpace(raw))) {
	case BucketAssigned:
		return BucketAssigned, true
	case BucketInProgress:
		return BucketInProgress, true
	case BucketCompleted:
		return BucketCompleted, true
	}
	return "", false
}

// TicketSummary is the list view-model built fresh on every fetch.
type TicketSummary struct {
	ID                 string     `json:"id"`
	Type               TicketType `json:"type"`
	Title              string     `json:"title"`
	ProjectCode        string     `json:"projectCode,omitempty"`
	Customer           string     `json:"customer"`
	Address            string     `json:"address"`
	Deadline           string     `json:"deadline"`
	Status             Bucket     `json:"status"`
	StatusDisplayLabel string     `json:"statusDisplayLabel"`
	Products           []string   `json:"products,omitempty"`
	SubTypeLabel       string     `json:"subTypeLabel,omitempty"`
	Description        string     `json:"description,omitempty"`

	// RawStatus keeps the upstream phrase for category tab filtering.
	RawStatus string `json:"-"`
}

// TicketDetail extends the summary with optional nested blocks. A nil block
// means the stage has not been recorded yet.
type TicketDetail struct {
	TicketSummary

	CustomerInfo        CustomerInfo      `json:"customerInfo"`
	OrderInfo           *OrderInfo        `json:"orderInfo,omitempty"`
	GoodsInfo           []GoodsItem       `json:"goodsInfo"`
	DeviceInfo          []DeviceItem      `json:"deviceInfo"`
	Notes               string            `json:"notes,omitempty"`
	FirstResponse       *StageRecord      `json:"firstResponse,omitempty"`
	SupplierInstruction *SupplierStage    `json:"supplierInstruction,omitempty"`
	StartExecution      *StageRecord      `json:"startExecution,omitempty"`
	ResultRecord        *StageRecord      `json:"resultRecord,omitempty"`
	ActivityInfo        *ActivityInfo     `json:"activityInfo,omitempty"`
	ActivityResult      *StageRecord      `json:"activityResult,omitempty"`
	MaintenanceExtra    *MaintenanceExtra `json:"maintenanceExtra,omitempty"`
}

// CustomerInfo is the contact block.
type CustomerInfo struct {
	Name         string `json:"name"`
	Code         string `json:"code,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`
	Address      string `json:"address"`
}

// OrderInfo is the order/line-items block.
type OrderInfo struct {
	OrderCode       string       `json:"orderCode,omitempty"`
	ItemsCount      int          `json:"itemsCount,omitempty"`
	SecretCodes     []SecretCode `json:"secretCodes"`
	CustomerName    string       `json:"customerName,omitempty"`
	TotalAmount     float64      `json:"totalAmount,omitempty"`
	OrderDate       string       `json:"orderDate,omitempty"`
	Description     string       `json:"description,omitempty"`
	DeliveryDate    string       `json:"deliveryDate,omitempty"`
	ContactName     string       `json:"contactName,omitempty"`
	ContactPhone    string       `json:"contactPhone,omitempty"`
	DeliveryAddress string       `json:"deliveryAddress,omitempty"`
	AssignedDate    string       `json:"assignedDate,omitempty"`
	Status          string       `json:"status,omitempty"`
}

// SecretCode is one product line on an order.
type SecretCode struct {
	Code     string `json:"code"`
	Name     string `json:"name,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// GoodsItem is a delivered product line.
type GoodsItem struct {
	SKU      string `json:"sku,omitempty"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// DeviceItem is an installed or serviced device.
type DeviceItem struct {
	Model    string `json:"model,omitempty"`
	Serial   string `json:"serial,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// StageRecord captures one recorded workflow step.
type StageRecord struct {
	Time      string   `json:"time,omitempty"`
	Note      string   `json:"note,omitempty"`
	ImageURLs []string `json:"imageUrls,omitempty"`
}

// SupplierStage is the supplier instruction step.
type SupplierStage struct {
	Time         string `json:"time,omitempty"`
	ContactTime  string `json:"contactTime,omitempty"`
	ResponseTime string `json:"responseTime,omitempty"`
	Note         string `json:"note,omitempty"`
}

// ActivityInfo is the main block of an activity/support ticket.
type ActivityInfo struct {
	Subject     string `json:"subject,omitempty"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
}

// MaintenanceExtra holds maintenance-only detail fields.
type MaintenanceExtra struct {
	Company          string `json:"company,omitempty"`
	TicketType       string `json:"ticketType,omitempty"`
	TicketCategory   string `json:"ticketCategory,omitempty"`
	DeviceBrand      string `json:"deviceBrand,omitempty"`
	DeviceModel      string `json:"deviceModel,omitempty"`
	SerialNumber     string `json:"serialNumber,omitempty"`
	InstallationDate string `json:"installationDate,omitempty"`
	ImageDeviceURL   string `json:"imageDeviceUrl,omitempty"`
	CreatedAt        string `json:"createdAt,omitempty"`
	AssignedAt       string `json:"assignedAt,omitempty"`
	StartLocation    string `json:"startLocation,omitempty"`
	CompleteLocation string `json:"completeLocation,omitempty"`
}

// TicketPage is a filtered, optionally sliced list result.
type TicketPage struct {
	Items    []TicketSummary `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page,omitempty"`
	PageSize int             `json:"page_size,omitempty"`
	FellBack bool            `json:"fell_back,omitempty"`
}

// TicketCounts maps category to per-bucket counts.
type TicketCounts map[TicketType]map[Bucket]int
