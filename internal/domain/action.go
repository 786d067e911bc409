package domain

import "time"

// ActionKind names a ticket mutation.
type ActionKind string

const (
	ActionAccept          ActionKind = "accept"
	ActionDeliveryDone    ActionKind = "delivery_complete"
	ActionContactInfo     ActionKind = "maintenance_contact"
	ActionDeviceInfo      ActionKind = "maintenance_device"
	ActionTypeCategory    ActionKind = "maintenance_type"
	ActionFirstResponse   ActionKind = "maintenance_first_response"
	ActionSupplier        ActionKind = "maintenance_supplier"
	ActionStart           ActionKind = "maintenance_start"
	ActionResult          ActionKind = "maintenance_result"
	ActionActivityInfo    ActionKind = "activity_info"
	ActionActivityResult  ActionKind = "activity_result"
	ActionCreateActivity  ActionKind = "activity_create"
	ActionCreateEmergency ActionKind = "maintenance_create"
)

// ActionLog is an audit entry for a submitted mutation.
type ActionLog struct {
	ID         string
	TicketID   string
	TicketType TicketType
	Action     ActionKind
	StaffCode  string
	Email      string
	Success    bool
	Message    string
	CreatedAt  time.Time
}

// PushDevice is a registered push subscription for a technician.
type PushDevice struct {
	PlayerID  string
	Email     string
	StaffCode string
	Active    bool
	UpdatedAt time.Time
}
