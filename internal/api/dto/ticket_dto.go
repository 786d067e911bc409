package dto

import (
	"github.com/lanoanh-osi/ServiceOps/internal/geo"
	"github.com/lanoanh-osi/ServiceOps/internal/service"
)

// DeliveryCompleteRequest closes a delivery ticket.
type DeliveryCompleteRequest struct {
	Note     string   `json:"note"`
	Products []string `json:"products"`
	Serials  []string `json:"serials"`
	Images   []string `json:"images" validate:"omitempty,dive,notblank"`
}

// Input converts the request.
func (r DeliveryCompleteRequest) Input() service.DeliveryCompleteInput {
	return service.DeliveryCompleteInput{Note: r.Note, Products: r.Products, Serials: r.Serials, Images: r.Images}
}

// FirstResponseRequest records the first customer contact.
type FirstResponseRequest struct {
	Time    string `json:"time"`
	Content string `json:"content" validate:"notblank"`
	Image   string `json:"image"`
}

// Input converts the request.
func (r FirstResponseRequest) Input() service.FirstResponseInput {
	return service.FirstResponseInput{Time: r.Time, Content: r.Content, Image: r.Image}
}

// StageRequest is the start or result stage of a maintenance ticket.
// Latitude and longitude are reverse geocoded when no location is given.
type StageRequest struct {
	Note      string   `json:"note"`
	Images    []string `json:"images" validate:"omitempty,dive,notblank"`
	Time      string   `json:"time"`
	Location  string   `json:"location"`
	Latitude  *float64 `json:"latitude" validate:"required_with=Longitude,omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required_with=Latitude,omitempty,min=-180,max=180"`
}

// Input converts the request.
func (r StageRequest) Input() service.StageInput {
	in := service.StageInput{Note: r.Note, Images: r.Images, Time: r.Time, Location: r.Location}
	if r.Latitude != nil && r.Longitude != nil {
		in.Position = &geo.Point{Lat: *r.Latitude, Lon: *r.Longitude}
	}
	return in
}

// ActivityResultRequest records an activity outcome.
type ActivityResultRequest struct {
	Note string `json:"note" validate:"notblank"`
}

// CreateActivityRequest creates an activity/support ticket.
type CreateActivityRequest struct {
	Name         string `json:"name" validate:"notblank"`
	Description  string `json:"description"`
	CustomerName string `json:"customer_name"`
	Type         string `json:"type" validate:"notblank"`
	Deadline     string `json:"deadline"`
	Status       string `json:"status"`
	CompleteDate string `json:"complete_date"`
	Note         string `json:"note"`
}

// Input converts the request.
func (r CreateActivityRequest) Input() service.CreateActivityInput {
	return service.CreateActivityInput{
		Name:         r.Name,
		Description:  r.Description,
		CustomerName: r.CustomerName,
		Type:         r.Type,
		Deadline:     r.Deadline,
		Status:       r.Status,
		CompleteDate: r.CompleteDate,
		Note:         r.Note,
	}
}

// CreateEmergencyRequest creates an emergency maintenance ticket.
type CreateEmergencyRequest struct {
	Name         string `json:"name" validate:"notblank"`
	Phone        string `json:"phone" validate:"notblank"`
	Email        string `json:"email" validate:"omitempty,email"`
	Company      string `json:"company"`
	Serial       string `json:"serial"`
	Issue        string `json:"issue" validate:"notblank"`
	Category     string `json:"category"`
	ServiceType  string `json:"service_type"`
	Status       string `json:"status"`
	Assignee     string `json:"assignee"`
	ArriveTime   string `json:"arrive_time"`
	CompleteTime string `json:"complete_time"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
}

// Input converts the request.
func (r CreateEmergencyRequest) Input() service.CreateEmergencyInput {
	return service.CreateEmergencyInput{
		Name:         r.Name,
		Phone:        r.Phone,
		Email:        r.Email,
		Company:      r.Company,
		Serial:       r.Serial,
		Issue:        r.Issue,
		Category:     r.Category,
		ServiceType:  r.ServiceType,
		Status:       r.Status,
		Assignee:     r.Assignee,
		ArriveTime:   r.ArriveTime,
		CompleteTime: r.CompleteTime,
		Brand:        r.Brand,
		Model:        r.Model,
	}
}

// SerialRequest looks a device up by serial.
type SerialRequest struct {
	Serial string `json:"serial" validate:"notblank"`
}
