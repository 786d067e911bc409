package events

import (
	"time"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventActionSubmitted EventType = "action_submitted"
	EventSessionOpened   EventType = "session_opened"
	EventSessionClosed   EventType = "session_closed"
)

// Actor identifies the technician behind an event.
type Actor struct {
	Email     string `json:"email,omitempty"`
	StaffCode string `json:"staff_code,omitempty"`
}

// ActorFrom converts an identity.
func ActorFrom(id domain.Identity) Actor {
	return Actor{Email: id.Email, StaffCode: id.StaffCode}
}

// Identity converts back to the domain identity.
func (a Actor) Identity() domain.Identity {
	return domain.Identity{Email: a.Email, StaffCode: a.StaffCode}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id,omitempty"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// ActionSubmittedPayload describes a mutation sent upstream, successful or not.
type ActionSubmittedPayload struct {
	TicketType domain.TicketType `json:"ticket_type"`
	Action     domain.ActionKind `json:"action"`
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
}

// SessionPayload accompanies session lifecycle events.
type SessionPayload struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id,omitempty"`
}
