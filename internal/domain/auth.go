package domain

import "time"

// Identity is what authenticated webhook calls carry in their bodies.
type Identity struct {
	Email     string `json:"email"`
	StaffCode string `json:"staff_code"`
}

// IsZero reports whether neither identifier is known.
func (i Identity) IsZero() bool {
	return i.Email == "" && i.StaffCode == ""
}

// GatewayToken represents an issued gateway session token.
type GatewayToken struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
