// Package session holds the technician's upstream bearer token and user
// record. Login, Logout and Current on Manager are the only mutators.
package session

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
)

// Storage keys. Both are always written and cleared together.
const (
	KeyToken = "auth_token"
	KeyUser  = "auth_user"
)

// Session is an authenticated technician.
type Session struct {
	Token string         `json:"token"`
	User  map[string]any `json:"user"`
}

// LoggedOut is the sentinel returned when no session exists.
var LoggedOut = Session{}

// IsLoggedOut reports whether s carries no token.
func (s Session) IsLoggedOut() bool {
	return strings.TrimSpace(s.Token) == ""
}

// Identity extracts the identifiers authenticated calls send upstream.
func (s Session) Identity() domain.Identity {
	return domain.Identity{
		Email:     userString(s.User, "email"),
		StaffCode: StaffCode(s.User),
	}
}

// StaffCode resolves the technician code; the upstream has used three keys.
func StaffCode(user map[string]any) string {
	for _, key := range []string{"staff-code", "staffCode", "code"} {
		if v := userString(user, key); v != "" {
			return v
		}
	}
	return ""
}

func userString(user map[string]any, key string) string {
	if user == nil {
		return ""
	}
	v, ok := user[key]
	if !ok || v == nil {
		return ""
	}
	s := strings.TrimSpace(cast.ToString(v))
	if strings.EqualFold(s, "undefined") || strings.EqualFold(s, "null") {
		return ""
	}
	return s
}
