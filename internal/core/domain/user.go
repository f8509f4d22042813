package domain

import "strings"

// Role is the privilege level the remote API assigns to an account.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// Identity models the authenticated account as returned by the remote API.
type Identity struct {
	ID        string  `json:"id,omitempty"`
	Email     string  `json:"email"`
	FirstName string  `json:"firstName"`
	LastName  *string `json:"lastName,omitempty"`
	Role      Role    `json:"role"`
	Avatar    *string `json:"avatar,omitempty"`
}

// DisplayName joins the first and last name, skipping a missing last name.
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName)
	if i.LastName != nil && strings.TrimSpace(*i.LastName) != "" {
		name += " " + strings.TrimSpace(*i.LastName)
	}
	return strings.TrimSpace(name)
}

// Initials returns the avatar fallback for a name pair, e.g. "AC" for
// "Ayush Chugh". An empty first name yields "U".
func Initials(firstName string, lastName *string) string {
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return "U"
	}
	out := firstRune(firstName)
	if lastName != nil {
		out += firstRune(strings.TrimSpace(*lastName))
	}
	return strings.ToUpper(out)
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
