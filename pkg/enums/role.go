package enums

import "fmt"

// Role is the professional identity a user picks after first sign-in.
type Role string

const (
	RoleNone   Role = "NONE"
	RolePlayer Role = "PLAYER"
	RoleScout  Role = "SCOUT"
	RoleClub   Role = "CLUB"
)

var validRoles = []Role{
	RoleNone,
	RolePlayer,
	RoleScout,
	RoleClub,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
