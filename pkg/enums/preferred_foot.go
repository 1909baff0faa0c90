package enums

import "fmt"

// PreferredFoot is a player profile attribute.
type PreferredFoot string

const (
	PreferredFootLeft  PreferredFoot = "LEFT"
	PreferredFootRight PreferredFoot = "RIGHT"
	PreferredFootBoth  PreferredFoot = "BOTH"
)

var validPreferredFeet = []PreferredFoot{
	PreferredFootLeft,
	PreferredFootRight,
	PreferredFootBoth,
}

// IsValid reports whether the value is a known PreferredFoot.
func (p PreferredFoot) IsValid() bool {
	for _, candidate := range validPreferredFeet {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePreferredFoot converts raw input into a PreferredFoot.
func ParsePreferredFoot(value string) (PreferredFoot, error) {
	for _, candidate := range validPreferredFeet {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid preferred foot %q", value)
}
