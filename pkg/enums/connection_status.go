package enums

import "fmt"

// ConnectionStatus tracks the lifecycle of a connection request.
// A request starts PENDING, resolves to ACCEPTED or REJECTED, and a
// REJECTED request may be resent (back to PENDING) on the same record.
type ConnectionStatus string

const (
	ConnectionStatusPending  ConnectionStatus = "PENDING"
	ConnectionStatusAccepted ConnectionStatus = "ACCEPTED"
	ConnectionStatusRejected ConnectionStatus = "REJECTED"
)

var validConnectionStatuses = []ConnectionStatus{
	ConnectionStatusPending,
	ConnectionStatusAccepted,
	ConnectionStatusRejected,
}

// String implements fmt.Stringer.
func (c ConnectionStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ConnectionStatus.
func (c ConnectionStatus) IsValid() bool {
	for _, candidate := range validConnectionStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseConnectionStatus converts raw input into a ConnectionStatus.
func ParseConnectionStatus(value string) (ConnectionStatus, error) {
	for _, candidate := range validConnectionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid connection status %q", value)
}
