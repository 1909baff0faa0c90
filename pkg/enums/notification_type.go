package enums

import "fmt"

// NotificationType tags the event that produced an in-app notification.
type NotificationType string

const (
	NotificationTypeConnectionRequest  NotificationType = "CONNECTION_REQUEST"
	NotificationTypeConnectionAccepted NotificationType = "CONNECTION_ACCEPTED"
	NotificationTypeMessage            NotificationType = "MESSAGE"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeConnectionRequest,
	NotificationTypeConnectionAccepted,
	NotificationTypeMessage,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
