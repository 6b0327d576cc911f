package enums

import "fmt"

// NotificationKind names the cart failure path that produced a notification.
type NotificationKind string

const (
	NotificationKindStockExceeded NotificationKind = "stock_exceeded"
	NotificationKindAddFailed     NotificationKind = "add_failed"
	NotificationKindRemoveFailed  NotificationKind = "remove_failed"
	NotificationKindUpdateFailed  NotificationKind = "update_failed"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindStockExceeded,
	NotificationKindAddFailed,
	NotificationKindRemoveFailed,
	NotificationKindUpdateFailed,
}

// String implements fmt.Stringer.
func (n NotificationKind) String() string {
	return string(n)
}

// IsValid checks whether the given kind matches the canonical enum.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw strings into NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}

// Severity is the display severity of a notification.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
	SeverityInfo  Severity = "info"
)

var validSeverities = []Severity{
	SeverityError,
	SeverityWarn,
	SeverityInfo,
}

// String implements fmt.Stringer.
func (s Severity) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Severity.
func (s Severity) IsValid() bool {
	for _, candidate := range validSeverities {
		if candidate == s {
			return true
		}
	}
	return false
}
