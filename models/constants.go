package models

import "time"

// Activity types shown in the public feed
const (
	ActivityTypeProfileUpdate = "profile_update"
	ActivityTypeNewUser       = "new_user"
	ActivityTypeSentHint      = "sent_hint"
	ActivityTypeMatch         = "match"
)

// Notification types
const (
	NotificationTypeMatch = "match"
)

// TimestampLayout is RFC3339 with a fixed-width nanosecond fraction so that
// lexicographic order of stored timestamps equals chronological order.
// time.RFC3339Nano trims trailing zeros and breaks that property.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// TypingTTL bounds how long a typing flag stays visible without a refresh,
// so a disconnected client cannot leave a stuck indicator.
const TypingTTL = 10 * time.Second

// FormatTimestamp renders t in the canonical stored form (UTC, fixed width).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
