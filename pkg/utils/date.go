package utils

import (
	"time"
)

// FormatTimestamp renders the alert timestamp the way the notification
// emails display it.
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
