package store

import "time"

// FormatTimestamp renders t in local time as DD/MM/YYYY HH:MM:SS
func FormatTimestamp(t time.Time) string {
	return t.Local().Format("02/01/2006 15:04:05")
}
