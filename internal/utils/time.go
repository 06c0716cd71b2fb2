package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	layoutDateTime = "2006-01-02 15:04:05"
	layoutLocalDT  = "2006-01-02T15:04"
)

// ParsePickup accepts RFC3339 or a zone-less "YYYY-MM-DDTHH:MM" / "YYYY-MM-DD HH:MM:SS" in loc.
func ParsePickup(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{layoutDateTime, layoutLocalDT} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("pickup_datetime %q is not RFC3339", s)
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS" in loc.
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(layoutDateTime)
}
