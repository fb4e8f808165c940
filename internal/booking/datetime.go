// Package booking wraps the cab backend: search and hold API calls, pickup
// time parsing, the search session store and the booking audit trail.
package booking

import (
	"fmt"
	"strings"
	"time"

	cerrors "cabs-workers/internal/common/errors"
)

var dateLayouts = []string{"02-01-2006", "2006-01-02"}
var timeLayouts = []string{"15:04", "3:04 PM", "3:04PM"}

// istZone is used when the zoneinfo database is unavailable.
var istZone = time.FixedZone("IST", 5*3600+1800)

func pickupLocation() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	return istZone
}

// ParsePickupTime combines a date string (dd-MM-yyyy or yyyy-MM-dd) and a
// time string (24h HH:MM or h:MM AM/PM) into epoch milliseconds in IST.
func ParsePickupTime(dateStr, timeStr string) (int64, error) {
	dateStr = strings.TrimSpace(dateStr)
	timeStr = strings.ToUpper(strings.TrimSpace(timeStr))

	var day time.Time
	var err error
	parsed := false
	for _, layout := range dateLayouts {
		if day, err = time.Parse(layout, dateStr); err == nil {
			parsed = true
			break
		}
	}
	if !parsed {
		return 0, cerrors.NewInvalidDateTimeError(
			fmt.Sprintf("could not parse date '%s'; expected dd-MM-yyyy or yyyy-MM-dd", dateStr))
	}

	var clock time.Time
	parsed = false
	for _, layout := range timeLayouts {
		if clock, err = time.Parse(layout, timeStr); err == nil {
			parsed = true
			break
		}
	}
	if !parsed {
		return 0, cerrors.NewInvalidDateTimeError(
			fmt.Sprintf("could not parse time '%s'; expected HH:MM or h:MM AM/PM", timeStr))
	}

	pickup := time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), 0, 0, pickupLocation())
	return pickup.UnixMilli(), nil
}
