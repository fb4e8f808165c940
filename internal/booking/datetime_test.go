package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "cabs-workers/internal/common/errors"
)

func expectedMs(year int, month time.Month, day, hour, min int) int64 {
	return time.Date(year, month, day, hour, min, 0, 0, pickupLocation()).UnixMilli()
}

func TestParsePickupTime(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		timeStr string
		want    int64
	}{
		{"dd-MM-yyyy with 24h", "15-09-2026", "14:30", expectedMs(2026, time.September, 15, 14, 30)},
		{"yyyy-MM-dd with 24h", "2026-09-15", "09:05", expectedMs(2026, time.September, 15, 9, 5)},
		{"12h with space", "15-09-2026", "2:30 PM", expectedMs(2026, time.September, 15, 14, 30)},
		{"12h without space", "15-09-2026", "2:30PM", expectedMs(2026, time.September, 15, 14, 30)},
		{"lowercase meridiem", "15-09-2026", "11:45 am", expectedMs(2026, time.September, 15, 11, 45)},
		{"midnight", "01-01-2027", "12:00 AM", expectedMs(2027, time.January, 1, 0, 0)},
		{"noon", "01-01-2027", "12:00 PM", expectedMs(2027, time.January, 1, 12, 0)},
		{"surrounding whitespace", " 15-09-2026 ", " 14:30 ", expectedMs(2026, time.September, 15, 14, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePickupTime(tt.date, tt.timeStr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePickupTimeInvalid(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		timeStr string
	}{
		{"bad date format", "15/09/2026", "14:30"},
		{"garbage date", "someday", "14:30"},
		{"empty date", "", "14:30"},
		{"bad time format", "15-09-2026", "2 o'clock"},
		{"empty time", "15-09-2026", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePickupTime(tt.date, tt.timeStr)
			require.Error(t, err)
			assert.Equal(t, cerrors.ErrCodeInvalidDateTime, cerrors.CodeOf(err))
		})
	}
}
