package daily

import (
	"fmt"
	"strconv"
	"time"
)

// defaultTestHour is used when only a test date is supplied.
const defaultTestHour = 10

// ResolveNow returns the effective "now" for the sender. With no overrides
// it is the wall clock in loc. TEST_DATE (YYYY-MM-DD) and TEST_HOUR (0..23)
// build a synthetic moment for dry runs; either may be given alone.
func ResolveNow(loc *time.Location, testDate, testHour string) (time.Time, error) {
	if testDate == "" && testHour == "" {
		return time.Now().In(loc), nil
	}

	base := time.Now().In(loc)
	if testDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", testDate, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("test date must be YYYY-MM-DD: %w", err)
		}
		base = parsed
	}

	hour := defaultTestHour
	if testHour != "" {
		parsed, err := strconv.Atoi(testHour)
		if err != nil {
			return time.Time{}, fmt.Errorf("test hour must be an integer: %w", err)
		}
		if parsed < 0 || parsed > 23 {
			return time.Time{}, fmt.Errorf("test hour must be in range 0..23, got %d", parsed)
		}
		hour = parsed
	}

	return time.Date(base.Year(), base.Month(), base.Day(), hour, 0, 0, 0, loc), nil
}
