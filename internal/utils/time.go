package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitlog/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// Today returns now's calendar date (YYYY-MM-DD) in loc.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(constants.DateFormat)
}

// Window returns the inclusive date range of the last days days ending on
// now's calendar date in loc. Both ends are YYYY-MM-DD strings.
func Window(now time.Time, loc *time.Location, days int) (start, end string) {
	if days < 1 {
		days = 1
	}
	local := now.In(loc)
	endDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	startDay := endDay.AddDate(0, 0, -(days - 1))
	return startDay.Format(constants.DateFormat), endDay.Format(constants.DateFormat)
}
