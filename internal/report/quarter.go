package report

import (
	"fmt"
	"time"
)

const (
	minYear = 1000
	maxYear = 9999
)

// ValidatePeriod reports whether year and quarter name a real calendar quarter.
// Zero values are treated as missing.
func ValidatePeriod(year, quarter int) error {
	if year == 0 || quarter == 0 {
		return fmt.Errorf("year and quarter are required")
	}
	if year < minYear || year > maxYear {
		return fmt.Errorf("year %d must have four digits", year)
	}
	if quarter < 1 || quarter > 4 {
		return fmt.Errorf("quarter %d must be between 1 and 4", quarter)
	}
	return nil
}

// QuarterRange returns the first and last instant of a calendar quarter in loc.
// End is 23:59:59 on the last day of the quarter's third month; both bounds are
// inclusive.
func QuarterRange(year, quarter int, loc *time.Location) (start, end time.Time, err error) {
	if err := ValidatePeriod(year, quarter); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	firstMonth := time.Month((quarter-1)*3 + 1)
	start = time.Date(year, firstMonth, 1, 0, 0, 0, 0, loc)
	// day 0 of the following month is the last day of the third month
	lastDay := time.Date(year, firstMonth+3, 0, 0, 0, 0, 0, loc)
	end = time.Date(lastDay.Year(), lastDay.Month(), lastDay.Day(), 23, 59, 59, 0, loc)
	return start, end, nil
}
