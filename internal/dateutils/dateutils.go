// Package dateutils provides the timestamp parsing and date window helpers
// used when normalizing settlement records.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts seen in gateway, ledger and bank exports
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutFull     = "2006-01-02 15:04:05"
	DateLayoutFullT    = "2006-01-02T15:04:05"
	DateLayoutShort    = "2006-01-02 15:04"
	DateLayoutIndian   = "02/01/2006"
	DateLayoutIndianTS = "02/01/2006 15:04:05"
	DateLayoutDashed   = "02-01-2006"
	DateLayoutEuropean = "02.01.2006"
	DateLayoutUS       = "01/02/2006"
	DateLayoutMonth    = "02-Jan-2006"
)

// CommonFormats is the ordered list of layouts ParseDate tries.
// Day-first layouts come before the US layout, so 03/04/2025 is 3 April.
var CommonFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	DateLayoutFull,
	DateLayoutFullT,
	DateLayoutShort,
	DateLayoutISO,
	DateLayoutIndianTS,
	DateLayoutIndian,
	DateLayoutDashed,
	DateLayoutEuropean,
	DateLayoutUS,
	DateLayoutMonth,
	"2006/01/02",
	"2006/01/02 15:04:05",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

var whitespace = regexp.MustCompile(`\s+`)

// ParseDate attempts to parse a date string using CommonFormats.
// Returns the parsed time and the layout that matched.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)
	if dateStr == "" {
		return time.Time{}, "", fmt.Errorf("unable to parse date: empty value")
	}

	for _, format := range CommonFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, format, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// CleanDateString trims and collapses internal whitespace
func CleanDateString(dateStr string) string {
	dateStr = strings.TrimSpace(dateStr)
	return whitespace.ReplaceAllString(dateStr, " ")
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format(DateLayoutISO)
}

// DateRange is an inclusive window of calendar days. A zero bound is open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether neither bound is set
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t falls inside the window.
// Comparisons are made on calendar days, so an End of 2025-01-31 admits
// any time on that day.
func (r DateRange) Contains(t time.Time) bool {
	if r.IsZero() {
		return true
	}
	if t.IsZero() {
		return false
	}
	if !r.Start.IsZero() && CompareDates(t, r.Start) < 0 {
		return false
	}
	if !r.End.IsZero() && CompareDates(t, r.End) > 0 {
		return false
	}
	return true
}

// String renders the window for log output
func (r DateRange) String() string {
	from, to := ToISODate(r.Start), ToISODate(r.End)
	if from == "" {
		from = "*"
	}
	if to == "" {
		to = "*"
	}
	return from + ".." + to
}

// ParseDateRange builds a window from two optional date strings.
// Either string may be empty to leave that side open.
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange

	if strings.TrimSpace(from) != "" {
		t, _, err := ParseDate(from)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid start date: %w", err)
		}
		r.Start = t
	}
	if strings.TrimSpace(to) != "" {
		t, _, err := ParseDate(to)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid end date: %w", err)
		}
		r.End = t
	}

	if !r.Start.IsZero() && !r.End.IsZero() && CompareDates(r.Start, r.End) > 0 {
		return DateRange{}, fmt.Errorf("start date %s is after end date %s", ToISODate(r.Start), ToISODate(r.End))
	}
	return r, nil
}

// CompareDates compares the calendar days of two times and returns:
//
//	-1 if date1 is before date2
//	 0 if date1 is equal to date2
//	 1 if date1 is after date2
func CompareDates(date1, date2 time.Time) int {
	date1 = time.Date(date1.Year(), date1.Month(), date1.Day(), 0, 0, 0, 0, time.UTC)
	date2 = time.Date(date2.Year(), date2.Month(), date2.Day(), 0, 0, 0, 0, time.UTC)

	if date1.Before(date2) {
		return -1
	} else if date1.After(date2) {
		return 1
	}
	return 0
}
