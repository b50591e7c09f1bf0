package roster

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateKey is the canonical YYYY.MM.DD row identity. Keys compare
// lexicographically in date order.
type DateKey string

const dateLayout = "2006.01.02"

var datePattern = regexp.MustCompile(`^\d{4}\.\d{1,2}\.\d{1,2}$`)

// DefaultLocation is the civil time zone used to find the reference Sunday
// and to stamp audit records.
var DefaultLocation = time.FixedZone("UTC+8", 8*60*60)

// ParseDateKey accepts YYYY.M.D with optional zero padding and returns the
// zero-padded key. Impossible calendar dates are rejected.
func ParseDateKey(input string) (DateKey, error) {
	value := strings.TrimSpace(input)
	if !datePattern.MatchString(value) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, input)
	}
	parts := strings.Split(value, ".")
	year, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	day, _ := strconv.Atoi(parts[2])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", fmt.Errorf("%w: %q is not a calendar date", ErrInvalidDate, input)
	}
	return FormatDate(t), nil
}

// MustDateKey is ParseDateKey for literals; it panics on bad input.
func MustDateKey(input string) DateKey {
	key, err := ParseDateKey(input)
	if err != nil {
		panic(err)
	}
	return key
}

// FormatDate renders the calendar day of t.
func FormatDate(t time.Time) DateKey {
	return DateKey(t.Format(dateLayout))
}

func (d DateKey) String() string {
	return string(d)
}

// Valid reports whether d is a zero-padded calendar date.
func (d DateKey) Valid() bool {
	_, err := time.Parse(dateLayout, string(d))
	return err == nil
}

// Time returns midnight UTC of d, or the zero time when d is invalid.
func (d DateKey) Time() time.Time {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays shifts d by n calendar days.
func (d DateKey) AddDays(n int) DateKey {
	return FormatDate(d.Time().AddDate(0, 0, n))
}

// IsSunday reports whether d falls on a Sunday.
func (d DateKey) IsSunday() bool {
	return d.Valid() && d.Time().Weekday() == time.Sunday
}

// DaysBetween returns to - from in whole days.
func DaysBetween(from, to DateKey) int {
	return int(to.Time().Sub(from.Time()).Hours() / 24)
}

// ReferenceSunday returns the Sunday strictly after the calendar day of now in
// loc. On a Sunday it returns the following Sunday. Rows on or after it form
// the editable window.
func ReferenceSunday(now time.Time, loc *time.Location) DateKey {
	if loc == nil {
		loc = DefaultLocation
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return FormatDate(day.AddDate(0, 0, 7-int(day.Weekday())))
}

// FormatTimestamp renders t in loc as YYYY.MM.DD.HH.MM.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = DefaultLocation
	}
	return t.In(loc).Format("2006.01.02.15.04")
}
