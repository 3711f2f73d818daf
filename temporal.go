package smartjson

import (
	"fmt"
	"regexp"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// timestampPattern is the fixed shape of every timestamp this package emits:
// YYYY-MM-DD, optionally followed by " HH:MM:SS" and up to six fractional digits.
var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(?: \d{2}:\d{2}:\d{2}(?:\.\d{1,6})?)?$`)

// Date is a calendar date without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the date on which t occurs, in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC at the start of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// formatTime renders t's wall clock as YYYY-MM-DD HH:MM:SS, adding
// microseconds only when they are non-zero.
func formatTime(t time.Time) string {
	s := t.Format(dateTimeLayout)
	if us := t.Nanosecond() / 1000; us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	return s
}

// parseTimestamp reinterprets s as a temporal value when it has the fixed
// timestamp shape: time.Time for date-times (UTC), Date for bare dates.
func parseTimestamp(s string) (any, bool) {
	if !timestampPattern.MatchString(s) {
		return nil, false
	}
	if len(s) == len(dateLayout) {
		d, err := ParseDate(s)
		if err != nil {
			return nil, false
		}
		return d, true
	}
	// Fractional seconds are accepted after the seconds field on parse.
	t, err := time.Parse(dateTimeLayout, s)
	if err != nil {
		return nil, false
	}
	return t, true
}
