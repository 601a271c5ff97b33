// Package civiltime resolves wall-clock concepts of the single civil calendar
// the service operates in (UTC+3, no daylight saving) into absolute instants.
package civiltime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Offset is the fixed distance of the civil calendar from UTC.
const Offset = 3 * time.Hour

// Zone is the civil calendar's location.
var Zone = time.FixedZone("AST", int(Offset/time.Second))

const (
	defaultHour   = 9
	defaultMinute = 0
)

// Date is a calendar day in the civil zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Today returns the civil date containing instant t.
func Today(t time.Time) Date {
	y, m, d := t.In(Zone).Date()
	return Date{Year: y, Month: m, Day: d}
}

// StartOfDay returns 00:00 of d in the civil zone.
func StartOfDay(d Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, Zone)
}

// At returns hour:minute on d in the civil zone.
func (d Date) At(hour, minute int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, Zone)
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Today(StartOfDay(d).AddDate(0, 0, n))
}

func (d Date) Before(u Date) bool {
	return StartOfDay(d).Before(StartOfDay(u))
}

func (d Date) Equal(u Date) bool {
	return d == u
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), Zone)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Today(t), nil
}

// DateOf converts a DATE column value (midnight in any zone) into a civil Date
// without shifting the day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// DaysInMonth returns the number of days of month in year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, Zone).Day()
}

// ParseTimeOfDay parses an "HH:MM" string. Hours are clamped to [0,23] and
// minutes to [0,59]; an empty or non-numeric hour yields 09:00, and a missing
// or non-numeric minute yields 0.
func ParseTimeOfDay(s string) (hour, minute int) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return defaultHour, defaultMinute
	}
	m := 0
	if len(parts) > 1 {
		if v, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			m = v
		}
	}
	return clamp(h, 0, 23), clamp(m, 0, 59)
}

// ResolveOn returns the instant of timeOfDay on civil date d.
func ResolveOn(timeOfDay string, d Date) time.Time {
	h, m := ParseTimeOfDay(timeOfDay)
	return d.At(h, m)
}

// ResolveToday returns the instant of timeOfDay on the civil date of ref.
func ResolveToday(timeOfDay string, ref time.Time) time.Time {
	return ResolveOn(timeOfDay, Today(ref))
}

// FormatTimeOfDay renders an instant as HH:MM in the civil zone.
func FormatTimeOfDay(t time.Time) string {
	return t.In(Zone).Format("15:04")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
