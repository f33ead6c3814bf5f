package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseEventTime parses an event start from a month-day ("MM-DD"), a 24h
// clock time ("HH:MM") and an IANA timezone name. The year is implied:
// if the resulting instant is before now, it rolls to the same date next
// year.
func ParseEventTime(monthDay, clockTime, zone string, now time.Time) (time.Time, error) {
	month, day, err := splitPair(monthDay, "-")
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want MM-DD", monthDay)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid date %q: want MM-DD", monthDay)
	}

	hour, minute, err := splitPair(clockTime, ":")
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want HH:MM", clockTime)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("invalid time %q: want HH:MM", clockTime)
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: want an IANA zone name", zone)
	}

	localNow := now.In(loc)
	start := time.Date(localNow.Year(), time.Month(month), day, hour, minute, 0, 0, loc)
	if start.Before(localNow) {
		start = time.Date(localNow.Year()+1, time.Month(month), day, hour, minute, 0, 0, loc)
	}
	return start, nil
}

func splitPair(value, sep string) (int, int, error) {
	parts := strings.SplitN(value, sep, 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected two fields in %q", value)
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// ParseRFC3339 parses an RFC3339 timestamp, accepting nanosecond
// precision.
func ParseRFC3339(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
