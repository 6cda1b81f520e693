// Package date parses and formats task deadlines.
package date

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dayFormat   = "2006-01-02"
	naiveFormat = "2006-01-02T15:04:05"
	spaceFormat = "2006-01-02 15:04"
	day         = 24 * time.Hour
)

// Parse reads a deadline from user input. Accepted forms:
//
//	2025-03-01T12:00:00+02:00  RFC 3339
//	2025-03-01T12:00:00        no zone, interpreted as UTC
//	2025-03-01 12:00           no zone, interpreted as UTC
//	2025-03-01                 midnight UTC
//	+3d, +36h, +90m            relative to now
//	today, tomorrow            midnight UTC of that day
//
// The result is always in UTC.
func Parse(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range []string{naiveFormat, spaceFormat, dayFormat} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	switch strings.ToLower(s) {
	case "today":
		return midnight(now), nil
	case "tomorrow":
		return midnight(now).Add(day), nil
	}
	if strings.HasPrefix(s, "+") {
		d, err := parseOffset(s[1:])
		if err != nil {
			return time.Time{}, err
		}
		return now.UTC().Add(d), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected RFC 3339, YYYY-MM-DD or +N[d|h|m]", s)
}

func parseOffset(s string) (time.Duration, error) {
	if n, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(n)
		if err != nil || days < 0 {
			return 0, fmt.Errorf("invalid day offset %q", s)
		}
		return time.Duration(days) * day, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	return d, nil
}

func midnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Format renders a deadline compactly: date only at midnight UTC, else date and time.
func Format(t time.Time) string {
	u := t.UTC()
	if u.Equal(midnight(u)) {
		return u.Format(dayFormat)
	}
	return u.Format(spaceFormat)
}

// Relative describes t relative to now, e.g. "in 2d" or "5h ago".
func Relative(t, now time.Time) string {
	d := t.Sub(now)
	suffix := ""
	prefix := "in "
	if d < 0 {
		d = -d
		prefix = ""
		suffix = " ago"
	}
	var s string
	switch {
	case d >= day:
		s = strconv.Itoa(int(d/day)) + "d"
	case d >= time.Hour:
		s = strconv.Itoa(int(d/time.Hour)) + "h"
	default:
		s = strconv.Itoa(int(d/time.Minute)) + "m"
	}
	return prefix + s + suffix
}
