package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock parses a local wall-clock time in HH:MM form.
func ParseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(m) != 2 || len(h) == 0 || len(h) > 2 {
		return 0, 0, fmt.Errorf("clock %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("clock %q: bad hour", s)
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock %q: bad minute", s)
	}
	return hour, minute, nil
}

// ClockOrMidnight is the lenient form used for stored templates: each
// unparseable component falls back to zero instead of failing.
func ClockOrMidnight(s string) (hour, minute int) {
	h, m, _ := strings.Cut(strings.TrimSpace(s), ":")
	hour, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || hour < 0 || hour > 23 {
		hour = 0
	}
	minute, err = strconv.Atoi(strings.TrimSpace(m))
	if err != nil || minute < 0 || minute > 59 {
		minute = 0
	}
	return hour, minute
}
