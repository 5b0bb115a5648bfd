package transform

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var belgianDateRe = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})(?: (\d{2}):(\d{2})(?::(\d{2}))?)?$`)

// ParseBelgianDate parses "DD-MM-YYYY" or "DD-MM-YYYY HH:MM[:SS]" as a UTC instant.
// Any other shape, ISO dates included, reports false rather than an error.
func ParseBelgianDate(raw string) (time.Time, bool) {
	m := belgianDateRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour := atoiOr(m[4], 0)
	minute := atoiOr(m[5], 0)
	second := atoiOr(m[6], 0)

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), true
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
