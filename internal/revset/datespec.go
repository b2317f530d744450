package revset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateMatcher reports whether a timestamp satisfies a date spec
type DateMatcher func(time.Time) bool

var dateLayouts = []struct {
	layout string
	span   func(time.Time) time.Time
}{
	{"2006-01-02 15:04:05", func(t time.Time) time.Time { return t.Add(time.Second) }},
	{"2006-01-02 15:04", func(t time.Time) time.Time { return t.Add(time.Minute) }},
	{"2006-01-02", func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }},
	{"2006-01", func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }},
}

// period is the half open interval [start, end) denoted by a date
type period struct {
	start, end time.Time
}

func parsePeriod(s string, loc *time.Location) (period, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		t, err := time.ParseInLocation(l.layout, s, loc)
		if err == nil {
			return period{start: t, end: l.span(t)}, nil
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) > 7 {
		t := time.Unix(secs, 0)
		return period{start: t, end: t.Add(time.Second)}, nil
	}
	return period{}, fmt.Errorf("invalid date: %q", s)
}

// ParseDateSpec parses a date spec:
//
//	DATE          any time within DATE (a day, a minute, a second or a month)
//	<DATE         at or before the end of DATE
//	>DATE         at or after the start of DATE
//	DATE to DATE  between the two, inclusive
//	-N            within the last N days
//
// DATE is YYYY-MM-DD with optional HH:MM[:SS], YYYY-MM, or a Unix timestamp.
func ParseDateSpec(spec string, now time.Time, loc *time.Location) (DateMatcher, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("dates cannot consist entirely of whitespace")
	}
	if loc == nil {
		loc = time.Local
	}

	switch {
	case spec[0] == '<':
		p, err := parsePeriod(spec[1:], loc)
		if err != nil {
			return nil, err
		}
		return func(t time.Time) bool { return t.Before(p.end) }, nil

	case spec[0] == '>':
		p, err := parsePeriod(spec[1:], loc)
		if err != nil {
			return nil, err
		}
		return func(t time.Time) bool { return !t.Before(p.start) }, nil

	case spec[0] == '-':
		days, err := strconv.Atoi(spec[1:])
		if err != nil || days < 0 {
			return nil, fmt.Errorf("invalid day spec: %q", spec)
		}
		cutoff := now.AddDate(0, 0, -days)
		return func(t time.Time) bool { return !t.Before(cutoff) }, nil
	}

	if from, to, ok := strings.Cut(spec, " to "); ok {
		start, err := parsePeriod(from, loc)
		if err != nil {
			return nil, err
		}
		end, err := parsePeriod(to, loc)
		if err != nil {
			return nil, err
		}
		return func(t time.Time) bool { return !t.Before(start.start) && t.Before(end.end) }, nil
	}

	p, err := parsePeriod(spec, loc)
	if err != nil {
		return nil, err
	}
	return func(t time.Time) bool { return !t.Before(p.start) && t.Before(p.end) }, nil
}
