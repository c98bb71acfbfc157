package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

var ErrInvalidPeriod = errors.New("invalid period")

var periodPattern = regexp.MustCompile(`(?i)^\s*(\d{1,3})\s*(day|week|month|year)s?\s*$`)

// Period is a package tier duration such as "3 Months".
type Period struct {
	Count int
	Unit  string // day, week, month or year
}

// ParsePeriod parses "<n> <Day|Week|Month|Year>[s]". The console also sends
// the compact "3MONTHS" form, which is accepted.
func ParsePeriod(s string) (Period, error) {
	m := periodPattern.FindStringSubmatch(s)
	if m == nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	count, err := strconv.Atoi(m[1])
	if err != nil || count <= 0 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return Period{Count: count, Unit: strings.ToLower(m[2])}, nil
}

// String renders the canonical form, e.g. "3 Months".
func (p Period) String() string {
	unit := strings.ToUpper(p.Unit[:1]) + p.Unit[1:]
	if p.Count != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", p.Count, unit)
}

// AddTo returns the instant the period ends when started at start. The end is
// pushed to the end of that day.
func (p Period) AddTo(start time.Time) time.Time {
	var end time.Time
	switch p.Unit {
	case "day":
		end = start.AddDate(0, 0, p.Count)
	case "week":
		end = start.AddDate(0, 0, 7*p.Count)
	case "month":
		end = start.AddDate(0, p.Count, 0)
	default:
		end = start.AddDate(p.Count, 0, 0)
	}
	return now.With(end).EndOfDay()
}

// NormalizePeriod returns the canonical rendering of s, or s unchanged when
// it is empty.
func NormalizePeriod(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	p, err := ParsePeriod(s)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}
