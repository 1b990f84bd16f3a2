package recurrence

import (
	"sort"
	"time"
)

// DateLayout is the wire and storage format for civil dates.
const DateLayout = "2006-01-02"

// DateOf returns the calendar date of t (in t's own location) as midnight UTC.
// All dates handled by this package use that normalized form so they compare
// with == and Equal regardless of the zone they came from.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDate builds a normalized civil date.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a normalized date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// AddDays moves a normalized date by n calendar days.
func AddDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// MaxDate returns the later of two dates.
func MaxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// DateSet is a set of civil dates keyed by their YYYY-MM-DD form.
type DateSet map[string]struct{}

// NewDateSet builds a set from the given dates.
func NewDateSet(dates ...time.Time) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

// ParseDateSet builds a set from YYYY-MM-DD strings.
func ParseDateSet(values []string) (DateSet, error) {
	s := make(DateSet, len(values))
	for _, v := range values {
		d, err := ParseDate(v)
		if err != nil {
			return nil, err
		}
		s.Add(d)
	}
	return s, nil
}

func (s DateSet) Add(d time.Time) {
	s[FormatDate(DateOf(d))] = struct{}{}
}

func (s DateSet) Remove(d time.Time) {
	delete(s, FormatDate(DateOf(d)))
}

// Has reports whether d is in the set. A nil set contains nothing.
func (s DateSet) Has(d time.Time) bool {
	if s == nil {
		return false
	}
	_, ok := s[FormatDate(DateOf(d))]
	return ok
}

func (s DateSet) Len() int {
	return len(s)
}

// Strings returns the members as sorted YYYY-MM-DD strings.
func (s DateSet) Strings() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Dates returns the members in ascending order.
func (s DateSet) Dates() []time.Time {
	keys := s.Strings()
	out := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		d, _ := ParseDate(k)
		out = append(out, d)
	}
	return out
}

// Clone returns an independent copy of the set.
func (s DateSet) Clone() DateSet {
	out := make(DateSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
