package recurrence

import "time"

// Expand lists every date in the inclusive window [from, to] on which the rule
// fires and which is not in skip, in ascending order. The scan is linear in
// the window length, so callers bound the window. An inverted window yields nil.
func Expand(rule Rule, from, to time.Time, skip DateSet) []time.Time {
	from, to = DateOf(from), DateOf(to)
	if to.Before(from) || rule.IsZero() {
		return nil
	}

	var out []time.Time
	for d := from; !d.After(to); d = AddDays(d, 1) {
		if rule.Fires(d.Weekday()) && !skip.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// OccursOn reports whether the rule fires on date. Skip days are not consulted:
// this answers whether the rule itself fires, not whether the occurrence was skipped.
func OccursOn(rule Rule, date time.Time) bool {
	return rule.Fires(DateOf(date).Weekday())
}

// Intersects reports whether two ascending date lists share a date.
func Intersects(a, b []time.Time) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Equal(b[j]):
			return true
		case a[i].Before(b[j]):
			i++
		default:
			j++
		}
	}
	return false
}
