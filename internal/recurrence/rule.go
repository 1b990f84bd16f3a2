package recurrence

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// ErrInvalidRule is returned for patterns that cannot be expressed as a weekly rule.
var ErrInvalidRule = errors.New("invalid recurrence rule")

// mondayFirst is the canonical weekday order used for rendering.
var mondayFirst = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

var weekdayCodes = map[time.Weekday]string{
	time.Monday: "MO", time.Tuesday: "TU", time.Wednesday: "WE", time.Thursday: "TH",
	time.Friday: "FR", time.Saturday: "SA", time.Sunday: "SU",
}

var weekdayNames = map[string]time.Weekday{
	"MONDAY": time.Monday, "TUESDAY": time.Tuesday, "WEDNESDAY": time.Wednesday, "THURSDAY": time.Thursday,
	"FRIDAY": time.Friday, "SATURDAY": time.Saturday, "SUNDAY": time.Sunday,
	"MON": time.Monday, "TUE": time.Tuesday, "WED": time.Wednesday, "THU": time.Thursday,
	"FRI": time.Friday, "SAT": time.Saturday, "SUN": time.Sunday,
}

// Rule is a weekly recurrence: the set of weekdays on which a template fires.
// The zero Rule fires on no day and is rejected by validation.
type Rule struct {
	days   uint8
	source string
}

// NewRule builds a rule from weekdays. At least one weekday is required.
func NewRule(days ...time.Weekday) (Rule, error) {
	var r Rule
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			return Rule{}, fmt.Errorf("%w: weekday %d out of range", ErrInvalidRule, d)
		}
		r.days |= 1 << uint(d)
	}
	if r.days == 0 {
		return Rule{}, fmt.Errorf("%w: no weekdays", ErrInvalidRule)
	}
	return r, nil
}

// MustRule is NewRule for fixed inputs; it panics on error.
func MustRule(days ...time.Weekday) Rule {
	r, err := NewRule(days...)
	if err != nil {
		panic(err)
	}
	return r
}

// ParseRule accepts an RRULE subset ("FREQ=WEEKLY;BYDAY=MO,WE", optionally prefixed
// with "RRULE:") or the "WEEKLY:MONDAY,WEDNESDAY" form.
func ParseRule(pattern string) (Rule, error) {
	s := strings.TrimSpace(pattern)
	if s == "" {
		return Rule{}, fmt.Errorf("%w: empty pattern", ErrInvalidRule)
	}

	var (
		r   Rule
		err error
	)
	upper := strings.ToUpper(s)
	if strings.HasPrefix(upper, "RRULE:") || strings.Contains(upper, "FREQ=") {
		r, err = parseRRule(strings.TrimPrefix(upper, "RRULE:"))
	} else {
		r, err = parseWeekly(upper)
	}
	if err != nil {
		return Rule{}, err
	}
	r.source = s
	return r, nil
}

func parseRRule(s string) (Rule, error) {
	opt, err := rrule.StrToROption(s)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	if opt.Freq != rrule.WEEKLY {
		return Rule{}, fmt.Errorf("%w: only FREQ=WEEKLY is supported", ErrInvalidRule)
	}
	if opt.Interval > 1 {
		return Rule{}, fmt.Errorf("%w: INTERVAL greater than 1 is not supported", ErrInvalidRule)
	}
	if opt.Count != 0 || !opt.Until.IsZero() {
		return Rule{}, fmt.Errorf("%w: COUNT and UNTIL belong to the template end date", ErrInvalidRule)
	}

	days := make([]time.Weekday, 0, len(opt.Byweekday))
	for _, wd := range opt.Byweekday {
		if wd.N() != 0 {
			return Rule{}, fmt.Errorf("%w: ordinal weekdays are not supported", ErrInvalidRule)
		}
		// rrule-go counts Monday as 0.
		days = append(days, time.Weekday((wd.Day()+1)%7))
	}
	return NewRule(days...)
}

func parseWeekly(s string) (Rule, error) {
	freq, list, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(freq) != "WEEKLY" {
		return Rule{}, fmt.Errorf("%w: expected WEEKLY:<days>", ErrInvalidRule)
	}
	var days []time.Weekday
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		wd, known := weekdayNames[name]
		if !known {
			return Rule{}, fmt.Errorf("%w: unknown weekday %q", ErrInvalidRule, name)
		}
		days = append(days, wd)
	}
	return NewRule(days...)
}

// Fires reports whether the rule includes weekday w.
func (r Rule) Fires(w time.Weekday) bool {
	return r.days&(1<<uint(w)) != 0
}

// IsZero reports whether the rule has no weekdays.
func (r Rule) IsZero() bool {
	return r.days == 0
}

// SharesWeekday reports whether both rules fire on at least one common weekday.
func (r Rule) SharesWeekday(o Rule) bool {
	return r.days&o.days != 0
}

// Weekdays lists the rule's days, Monday first.
func (r Rule) Weekdays() []time.Weekday {
	out := make([]time.Weekday, 0, 7)
	for _, d := range mondayFirst {
		if r.Fires(d) {
			out = append(out, d)
		}
	}
	return out
}

// Source is the text the rule was parsed from, or the canonical form when built directly.
func (r Rule) Source() string {
	if r.source != "" {
		return r.source
	}
	return r.String()
}

// String renders the canonical RRULE form, e.g. FREQ=WEEKLY;BYDAY=MO,WE.
func (r Rule) String() string {
	codes := make([]string, 0, 7)
	for _, d := range r.Weekdays() {
		codes = append(codes, weekdayCodes[d])
	}
	return "FREQ=WEEKLY;BYDAY=" + strings.Join(codes, ",")
}

// ROption converts the rule into rrule-go options, e.g. for iCalendar output.
func (r Rule) ROption() rrule.ROption {
	byDay := map[time.Weekday]rrule.Weekday{
		time.Monday: rrule.MO, time.Tuesday: rrule.TU, time.Wednesday: rrule.WE, time.Thursday: rrule.TH,
		time.Friday: rrule.FR, time.Saturday: rrule.SA, time.Sunday: rrule.SU,
	}
	opt := rrule.ROption{Freq: rrule.WEEKLY}
	for _, d := range r.Weekdays() {
		opt.Byweekday = append(opt.Byweekday, byDay[d])
	}
	return opt
}

// Value stores the canonical form.
func (r Rule) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, fmt.Errorf("%w: no weekdays", ErrInvalidRule)
	}
	return r.String(), nil
}

func (r *Rule) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Rule", src)
	}
	parsed, err := ParseRule(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (Rule) GormDataType() string {
	return "varchar(128)"
}

func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Source())
}

func (r *Rule) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRule(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
