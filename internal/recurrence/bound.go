package recurrence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/mo"
)

// EndDate is the last date of a recurring template: either Bounded on a
// specific date or Unbounded (recurs forever).
type EndDate struct {
	date mo.Option[time.Time]
}

// Bounded returns an end date on d.
func Bounded(d time.Time) EndDate {
	return EndDate{date: mo.Some(DateOf(d))}
}

// Unbounded returns an end date that never arrives.
func Unbounded() EndDate {
	return EndDate{date: mo.None[time.Time]()}
}

// EndDateFromPtr maps a nullable column value onto an EndDate.
func EndDateFromPtr(d *time.Time) EndDate {
	if d == nil {
		return Unbounded()
	}
	return Bounded(*d)
}

func (e EndDate) IsUnbounded() bool {
	return e.date.IsAbsent()
}

// Date returns the bound and true, or the zero time and false when unbounded.
func (e EndDate) Date() (time.Time, bool) {
	return e.date.Get()
}

// Ptr returns the bound as a nullable value.
func (e EndDate) Ptr() *time.Time {
	d, ok := e.date.Get()
	if !ok {
		return nil
	}
	return &d
}

// Before reports whether the end date falls strictly before d. Unbounded is never before anything.
func (e EndDate) Before(d time.Time) bool {
	end, ok := e.date.Get()
	return ok && end.Before(DateOf(d))
}

// Contains reports whether d lies within [start, e].
func (e EndDate) Contains(start, d time.Time) bool {
	d = DateOf(d)
	return !d.Before(DateOf(start)) && !e.Before(d)
}

// DaysAfter returns the day count from start to the bound, and false when unbounded.
func (e EndDate) DaysAfter(start time.Time) (int, bool) {
	end, ok := e.date.Get()
	if !ok {
		return 0, false
	}
	return DaysBetween(start, end), true
}

// MinEnd returns the earlier of two end dates. Unbounded sorts after every real date.
func MinEnd(a, b EndDate) EndDate {
	ad, aok := a.date.Get()
	bd, bok := b.date.Get()
	switch {
	case !aok:
		return b
	case !bok:
		return a
	case bd.Before(ad):
		return b
	default:
		return a
	}
}

func (e EndDate) String() string {
	if d, ok := e.date.Get(); ok {
		return FormatDate(d)
	}
	return "unbounded"
}

// Value stores Unbounded as NULL.
func (e EndDate) Value() (driver.Value, error) {
	if d, ok := e.date.Get(); ok {
		return d, nil
	}
	return nil, nil
}

func (e *EndDate) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*e = Unbounded()
	case time.Time:
		*e = Bounded(v)
	case []byte:
		return e.Scan(string(v))
	case string:
		d, err := ParseDate(v)
		if err != nil {
			return err
		}
		*e = Bounded(d)
	default:
		return fmt.Errorf("cannot scan %T into EndDate", src)
	}
	return nil
}

func (EndDate) GormDataType() string {
	return "date"
}

// MarshalJSON renders a bounded date as "YYYY-MM-DD" and Unbounded as null.
func (e EndDate) MarshalJSON() ([]byte, error) {
	if d, ok := e.date.Get(); ok {
		return json.Marshal(FormatDate(d))
	}
	return []byte("null"), nil
}

func (e *EndDate) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*e = Unbounded()
		return nil
	}
	d, err := ParseDate(*s)
	if err != nil {
		return err
	}
	*e = Bounded(d)
	return nil
}
