package recurrence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a local wall-clock time within a day, stored as the offset from midnight.
type TimeOfDay time.Duration

const (
	day = 24 * time.Hour

	// StartOfDay is 00:00.
	StartOfDay TimeOfDay = 0
	// EndOfDay is the last representable instant of a day, 23:59:59.999999999.
	EndOfDay TimeOfDay = TimeOfDay(day - time.Nanosecond)
)

// NewTimeOfDay builds a TimeOfDay from clock components.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second)
}

// TimeOfDayOf returns the wall-clock time of t in its own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return NewTimeOfDay(h, m, s) + TimeOfDay(t.Nanosecond())
}

// ParseTimeOfDay accepts "15:04", "15:04:05" and fractional-second forms.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05", "15:04:05.999999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q, use HH:MM or HH:MM:SS", s)
}

func (t TimeOfDay) Hour() int   { return int(time.Duration(t) / time.Hour) }
func (t TimeOfDay) Minute() int { return int(time.Duration(t) % time.Hour / time.Minute) }
func (t TimeOfDay) Second() int { return int(time.Duration(t) % time.Minute / time.Second) }

func (t TimeOfDay) Before(o TimeOfDay) bool { return t < o }
func (t TimeOfDay) After(o TimeOfDay) bool  { return t > o }

// On places the wall-clock time on the given date in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	ns := int(time.Duration(t) % time.Second)
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), ns, loc)
}

// String renders HH:MM, or HH:MM:SS when seconds are present.
func (t TimeOfDay) String() string {
	if t.Second() == 0 && time.Duration(t)%time.Second == 0 {
		return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// Value stores the time with microsecond precision, matching Postgres TIME.
func (t TimeOfDay) Value() (driver.Value, error) {
	micros := (time.Duration(t) % time.Second) / time.Microsecond
	return fmt.Sprintf("%02d:%02d:%02d.%06d", t.Hour(), t.Minute(), t.Second(), micros), nil
}

func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = 0
		return nil
	case time.Time:
		*t = TimeOfDayOf(v)
		return nil
	case []byte:
		return t.Scan(string(v))
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// GormDataType tells gorm which column type to migrate.
func (TimeOfDay) GormDataType() string {
	return "time"
}

// RangesOverlapClosed reports whether [s1, e1] and [s2, e2] share at least one instant.
// Touching boundaries count as overlap.
func RangesOverlapClosed(s1, e1, s2, e2 TimeOfDay) bool {
	return !s1.After(e2) && !e1.Before(s2)
}
