package conflict

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/recurrence"
)

// Event is a single scheduled occurrence as seen by the conflict checks.
// ID is uuid.Nil until the event is persisted.
type Event struct {
	ID        uuid.UUID
	CreatorID uuid.UUID
	Start     time.Time
	End       time.Time
	Confirmed bool
}

// Template is a recurring commitment: a weekly rule fired between StartDate and
// EndDate, each occurrence running from StartTime to EndTime in the creator's zone.
// ID is uuid.Nil until the template is persisted.
type Template struct {
	ID        uuid.UUID
	CreatorID uuid.UUID
	StartDate time.Time
	EndDate   recurrence.EndDate
	StartTime recurrence.TimeOfDay
	EndTime   recurrence.TimeOfDay
	Rule      recurrence.Rule
	SkipDays  recurrence.DateSet
	Confirmed bool
}

// firesOn reports whether the template has a non-skipped occurrence on date.
func (t Template) firesOn(date time.Time) bool {
	if !t.EndDate.Contains(t.StartDate, date) {
		return false
	}
	return t.Rule.Fires(date.Weekday()) && !t.SkipDays.Has(date)
}

// EventStore reads persisted standalone events.
type EventStore interface {
	// FindOverlappingEvents returns confirmed events of the creator whose [start, end)
	// overlaps [start, end), leaving out excludeID.
	FindOverlappingEvents(ctx context.Context, creatorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]Event, error)
}

// TemplateStore reads persisted recurring templates. Every query returns confirmed
// templates only; time-of-day filters use [startTime, endTime) overlap.
type TemplateStore interface {
	// FindTemplatesForSingleDayCheck returns templates whose date range contains date
	// and whose time window overlaps [startTime, endTime).
	FindTemplatesForSingleDayCheck(ctx context.Context, creatorID uuid.UUID, date time.Time, startTime, endTime recurrence.TimeOfDay) ([]Template, error)
	// FindTemplatesInDateRange returns templates whose date range overlaps [startDate, endDate].
	FindTemplatesInDateRange(ctx context.Context, creatorID uuid.UUID, startDate, endDate time.Time) ([]Template, error)
	// FindOverlappingTemplates returns templates whose time window and date range could
	// overlap the candidate's.
	FindOverlappingTemplates(ctx context.Context, creatorID uuid.UUID, endTime, startTime recurrence.TimeOfDay, startDate time.Time, endDate recurrence.EndDate) ([]Template, error)
}

// TimezoneResolver maps a creator to the zone their wall-clock times are expressed in.
type TimezoneResolver interface {
	ResolveZone(ctx context.Context, creatorID uuid.UUID) (*time.Location, error)
}

// IDSet collects conflicting entity IDs.
type IDSet map[uuid.UUID]struct{}

func (s IDSet) Add(id uuid.UUID) {
	s[id] = struct{}{}
}

func (s IDSet) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the IDs in a stable order.
func (s IDSet) Sorted() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
