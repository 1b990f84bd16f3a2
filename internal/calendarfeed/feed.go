package calendarfeed

import (
	"context"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/conflict"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/event"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/recurrence"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/recurringevent"
)

const (
	productID   = "-//yohan-event-planner//calendar feed//EN"
	localLayout = "20060102T150405"
)

type EventLister interface {
	ListConfirmed(ctx context.Context, creatorID uuid.UUID) ([]event.Event, error)
}

type SeriesLister interface {
	ListConfirmed(ctx context.Context, creatorID uuid.UUID) ([]recurringevent.RecurringEvent, error)
}

// Feed renders a creator's confirmed schedule as an iCalendar document.
type Feed struct {
	events EventLister
	series SeriesLister
	zones  conflict.TimezoneResolver
	now    func() time.Time
}

func NewFeed(events EventLister, series SeriesLister, zones conflict.TimezoneResolver) *Feed {
	return &Feed{events: events, series: series, zones: zones, now: time.Now}
}

// Render builds the calendar for creatorID. Drafts are never included.
func (f *Feed) Render(ctx context.Context, creatorID uuid.UUID) (string, error) {
	loc, err := f.zones.ResolveZone(ctx, creatorID)
	if err != nil {
		return "", fmt.Errorf("resolve zone: %w", err)
	}
	events, err := f.events.ListConfirmed(ctx, creatorID)
	if err != nil {
		return "", fmt.Errorf("list events: %w", err)
	}
	series, err := f.series.ListConfirmed(ctx, creatorID)
	if err != nil {
		return "", fmt.Errorf("list recurring events: %w", err)
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("Event planner")
	cal.SetXWRTimezone(loc.String())

	stamp := f.now().UTC()
	for i := range events {
		addEvent(cal, &events[i], stamp)
	}
	for i := range series {
		if err := addSeries(cal, &series[i], loc, stamp); err != nil {
			return "", err
		}
	}
	return cal.Serialize(), nil
}

func addEvent(cal *ical.Calendar, ev *event.Event, stamp time.Time) {
	ve := cal.AddEvent(ev.ID.String())
	ve.SetDtStampTime(stamp)
	ve.SetStartAt(ev.StartTime)
	ve.SetEndAt(ev.EndTime)
	ve.SetSummary(ev.Name)
	if ev.Description != "" {
		ve.SetDescription(ev.Description)
	}
}

// addSeries emits one VEVENT carrying the weekly RRULE. The first instance is
// the first date on or after the start date the rule fires on.
func addSeries(cal *ical.Calendar, re *recurringevent.RecurringEvent, loc *time.Location, stamp time.Time) error {
	tpl, err := re.ToConflict()
	if err != nil {
		return err
	}
	first, ok := firstOccurrence(tpl)
	if !ok {
		return nil
	}

	ve := cal.AddEvent(re.ID.String())
	ve.SetDtStampTime(stamp)
	setLocal(ve, ical.ComponentPropertyDtStart, tpl.StartTime.On(first, loc), loc)
	setLocal(ve, ical.ComponentPropertyDtEnd, tpl.EndTime.On(first, loc), loc)
	ve.SetSummary(re.Name)
	if re.Description != "" {
		ve.SetDescription(re.Description)
	}

	opt := tpl.Rule.ROption()
	if end, bounded := tpl.EndDate.Date(); bounded {
		opt.Until = tpl.EndTime.On(end, loc).UTC()
	}
	ve.AddProperty(ical.ComponentPropertyRrule, opt.RRuleString())

	for _, d := range tpl.SkipDays.Dates() {
		if tpl.EndDate.Contains(tpl.StartDate, d) && recurrence.OccursOn(tpl.Rule, d) {
			setLocalProp(ve, ical.ComponentPropertyExdate, tpl.StartTime.On(d, loc), loc)
		}
	}
	return nil
}

func firstOccurrence(tpl conflict.Template) (time.Time, bool) {
	for i := 0; i < 7; i++ {
		d := recurrence.AddDays(tpl.StartDate, i)
		if !tpl.EndDate.Contains(tpl.StartDate, d) {
			return time.Time{}, false
		}
		if recurrence.OccursOn(tpl.Rule, d) {
			return d, true
		}
	}
	return time.Time{}, false
}

func tzid(loc *time.Location) ical.PropertyParameter {
	return &ical.KeyValues{Key: string(ical.ParameterTzid), Value: []string{loc.String()}}
}

// setLocal writes a wall-clock value with TZID, or a UTC value when the zone is UTC.
func setLocal(ve *ical.VEvent, prop ical.ComponentProperty, t time.Time, loc *time.Location) {
	if loc == time.UTC {
		ve.SetProperty(prop, t.UTC().Format(localLayout)+"Z")
		return
	}
	ve.SetProperty(prop, t.Format(localLayout), tzid(loc))
}

func setLocalProp(ve *ical.VEvent, prop ical.ComponentProperty, t time.Time, loc *time.Location) {
	if loc == time.UTC {
		ve.AddProperty(prop, t.UTC().Format(localLayout)+"Z")
		return
	}
	ve.AddProperty(prop, t.Format(localLayout), tzid(loc))
}
