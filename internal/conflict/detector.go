package conflict

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/logger"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/recurrence"
)

// DefaultMaxWindowDays bounds template-vs-template expansion. Two templates whose
// first shared occurrence lies further than this past the start of their common
// range are not reported; both-unbounded pairs are decided without expansion.
const DefaultMaxWindowDays = 31

// Config tunes the detector.
type Config struct {
	MaxWindowDays int
}

// Detector checks candidate events and templates against a creator's confirmed
// commitments. It only reads from its stores; callers run it inside the
// transaction that will persist the candidate.
type Detector struct {
	events    EventStore
	templates TemplateStore
	zones     TimezoneResolver
	cfg       Config
	log       logger.Logger
}

// NewDetector wires a detector. A zero MaxWindowDays falls back to DefaultMaxWindowDays.
func NewDetector(events EventStore, templates TemplateStore, zones TimezoneResolver, cfg Config, log logger.Logger) *Detector {
	if cfg.MaxWindowDays <= 0 {
		cfg.MaxWindowDays = DefaultMaxWindowDays
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Detector{
		events:    events,
		templates: templates,
		zones:     zones,
		cfg:       cfg,
		log:       log,
	}
}

// ValidateEvent fails with *ConflictError when ev overlaps a confirmed event or a
// confirmed template occurrence of the same creator.
func (d *Detector) ValidateEvent(ctx context.Context, ev Event) error {
	ids, err := d.EventConflicts(ctx, ev)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		d.log.WithContext(ctx).Debug("event rejected", "creator_id", ev.CreatorID, "conflicts", len(ids))
		return &ConflictError{Event: &ev, ConflictingIDs: ids.Sorted()}
	}
	return nil
}

// EventConflicts returns every existing event and template that overlaps ev.
func (d *Detector) EventConflicts(ctx context.Context, ev Event) (IDSet, error) {
	if ev.CreatorID == uuid.Nil {
		return nil, invalid("event has no creator")
	}
	if ev.Start.IsZero() || ev.End.IsZero() {
		return nil, invalid("event start and end are required")
	}
	if ev.End.Before(ev.Start) {
		return nil, invalid("event ends before it starts")
	}

	conflicts := IDSet{}

	existing, err := d.events.FindOverlappingEvents(ctx, ev.CreatorID, ev.Start, ev.End, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("find overlapping events: %w", err)
	}
	for _, e := range existing {
		if ev.ID != uuid.Nil && e.ID == ev.ID {
			continue
		}
		// Half-open: an event ending exactly when the candidate starts does not overlap.
		if e.Start.Before(ev.End) && e.End.After(ev.Start) {
			conflicts.Add(e.ID)
		}
	}

	loc, err := d.zones.ResolveZone(ctx, ev.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("resolve zone for %s: %w", ev.CreatorID, err)
	}
	localStart, localEnd := ev.Start.In(loc), ev.End.In(loc)
	startDate, endDate := recurrence.DateOf(localStart), recurrence.DateOf(localEnd)
	startTime, endTime := recurrence.TimeOfDayOf(localStart), recurrence.TimeOfDayOf(localEnd)

	if startDate.Equal(endDate) {
		err = d.singleDayConflicts(ctx, ev.CreatorID, startDate, startTime, endTime, conflicts)
	} else {
		err = d.multiDayConflicts(ctx, ev.CreatorID, startDate, endDate, startTime, endTime, conflicts)
	}
	if err != nil {
		return nil, err
	}
	return conflicts, nil
}

func (d *Detector) singleDayConflicts(ctx context.Context, creatorID uuid.UUID, date time.Time, startTime, endTime recurrence.TimeOfDay, conflicts IDSet) error {
	templates, err := d.templates.FindTemplatesForSingleDayCheck(ctx, creatorID, date, startTime, endTime)
	if err != nil {
		return fmt.Errorf("find templates for %s: %w", recurrence.FormatDate(date), err)
	}
	for _, t := range templates {
		if !t.Confirmed {
			continue
		}
		// The template's own skip days apply: a day its owner skipped blocks nothing.
		if t.firesOn(date) {
			conflicts.Add(t.ID)
		}
	}
	return nil
}

func (d *Detector) multiDayConflicts(ctx context.Context, creatorID uuid.UUID, startDate, endDate time.Time, startTime, endTime recurrence.TimeOfDay, conflicts IDSet) error {
	templates, err := d.templates.FindTemplatesInDateRange(ctx, creatorID, startDate, endDate)
	if err != nil {
		return fmt.Errorf("find templates between %s and %s: %w",
			recurrence.FormatDate(startDate), recurrence.FormatDate(endDate), err)
	}
	for _, t := range templates {
		if !t.Confirmed {
			continue
		}
		// Only days inside both ranges can collide.
		first := recurrence.MaxDate(startDate, recurrence.DateOf(t.StartDate))
		last := endDate
		if t.EndDate.Before(last) {
			last, _ = t.EndDate.Date()
		}
		// The first firing interior day always collides, so the walk stops there.
		// Runs of non-firing days are bounded by the week plus the skip days.
		for day := first; !day.After(last); day = recurrence.AddDays(day, 1) {
			if !t.firesOn(day) {
				continue
			}
			from, to := recurrence.StartOfDay, recurrence.EndOfDay
			if day.Equal(startDate) {
				from = startTime
			}
			if day.Equal(endDate) {
				to = endTime
			}
			// Closed interval: touching the template's window on a boundary day counts.
			if recurrence.RangesOverlapClosed(from, to, t.StartTime, t.EndTime) {
				conflicts.Add(t.ID)
				break
			}
		}
	}
	return nil
}

func validateTemplate(t Template) error {
	if t.CreatorID == uuid.Nil {
		return invalid("recurring event has no creator")
	}
	if t.Rule.IsZero() {
		return invalid("recurring event has no recurrence rule")
	}
	if t.StartDate.IsZero() {
		return invalid("recurring event has no start date")
	}
	if t.EndDate.Before(t.StartDate) {
		return invalid("recurring event ends before it starts")
	}
	if !t.StartTime.Before(t.EndTime) {
		return invalid("recurring event must end after it starts each day")
	}
	return nil
}

// ValidateTemplate fails with *ConflictError when t shares an occurrence with
// another confirmed template of the same creator.
func (d *Detector) ValidateTemplate(ctx context.Context, t Template) error {
	ids, err := d.TemplateConflicts(ctx, t)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		d.log.WithContext(ctx).Debug("recurring event rejected", "creator_id", t.CreatorID, "conflicts", len(ids))
		return &ConflictError{Template: &t, ConflictingIDs: ids.Sorted()}
	}
	return nil
}

// TemplateConflicts returns the confirmed templates that share an occurrence with t.
func (d *Detector) TemplateConflicts(ctx context.Context, t Template) (IDSet, error) {
	if err := validateTemplate(t); err != nil {
		return nil, err
	}

	candidates, err := d.overlapCandidates(ctx, t)
	if err != nil {
		return nil, err
	}

	conflicts := IDSet{}
	for _, other := range candidates {
		// Two unbounded weekly rules that share a weekday collide eventually.
		if t.EndDate.IsUnbounded() && other.EndDate.IsUnbounded() {
			if t.Rule.SharesWeekday(other.Rule) {
				conflicts.Add(other.ID)
			}
			continue
		}
		if !t.Rule.SharesWeekday(other.Rule) {
			continue
		}

		overlapStart := recurrence.MaxDate(recurrence.DateOf(t.StartDate), recurrence.DateOf(other.StartDate))
		overlapEnd := recurrence.MinEnd(t.EndDate, other.EndDate)
		if overlapEnd.Before(overlapStart) {
			continue
		}

		windowEnd := recurrence.AddDays(overlapStart, d.cfg.MaxWindowDays)
		if days, bounded := overlapEnd.DaysAfter(overlapStart); bounded && days <= d.cfg.MaxWindowDays {
			windowEnd, _ = overlapEnd.Date()
		}

		mine := recurrence.Expand(t.Rule, overlapStart, windowEnd, t.SkipDays)
		theirs := recurrence.Expand(other.Rule, overlapStart, windowEnd, other.SkipDays)
		if recurrence.Intersects(mine, theirs) {
			conflicts.Add(other.ID)
		}
	}
	return conflicts, nil
}

// ValidateSkipDayRemoval fails with *ConflictError when re-enabling any of dates on t
// would land on an occurrence of another confirmed template.
func (d *Detector) ValidateSkipDayRemoval(ctx context.Context, t Template, dates recurrence.DateSet) error {
	ids, err := d.SkipDayRemovalConflicts(ctx, t, dates)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		d.log.WithContext(ctx).Debug("skip day removal rejected", "creator_id", t.CreatorID, "conflicts", len(ids))
		return &ConflictError{Template: &t, ConflictingIDs: ids.Sorted()}
	}
	return nil
}

// SkipDayRemovalConflicts returns the templates that fire on any re-enabled date of t.
func (d *Detector) SkipDayRemovalConflicts(ctx context.Context, t Template, dates recurrence.DateSet) (IDSet, error) {
	if err := validateTemplate(t); err != nil {
		return nil, err
	}
	if dates.Len() == 0 {
		return nil, invalid("no skip days to remove")
	}

	// Only dates on which t itself fires come back as occurrences.
	var reenabled []time.Time
	for _, day := range dates.Dates() {
		if t.EndDate.Contains(t.StartDate, day) && recurrence.OccursOn(t.Rule, day) {
			reenabled = append(reenabled, day)
		}
	}
	if len(reenabled) == 0 {
		return IDSet{}, nil
	}

	candidates, err := d.overlapCandidates(ctx, t)
	if err != nil {
		return nil, err
	}

	conflicts := IDSet{}
	for _, other := range candidates {
		if !t.Rule.SharesWeekday(other.Rule) {
			continue
		}
		for _, day := range reenabled {
			if other.EndDate.Contains(other.StartDate, day) && recurrence.OccursOn(other.Rule, day) {
				conflicts.Add(other.ID)
				break
			}
		}
	}
	return conflicts, nil
}

// overlapCandidates runs the coarse template query and drops drafts and t itself.
func (d *Detector) overlapCandidates(ctx context.Context, t Template) ([]Template, error) {
	found, err := d.templates.FindOverlappingTemplates(ctx, t.CreatorID, t.EndTime, t.StartTime, t.StartDate, t.EndDate)
	if err != nil {
		return nil, fmt.Errorf("find overlapping recurring events: %w", err)
	}
	out := make([]Template, 0, len(found))
	for _, other := range found {
		if !other.Confirmed {
			continue
		}
		if t.ID != uuid.Nil && other.ID == t.ID {
			continue
		}
		out = append(out, other)
	}
	return out, nil
}
