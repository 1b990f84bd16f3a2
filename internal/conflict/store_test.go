package conflict

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/recurrence"
)

// memStore applies the same filters the gorm repositories push to SQL.
type memStore struct {
	events    []Event
	templates []Template
	err       error

	// leakDrafts makes queries return unconfirmed templates too, so the detector's own filter is exercised.
	leakDrafts bool

	overlapQueries int
}

func (s *memStore) FindOverlappingEvents(ctx context.Context, creatorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []Event
	for _, e := range s.events {
		if !e.Confirmed || e.CreatorID != creatorID {
			continue
		}
		if excludeID != uuid.Nil && e.ID == excludeID {
			continue
		}
		if e.Start.Before(end) && e.End.After(start) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) FindTemplatesForSingleDayCheck(ctx context.Context, creatorID uuid.UUID, date time.Time, startTime, endTime recurrence.TimeOfDay) ([]Template, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []Template
	for _, t := range s.owned(creatorID) {
		if t.EndDate.Contains(t.StartDate, date) && t.StartTime < endTime && t.EndTime > startTime {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) FindTemplatesInDateRange(ctx context.Context, creatorID uuid.UUID, startDate, endDate time.Time) ([]Template, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []Template
	for _, t := range s.owned(creatorID) {
		if !t.StartDate.After(endDate) && !t.EndDate.Before(startDate) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) FindOverlappingTemplates(ctx context.Context, creatorID uuid.UUID, endTime, startTime recurrence.TimeOfDay, startDate time.Time, endDate recurrence.EndDate) ([]Template, error) {
	s.overlapQueries++
	if s.err != nil {
		return nil, s.err
	}
	var out []Template
	for _, t := range s.owned(creatorID) {
		if !(t.StartTime < endTime && t.EndTime > startTime) {
			continue
		}
		if endDate.Before(t.StartDate) || t.EndDate.Before(startDate) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *memStore) owned(creatorID uuid.UUID) []Template {
	var out []Template
	for _, t := range s.templates {
		if (t.Confirmed || s.leakDrafts) && t.CreatorID == creatorID {
			out = append(out, t)
		}
	}
	return out
}

type fixedZone struct {
	loc *time.Location
	err error
}

func (z fixedZone) ResolveZone(ctx context.Context, creatorID uuid.UUID) (*time.Location, error) {
	return z.loc, z.err
}
