package event

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/apierror"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/auditlog"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/conflict"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/notification"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/recurrence"
)

type memStore struct {
	events map[uuid.UUID]*Event
	locks  int
}

func newMemStore(events ...*Event) *memStore {
	s := &memStore{events: map[uuid.UUID]*Event{}}
	for _, e := range events {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		s.events[e.ID] = e
	}
	return s
}

func (s *memStore) Create(ctx context.Context, e *Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) List(ctx context.Context, creatorID uuid.UUID, f ListFilter) ([]Event, error) {
	var out []Event
	for _, e := range s.events {
		if e.CreatorID == creatorID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *memStore) Update(ctx context.Context, e *Event) error {
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *memStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.events[id]; !ok {
		return apierror.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *memStore) LockCreator(ctx context.Context, creatorID uuid.UUID) error {
	s.locks++
	return nil
}

func (s *memStore) FindOverlappingEvents(ctx context.Context, creatorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]conflict.Event, error) {
	var out []conflict.Event
	for _, e := range s.events {
		if !e.Confirmed || e.CreatorID != creatorID || e.ID == excludeID {
			continue
		}
		if e.StartTime.Before(end) && e.EndTime.After(start) {
			out = append(out, e.ToConflict())
		}
	}
	return out, nil
}

// memTemplates filters like the recurring-event repository.
type memTemplates []conflict.Template

func (m memTemplates) FindTemplatesForSingleDayCheck(ctx context.Context, creatorID uuid.UUID, date time.Time, startTime, endTime recurrence.TimeOfDay) ([]conflict.Template, error) {
	var out []conflict.Template
	for _, t := range m {
		if t.CreatorID == creatorID && t.EndDate.Contains(t.StartDate, date) && t.StartTime < endTime && t.EndTime > startTime {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m memTemplates) FindTemplatesInDateRange(ctx context.Context, creatorID uuid.UUID, startDate, endDate time.Time) ([]conflict.Template, error) {
	var out []conflict.Template
	for _, t := range m {
		if t.CreatorID == creatorID && !t.StartDate.After(endDate) && !t.EndDate.Before(startDate) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m memTemplates) FindOverlappingTemplates(ctx context.Context, creatorID uuid.UUID, endTime, startTime recurrence.TimeOfDay, startDate time.Time, endDate recurrence.EndDate) ([]conflict.Template, error) {
	return nil, nil
}

type utcZones struct{}

func (utcZones) ResolveZone(ctx context.Context, id uuid.UUID) (*time.Location, error) {
	return time.UTC, nil
}

type memTx struct {
	store     *memStore
	templates memTemplates
}

func (m *memTx) InTx(ctx context.Context, fn func(store Store, detector *conflict.Detector) error) error {
	return fn(m.store, conflict.NewDetector(m.store, m.templates, utcZones{}, conflict.Config{}, nil))
}

type auditRecorder struct {
	entries []string
}

func (a *auditRecorder) LogAction(ctx context.Context, userID uuid.UUID, targetID *uuid.UUID, action string, details map[string]interface{}, ip, status string) error {
	a.entries = append(a.entries, action+":"+status)
	return nil
}

func (a *auditRecorder) GetAuditLogs(ctx context.Context, filter auditlog.Filter) (*auditlog.PaginatedAuditLogs, error) {
	return &auditlog.PaginatedAuditLogs{}, nil
}

type pubRecorder struct {
	types []string
}

func (p *pubRecorder) Publish(ctx context.Context, msg *notification.Message) error {
	p.types = append(p.types, msg.Type)
	return nil
}

func (p *pubRecorder) Close() error { return nil }

type fixture struct {
	svc   *Service
	store *memStore
	audit *auditRecorder
	pub   *pubRecorder
}

func newFixture(templates memTemplates, events ...*Event) *fixture {
	store := newMemStore(events...)
	audit := &auditRecorder{}
	pub := &pubRecorder{}
	svc := NewService(&memTx{store: store, templates: templates}, audit, notification.NewNotifier(pub, nil), nil)
	return &fixture{svc: svc, store: store, audit: audit, pub: pub}
}
