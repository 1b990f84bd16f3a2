package recurringevent

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
	rows  map[uuid.UUID]*RecurringEvent
	locks int
}

func newMemStore(rows ...*RecurringEvent) *memStore {
	s := &memStore{rows: map[uuid.UUID]*RecurringEvent{}}
	for _, r := range rows {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		s.rows[r.ID] = r
	}
	return s
}

func (s *memStore) Create(ctx context.Context, r *RecurringEvent) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	cp := *r
	s.rows[r.ID] = &cp
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id uuid.UUID) (*RecurringEvent, error) {
	r, ok := s.rows[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) List(ctx context.Context, creatorID uuid.UUID, confirmed *bool, limit, offset int) ([]RecurringEvent, error) {
	var out []RecurringEvent
	for _, r := range s.rows {
		if r.CreatorID != creatorID || (confirmed != nil && r.Confirmed != *confirmed) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (s *memStore) Update(ctx context.Context, r *RecurringEvent) error {
	cp := *r
	s.rows[r.ID] = &cp
	return nil
}

func (s *memStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.rows[id]; !ok {
		return apierror.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *memStore) LockCreator(ctx context.Context, creatorID uuid.UUID) error {
	s.locks++
	return nil
}

func (s *memStore) confirmedOf(creatorID uuid.UUID, keep func(conflict.Template) bool) ([]conflict.Template, error) {
	var out []conflict.Template
	for _, r := range s.rows {
		if !r.Confirmed || r.CreatorID != creatorID {
			continue
		}
		t, err := r.ToConflict()
		if err != nil {
			return nil, err
		}
		if keep(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) FindTemplatesForSingleDayCheck(ctx context.Context, creatorID uuid.UUID, date time.Time, startTime, endTime recurrence.TimeOfDay) ([]conflict.Template, error) {
	return s.confirmedOf(creatorID, func(t conflict.Template) bool {
		return t.EndDate.Contains(t.StartDate, date) && t.StartTime < endTime && t.EndTime > startTime
	})
}

func (s *memStore) FindTemplatesInDateRange(ctx context.Context, creatorID uuid.UUID, startDate, endDate time.Time) ([]conflict.Template, error) {
	return s.confirmedOf(creatorID, func(t conflict.Template) bool {
		return !t.StartDate.After(endDate) && !t.EndDate.Before(startDate)
	})
}

func (s *memStore) FindOverlappingTemplates(ctx context.Context, creatorID uuid.UUID, endTime, startTime recurrence.TimeOfDay, startDate time.Time, endDate recurrence.EndDate) ([]conflict.Template, error) {
	return s.confirmedOf(creatorID, func(t conflict.Template) bool {
		if !(t.StartTime < endTime && t.EndTime > startTime) || t.EndDate.Before(startDate) {
			return false
		}
		d, ok := endDate.Date()
		return !ok || !t.StartDate.After(d)
	})
}

type noEvents struct{}

func (noEvents) FindOverlappingEvents(ctx context.Context, creatorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]conflict.Event, error) {
	return nil, nil
}

type fixedZone struct {
	loc *time.Location
}

func (z fixedZone) ResolveZone(ctx context.Context, id uuid.UUID) (*time.Location, error) {
	return z.loc, nil
}

type memTx struct {
	store *memStore
	zones conflict.TimezoneResolver
}

func (m *memTx) InTx(ctx context.Context, fn func(store Store, detector *conflict.Detector) error) error {
	return fn(m.store, conflict.NewDetector(noEvents{}, m.store, m.zones, conflict.Config{}, nil))
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

func newFixture(rows ...*RecurringEvent) *fixture {
	return newFixtureIn(time.UTC, rows...)
}

func newFixtureIn(loc *time.Location, rows ...*RecurringEvent) *fixture {
	store := newMemStore(rows...)
	audit := &auditRecorder{}
	pub := &pubRecorder{}
	zones := fixedZone{loc: loc}
	svc := NewService(&memTx{store: store, zones: zones}, zones, audit, notification.NewNotifier(pub, nil), nil, 366)
	return &fixture{svc: svc, store: store, audit: audit, pub: pub}
}
