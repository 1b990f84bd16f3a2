package recurringevent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/apierror"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/auditlog"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/conflict"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/logger"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/notification"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/recurrence"
)

const (
	defaultListLimit        = 50
	maxListLimit            = 200
	defaultOccurrenceWindow = 30
)

// Service wraps business logic for recurring events.
type Service struct {
	tx                Transactor
	zones             conflict.TimezoneResolver
	AuditSvc          auditlog.Service
	notifier          *notification.Notifier
	log               logger.Logger
	maxOccurrenceDays int
}

func NewService(tx Transactor, zones conflict.TimezoneResolver, auditSvc auditlog.Service, notifier *notification.Notifier, log logger.Logger, maxOccurrenceDays int) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		tx:                tx,
		zones:             zones,
		AuditSvc:          auditSvc,
		notifier:          notifier,
		log:               log,
		maxOccurrenceDays: maxOccurrenceDays,
	}
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", apierror.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ===========================
// 🎯 Create Recurring Event
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, req *CreateRecurringEventRequest, ip string) (*RecurringEvent, error) {
	re := &RecurringEvent{
		CreatorID:   creatorID,
		Name:        req.Name,
		Description: req.Description,
		Confirmed:   req.Confirmed,
	}
	if err := applySchedule(re, req.StartDate, req.EndDate, req.StartTime, req.EndTime, req.RecurrencePattern, req.SkipDays); err != nil {
		return nil, err
	}

	err := s.tx.InTx(ctx, func(store Store, detector *conflict.Detector) error {
		if re.Confirmed {
			if err := s.validate(ctx, store, detector, re); err != nil {
				return err
			}
		}
		return store.Create(ctx, re)
	})
	if err != nil {
		s.fail(ctx, creatorID, nil, "RECURRING_EVENT_CREATED", req, ip, err)
		return nil, fmt.Errorf("create recurring event: %w", err)
	}

	s.succeed(ctx, creatorID, re, "RECURRING_EVENT_CREATED", ip)
	s.notifier.Notify(ctx, notification.RecurringEventCreated, re.ID, creatorID, re.Response())
	return re, nil
}

// ===========================
// 🔍 Get Recurring Event
func (s *Service) Get(ctx context.Context, creatorID, id uuid.UUID) (*RecurringEvent, error) {
	var re *RecurringEvent
	err := s.tx.InTx(ctx, func(store Store, _ *conflict.Detector) error {
		var err error
		re, err = owned(ctx, store, creatorID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return re, nil
}

// ===========================
// 📄 List Recurring Events
func (s *Service) List(ctx context.Context, creatorID uuid.UUID, confirmed *bool, limit, offset int) ([]RecurringEvent, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	var out []RecurringEvent
	err := s.tx.InTx(ctx, func(store Store, _ *conflict.Detector) error {
		var err error
		out, err = store.List(ctx, creatorID, confirmed, limit, offset)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list recurring events: %w", err)
	}
	return out, nil
}

// ===========================
// 🛠 Update Recurring Event
func (s *Service) Update(ctx context.Context, creatorID, id uuid.UUID, req *UpdateRecurringEventRequest, ip string) (*RecurringEvent, error) {
	var re *RecurringEvent
	err := s.tx.InTx(ctx, func(store Store, detector *conflict.Detector) error {
		var err error
		if err = store.LockCreator(ctx, creatorID); err != nil {
			return err
		}
		if re, err = owned(ctx, store, creatorID, id); err != nil {
			return err
		}

		if req.Name != nil {
			re.Name = *req.Name
		}
		if req.Description != nil {
			re.Description = *req.Description
		}

		startDate := pick(req.StartDate, recurrence.FormatDate(re.StartDate))
		var endStr *string
		if d, ok := re.EndDate.Date(); ok {
			current := recurrence.FormatDate(d)
			endStr = &current
		}
		if req.EndDate != nil {
			endStr = req.EndDate
		}
		if req.ClearEndDate {
			endStr = nil
		}
		scheduleChanged := req.StartDate != nil || req.EndDate != nil || req.ClearEndDate ||
			req.StartTime != nil || req.EndTime != nil || req.RecurrencePattern != nil

		err = applySchedule(re, startDate, endStr,
			pick(req.StartTime, re.StartTime.String()),
			pick(req.EndTime, re.EndTime.String()),
			pick(req.RecurrencePattern, re.RecurrencePattern.Source()),
			re.SkipDays)
		if err != nil {
			return err
		}

		if re.Confirmed && scheduleChanged {
			tpl, err := re.ToConflict()
			if err != nil {
				return err
			}
			if err := detector.ValidateTemplate(ctx, tpl); err != nil {
				return err
			}
		}
		return store.Update(ctx, re)
	})
	if err != nil {
		s.fail(ctx, creatorID, &id, "RECURRING_EVENT_UPDATED", req, ip, err)
		return nil, fmt.Errorf("update recurring event: %w", err)
	}

	s.succeed(ctx, creatorID, re, "RECURRING_EVENT_UPDATED", ip)
	s.notifier.Notify(ctx, notification.RecurringEventUpdated, re.ID, creatorID, re.Response())
	return re, nil
}

// ===========================
// ✅ Confirm Recurring Event
func (s *Service) Confirm(ctx context.Context, creatorID, id uuid.UUID, ip string) (*RecurringEvent, error) {
	var re *RecurringEvent
	changed := false
	err := s.tx.InTx(ctx, func(store Store, detector *conflict.Detector) error {
		var err error
		if err = store.LockCreator(ctx, creatorID); err != nil {
			return err
		}
		if re, err = owned(ctx, store, creatorID, id); err != nil {
			return err
		}
		if re.Confirmed {
			return nil
		}

		re.Confirmed = true
		tpl, err := re.ToConflict()
		if err != nil {
			return err
		}
		if err := detector.ValidateTemplate(ctx, tpl); err != nil {
			return err
		}
		changed = true
		return store.Update(ctx, re)
	})
	if err != nil {
		s.fail(ctx, creatorID, &id, "RECURRING_EVENT_CONFIRMED", nil, ip, err)
		return nil, fmt.Errorf("confirm recurring event: %w", err)
	}

	if changed {
		s.succeed(ctx, creatorID, re, "RECURRING_EVENT_CONFIRMED", ip)
		s.notifier.Notify(ctx, notification.RecurringEventConfirmed, re.ID, creatorID, re.Response())
	}
	return re, nil
}

// ===========================
// ❌ Delete Recurring Event
func (s *Service) Delete(ctx context.Context, creatorID, id uuid.UUID, ip string) error {
	err := s.tx.InTx(ctx, func(store Store, _ *conflict.Detector) error {
		if _, err := owned(ctx, store, creatorID, id); err != nil {
			return err
		}
		return store.Delete(ctx, id)
	})
	if err != nil {
		s.fail(ctx, creatorID, &id, "RECURRING_EVENT_DELETED", nil, ip, err)
		return fmt.Errorf("delete recurring event: %w", err)
	}

	_ = s.AuditSvc.LogAction(ctx, creatorID, &id, "RECURRING_EVENT_DELETED", nil, ip, auditlog.StatusSuccess)
	s.notifier.Notify(ctx, notification.RecurringEventDeleted, id, creatorID, map[string]string{"id": id.String()})
	return nil
}

// ===========================
// ⏭ Add Skip Days
// Skipping occurrences only frees time, so it is never checked for conflicts.
func (s *Service) AddSkipDays(ctx context.Context, creatorID, id uuid.UUID, dates []string, ip string) (*RecurringEvent, error) {
	add, err := parseDates(dates)
	if err != nil {
		return nil, err
	}

	var re *RecurringEvent
	err = s.tx.InTx(ctx, func(store Store, _ *conflict.Detector) error {
		var err error
		if re, err = owned(ctx, store, creatorID, id); err != nil {
			return err
		}
		skip, err := recurrence.ParseDateSet(re.SkipDays)
		if err != nil {
			return err
		}
		for _, d := range add.Dates() {
			skip.Add(d)
		}
		re.SkipDays = datatypes.JSONSlice[string](skip.Strings())
		return store.Update(ctx, re)
	})
	if err != nil {
		s.fail(ctx, creatorID, &id, "RECURRING_EVENT_SKIP_DAYS_ADDED", dates, ip, err)
		return nil, fmt.Errorf("add skip days: %w", err)
	}

	_ = s.AuditSvc.LogAction(ctx, creatorID, &id, "RECURRING_EVENT_SKIP_DAYS_ADDED",
		map[string]interface{}{"dates": add.Strings()}, ip, auditlog.StatusSuccess)
	s.notifier.Notify(ctx, notification.RecurringEventSkipChanged, id, creatorID, re.Response())
	return re, nil
}

// ===========================
// ↩️ Remove Skip Days
// Dates that are not currently skipped are ignored. On a confirmed series the
// dates that come back must not collide with another confirmed series.
func (s *Service) RemoveSkipDays(ctx context.Context, creatorID, id uuid.UUID, dates []string, ip string) (*RecurringEvent, error) {
	requested, err := parseDates(dates)
	if err != nil {
		return nil, err
	}

	var re *RecurringEvent
	var removed recurrence.DateSet
	err = s.tx.InTx(ctx, func(store Store, detector *conflict.Detector) error {
		var err error
		if err = store.LockCreator(ctx, creatorID); err != nil {
			return err
		}
		if re, err = owned(ctx, store, creatorID, id); err != nil {
			return err
		}
		tpl, err := re.ToConflict()
		if err != nil {
			return err
		}

		removed = recurrence.NewDateSet()
		for _, d := range requested.Dates() {
			if tpl.SkipDays.Has(d) {
				removed.Add(d)
			}
		}
		if removed.Len() == 0 {
			return nil
		}

		if re.Confirmed {
			if err := detector.ValidateSkipDayRemoval(ctx, tpl, removed); err != nil {
				return err
			}
		}
		remaining := tpl.SkipDays.Clone()
		for _, d := range removed.Dates() {
			remaining.Remove(d)
		}
		re.SkipDays = datatypes.JSONSlice[string](remaining.Strings())
		return store.Update(ctx, re)
	})
	if err != nil {
		s.fail(ctx, creatorID, &id, "RECURRING_EVENT_SKIP_DAYS_REMOVED", dates, ip, err)
		return nil, fmt.Errorf("remove skip days: %w", err)
	}

	if removed.Len() > 0 {
		_ = s.AuditSvc.LogAction(ctx, creatorID, &id, "RECURRING_EVENT_SKIP_DAYS_REMOVED",
			map[string]interface{}{"dates": removed.Strings()}, ip, auditlog.StatusSuccess)
		s.notifier.Notify(ctx, notification.RecurringEventSkipChanged, id, creatorID, re.Response())
	}
	return re, nil
}

// ===========================
// 📆 Occurrences
// Occurrences lists non-skipped instances in [from, to], both inclusive civil dates.
// An empty to defaults to a month after from.
func (s *Service) Occurrences(ctx context.Context, creatorID, id uuid.UUID, from, to string) ([]Occurrence, error) {
	start, err := recurrence.ParseDate(from)
	if err != nil {
		return nil, invalidInput("invalid from date %q", from)
	}
	end := recurrence.AddDays(start, defaultOccurrenceWindow)
	if to != "" {
		if end, err = recurrence.ParseDate(to); err != nil {
			return nil, invalidInput("invalid to date %q", to)
		}
	}
	if end.Before(start) {
		return nil, invalidInput("to is before from")
	}
	if recurrence.DaysBetween(start, end) > s.maxOccurrenceDays {
		return nil, invalidInput("window is longer than %d days", s.maxOccurrenceDays)
	}

	re, err := s.Get(ctx, creatorID, id)
	if err != nil {
		return nil, err
	}
	tpl, err := re.ToConflict()
	if err != nil {
		return nil, err
	}
	loc, err := s.zones.ResolveZone(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("resolve zone: %w", err)
	}

	start = recurrence.MaxDate(start, tpl.StartDate)
	if d, ok := tpl.EndDate.Date(); ok && d.Before(end) {
		end = d
	}

	dates := recurrence.Expand(tpl.Rule, start, end, tpl.SkipDays)
	out := make([]Occurrence, 0, len(dates))
	for _, d := range dates {
		out = append(out, Occurrence{
			Date:      recurrence.FormatDate(d),
			StartTime: tpl.StartTime.On(d, loc),
			EndTime:   tpl.EndTime.On(d, loc),
		})
	}
	return out, nil
}

// ===========================
// 🔎 Check Recurring Event
func (s *Service) Check(ctx context.Context, creatorID uuid.UUID, req *CheckRecurringEventRequest) ([]uuid.UUID, error) {
	re := &RecurringEvent{CreatorID: creatorID, Confirmed: true}
	if req.ExcludeID != nil {
		re.ID = *req.ExcludeID
	}
	if err := applySchedule(re, req.StartDate, req.EndDate, req.StartTime, req.EndTime, req.RecurrencePattern, req.SkipDays); err != nil {
		return nil, err
	}
	tpl, err := re.ToConflict()
	if err != nil {
		return nil, err
	}

	var ids conflict.IDSet
	err = s.tx.InTx(ctx, func(_ Store, detector *conflict.Detector) error {
		var err error
		ids, err = detector.TemplateConflicts(ctx, tpl)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("check recurring event: %w", err)
	}
	return ids.Sorted(), nil
}

func (s *Service) validate(ctx context.Context, store Store, detector *conflict.Detector, re *RecurringEvent) error {
	if err := store.LockCreator(ctx, re.CreatorID); err != nil {
		return err
	}
	tpl, err := re.ToConflict()
	if err != nil {
		return err
	}
	return detector.ValidateTemplate(ctx, tpl)
}

// applySchedule parses the textual schedule fields onto re.
func applySchedule(re *RecurringEvent, startDate string, endDate *string, startTime, endTime, pattern string, skipDays []string) error {
	start, err := recurrence.ParseDate(startDate)
	if err != nil {
		return invalidInput("invalid start_date %q, use YYYY-MM-DD", startDate)
	}
	end := recurrence.Unbounded()
	if endDate != nil && *endDate != "" {
		d, err := recurrence.ParseDate(*endDate)
		if err != nil {
			return invalidInput("invalid end_date %q, use YYYY-MM-DD", *endDate)
		}
		end = recurrence.Bounded(d)
	}
	if end.Before(start) {
		return invalidInput("end_date is before start_date")
	}

	from, err := recurrence.ParseTimeOfDay(startTime)
	if err != nil {
		return invalidInput("invalid start_time %q, use HH:MM", startTime)
	}
	to, err := recurrence.ParseTimeOfDay(endTime)
	if err != nil {
		return invalidInput("invalid end_time %q, use HH:MM", endTime)
	}
	if !from.Before(to) {
		return invalidInput("end_time must be after start_time")
	}

	rule, err := recurrence.ParseRule(pattern)
	if err != nil {
		return invalidInput("%v", err)
	}

	skip, err := parseDates(skipDays)
	if err != nil {
		return err
	}

	re.StartDate = start
	re.EndDate = end
	re.StartTime = from
	re.EndTime = to
	re.RecurrencePattern = rule
	re.SkipDays = datatypes.JSONSlice[string](skip.Strings())
	return nil
}

func parseDates(values []string) (recurrence.DateSet, error) {
	set, err := recurrence.ParseDateSet(values)
	if err != nil {
		return nil, invalidInput("%v", err)
	}
	return set, nil
}

func pick(v *string, fallback string) string {
	if v != nil {
		return *v
	}
	return fallback
}

// owned loads id and hides other creators' series behind ErrNotFound.
func owned(ctx context.Context, store Store, creatorID, id uuid.UUID) (*RecurringEvent, error) {
	re, err := store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if re.CreatorID != creatorID {
		return nil, apierror.ErrNotFound
	}
	return re, nil
}

func (s *Service) succeed(ctx context.Context, creatorID uuid.UUID, re *RecurringEvent, action, ip string) {
	_ = s.AuditSvc.LogAction(ctx, creatorID, &re.ID, action, map[string]interface{}{
		"name":               re.Name,
		"start_date":         recurrence.FormatDate(re.StartDate),
		"end_date":           re.EndDate.String(),
		"recurrence_pattern": re.RecurrencePattern.String(),
		"confirmed":          re.Confirmed,
	}, ip, auditlog.StatusSuccess)
}

func (s *Service) fail(ctx context.Context, creatorID uuid.UUID, target *uuid.UUID, action string, input interface{}, ip string, err error) {
	details := map[string]interface{}{"input": input, "error": err.Error()}
	if ce, ok := conflict.AsConflict(err); ok {
		details["conflicting_ids"] = ce.ConflictingIDs
		s.notifier.Notify(ctx, notification.ConflictRejected, uuid.Nil, creatorID, map[string]interface{}{
			"action":          action,
			"conflicting_ids": ce.ConflictingIDs,
		})
	} else if !errors.Is(err, apierror.ErrNotFound) && !errors.Is(err, apierror.ErrInvalidInput) && !errors.Is(err, conflict.ErrInvalidArgument) {
		s.log.WithContext(ctx).Error("recurring event write failed", "action", action, "creator_id", creatorID, "error", err)
	}
	_ = s.AuditSvc.LogAction(ctx, creatorID, target, action, details, ip, auditlog.StatusFailure)
}
