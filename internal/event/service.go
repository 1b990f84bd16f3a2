package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/apierror"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/auditlog"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/conflict"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/logger"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/notification"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service wraps business logic for standalone events.
type Service struct {
	tx       Transactor
	AuditSvc auditlog.Service
	notifier *notification.Notifier
	log      logger.Logger
}

func NewService(tx Transactor, auditSvc auditlog.Service, notifier *notification.Notifier, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{tx: tx, AuditSvc: auditSvc, notifier: notifier, log: log}
}

// ===========================
// 🎯 Create Event
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, req *CreateEventRequest, ip string) (*Event, error) {
	ev := &Event{
		CreatorID:   creatorID,
		Name:        req.Name,
		Description: req.Description,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		Confirmed:   req.Confirmed,
	}
	if err := checkTimes(ev); err != nil {
		return nil, err
	}

	err := s.tx.InTx(ctx, func(store Store, detector *conflict.Detector) error {
		if ev.Confirmed {
			if err := store.LockCreator(ctx, creatorID); err != nil {
				return err
			}
			if err := detector.ValidateEvent(ctx, ev.ToConflict()); err != nil {
				return err
			}
		}
		return store.Create(ctx, ev)
	})
	if err != nil {
		s.fail(ctx, creatorID, nil, "EVENT_CREATED", ev, ip, err)
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.succeed(ctx, creatorID, ev, "EVENT_CREATED", ip)
	s.notifier.Notify(ctx, notification.EventCreated, ev.ID, creatorID, ev)
	return ev, nil
}

// ===========================
// 🔍 Get Event
func (s *Service) Get(ctx context.Context, creatorID, id uuid.UUID) (*Event, error) {
	var ev *Event
	err := s.tx.InTx(ctx, func(store Store, _ *conflict.Detector) error {
		var err error
		ev, err = owned(ctx, store, creatorID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// ===========================
// 📄 List Events
func (s *Service) List(ctx context.Context, creatorID uuid.UUID, f ListFilter) ([]Event, error) {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, fmt.Errorf("%w: to is before from", apierror.ErrInvalidInput)
	}

	var events []Event
	err := s.tx.InTx(ctx, func(store Store, _ *conflict.Detector) error {
		var err error
		events, err = store.List(ctx, creatorID, f)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ===========================
// 🛠 Update Event
func (s *Service) Update(ctx context.Context, creatorID, id uuid.UUID, req *UpdateEventRequest, ip string) (*Event, error) {
	var ev *Event
	err := s.tx.InTx(ctx, func(store Store, detector *conflict.Detector) error {
		var err error
		if err = store.LockCreator(ctx, creatorID); err != nil {
			return err
		}
		if ev, err = owned(ctx, store, creatorID, id); err != nil {
			return err
		}

		if req.Name != nil {
			ev.Name = *req.Name
		}
		if req.Description != nil {
			ev.Description = *req.Description
		}
		if req.StartTime != nil {
			ev.StartTime = req.StartTime.UTC()
		}
		if req.EndTime != nil {
			ev.EndTime = req.EndTime.UTC()
		}
		if err := checkTimes(ev); err != nil {
			return err
		}

		if ev.Confirmed && (req.StartTime != nil || req.EndTime != nil) {
			if err := detector.ValidateEvent(ctx, ev.ToConflict()); err != nil {
				return err
			}
		}
		return store.Update(ctx, ev)
	})
	if err != nil {
		s.fail(ctx, creatorID, &id, "EVENT_UPDATED", req, ip, err)
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.succeed(ctx, creatorID, ev, "EVENT_UPDATED", ip)
	s.notifier.Notify(ctx, notification.EventUpdated, ev.ID, creatorID, ev)
	return ev, nil
}

// ===========================
// ✅ Confirm Event
// Confirming an already confirmed event is a no-op.
func (s *Service) Confirm(ctx context.Context, creatorID, id uuid.UUID, ip string) (*Event, error) {
	var ev *Event
	changed := false
	err := s.tx.InTx(ctx, func(store Store, detector *conflict.Detector) error {
		var err error
		if err = store.LockCreator(ctx, creatorID); err != nil {
			return err
		}
		if ev, err = owned(ctx, store, creatorID, id); err != nil {
			return err
		}
		if ev.Confirmed {
			return nil
		}

		ev.Confirmed = true
		if err := detector.ValidateEvent(ctx, ev.ToConflict()); err != nil {
			return err
		}
		changed = true
		return store.Update(ctx, ev)
	})
	if err != nil {
		s.fail(ctx, creatorID, &id, "EVENT_CONFIRMED", nil, ip, err)
		return nil, fmt.Errorf("confirm event: %w", err)
	}

	if changed {
		s.succeed(ctx, creatorID, ev, "EVENT_CONFIRMED", ip)
		s.notifier.Notify(ctx, notification.EventConfirmed, ev.ID, creatorID, ev)
	}
	return ev, nil
}

// ===========================
// ❌ Delete Event
func (s *Service) Delete(ctx context.Context, creatorID, id uuid.UUID, ip string) error {
	err := s.tx.InTx(ctx, func(store Store, _ *conflict.Detector) error {
		if _, err := owned(ctx, store, creatorID, id); err != nil {
			return err
		}
		return store.Delete(ctx, id)
	})
	if err != nil {
		s.fail(ctx, creatorID, &id, "EVENT_DELETED", nil, ip, err)
		return fmt.Errorf("delete event: %w", err)
	}

	_ = s.AuditSvc.LogAction(ctx, creatorID, &id, "EVENT_DELETED", nil, ip, auditlog.StatusSuccess)
	s.notifier.Notify(ctx, notification.EventDeleted, id, creatorID, map[string]string{"id": id.String()})
	return nil
}

// ===========================
// 🔎 Check Event
// Check reports what a confirmed event with these times would collide with, without writing.
func (s *Service) Check(ctx context.Context, creatorID uuid.UUID, req *CheckEventRequest) ([]uuid.UUID, error) {
	candidate := conflict.Event{
		CreatorID: creatorID,
		Start:     req.StartTime.UTC(),
		End:       req.EndTime.UTC(),
		Confirmed: true,
	}
	if req.ExcludeID != nil {
		candidate.ID = *req.ExcludeID
	}

	var ids conflict.IDSet
	err := s.tx.InTx(ctx, func(_ Store, detector *conflict.Detector) error {
		var err error
		ids, err = detector.EventConflicts(ctx, candidate)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("check event: %w", err)
	}
	return ids.Sorted(), nil
}

// owned loads id and hides events of other creators behind ErrNotFound.
func owned(ctx context.Context, store Store, creatorID, id uuid.UUID) (*Event, error) {
	ev, err := store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev.CreatorID != creatorID {
		return nil, apierror.ErrNotFound
	}
	return ev, nil
}

func checkTimes(ev *Event) error {
	if ev.StartTime.IsZero() || ev.EndTime.IsZero() {
		return fmt.Errorf("%w: start_time and end_time are required", apierror.ErrInvalidInput)
	}
	if ev.EndTime.Before(ev.StartTime) {
		return fmt.Errorf("%w: end_time is before start_time", apierror.ErrInvalidInput)
	}
	return nil
}

func (s *Service) succeed(ctx context.Context, creatorID uuid.UUID, ev *Event, action, ip string) {
	_ = s.AuditSvc.LogAction(ctx, creatorID, &ev.ID, action, map[string]interface{}{
		"name":       ev.Name,
		"start_time": ev.StartTime,
		"end_time":   ev.EndTime,
		"confirmed":  ev.Confirmed,
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
		s.log.WithContext(ctx).Error("event write failed", "action", action, "creator_id", creatorID, "error", err)
	}
	_ = s.AuditSvc.LogAction(ctx, creatorID, target, action, details, ip, auditlog.StatusFailure)
}
