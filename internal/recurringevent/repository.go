package recurringevent

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yohan-cs/yohan-event-planner-sub011/database"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/apierror"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/conflict"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/recurrence"
)

// Store is everything the service needs from persistence.
type Store interface {
	conflict.TemplateStore
	Create(ctx context.Context, r *RecurringEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*RecurringEvent, error)
	List(ctx context.Context, creatorID uuid.UUID, confirmed *bool, limit, offset int) ([]RecurringEvent, error)
	Update(ctx context.Context, r *RecurringEvent) error
	Delete(ctx context.Context, id uuid.UUID) error
	LockCreator(ctx context.Context, creatorID uuid.UUID) error
}

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 🎯 Create Recurring Event
func (r *Repository) Create(ctx context.Context, re *RecurringEvent) error {
	return r.DB.WithContext(ctx).Create(re).Error
}

// ===========================
// 🔍 Get Recurring Event By ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*RecurringEvent, error) {
	var re RecurringEvent
	err := r.DB.WithContext(ctx).First(&re, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &re, nil
}

// ===========================
// 📄 List Recurring Events
func (r *Repository) List(ctx context.Context, creatorID uuid.UUID, confirmed *bool, limit, offset int) ([]RecurringEvent, error) {
	var out []RecurringEvent
	query := r.DB.WithContext(ctx).Where("creator_id = ?", creatorID)
	if confirmed != nil {
		query = query.Where("confirmed = ?", *confirmed)
	}
	err := query.Order("start_date ASC, start_time ASC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, err
}

// ===========================
// 🛠 Update Recurring Event
func (r *Repository) Update(ctx context.Context, re *RecurringEvent) error {
	return r.DB.WithContext(ctx).Save(re).Error
}

// ===========================
// ❌ Delete Recurring Event
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&RecurringEvent{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apierror.ErrNotFound
	}
	return nil
}

// LockCreator holds the creator's schedule lock for the rest of the transaction.
func (r *Repository) LockCreator(ctx context.Context, creatorID uuid.UUID) error {
	return database.LockOwner(ctx, r.DB, creatorID)
}

// DeleteStaleDrafts removes unconfirmed recurring events last touched before cutoff.
func (r *Repository) DeleteStaleDrafts(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("confirmed = FALSE AND updated_at < ?", cutoff).
		Delete(&RecurringEvent{})
	return res.RowsAffected, res.Error
}

// ListConfirmed returns every confirmed recurring event of the creator.
func (r *Repository) ListConfirmed(ctx context.Context, creatorID uuid.UUID) ([]RecurringEvent, error) {
	var out []RecurringEvent
	err := r.DB.WithContext(ctx).
		Where("creator_id = ? AND confirmed = TRUE", creatorID).
		Order("start_date ASC").
		Find(&out).Error
	return out, err
}

// confirmedOf scopes a query to the creator's confirmed recurring events.
func (r *Repository) confirmedOf(ctx context.Context, creatorID uuid.UUID) *gorm.DB {
	return r.DB.WithContext(ctx).Where("creator_id = ? AND confirmed = TRUE", creatorID)
}

// FindTemplatesForSingleDayCheck returns series active on date whose window overlaps [startTime, endTime).
func (r *Repository) FindTemplatesForSingleDayCheck(ctx context.Context, creatorID uuid.UUID, date time.Time, startTime, endTime recurrence.TimeOfDay) ([]conflict.Template, error) {
	day := recurrence.FormatDate(date)
	var rows []RecurringEvent
	err := r.confirmedOf(ctx, creatorID).
		Where("start_date <= ? AND (end_date IS NULL OR end_date >= ?)", day, day).
		Where("start_time < ? AND end_time > ?", endTime, startTime).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toTemplates(rows)
}

// FindTemplatesInDateRange returns series whose date range overlaps [startDate, endDate].
func (r *Repository) FindTemplatesInDateRange(ctx context.Context, creatorID uuid.UUID, startDate, endDate time.Time) ([]conflict.Template, error) {
	var rows []RecurringEvent
	err := r.confirmedOf(ctx, creatorID).
		Where("start_date <= ?", recurrence.FormatDate(endDate)).
		Where("(end_date IS NULL OR end_date >= ?)", recurrence.FormatDate(startDate)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toTemplates(rows)
}

// FindOverlappingTemplates returns series whose daily window overlaps [startTime, endTime)
// and whose date range overlaps the candidate's.
func (r *Repository) FindOverlappingTemplates(ctx context.Context, creatorID uuid.UUID, endTime, startTime recurrence.TimeOfDay, startDate time.Time, endDate recurrence.EndDate) ([]conflict.Template, error) {
	query := r.confirmedOf(ctx, creatorID).
		Where("start_time < ? AND end_time > ?", endTime, startTime).
		Where("(end_date IS NULL OR end_date >= ?)", recurrence.FormatDate(startDate))
	if d, ok := endDate.Date(); ok {
		query = query.Where("start_date <= ?", recurrence.FormatDate(d))
	}

	var rows []RecurringEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toTemplates(rows)
}

func toTemplates(rows []RecurringEvent) ([]conflict.Template, error) {
	out := make([]conflict.Template, 0, len(rows))
	for i := range rows {
		t, err := rows[i].ToConflict()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
