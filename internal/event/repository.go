package event

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yohan-cs/yohan-event-planner-sub011/database"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/apierror"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/conflict"
)

// Store is everything the service needs from persistence.
type Store interface {
	conflict.EventStore
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	List(ctx context.Context, creatorID uuid.UUID, f ListFilter) ([]Event, error)
	Update(ctx context.Context, e *Event) error
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
// 🎯 Create Event
func (r *Repository) Create(ctx context.Context, e *Event) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

// ===========================
// 🔍 Get Event By ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var e Event
	err := r.DB.WithContext(ctx).First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ===========================
// 📄 List Events
func (r *Repository) List(ctx context.Context, creatorID uuid.UUID, f ListFilter) ([]Event, error) {
	var events []Event
	query := r.DB.WithContext(ctx).Where("creator_id = ?", creatorID)
	if f.From != nil {
		query = query.Where("end_time > ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("start_time < ?", *f.To)
	}
	if f.Confirmed != nil {
		query = query.Where("confirmed = ?", *f.Confirmed)
	}
	err := query.Order("start_time ASC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&events).Error
	return events, err
}

// ===========================
// 🛠 Update Event
func (r *Repository) Update(ctx context.Context, e *Event) error {
	return r.DB.WithContext(ctx).Save(e).Error
}

// ===========================
// ❌ Delete Event
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&Event{}, "id = ?", id)
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

// FindOverlappingEvents returns the creator's confirmed events overlapping [start, end).
func (r *Repository) FindOverlappingEvents(ctx context.Context, creatorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]conflict.Event, error) {
	var rows []Event
	query := r.DB.WithContext(ctx).
		Where("creator_id = ? AND confirmed = TRUE", creatorID).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]conflict.Event, len(rows))
	for i := range rows {
		out[i] = rows[i].ToConflict()
	}
	return out, nil
}

// DeleteStaleDrafts removes unconfirmed events last touched before cutoff.
func (r *Repository) DeleteStaleDrafts(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("confirmed = FALSE AND updated_at < ?", cutoff).
		Delete(&Event{})
	return res.RowsAffected, res.Error
}

// ListConfirmed returns every confirmed event of the creator, oldest first.
func (r *Repository) ListConfirmed(ctx context.Context, creatorID uuid.UUID) ([]Event, error) {
	var out []Event
	err := r.DB.WithContext(ctx).
		Where("creator_id = ? AND confirmed = TRUE", creatorID).
		Order("start_time ASC").
		Find(&out).Error
	return out, err
}
