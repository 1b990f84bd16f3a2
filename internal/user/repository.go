package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/apierror"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// UpsertTimezone creates the row on first use so callers never need a separate signup step here.
	UpsertTimezone(ctx context.Context, id uuid.UUID, zone string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) UpsertTimezone(ctx context.Context, id uuid.UUID, zone string) error {
	u := User{ID: id, Username: id.String(), Timezone: zone}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"timezone", "updated_at"}),
	}).Create(&u).Error
}
