package recurringevent

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/conflict"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/recurrence"
)

// ============================
// 🔷 GORM Recurring Event Model
// Dates are civil dates and times are wall-clock times in the creator's zone.
// A NULL end_date means the series never ends.
type RecurringEvent struct {
	ID                uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID         uuid.UUID                   `gorm:"type:uuid;not null;index" json:"creator_id"`
	Name              string                      `gorm:"type:varchar(255);not null" json:"name"`
	Description       string                      `gorm:"type:text" json:"description"`
	StartDate         time.Time                   `gorm:"type:date;not null" json:"start_date"`
	EndDate           recurrence.EndDate          `gorm:"type:date" json:"end_date"`
	StartTime         recurrence.TimeOfDay        `gorm:"type:time;not null" json:"start_time"`
	EndTime           recurrence.TimeOfDay        `gorm:"type:time;not null" json:"end_time"`
	RecurrencePattern recurrence.Rule             `gorm:"type:varchar(128);not null" json:"recurrence_pattern"`
	SkipDays          datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"skip_days"`
	Confirmed         bool                        `gorm:"not null;default:false;index" json:"confirmed"`
	CreatedAt         time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *RecurringEvent) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ============================
// 📤 Recurring Event Response
type RecurringEventResponse struct {
	ID                uuid.UUID            `json:"id"`
	CreatorID         uuid.UUID            `json:"creator_id"`
	Name              string               `json:"name"`
	Description       string               `json:"description"`
	StartDate         string               `json:"start_date"`
	EndDate           recurrence.EndDate   `json:"end_date"`
	StartTime         recurrence.TimeOfDay `json:"start_time"`
	EndTime           recurrence.TimeOfDay `json:"end_time"`
	RecurrencePattern recurrence.Rule      `json:"recurrence_pattern"`
	SkipDays          []string             `json:"skip_days"`
	Confirmed         bool                 `json:"confirmed"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

func (r *RecurringEvent) Response() RecurringEventResponse {
	skip := []string(r.SkipDays)
	if skip == nil {
		skip = []string{}
	}
	return RecurringEventResponse{
		ID:                r.ID,
		CreatorID:         r.CreatorID,
		Name:              r.Name,
		Description:       r.Description,
		StartDate:         recurrence.FormatDate(r.StartDate),
		EndDate:           r.EndDate,
		StartTime:         r.StartTime,
		EndTime:           r.EndTime,
		RecurrencePattern: r.RecurrencePattern,
		SkipDays:          skip,
		Confirmed:         r.Confirmed,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// ToConflict projects the row onto what the conflict checks read.
func (r *RecurringEvent) ToConflict() (conflict.Template, error) {
	skip, err := recurrence.ParseDateSet(r.SkipDays)
	if err != nil {
		return conflict.Template{}, fmt.Errorf("recurring event %s skip days: %w", r.ID, err)
	}
	return conflict.Template{
		ID:        r.ID,
		CreatorID: r.CreatorID,
		StartDate: recurrence.DateOf(r.StartDate),
		EndDate:   r.EndDate,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Rule:      r.RecurrencePattern,
		SkipDays:  skip,
		Confirmed: r.Confirmed,
	}, nil
}

// ============================
// 🟡 Create Recurring Event Request
type CreateRecurringEventRequest struct {
	Name              string   `json:"name" binding:"required,max=255"`
	Description       string   `json:"description"`
	StartDate         string   `json:"start_date" binding:"required"` // "2006-01-02"
	EndDate           *string  `json:"end_date,omitempty"`            // omitted or null: never ends
	StartTime         string   `json:"start_time" binding:"required"` // "15:04" or "15:04:05"
	EndTime           string   `json:"end_time" binding:"required"`
	RecurrencePattern string   `json:"recurrence_pattern" binding:"required"` // "FREQ=WEEKLY;BYDAY=MO,WE" or "WEEKLY:MONDAY,WEDNESDAY"
	SkipDays          []string `json:"skip_days,omitempty"`
	Confirmed         bool     `json:"confirmed"`
}

// ============================
// 🟠 Update Recurring Event Request (nil fields are left unchanged)
type UpdateRecurringEventRequest struct {
	Name              *string `json:"name,omitempty" binding:"omitempty,max=255"`
	Description       *string `json:"description,omitempty"`
	StartDate         *string `json:"start_date,omitempty"`
	EndDate           *string `json:"end_date,omitempty"`
	ClearEndDate      bool    `json:"clear_end_date,omitempty"`
	StartTime         *string `json:"start_time,omitempty"`
	EndTime           *string `json:"end_time,omitempty"`
	RecurrencePattern *string `json:"recurrence_pattern,omitempty"`
}

// ============================
// 🗓 Skip day change
type SkipDaysRequest struct {
	Dates []string `json:"dates" binding:"required,min=1"`
}

// ============================
// 🔎 Dry-run conflict check
type CheckRecurringEventRequest struct {
	StartDate         string     `json:"start_date" binding:"required"`
	EndDate           *string    `json:"end_date,omitempty"`
	StartTime         string     `json:"start_time" binding:"required"`
	EndTime           string     `json:"end_time" binding:"required"`
	RecurrencePattern string     `json:"recurrence_pattern" binding:"required"`
	SkipDays          []string   `json:"skip_days,omitempty"`
	ExcludeID         *uuid.UUID `json:"exclude_id,omitempty"`
}

type CheckResponse struct {
	Conflicts      bool        `json:"conflicts"`
	ConflictingIDs []uuid.UUID `json:"conflicting_ids"`
}

// Occurrence is one non-skipped instance, placed in the creator's zone.
type Occurrence struct {
	Date      string    `json:"date"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
