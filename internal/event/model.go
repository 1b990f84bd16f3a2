package event

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/conflict"
)

// ============================
// 🔷 GORM Event Model
// Drafts (Confirmed=false) are never checked for conflicts and never block others.
type Event struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID   uuid.UUID `gorm:"type:uuid;not null;index:idx_events_creator_start" json:"creator_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	StartTime   time.Time `gorm:"not null;index:idx_events_creator_start" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	Confirmed   bool      `gorm:"not null;default:false;index" json:"confirmed"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// ToConflict projects the row onto what the conflict checks read.
func (e *Event) ToConflict() conflict.Event {
	return conflict.Event{
		ID:        e.ID,
		CreatorID: e.CreatorID,
		Start:     e.StartTime,
		End:       e.EndTime,
		Confirmed: e.Confirmed,
	}
}

// ============================
// 🟡 Create Event Request
type CreateEventRequest struct {
	Name        string    `json:"name" binding:"required,max=255"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Confirmed   bool      `json:"confirmed"`
}

// ============================
// 🟠 Update Event Request (nil fields are left unchanged)
type UpdateEventRequest struct {
	Name        *string    `json:"name,omitempty" binding:"omitempty,max=255"`
	Description *string    `json:"description,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

// ============================
// 🔎 Dry-run conflict check
type CheckEventRequest struct {
	StartTime time.Time  `json:"start_time" binding:"required"`
	EndTime   time.Time  `json:"end_time" binding:"required"`
	ExcludeID *uuid.UUID `json:"exclude_id,omitempty"`
}

type CheckResponse struct {
	Conflicts      bool        `json:"conflicts"`
	ConflictingIDs []uuid.UUID `json:"conflicting_ids"`
}

// ListFilter selects a creator's events overlapping [From, To).
type ListFilter struct {
	From      *time.Time
	To        *time.Time
	Confirmed *bool
	Limit     int
	Offset    int
}
