package user

import (
	"time"

	"github.com/google/uuid"
)

// ============================
// 🔷 GORM User Model
// Accounts are provisioned elsewhere; this service only reads and updates the zone.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(64);uniqueIndex" json:"username"`
	Timezone  string    `gorm:"type:varchar(64);not null;default:'UTC'" json:"timezone"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// ============================
// 🟡 Update Timezone Request
type UpdateTimezoneRequest struct {
	Timezone string `json:"timezone" binding:"required"`
}
