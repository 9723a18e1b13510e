package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminUser is a staff account allowed to manage the catalog.
type AdminUser struct {
	ID           uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	Username     string     `gorm:"size:150;not null;uniqueIndex" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

// BeforeCreate assigns an id when the caller did not.
func (u *AdminUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
