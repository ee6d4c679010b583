package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User staff account. Accounts are never hard-deleted.
type User struct {
	ID             string    `gorm:"primaryKey;size:36" json:"_id"`
	Username       string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	FullName       string    `gorm:"size:128;not null" json:"fullName"`
	Role           Role      `gorm:"size:32;not null;index" json:"role"`
	Section        string    `gorm:"size:64" json:"section,omitempty"`
	Grade          string    `gorm:"size:32" json:"grade,omitempty"`
	Phone          string    `gorm:"size:32" json:"phone,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns an id unless an imported record already carries one
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
