package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact is a single entry in a user's contact book.
type Contact struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	FirstName string `gorm:"size:50;not null;index" json:"first_name"`
	LastName  string `gorm:"size:50;not null;index" json:"last_name"`
	Email     string `gorm:"not null;index" json:"email"`
	Phone     string `gorm:"size:20;not null" json:"phone"`

	// Birthday stores the date only; the time portion is ignored.
	Birthday *time.Time `json:"birthday,omitempty"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
