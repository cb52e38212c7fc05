package model

import (
	"time"

	"gorm.io/gorm"
)

// Company represents a tenant. Every domain row is scoped to exactly one
// company and queries never cross this boundary.
type Company struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Email       string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Phone       string         `json:"phone" gorm:"type:varchar(20)"`
	Address     string         `json:"address" gorm:"type:varchar(500)"`
	CompanySize string         `json:"company_size" gorm:"type:varchar(50)"`
	Location    string         `json:"location" gorm:"type:varchar(100)"`
	IsActive    bool           `json:"is_active" gorm:"default:false"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Users         []User                `json:"users,omitempty" gorm:"foreignKey:CompanyID"`
	Subscriptions []CompanySubscription `json:"subscriptions,omitempty" gorm:"foreignKey:CompanyID"`
}
