package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents an authenticated account. CompanyID is nil only for the
// platform superadmin; every other user belongs to exactly one company and
// carries exactly one role.
type User struct {
	ID                     uint           `json:"id" gorm:"primaryKey"`
	Name                   string         `json:"name" gorm:"type:varchar(255);not null"`
	Email                  string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password               string         `json:"-" gorm:"type:varchar(255);not null"`
	Phone                  string         `json:"phone" gorm:"type:varchar(20)"`
	EmployeeCode           string         `json:"employee_code" gorm:"type:varchar(50)"`
	CompanyID              *uint          `json:"company_id,omitempty" gorm:"index"`
	RoleID                 uint           `json:"role_id" gorm:"index;not null"`
	IsActive               bool           `json:"is_active" gorm:"default:true"`
	EmailVerifiedAt        *time.Time     `json:"email_verified_at,omitempty"`
	EmailVerificationToken *string        `json:"-" gorm:"type:varchar(100);index"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
	DeletedAt              gorm.DeletedAt `json:"-" gorm:"index"`

	Role    Role     `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}
