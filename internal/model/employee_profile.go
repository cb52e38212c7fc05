package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EmployeeProfile holds the HR-facing detail for a user. The Documents
// column stores uploaded document metadata as JSON, mirroring what the
// document upload flow writes.
type EmployeeProfile struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	UserID         uint             `json:"user_id" gorm:"uniqueIndex;not null"`
	CompanyID      uint             `json:"company_id" gorm:"index;not null"`
	EmployeeCode   string           `json:"employee_code" gorm:"type:varchar(50);uniqueIndex;not null"`
	DateOfBirth    *time.Time       `json:"date_of_birth,omitempty" gorm:"type:date"`
	Gender         string           `json:"gender" gorm:"type:varchar(20)"`
	EmployeePhoto  string           `json:"employee_photo" gorm:"type:varchar(500)"`
	StreetAddress  string           `json:"street_address" gorm:"type:varchar(255)"`
	City           string           `json:"city" gorm:"type:varchar(255)"`
	State          string           `json:"state" gorm:"type:varchar(255)"`
	ZipCode        string           `json:"zip_code" gorm:"type:varchar(20)"`
	Country        string           `json:"country" gorm:"type:varchar(255)"`
	Department     string           `json:"department" gorm:"type:varchar(255);not null"`
	Position       string           `json:"position" gorm:"type:varchar(255);not null"`
	Salary         *decimal.Decimal `json:"salary,omitempty" gorm:"type:decimal(12,2)"`
	JoiningDate    *time.Time       `json:"joining_date,omitempty" gorm:"type:date"`
	Status         string           `json:"status" gorm:"type:varchar(20);default:'active'"`
	Qualification  string           `json:"qualification" gorm:"type:varchar(255)"`
	Specialization string           `json:"specialization" gorm:"type:varchar(255)"`
	University     string           `json:"university" gorm:"type:varchar(255)"`
	GraduationYear *int             `json:"graduation_year,omitempty"`
	Documents      datatypes.JSON   `json:"documents,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	DeletedAt      gorm.DeletedAt   `json:"-" gorm:"index"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
