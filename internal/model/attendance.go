package model

import (
	"time"

	"gorm.io/gorm"
)

// Attendance status values.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceHalfDay = "half_day"
)

// Attendance is the per-employee, per-day presence record. At most one row
// exists per (user, date); the unique index makes concurrent check-ins for
// the same day serialize to a single winner. CheckIn is never rewritten once
// set and CheckOut is only ever set on a row that already has a CheckIn.
type Attendance struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CompanyID uint           `json:"company_id" gorm:"index;not null"`
	UserID    uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_user_date"`
	Date      time.Time      `json:"date" gorm:"type:date;not null;uniqueIndex:idx_user_date"`
	CheckIn   *time.Time     `json:"check_in"`
	CheckOut  *time.Time     `json:"check_out"`
	Status    string         `json:"status" gorm:"type:varchar(20);not null;default:'absent'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	User   *User             `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Photos []AttendancePhoto `json:"photos,omitempty" gorm:"foreignKey:AttendanceID"`
}
