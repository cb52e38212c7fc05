package model

import "time"

// Evidence kinds for an attendance photo.
const (
	PhotoCheckIn  = "check_in"
	PhotoCheckOut = "check_out"
)

// AttendancePhoto binds an uploaded photo plus optional coordinates to one
// attendance event. Rows are immutable once written (no updated_at) and at
// most one row exists per (attendance, type).
type AttendancePhoto struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	AttendanceID uint      `json:"attendance_id" gorm:"not null;uniqueIndex:idx_attendance_type"`
	Type         string    `json:"type" gorm:"type:varchar(20);not null;uniqueIndex:idx_attendance_type"`
	PhotoPath    string    `json:"photo_path" gorm:"type:varchar(500);not null"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
