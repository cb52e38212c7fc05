package model

import "time"

// Role slugs known to the system. The slug is what authorization decisions
// are made on; the name is display-only.
const (
	RoleSuperAdmin   = "superadmin"
	RoleCompanyAdmin = "company_admin"
	RoleHR           = "hr"
	RoleEmployee     = "employee"
)

// Role is the catalog of user roles.
type Role struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Slug      string    `json:"slug" gorm:"type:varchar(50);uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
