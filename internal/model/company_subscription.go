package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CompanySubscription statuses.
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionPaused    = "paused"
	SubscriptionExpired   = "expired"
)

// Billing cycles.
const (
	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
)

// CompanySubscription binds a company to a plan for an interval. For a given
// company at most one row should be active with start_date <= today and
// end_date >= today; more than one is a data-integrity anomaly that the
// entitlement engine detects and reports. EmployeeCount must not exceed the
// bound plan's MaxEmployees while the row is active. Cancelled rows are kept
// for audit.
type CompanySubscription struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	CompanyID       uint            `json:"company_id" gorm:"index;not null"`
	SubscriptionID  uint            `json:"subscription_id" gorm:"index;not null"`
	StartDate       time.Time       `json:"start_date" gorm:"type:date;not null"`
	EndDate         *time.Time      `json:"end_date" gorm:"type:date"`
	Status          string          `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	BillingCycle    string          `json:"billing_cycle" gorm:"type:varchar(20);not null"`
	NextBillingDate *time.Time      `json:"next_billing_date" gorm:"type:date"`
	EmployeeCount   int             `json:"employee_count" gorm:"not null;default:0"`
	Notes           string          `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"-" gorm:"index"`

	Company *Company          `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Plan    *SubscriptionPlan `json:"plan,omitempty" gorm:"foreignKey:SubscriptionID"`
}
