package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SubscriptionPlan is a catalog entry. Immutable after creation except for
// the IsActive toggle.
type SubscriptionPlan struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description    string          `json:"description" gorm:"type:text"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	MaxEmployees   int             `json:"max_employees" gorm:"not null"`
	MaxDepartments int             `json:"max_departments" gorm:"not null"`
	StorageGB      int             `json:"storage_gb" gorm:"not null"`
	SupportLevel   int             `json:"support_level" gorm:"not null;default:1"`
	IsActive       bool            `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `json:"-" gorm:"index"`

	Features []SubscriptionFeature `json:"features,omitempty" gorm:"foreignKey:SubscriptionID"`
}

func (SubscriptionPlan) TableName() string {
	return "subscriptions"
}

// HasFeature reports whether the plan's loaded feature list includes the key.
func (p *SubscriptionPlan) HasFeature(featureKey string) bool {
	for _, f := range p.Features {
		if f.FeatureKey == featureKey && f.IsIncluded {
			return true
		}
	}
	return false
}

// SubscriptionFeature is one feature key unlocked by a plan.
type SubscriptionFeature struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	SubscriptionID uint      `json:"subscription_id" gorm:"index;not null"`
	FeatureKey     string    `json:"feature_key" gorm:"type:varchar(100);not null"`
	FeatureName    string    `json:"feature_name" gorm:"type:varchar(255);not null"`
	IsIncluded     bool      `json:"is_included" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
