package entitlement

import (
	"time"

	"gorm.io/gorm"

	"github.com/BheemChand1/attendance-backend/internal/model"
	"github.com/BheemChand1/attendance-backend/prometheus"
)

// GormRepository is the postgres-backed Repository.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a Repository backed by db.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) ActiveAssignments(companyID uint, today time.Time) ([]model.CompanySubscription, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var rows []model.CompanySubscription
	err := r.db.
		Preload("Plan.Features").
		Preload("Plan").
		Where("company_id = ? AND status = ?", companyID, model.SubscriptionActive).
		Where("start_date <= ?", today).
		Where("end_date IS NULL OR end_date >= ?", today).
		Order("start_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepository) Save(a *model.CompanySubscription) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	return r.db.Save(a).Error
}
