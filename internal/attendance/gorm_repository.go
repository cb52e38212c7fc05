package attendance

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/BheemChand1/attendance-backend/internal/model"
	"github.com/BheemChand1/attendance-backend/prometheus"
)

// GormRepository is the postgres-backed Repository. The unique index on
// (user_id, date) makes concurrent same-day check-ins serialize to one
// winner at the database level.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a Repository backed by db.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) InTransaction(fn func(tx Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

func (r *GormRepository) FindByUserAndDate(userID uint, date time.Time) (*model.Attendance, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var rec model.Attendance
	err := r.db.Where("user_id = ? AND date = ?", userID, date).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *GormRepository) FindOpenRecord(userID uint) (*model.Attendance, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var rec model.Attendance
	err := r.db.
		Where("user_id = ? AND check_in IS NOT NULL AND check_out IS NULL", userID).
		Order("date DESC").
		Order("check_in DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *GormRepository) FindByID(id uint) (*model.Attendance, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var rec model.Attendance
	err := r.db.Preload("Photos").First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *GormRepository) Create(a *model.Attendance) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return r.db.Create(a).Error
}

func (r *GormRepository) Update(a *model.Attendance) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	return r.db.Save(a).Error
}

func (r *GormRepository) CreateEvidence(p *model.AttendancePhoto) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return r.db.Create(p).Error
}

func (r *GormRepository) EvidenceExists(attendanceID uint, kind string) (bool, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var count int64
	err := r.db.Model(&model.AttendancePhoto{}).
		Where("attendance_id = ? AND type = ?", attendanceID, kind).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRepository) FindForPeriod(userID uint, start, end time.Time) ([]model.Attendance, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var records []model.Attendance
	err := r.db.
		Preload("Photos").
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Order("date DESC").
		Find(&records).Error
	return records, err
}

func (r *GormRepository) FindForCompany(companyID uint, filters ReportFilters, offset, limit int) ([]model.Attendance, int64, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	q := r.db.Model(&model.Attendance{}).Where("company_id = ?", companyID)
	if filters.Date != nil {
		q = q.Where("date = ?", *filters.Date)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []model.Attendance
	err := q.
		Preload("User").
		Preload("Photos").
		Order("date DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	return records, total, err
}
