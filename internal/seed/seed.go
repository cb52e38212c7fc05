package seed

import (
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BheemChand1/attendance-backend/internal/model"
)

// Run populates the catalog tables. It is idempotent and safe to call on
// every startup; existing rows are left untouched.
func Run(db *gorm.DB, log *zap.Logger) error {
	if err := seedRoles(db); err != nil {
		return err
	}
	if err := seedPlans(db); err != nil {
		return err
	}
	if err := seedSuperAdmin(db); err != nil {
		return err
	}
	log.Info("seed data ensured")
	return nil
}

func seedRoles(db *gorm.DB) error {
	roles := []model.Role{
		{Name: "Super Admin", Slug: model.RoleSuperAdmin},
		{Name: "Company Admin", Slug: model.RoleCompanyAdmin},
		{Name: "HR", Slug: model.RoleHR},
		{Name: "Employee", Slug: model.RoleEmployee},
	}
	for _, r := range roles {
		if err := db.Where("slug = ?", r.Slug).FirstOrCreate(&model.Role{}, r).Error; err != nil {
			return err
		}
	}
	return nil
}

type planSpec struct {
	plan     model.SubscriptionPlan
	features []model.SubscriptionFeature
}

func seedPlans(db *gorm.DB) error {
	plans := []planSpec{
		{
			plan: model.SubscriptionPlan{
				Name:           "Basic",
				Description:    "Perfect for startups and small teams",
				Price:          decimal.NewFromFloat(99.00),
				MaxEmployees:   50,
				MaxDepartments: 3,
				StorageGB:      10,
				SupportLevel:   1,
				IsActive:       true,
			},
			features: []model.SubscriptionFeature{
				{FeatureKey: "attendance", FeatureName: "Attendance Tracking", IsIncluded: true},
			},
		},
		{
			plan: model.SubscriptionPlan{
				Name:           "Professional",
				Description:    "For growing businesses with advanced features",
				Price:          decimal.NewFromFloat(299.00),
				MaxEmployees:   500,
				MaxDepartments: 10,
				StorageGB:      100,
				SupportLevel:   2,
				IsActive:       true,
			},
			features: []model.SubscriptionFeature{
				{FeatureKey: "attendance", FeatureName: "Attendance Tracking", IsIncluded: true},
				{FeatureKey: "payroll", FeatureName: "Payroll Management", IsIncluded: true},
				{FeatureKey: "leave_management", FeatureName: "Leave Management", IsIncluded: true},
			},
		},
		{
			plan: model.SubscriptionPlan{
				Name:           "Enterprise",
				Description:    "Complete solution with all features for large organizations",
				Price:          decimal.NewFromFloat(999.00),
				MaxEmployees:   999999,
				MaxDepartments: 999999,
				StorageGB:      1000,
				SupportLevel:   3,
				IsActive:       true,
			},
			features: []model.SubscriptionFeature{
				{FeatureKey: "attendance", FeatureName: "Attendance Tracking", IsIncluded: true},
				{FeatureKey: "payroll", FeatureName: "Payroll Management", IsIncluded: true},
				{FeatureKey: "leave_management", FeatureName: "Leave Management", IsIncluded: true},
				{FeatureKey: "performance", FeatureName: "Performance Tracking", IsIncluded: true},
				{FeatureKey: "reports", FeatureName: "Advanced Reports", IsIncluded: true},
				{FeatureKey: "api_access", FeatureName: "API Access", IsIncluded: true},
			},
		},
	}

	for _, spec := range plans {
		var existing model.SubscriptionPlan
		err := db.Where("name = ?", spec.plan.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := db.Transaction(func(tx *gorm.DB) error {
			plan := spec.plan
			if err := tx.Create(&plan).Error; err != nil {
				return err
			}
			for _, f := range spec.features {
				f.SubscriptionID = plan.ID
				if err := tx.Create(&f).Error; err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func seedSuperAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).
		Joins("JOIN roles ON roles.id = users.role_id AND roles.slug = ?", model.RoleSuperAdmin).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var superRole model.Role
	if err := db.Where("slug = ?", model.RoleSuperAdmin).First(&superRole).Error; err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := model.User{
		Name:     "Super Admin",
		Email:    "superadmin@system.com",
		Password: string(hashed),
		RoleID:   superRole.ID,
		IsActive: true,
	}
	return db.Create(&admin).Error
}
