package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BheemChand1/attendance-backend/internal/model"
	"github.com/BheemChand1/attendance-backend/pkg/database"
	"github.com/BheemChand1/attendance-backend/pkg/logger"
	"github.com/BheemChand1/attendance-backend/pkg/mailer"
	"github.com/BheemChand1/attendance-backend/prometheus"
)

// RegistrationHandler handles company sign-up and email verification.
type RegistrationHandler struct {
	Mailer mailer.Mailer
}

// NewRegistrationHandler creates a RegistrationHandler.
func NewRegistrationHandler(m mailer.Mailer) *RegistrationHandler {
	return &RegistrationHandler{Mailer: m}
}

// GetSubscriptionPlans handles GET /subscription-plans
func (h *RegistrationHandler) GetSubscriptionPlans(c echo.Context) error {
	var plans []model.SubscriptionPlan
	result := database.GetDB().Preload("Features").Where("is_active = ?", true).Find(&plans)
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to load plans", "status": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": true, "data": plans})
}

// RegisterCompany handles POST /register-company. It creates the company,
// its admin (inactive until email verification) and the initial
// subscription assignment in one transaction.
func (h *RegistrationHandler) RegisterCompany(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RegistrationCounter.Inc()

	var req struct {
		CompanyName    string `json:"company_name"`
		CompanyEmail   string `json:"company_email"`
		CompanyPhone   string `json:"company_phone"`
		CompanyAddress string `json:"company_address"`
		CompanySize    string `json:"company_size"`
		Location       string `json:"location"`

		AdminName     string `json:"admin_name"`
		AdminEmail    string `json:"admin_email"`
		AdminPhone    string `json:"admin_phone"`
		AdminPassword string `json:"admin_password"`

		SubscriptionID uint   `json:"subscription_id"`
		BillingCycle   string `json:"billing_cycle"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request", "status": false})
	}

	if req.CompanyName == "" || req.CompanyEmail == "" || req.AdminName == "" ||
		req.AdminEmail == "" || req.SubscriptionID == 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "company_name, company_email, admin_name, admin_email and subscription_id are required",
			"status":  false,
		})
	}
	if len(req.AdminPassword) < 8 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "admin_password must be at least 8 characters",
			"status":  false,
		})
	}
	if req.BillingCycle != model.BillingMonthly && req.BillingCycle != model.BillingYearly {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "billing_cycle must be monthly or yearly",
			"status":  false,
		})
	}

	var plan model.SubscriptionPlan
	if result := database.GetDB().First(&plan, req.SubscriptionID); result.Error != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "unknown subscription plan", "status": false})
	}

	var adminRole model.Role
	if result := database.GetDB().Where("slug = ?", model.RoleCompanyAdmin).First(&adminRole); result.Error != nil {
		log.Error("company_admin role missing", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "registration failed", "status": false})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "registration failed", "status": false})
	}

	verificationToken := uuid.NewString()
	today := time.Now().Truncate(24 * time.Hour)
	var endDate time.Time
	if req.BillingCycle == model.BillingYearly {
		endDate = today.AddDate(1, 0, 0)
	} else {
		endDate = today.AddDate(0, 1, 0)
	}

	var company model.Company
	var admin model.User

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		company = model.Company{
			Name:        req.CompanyName,
			Email:       req.CompanyEmail,
			Phone:       req.CompanyPhone,
			Address:     req.CompanyAddress,
			CompanySize: req.CompanySize,
			Location:    req.Location,
			IsActive:    false,
		}
		if err := tx.Create(&company).Error; err != nil {
			return err
		}

		admin = model.User{
			Name:                   req.AdminName,
			Email:                  req.AdminEmail,
			Password:               string(hashed),
			Phone:                  req.AdminPhone,
			CompanyID:              &company.ID,
			RoleID:                 adminRole.ID,
			IsActive:               false, // inactive until email is verified
			EmailVerificationToken: &verificationToken,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		assignment := model.CompanySubscription{
			CompanyID:       company.ID,
			SubscriptionID:  plan.ID,
			StartDate:       today,
			EndDate:         &endDate,
			Status:          model.SubscriptionActive,
			Price:           plan.Price,
			BillingCycle:    req.BillingCycle,
			NextBillingDate: &endDate,
			EmployeeCount:   1, // only the admin for now
		}
		return tx.Create(&assignment).Error
	})
	if err != nil {
		log.Error("Company registration failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Registration failed", "status": false})
	}

	if err := h.Mailer.SendVerificationEmail(admin.Email, company.Name, verificationToken); err != nil {
		log.Error("Failed to send verification email", zap.Error(err))
	}

	log.Info("Company registered",
		zap.Uint("company_id", company.ID),
		zap.String("plan", plan.Name))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Company registered successfully. Please verify your email.",
		"status":  true,
		"data": echo.Map{
			"company_id":        company.ID,
			"admin_id":          admin.ID,
			"company_name":      company.Name,
			"admin_email":       admin.Email,
			"subscription_plan": plan.Name,
		},
	})
}

// VerifyEmail handles GET /verify-email?token. It activates the admin and
// the company.
func (h *RegistrationHandler) VerifyEmail(c echo.Context) error {
	log := logger.FromEcho(c)

	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "token is required", "status": false})
	}

	var user model.User
	result := database.GetDB().Where("email_verification_token = ?", token).First(&user)
	if result.Error != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid verification token", "status": false})
	}

	now := time.Now()
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		user.IsActive = true
		user.EmailVerifiedAt = &now
		user.EmailVerificationToken = nil
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		if user.CompanyID == nil {
			return nil
		}
		return tx.Model(&model.Company{}).Where("id = ?", *user.CompanyID).Update("is_active", true).Error
	})
	if err != nil {
		log.Error("Email verification failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "verification failed", "status": false})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Email verified successfully. Your company is now active.",
		"status":  true,
		"data": echo.Map{
			"user_id":    user.ID,
			"company_id": user.CompanyID,
		},
	})
}

// ResendVerificationEmail handles POST /resend-verification-email.
func (h *RegistrationHandler) ResendVerificationEmail(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email is required", "status": false})
	}

	var user model.User
	result := database.GetDB().Preload("Company").
		Where("email = ? AND is_active = ?", req.Email, false).First(&user)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found or already verified", "status": false})
	}

	token := uuid.NewString()
	user.EmailVerificationToken = &token
	if err := database.GetDB().Save(&user).Error; err != nil {
		log.Error("Failed to refresh verification token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to resend email", "status": false})
	}

	var companyName string
	if user.Company != nil {
		companyName = user.Company.Name
	}
	if err := h.Mailer.SendVerificationEmail(user.Email, companyName, token); err != nil {
		log.Error("Failed to send verification email", zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Verification email sent. Please check your inbox.",
		"status":  true,
	})
}
