package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BheemChand1/attendance-backend/internal/auth"
	"github.com/BheemChand1/attendance-backend/internal/entitlement"
	"github.com/BheemChand1/attendance-backend/internal/middleware"
	"github.com/BheemChand1/attendance-backend/internal/model"
	"github.com/BheemChand1/attendance-backend/pkg/database"
	"github.com/BheemChand1/attendance-backend/pkg/logger"
	"github.com/BheemChand1/attendance-backend/pkg/storage"
	"github.com/BheemChand1/attendance-backend/prometheus"
)

// EmployeeHandler manages employee accounts and profiles. Every mutation is
// gated by the authorization rules and onboarding additionally consults the
// entitlement engine's quota before proceeding.
type EmployeeHandler struct {
	Engine *entitlement.Engine
	Store  storage.Store
}

// NewEmployeeHandler creates an EmployeeHandler.
func NewEmployeeHandler(engine *entitlement.Engine, store storage.Store) *EmployeeHandler {
	return &EmployeeHandler{Engine: engine, Store: store}
}

type onboardRequest struct {
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	DateOfBirth string   `json:"dateOfBirth"`
	Gender      string   `json:"gender"`
	Street      string   `json:"street"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	ZipCode     string   `json:"zipCode"`
	Country     string   `json:"country"`
	EmployeeID  string   `json:"employeeId"`
	Department  string   `json:"department"`
	Position    string   `json:"position"`
	Salary      *float64 `json:"salary"`
	JoiningDate string   `json:"joiningDate"`
}

// Onboard handles POST /employees/onboard
func (h *EmployeeHandler) Onboard(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.OnboardingCounter.Inc()

	p, ok := middleware.PrincipalFromEcho(c)
	if !ok || p.CompanyID == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required", "status": false})
	}
	if err := auth.Authorize(p, auth.ActionOnboardEmployee, *p.CompanyID); err != nil {
		prometheus.RecordError("forbidden")
		return respondError(c, err)
	}

	var req onboardRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request", "status": false})
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" ||
		req.EmployeeID == "" || req.Department == "" || req.Position == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "firstName, lastName, email, employeeId, department and position are required",
			"status":  false,
		})
	}

	// Quota check against the active subscription before any write.
	prometheus.SubscriptionOperationCounter.WithLabelValues("quota_check").Inc()
	canAdd, err := h.Engine.CanAddEmployee(*p.CompanyID)
	if err != nil {
		return respondError(c, err)
	}
	if !canAdd {
		prometheus.RecordError("quota_exceeded")
		return c.JSON(http.StatusPaymentRequired, echo.Map{
			"message": "Employee limit reached for your subscription plan",
			"status":  false,
		})
	}

	var employeeRole model.Role
	if result := database.GetDB().Where("slug = ?", model.RoleEmployee).First(&employeeRole); result.Error != nil {
		log.Error("employee role missing", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Employee role not found in system", "status": false})
	}

	tempPassword := uuid.NewString()[:12]
	hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "onboarding failed", "status": false})
	}

	var user model.User
	var profile model.EmployeeProfile

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		user = model.User{
			Name:         req.FirstName + " " + req.LastName,
			Email:        req.Email,
			Password:     string(hashed),
			Phone:        req.Phone,
			EmployeeCode: req.EmployeeID,
			CompanyID:    p.CompanyID,
			RoleID:       employeeRole.ID,
			IsActive:     true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		profile = model.EmployeeProfile{
			UserID:        user.ID,
			CompanyID:     *p.CompanyID,
			EmployeeCode:  req.EmployeeID,
			Gender:        req.Gender,
			StreetAddress: req.Street,
			City:          req.City,
			State:         req.State,
			ZipCode:       req.ZipCode,
			Country:       req.Country,
			Department:    req.Department,
			Position:      req.Position,
			Status:        "active",
		}
		if req.Salary != nil {
			s := decimal.NewFromFloat(*req.Salary)
			profile.Salary = &s
		}
		if req.DateOfBirth != "" {
			if d, err := time.Parse("2006-01-02", req.DateOfBirth); err == nil {
				profile.DateOfBirth = &d
			}
		}
		if req.JoiningDate != "" {
			if d, err := time.Parse("2006-01-02", req.JoiningDate); err == nil {
				profile.JoiningDate = &d
			}
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}

		// Keep the quota snapshot on the active assignment current.
		return tx.Model(&model.CompanySubscription{}).
			Where("company_id = ? AND status = ?", *p.CompanyID, model.SubscriptionActive).
			UpdateColumn("employee_count", gorm.Expr("employee_count + 1")).Error
	})
	if err != nil {
		log.Error("Employee onboarding failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error onboarding employee", "status": false})
	}

	if a, err := h.Engine.ActiveAssignment(*p.CompanyID); err == nil && a != nil {
		prometheus.SetEmployeeCount(*p.CompanyID, a.EmployeeCount)
	}

	log.Info("Employee onboarded",
		zap.Uint("user_id", user.ID),
		zap.Uint("company_id", *p.CompanyID),
		zap.String("employee_code", profile.EmployeeCode))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Employee successfully onboarded",
		"status":  true,
		"data": echo.Map{
			"user_id":            user.ID,
			"employee_id":        profile.EmployeeCode,
			"name":               user.Name,
			"email":              user.Email,
			"temporary_password": tempPassword, // sent via email in production
			"profile":            profile,
		},
	})
}

// Index handles GET /employees
func (h *EmployeeHandler) Index(c echo.Context) error {
	p, ok := middleware.PrincipalFromEcho(c)
	if !ok || p.CompanyID == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required", "status": false})
	}
	if err := auth.Authorize(p, auth.ActionListEmployees, *p.CompanyID); err != nil {
		return respondError(c, err)
	}

	var employees []model.User
	result := database.GetDB().Preload("Role").
		Joins("JOIN roles ON roles.id = users.role_id AND roles.slug = ?", model.RoleEmployee).
		Where("users.company_id = ?", *p.CompanyID).
		Find(&employees)
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to load employees", "status": false})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": true, "data": employees})
}

// Show handles GET /employees/:id
func (h *EmployeeHandler) Show(c echo.Context) error {
	p, ok := middleware.PrincipalFromEcho(c)
	if !ok || p.CompanyID == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required", "status": false})
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid employee ID", "status": false})
	}

	var user model.User
	if result := database.GetDB().First(&user, uint(userID)); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Employee not found", "status": false})
	}
	if user.CompanyID == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Employee not found", "status": false})
	}
	if err := auth.Authorize(p, auth.ActionViewEmployee, *user.CompanyID); err != nil {
		return respondError(c, err)
	}

	var profile model.EmployeeProfile
	if result := database.GetDB().Where("user_id = ?", user.ID).First(&profile); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Employee not found", "status": false})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": true,
		"data":   echo.Map{"user": user, "profile": profile},
	})
}

// Update handles PUT /employees/:id
func (h *EmployeeHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)

	p, ok := middleware.PrincipalFromEcho(c)
	if !ok || p.CompanyID == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required", "status": false})
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid employee ID", "status": false})
	}

	var user model.User
	if result := database.GetDB().First(&user, uint(userID)); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Employee not found", "status": false})
	}
	if user.CompanyID == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Employee not found", "status": false})
	}
	if err := auth.Authorize(p, auth.ActionUpdateEmployee, *user.CompanyID); err != nil {
		return respondError(c, err)
	}

	var profile model.EmployeeProfile
	if result := database.GetDB().Where("user_id = ?", user.ID).First(&profile); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Employee not found", "status": false})
	}

	var req onboardRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request", "status": false})
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if req.FirstName != "" || req.LastName != "" {
			name := user.Name
			if req.FirstName != "" && req.LastName != "" {
				name = req.FirstName + " " + req.LastName
			}
			user.Name = name
		}
		if req.Phone != "" {
			user.Phone = req.Phone
		}
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		if req.Gender != "" {
			profile.Gender = req.Gender
		}
		if req.Street != "" {
			profile.StreetAddress = req.Street
		}
		if req.City != "" {
			profile.City = req.City
		}
		if req.State != "" {
			profile.State = req.State
		}
		if req.ZipCode != "" {
			profile.ZipCode = req.ZipCode
		}
		if req.Country != "" {
			profile.Country = req.Country
		}
		if req.Department != "" {
			profile.Department = req.Department
		}
		if req.Position != "" {
			profile.Position = req.Position
		}
		if req.Salary != nil {
			s := decimal.NewFromFloat(*req.Salary)
			profile.Salary = &s
		}
		if req.DateOfBirth != "" {
			if d, err := time.Parse("2006-01-02", req.DateOfBirth); err == nil {
				profile.DateOfBirth = &d
			}
		}
		if req.JoiningDate != "" {
			if d, err := time.Parse("2006-01-02", req.JoiningDate); err == nil {
				profile.JoiningDate = &d
			}
		}
		return tx.Save(&profile).Error
	})
	if err != nil {
		log.Error("Employee update failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error updating employee", "status": false})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Employee profile updated successfully",
		"status":  true,
		"data":    echo.Map{"user": user, "profile": profile},
	})
}

// Delete handles DELETE /employees/:id. Restricted to the company admin;
// the quota snapshot on the active assignment is decremented.
func (h *EmployeeHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)

	p, ok := middleware.PrincipalFromEcho(c)
	if !ok || p.CompanyID == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required", "status": false})
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid employee ID", "status": false})
	}

	var user model.User
	if result := database.GetDB().First(&user, uint(userID)); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Employee not found", "status": false})
	}
	if user.CompanyID == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Employee not found", "status": false})
	}
	if err := auth.Authorize(p, auth.ActionDeleteEmployee, *user.CompanyID); err != nil {
		return respondError(c, err)
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.EmployeeProfile{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&user).Error; err != nil {
			return err
		}
		return tx.Model(&model.CompanySubscription{}).
			Where("company_id = ? AND status = ? AND employee_count > 0", *user.CompanyID, model.SubscriptionActive).
			UpdateColumn("employee_count", gorm.Expr("employee_count - 1")).Error
	})
	if err != nil {
		log.Error("Employee deletion failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error deleting employee", "status": false})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Employee deleted successfully", "status": true})
}

const maxDocumentSize = 10 << 20

type documentRecord struct {
	Type         string    `json:"type"`
	Path         string    `json:"path"`
	OriginalName string    `json:"original_name"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// UploadDocument handles POST /employees/:id/documents. The file lands in
// blob storage and its metadata is appended to the profile's documents list.
func (h *EmployeeHandler) UploadDocument(c echo.Context) error {
	log := logger.FromEcho(c)

	p, ok := middleware.PrincipalFromEcho(c)
	if !ok || p.CompanyID == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required", "status": false})
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid employee ID", "status": false})
	}

	var profile model.EmployeeProfile
	if result := database.GetDB().Where("user_id = ?", uint(userID)).First(&profile); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Employee not found", "status": false})
	}
	if err := auth.Authorize(p, auth.ActionUpdateEmployee, profile.CompanyID); err != nil {
		return respondError(c, err)
	}

	docType := c.FormValue("type")
	if docType == "" {
		docType = "other"
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "document file is required", "status": false})
	}
	if fileHeader.Size > maxDocumentSize {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "document must be 10MB or smaller", "status": false})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to read document", "status": false})
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxDocumentSize+1))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to read document", "status": false})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	path := fmt.Sprintf("employees/%d/documents/%s-%s%s", profile.UserID, docType, uuid.NewString(), ext)
	if err := h.Store.Save(path, data); err != nil {
		log.Error("document upload failed", zap.Error(err), zap.String("path", path))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error uploading document", "status": false})
	}

	var docs []documentRecord
	if len(profile.Documents) > 0 {
		if err := json.Unmarshal([]byte(profile.Documents), &docs); err != nil {
			log.Warn("document list unreadable, resetting", zap.Uint("user_id", profile.UserID), zap.Error(err))
			docs = nil
		}
	}
	docs = append(docs, documentRecord{
		Type:         docType,
		Path:         path,
		OriginalName: fileHeader.Filename,
		UploadedAt:   time.Now(),
	})

	raw, err := json.Marshal(docs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error uploading document", "status": false})
	}
	profile.Documents = datatypes.JSON(raw)

	if err := database.GetDB().Model(&profile).Update("documents", profile.Documents).Error; err != nil {
		// Keep storage consistent with the database on failure.
		_ = h.Store.Delete(path)
		log.Error("document metadata save failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error uploading document", "status": false})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Document uploaded successfully",
		"status":  true,
		"data":    echo.Map{"documents": docs},
	})
}
