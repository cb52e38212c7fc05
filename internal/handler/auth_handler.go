package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/BheemChand1/attendance-backend/internal/middleware"
	"github.com/BheemChand1/attendance-backend/internal/model"
	"github.com/BheemChand1/attendance-backend/pkg/database"
	"github.com/BheemChand1/attendance-backend/pkg/jwtutil"
	"github.com/BheemChand1/attendance-backend/pkg/logger"
	"github.com/BheemChand1/attendance-backend/prometheus"
)

// Login authenticates a user and issues a bearer token carrying the tenant
// and role context.
func Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request", "status": false})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required", "status": false})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Preload("Role").Preload("Company").Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Error("User not found", zap.String("email", req.Email))
		prometheus.RecordError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password", "status": false})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		prometheus.RecordError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password", "status": false})
	}

	if !user.IsActive {
		prometheus.RecordError("inactive_user")
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Your account is inactive", "status": false})
	}

	token, err := jwtutil.GenerateToken(user.ID, user.Email, user.CompanyID, user.Role.Slug)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token error", "status": false})
	}

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("role", user.Role.Slug))

	var companyName string
	if user.Company != nil {
		companyName = user.Company.Name
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": echo.Map{
			"id":           user.ID,
			"name":         user.Name,
			"email":        user.Email,
			"role":         user.Role.Slug,
			"company_id":   user.CompanyID,
			"company_name": companyName,
		},
	})
}

// Logout acknowledges the logout. Tokens are stateless; clients drop them.
func Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully", "status": true})
}

// GetUser returns the authenticated user's account.
func GetUser(c echo.Context) error {
	p, ok := middleware.PrincipalFromEcho(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required", "status": false})
	}

	var user model.User
	if result := database.GetDB().Preload("Role").Preload("Company").First(&user, p.UserID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found", "status": false})
	}
	return c.JSON(http.StatusOK, user)
}

// GetRoles returns the role catalog.
func GetRoles(c echo.Context) error {
	var roles []model.Role
	if result := database.GetDB().Find(&roles); result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to load roles", "status": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"roles": roles})
}
