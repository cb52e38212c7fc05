package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/BheemChand1/attendance-backend/internal/auth"
	"github.com/BheemChand1/attendance-backend/pkg/jwtutil"
	"github.com/BheemChand1/attendance-backend/pkg/logger"
	"github.com/BheemChand1/attendance-backend/prometheus"
)

const principalKey = "principal"

// AuthMiddleware validates the bearer token and resolves the Principal once
// at the boundary. Handlers read it with PrincipalFromEcho and thread it
// explicitly into every core call.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Error("Missing Authorization header")
			prometheus.RecordError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing authorization token", "status": false})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Error("Invalid Authorization header format")
			prometheus.RecordError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid authorization format, expected Bearer token", "status": false})
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			prometheus.RecordError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid or expired token", "status": false})
		}

		c.Set(principalKey, auth.Principal{
			UserID:    claims.UserID,
			Email:     claims.Email,
			CompanyID: claims.CompanyID,
			Role:      claims.Role,
		})

		return next(c)
	}
}

// PrincipalFromEcho returns the Principal resolved by AuthMiddleware.
func PrincipalFromEcho(c echo.Context) (auth.Principal, bool) {
	p, ok := c.Get(principalKey).(auth.Principal)
	return p, ok
}

// SetPrincipal stores a principal in the echo context. Used by tests and the
// auth middleware.
func SetPrincipal(c echo.Context, p auth.Principal) {
	c.Set(principalKey, p)
}
