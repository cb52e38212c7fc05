package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/BheemChand1/attendance-backend/internal/entitlement"
	"github.com/BheemChand1/attendance-backend/internal/model"
	"github.com/BheemChand1/attendance-backend/prometheus"
)

// RequireFeature rejects requests whose company's active plan does not
// unlock the given feature key. The superadmin is exempt.
func RequireFeature(engine *entitlement.Engine, featureKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromEcho(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"message": "authentication required",
					"status":  false,
				})
			}
			if p.Role == model.RoleSuperAdmin {
				return next(c)
			}
			if p.CompanyID == nil {
				return c.JSON(http.StatusForbidden, echo.Map{
					"message": "Unauthorized",
					"status":  false,
				})
			}

			ok, err := engine.HasFeature(*p.CompanyID, featureKey)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{
					"message": "internal server error",
					"status":  false,
				})
			}
			if !ok {
				prometheus.RecordError("feature_locked")
				return c.JSON(http.StatusPaymentRequired, echo.Map{
					"message": "Your subscription plan does not include this feature",
					"status":  false,
				})
			}
			return next(c)
		}
	}
}
